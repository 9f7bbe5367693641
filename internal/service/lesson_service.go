package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type lessonClassStore interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindBlockByID(ctx context.Context, id string) (*models.ClassBlock, error)
	CreateBlock(ctx context.Context, block *models.ClassBlock) error
	DeleteBlock(ctx context.Context, id string) error
}

type lessonStore interface {
	ListByClassBlock(ctx context.Context, classBlockID string) ([]models.LessonInstance, error)
	FindByID(ctx context.Context, id string) (*models.LessonInstance, error)
	CreateBatch(ctx context.Context, lessons []models.LessonInstance) ([]models.LessonInstance, error)
	UpdateContent(ctx context.Context, lesson *models.LessonInstance) error
	ExistsOrderIndex(ctx context.Context, classBlockID string, orderIndex int) (bool, error)
	Delete(ctx context.Context, id string) error
}

type lessonDefinitionStore interface {
	FindByID(ctx context.Context, id string) (*models.LessonDefinition, error)
	ListByBlock(ctx context.Context, blockID string) ([]models.LessonDefinition, error)
}

// InstantiateBlockResult carries the materialized block and its lessons.
type InstantiateBlockResult struct {
	Block   models.ClassBlock       `json:"block"`
	Lessons []models.LessonInstance `json:"lessons"`
}

// LessonService manages per-class lesson instances and block materialization.
// Mutations that change the set of assignable lessons hand the class back to
// the pairing engine through the trigger.
type LessonService struct {
	classes     lessonClassStore
	lessons     lessonStore
	definitions lessonDefinitionStore
	trigger     autoAssignTrigger
	cache       timelineCache
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLessonService wires the lesson service. Trigger and cache are optional.
func NewLessonService(
	classes lessonClassStore,
	lessons lessonStore,
	definitions lessonDefinitionStore,
	trigger autoAssignTrigger,
	cache timelineCache,
	validate *validator.Validate,
	logger *zap.Logger,
) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{
		classes:     classes,
		lessons:     lessons,
		definitions: definitions,
		trigger:     trigger,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// InstantiateBlock materializes a block template into a class: a new class
// block plus one lesson instance per definition part, content copied from the
// template.
func (s *LessonService) InstantiateBlock(ctx context.Context, req dto.InstantiateBlockRequest) (*InstantiateBlockResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	definitions, err := s.definitions.ListByBlock(ctx, req.BlockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson definitions")
	}

	blockID := req.BlockID
	block := models.ClassBlock{
		ClassID:   class.ID,
		BlockID:   &blockID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    models.ClassBlockStatusUpcoming,
	}
	if err := s.classes.CreateBlock(ctx, &block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class block")
	}

	var lessons []models.LessonInstance
	for _, def := range definitions {
		lessons = append(lessons, materializeDefinition(block.ID, def)...)
	}
	if len(lessons) > 0 {
		lessons, err = s.lessons.CreateBatch(ctx, lessons)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class lessons")
		}
	}

	s.logger.Info("block instantiated",
		zap.String("class_id", class.ID),
		zap.String("block_id", req.BlockID),
		zap.Int("lessons", len(lessons)),
	)
	s.afterLessonSetChange(ctx, class.ID)
	return &InstantiateBlockResult{Block: block, Lessons: lessons}, nil
}

// CreateFromDefinition copies one definition's lesson part(s) into a class
// block that was instantiated from the definition's template.
func (s *LessonService) CreateFromDefinition(ctx context.Context, req dto.CreateLessonFromDefinitionRequest) ([]models.LessonInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	block, err := s.loadBlock(ctx, req.ClassBlockID)
	if err != nil {
		return nil, err
	}
	def, err := s.definitions.FindByID(ctx, req.LessonDefinitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson definition not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson definition")
	}
	if block.BlockID == nil || *block.BlockID != def.BlockID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "definition does not belong to the class block's template")
	}

	for part := 1; part <= def.PartCount(); part++ {
		taken, err := s.lessons.ExistsOrderIndex(ctx, block.ID, models.PartOrderIndex(def.OrderIndex, part))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order index")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("order index %d is already taken", models.PartOrderIndex(def.OrderIndex, part)))
		}
	}

	lessons, err := s.lessons.CreateBatch(ctx, materializeDefinition(block.ID, *def))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class lessons")
	}

	s.afterLessonSetChange(ctx, block.ClassID)
	return lessons, nil
}

// CreateAdHoc adds a class-only lesson with no template link.
func (s *LessonService) CreateAdHoc(ctx context.Context, req dto.CreateAdHocLessonRequest) (*models.LessonInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	block, err := s.loadBlock(ctx, req.ClassBlockID)
	if err != nil {
		return nil, err
	}
	taken, err := s.lessons.ExistsOrderIndex(ctx, block.ID, req.OrderIndex)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order index")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("order index %d is already taken", req.OrderIndex))
	}

	created, err := s.lessons.CreateBatch(ctx, []models.LessonInstance{{
		ClassBlockID:       block.ID,
		Title:              req.Title,
		Summary:            req.Summary,
		OrderIndex:         req.OrderIndex,
		SlideURL:           req.SlideURL,
		MakeUpInstructions: req.MakeUpInstructions,
	}})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class lesson")
	}

	s.afterLessonSetChange(ctx, block.ClassID)
	return &created[0], nil
}

// UpdateContent edits a lesson instance's content. Moving the lesson within
// the curriculum order re-runs the pairing engine; pure content edits only
// refresh the cached timeline.
func (s *LessonService) UpdateContent(ctx context.Context, lessonID string, req dto.UpdateLessonContentRequest) (*models.LessonInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	block, err := s.loadBlock(ctx, lesson.ClassBlockID)
	if err != nil {
		return nil, err
	}

	reordered := false
	if req.OrderIndex != nil && *req.OrderIndex != lesson.OrderIndex {
		taken, err := s.lessons.ExistsOrderIndex(ctx, lesson.ClassBlockID, *req.OrderIndex)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order index")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("order index %d is already taken", *req.OrderIndex))
		}
		lesson.OrderIndex = *req.OrderIndex
		reordered = true
	}
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Summary != nil {
		lesson.Summary = req.Summary
	}
	if req.SlideURL != nil {
		lesson.SlideURL = req.SlideURL
	}
	if req.MakeUpInstructions != nil {
		lesson.MakeUpInstructions = req.MakeUpInstructions
	}

	if err := s.lessons.UpdateContent(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class lesson")
	}

	if reordered {
		s.afterLessonSetChange(ctx, block.ClassID)
	} else {
		s.invalidate(ctx, block.ClassID)
	}
	return lesson, nil
}

// Delete removes a lesson instance. Any session it held becomes free for the
// engine's next pass.
func (s *LessonService) Delete(ctx context.Context, lessonID string) error {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	block, err := s.loadBlock(ctx, lesson.ClassBlockID)
	if err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, lessonID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class lesson")
	}

	s.afterLessonSetChange(ctx, block.ClassID)
	return nil
}

// DeleteBlock removes a class block and its lessons.
func (s *LessonService) DeleteBlock(ctx context.Context, classBlockID string) error {
	block, err := s.loadBlock(ctx, classBlockID)
	if err != nil {
		return err
	}
	if err := s.classes.DeleteBlock(ctx, classBlockID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class block")
	}

	s.afterLessonSetChange(ctx, block.ClassID)
	return nil
}

// ListByClassBlock returns a class block's lessons in curriculum order.
func (s *LessonService) ListByClassBlock(ctx context.Context, classBlockID string) ([]models.LessonInstance, error) {
	if _, err := s.loadBlock(ctx, classBlockID); err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByClassBlock(ctx, classBlockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class lessons")
	}
	return lessons, nil
}

func (s *LessonService) loadBlock(ctx context.Context, classBlockID string) (*models.ClassBlock, error) {
	if classBlockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class block id is required")
	}
	block, err := s.classes.FindBlockByID(ctx, classBlockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class block")
	}
	return block, nil
}

func (s *LessonService) loadLesson(ctx context.Context, lessonID string) (*models.LessonInstance, error) {
	if lessonID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson id is required")
	}
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

func (s *LessonService) afterLessonSetChange(ctx context.Context, classID string) {
	s.invalidate(ctx, classID)
	if s.trigger != nil {
		s.trigger.TriggerAutoAssign(classID)
	}
}

func (s *LessonService) invalidate(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, timelineCacheKey(classID)); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}

// materializeDefinition expands one definition into its per-class lesson
// instances, one per estimated meeting.
func materializeDefinition(classBlockID string, def models.LessonDefinition) []models.LessonInstance {
	parts := def.PartCount()
	lessons := make([]models.LessonInstance, 0, parts)
	for part := 1; part <= parts; part++ {
		defID := def.ID
		lessons = append(lessons, models.LessonInstance{
			ClassBlockID:       classBlockID,
			LessonDefinitionID: &defID,
			Title:              partTitle(def.Title, part, parts),
			Summary:            def.Summary,
			OrderIndex:         models.PartOrderIndex(def.OrderIndex, part),
			SlideURL:           def.SlideURL,
			MakeUpInstructions: def.MakeUpInstructions,
		})
	}
	return lessons
}
