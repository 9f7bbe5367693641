package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type blockStore interface {
	List(ctx context.Context) ([]models.Block, error)
	FindByID(ctx context.Context, id string) (*models.Block, error)
	Create(ctx context.Context, block *models.Block) error
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id string) error
}

type curriculumDefinitionStore interface {
	ListByBlock(ctx context.Context, blockID string) ([]models.LessonDefinition, error)
	FindByID(ctx context.Context, id string) (*models.LessonDefinition, error)
	ExistsOrderIndex(ctx context.Context, blockID string, orderIndex int, excludeID string) (bool, error)
	Create(ctx context.Context, definition *models.LessonDefinition) error
	Update(ctx context.Context, definition *models.LessonDefinition) error
	Delete(ctx context.Context, id string) error
}

type rebalanceTrigger interface {
	TriggerRebalance(blockID string)
}

// CurriculumService manages the template side of the curriculum: block
// templates and the lesson definitions inside them. Definition changes hand
// the template to the rebalancer so live classes follow.
type CurriculumService struct {
	blocks      blockStore
	definitions curriculumDefinitionStore
	trigger     rebalanceTrigger
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCurriculumService wires the curriculum service. Trigger is optional.
func NewCurriculumService(
	blocks blockStore,
	definitions curriculumDefinitionStore,
	trigger rebalanceTrigger,
	validate *validator.Validate,
	logger *zap.Logger,
) *CurriculumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{
		blocks:      blocks,
		definitions: definitions,
		trigger:     trigger,
		validator:   validate,
		logger:      logger,
	}
}

// ListBlocks returns every block template in curriculum order.
func (s *CurriculumService) ListBlocks(ctx context.Context) ([]models.Block, error) {
	blocks, err := s.blocks.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	return blocks, nil
}

// GetBlock loads a block template with its definitions.
func (s *CurriculumService) GetBlock(ctx context.Context, blockID string) (*models.Block, []models.LessonDefinition, error) {
	block, err := s.loadTemplate(ctx, blockID)
	if err != nil {
		return nil, nil, err
	}
	definitions, err := s.definitions.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson definitions")
	}
	return block, definitions, nil
}

// CreateBlock adds a block template.
func (s *CurriculumService) CreateBlock(ctx context.Context, req dto.CreateBlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	block := &models.Block{
		Name:              req.Name,
		OrderIndex:        req.OrderIndex,
		EstimatedSessions: req.EstimatedSessions,
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}
	return block, nil
}

// UpdateBlock edits a block template. Name and ordering changes do not touch
// materialized classes, so no rebalance is queued.
func (s *CurriculumService) UpdateBlock(ctx context.Context, blockID string, req dto.UpdateBlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	block, err := s.loadTemplate(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		block.Name = *req.Name
	}
	if req.OrderIndex != nil {
		block.OrderIndex = *req.OrderIndex
	}
	if req.EstimatedSessions != nil {
		block.EstimatedSessions = *req.EstimatedSessions
	}
	if err := s.blocks.Update(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update block")
	}
	return block, nil
}

// DeleteBlock removes a block template.
func (s *CurriculumService) DeleteBlock(ctx context.Context, blockID string) error {
	if _, err := s.loadTemplate(ctx, blockID); err != nil {
		return err
	}
	if err := s.blocks.Delete(ctx, blockID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}
	return nil
}

// CreateDefinition authors a new lesson inside a block template and queues a
// rebalance so live classes pick it up.
func (s *CurriculumService) CreateDefinition(ctx context.Context, req dto.CreateLessonDefinitionRequest) (*models.LessonDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.loadTemplate(ctx, req.BlockID); err != nil {
		return nil, err
	}
	taken, err := s.definitions.ExistsOrderIndex(ctx, req.BlockID, req.OrderIndex, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order index")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("order index %d is already taken", req.OrderIndex))
	}

	definition := &models.LessonDefinition{
		BlockID:               req.BlockID,
		Title:                 req.Title,
		Summary:               req.Summary,
		OrderIndex:            req.OrderIndex,
		SlideURL:              req.SlideURL,
		MakeUpInstructions:    req.MakeUpInstructions,
		EstimatedMeetingCount: req.EstimatedMeetingCount,
	}
	if err := s.definitions.Create(ctx, definition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson definition")
	}

	s.queueRebalance(req.BlockID)
	return definition, nil
}

// UpdateDefinition edits an authored lesson and queues a rebalance.
func (s *CurriculumService) UpdateDefinition(ctx context.Context, definitionID string, req dto.UpdateLessonDefinitionRequest) (*models.LessonDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	definition, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	if req.OrderIndex != nil && *req.OrderIndex != definition.OrderIndex {
		taken, err := s.definitions.ExistsOrderIndex(ctx, definition.BlockID, *req.OrderIndex, definition.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order index")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("order index %d is already taken", *req.OrderIndex))
		}
		definition.OrderIndex = *req.OrderIndex
	}
	if req.Title != nil {
		definition.Title = *req.Title
	}
	if req.Summary != nil {
		definition.Summary = req.Summary
	}
	if req.SlideURL != nil {
		definition.SlideURL = req.SlideURL
	}
	if req.MakeUpInstructions != nil {
		definition.MakeUpInstructions = req.MakeUpInstructions
	}
	if req.EstimatedMeetingCount != nil {
		definition.EstimatedMeetingCount = *req.EstimatedMeetingCount
	}

	if err := s.definitions.Update(ctx, definition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson definition")
	}

	s.queueRebalance(definition.BlockID)
	return definition, nil
}

// DeleteDefinition removes an authored lesson. Live instances are detached,
// not deleted, by the queued rebalance.
func (s *CurriculumService) DeleteDefinition(ctx context.Context, definitionID string) error {
	definition, err := s.loadDefinition(ctx, definitionID)
	if err != nil {
		return err
	}
	if err := s.definitions.Delete(ctx, definitionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson definition")
	}

	s.queueRebalance(definition.BlockID)
	return nil
}

func (s *CurriculumService) loadTemplate(ctx context.Context, blockID string) (*models.Block, error) {
	if blockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "block id is required")
	}
	block, err := s.blocks.FindByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}
	return block, nil
}

func (s *CurriculumService) loadDefinition(ctx context.Context, definitionID string) (*models.LessonDefinition, error) {
	if definitionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson definition id is required")
	}
	definition, err := s.definitions.FindByID(ctx, definitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson definition not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson definition")
	}
	return definition, nil
}

func (s *CurriculumService) queueRebalance(blockID string) {
	if s.trigger == nil {
		return
	}
	s.trigger.TriggerRebalance(blockID)
}
