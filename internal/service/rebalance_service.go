package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type rebalanceDefinitionStore interface {
	ListByBlock(ctx context.Context, blockID string) ([]models.LessonDefinition, error)
}

type rebalanceClassStore interface {
	ListBlocksByTemplate(ctx context.Context, blockID string, activeOnly bool) ([]models.ClassBlock, error)
}

type rebalanceLessonStore interface {
	ListByClassBlock(ctx context.Context, classBlockID string) ([]models.LessonInstance, error)
	CreateBatch(ctx context.Context, lessons []models.LessonInstance) ([]models.LessonInstance, error)
	UpdateContent(ctx context.Context, lesson *models.LessonInstance) error
	DetachDefinition(ctx context.Context, lessonID string) error
}

type classAssigner interface {
	AutoAssignClass(ctx context.Context, classID string) (*AutoAssignResult, error)
}

type rebalanceMetrics interface {
	IncRebalanceFailure()
}

// RebalanceResult summarises one template sync across all affected classes.
type RebalanceResult struct {
	ClassesSynced   int `json:"classes_synced"`
	LessonsCreated  int `json:"lessons_created"`
	LessonsUpdated  int `json:"lessons_updated"`
	LessonsDetached int `json:"lessons_detached"`
}

// RebalanceService reconciles per-class lesson instances against their block
// template after the template changes, then reruns the pairing engine for each
// touched class. Classes are reconciled independently; one failing class never
// blocks the rest.
type RebalanceService struct {
	definitions rebalanceDefinitionStore
	classes     rebalanceClassStore
	lessons     rebalanceLessonStore
	assigner    classAssigner
	metrics     rebalanceMetrics
	logger      *zap.Logger
}

// NewRebalanceService wires the rebalancer's stores. Metrics are optional.
func NewRebalanceService(
	definitions rebalanceDefinitionStore,
	classes rebalanceClassStore,
	lessons rebalanceLessonStore,
	assigner classAssigner,
	metrics rebalanceMetrics,
	logger *zap.Logger,
) *RebalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RebalanceService{
		definitions: definitions,
		classes:     classes,
		lessons:     lessons,
		assigner:    assigner,
		metrics:     metrics,
		logger:      logger,
	}
}

// SyncClassesForBlockTemplate pushes a block template's current definitions
// into every class block instantiated from it that has not completed. Existing
// instances are updated in place, missing parts are created, and instances
// whose definition was removed are detached but never deleted.
func (s *RebalanceService) SyncClassesForBlockTemplate(ctx context.Context, blockID string) (*RebalanceResult, error) {
	if blockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "block id is required")
	}

	definitions, err := s.definitions.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson definitions")
	}
	blocks, err := s.classes.ListBlocksByTemplate(ctx, blockID, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class blocks for template")
	}

	result := &RebalanceResult{}
	var classIDs []string
	seen := make(map[string]struct{})
	for _, block := range blocks {
		if err := s.syncClassBlock(ctx, block, definitions, result); err != nil {
			s.failure()
			s.logger.Error("class block sync failed",
				zap.String("block_id", blockID),
				zap.String("class_block_id", block.ID),
				zap.Error(err),
			)
			continue
		}
		result.ClassesSynced++
		if _, ok := seen[block.ClassID]; !ok {
			seen[block.ClassID] = struct{}{}
			classIDs = append(classIDs, block.ClassID)
		}
	}

	for _, classID := range classIDs {
		if _, err := s.assigner.AutoAssignClass(ctx, classID); err != nil {
			s.failure()
			s.logger.Error("post-sync auto-assign failed",
				zap.String("block_id", blockID),
				zap.String("class_id", classID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("block template sync completed",
		zap.String("block_id", blockID),
		zap.Int("classes_synced", result.ClassesSynced),
		zap.Int("lessons_created", result.LessonsCreated),
		zap.Int("lessons_updated", result.LessonsUpdated),
		zap.Int("lessons_detached", result.LessonsDetached),
	)
	return result, nil
}

func (s *RebalanceService) syncClassBlock(
	ctx context.Context,
	block models.ClassBlock,
	definitions []models.LessonDefinition,
	result *RebalanceResult,
) error {
	instances, err := s.lessons.ListByClassBlock(ctx, block.ID)
	if err != nil {
		return fmt.Errorf("list lessons: %w", err)
	}

	// Ad hoc lessons carry no definition and are left alone.
	byDefinition := make(map[string][]*models.LessonInstance)
	for i := range instances {
		inst := &instances[i]
		if inst.LessonDefinitionID == nil {
			continue
		}
		byDefinition[*inst.LessonDefinitionID] = append(byDefinition[*inst.LessonDefinitionID], inst)
	}

	live := make(map[string]struct{}, len(definitions))
	var toCreate []models.LessonInstance
	for _, def := range definitions {
		live[def.ID] = struct{}{}
		parts := def.PartCount()
		existing := byDefinition[def.ID]

		for part := 1; part <= parts; part++ {
			title := partTitle(def.Title, part, parts)
			orderIndex := models.PartOrderIndex(def.OrderIndex, part)
			if part <= len(existing) {
				inst := existing[part-1]
				if inst.Title == title &&
					inst.OrderIndex == orderIndex &&
					equalStringPtr(inst.Summary, def.Summary) &&
					equalStringPtr(inst.SlideURL, def.SlideURL) &&
					equalStringPtr(inst.MakeUpInstructions, def.MakeUpInstructions) {
					continue
				}
				inst.Title = title
				inst.OrderIndex = orderIndex
				inst.Summary = def.Summary
				inst.SlideURL = def.SlideURL
				inst.MakeUpInstructions = def.MakeUpInstructions
				if err := s.lessons.UpdateContent(ctx, inst); err != nil {
					return fmt.Errorf("update lesson %s: %w", inst.ID, err)
				}
				result.LessonsUpdated++
				continue
			}
			defID := def.ID
			toCreate = append(toCreate, models.LessonInstance{
				ClassBlockID:       block.ID,
				LessonDefinitionID: &defID,
				Title:              title,
				Summary:            def.Summary,
				OrderIndex:         orderIndex,
				SlideURL:           def.SlideURL,
				MakeUpInstructions: def.MakeUpInstructions,
			})
		}

		// Parts beyond the current estimate stay in place for any progress
		// they carry, but lose the template link.
		for _, surplus := range existing[min(parts, len(existing)):] {
			if err := s.lessons.DetachDefinition(ctx, surplus.ID); err != nil {
				return fmt.Errorf("detach surplus lesson %s: %w", surplus.ID, err)
			}
			result.LessonsDetached++
		}
	}

	for i := range instances {
		inst := &instances[i]
		if inst.LessonDefinitionID == nil {
			continue
		}
		if _, ok := live[*inst.LessonDefinitionID]; ok {
			continue
		}
		if err := s.lessons.DetachDefinition(ctx, inst.ID); err != nil {
			return fmt.Errorf("detach removed lesson %s: %w", inst.ID, err)
		}
		result.LessonsDetached++
	}

	if len(toCreate) > 0 {
		if _, err := s.lessons.CreateBatch(ctx, toCreate); err != nil {
			return fmt.Errorf("create lessons: %w", err)
		}
		result.LessonsCreated += len(toCreate)
	}
	return nil
}

func (s *RebalanceService) failure() {
	if s.metrics != nil {
		s.metrics.IncRebalanceFailure()
	}
}

func partTitle(title string, part, parts int) string {
	if parts <= 1 {
		return title
	}
	return fmt.Sprintf("%s (Part %d)", title, part)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
