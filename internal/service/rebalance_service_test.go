package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type rebalanceDefinitionStoreStub struct {
	definitions []models.LessonDefinition
}

func (s *rebalanceDefinitionStoreStub) ListByBlock(_ context.Context, blockID string) ([]models.LessonDefinition, error) {
	var out []models.LessonDefinition
	for _, def := range s.definitions {
		if def.BlockID == blockID {
			out = append(out, def)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

type rebalanceClassStoreStub struct {
	blocks []models.ClassBlock
}

func (s *rebalanceClassStoreStub) ListBlocksByTemplate(_ context.Context, blockID string, activeOnly bool) ([]models.ClassBlock, error) {
	var out []models.ClassBlock
	for _, block := range s.blocks {
		if block.BlockID == nil || *block.BlockID != blockID {
			continue
		}
		if activeOnly && block.Status == models.ClassBlockStatusCompleted {
			continue
		}
		out = append(out, block)
	}
	return out, nil
}

type rebalanceLessonStoreStub struct {
	byBlock  map[string][]models.LessonInstance
	listErr  map[string]error
	created  []models.LessonInstance
	updated  []models.LessonInstance
	detached []string
	deleted  []string
}

func newRebalanceLessonStoreStub() *rebalanceLessonStoreStub {
	return &rebalanceLessonStoreStub{byBlock: map[string][]models.LessonInstance{}, listErr: map[string]error{}}
}

func (s *rebalanceLessonStoreStub) ListByClassBlock(_ context.Context, classBlockID string) ([]models.LessonInstance, error) {
	if err := s.listErr[classBlockID]; err != nil {
		return nil, err
	}
	out := append([]models.LessonInstance(nil), s.byBlock[classBlockID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *rebalanceLessonStoreStub) CreateBatch(_ context.Context, lessons []models.LessonInstance) ([]models.LessonInstance, error) {
	for i := range lessons {
		if lessons[i].ID == "" {
			lessons[i].ID = fmt.Sprintf("created-%d", len(s.created)+i+1)
		}
	}
	s.created = append(s.created, lessons...)
	for _, lesson := range lessons {
		s.byBlock[lesson.ClassBlockID] = append(s.byBlock[lesson.ClassBlockID], lesson)
	}
	return lessons, nil
}

func (s *rebalanceLessonStoreStub) UpdateContent(_ context.Context, lesson *models.LessonInstance) error {
	s.updated = append(s.updated, *lesson)
	return nil
}

func (s *rebalanceLessonStoreStub) DetachDefinition(_ context.Context, lessonID string) error {
	s.detached = append(s.detached, lessonID)
	return nil
}

type classAssignerStub struct {
	calls []string
	err   error
}

func (s *classAssignerStub) AutoAssignClass(_ context.Context, classID string) (*AutoAssignResult, error) {
	s.calls = append(s.calls, classID)
	if s.err != nil {
		return nil, s.err
	}
	return &AutoAssignResult{}, nil
}

type rebalanceMetricsStub struct {
	failures int
}

func (m *rebalanceMetricsStub) IncRebalanceFailure() { m.failures++ }

type rebalanceFixture struct {
	definitions *rebalanceDefinitionStoreStub
	classes     *rebalanceClassStoreStub
	lessons     *rebalanceLessonStoreStub
	assigner    *classAssignerStub
	metrics     *rebalanceMetricsStub
	service     *RebalanceService
}

func newRebalanceFixture() *rebalanceFixture {
	f := &rebalanceFixture{
		definitions: &rebalanceDefinitionStoreStub{},
		classes:     &rebalanceClassStoreStub{},
		lessons:     newRebalanceLessonStoreStub(),
		assigner:    &classAssignerStub{},
		metrics:     &rebalanceMetricsStub{},
	}
	f.service = NewRebalanceService(f.definitions, f.classes, f.lessons, f.assigner, f.metrics, zap.NewNop())
	return f
}

func (f *rebalanceFixture) addDefinition(id, blockID, title string, orderIndex, meetings int) {
	f.definitions.definitions = append(f.definitions.definitions, models.LessonDefinition{
		ID:                    id,
		BlockID:               blockID,
		Title:                 title,
		OrderIndex:            orderIndex,
		EstimatedMeetingCount: meetings,
	})
}

func (f *rebalanceFixture) addClassBlock(id, classID, blockID string, status models.ClassBlockStatus) {
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{
		ID:        id,
		ClassID:   classID,
		BlockID:   &blockID,
		Status:    status,
		StartDate: time.Now().UTC(),
	})
}

func (f *rebalanceFixture) addInstance(id, classBlockID string, definitionID *string, title string, orderIndex int) {
	f.lessons.byBlock[classBlockID] = append(f.lessons.byBlock[classBlockID], models.LessonInstance{
		ID:                 id,
		ClassBlockID:       classBlockID,
		LessonDefinitionID: definitionID,
		Title:              title,
		OrderIndex:         orderIndex,
	})
}

func TestSyncClassesCreatesMissingParts(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Loops", 3, 2)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClassesSynced)
	assert.Equal(t, 2, result.LessonsCreated)

	require.Len(t, f.lessons.created, 2)
	assert.Equal(t, "Loops (Part 1)", f.lessons.created[0].Title)
	assert.Equal(t, "Loops (Part 2)", f.lessons.created[1].Title)
	assert.Equal(t, models.PartOrderIndex(3, 1), f.lessons.created[0].OrderIndex)
	assert.Equal(t, models.PartOrderIndex(3, 2), f.lessons.created[1].OrderIndex)
	require.NotNil(t, f.lessons.created[0].LessonDefinitionID)
	assert.Equal(t, "def-1", *f.lessons.created[0].LessonDefinitionID)

	assert.Equal(t, []string{"class-1"}, f.assigner.calls)
}

func TestSyncClassesSinglePartKeepsPlainTitle(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Variables", 1, 1)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)

	_, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	require.Len(t, f.lessons.created, 1)
	assert.Equal(t, "Variables", f.lessons.created[0].Title)
	assert.Equal(t, models.PartOrderIndex(1, 1), f.lessons.created[0].OrderIndex)
}

func TestSyncClassesUpdatesChangedContent(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Functions", 2, 1)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)
	f.addInstance("li-1", "cb-1", stringPtr("def-1"), "Old Title", models.PartOrderIndex(2, 1))

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonsUpdated)
	assert.Equal(t, 0, result.LessonsCreated)

	require.Len(t, f.lessons.updated, 1)
	assert.Equal(t, "li-1", f.lessons.updated[0].ID)
	assert.Equal(t, "Functions", f.lessons.updated[0].Title)
}

func TestSyncClassesSkipsUnchangedInstances(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Functions", 2, 1)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)
	f.addInstance("li-1", "cb-1", stringPtr("def-1"), "Functions", models.PartOrderIndex(2, 1))

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.LessonsUpdated)
	assert.Empty(t, f.lessons.updated)
}

func TestSyncClassesDetachesRemovedDefinitions(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Kept", 1, 1)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)
	f.addInstance("li-kept", "cb-1", stringPtr("def-1"), "Kept", models.PartOrderIndex(1, 1))
	f.addInstance("li-removed", "cb-1", stringPtr("def-gone"), "Removed", models.PartOrderIndex(5, 1))
	f.addInstance("li-adhoc", "cb-1", nil, "Ad hoc", 9001)

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonsDetached)
	assert.Equal(t, []string{"li-removed"}, f.lessons.detached)
}

func TestSyncClassesDetachesSurplusParts(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Recursion", 4, 1)
	f.addClassBlock("cb-1", "class-1", "block-1", models.ClassBlockStatusCurrent)
	f.addInstance("li-p1", "cb-1", stringPtr("def-1"), "Recursion", models.PartOrderIndex(4, 1))
	f.addInstance("li-p2", "cb-1", stringPtr("def-1"), "Recursion (Part 2)", models.PartOrderIndex(4, 2))

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonsDetached)
	assert.Equal(t, []string{"li-p2"}, f.lessons.detached)
}

func TestSyncClassesSkipsCompletedBlocks(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Loops", 1, 1)
	f.addClassBlock("cb-done", "class-1", "block-1", models.ClassBlockStatusCompleted)

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ClassesSynced)
	assert.Empty(t, f.lessons.created)
	assert.Empty(t, f.assigner.calls)
}

func TestSyncClassesContinuesPastFailingClass(t *testing.T) {
	f := newRebalanceFixture()
	f.addDefinition("def-1", "block-1", "Loops", 1, 1)
	f.addClassBlock("cb-bad", "class-bad", "block-1", models.ClassBlockStatusCurrent)
	f.addClassBlock("cb-good", "class-good", "block-1", models.ClassBlockStatusCurrent)
	f.lessons.listErr["cb-bad"] = errors.New("connection reset")

	result, err := f.service.SyncClassesForBlockTemplate(context.Background(), "block-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClassesSynced)
	assert.Equal(t, 1, f.metrics.failures)
	assert.Equal(t, []string{"class-good"}, f.assigner.calls)
}

func TestSyncClassesRequiresBlockID(t *testing.T) {
	f := newRebalanceFixture()

	_, err := f.service.SyncClassesForBlockTemplate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
