package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

func (s *assignmentClassStoreStub) CreateBlock(_ context.Context, block *models.ClassBlock) error {
	if block.ID == "" {
		block.ID = fmt.Sprintf("cb-%d", len(s.blocks)+1)
	}
	s.blocks = append(s.blocks, *block)
	return nil
}

func (s *assignmentClassStoreStub) DeleteBlock(_ context.Context, id string) error {
	for i, block := range s.blocks {
		if block.ID == id {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *rebalanceLessonStoreStub) FindByID(_ context.Context, id string) (*models.LessonInstance, error) {
	for _, lessons := range s.byBlock {
		for _, lesson := range lessons {
			if lesson.ID == id {
				cp := lesson
				return &cp, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (s *rebalanceLessonStoreStub) ExistsOrderIndex(_ context.Context, classBlockID string, orderIndex int) (bool, error) {
	for _, lesson := range s.byBlock[classBlockID] {
		if lesson.OrderIndex == orderIndex {
			return true, nil
		}
	}
	return false, nil
}

func (s *rebalanceLessonStoreStub) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	for blockID, lessons := range s.byBlock {
		for i, lesson := range lessons {
			if lesson.ID == id {
				s.byBlock[blockID] = append(lessons[:i], lessons[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s *rebalanceDefinitionStoreStub) FindByID(_ context.Context, id string) (*models.LessonDefinition, error) {
	for _, def := range s.definitions {
		if def.ID == id {
			cp := def
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type lessonFixture struct {
	classes     *assignmentClassStoreStub
	lessons     *rebalanceLessonStoreStub
	definitions *rebalanceDefinitionStoreStub
	trigger     *triggerStub
	cache       *timelineCacheStub
	service     *LessonService
}

func newLessonFixture() *lessonFixture {
	f := &lessonFixture{
		classes:     &assignmentClassStoreStub{classes: map[string]models.Class{}},
		lessons:     newRebalanceLessonStoreStub(),
		definitions: &rebalanceDefinitionStoreStub{},
		trigger:     &triggerStub{},
		cache:       newTimelineCacheStub(),
	}
	f.service = NewLessonService(f.classes, f.lessons, f.definitions, f.trigger, f.cache, nil, zap.NewNop())
	return f
}

func TestInstantiateBlockMaterializesTemplate(t *testing.T) {
	f := newLessonFixture()
	f.classes.classes["class-1"] = models.Class{ID: "class-1"}
	f.definitions.definitions = append(f.definitions.definitions,
		models.LessonDefinition{ID: "def-1", BlockID: "block-1", Title: "Variables", OrderIndex: 1, EstimatedMeetingCount: 1},
		models.LessonDefinition{ID: "def-2", BlockID: "block-1", Title: "Loops", OrderIndex: 2, EstimatedMeetingCount: 2},
	)

	result, err := f.service.InstantiateBlock(context.Background(), dto.InstantiateBlockRequest{
		ClassID:   "class-1",
		BlockID:   "block-1",
		StartDate: "2026-09-01",
		EndDate:   "2026-10-31",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClassBlockStatusUpcoming, result.Block.Status)
	require.NotNil(t, result.Block.BlockID)
	assert.Equal(t, "block-1", *result.Block.BlockID)

	require.Len(t, result.Lessons, 3)
	assert.Equal(t, "Variables", result.Lessons[0].Title)
	assert.Equal(t, "Loops (Part 1)", result.Lessons[1].Title)
	assert.Equal(t, "Loops (Part 2)", result.Lessons[2].Title)
	assert.Equal(t, models.PartOrderIndex(2, 2), result.Lessons[2].OrderIndex)

	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestInstantiateBlockRejectsInvertedDates(t *testing.T) {
	f := newLessonFixture()
	f.classes.classes["class-1"] = models.Class{ID: "class-1"}

	_, err := f.service.InstantiateBlock(context.Background(), dto.InstantiateBlockRequest{
		ClassID:   "class-1",
		BlockID:   "block-1",
		StartDate: "2026-10-31",
		EndDate:   "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateFromDefinitionRejectsForeignTemplate(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1", BlockID: stringPtr("block-1")})
	f.definitions.definitions = append(f.definitions.definitions,
		models.LessonDefinition{ID: "def-other", BlockID: "block-other", Title: "Stray", OrderIndex: 1},
	)

	_, err := f.service.CreateFromDefinition(context.Background(), dto.CreateLessonFromDefinitionRequest{
		ClassBlockID:       "cb-1",
		LessonDefinitionID: "def-other",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateFromDefinitionRejectsTakenOrderIndex(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1", BlockID: stringPtr("block-1")})
	f.definitions.definitions = append(f.definitions.definitions,
		models.LessonDefinition{ID: "def-1", BlockID: "block-1", Title: "Loops", OrderIndex: 2, EstimatedMeetingCount: 1},
	)
	f.lessons.byBlock["cb-1"] = append(f.lessons.byBlock["cb-1"], models.LessonInstance{
		ID:           "li-existing",
		ClassBlockID: "cb-1",
		OrderIndex:   models.PartOrderIndex(2, 1),
	})

	_, err := f.service.CreateFromDefinition(context.Background(), dto.CreateLessonFromDefinitionRequest{
		ClassBlockID:       "cb-1",
		LessonDefinitionID: "def-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.lessons.created)
}

func TestCreateFromDefinitionCopiesParts(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1", BlockID: stringPtr("block-1")})
	f.definitions.definitions = append(f.definitions.definitions,
		models.LessonDefinition{ID: "def-1", BlockID: "block-1", Title: "Loops", OrderIndex: 2, EstimatedMeetingCount: 2},
	)

	lessons, err := f.service.CreateFromDefinition(context.Background(), dto.CreateLessonFromDefinitionRequest{
		ClassBlockID:       "cb-1",
		LessonDefinitionID: "def-1",
	})
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Loops (Part 1)", lessons[0].Title)
	require.NotNil(t, lessons[0].LessonDefinitionID)
	assert.Equal(t, "def-1", *lessons[0].LessonDefinitionID)
	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestCreateAdHocLesson(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})

	lesson, err := f.service.CreateAdHoc(context.Background(), dto.CreateAdHocLessonRequest{
		ClassBlockID: "cb-1",
		Title:        "Guest talk",
		OrderIndex:   7500,
	})
	require.NoError(t, err)
	assert.Nil(t, lesson.LessonDefinitionID)
	assert.Equal(t, "Guest talk", lesson.Title)
	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestCreateAdHocLessonRejectsTakenOrderIndex(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})
	f.lessons.byBlock["cb-1"] = append(f.lessons.byBlock["cb-1"], models.LessonInstance{
		ID:           "li-existing",
		ClassBlockID: "cb-1",
		OrderIndex:   7500,
	})

	_, err := f.service.CreateAdHoc(context.Background(), dto.CreateAdHocLessonRequest{
		ClassBlockID: "cb-1",
		Title:        "Guest talk",
		OrderIndex:   7500,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateContentReorderRerunsEngine(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})
	f.lessons.byBlock["cb-1"] = append(f.lessons.byBlock["cb-1"], models.LessonInstance{
		ID:           "li-1",
		ClassBlockID: "cb-1",
		Title:        "Loops",
		OrderIndex:   1000,
	})

	updated, err := f.service.UpdateContent(context.Background(), "li-1", dto.UpdateLessonContentRequest{
		OrderIndex: intPtr(4000),
	})
	require.NoError(t, err)
	assert.Equal(t, 4000, updated.OrderIndex)
	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestUpdateContentTitleOnlySkipsEngine(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})
	f.lessons.byBlock["cb-1"] = append(f.lessons.byBlock["cb-1"], models.LessonInstance{
		ID:           "li-1",
		ClassBlockID: "cb-1",
		Title:        "Loops",
		OrderIndex:   1000,
	})
	f.cache.entries["timeline:class-1"] = []byte(`{}`)

	updated, err := f.service.UpdateContent(context.Background(), "li-1", dto.UpdateLessonContentRequest{
		Title: stringPtr("Loops, revisited"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Loops, revisited", updated.Title)
	assert.Empty(t, f.trigger.autoAssigns)
	assert.Contains(t, f.cache.deletes, "timeline:class-1")
}

func TestDeleteLessonRerunsEngine(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})
	f.lessons.byBlock["cb-1"] = append(f.lessons.byBlock["cb-1"], models.LessonInstance{
		ID:           "li-1",
		ClassBlockID: "cb-1",
		OrderIndex:   1000,
	})

	err := f.service.Delete(context.Background(), "li-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"li-1"}, f.lessons.deleted)
	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestDeleteBlockRerunsEngine(t *testing.T) {
	f := newLessonFixture()
	f.classes.blocks = append(f.classes.blocks, models.ClassBlock{ID: "cb-1", ClassID: "class-1"})

	err := f.service.DeleteBlock(context.Background(), "cb-1")
	require.NoError(t, err)
	assert.Empty(t, f.classes.blocks)
	assert.Equal(t, []string{"class-1"}, f.trigger.autoAssigns)
}

func TestDeleteLessonUnknownLesson(t *testing.T) {
	f := newLessonFixture()

	err := f.service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func intPtr(i int) *int { return &i }
