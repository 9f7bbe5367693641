package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classflow/classflow-api/internal/models"
)

// LessonDefinitionRepository provides persistence for block template lessons.
type LessonDefinitionRepository struct {
	db *sqlx.DB
}

// NewLessonDefinitionRepository creates a new lesson definition repository.
func NewLessonDefinitionRepository(db *sqlx.DB) *LessonDefinitionRepository {
	return &LessonDefinitionRepository{db: db}
}

const lessonDefinitionColumns = "id, block_id, title, summary, order_index, slide_url, make_up_instructions, estimated_meeting_count, created_at, updated_at"

// ListByBlock returns the definitions of a block template in curriculum order.
func (r *LessonDefinitionRepository) ListByBlock(ctx context.Context, blockID string) ([]models.LessonDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_definitions WHERE block_id = $1 ORDER BY order_index ASC, id ASC", lessonDefinitionColumns)
	var definitions []models.LessonDefinition
	if err := r.db.SelectContext(ctx, &definitions, query, blockID); err != nil {
		return nil, fmt.Errorf("list lesson definitions by block: %w", err)
	}
	return definitions, nil
}

// FindByID loads a definition by id.
func (r *LessonDefinitionRepository) FindByID(ctx context.Context, id string) (*models.LessonDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_definitions WHERE id = $1", lessonDefinitionColumns)
	var definition models.LessonDefinition
	if err := r.db.GetContext(ctx, &definition, query, id); err != nil {
		return nil, err
	}
	return &definition, nil
}

// ExistsOrderIndex reports whether a definition already occupies the order
// index within the block.
func (r *LessonDefinitionRepository) ExistsOrderIndex(ctx context.Context, blockID string, orderIndex int, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM lesson_definitions WHERE block_id = $1 AND order_index = $2 AND id <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, blockID, orderIndex, excludeID); err != nil {
		return false, fmt.Errorf("check lesson definition order index: %w", err)
	}
	return exists, nil
}

// Create stores a new definition.
func (r *LessonDefinitionRepository) Create(ctx context.Context, definition *models.LessonDefinition) error {
	if definition.ID == "" {
		definition.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = now
	}
	definition.UpdatedAt = now

	const query = `INSERT INTO lesson_definitions (id, block_id, title, summary, order_index, slide_url, make_up_instructions, estimated_meeting_count, created_at, updated_at) VALUES (:id, :block_id, :title, :summary, :order_index, :slide_url, :make_up_instructions, :estimated_meeting_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, definition); err != nil {
		return fmt.Errorf("create lesson definition: %w", err)
	}
	return nil
}

// Update modifies an existing definition.
func (r *LessonDefinitionRepository) Update(ctx context.Context, definition *models.LessonDefinition) error {
	definition.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_definitions SET title = :title, summary = :summary, order_index = :order_index, slide_url = :slide_url, make_up_instructions = :make_up_instructions, estimated_meeting_count = :estimated_meeting_count, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, definition); err != nil {
		return fmt.Errorf("update lesson definition: %w", err)
	}
	return nil
}

// Delete removes a definition by id.
func (r *LessonDefinitionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lesson_definitions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson definition: %w", err)
	}
	return nil
}
