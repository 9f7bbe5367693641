package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classflow/classflow-api/internal/models"
)

// ClassRepository provides persistence for classes and their materialized
// curriculum blocks.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = "id, name, start_date, zoom_link, created_at, updated_at"
const classBlockColumns = "id, class_id, block_id, start_date, end_date, status, created_at, updated_at"

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindBlockByID loads a class block by id.
func (r *ClassRepository) FindBlockByID(ctx context.Context, id string) (*models.ClassBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM class_blocks WHERE id = $1", classBlockColumns)
	var block models.ClassBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ListBlocks returns a class's blocks in run order. Blocks are concatenated by
// start date; the auto-assign engine relies on this ordering.
func (r *ClassRepository) ListBlocks(ctx context.Context, classID string) ([]models.ClassBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM class_blocks WHERE class_id = $1 ORDER BY start_date ASC, created_at ASC, id ASC", classBlockColumns)
	var blocks []models.ClassBlock
	if err := r.db.SelectContext(ctx, &blocks, query, classID); err != nil {
		return nil, fmt.Errorf("list class blocks: %w", err)
	}
	return blocks, nil
}

// ListBlocksByTemplate returns every class block instantiated from a block
// template, optionally restricted to blocks that are not COMPLETED.
func (r *ClassRepository) ListBlocksByTemplate(ctx context.Context, blockID string, activeOnly bool) ([]models.ClassBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM class_blocks WHERE block_id = $1", classBlockColumns)
	args := []interface{}{blockID}
	if activeOnly {
		query += " AND status <> $2"
		args = append(args, models.ClassBlockStatusCompleted)
	}
	query += " ORDER BY class_id ASC, start_date ASC"

	var blocks []models.ClassBlock
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("list class blocks by template: %w", err)
	}
	return blocks, nil
}

// CreateBlock stores a new class block.
func (r *ClassRepository) CreateBlock(ctx context.Context, block *models.ClassBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	const query = `INSERT INTO class_blocks (id, class_id, block_id, start_date, end_date, status, created_at, updated_at) VALUES (:id, :class_id, :block_id, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create class block: %w", err)
	}
	return nil
}

// UpdateBlockStatus transitions a class block's status.
func (r *ClassRepository) UpdateBlockStatus(ctx context.Context, id string, status models.ClassBlockStatus) error {
	const query = `UPDATE class_blocks SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class block status: %w", err)
	}
	return nil
}

// DeleteBlock removes a class block. Dependent lesson instances cascade at the
// database level.
func (r *ClassRepository) DeleteBlock(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class block: %w", err)
	}
	return nil
}
