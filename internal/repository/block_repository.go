package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classflow/classflow-api/internal/models"
)

// BlockRepository provides persistence for curriculum block templates.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

const blockColumns = "id, name, order_index, estimated_sessions, created_at, updated_at"

// List returns every block template in curriculum order.
func (r *BlockRepository) List(ctx context.Context) ([]models.Block, error) {
	query := fmt.Sprintf("SELECT %s FROM blocks ORDER BY order_index ASC, id ASC", blockColumns)
	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// FindByID loads a block template by id.
func (r *BlockRepository) FindByID(ctx context.Context, id string) (*models.Block, error) {
	query := fmt.Sprintf("SELECT %s FROM blocks WHERE id = $1", blockColumns)
	var block models.Block
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// Create stores a new block template.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	const query = `INSERT INTO blocks (id, name, order_index, estimated_sessions, created_at, updated_at) VALUES (:id, :name, :order_index, :estimated_sessions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Update modifies an existing block template.
func (r *BlockRepository) Update(ctx context.Context, block *models.Block) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blocks SET name = :name, order_index = :order_index, estimated_sessions = :estimated_sessions, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	return nil
}

// Delete removes a block template by id.
func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}
