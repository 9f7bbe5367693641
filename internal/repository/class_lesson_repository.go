package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/classflow/classflow-api/internal/models"
)

// ClassLessonRepository provides persistence for per-class lesson instances,
// including the session pairing column the auto-assign engine mutates.
type ClassLessonRepository struct {
	db *sqlx.DB
}

// NewClassLessonRepository creates a new class lesson repository.
func NewClassLessonRepository(db *sqlx.DB) *ClassLessonRepository {
	return &ClassLessonRepository{db: db}
}

const classLessonColumns = "id, class_block_id, lesson_definition_id, title, summary, order_index, slide_url, make_up_instructions, session_id, unlock_at, created_at, updated_at"

// ListByClassBlock returns the lessons of a class block in curriculum order.
func (r *ClassLessonRepository) ListByClassBlock(ctx context.Context, classBlockID string) ([]models.LessonInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM class_lessons WHERE class_block_id = $1 ORDER BY order_index ASC, id ASC", classLessonColumns)
	var lessons []models.LessonInstance
	if err := r.db.SelectContext(ctx, &lessons, query, classBlockID); err != nil {
		return nil, fmt.Errorf("list class lessons by block: %w", err)
	}
	return lessons, nil
}

// FindByID loads a lesson instance by id.
func (r *ClassLessonRepository) FindByID(ctx context.Context, id string) (*models.LessonInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM class_lessons WHERE id = $1", classLessonColumns)
	var lesson models.LessonInstance
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetBySession returns the lesson currently holding the session, if any.
func (r *ClassLessonRepository) GetBySession(ctx context.Context, sessionID string) (*models.LessonInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM class_lessons WHERE session_id = $1", classLessonColumns)
	var lesson models.LessonInstance
	if err := r.db.GetContext(ctx, &lesson, query, sessionID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CreateBatch inserts lesson instances, assigning ids and timestamps.
func (r *ClassLessonRepository) CreateBatch(ctx context.Context, lessons []models.LessonInstance) ([]models.LessonInstance, error) {
	now := time.Now().UTC()
	for i := range lessons {
		payload := lessons[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		const query = `INSERT INTO class_lessons (id, class_block_id, lesson_definition_id, title, summary, order_index, slide_url, make_up_instructions, session_id, unlock_at, created_at, updated_at) VALUES (:id, :class_block_id, :lesson_definition_id, :title, :summary, :order_index, :slide_url, :make_up_instructions, :session_id, :unlock_at, :created_at, :updated_at)`
		if _, err := r.db.NamedExecContext(ctx, query, &payload); err != nil {
			return nil, fmt.Errorf("create class lesson: %w", err)
		}
		lessons[i] = payload
	}
	return lessons, nil
}

// AssignSession pairs a lesson to a session. The write touches a single row so
// a failed batch leaves other pairings untouched.
func (r *ClassLessonRepository) AssignSession(ctx context.Context, lessonID, sessionID string, sessionDateTime time.Time) error {
	const query = `UPDATE class_lessons SET session_id = $2, unlock_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, lessonID, sessionID, sessionDateTime, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign session to class lesson: %w", err)
	}
	return nil
}

// ClearSession releases a lesson's pairing.
func (r *ClassLessonRepository) ClearSession(ctx context.Context, lessonID string) error {
	const query = `UPDATE class_lessons SET session_id = NULL, unlock_at = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, lessonID, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear session from class lesson: %w", err)
	}
	return nil
}

// ClearSessions releases every pairing pointing at the given sessions.
func (r *ClassLessonRepository) ClearSessions(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	const query = `UPDATE class_lessons SET session_id = NULL, unlock_at = NULL, updated_at = $2 WHERE session_id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(sessionIDs), time.Now().UTC()); err != nil {
		return fmt.Errorf("clear sessions from class lessons: %w", err)
	}
	return nil
}

// UpdateContent writes the editable content fields of a lesson instance.
func (r *ClassLessonRepository) UpdateContent(ctx context.Context, lesson *models.LessonInstance) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_lessons SET title = :title, summary = :summary, order_index = :order_index, slide_url = :slide_url, make_up_instructions = :make_up_instructions, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update class lesson content: %w", err)
	}
	return nil
}

// DetachDefinition breaks the link to a removed lesson definition while
// leaving the instance (and any student-visible progress) in place.
func (r *ClassLessonRepository) DetachDefinition(ctx context.Context, lessonID string) error {
	const query = `UPDATE class_lessons SET lesson_definition_id = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, lessonID, time.Now().UTC()); err != nil {
		return fmt.Errorf("detach class lesson definition: %w", err)
	}
	return nil
}

// ExistsOrderIndex reports whether a lesson already occupies the order index
// within the class block.
func (r *ClassLessonRepository) ExistsOrderIndex(ctx context.Context, classBlockID string, orderIndex int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM class_lessons WHERE class_block_id = $1 AND order_index = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classBlockID, orderIndex); err != nil {
		return false, fmt.Errorf("check class lesson order index: %w", err)
	}
	return exists, nil
}

// Delete removes a lesson instance by id.
func (r *ClassLessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class lesson: %w", err)
	}
	return nil
}
