package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classflow/classflow-api/internal/models"
)

// SessionRepository provides persistence for the class session calendar.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, class_id, date_time, status, substitute_coach_id, zoom_link_snapshot, created_at, updated_at"

// ListByClass returns every session of a class in calendar order.
func (r *SessionRepository) ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE class_id = $1 ORDER BY date_time ASC, id ASC", sessionColumns)
	var sessions []models.SessionInstance
	if err := r.db.SelectContext(ctx, &sessions, query, classID); err != nil {
		return nil, fmt.Errorf("list sessions by class: %w", err)
	}
	return sessions, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.SessionInstance
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateBatch inserts generated sessions, assigning ids and timestamps.
func (r *SessionRepository) CreateBatch(ctx context.Context, sessions []models.SessionInstance) ([]models.SessionInstance, error) {
	now := time.Now().UTC()
	for i := range sessions {
		payload := sessions[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		const query = `INSERT INTO sessions (id, class_id, date_time, status, substitute_coach_id, zoom_link_snapshot, created_at, updated_at) VALUES (:id, :class_id, :date_time, :status, :substitute_coach_id, :zoom_link_snapshot, :created_at, :updated_at)`
		if _, err := r.db.NamedExecContext(ctx, query, &payload); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		sessions[i] = payload
	}
	return sessions, nil
}

// UpdateStatus transitions a session's lifecycle state.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	const query = `UPDATE sessions SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// Reschedule moves a session to a new date.
func (r *SessionRepository) Reschedule(ctx context.Context, id string, dateTime time.Time) error {
	const query = `UPDATE sessions SET date_time = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, dateTime, time.Now().UTC()); err != nil {
		return fmt.Errorf("reschedule session: %w", err)
	}
	return nil
}

// AssignSubstitute records or clears a substitute coach for the session.
func (r *SessionRepository) AssignSubstitute(ctx context.Context, id string, substituteCoachID *string) error {
	const query = `UPDATE sessions SET substitute_coach_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, substituteCoachID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign substitute coach: %w", err)
	}
	return nil
}
