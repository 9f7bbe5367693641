package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/classflow/classflow-api/internal/models"
)

func TestSessionRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "class_id", "date_time", "status", "substitute_coach_id", "zoom_link_snapshot", "created_at", "updated_at"}).
		AddRow("session-1", "class-1", now, "SCHEDULED", nil, nil, now, now).
		AddRow("session-2", "class-1", now.AddDate(0, 0, 7), "CANCELLED", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, date_time, status")).
		WithArgs("class-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.True(t, sessions[0].Viable())
	require.False(t, sessions[1].Viable())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateBatchFillsIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.CreateBatch(context.Background(), []models.SessionInstance{
		{ClassID: "class-1", DateTime: time.Date(2026, 9, 7, 17, 0, 0, 0, time.UTC), Status: models.SessionStatusScheduled},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.NotEmpty(t, created[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET status = $2")).
		WithArgs("session-1", models.SessionStatusCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "session-1", models.SessionStatusCancelled))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryReschedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	moved := time.Date(2026, 9, 21, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET date_time = $2")).
		WithArgs("session-1", moved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reschedule(context.Background(), "session-1", moved))
	require.NoError(t, mock.ExpectationsWereMet())
}
