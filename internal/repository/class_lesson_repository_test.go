package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/classflow/classflow-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassLessonRepositoryAssignSession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	at := time.Date(2026, 9, 7, 17, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_lessons SET session_id = $2, unlock_at = $3")).
		WithArgs("lesson-1", "session-1", at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AssignSession(context.Background(), "lesson-1", "session-1", at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassLessonRepositoryClearSession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_lessons SET session_id = NULL, unlock_at = NULL")).
		WithArgs("lesson-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearSession(context.Background(), "lesson-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassLessonRepositoryClearSessionsSkipsEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	require.NoError(t, repo.ClearSessions(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassLessonRepositoryListByClassBlock(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "class_block_id", "lesson_definition_id", "title", "summary", "order_index", "slide_url", "make_up_instructions", "session_id", "unlock_at", "created_at", "updated_at"}).
		AddRow("lesson-1", "cb-1", "def-1", "Variables", nil, 1001, nil, nil, "session-1", now, now, now).
		AddRow("lesson-2", "cb-1", nil, "Guest talk", nil, 2001, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_block_id, lesson_definition_id")).
		WithArgs("cb-1").
		WillReturnRows(rows)

	lessons, err := repo.ListByClassBlock(context.Background(), "cb-1")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	require.Equal(t, "lesson-1", lessons[0].ID)
	require.True(t, lessons[0].Paired())
	require.False(t, lessons[1].Paired())
	require.Nil(t, lessons[1].LessonDefinitionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassLessonRepositoryCreateBatchFillsIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_lessons")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_lessons")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.CreateBatch(context.Background(), []models.LessonInstance{
		{ClassBlockID: "cb-1", Title: "Loops (Part 1)", OrderIndex: 2001},
		{ClassBlockID: "cb-1", Title: "Loops (Part 2)", OrderIndex: 2002},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.NotEmpty(t, created[0].ID)
	require.NotEmpty(t, created[1].ID)
	require.False(t, created[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassLessonRepositoryDetachDefinition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassLessonRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_lessons SET lesson_definition_id = NULL")).
		WithArgs("lesson-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DetachDefinition(context.Background(), "lesson-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
