package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type sessionClassStore interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type sessionStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error)
	FindByID(ctx context.Context, id string) (*models.SessionInstance, error)
	CreateBatch(ctx context.Context, sessions []models.SessionInstance) ([]models.SessionInstance, error)
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
	Reschedule(ctx context.Context, id string, dateTime time.Time) error
	AssignSubstitute(ctx context.Context, id string, substituteCoachID *string) error
}

type sessionLessonStore interface {
	ClearSessions(ctx context.Context, sessionIDs []string) error
}

type autoAssignTrigger interface {
	TriggerAutoAssign(classID string)
}

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// SessionConfig bounds calendar generation.
type SessionConfig struct {
	MaxGenerateSpan time.Duration
}

// SessionService manages the class session calendar. Every mutation that can
// change which sessions are viable hands the class to the pairing engine
// through the trigger, never inline.
type SessionService struct {
	classes   sessionClassStore
	sessions  sessionStore
	lessons   sessionLessonStore
	trigger   autoAssignTrigger
	cache     timelineCache
	validator *validator.Validate
	logger    *zap.Logger
	maxSpan   time.Duration
}

// NewSessionService wires the session calendar service. Trigger and cache are
// optional.
func NewSessionService(
	classes sessionClassStore,
	sessions sessionStore,
	lessons sessionLessonStore,
	trigger autoAssignTrigger,
	cache timelineCache,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SessionConfig,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxGenerateSpan <= 0 {
		cfg.MaxGenerateSpan = 366 * 24 * time.Hour
	}
	return &SessionService{
		classes:   classes,
		sessions:  sessions,
		lessons:   lessons,
		trigger:   trigger,
		cache:     cache,
		validator: validate,
		logger:    logger,
		maxSpan:   cfg.MaxGenerateSpan,
	}
}

// ListByClass returns a class's sessions in calendar order.
func (s *SessionService) ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	sessions, err := s.sessions.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Generate expands a weekly recurrence into concrete SCHEDULED sessions. The
// zoom link snapshot falls back to the class's link when the request carries
// none.
func (s *SessionService) Generate(ctx context.Context, req dto.GenerateSessionsRequest) ([]models.SessionInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}
	if endDate.Sub(startDate) > s.maxSpan {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("generation window exceeds %s", s.maxSpan))
	}

	startClock, err := time.Parse("15:04", req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
	}

	wanted := make(map[time.Weekday]struct{}, len(req.Days))
	for _, code := range req.Days {
		day, ok := weekdayCodes[code]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday code %q", code))
		}
		wanted[day] = struct{}{}
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	zoomLink := req.ZoomLink
	if zoomLink == nil {
		zoomLink = class.ZoomLink
	}

	var sessions []models.SessionInstance
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if _, ok := wanted[day.Weekday()]; !ok {
			continue
		}
		sessions = append(sessions, models.SessionInstance{
			ClassID:          class.ID,
			DateTime:         time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, time.UTC),
			Status:           models.SessionStatusScheduled,
			ZoomLinkSnapshot: zoomLink,
		})
	}
	if len(sessions) == 0 {
		return []models.SessionInstance{}, nil
	}

	created, err := s.sessions.CreateBatch(ctx, sessions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sessions")
	}
	s.logger.Info("sessions generated",
		zap.String("class_id", class.ID),
		zap.Int("count", len(created)),
	)

	s.afterCalendarChange(ctx, class.ID)
	return created, nil
}

// UpdateStatus transitions a session's lifecycle state. Cancelling releases
// the pairing immediately so the freed slot never lingers until the engine's
// next pass.
func (s *SessionService) UpdateStatus(ctx context.Context, sessionID string, status models.SessionStatus) error {
	switch status {
	case models.SessionStatusScheduled, models.SessionStatusCancelled, models.SessionStatusCompleted:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session status %q", status))
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.UpdateStatus(ctx, sessionID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	if status == models.SessionStatusCancelled {
		if err := s.lessons.ClearSessions(ctx, []string{sessionID}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release cancelled session pairing")
		}
	}

	s.afterCalendarChange(ctx, session.ClassID)
	return nil
}

// Reschedule moves a session to a new moment.
func (s *SessionService) Reschedule(ctx context.Context, sessionID string, dateTime time.Time) error {
	if dateTime.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "date time is required")
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Reschedule(ctx, sessionID, dateTime.UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule session")
	}

	s.afterCalendarChange(ctx, session.ClassID)
	return nil
}

// AssignSubstitute records or clears the substitute coach on a session. The
// pairing is untouched; only the cached timeline needs refreshing.
func (s *SessionService) AssignSubstitute(ctx context.Context, sessionID string, substituteCoachID *string) error {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.AssignSubstitute(ctx, sessionID, substituteCoachID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign substitute coach")
	}

	s.invalidate(ctx, session.ClassID)
	return nil
}

func (s *SessionService) load(ctx context.Context, sessionID string) (*models.SessionInstance, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *SessionService) afterCalendarChange(ctx context.Context, classID string) {
	s.invalidate(ctx, classID)
	if s.trigger != nil {
		s.trigger.TriggerAutoAssign(classID)
	}
}

func (s *SessionService) invalidate(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, timelineCacheKey(classID)); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}
