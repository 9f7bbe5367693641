package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
)

type assignmentClassStore interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindBlockByID(ctx context.Context, id string) (*models.ClassBlock, error)
	ListBlocks(ctx context.Context, classID string) ([]models.ClassBlock, error)
	UpdateBlockStatus(ctx context.Context, id string, status models.ClassBlockStatus) error
}

type assignmentLessonStore interface {
	ListByClassBlock(ctx context.Context, classBlockID string) ([]models.LessonInstance, error)
	FindByID(ctx context.Context, id string) (*models.LessonInstance, error)
	GetBySession(ctx context.Context, sessionID string) (*models.LessonInstance, error)
	AssignSession(ctx context.Context, lessonID, sessionID string, sessionDateTime time.Time) error
	ClearSession(ctx context.Context, lessonID string) error
}

type assignmentSessionStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error)
	FindByID(ctx context.Context, id string) (*models.SessionInstance, error)
}

type timelineCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type assignmentMetrics interface {
	ObserveAutoAssign(duration time.Duration, assigned int, success bool)
}

// AutoAssignResult reports the outcome of one engine run.
type AutoAssignResult struct {
	Assigned int `json:"assigned"`
}

// AssignmentConfig tunes the timeline cache behaviour.
type AssignmentConfig struct {
	TimelineCacheTTL time.Duration
}

// AssignmentService is the lesson-to-session pairing engine. It recomputes
// pairings for a whole class from the curriculum order and the viable session
// sequence; re-running it after any mutation is safe and expected.
type AssignmentService struct {
	classes  assignmentClassStore
	lessons  assignmentLessonStore
	sessions assignmentSessionStore
	cache    timelineCache
	metrics  assignmentMetrics
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAssignmentService wires the engine's stores. Cache and metrics are
// optional.
func NewAssignmentService(
	classes assignmentClassStore,
	lessons assignmentLessonStore,
	sessions assignmentSessionStore,
	cache timelineCache,
	metrics assignmentMetrics,
	logger *zap.Logger,
	cfg AssignmentConfig,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TimelineCacheTTL <= 0 {
		cfg.TimelineCacheTTL = 5 * time.Minute
	}
	return &AssignmentService{
		classes:  classes,
		lessons:  lessons,
		sessions: sessions,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cfg.TimelineCacheTTL,
	}
}

// AutoAssignClass recomputes the lesson pairings of a class.
//
// Phase one releases every pairing that points at a session that no longer
// exists or is cancelled. Phase two walks the remaining unpaired lessons in
// curriculum order and pairs each with the next free viable session that does
// not precede the previous lesson's session. Lessons that already hold a
// viable session are never moved, so a run with no calendar or curriculum
// changes writes nothing and returns zero.
func (s *AssignmentService) AutoAssignClass(ctx context.Context, classID string) (*AutoAssignResult, error) {
	start := time.Now()
	result, err := s.autoAssign(ctx, classID)
	if s.metrics != nil {
		assigned := 0
		if result != nil {
			assigned = result.Assigned
		}
		s.metrics.ObserveAutoAssign(time.Since(start), assigned, err == nil)
	}
	return result, err
}

func (s *AssignmentService) autoAssign(ctx context.Context, classID string) (*AutoAssignResult, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	blocks, err := s.classes.ListBlocks(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class blocks")
	}

	lessonsByBlock := make(map[string][]models.LessonInstance, len(blocks))
	for _, block := range blocks {
		lessons, err := s.lessons.ListByClassBlock(ctx, block.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class lessons")
		}
		lessonsByBlock[block.ID] = lessons
	}

	allSessions, err := s.sessions.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	sessionByID := make(map[string]models.SessionInstance, len(allSessions))
	for _, session := range allSessions {
		sessionByID[session.ID] = session
	}

	ordered := flattenLessons(blocks, lessonsByBlock)
	changed := 0

	// Phase one: release pairings whose session is gone or cancelled.
	// Clearances happen before any reassignment so a cancellation observed
	// mid-run cannot produce an order-dependent result.
	for _, entry := range ordered {
		if !entry.lesson.Paired() {
			continue
		}
		session, ok := sessionByID[*entry.lesson.SessionID]
		if ok && session.Viable() {
			continue
		}
		if err := s.lessons.ClearSession(ctx, entry.lesson.ID); err != nil {
			return &AutoAssignResult{Assigned: changed}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release stale pairing")
		}
		entry.lesson.SessionID = nil
		entry.lesson.UnlockAt = nil
		changed++
	}

	// Phase two: pair unpaired lessons with free viable sessions, never
	// earlier than the previous lesson's session.
	held := make(map[string]struct{})
	for _, entry := range ordered {
		if entry.lesson.Paired() {
			held[*entry.lesson.SessionID] = struct{}{}
		}
	}
	var free []models.SessionInstance
	for _, session := range allSessions {
		if !session.Viable() {
			continue
		}
		if _, taken := held[session.ID]; taken {
			continue
		}
		free = append(free, session)
	}

	var prevTime time.Time
	next := 0
	for _, entry := range ordered {
		if entry.lesson.Paired() {
			if session, ok := sessionByID[*entry.lesson.SessionID]; ok {
				prevTime = session.DateTime
			}
			continue
		}
		for next < len(free) && free[next].DateTime.Before(prevTime) {
			next++
		}
		if next >= len(free) {
			break
		}
		session := free[next]
		if err := s.lessons.AssignSession(ctx, entry.lesson.ID, session.ID, session.DateTime); err != nil {
			return &AutoAssignResult{Assigned: changed}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist pairing")
		}
		sessionID := session.ID
		unlockAt := session.DateTime
		entry.lesson.SessionID = &sessionID
		entry.lesson.UnlockAt = &unlockAt
		prevTime = session.DateTime
		next++
		changed++
	}

	s.syncBlockStatuses(ctx, blocks, lessonsByBlock, sessionByID)

	if changed > 0 {
		s.invalidateTimeline(ctx, classID)
	}

	s.logger.Debug("auto-assign completed",
		zap.String("class_id", classID),
		zap.Int("assigned", changed),
	)
	return &AutoAssignResult{Assigned: changed}, nil
}

// AssignLessonToSession is the manual pairing override. It clears the current
// holder of the target session, applies the new pairing, then re-runs the
// engine so freed sessions are reconsumed. Clear, assign, reflow: always in
// that order so the session is never double-booked in between.
func (s *AssignmentService) AssignLessonToSession(ctx context.Context, lessonID, sessionID string) error {
	if lessonID == "" || sessionID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "lesson id and session id are required")
	}

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	block, err := s.classes.FindBlockByID(ctx, lesson.ClassBlockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class block")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.ClassID != block.ClassID {
		return appErrors.Clone(appErrors.ErrValidation, "session does not belong to the lesson's class")
	}
	if !session.Viable() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot pair a cancelled session")
	}

	holder, err := s.lessons.GetBySession(ctx, sessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up session holder")
	}
	if holder != nil && holder.ID != lesson.ID {
		if err := s.lessons.ClearSession(ctx, holder.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous holder")
		}
	}

	if err := s.lessons.AssignSession(ctx, lesson.ID, session.ID, session.DateTime); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist manual pairing")
	}
	s.invalidateTimeline(ctx, block.ClassID)

	// Reflow is best-effort relative to the manual assignment itself.
	if _, err := s.autoAssign(ctx, block.ClassID); err != nil {
		s.logger.Error("reflow after manual pairing failed",
			zap.String("class_id", block.ClassID),
			zap.String("lesson_id", lessonID),
			zap.Error(err),
		)
	}
	return nil
}

// ClassTimeline returns the class's curriculum against its calendar, served
// through the cache when one is configured.
func (s *AssignmentService) ClassTimeline(ctx context.Context, classID string) (*dto.ClassTimeline, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}

	key := timelineCacheKey(classID)
	if s.cache != nil {
		var cached dto.ClassTimeline
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timeline cache read failed", zap.String("class_id", classID), zap.Error(err))
		}
	}

	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	blocks, err := s.classes.ListBlocks(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class blocks")
	}
	sessions, err := s.sessions.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	sessionByID := make(map[string]models.SessionInstance, len(sessions))
	for _, session := range sessions {
		sessionByID[session.ID] = session
	}

	timeline := &dto.ClassTimeline{ClassID: classID, GeneratedAt: time.Now().UTC()}
	for _, block := range blocks {
		lessons, err := s.lessons.ListByClassBlock(ctx, block.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class lessons")
		}
		entry := dto.TimelineBlock{Block: block, Lessons: make([]dto.TimelineLesson, 0, len(lessons))}
		for _, lesson := range lessons {
			item := dto.TimelineLesson{Lesson: lesson}
			if lesson.Paired() {
				if session, ok := sessionByID[*lesson.SessionID]; ok {
					cp := session
					item.Session = &cp
				}
			}
			entry.Lessons = append(entry.Lessons, item)
		}
		timeline.Blocks = append(timeline.Blocks, entry)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, timeline, s.cacheTTL); err != nil {
			s.logger.Warn("timeline cache write failed", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return timeline, nil
}

// syncBlockStatuses re-derives block lifecycle states from the pairings: every
// block before the first one still holding future or unpaired lessons is
// COMPLETED, that one is CURRENT, the rest are UPCOMING. Status writes are
// best-effort; a failed write self-heals on the next run.
func (s *AssignmentService) syncBlockStatuses(
	ctx context.Context,
	blocks []models.ClassBlock,
	lessonsByBlock map[string][]models.LessonInstance,
	sessionByID map[string]models.SessionInstance,
) {
	if len(blocks) == 0 {
		return
	}
	now := time.Now().UTC()

	currentIndex := -1
	for i, block := range blocks {
		if blockHasFutureLesson(lessonsByBlock[block.ID], sessionByID, now) {
			currentIndex = i
			break
		}
	}
	if currentIndex == -1 {
		currentIndex = len(blocks) - 1
	}

	for i, block := range blocks {
		desired := models.ClassBlockStatusUpcoming
		switch {
		case i < currentIndex:
			desired = models.ClassBlockStatusCompleted
		case i == currentIndex:
			desired = models.ClassBlockStatusCurrent
		}
		if block.Status == desired {
			continue
		}
		if err := s.classes.UpdateBlockStatus(ctx, block.ID, desired); err != nil {
			s.logger.Warn("block status sync failed",
				zap.String("class_block_id", block.ID),
				zap.String("desired", string(desired)),
				zap.Error(err),
			)
		}
	}
}

func blockHasFutureLesson(lessons []models.LessonInstance, sessionByID map[string]models.SessionInstance, now time.Time) bool {
	for _, lesson := range lessons {
		if !lesson.Paired() {
			return true
		}
		session, ok := sessionByID[*lesson.SessionID]
		if !ok {
			return true
		}
		if !session.DateTime.Before(now) {
			return true
		}
	}
	return false
}

func (s *AssignmentService) invalidateTimeline(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, timelineCacheKey(classID)); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}

func timelineCacheKey(classID string) string {
	return fmt.Sprintf("timeline:%s", classID)
}

type lessonEntry struct {
	lesson *models.LessonInstance
}

// flattenLessons builds the single total curriculum order for a class: blocks
// in run order, lessons by order index within each block. Entries point into
// the per-block slices so phase one's clearances are visible to phase two.
func flattenLessons(blocks []models.ClassBlock, lessonsByBlock map[string][]models.LessonInstance) []lessonEntry {
	var ordered []lessonEntry
	for _, block := range blocks {
		lessons := lessonsByBlock[block.ID]
		for i := range lessons {
			ordered = append(ordered, lessonEntry{lesson: &lessons[i]})
		}
	}
	return ordered
}
