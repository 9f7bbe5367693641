package dto

import (
	"time"

	"github.com/classflow/classflow-api/internal/models"
)

// TimelineLesson pairs a lesson instance with the session it is scheduled on.
type TimelineLesson struct {
	Lesson  models.LessonInstance   `json:"lesson"`
	Session *models.SessionInstance `json:"session,omitempty"`
}

// TimelineBlock groups the lessons of one class block in curriculum order.
type TimelineBlock struct {
	Block   models.ClassBlock `json:"block"`
	Lessons []TimelineLesson  `json:"lessons"`
}

// ClassTimeline is the read model of a class's curriculum against its
// calendar: every block, every lesson, and the pairing state of each.
type ClassTimeline struct {
	ClassID     string          `json:"class_id"`
	Blocks      []TimelineBlock `json:"blocks"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// AutoAssignResponse reports how many pairings an engine run changed.
type AutoAssignResponse struct {
	LessonsAssigned int `json:"lessons_assigned"`
}
