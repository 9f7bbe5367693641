package models

import "time"

// SessionStatus is the lifecycle state of a scheduled class meeting.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// SessionInstance is a single class meeting on the calendar, ordered within a
// class by DateTime.
type SessionInstance struct {
	ID                string        `db:"id" json:"id"`
	ClassID           string        `db:"class_id" json:"class_id"`
	DateTime          time.Time     `db:"date_time" json:"date_time"`
	Status            SessionStatus `db:"status" json:"status"`
	SubstituteCoachID *string       `db:"substitute_coach_id" json:"substitute_coach_id,omitempty"`
	ZoomLinkSnapshot  *string       `db:"zoom_link_snapshot" json:"zoom_link_snapshot,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// Viable reports whether the session may hold a lesson pairing. COMPLETED
// sessions stay viable so past pairings are not disturbed.
func (s SessionInstance) Viable() bool {
	return s.Status != SessionStatusCancelled
}
