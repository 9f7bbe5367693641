package models

import "time"

// Class is a cohort following a curriculum over a calendar of sessions.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	ZoomLink  *string   `db:"zoom_link" json:"zoom_link,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassBlockStatus tracks where a materialized block sits in the class's run.
type ClassBlockStatus string

const (
	ClassBlockStatusUpcoming  ClassBlockStatus = "UPCOMING"
	ClassBlockStatusCurrent   ClassBlockStatus = "CURRENT"
	ClassBlockStatusCompleted ClassBlockStatus = "COMPLETED"
)

// ClassBlock is the per-class materialization of a block template. BlockID is
// nil for ad hoc blocks that were never instantiated from a template.
type ClassBlock struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	BlockID   *string          `db:"block_id" json:"block_id,omitempty"`
	StartDate time.Time        `db:"start_date" json:"start_date"`
	EndDate   time.Time        `db:"end_date" json:"end_date"`
	Status    ClassBlockStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
