package models

import "time"

// Block is a named, ordered group of curriculum lessons at the template level.
type Block struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	OrderIndex        int       `db:"order_index" json:"order_index"`
	EstimatedSessions int       `db:"estimated_sessions" json:"estimated_sessions"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// LessonDefinition is the authored, reusable lesson content within a block
// template. EstimatedMeetingCount drives multi-part materialization: a
// definition estimated at N meetings becomes N lesson instances per class.
type LessonDefinition struct {
	ID                    string    `db:"id" json:"id"`
	BlockID               string    `db:"block_id" json:"block_id"`
	Title                 string    `db:"title" json:"title"`
	Summary               *string   `db:"summary" json:"summary,omitempty"`
	OrderIndex            int       `db:"order_index" json:"order_index"`
	SlideURL              *string   `db:"slide_url" json:"slide_url,omitempty"`
	MakeUpInstructions    *string   `db:"make_up_instructions" json:"make_up_instructions,omitempty"`
	EstimatedMeetingCount int       `db:"estimated_meeting_count" json:"estimated_meeting_count"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// PartCount normalises the estimated meeting count to at least one part.
func (d LessonDefinition) PartCount() int {
	if d.EstimatedMeetingCount < 1 {
		return 1
	}
	return d.EstimatedMeetingCount
}
