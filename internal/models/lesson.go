package models

import "time"

// LessonInstance is a per-class copy of a lesson definition, pairable to a
// session. SessionID is the pairing; at most one instance may hold a given
// session. Content fields are denormalized at instantiation and editable
// independently of the definition afterwards.
type LessonInstance struct {
	ID                 string     `db:"id" json:"id"`
	ClassBlockID       string     `db:"class_block_id" json:"class_block_id"`
	LessonDefinitionID *string    `db:"lesson_definition_id" json:"lesson_definition_id,omitempty"`
	Title              string     `db:"title" json:"title"`
	Summary            *string    `db:"summary" json:"summary,omitempty"`
	OrderIndex         int        `db:"order_index" json:"order_index"`
	SlideURL           *string    `db:"slide_url" json:"slide_url,omitempty"`
	MakeUpInstructions *string    `db:"make_up_instructions" json:"make_up_instructions,omitempty"`
	SessionID          *string    `db:"session_id" json:"session_id,omitempty"`
	UnlockAt           *time.Time `db:"unlock_at" json:"unlock_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Paired reports whether the lesson currently holds a session.
func (l LessonInstance) Paired() bool {
	return l.SessionID != nil && *l.SessionID != ""
}

// PartOrderIndex spaces definition order indexes so multi-part lessons slot
// between neighbouring definitions without collisions.
func PartOrderIndex(definitionOrder, part int) int {
	return definitionOrder*1000 + part
}
