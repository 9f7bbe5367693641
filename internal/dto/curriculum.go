package dto

// CreateBlockRequest adds a block template to the curriculum.
type CreateBlockRequest struct {
	Name              string `json:"name" validate:"required"`
	OrderIndex        int    `json:"order_index" validate:"gte=0"`
	EstimatedSessions int    `json:"estimated_sessions" validate:"gte=0"`
}

// UpdateBlockRequest edits a block template. Nil fields are left untouched.
type UpdateBlockRequest struct {
	Name              *string `json:"name"`
	OrderIndex        *int    `json:"order_index" validate:"omitempty,gte=0"`
	EstimatedSessions *int    `json:"estimated_sessions" validate:"omitempty,gte=0"`
}

// CreateLessonDefinitionRequest authors a new lesson inside a block template.
type CreateLessonDefinitionRequest struct {
	BlockID               string  `json:"block_id" validate:"required"`
	Title                 string  `json:"title" validate:"required"`
	Summary               *string `json:"summary"`
	OrderIndex            int     `json:"order_index" validate:"gte=0"`
	SlideURL              *string `json:"slide_url" validate:"omitempty,url"`
	MakeUpInstructions    *string `json:"make_up_instructions"`
	EstimatedMeetingCount int     `json:"estimated_meeting_count" validate:"gte=1"`
}

// UpdateLessonDefinitionRequest edits an authored lesson. Nil fields are left
// untouched.
type UpdateLessonDefinitionRequest struct {
	Title                 *string `json:"title"`
	Summary               *string `json:"summary"`
	OrderIndex            *int    `json:"order_index" validate:"omitempty,gte=0"`
	SlideURL              *string `json:"slide_url" validate:"omitempty,url"`
	MakeUpInstructions    *string `json:"make_up_instructions"`
	EstimatedMeetingCount *int    `json:"estimated_meeting_count" validate:"omitempty,gte=1"`
}
