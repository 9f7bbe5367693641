package dto

// InstantiateBlockRequest materializes a block template into a class.
type InstantiateBlockRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	BlockID   string `json:"block_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CreateLessonFromDefinitionRequest copies one definition's lesson(s) into a
// class block.
type CreateLessonFromDefinitionRequest struct {
	ClassBlockID       string `json:"class_block_id" validate:"required"`
	LessonDefinitionID string `json:"lesson_definition_id" validate:"required"`
}

// CreateAdHocLessonRequest adds a class-only lesson with no template link.
type CreateAdHocLessonRequest struct {
	ClassBlockID       string  `json:"class_block_id" validate:"required"`
	Title              string  `json:"title" validate:"required"`
	Summary            *string `json:"summary"`
	OrderIndex         int     `json:"order_index" validate:"gte=0"`
	SlideURL           *string `json:"slide_url" validate:"omitempty,url"`
	MakeUpInstructions *string `json:"make_up_instructions"`
}

// UpdateLessonContentRequest edits the content fields of a lesson instance.
// Nil fields are left untouched.
type UpdateLessonContentRequest struct {
	Title              *string `json:"title"`
	Summary            *string `json:"summary"`
	OrderIndex         *int    `json:"order_index" validate:"omitempty,gte=0"`
	SlideURL           *string `json:"slide_url" validate:"omitempty,url"`
	MakeUpInstructions *string `json:"make_up_instructions"`
}

// AssignLessonRequest pins a lesson to a specific session.
type AssignLessonRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
