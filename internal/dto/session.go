package dto

import "time"

// GenerateSessionsRequest describes a weekly recurrence to expand into
// concrete sessions. Days carry two-letter weekday codes (SU..SA) and Time is
// the wall-clock start in HH:MM.
type GenerateSessionsRequest struct {
	ClassID   string   `json:"class_id" validate:"required"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Days      []string `json:"days" validate:"required,min=1,dive,oneof=SU MO TU WE TH FR SA"`
	Time      string   `json:"time" validate:"required,datetime=15:04"`
	ZoomLink  *string  `json:"zoom_link,omitempty" validate:"omitempty,url"`
}

// UpdateSessionStatusRequest transitions a session's lifecycle state.
type UpdateSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED CANCELLED COMPLETED"`
}

// RescheduleSessionRequest moves a session to a new moment.
type RescheduleSessionRequest struct {
	DateTime time.Time `json:"date_time" validate:"required"`
}

// AssignSubstituteRequest records or clears a substitute coach.
type AssignSubstituteRequest struct {
	SubstituteCoachID *string `json:"substitute_coach_id"`
}
