package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/service"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
	"github.com/classflow/classflow-api/pkg/response"
)

type assignmentService interface {
	AutoAssignClass(ctx context.Context, classID string) (*service.AutoAssignResult, error)
	AssignLessonToSession(ctx context.Context, lessonID, sessionID string) error
	ClassTimeline(ctx context.Context, classID string) (*dto.ClassTimeline, error)
}

// AssignmentHandler exposes the pairing engine endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// AutoAssign godoc
// @Summary Recompute lesson pairings for a class
// @Tags Assignments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/auto-assign [post]
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	result, err := h.service.AutoAssignClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AutoAssignResponse{LessonsAssigned: result.Assigned}, nil)
}

// AssignLesson godoc
// @Summary Pin a lesson to a specific session
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.AssignLessonRequest true "Target session"
// @Success 204
// @Router /lessons/{id}/session [put]
func (h *AssignmentHandler) AssignLesson(c *gin.Context) {
	var req dto.AssignLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.AssignLessonToSession(c.Request.Context(), c.Param("id"), req.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timeline godoc
// @Summary Get a class's curriculum against its calendar
// @Tags Assignments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/timeline [get]
func (h *AssignmentHandler) Timeline(c *gin.Context) {
	timeline, err := h.service.ClassTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeline, nil)
}
