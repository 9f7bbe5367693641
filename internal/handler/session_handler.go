package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/models"
	"github.com/classflow/classflow-api/internal/service"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
	"github.com/classflow/classflow-api/pkg/response"
)

// SessionHandler exposes the class session calendar endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// ListByClass godoc
// @Summary List a class's sessions in calendar order
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *SessionHandler) ListByClass(c *gin.Context) {
	sessions, err := h.service.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Generate godoc
// @Summary Expand a weekly recurrence into scheduled sessions
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSessionsRequest true "Recurrence"
// @Success 201 {object} response.Envelope
// @Router /sessions/generate [post]
func (h *SessionHandler) Generate(c *gin.Context) {
	var req dto.GenerateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sessions, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sessions)
}

// UpdateStatus godoc
// @Summary Transition a session's lifecycle state
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionStatusRequest true "New status"
// @Success 204
// @Router /sessions/{id}/status [patch]
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), models.SessionStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reschedule godoc
// @Summary Move a session to a new moment
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RescheduleSessionRequest true "New date and time"
// @Success 204
// @Router /sessions/{id}/schedule [patch]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Reschedule(c.Request.Context(), c.Param("id"), req.DateTime); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignSubstitute godoc
// @Summary Record or clear a session's substitute coach
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AssignSubstituteRequest true "Substitute coach"
// @Success 204
// @Router /sessions/{id}/substitute [patch]
func (h *SessionHandler) AssignSubstitute(c *gin.Context) {
	var req dto.AssignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.AssignSubstitute(c.Request.Context(), c.Param("id"), req.SubstituteCoachID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
