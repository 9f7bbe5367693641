package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/service"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
	"github.com/classflow/classflow-api/pkg/response"
)

// LessonHandler exposes per-class lesson and block materialization endpoints.
type LessonHandler struct {
	service *service.LessonService
}

// NewLessonHandler constructs a lesson handler.
func NewLessonHandler(svc *service.LessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// InstantiateBlock godoc
// @Summary Materialize a block template into a class
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.InstantiateBlockRequest true "Block placement"
// @Success 201 {object} response.Envelope
// @Router /class-blocks [post]
func (h *LessonHandler) InstantiateBlock(c *gin.Context) {
	var req dto.InstantiateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.InstantiateBlock(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListByClassBlock godoc
// @Summary List a class block's lessons in curriculum order
// @Tags Lessons
// @Produce json
// @Param id path string true "Class block ID"
// @Success 200 {object} response.Envelope
// @Router /class-blocks/{id}/lessons [get]
func (h *LessonHandler) ListByClassBlock(c *gin.Context) {
	lessons, err := h.service.ListByClassBlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// DeleteBlock godoc
// @Summary Remove a class block and its lessons
// @Tags Lessons
// @Produce json
// @Param id path string true "Class block ID"
// @Success 204
// @Router /class-blocks/{id} [delete]
func (h *LessonHandler) DeleteBlock(c *gin.Context) {
	if err := h.service.DeleteBlock(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateFromDefinition godoc
// @Summary Copy a definition's lesson parts into a class block
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonFromDefinitionRequest true "Definition reference"
// @Success 201 {object} response.Envelope
// @Router /lessons/from-definition [post]
func (h *LessonHandler) CreateFromDefinition(c *gin.Context) {
	var req dto.CreateLessonFromDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lessons, err := h.service.CreateFromDefinition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lessons)
}

// CreateAdHoc godoc
// @Summary Add a class-only lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateAdHocLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) CreateAdHoc(c *gin.Context) {
	var req dto.CreateAdHocLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.service.CreateAdHoc(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// UpdateContent godoc
// @Summary Edit a lesson instance's content
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonContentRequest true "Content changes"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [patch]
func (h *LessonHandler) UpdateContent(c *gin.Context) {
	var req dto.UpdateLessonContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.service.UpdateContent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Remove a lesson instance
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
