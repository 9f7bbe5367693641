package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/service"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
	"github.com/classflow/classflow-api/pkg/response"
)

// CurriculumHandler exposes the block template and lesson definition
// endpoints.
type CurriculumHandler struct {
	service    *service.CurriculumService
	rebalancer *service.RebalanceService
}

// NewCurriculumHandler constructs a curriculum handler.
func NewCurriculumHandler(svc *service.CurriculumService, rebalancer *service.RebalanceService) *CurriculumHandler {
	return &CurriculumHandler{service: svc, rebalancer: rebalancer}
}

// ListBlocks godoc
// @Summary List block templates in curriculum order
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocks [get]
func (h *CurriculumHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.service.ListBlocks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// GetBlock godoc
// @Summary Get a block template with its lesson definitions
// @Tags Curriculum
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [get]
func (h *CurriculumHandler) GetBlock(c *gin.Context) {
	block, definitions, err := h.service.GetBlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"block": block, "lessons": definitions}, nil)
}

// CreateBlock godoc
// @Summary Add a block template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Router /blocks [post]
func (h *CurriculumHandler) CreateBlock(c *gin.Context) {
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	block, err := h.service.CreateBlock(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// UpdateBlock godoc
// @Summary Edit a block template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param payload body dto.UpdateBlockRequest true "Block changes"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [put]
func (h *CurriculumHandler) UpdateBlock(c *gin.Context) {
	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	block, err := h.service.UpdateBlock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, block, nil)
}

// DeleteBlock godoc
// @Summary Remove a block template
// @Tags Curriculum
// @Produce json
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *CurriculumHandler) DeleteBlock(c *gin.Context) {
	if err := h.service.DeleteBlock(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Rebalance godoc
// @Summary Sync live classes to a block template now
// @Tags Curriculum
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id}/rebalance [post]
func (h *CurriculumHandler) Rebalance(c *gin.Context) {
	result, err := h.rebalancer.SyncClassesForBlockTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CreateDefinition godoc
// @Summary Author a lesson inside a block template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonDefinitionRequest true "Definition payload"
// @Success 201 {object} response.Envelope
// @Router /lesson-definitions [post]
func (h *CurriculumHandler) CreateDefinition(c *gin.Context) {
	var req dto.CreateLessonDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	definition, err := h.service.CreateDefinition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, definition)
}

// UpdateDefinition godoc
// @Summary Edit an authored lesson
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Lesson definition ID"
// @Param payload body dto.UpdateLessonDefinitionRequest true "Definition changes"
// @Success 200 {object} response.Envelope
// @Router /lesson-definitions/{id} [put]
func (h *CurriculumHandler) UpdateDefinition(c *gin.Context) {
	var req dto.UpdateLessonDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	definition, err := h.service.UpdateDefinition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

// DeleteDefinition godoc
// @Summary Remove an authored lesson
// @Tags Curriculum
// @Produce json
// @Param id path string true "Lesson definition ID"
// @Success 204
// @Router /lesson-definitions/{id} [delete]
func (h *CurriculumHandler) DeleteDefinition(c *gin.Context) {
	if err := h.service.DeleteDefinition(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
