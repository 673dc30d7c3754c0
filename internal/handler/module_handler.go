package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/service"
)

// ModuleHandler handles module staging endpoints
type ModuleHandler struct {
	modules service.ModuleService
}

// NewModuleHandler creates a new ModuleHandler
func NewModuleHandler(modules service.ModuleService) *ModuleHandler {
	return &ModuleHandler{modules: modules}
}

// ListModules handles GET /api/v1/posts/:id/modules
func (h *ModuleHandler) ListModules(c *gin.Context) {
	placements, err := h.modules.ListModules(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list modules", err)
		return
	}
	common.SuccessResponse(c, placements, nil)
}

// AddModule handles POST /api/v1/posts/:id/modules?tier=review
func (h *ModuleHandler) AddModule(c *gin.Context) {
	tier := domain.DraftTier(c.DefaultQuery("tier", string(domain.TierReview)))
	var req domain.AddModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	placement, err := h.modules.AddModule(c.Param("id"), tier, &req)
	if err != nil {
		respondModuleError(c, err, "failed to add module")
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: placement})
}

// StageProps handles PATCH /api/v1/modules/:id/props?tier=review
func (h *ModuleHandler) StageProps(c *gin.Context) {
	tier := domain.DraftTier(c.DefaultQuery("tier", string(domain.TierReview)))
	var patch domain.JSONMap
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.modules.StageProps(c.Param("id"), tier, patch); err != nil {
		respondModuleError(c, err, "failed to stage props")
		return
	}
	c.Status(http.StatusNoContent)
}

// StageOverrides handles PATCH /api/v1/placements/:id/overrides?tier=review
func (h *ModuleHandler) StageOverrides(c *gin.Context) {
	tier := domain.DraftTier(c.DefaultQuery("tier", string(domain.TierReview)))
	var patch domain.JSONMap
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.modules.StageOverrides(c.Param("id"), tier, patch); err != nil {
		respondModuleError(c, err, "failed to stage overrides")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkDeleted handles POST /api/v1/placements/:id/delete?tier=review
func (h *ModuleHandler) MarkDeleted(c *gin.Context) {
	tier := domain.DraftTier(c.DefaultQuery("tier", string(domain.TierReview)))
	if err := h.modules.MarkDeleted(c.Param("id"), tier); err != nil {
		respondModuleError(c, err, "failed to mark placement deleted")
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder handles PUT /api/v1/posts/:id/modules/order
func (h *ModuleHandler) Reorder(c *gin.Context) {
	var body struct {
		PlacementIDs []string `json:"placement_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.modules.Reorder(c.Param("id"), body.PlacementIDs); err != nil {
		respondModuleError(c, err, "failed to reorder modules")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondModuleError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, common.ErrPostNotFound),
		errors.Is(err, common.ErrModuleNotFound),
		errors.Is(err, common.ErrPlacementNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, common.ErrInvalidTier):
		common.ErrorResponse(c, http.StatusBadRequest, "unknown draft tier", err)
	case errors.Is(err, common.ErrPlacementLocked):
		common.ErrorResponse(c, http.StatusConflict, "placement is locked", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, msg, err)
	}
}
