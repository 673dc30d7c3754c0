package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/middleware"
	"github.com/pagemill/pagemill-backend/internal/repository"
	"github.com/pagemill/pagemill-backend/internal/service"
)

// DraftHandler handles draft staging, promotion and rejection endpoints
type DraftHandler struct {
	drafts    service.DraftService
	revisions repository.RevisionRepository
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(drafts service.DraftService, revisions repository.RevisionRepository) *DraftHandler {
	return &DraftHandler{drafts: drafts, revisions: revisions}
}

// SaveDraft handles PUT /api/v1/posts/:id/draft?tier=review
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	tier := domain.DraftTier(c.DefaultQuery("tier", string(domain.TierReview)))
	var patch domain.JSONMap
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	err := h.drafts.SaveDraft(c.Param("id"), tier, patch, middleware.GetUserName(c))
	if err != nil {
		respondDraftError(c, err, "failed to save draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// Approve handles POST /api/v1/posts/:id/approve
func (h *DraftHandler) Approve(c *gin.Context) {
	err := h.drafts.ApproveReviewDraft(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondDraftError(c, err, "failed to approve review draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// Promote handles POST /api/v1/posts/:id/promote (ai-review -> review)
func (h *DraftHandler) Promote(c *gin.Context) {
	err := h.drafts.PromoteAiReviewToReview(
		c.Param("id"),
		middleware.GetUserID(c),
		middleware.GetUserName(c),
	)
	if err != nil {
		respondDraftError(c, err, "failed to promote ai-review draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject handles POST /api/v1/posts/:id/reject
func (h *DraftHandler) Reject(c *gin.Context) {
	var body struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	err := h.drafts.RejectDraft(c.Param("id"), middleware.GetUserID(c), domain.DraftTier(body.Tier))
	if err != nil {
		respondDraftError(c, err, "failed to reject draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// PromoteModules handles POST /api/v1/posts/:id/modules/promote. The optional
// body carries an atomic module list; without one the fallback path runs.
func (h *DraftHandler) PromoteModules(c *gin.Context) {
	var body struct {
		Modules []interface{} `json:"modules"`
	}
	// An empty body means "no atomic list". Anything else that fails to bind
	// is a caller error, not a cue to run the fallback path.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var modules []domain.DraftModule
	if body.Modules != nil {
		modules, _ = domain.ParseDraftModules(body.Modules)
	}
	if err := h.drafts.PromotePostModules(c.Param("id"), modules); err != nil {
		respondDraftError(c, err, "failed to promote modules")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRevisions handles GET /api/v1/posts/:id/revisions
func (h *DraftHandler) ListRevisions(c *gin.Context) {
	revisions, err := h.revisions.FindByPostID(c.Param("id"), 50)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list revisions", err)
		return
	}
	common.SuccessResponse(c, revisions, nil)
}

func respondDraftError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, common.ErrPostNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "post not found", err)
	case errors.Is(err, common.ErrInvalidTier):
		common.ErrorResponse(c, http.StatusBadRequest, "unknown draft tier", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, msg, err)
	}
}
