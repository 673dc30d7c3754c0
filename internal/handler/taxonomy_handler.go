package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/repository"
)

// TaxonomyHandler handles taxonomy term and redirect endpoints
type TaxonomyHandler struct {
	terms     repository.TermRepository
	redirects repository.RedirectRepository
}

// NewTaxonomyHandler creates a new TaxonomyHandler
func NewTaxonomyHandler(terms repository.TermRepository, redirects repository.RedirectRepository) *TaxonomyHandler {
	return &TaxonomyHandler{terms: terms, redirects: redirects}
}

// ListTerms handles GET /api/v1/taxonomies/:taxonomy/terms
func (h *TaxonomyHandler) ListTerms(c *gin.Context) {
	terms, err := h.terms.ListByTaxonomy(c.Param("taxonomy"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list terms", err)
		return
	}
	common.SuccessResponse(c, terms, nil)
}

// ListPostTerms handles GET /api/v1/posts/:id/terms
func (h *TaxonomyHandler) ListPostTerms(c *gin.Context) {
	terms, err := h.terms.ListForPost(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list post terms", err)
		return
	}
	common.SuccessResponse(c, terms, nil)
}

// CreateTerm handles POST /api/v1/taxonomies/:taxonomy/terms
func (h *TaxonomyHandler) CreateTerm(c *gin.Context) {
	var term domain.TaxonomyTerm
	if err := c.ShouldBindJSON(&term); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	term.Taxonomy = c.Param("taxonomy")
	if err := h.terms.Create(&term); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create term", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: term})
}

// DeleteTerm handles DELETE /api/v1/terms/:id
func (h *TaxonomyHandler) DeleteTerm(c *gin.Context) {
	if err := h.terms.Delete(c.Param("id")); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete term", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRedirects handles GET /api/v1/redirects
func (h *TaxonomyHandler) ListRedirects(c *gin.Context) {
	page, limit := parsePagination(c)
	redirects, total, err := h.redirects.List(page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list redirects", err)
		return
	}
	common.SuccessResponse(c, redirects, &common.Meta{Page: page, Limit: limit, Total: total})
}

// ResolveRedirect handles GET /api/v1/redirects/resolve?path=/old-slug
func (h *TaxonomyHandler) ResolveRedirect(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "path query parameter is required", nil)
		return
	}
	redirect, err := h.redirects.FindByFromPath(path)
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "no redirect for path", err)
		return
	}
	common.SuccessResponse(c, redirect, nil)
}

// DeleteRedirect handles DELETE /api/v1/redirects/:id
func (h *TaxonomyHandler) DeleteRedirect(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid redirect id", err)
		return
	}
	if err := h.redirects.Delete(id); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete redirect", err)
		return
	}
	c.Status(http.StatusNoContent)
}
