package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/service"
)

// PostHandler handles post CRUD endpoints
type PostHandler struct {
	posts service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, limit := parsePagination(c)
	posts, meta, err := h.posts.ListPosts(
		c.Query("type"),
		c.Query("locale"),
		domain.PostStatus(c.Query("status")),
		page, limit,
	)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list posts", err)
		return
	}
	common.SuccessResponse(c, posts, meta)
}

// GetPost handles GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "post not found", err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	post, err := h.posts.CreatePost(&req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create post", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: post})
}

// UpdatePost handles PATCH /api/v1/posts/:id with a partial field patch
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var patch domain.JSONMap
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	post, err := h.posts.UpdatePost(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "post not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update post", err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// DeletePost handles DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Param("id")); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete post", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicatePost handles POST /api/v1/posts/:id/duplicate
func (h *PostHandler) DuplicatePost(c *gin.Context) {
	post, err := h.posts.DuplicatePost(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrPostNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "post not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to duplicate post", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: post})
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
