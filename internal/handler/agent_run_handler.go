package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/common"
	"github.com/pagemill/pagemill-backend/internal/domain"
	"github.com/pagemill/pagemill-backend/internal/service"
)

// AgentRunHandler handles agent execution history endpoints
type AgentRunHandler struct {
	agents service.AgentService
}

// NewAgentRunHandler creates a new AgentRunHandler
func NewAgentRunHandler(agents service.AgentService) *AgentRunHandler {
	return &AgentRunHandler{agents: agents}
}

// ListByPost handles GET /api/v1/posts/:id/agent-runs
func (h *AgentRunHandler) ListByPost(c *gin.Context) {
	runs, err := h.agents.ListByPost(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list agent runs", err)
		return
	}
	common.SuccessResponse(c, runs, nil)
}

// Record handles POST /api/v1/posts/:id/agent-runs
func (h *AgentRunHandler) Record(c *gin.Context) {
	var run domain.AgentRun
	if err := c.ShouldBindJSON(&run); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	run.PostID = c.Param("id")
	if err := h.agents.Record(&run); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to record agent run", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: run})
}
