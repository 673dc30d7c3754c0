package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pagemill/pagemill-backend/internal/handler"
	"github.com/pagemill/pagemill-backend/internal/middleware"
	"github.com/pagemill/pagemill-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	postHandler *handler.PostHandler,
	draftHandler *handler.DraftHandler,
	moduleHandler *handler.ModuleHandler,
	agentHandler *handler.AgentRunHandler,
	taxonomyHandler *handler.TaxonomyHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")

	// Public read endpoints
	posts := api.Group("/posts")
	posts.GET("", postHandler.ListPosts)
	posts.GET("/:id", postHandler.GetPost)
	posts.GET("/:id/modules", moduleHandler.ListModules)
	posts.GET("/:id/terms", taxonomyHandler.ListPostTerms)

	api.GET("/taxonomies/:taxonomy/terms", taxonomyHandler.ListTerms)
	api.GET("/redirects/resolve", taxonomyHandler.ResolveRedirect)

	// Editor endpoints (auth required)
	editor := api.Group("", middleware.JWTAuth(jwtManager))
	{
		editor.POST("/posts", postHandler.CreatePost)
		editor.PATCH("/posts/:id", postHandler.UpdatePost)
		editor.DELETE("/posts/:id", postHandler.DeletePost)
		editor.POST("/posts/:id/duplicate", postHandler.DuplicatePost)

		// Draft staging and the promotion pipeline
		editor.PUT("/posts/:id/draft", draftHandler.SaveDraft)
		editor.POST("/posts/:id/approve", draftHandler.Approve)
		editor.POST("/posts/:id/promote", draftHandler.Promote)
		editor.POST("/posts/:id/reject", draftHandler.Reject)
		editor.POST("/posts/:id/modules/promote", draftHandler.PromoteModules)
		editor.GET("/posts/:id/revisions", draftHandler.ListRevisions)

		// Module staging
		editor.POST("/posts/:id/modules", moduleHandler.AddModule)
		editor.PUT("/posts/:id/modules/order", moduleHandler.Reorder)
		editor.PATCH("/modules/:id/props", moduleHandler.StageProps)
		editor.PATCH("/placements/:id/overrides", moduleHandler.StageOverrides)
		editor.POST("/placements/:id/delete", moduleHandler.MarkDeleted)

		// Agent run history
		editor.GET("/posts/:id/agent-runs", agentHandler.ListByPost)
		editor.POST("/posts/:id/agent-runs", agentHandler.Record)

		// Taxonomy and redirect management
		editor.POST("/taxonomies/:taxonomy/terms", taxonomyHandler.CreateTerm)
		editor.DELETE("/terms/:id", taxonomyHandler.DeleteTerm)
		editor.GET("/redirects", taxonomyHandler.ListRedirects)
		editor.DELETE("/redirects/:id", taxonomyHandler.DeleteRedirect)
	}
}
