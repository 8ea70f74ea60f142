package http

import "github.com/gin-gonic/gin"

// Register registers the workflow session routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.CreateSession)
	rg.GET("/sessions/:id", h.GetSession)
	rg.DELETE("/sessions/:id", h.DeleteSession)
	rg.POST("/sessions/:id/brief", h.SubmitBrief)
	rg.POST("/sessions/:id/content", h.SubmitContent)
	rg.GET("/sessions/:id/summary", h.GetSummary)
	rg.GET("/sessions/:id/status", h.GetStatus)
	rg.GET("/sessions/:id/export", h.Export)
}
