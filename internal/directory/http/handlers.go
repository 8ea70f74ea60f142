package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/briefflow/briefflow-backend/internal/directory"
)

type Handler struct {
	svc *directory.Service
}

func NewHandler(svc *directory.Service) *Handler {
	return &Handler{svc: svc}
}

// Register registers the directory routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/projects", h.ListProjects)
	rg.GET("/users", h.ListUsers)
}

// ListProjects returns the active backend projects a brief can belong to
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ActiveProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch projects: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": projects})
}

// ListUsers returns the users eligible as content-writer or designer
// recipients
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.EligibleRecipients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to fetch users: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
