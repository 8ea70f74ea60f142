package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
	"github.com/briefflow/briefflow-backend/internal/workflow/projection"
	"github.com/briefflow/briefflow-backend/internal/workflow/service"
)

type Handler struct {
	svc *service.WorkflowService
}

func NewHandler(svc *service.WorkflowService) *Handler {
	return &Handler{svc: svc}
}

// CreateSession selects a role and opens a fresh workflow session
func (h *Handler) CreateSession(c *gin.Context) {
	var body startSessionReq
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.svc.StartSession(c.Request.Context(), &domain.StartSessionRequest{
		Role:           domain.Role(body.Role),
		ProjectBriefID: body.ProjectBriefID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": viewOf(session)})
}

// GetSession returns the role-filtered session view
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": viewOf(session)})
}

// DeleteSession abandons the session entirely (role change / logout)
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.svc.ClearSession(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SubmitBrief handles the Stage-1 multipart submission
func (h *Handler) SubmitBrief(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	data, err := readUpload(func() (io.ReadCloser, error) { return file.Open() })
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	req := &domain.SubmitBriefRequest{
		ProjectID:          c.PostForm("project_id"),
		ProjectName:        c.PostForm("project_name"),
		CustomProject:      c.PostForm("custom_project") == "true",
		ContentWriterID:    c.PostForm("content_writer_id"),
		AnalysisType:       c.DefaultPostForm("analysis_type", "comprehensive"),
		IncludeSuggestions: c.DefaultPostForm("include_suggestions", "true") == "true",
		FileName:           file.Filename,
		File:               data,
	}

	session, err := h.svc.SubmitStage1(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{
		"session": viewOf(session),
		"summary": projection.Summary(session.Stage1Result),
	}
	if w := partialWarning(session.Stage1Result.PartialErrors()); w != "" {
		resp["warning"] = w
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitContent handles the Stage-2 submission (multipart when a content
// file is attached, form-encoded otherwise)
func (h *Handler) SubmitContent(c *gin.Context) {
	req := &domain.SubmitContentRequest{
		DesignerID:  c.PostForm("designer_id"),
		ContentText: c.PostForm("content_text"),
	}

	if file, err := c.FormFile("content_file"); err == nil {
		data, err := readUpload(func() (io.ReadCloser, error) { return file.Open() })
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read content file"})
			return
		}
		req.FileName = file.Filename
		req.ContentFile = data
	}

	session, err := h.svc.SubmitStage2(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"session": viewOf(session)}
	if w := partialWarning(session.Stage2Result.PartialErrors()); w != "" {
		resp["warning"] = w
	}
	c.JSON(http.StatusOK, resp)
}

// GetSummary returns the quick Stage-1 summary projection
func (h *Handler) GetSummary(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !domain.IsAllowed(session.Role, domain.ActionViewStage1Results) {
		writeError(c, domain.ErrRoleNotAllowed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": projection.Summary(session.Stage1Result)})
}

// GetStatus returns the aggregate progress projection (brand manager only)
func (h *Handler) GetStatus(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !domain.IsAllowed(session.Role, domain.ActionViewProjectStatus) {
		writeError(c, domain.ErrRoleNotAllowed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": projection.ProgressOf(session)})
}

// Export renders the session results as JSON or a flattened CSV summary
func (h *Handler) Export(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !domain.IsAllowed(session.Role, domain.ActionViewStage1Results) {
		writeError(c, domain.ErrRoleNotAllowed)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	switch c.DefaultQuery("format", "json") {
	case "json":
		data, err := projection.ExportJSON(session)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=project_brief_analysis_%s.json", stamp))
		c.Data(http.StatusOK, "application/json", data)
	case "csv":
		data, err := projection.ExportCSV(session)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=project_brief_summary_%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or csv"})
	}
}

func readUpload(open func() (io.ReadCloser, error)) ([]byte, error) {
	f, err := open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeError maps domain and gateway errors onto HTTP statuses. Gateway
// failures are surfaced verbatim; nothing is retried here.
func writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, domain.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be brand_manager or content_writer"})
	case errors.Is(err, domain.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStageOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if ae, ok := analyzer.AsError(err); ok {
			switch ae.Kind {
			case analyzer.ErrKindTimeout:
				c.JSON(http.StatusGatewayTimeout, gin.H{"error": ae.Error()})
			case analyzer.ErrKindHTTP:
				c.JSON(http.StatusBadGateway, gin.H{
					"error":           ae.Error(),
					"upstream_status": ae.Status,
					"upstream_body":   ae.Body,
				})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": ae.Error()})
			}
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
