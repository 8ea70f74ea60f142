package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
	workflowhttp "github.com/briefflow/briefflow-backend/internal/workflow/http"
	"github.com/briefflow/briefflow-backend/internal/workflow/repository"
	"github.com/briefflow/briefflow-backend/internal/workflow/service"
)

const backendStage1 = `{
	"success": true,
	"processing_time": 12.5,
	"tokens_used": 800,
	"analysis_type": "comprehensive",
	"project_brief": {"project_name": "Acme Redesign", "brand_name": "Acme"},
	"report_data": {"project_brief_id": "PB-123", "content_writer_report": "write this"},
	"basecamp_integration": {"content_writer_uploaded": true, "content_writer_notified": false, "errors": ["notify failed"]}
}`

const backendStage2 = `{
	"success": true,
	"project_brief_id": "PB-123",
	"stage": "stage2_complete",
	"processing_time": 4.1,
	"report_data": {"project_brief_id": "PB-123", "designer_report": "design this"},
	"basecamp_integration": {"designer_uploaded": true, "designer_notified": true}
}`

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			w.Write([]byte(backendStage1))
		case "/submit-content":
			w.Write([]byte(backendStage2))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	t.Cleanup(backend.Close)

	repo := repository.NewSessionRepository(client, time.Hour)
	svc := service.NewWorkflowService(repo, analyzer.NewClient(backend.URL, analyzer.Options{}))

	r := gin.New()
	workflowhttp.NewHandler(svc).Register(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createSession(t *testing.T, r *gin.Engine, role string) string {
	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", gin.H{"role": role})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode(t, w)["session"].(map[string]any)
	return session["session_id"].(string)
}

func briefForm(t *testing.T, fields map[string]string, fileName string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("brief contents"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func submitBrief(t *testing.T, r *gin.Engine, sessionID string) *httptest.ResponseRecorder {
	body, contentType := briefForm(t, map[string]string{
		"project_id":        "p1",
		"project_name":      "Acme Redesign",
		"content_writer_id": "bc-jane",
	}, "brief.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID+"/brief", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSession(t *testing.T) {
	r := setupRouter(t)

	t.Run("brand manager", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", gin.H{"role": "brand_manager"})
		require.Equal(t, http.StatusCreated, w.Code)
		session := decode(t, w)["session"].(map[string]any)
		assert.Equal(t, "not_started", session["stage"])
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", gin.H{"role": "designer"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing role", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitBrief(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "brand_manager")

	w := submitBrief(t, r, id)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	session := resp["session"].(map[string]any)
	assert.Equal(t, "stage1_complete", session["stage"])
	assert.Equal(t, "PB-123", session["project_brief_id"])

	summary := resp["summary"].(map[string]any)
	assert.Equal(t, true, summary["success"])
	assert.Equal(t, "PB-123", summary["project_brief_id"])

	// Partial Basecamp failure is a warning, never a request failure.
	assert.Contains(t, resp["warning"], "notify failed")
}

func TestSubmitBrief_MissingFile(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "brand_manager")

	body, contentType := briefForm(t, map[string]string{
		"project_id":        "p1",
		"content_writer_id": "bc-jane",
	}, "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/brief", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
}

func TestSubmitBrief_WrongRole(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "content_writer")

	w := submitBrief(t, r, id)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitContent_FullWorkflow(t *testing.T) {
	r := setupRouter(t)

	// Brand manager runs Stage 1.
	bmID := createSession(t, r, "brand_manager")
	require.Equal(t, http.StatusOK, submitBrief(t, r, bmID).Code)

	// Content writer attaches to the analyzed brief.
	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", gin.H{
		"role":             "content_writer",
		"project_brief_id": "PB-123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cw := decode(t, w)["session"].(map[string]any)
	cwID := cw["session_id"].(string)
	assert.Equal(t, "stage1_complete", cw["stage"])
	// Role-filtered view: report data yes, full stage-1 payload no.
	assert.Contains(t, cw, "report_data")
	assert.NotContains(t, cw, "stage1_result")

	// Stage 2, form-encoded.
	form := strings.NewReader("designer_id=bc-des&content_text=finished+copy")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+cwID+"/content", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	session := decode(t, rec)["session"].(map[string]any)
	assert.Equal(t, "stage2_complete", session["stage"])
	assert.Equal(t, "bc-des", session["designer_id"])
}

func TestSubmitContent_WithoutStage1(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "content_writer")

	form := strings.NewReader("designer_id=bc-des&content_text=copy")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/content", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "project_brief_id", decode(t, w)["field"])
}

func TestGetSession_NotFound(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSession(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "brand_manager")

	w := doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus_BrandManagerOnly(t *testing.T) {
	r := setupRouter(t)

	bmID := createSession(t, r, "brand_manager")
	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+bmID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)["status"].(map[string]any)
	assert.Equal(t, "not_started", status["stage"])

	cwID := createSession(t, r, "content_writer")
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+cwID+"/status", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExport(t *testing.T) {
	r := setupRouter(t)
	id := createSession(t, r, "brand_manager")
	require.Equal(t, http.StatusOK, submitBrief(t, r, id).Code)

	t.Run("json", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/export?format=json", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "project_brief_analysis_")
		assert.Contains(t, w.Body.String(), `"project_brief_id": "PB-123"`)
	})

	t.Run("csv", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/export?format=csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "project_brief_summary_")
		assert.True(t, strings.HasPrefix(w.Body.String(), "Project Name,"))
	})

	t.Run("bad format", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/export?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
