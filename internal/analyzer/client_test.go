package analyzer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/api/http/middleware"
)

func TestClient_ListProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "projects": [
			{"id": "p1", "name": "Acme Redesign", "description": "Website refresh", "status": "active"},
			{"id": "p2", "name": "Old Campaign", "status": "archived"}
		]}`))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Acme Redesign", projects[0].Name)
	assert.Equal(t, "archived", projects[1].Status)
}

func TestClient_ListUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"success": true, "users": [
			{"basecamp_user_id": "bc-1", "name": "Jane", "email": "jane@x.com"},
			{"basecamp_user_id": "", "name": "Ghost", "email": "ghost@x.com"}
		]}`))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bc-1", users[0].BasecampUserID)
	assert.Empty(t, users[1].BasecampUserID)
}

func TestClient_SubmitBrief(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bc-1", r.FormValue("content_writer_id"))
		assert.Equal(t, "comprehensive", r.FormValue("analysis_type"))
		assert.Equal(t, "true", r.FormValue("include_suggestions"))
		assert.Equal(t, "p1", r.FormValue("project_id"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "brief.pdf", header.Filename)

		w.Write([]byte(`{
			"success": true,
			"processing_time": 12.5,
			"tokens_used": 1043,
			"analysis_type": "comprehensive",
			"report_data": {"project_brief_id": "PB-123", "project_summary": "summary", "content_writer_report": "report"},
			"basecamp_integration": {"content_writer_uploaded": true, "content_writer_notified": true}
		}`))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	result, err := client.SubmitBrief(context.Background(), analyzer.BriefSubmission{
		FileName:           "brief.pdf",
		File:               []byte("brief contents"),
		ContentWriterID:    "bc-1",
		AnalysisType:       "comprehensive",
		IncludeSuggestions: true,
		ProjectID:          "p1",
		ProjectName:        "Acme Redesign",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "PB-123", result.ReportData.ProjectBriefID)
	assert.Equal(t, 1043, result.TokensUsed)
	assert.True(t, result.Basecamp.ContentWriterUploaded)
	assert.NotEmpty(t, result.Raw, "raw payload should be retained verbatim")
}

func TestClient_SubmitBrief_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("analysis engine exploded"))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	result, err := client.SubmitBrief(context.Background(), analyzer.BriefSubmission{
		FileName:        "brief.pdf",
		File:            []byte("x"),
		ContentWriterID: "bc-1",
		AnalysisType:    "basic",
	})
	require.Error(t, err)
	assert.Nil(t, result)

	ae, ok := analyzer.AsError(err)
	require.True(t, ok)
	assert.Equal(t, analyzer.ErrKindHTTP, ae.Kind)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Equal(t, "analysis engine exploded", ae.Body)
}

func TestClient_SubmitBrief_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	_, err := client.SubmitBrief(context.Background(), analyzer.BriefSubmission{
		FileName:        "brief.pdf",
		File:            []byte("x"),
		ContentWriterID: "bc-1",
		AnalysisType:    "basic",
	})
	require.Error(t, err)
	assert.True(t, analyzer.IsKind(err, analyzer.ErrKindMalformed))
}

func TestClient_ConnectionFailed(t *testing.T) {
	// Server is closed before the call, so the dial fails.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, analyzer.IsKind(err, analyzer.ErrKindConnection))
}

func TestClient_SubmitContent_FormEncoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submit-content" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "PB-123", r.FormValue("project_brief_id"))
		assert.Equal(t, "bc-2", r.FormValue("designer_id"))
		assert.Equal(t, "the draft", r.FormValue("content_text"))
		assert.Empty(t, r.FormValue("has_file"))

		w.Write([]byte(`{
			"success": true,
			"project_brief_id": "PB-123",
			"stage": "stage2_complete",
			"processing_time": 8.1,
			"report_data": {"project_brief_id": "PB-123", "designer_report": "design this"},
			"basecamp_integration": {"designer_uploaded": true, "designer_notified": true}
		}`))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	result, err := client.SubmitContent(context.Background(), analyzer.ContentSubmission{
		ProjectBriefID: "PB-123",
		DesignerID:     "bc-2",
		ContentText:    "the draft",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "design this", result.ReportData.DesignerReport)
}

func TestClient_SubmitContent_FileAndTextBothSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "true", r.FormValue("has_file"))
		assert.Equal(t, "draft", r.FormValue("content_text"))

		f, header, err := r.FormFile("content_file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "content.docx", header.Filename)

		w.Write([]byte(`{"success": true, "project_brief_id": "PB-123", "processing_time": 3.0}`))
	}))
	defer server.Close()

	client := analyzer.NewClient(server.URL, analyzer.Options{})
	result, err := client.SubmitContent(context.Background(), analyzer.ContentSubmission{
		ProjectBriefID: "PB-123",
		DesignerID:     "bc-2",
		ContentText:    "draft",
		FileName:       "content.docx",
		ContentFile:    []byte("file body"),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestClient_RequestIDPropagation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rid-42", r.Header.Get(middleware.HeaderName))
		w.Write([]byte(`{"success": true, "projects": []}`))
	}))
	defer server.Close()

	ctx := middleware.WithRequestID(context.Background(), "rid-42")
	client := analyzer.NewClient(server.URL, analyzer.Options{})
	_, err := client.ListProjects(ctx)
	require.NoError(t, err)
}
