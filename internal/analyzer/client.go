package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/briefflow/briefflow-backend/internal/api/http/middleware"
)

// Client handles communication with the analyzer backend
type Client struct {
	baseURL      string
	listClient   *http.Client
	submitClient *http.Client // submissions include document analysis (minutes, not seconds)
	limiter      *rate.Limiter
}

// Options tunes client timeouts and the list-operation rate limit. Zero
// values fall back to the package defaults.
type Options struct {
	ListTimeout   time.Duration
	SubmitTimeout time.Duration
	ListRate      float64
	ListBurst     int
}

// NewClient creates a new analyzer client
func NewClient(baseURL string, opts Options) *Client {
	if opts.ListTimeout <= 0 {
		opts.ListTimeout = DefaultListTimeout
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.ListRate <= 0 {
		opts.ListRate = DefaultListRate
	}
	if opts.ListBurst <= 0 {
		opts.ListBurst = DefaultListBurst
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		listClient: &http.Client{
			Timeout: opts.ListTimeout,
		},
		submitClient: &http.Client{
			Timeout: opts.SubmitTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.ListRate), opts.ListBurst),
	}
}

// ListProjects fetches all backend projects. Nothing is filtered here; the
// caller keeps only active projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out projectsResponse
	if err := c.getJSON(ctx, "list_projects", "/projects", &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// ListUsers fetches all backend users. The caller filters for recipients with
// a Basecamp identifier.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out usersResponse
	if err := c.getJSON(ctx, "list_users", "/users", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	logger := NewLogger(ctx)
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	propagateRequestID(ctx, req)

	resp, err := c.listClient.Do(req)
	if err != nil {
		logger.LogError(op, err)
		return classify(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return malformed(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogWarnf(op, "backend returned status %d", resp.StatusCode)
		return httpError(op, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

// BriefSubmission is the Stage-1 payload: the brief document plus the content
// writer who will receive the generated report.
type BriefSubmission struct {
	FileName           string
	File               []byte
	ContentWriterID    string
	AnalysisType       string
	IncludeSuggestions bool
	ProjectID          string
	ProjectName        string
}

// SubmitBrief uploads a project brief for Stage-1 analysis. The caller must
// have resolved ContentWriterID before invoking this.
func (c *Client) SubmitBrief(ctx context.Context, sub BriefSubmission) (*Stage1Response, error) {
	const op = "submit_brief"
	logger := NewLogger(ctx)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", sub.FileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := fw.Write(sub.File); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	fields := map[string]string{
		"content_writer_id":   sub.ContentWriterID,
		"analysis_type":       sub.AnalysisType,
		"include_suggestions": strconv.FormatBool(sub.IncludeSuggestions),
	}
	if sub.ProjectID != "" {
		fields["project_id"] = sub.ProjectID
	}
	if sub.ProjectName != "" {
		fields["project_name"] = sub.ProjectName
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	propagateRequestID(ctx, req)

	logger.LogInfof(op, "submitting brief file=%s content_writer_id=%s analysis_type=%s",
		sub.FileName, sub.ContentWriterID, sub.AnalysisType)

	start := time.Now()
	resp, err := c.submitClient.Do(req)
	if err != nil {
		logger.LogError(op, err)
		return nil, classify(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, malformed(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogWarnf(op, "backend returned status %d", resp.StatusCode)
		return nil, httpError(op, resp.StatusCode, body)
	}

	var result Stage1Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, malformed(op, err)
	}
	result.Raw = json.RawMessage(body)

	logger.LogInfof(op, "analysis complete in %s processing_time=%.2fs", time.Since(start), result.ProcessingTime)
	return &result, nil
}

// ContentSubmission is the Stage-2 payload: the completed content plus the
// designer who will receive the generated report. At least one of ContentText
// and ContentFile must be present; both may be sent.
type ContentSubmission struct {
	ProjectBriefID  string
	DesignerID      string
	ContentWriterID string
	ContentText     string
	FileName        string
	ContentFile     []byte
}

// SubmitContent submits completed content for Stage-2 designer report
// generation. The request is multipart when a content file is attached and
// form-encoded otherwise.
func (c *Client) SubmitContent(ctx context.Context, sub ContentSubmission) (*Stage2Response, error) {
	const op = "submit_content"
	logger := NewLogger(ctx)

	var body io.Reader
	var contentType string

	if len(sub.ContentFile) > 0 {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("content_file", sub.FileName)
		if err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := fw.Write(sub.ContentFile); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		for k, v := range sub.formFields(true) {
			if err := mw.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("build multipart: %w", err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		body = &buf
		contentType = mw.FormDataContentType()
	} else {
		form := url.Values{}
		for k, v := range sub.formFields(false) {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-content", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	propagateRequestID(ctx, req)

	logger.LogInfof(op, "submitting content project_brief_id=%s designer_id=%s has_file=%t",
		sub.ProjectBriefID, sub.DesignerID, len(sub.ContentFile) > 0)

	resp, err := c.submitClient.Do(req)
	if err != nil {
		logger.LogError(op, err)
		return nil, classify(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, malformed(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogWarnf(op, "backend returned status %d", resp.StatusCode)
		return nil, httpError(op, resp.StatusCode, raw)
	}

	var result Stage2Response
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, malformed(op, err)
	}
	result.Raw = json.RawMessage(raw)
	return &result, nil
}

// propagateRequestID forwards the inbound request id so a submission can be
// correlated with the backend's processing logs.
func propagateRequestID(ctx context.Context, req *http.Request) {
	if rid := middleware.GetRequestID(ctx); rid != "" {
		req.Header.Set(middleware.HeaderName, rid)
	}
}

func (s ContentSubmission) formFields(hasFile bool) map[string]string {
	fields := map[string]string{
		"project_brief_id": s.ProjectBriefID,
		"designer_id":      s.DesignerID,
	}
	if s.ContentWriterID != "" {
		fields["content_writer_id"] = s.ContentWriterID
	}
	if s.ContentText != "" {
		fields["content_text"] = s.ContentText
	}
	if hasFile {
		fields["has_file"] = "true"
	}
	return fields
}
