package analyzer

import "encoding/json"

// Project is a backend-tracked project. An empty ID denotes an ad-hoc project
// not tracked by the backend.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// User is a collaboration-tool member. Only users with a non-empty
// BasecampUserID can receive report uploads and notifications.
type User struct {
	BasecampUserID string `json:"basecamp_user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
}

type projectsResponse struct {
	Success  bool      `json:"success"`
	Projects []Project `json:"projects"`
}

type usersResponse struct {
	Success bool   `json:"success"`
	Users   []User `json:"users"`
}

// BasecampIntegration reports the upload/notification side effects of a
// submission. A non-empty Errors list is a partial failure: the stage itself
// still succeeded.
type BasecampIntegration struct {
	ContentWriterUploaded bool     `json:"content_writer_uploaded,omitempty"`
	ContentWriterNotified bool     `json:"content_writer_notified,omitempty"`
	DesignerUploaded      bool     `json:"designer_uploaded,omitempty"`
	DesignerNotified      bool     `json:"designer_notified,omitempty"`
	Errors                []string `json:"errors,omitempty"`
}

// ProjectBrief is the structured summary the backend extracts from the
// uploaded document.
type ProjectBrief struct {
	ProjectName     string   `json:"project_name,omitempty"`
	BrandName       string   `json:"brand_name,omitempty"`
	ProjectType     string   `json:"project_type,omitempty"`
	TargetAudience  string   `json:"target_audience,omitempty"`
	Timeline        string   `json:"timeline,omitempty"`
	Budget          string   `json:"budget,omitempty"`
	Objectives      []string `json:"objectives,omitempty"`
	Deliverables    []string `json:"deliverables,omitempty"`
	AnalysisSummary string   `json:"analysis_summary,omitempty"`
}

// ReportData carries the generated reports keyed by the backend-assigned
// project brief ID.
type ReportData struct {
	ProjectBriefID      string `json:"project_brief_id"`
	ProjectSummary      string `json:"project_summary,omitempty"`
	ContentWriterReport string `json:"content_writer_report,omitempty"`
	DesignerReport      string `json:"designer_report,omitempty"`
}

// FullReport wraps a rendered report document.
type FullReport struct {
	FullReport string `json:"full_report"`
}

// Stage1Response is the /upload response. Raw retains the verbatim backend
// payload for display and export.
type Stage1Response struct {
	Success             bool                 `json:"success"`
	ProcessingTime      float64              `json:"processing_time"`
	TokensUsed          int                  `json:"tokens_used,omitempty"`
	AnalysisType        string               `json:"analysis_type"`
	ProjectBrief        *ProjectBrief        `json:"project_brief,omitempty"`
	ReportData          *ReportData          `json:"report_data,omitempty"`
	ContentWriterReport *FullReport          `json:"content_writer_report,omitempty"`
	Basecamp            *BasecampIntegration `json:"basecamp_integration,omitempty"`
	Raw                 json.RawMessage      `json:"raw,omitempty"`
}

// Stage2Response is the /submit-content response.
type Stage2Response struct {
	Success        bool                 `json:"success"`
	ProjectBriefID string               `json:"project_brief_id"`
	Stage          string               `json:"stage,omitempty"`
	ProcessingTime float64              `json:"processing_time"`
	ReportData     *ReportData          `json:"report_data,omitempty"`
	Basecamp       *BasecampIntegration `json:"basecamp_integration,omitempty"`
	Raw            json.RawMessage      `json:"raw,omitempty"`
}

// PartialErrors returns the basecamp integration errors, if any.
func (r *Stage1Response) PartialErrors() []string {
	if r == nil || r.Basecamp == nil {
		return nil
	}
	return r.Basecamp.Errors
}

func (r *Stage2Response) PartialErrors() []string {
	if r == nil || r.Basecamp == nil {
		return nil
	}
	return r.Basecamp.Errors
}
