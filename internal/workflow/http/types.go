package http

import (
	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
)

type startSessionReq struct {
	Role           string `json:"role" binding:"required"`
	ProjectBriefID string `json:"project_brief_id,omitempty"`
}

// SessionView is the role-filtered rendering of a workflow session. A content
// writer sees the assigned brief's report data and their own submission
// history, not the brand manager's full analysis payload.
type SessionView struct {
	SessionID        string                   `json:"session_id"`
	Role             domain.Role              `json:"role"`
	Stage            string                   `json:"stage"`
	ProjectBriefID   string                   `json:"project_brief_id,omitempty"`
	ProjectName      string                   `json:"project_name,omitempty"`
	UploadedFileName string                   `json:"uploaded_file_name,omitempty"`
	ContentWriterID  string                   `json:"content_writer_id,omitempty"`
	DesignerID       string                   `json:"designer_id,omitempty"`
	ReportData       *analyzer.ReportData     `json:"report_data,omitempty"`
	Stage1Result     *analyzer.Stage1Response `json:"stage1_result,omitempty"`
	Stage2Result     *analyzer.Stage2Response `json:"stage2_result,omitempty"`
}

func viewOf(s *domain.WorkflowSession) SessionView {
	v := SessionView{
		SessionID:        s.SessionID,
		Role:             s.Role,
		Stage:            s.Stage,
		ProjectBriefID:   s.ProjectBriefID,
		ProjectName:      s.ProjectName,
		UploadedFileName: s.UploadedFileName,
		ContentWriterID:  s.ContentWriterID,
		DesignerID:       s.DesignerID,
	}

	switch s.Role {
	case domain.RoleContentWriter:
		// Assigned-brief view: the generated report data plus Stage-2 history.
		if s.Stage1Result != nil {
			v.ReportData = s.Stage1Result.ReportData
		}
		v.Stage2Result = s.Stage2Result
	default:
		v.Stage1Result = s.Stage1Result
		v.Stage2Result = s.Stage2Result
	}

	return v
}

// partialWarning renders a user-facing warning when the backend reported
// partial Basecamp failures alongside an otherwise-successful stage.
func partialWarning(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	msg := "stage completed, but the Basecamp integration reported errors:"
	for _, e := range errs {
		msg += " " + e + ";"
	}
	return msg[:len(msg)-1]
}
