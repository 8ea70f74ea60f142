package domain

import (
	"time"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
)

// Role identifies who is driving a workflow session. The designer is only a
// notification recipient, never a login role.
type Role string

const (
	RoleBrandManager  Role = "brand_manager"
	RoleContentWriter Role = "content_writer"
)

// Valid reports whether r is a known login role.
func (r Role) Valid() bool {
	return r == RoleBrandManager || r == RoleContentWriter
}

// Workflow stages. The stage only moves forward; the whole session is
// discarded on role change.
const (
	StageNotStarted     = "not_started"
	StageStage1Complete = "stage1_complete"
	StageStage2Complete = "stage2_complete"
)

// WorkflowSession is the per-session cursor over backend-owned workflow
// state, keyed by SessionID. The backend is authoritative for everything
// keyed by ProjectBriefID; this aggregate only carries identifiers and
// results forward between stages.
type WorkflowSession struct {
	SessionID        string                   `json:"session_id"`
	Role             Role                     `json:"role"`
	Stage            string                   `json:"stage"`
	ProjectBriefID   string                   `json:"project_brief_id,omitempty"`
	ProjectID        string                   `json:"project_id,omitempty"`
	ProjectName      string                   `json:"project_name,omitempty"`
	UploadedFileName string                   `json:"uploaded_file_name,omitempty"`
	ContentWriterID  string                   `json:"content_writer_id,omitempty"`
	DesignerID       string                   `json:"designer_id,omitempty"`
	SubmittedContent string                   `json:"submitted_content,omitempty"`
	Stage1Result     *analyzer.Stage1Response `json:"stage1_result,omitempty"`
	Stage2Result     *analyzer.Stage2Response `json:"stage2_result,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// StartSessionRequest selects a role. A content writer may attach to an
// already-analyzed brief by its backend identifier.
type StartSessionRequest struct {
	Role           Role
	ProjectBriefID string
}

// SubmitBriefRequest carries a Stage-1 submission. CustomProject is an
// explicit sentinel: a custom-named project is never inferred from an empty
// ProjectID.
type SubmitBriefRequest struct {
	ProjectID          string
	ProjectName        string
	CustomProject      bool
	ContentWriterID    string
	AnalysisType       string
	IncludeSuggestions bool
	FileName           string
	File               []byte
}

// SubmitContentRequest carries a Stage-2 submission. Text and file are
// non-exclusive; both are forwarded when both are present.
type SubmitContentRequest struct {
	DesignerID  string
	ContentText string
	FileName    string
	ContentFile []byte
}

// AnalysisTypes the backend accepts for Stage-1.
var AnalysisTypes = []string{"basic", "comprehensive", "detailed"}

// ValidAnalysisType reports whether t is an accepted analysis type.
func ValidAnalysisType(t string) bool {
	for _, v := range AnalysisTypes {
		if t == v {
			return true
		}
	}
	return false
}
