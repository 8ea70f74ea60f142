// Package projection derives display-ready views from stored workflow
// results. Every function here is pure: the session is never mutated and
// repeated projection of the same result yields identical output.
package projection

import (
	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
)

// QuickSummary is the three-metric view shown right after a Stage-1 run.
type QuickSummary struct {
	ProcessingTime float64 `json:"processing_time"`
	AnalysisType   string  `json:"analysis_type"`
	Success        bool    `json:"success"`
	ProjectBriefID string  `json:"project_brief_id,omitempty"`
	TokensUsed     int     `json:"tokens_used,omitempty"`
}

// Summary projects a Stage-1 result into a quick summary. A nil result
// yields the zero summary.
func Summary(res *analyzer.Stage1Response) QuickSummary {
	if res == nil {
		return QuickSummary{}
	}
	out := QuickSummary{
		ProcessingTime: res.ProcessingTime,
		AnalysisType:   res.AnalysisType,
		Success:        res.Success,
		TokensUsed:     res.TokensUsed,
	}
	if res.ReportData != nil {
		out.ProjectBriefID = res.ReportData.ProjectBriefID
	}
	return out
}

// Progress is the aggregate status view for the brand-manager dashboard.
type Progress struct {
	Stage             string `json:"stage"`
	Stage1Complete    bool   `json:"stage1_complete"`
	Stage2Complete    bool   `json:"stage2_complete"`
	FullyComplete     bool   `json:"fully_complete"`
	ActiveProjects    int    `json:"active_projects"`
	CompletedProjects int    `json:"completed_projects"`
	TotalProjects     int    `json:"total_projects"`
}

// ProgressOf projects per-stage completion flags from a session.
func ProgressOf(s *domain.WorkflowSession) Progress {
	p := Progress{Stage: s.Stage}
	p.Stage1Complete = s.Stage1Result != nil
	p.Stage2Complete = s.Stage2Result != nil
	p.FullyComplete = FullyComplete(s)
	if p.Stage1Complete && !p.Stage2Complete {
		p.ActiveProjects = 1
	}
	if p.Stage2Complete {
		p.CompletedProjects = 1
	}
	p.TotalProjects = p.ActiveProjects + p.CompletedProjects
	return p
}

// FullyComplete reports whether the workflow reached its terminal stage.
func FullyComplete(s *domain.WorkflowSession) bool {
	return s != nil && s.Stage2Result != nil
}
