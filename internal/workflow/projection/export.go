package projection

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
)

// summaryColumns is the fixed column set of the flattened CSV export.
var summaryColumns = []string{
	"Project Name", "Brand Name", "Project Type", "Target Audience",
	"Timeline", "Budget", "Objectives Count", "Deliverables Count",
	"Processing Time", "Tokens Used", "Basecamp Uploaded", "Notifications Sent",
}

// FlattenSummary flattens a session's results into the fixed export record.
// Missing fields render as "N/A", matching the tabular export contract.
func FlattenSummary(s *domain.WorkflowSession) ([]string, []string) {
	brief := &analyzer.ProjectBrief{}
	var tokensUsed int
	var processingTime float64
	if s.Stage1Result != nil {
		if s.Stage1Result.ProjectBrief != nil {
			brief = s.Stage1Result.ProjectBrief
		}
		tokensUsed = s.Stage1Result.TokensUsed
		processingTime = s.Stage1Result.ProcessingTime
	}

	tokens := "N/A"
	if tokensUsed > 0 {
		tokens = strconv.Itoa(tokensUsed)
	}

	values := []string{
		orNA(brief.ProjectName),
		orNA(brief.BrandName),
		orNA(brief.ProjectType),
		orNA(brief.TargetAudience),
		orNA(brief.Timeline),
		orNA(brief.Budget),
		strconv.Itoa(len(brief.Objectives)),
		strconv.Itoa(len(brief.Deliverables)),
		fmt.Sprintf("%.2fs", processingTime),
		tokens,
		yesNo(anyUploaded(s)),
		yesNo(anyNotified(s)),
	}

	return summaryColumns, values
}

// ExportJSON renders the full-fidelity session dump. Raw backend payloads are
// retained verbatim inside the stage results.
func ExportJSON(s *domain.WorkflowSession) ([]byte, error) {
	out := struct {
		SessionID      string                   `json:"session_id"`
		Stage          string                   `json:"stage"`
		ProjectBriefID string                   `json:"project_brief_id,omitempty"`
		ProjectName    string                   `json:"project_name,omitempty"`
		Stage1Result   *analyzer.Stage1Response `json:"stage1_result,omitempty"`
		Stage2Result   *analyzer.Stage2Response `json:"stage2_result,omitempty"`
	}{
		SessionID:      s.SessionID,
		Stage:          s.Stage,
		ProjectBriefID: s.ProjectBriefID,
		ProjectName:    s.ProjectName,
		Stage1Result:   s.Stage1Result,
		Stage2Result:   s.Stage2Result,
	}
	return json.MarshalIndent(out, "", "  ")
}

// ExportCSV renders the flattened summary as a two-row CSV document.
func ExportCSV(s *domain.WorkflowSession) ([]byte, error) {
	header, values := FlattenSummary(s)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.Write(values); err != nil {
		return nil, fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func anyUploaded(s *domain.WorkflowSession) bool {
	if s.Stage1Result != nil && s.Stage1Result.Basecamp != nil && s.Stage1Result.Basecamp.ContentWriterUploaded {
		return true
	}
	return s.Stage2Result != nil && s.Stage2Result.Basecamp != nil && s.Stage2Result.Basecamp.DesignerUploaded
}

func anyNotified(s *domain.WorkflowSession) bool {
	if s.Stage1Result != nil && s.Stage1Result.Basecamp != nil && s.Stage1Result.Basecamp.ContentWriterNotified {
		return true
	}
	return s.Stage2Result != nil && s.Stage2Result.Basecamp != nil && s.Stage2Result.Basecamp.DesignerNotified
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
