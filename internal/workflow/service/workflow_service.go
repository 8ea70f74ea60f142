package service

import (
	"context"
	"log"
	"time"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
	"github.com/briefflow/briefflow-backend/internal/workflow/repository"
)

// Gateway is the analyzer backend surface the workflow needs.
type Gateway interface {
	SubmitBrief(ctx context.Context, sub analyzer.BriefSubmission) (*analyzer.Stage1Response, error)
	SubmitContent(ctx context.Context, sub analyzer.ContentSubmission) (*analyzer.Stage2Response, error)
}

// WorkflowService drives the two-stage workflow:
// not_started -> stage1_complete -> stage2_complete.
// A failed submission leaves the session unchanged; resubmitting is always
// safe because the backend owns deduplication.
type WorkflowService struct {
	repo    *repository.SessionRepository
	gateway Gateway
	lockTTL time.Duration
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(repo *repository.SessionRepository, gateway Gateway) *WorkflowService {
	return &WorkflowService{
		repo:    repo,
		gateway: gateway,
		lockTTL: 6 * time.Minute, // outlives the longest submission timeout
	}
}

// StartSession selects a role and creates a fresh session. A content writer
// may attach to an existing brief: the Stage-1 snapshot is copied from the
// session that produced it so the assigned report data is visible.
func (s *WorkflowService) StartSession(ctx context.Context, req *domain.StartSessionRequest) (*domain.WorkflowSession, error) {
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	session := &domain.WorkflowSession{
		Role:  req.Role,
		Stage: domain.StageNotStarted,
	}

	if req.ProjectBriefID != "" {
		if req.Role != domain.RoleContentWriter {
			return nil, domain.NewValidationError("project_brief_id", "only a content writer can attach to an existing brief")
		}
		src, err := s.repo.GetByProjectBriefID(ctx, req.ProjectBriefID)
		if err != nil {
			if err == domain.ErrSessionNotFound {
				return nil, domain.NewValidationError("project_brief_id", "no completed brief analysis found for this identifier")
			}
			return nil, err
		}
		session.Stage = domain.StageStage1Complete
		session.ProjectBriefID = src.ProjectBriefID
		session.ProjectID = src.ProjectID
		session.ProjectName = src.ProjectName
		session.UploadedFileName = src.UploadedFileName
		session.ContentWriterID = src.ContentWriterID
		session.Stage1Result = src.Stage1Result
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	log.Printf("[info] session started session_id=%s role=%s", session.SessionID, session.Role)
	return session, nil
}

// GetSession retrieves a session by ID
func (s *WorkflowService) GetSession(ctx context.Context, sessionID string) (*domain.WorkflowSession, error) {
	return s.repo.Get(ctx, sessionID)
}

// ClearSession discards the session entirely. This is full abandonment, not a
// soft pause: whatever stage the workflow reached is gone.
func (s *WorkflowService) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("[info] session cleared session_id=%s", sessionID)
	return nil
}

// SubmitStage1 uploads a project brief for analysis. All guards run before
// any network call; on gateway failure the session is untouched.
func (s *WorkflowService) SubmitStage1(ctx context.Context, sessionID string, req *domain.SubmitBriefRequest) (*domain.WorkflowSession, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !domain.IsAllowed(session.Role, domain.ActionSubmitBrief) {
		return nil, domain.ErrRoleNotAllowed
	}
	if session.Stage == domain.StageStage2Complete {
		return nil, domain.ErrStageOrder
	}

	projectID := req.ProjectID
	if req.CustomProject {
		if req.ProjectName == "" {
			return nil, domain.NewValidationError("project_name", "a custom project needs a name")
		}
		// Custom projects are never tracked by the backend.
		projectID = ""
	} else if projectID == "" {
		return nil, domain.NewValidationError("project", "a project must be selected")
	}
	if req.ContentWriterID == "" {
		return nil, domain.NewValidationError("content_writer_id", "a content writer with Basecamp access must be selected")
	}
	if len(req.File) == 0 {
		return nil, domain.NewValidationError("file", "a project brief document is required")
	}
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "comprehensive"
	}
	if !domain.ValidAnalysisType(analysisType) {
		return nil, domain.NewValidationError("analysis_type", "must be one of basic, comprehensive, detailed")
	}

	ok, err := s.repo.AcquireLock(ctx, sessionID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionBusy
	}
	defer s.releaseLock(ctx, sessionID)

	result, err := s.gateway.SubmitBrief(ctx, analyzer.BriefSubmission{
		FileName:           req.FileName,
		File:               req.File,
		ContentWriterID:    req.ContentWriterID,
		AnalysisType:       analysisType,
		IncludeSuggestions: req.IncludeSuggestions,
		ProjectID:          projectID,
		ProjectName:        req.ProjectName,
	})
	if err != nil {
		return nil, err
	}

	session.Stage = domain.StageStage1Complete
	session.ProjectID = projectID
	session.ProjectName = req.ProjectName
	session.UploadedFileName = req.FileName
	session.ContentWriterID = req.ContentWriterID
	session.Stage1Result = result
	if result.ReportData != nil {
		session.ProjectBriefID = result.ReportData.ProjectBriefID
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	if errs := result.PartialErrors(); len(errs) > 0 {
		log.Printf("[warn] stage1 partial integration failure session_id=%s errors=%v", sessionID, errs)
	}
	log.Printf("[info] stage1 complete session_id=%s project_brief_id=%s", sessionID, session.ProjectBriefID)
	return session, nil
}

// releaseLock clears the in-flight marker. The request context may already be
// canceled by the time the deferred release runs (client gave up mid-submit),
// so the release must not inherit its cancelation or the lock would linger
// until its TTL and reject the retry.
func (s *WorkflowService) releaseLock(ctx context.Context, sessionID string) {
	if err := s.repo.ReleaseLock(context.WithoutCancel(ctx), sessionID); err != nil {
		log.Printf("[warn] release session lock failed session_id=%s error=%v", sessionID, err)
	}
}

// SubmitStage2 submits completed content for designer report generation.
// Stage 2 is only reachable once a project brief ID is held; missing
// prerequisites are reported before any network call.
func (s *WorkflowService) SubmitStage2(ctx context.Context, sessionID string, req *domain.SubmitContentRequest) (*domain.WorkflowSession, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !domain.IsAllowed(session.Role, domain.ActionSubmitContent) {
		return nil, domain.ErrRoleNotAllowed
	}
	if session.ProjectBriefID == "" {
		return nil, domain.NewValidationError("project_brief_id", "no completed brief analysis in this session")
	}
	if req.DesignerID == "" {
		return nil, domain.NewValidationError("designer_id", "a designer with Basecamp access must be selected")
	}
	if req.ContentText == "" && len(req.ContentFile) == 0 {
		return nil, domain.NewValidationError("content", "either content text or a content file is required")
	}

	ok, err := s.repo.AcquireLock(ctx, sessionID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionBusy
	}
	defer s.releaseLock(ctx, sessionID)

	result, err := s.gateway.SubmitContent(ctx, analyzer.ContentSubmission{
		ProjectBriefID:  session.ProjectBriefID,
		DesignerID:      req.DesignerID,
		ContentWriterID: session.ContentWriterID,
		ContentText:     req.ContentText,
		FileName:        req.FileName,
		ContentFile:     req.ContentFile,
	})
	if err != nil {
		return nil, err
	}

	session.Stage = domain.StageStage2Complete
	session.DesignerID = req.DesignerID
	session.SubmittedContent = req.ContentText
	session.Stage2Result = result

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	if errs := result.PartialErrors(); len(errs) > 0 {
		log.Printf("[warn] stage2 partial integration failure session_id=%s errors=%v", sessionID, errs)
	}
	log.Printf("[info] stage2 complete session_id=%s project_brief_id=%s", sessionID, session.ProjectBriefID)
	return session, nil
}
