package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/briefflow/briefflow-backend/internal/workflow/domain"
)

const (
	sessionKeyPrefix = "wf:session:" // Key for session data: wf:session:{session_id}
	briefIndexPrefix = "wf:brief:"   // Mapping from project brief ID to session ID: wf:brief:{project_brief_id} -> session_id
	lockKeyPrefix    = "wf:lock:"    // In-flight submission marker: wf:lock:{session_id}

	// DefaultSessionTTL bounds how long an abandoned session survives.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionRepository handles Redis operations for workflow sessions
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Create stores a new workflow session, assigning an ID if missing. The brief
// index is never written here: it tracks the session that produced the brief,
// and a session carrying a ProjectBriefID at creation merely attached to one.
func (r *SessionRepository) Create(ctx context.Context, s *domain.WorkflowSession) error {
	if s.SessionID == "" {
		s.SessionID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(s.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// Get retrieves a session by its ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.WorkflowSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s domain.WorkflowSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &s, nil
}

// GetByProjectBriefID retrieves the session that produced a project brief
func (r *SessionRepository) GetByProjectBriefID(ctx context.Context, projectBriefID string) (*domain.WorkflowSession, error) {
	sessionID, err := r.client.Get(ctx, r.briefIndexKey(projectBriefID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by project brief: %w", err)
	}

	return r.Get(ctx, sessionID)
}

// Update persists session mutations. When the session gains a new brief ID it
// is the producing session, so the index is (re)written to point at it.
func (r *SessionRepository) Update(ctx context.Context, s *domain.WorkflowSession) error {
	existing, err := r.Get(ctx, s.SessionID)
	if err != nil {
		return err
	}

	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.sessionKey(s.SessionID), data, r.ttl)
	if s.ProjectBriefID != "" && s.ProjectBriefID != existing.ProjectBriefID {
		if existing.ProjectBriefID != "" {
			pipe.Del(ctx, r.briefIndexKey(existing.ProjectBriefID))
		}
		pipe.Set(ctx, r.briefIndexKey(s.ProjectBriefID), s.SessionID, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// Delete abandons a session entirely. The brief index is removed only when it
// points at this session: deleting a session that merely attached to a brief
// must not sever the index to the session that produced it.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.sessionKey(sessionID))
	pipe.Del(ctx, r.lockKey(sessionID))
	if s.ProjectBriefID != "" {
		indexed, err := r.client.Get(ctx, r.briefIndexKey(s.ProjectBriefID)).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("read brief index: %w", err)
		}
		if indexed == sessionID {
			pipe.Del(ctx, r.briefIndexKey(s.ProjectBriefID))
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// AcquireLock marks a submission as in flight for the session. It returns
// false when another submission already holds the marker.
func (r *SessionRepository) AcquireLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.lockKey(sessionID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire session lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock clears the in-flight marker
func (r *SessionRepository) ReleaseLock(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.lockKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}

func (r *SessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, sessionID)
}

func (r *SessionRepository) briefIndexKey(projectBriefID string) string {
	return fmt.Sprintf("%s%s", briefIndexPrefix, projectBriefID)
}

func (r *SessionRepository) lockKey(sessionID string) string {
	return fmt.Sprintf("%s%s", lockKeyPrefix, sessionID)
}
