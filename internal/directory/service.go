// Package directory serves the project and recipient listings the workflow
// selects from, read through a redis cache in front of the analyzer backend.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/briefflow/briefflow-backend/internal/analyzer"
)

const (
	projectsCacheKey = "dir:projects"
	usersCacheKey    = "dir:users"

	// DefaultCacheTTL is how long a cached listing counts as fresh.
	DefaultCacheTTL = 5 * time.Minute
)

// Lister is the analyzer backend surface the directory needs.
type Lister interface {
	ListProjects(ctx context.Context) ([]analyzer.Project, error)
	ListUsers(ctx context.Context) ([]analyzer.User, error)
}

// Service caches backend listings and applies the selection filters: active
// projects only, and only users addressable through Basecamp.
type Service struct {
	client *redis.Client
	lister Lister
	ttl    time.Duration
}

// NewService creates a new directory Service
func NewService(client *redis.Client, lister Lister, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client: client,
		lister: lister,
		ttl:    ttl,
	}
}

type projectsEnvelope struct {
	FetchedAt time.Time          `json:"fetched_at"`
	Projects  []analyzer.Project `json:"projects"`
}

type usersEnvelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Users     []analyzer.User `json:"users"`
}

// ActiveProjects returns backend projects with status "active". A fresh cache
// is served directly; otherwise the backend is queried and, if that fails
// with a warm cache, the stale listing is served with a logged warning.
func (s *Service) ActiveProjects(ctx context.Context) ([]analyzer.Project, error) {
	var env projectsEnvelope
	cached := s.load(ctx, projectsCacheKey, &env) == nil
	if cached && time.Since(env.FetchedAt) < s.ttl {
		return filterActive(env.Projects), nil
	}

	projects, err := s.RefreshProjects(ctx)
	if err != nil {
		if cached {
			log.Printf("[warn] directory refresh failed, serving stale projects: %v", err)
			return filterActive(env.Projects), nil
		}
		return nil, err
	}
	return projects, nil
}

// EligibleRecipients returns users that can be addressed as a content writer
// or designer, i.e. those with a non-empty Basecamp identifier.
func (s *Service) EligibleRecipients(ctx context.Context) ([]analyzer.User, error) {
	var env usersEnvelope
	cached := s.load(ctx, usersCacheKey, &env) == nil
	if cached && time.Since(env.FetchedAt) < s.ttl {
		return filterEligible(env.Users), nil
	}

	users, err := s.RefreshUsers(ctx)
	if err != nil {
		if cached {
			log.Printf("[warn] directory refresh failed, serving stale users: %v", err)
			return filterEligible(env.Users), nil
		}
		return nil, err
	}
	return users, nil
}

// RefreshProjects fetches the project listing from the backend and rewrites
// the cache.
func (s *Service) RefreshProjects(ctx context.Context) ([]analyzer.Project, error) {
	projects, err := s.lister.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, projectsCacheKey, projectsEnvelope{FetchedAt: time.Now(), Projects: projects})
	return filterActive(projects), nil
}

// RefreshUsers fetches the user listing from the backend and rewrites the
// cache.
func (s *Service) RefreshUsers(ctx context.Context) ([]analyzer.User, error) {
	users, err := s.lister.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, usersCacheKey, usersEnvelope{FetchedAt: time.Now(), Users: users})
	return filterEligible(users), nil
}

func (s *Service) load(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("cache miss for %s", key)
	}
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	return json.Unmarshal([]byte(data), out)
}

func (s *Service) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[warn] marshal directory cache %s: %v", key, err)
		return
	}
	// No key TTL: a stale entry is still useful when the backend is down.
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		log.Printf("[warn] write directory cache %s: %v", key, err)
	}
}

func filterActive(projects []analyzer.Project) []analyzer.Project {
	out := make([]analyzer.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status == "active" {
			out = append(out, p)
		}
	}
	return out
}

func filterEligible(users []analyzer.User) []analyzer.User {
	out := make([]analyzer.User, 0, len(users))
	for _, u := range users {
		if u.BasecampUserID != "" {
			out = append(out, u)
		}
	}
	return out
}
