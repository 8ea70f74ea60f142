package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/briefflow/briefflow-backend/internal/directory"
)

type Scheduler struct {
	svc  *directory.Service
	spec string
}

func NewScheduler(svc *directory.Service, spec string) *Scheduler {
	return &Scheduler{svc: svc, spec: spec}
}

// Start initializes the directory refresh cron task
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		s.refresh()
	})
	if err != nil {
		log.Printf("Failed to create directory refresh job: %v", err)
		return
	}

	log.Printf("Directory refresh scheduler started (spec %q)", s.spec)
	c.Start()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.svc.RefreshProjects(ctx); err != nil {
		log.Printf("Directory projects refresh failed: %v", err)
	}
	if _, err := s.svc.RefreshUsers(ctx); err != nil {
		log.Printf("Directory users refresh failed: %v", err)
	}
}
