package main

import (
	"context"
	"log"

	"github.com/briefflow/briefflow-backend/config"
	"github.com/briefflow/briefflow-backend/internal/analyzer"
	"github.com/briefflow/briefflow-backend/internal/bootstrap"
	"github.com/briefflow/briefflow-backend/internal/db"
	"github.com/briefflow/briefflow-backend/internal/directory"
	dircron "github.com/briefflow/briefflow-backend/internal/directory/cron"
	"github.com/briefflow/briefflow-backend/internal/workflow/repository"
	"github.com/briefflow/briefflow-backend/internal/workflow/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("open redis: %v", err)
	}
	defer store.Close()

	client := analyzer.NewClient(cfg.Analyzer.BaseURL, analyzer.Options{
		ListTimeout:   cfg.Analyzer.ListTimeout,
		SubmitTimeout: cfg.Analyzer.SubmitTimeout,
		ListRate:      cfg.Analyzer.ListRate,
		ListBurst:     cfg.Analyzer.ListBurst,
	})

	sessionRepo := repository.NewSessionRepository(store.Client, cfg.Workflow.SessionTTL)
	workflowSvc := service.NewWorkflowService(sessionRepo, client)
	directorySvc := directory.NewService(store.Client, client, cfg.Directory.CacheTTL)

	dircron.NewScheduler(directorySvc, cfg.Directory.RefreshSpec).Start()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "briefflow-backend",
		Version:     cfg.App.Version,
		Redis:       store.Client,
		Workflow:    workflowSvc,
		Directory:   directorySvc,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
