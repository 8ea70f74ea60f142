package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/briefflow/briefflow-backend/internal/api/http"
	"github.com/briefflow/briefflow-backend/internal/api/http/middleware"
	"github.com/briefflow/briefflow-backend/internal/directory"
	directoryhttp "github.com/briefflow/briefflow-backend/internal/directory/http"
	workflowhttp "github.com/briefflow/briefflow-backend/internal/workflow/http"
	workflowservice "github.com/briefflow/briefflow-backend/internal/workflow/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Redis       *redis.Client
	Workflow    *workflowservice.WorkflowService
	Directory   *directory.Service
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestID())

	workflowhttp.NewHandler(dep.Workflow).Register(api)
	directoryhttp.NewHandler(dep.Directory).Register(api)

	return r
}
