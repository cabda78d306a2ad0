// Package router assembles the gin engine: ambient middleware, the public
// probes and the session-protected API under the configured prefix.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/handler"
	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/changedesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/changedesk-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handler.AuthHandler
	ChangeRequests *handler.ChangeRequestHandler
	Tasks          *handler.TaskHandler
	Projects       *handler.ProjectHandler
	Admin          *handler.AdminHandler
	Reports        *handler.ReportHandler
	Health         *handler.HealthHandler
}

// Options carries the engine-level settings.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	Source         middleware.SessionSource
	Docs           bool
	Logger         *zap.Logger
	Metrics        middleware.HTTPObserver
}

const metricsPath = "/metrics"

// New builds the engine.
func New(h Handlers, sessions middleware.SessionResolver, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins, opts.Source.Header))
	r.Use(middleware.Metrics(opts.Metrics, metricsPath))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET(metricsPath, h.Health.Prometheus)
	if opts.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.Session(sessions, opts.Source), middleware.WithResponseMeta())

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	changes := secured.Group("/change-requests")
	changes.GET("", h.ChangeRequests.List)
	changes.POST("", h.ChangeRequests.Create)
	changes.GET("/export", h.ChangeRequests.Export)
	changes.GET("/:id", h.ChangeRequests.Get)
	changes.PUT("/:id", h.ChangeRequests.Update)
	changes.POST("/:id/actions/:action", h.ChangeRequests.Act)

	tasks := secured.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.POST("/:id/actions/:action", h.Tasks.Act)
	tasks.GET("/:id/checklist", h.Tasks.Checklist)
	tasks.GET("/:id/activities", h.Tasks.Activities)

	requests := secured.Group("/project-requests")
	requests.GET("", h.Projects.ListRequests)
	requests.POST("", h.Projects.CreateRequest)
	requests.GET("/:id", h.Projects.GetRequest)
	requests.POST("/:id/actions/:action", h.Projects.ActRequest)

	projects := secured.Group("/projects")
	projects.GET("", h.Projects.ListProjects)
	projects.GET("/:id", h.Projects.GetProject)
	projects.POST("/:id/actions/:action", h.Projects.ActProject)

	secured.GET("/departments", h.Admin.Departments)
	secured.POST("/departments", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.Admin.CreateDepartment)
	secured.GET("/users", h.Admin.SearchUsers)

	admin := secured.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/roles", h.Admin.Roles)
	admin.GET("/users/:id/roles", h.Admin.UserRoles)
	admin.PUT("/users/:id/roles", h.Admin.SetUserRoles)
	admin.GET("/action-log", h.Admin.ActionLog)

	secured.GET("/reports/*name", h.Reports.Report)
	secured.GET("/dashboard", h.Reports.Dashboard)

	return r
}
