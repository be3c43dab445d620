package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/requestid"
)

// RouterConfig carries the HTTP surface settings.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
}

// Handlers groups the endpoint handlers and the auth/metrics hooks. Export
// may be nil when exports are disabled.
type Handlers struct {
	Auth     *AuthHandler
	Seating  *SeatingHandler
	Export   *ExportHandler
	Metrics  *MetricsHandler
	Tokens   middleware.TokenValidator
	Observer middleware.RequestObserver
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(h.Observer))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/seats/:hallTicket", middleware.OptionalJWT(h.Tokens), h.Seating.LookupSeat)

	authed := api.Group("")
	authed.Use(middleware.JWT(h.Tokens))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	seating := authed.Group("/seating")
	seating.POST("/allocate", admin, middleware.Audit(cfg.Logger, "plan.allocate"), h.Seating.Allocate)
	seating.POST("/allocate/upload", admin, middleware.Audit(cfg.Logger, "plan.allocate_upload"), h.Seating.AllocateUpload)
	seating.GET("/plan", staff, h.Seating.Plan)
	seating.GET("/plan/assignments", staff, h.Seating.Assignments)
	seating.GET("/plan/summary", staff, h.Seating.Summary)
	seating.GET("/plan/dates", staff, h.Seating.Dates)
	seating.DELETE("/plan", admin, middleware.Audit(cfg.Logger, "plan.clear"), h.Seating.Clear)

	if h.Export != nil {
		seating.POST("/plan/exports", staff, h.Export.CreateExport)
		seating.GET("/exports/:id", staff, h.Export.ExportStatus)
		api.GET("/export/:token", h.Export.Download)
	}

	authed.PUT("/faculty/directory", admin, middleware.Audit(cfg.Logger, "faculty.directory_replace"), h.Auth.ReplaceDirectory)

	return r
}
