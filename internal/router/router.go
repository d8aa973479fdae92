package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mrstrict/internal/handler"
	"mrstrict/internal/middleware"
	"mrstrict/internal/service"
)

// Options carries the router's non-handler dependencies.
type Options struct {
	Logger         zerolog.Logger
	CORSOrigins    []string
	MetricsHandler http.Handler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokenSvc service.TokenService,
	evalH *handler.EvaluationHandler,
	healthH *handler.HealthHandler,
	opts Options,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.CORSOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(tokenSvc))

	evaluations := protected.Group("/evaluations")
	evaluations.POST("", evalH.Create)
	evaluations.GET("", evalH.List)
	evaluations.GET("/:id", evalH.GetByID)
	evaluations.DELETE("/:id", evalH.Delete)
	evaluations.GET("/:id/export", evalH.Export)
	evaluations.GET("/:id/report", evalH.ReportURL)
	evaluations.POST("/:id/notify", evalH.Notify)

	return r
}
