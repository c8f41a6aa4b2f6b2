package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/coverletter"
	"outreach-backend/internal/jobs"
	"outreach-backend/internal/optimize"
	"outreach-backend/internal/outreach"
	"outreach-backend/internal/quota"
	"outreach-backend/internal/resumes"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config             config.Config
	JobsHandler        *jobs.Handler
	ResumesHandler     *resumes.Handler
	OptimizeHandler    *optimize.Handler
	CoverLetterHandler *coverletter.Handler
	OutreachHandler    *outreach.Handler
	QuotaHandler       *quota.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.ResumesHandler != nil {
		deps.ResumesHandler.RegisterRoutes(api)
	}
	if deps.OptimizeHandler != nil {
		deps.OptimizeHandler.RegisterRoutes(api)
	}
	if deps.CoverLetterHandler != nil {
		deps.CoverLetterHandler.RegisterRoutes(api)
	}
	if deps.OutreachHandler != nil {
		deps.OutreachHandler.RegisterRoutes(api)
	}
	if deps.QuotaHandler != nil {
		deps.QuotaHandler.RegisterRoutes(api)
	}

	if deps.Config.Env == "dev" && deps.QuotaHandler != nil {
		dev := api.Group("/dev")
		deps.QuotaHandler.RegisterDevRoutes(dev)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
