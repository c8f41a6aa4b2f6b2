package optimize

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/quota"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

// Handler exposes optimization endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches optimization routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/optimize", h.run)
	rg.GET("/jobs/:id/optimize", h.get)
}

func (h *Handler) run(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")
	c.Set("jobId", jobID)

	result, err := h.Svc.Run(c.Request.Context(), userID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrDenied):
			respond.Error(c, http.StatusTooManyRequests, "quota_denied", err.Error(), nil)
		case errors.Is(err, ErrJobNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrNoResume):
			respond.Error(c, http.StatusConflict, "no_resume", "upload a resume before optimizing", nil)
		case errors.Is(err, ErrInsufficientJobData):
			respond.Error(c, http.StatusUnprocessableEntity, "insufficient_job_data", "job has no skills or category to optimize against", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to optimize resume", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")
	c.Set("jobId", jobID)

	result, err := h.Svc.Get(c.Request.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no optimization result for this job", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch result", nil)
		return
	}
	respond.OK(c, result)
}
