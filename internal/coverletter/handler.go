package coverletter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/quota"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

// Handler exposes the cover letter endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches cover letter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/cover-letter", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")
	c.Set("jobId", jobID)

	letter, err := h.Svc.Generate(c.Request.Context(), userID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrDenied):
			respond.Error(c, http.StatusTooManyRequests, "quota_denied", err.Error(), nil)
		case errors.Is(err, ErrJobNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrNoOptimization):
			respond.Error(c, http.StatusConflict, "no_optimization", "run optimization before generating a letter", nil)
		case errors.Is(err, ErrMissingIdentity):
			respond.Error(c, http.StatusUnprocessableEntity, "missing_identity", "personal info section yields no name", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate cover letter", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, letter)
}
