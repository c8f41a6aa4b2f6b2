package resumes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

const maxResumeBytes = 5 << 20

// Handler exposes résumé ingestion endpoints.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes/sections", h.sections)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxResumeBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read body", nil)
		return
	}
	if len(body) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "empty resume payload", nil)
		return
	}
	if len(body) > maxResumeBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "resume exceeds size limit", nil)
		return
	}

	sections, err := ExtractSections(c.Request.Context(), body, c.ContentType())
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupported):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", "only PDF and plain text resumes are accepted", nil)
		case errors.Is(err, ErrExtractEmpty), errors.Is(err, ErrEmptyResume):
			respond.Error(c, http.StatusUnprocessableEntity, "empty_resume", "no resume content could be extracted", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to extract resume", nil)
		}
		return
	}

	if err := h.Repo.ReplaceSections(c.Request.Context(), userID, sections); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store resume", nil)
		return
	}

	titles := make([]string, len(sections))
	for i, s := range sections {
		titles[i] = s.Title
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"sections": titles,
		"count":    len(sections),
	})
}

func (h *Handler) sections(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sections, err := h.Repo.GetSections(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no resume on file", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch sections", nil)
		return
	}
	respond.OK(c, gin.H{"sections": sections})
}
