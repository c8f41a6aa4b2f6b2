package outreach

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/quota"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

// Handler exposes outreach message endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches outreach routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/outreach", h.createDraft)
	rg.GET("/outreach", h.list)
	rg.GET("/outreach/:id", h.get)
	rg.GET("/outreach/:id/history", h.history)
	rg.PATCH("/outreach/:id", h.updateDraft)
	rg.POST("/outreach/:id/dispatch", h.dispatch)
	rg.POST("/outreach/:id/events", h.providerEvent)
	rg.DELETE("/outreach/:id", h.discard)
}

type draftRequest struct {
	RecipientEmail    string `json:"recipientEmail"`
	Subject           string `json:"subject"`
	Body              string `json:"body"`
	AttachmentVariant string `json:"attachmentVariant"`
}

func (r draftRequest) toDraft() (Draft, bool) {
	variant, ok := ParseAttachmentVariant(r.AttachmentVariant)
	if !ok {
		return Draft{}, false
	}
	return Draft{
		RecipientEmail:    r.RecipientEmail,
		Subject:           r.Subject,
		Body:              r.Body,
		AttachmentVariant: variant,
	}, true
}

func (h *Handler) createDraft(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	jobID := c.Param("id")
	c.Set("jobId", jobID)

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	draft, ok := req.toDraft()
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_variant", "attachmentVariant must be 'original' or 'optimized'", nil)
		return
	}

	msg, err := h.Svc.CreateDraft(c.Request.Context(), userID, jobID, draft)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create draft", nil)
		return
	}
	c.Set("messageId", msg.ID)
	respond.JSON(c, http.StatusCreated, messageView(msg))
}

func (h *Handler) updateDraft(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	draft, ok := req.toDraft()
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_variant", "attachmentVariant must be 'original' or 'optimized'", nil)
		return
	}
	if req.AttachmentVariant == "" {
		draft.AttachmentVariant = ""
	}

	msg, err := h.Svc.UpdateDraft(c.Request.Context(), userID, messageID, draft)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
		case errors.Is(err, ErrNotDraft):
			respond.Error(c, http.StatusConflict, "not_draft", "only draft messages can be edited", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update draft", nil)
		}
		return
	}
	respond.OK(c, messageView(msg))
}

func (h *Handler) dispatch(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	msg, err := h.Svc.Dispatch(ctx, userID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
		case errors.Is(err, ErrNotDraft):
			respond.Error(c, http.StatusConflict, "not_draft", "message was already dispatched", nil)
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrDuplicateInFlight):
			respond.Error(c, http.StatusConflict, "duplicate_in_flight", "another message for this job is already in flight", nil)
		case errors.Is(err, quota.ErrDenied):
			respond.Error(c, http.StatusTooManyRequests, "quota_denied", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to dispatch message", nil)
		}
		return
	}
	c.Set("stateTransition", "draft->sending")
	respond.JSON(c, http.StatusAccepted, messageView(msg))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	msg, err := h.Svc.Get(c.Request.Context(), userID, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch message", nil)
		return
	}
	respond.OK(c, messageView(msg))
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	msg, err := h.Svc.Get(c.Request.Context(), userID, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch message", nil)
		return
	}
	respond.OK(c, gin.H{
		"messageId": msg.ID,
		"state":     msg.State(),
		"history":   msg.History,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list messages", nil)
		return
	}
	views := make([]gin.H, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, messageView(msg))
	}
	respond.OK(c, gin.H{"messages": views, "count": len(views)})
}

type providerEventRequest struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

func (h *Handler) providerEvent(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	var req providerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", nil)
		return
	}
	kind, ok := ParseEventKind(req.Kind)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_event", "unknown event kind", nil)
		return
	}

	msg, err := h.Svc.ApplyProviderEvent(c.Request.Context(), userID, messageID, kind, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to apply event", nil)
		}
		return
	}
	c.Set("stateTransition", string(kind))
	respond.OK(c, messageView(msg))
}

func (h *Handler) discard(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	messageID := c.Param("id")
	c.Set("messageId", messageID)

	if err := h.Svc.Discard(c.Request.Context(), userID, messageID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "message not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to discard message", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// messageView decorates the message with its derived state for API output.
func messageView(msg Message) gin.H {
	return gin.H{
		"id":                msg.ID,
		"jobId":             msg.JobID,
		"recipientEmail":    msg.RecipientEmail,
		"senderEmail":       msg.SenderEmail,
		"subject":           msg.Subject,
		"body":              msg.Body,
		"attachmentVariant": msg.AttachmentVariant,
		"state":             msg.State(),
		"history":           msg.History,
		"createdAt":         msg.CreatedAt,
		"updatedAt":         msg.UpdatedAt,
	}
}
