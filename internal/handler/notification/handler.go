package notification

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rush-skills/plane/internal/middleware"
	"github.com/rush-skills/plane/internal/model"
	notificationService "github.com/rush-skills/plane/internal/service/notification"
	apperrors "github.com/rush-skills/plane/pkg/errors"
	"github.com/rush-skills/plane/pkg/httputil"
	"github.com/rush-skills/plane/pkg/validator"
)

type Handler struct {
	service notificationService.Service
}

func NewHandler(service notificationService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/workspaces/:slug/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/:id", h.GetNotification)
		notifications.PATCH("/:id", h.UpdateNotification)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.DELETE("/:id/read", h.MarkUnread)
		notifications.POST("/:id/unread", h.MarkUnread)
		notifications.POST("/:id/archive", h.Archive)
		notifications.DELETE("/:id/archive", h.Unarchive)
		notifications.POST("/:id/unarchive", h.Unarchive)
	}
}

// updateNotificationRequest only carries snoozed_till; any other key in the body is ignored.
// The timestamp itself is parsed by the service once the notification is resolved.
type updateNotificationRequest struct {
	SnoozedTill *string `json:"snoozed_till"`
}

func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	defaults := model.DefaultNotificationListParams()
	params := model.NotificationListParams{
		OrderBy:  c.DefaultQuery("order_by", defaults.OrderBy),
		Snoozed:  c.DefaultQuery("snoozed", defaults.Snoozed),
		Archived: c.DefaultQuery("archived", defaults.Archived),
		Read:     c.DefaultQuery("read", defaults.Read),
		Type:     c.DefaultQuery("type", defaults.Type),
	}

	notifications, err := h.service.List(c.Request.Context(), c.Param("slug"), userID, params)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) GetNotification(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	notification, err := h.service.Get(c.Request.Context(), c.Param("slug"), c.Param("id"), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notification)
}

func (h *Handler) UpdateNotification(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondWithError(c, bindError(err))
		return
	}

	notification, err := h.service.PartialUpdateSnooze(c.Request.Context(), c.Param("slug"), c.Param("id"), userID, req.SnoozedTill)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notification)
}

func (h *Handler) MarkRead(c *gin.Context) {
	h.transition(c, h.service.MarkRead)
}

func (h *Handler) MarkUnread(c *gin.Context) {
	h.transition(c, h.service.MarkUnread)
}

func (h *Handler) Archive(c *gin.Context) {
	h.transition(c, h.service.Archive)
}

func (h *Handler) Unarchive(c *gin.Context) {
	h.transition(c, h.service.Unarchive)
}

type transitionFunc func(ctx context.Context, workspaceSlug, id string, userID uuid.UUID) (*model.Notification, error)

func (h *Handler) transition(c *gin.Context, apply transitionFunc) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	notification, err := apply(c.Request.Context(), c.Param("slug"), c.Param("id"), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notification)
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	if id, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := id.(uuid.UUID); ok {
			return userID, true
		}
	}
	httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing caller identity")))
	return uuid.Nil, false
}

func bindError(err error) error {
	if fields := validator.FieldErrors(err); fields != nil {
		return apperrors.Validation(fields, err)
	}
	return apperrors.Validation(map[string][]string{
		"non_field_errors": {"Malformed JSON body."},
	}, err)
}
