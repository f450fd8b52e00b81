package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/service"
)

const statusSent = "sent"

//go:generate mockery --name NotificationService --output ../mocks
type NotificationService interface {
	NotifyTenant(ctx context.Context) error
	Broadcast(ctx context.Context, method string, payload json.RawMessage) error
	SendToUsers(ctx context.Context, userIDs []string, method string, payload json.RawMessage) error
}

type NotificationHandler struct {
	*BaseHandler
	service NotificationService
}

func NewNotificationHandler(service NotificationService, base *BaseHandler) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, service: service}
}

// NotifyTenant godoc
// @Summary Notify my tenant
// @Description Send the tenant's companies to every live connection of the tenant
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.NotificationResponse
// @Failure 401 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /notifications [post]
func (h *NotificationHandler) NotifyTenant(c *gin.Context) {
	if err := h.service.NotifyTenant(h.RequestCtx(c)); err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationResponse{Method: service.MethodReceiveNotification, Status: statusSent})
}

// Broadcast godoc
// @Summary Broadcast to every connection
// @Description Send a notification to all connections of all tenants. Requires the admin role.
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body dto.NotificationRequest true "Notification"
// @Success 200 {object} dto.NotificationResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	if err := h.service.Broadcast(h.RequestCtx(c), req.Method, req.Payload); err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationResponse{Method: req.Method, Status: statusSent})
}

// SendToUsers godoc
// @Summary Send to users
// @Description Send a notification to every connection of the given users, in any tenant. Requires the admin role.
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body dto.UserNotificationRequest true "Notification"
// @Success 200 {object} dto.NotificationResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /notifications/users [post]
func (h *NotificationHandler) SendToUsers(c *gin.Context) {
	var req dto.UserNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	if err := h.service.SendToUsers(h.RequestCtx(c), req.UserIDs, req.Method, req.Payload); err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationResponse{Method: req.Method, Status: statusSent})
}
