package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const (
	websocketReadBufferSize  = 1024
	websocketWriteBufferSize = 1024

	// TargetSendNotification asks the server to push the caller's tenant
	// companies to every connection of that tenant.
	TargetSendNotification = "SendNotification"

	frameTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  websocketReadBufferSize,
	WriteBufferSize: websocketWriteBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type TokenVerifier interface {
	Verify(token string) (jwt.MapClaims, error)
}

// TenantNotifier is the part of the notification service the hub invokes.
type TenantNotifier interface {
	NotifyTenant(ctx context.Context) error
}

type WebSocketHandler struct {
	*BaseHandler
	verifier      TokenVerifier
	connect       *tenancy.Resolver
	reenter       *tenancy.Resolver
	registry      *realtime.Registry
	notifications TenantNotifier
	metrics       *metrics.Metrics
}

// NewWebSocketHandler resolves tenants on connect with claimStrategy. Inbound
// frames are resolved again from the connection items only.
func NewWebSocketHandler(
	verifier TokenVerifier,
	directory tenancy.Directory,
	claimStrategy tenancy.Strategy,
	registry *realtime.Registry,
	notifications TenantNotifier,
	m *metrics.Metrics,
	logger *logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		BaseHandler:   NewBaseHandler(logger),
		verifier:      verifier,
		connect:       tenancy.NewResolver(directory, claimStrategy),
		reenter:       tenancy.NewResolver(directory, tenancy.ItemStrategy{Key: realtime.ItemTenantIdentifier}),
		registry:      registry,
		notifications: notifications,
		metrics:       m,
	}
}

// HandleWebSocket godoc
// @Summary Realtime hub
// @Description Upgrade to a websocket joined to the caller's tenant group. The token may be passed as access_token.
// @Tags realtime
// @Param access_token query string false "Bearer token"
// @Success 101
// @Failure 401 {object} dto.Error
// @Router /hub [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token, err := middleware.TokenFromUpgrade(c.Request)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Error: middleware.ErrInvalidToken.Error()})
		return
	}

	tenant, err := h.connect.Resolve(c.Request.Context(), tenancy.Claims(claims))
	if err != nil {
		h.recordResolutionFailure("websocket_connect", err)
		if tenancy.IsResolutionFailure(err) {
			h.logger.Warn("Rejected websocket without tenant", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Error: err.Error()})
			return
		}
		h.Fail(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already answered the client.
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	userID, _ := claims.GetSubject()
	conn := realtime.NewConn(userID, 0)
	conn.SetItem(realtime.ItemTenantIdentifier, tenant.Identifier)
	defer h.registry.Leave(conn.ID())

	if err := h.registry.Join(conn, realtime.TenantGroup(tenant.Identifier)); err != nil {
		h.logger.Error("Failed to join tenant group", err, zap.String("tenant", tenant.Identifier))
		ws.Close()
		return
	}

	h.logger.Info("Websocket connected",
		zap.String("connection_id", conn.ID()),
		zap.String("user_id", userID),
		zap.String("tenant", tenant.Identifier))

	realtime.Serve(ws, conn, h.handleFrame, h.logger)

	h.logger.Info("Websocket disconnected", zap.String("connection_id", conn.ID()))
}

// handleFrame runs each inbound frame as its own operation. The tenant is
// re-entered from the connection items, never reused from the upgrade.
func (h *WebSocketHandler) handleFrame(conn *realtime.Conn, frame realtime.Frame) {
	if frame.Type != realtime.FrameInvoke {
		_ = conn.Send(realtime.ErrorFrame("unsupported frame type"))
		return
	}
	if frame.Target != TargetSendNotification {
		_ = conn.Send(realtime.ErrorFrame("unknown target " + frame.Target))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	ctx, tenant, err := h.reenter.Enter(ctx, conn)
	if err != nil {
		// Best effort: the trigger is dropped and the connection stays open.
		h.recordResolutionFailure("websocket_frame", err)
		h.logger.Warn("Skipped notification trigger without tenant",
			zap.String("connection_id", conn.ID()),
			zap.Error(err))
		return
	}

	if err := h.notifications.NotifyTenant(ctx); err != nil {
		h.logger.Error("Notification trigger failed", err,
			zap.String("connection_id", conn.ID()),
			zap.String("tenant", tenant.Identifier))
		_ = conn.Send(realtime.ErrorFrame("notification failed"))
	}
}

func (h *WebSocketHandler) recordResolutionFailure(transport string, err error) {
	reason := "error"
	switch {
	case errors.Is(err, tenancy.ErrTenantUnresolved):
		reason = "unresolved"
	case errors.Is(err, tenancy.ErrTenantNotFound):
		reason = "not_found"
	}
	h.metrics.RecordResolutionFailure(transport, reason)
}
