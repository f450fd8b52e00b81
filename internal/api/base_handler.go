package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/internal/service"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type BaseHandler struct {
	logger *logger.Logger
}

func NewBaseHandler(logger *logger.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

// RequestCtx returns the operation context bound by the middleware chain.
// It carries the verified claims and the active tenant.
func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	return ginCtx.Request.Context()
}

// Fail writes err as a dto.Error with the status statusFor picks.
func (h *BaseHandler) Fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", err,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()))
		c.JSON(status, dto.Error{Error: http.StatusText(status)})
		return
	}
	c.JSON(status, dto.Error{Error: err.Error()})
}

// ResourceID returns the :id path parameter, or writes 404 when it is not
// a well-formed id.
func (h *BaseHandler) ResourceID(c *gin.Context) (string, bool) {
	var uri dto.ResourceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusNotFound, dto.Error{Error: http.StatusText(http.StatusNotFound)})
		return "", false
	}
	return uri.ID, true
}

func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case tenancy.IsResolutionFailure(err):
		return http.StatusUnauthorized
	case errors.Is(err, tenancy.ErrTenantMismatch):
		return http.StatusForbidden
	case errors.Is(err, service.ErrCompanyNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownCompany),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidName):
		return http.StatusBadRequest
	default:
		// Includes ErrTenantNotSet and ErrRawSQLNotScoped: the request got
		// past TenantContext, so either one is a server bug.
		return http.StatusInternalServerError
	}
}
