package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

//go:generate mockery --name TenantService --output ../mocks
type TenantService interface {
	Current(ctx context.Context) (*domain.TenantInfo, error)
	List(ctx context.Context) ([]domain.TenantInfo, error)
}

type TenantHandler struct {
	*BaseHandler
	service TenantService
}

func NewTenantHandler(service TenantService, base *BaseHandler) *TenantHandler {
	return &TenantHandler{BaseHandler: base, service: service}
}

// CurrentTenant godoc
// @Summary Current tenant
// @Description Get the tenant the request was resolved to
// @Tags tenants
// @Produce json
// @Success 200 {object} dto.TenantResponse
// @Failure 401 {object} dto.Error
// @Router /tenant [get]
func (h *TenantHandler) CurrentTenant(c *gin.Context) {
	tenant, err := h.service.Current(h.RequestCtx(c))
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTenant(tenant))
}

// ListTenants godoc
// @Summary List all tenants
// @Description Get the tenant directory. Requires the admin role.
// @Tags tenants
// @Produce json
// @Success 200 {array} dto.TenantResponse
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.service.List(h.RequestCtx(c))
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTenants(tenants))
}
