package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

//go:generate mockery --name SaleService --output ../mocks
type SaleService interface {
	ListByCompany(ctx context.Context, filter *domain.SaleFilter) ([]domain.Sale, error)
	Get(ctx context.Context, id string) (*domain.Sale, error)
	Create(ctx context.Context, companyID string, amount float64) (*domain.Sale, error)
}

type SaleHandler struct {
	*BaseHandler
	service SaleService
}

func NewSaleHandler(service SaleService, base *BaseHandler) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// ListSales godoc
// @Summary List sales of a company
// @Tags sales
// @Produce json
// @Param companyId query string true "Company ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} dto.SalePageResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var req dto.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	filter := &domain.SaleFilter{
		CompanyID: req.CompanyID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	sales, err := h.service.ListByCompany(h.RequestCtx(c), filter)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SalePageResponse{
		Items:    dto.FromSales(sales),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// GetSale godoc
// @Summary Get sale
// @Tags sales
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} dto.Error
// @Router /sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := h.ResourceID(c)
	if !ok {
		return
	}

	sale, err := h.service.Get(h.RequestCtx(c), id)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSale(sale))
}

// CreateSale godoc
// @Summary Record a sale
// @Tags sales
// @Accept json
// @Produce json
// @Param body body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} dto.Error
// @Router /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	sale, err := h.service.Create(h.RequestCtx(c), req.CompanyID, req.Amount)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSale(sale))
}
