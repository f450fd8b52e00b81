package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

//go:generate mockery --name CompanyService --output ../mocks
type CompanyService interface {
	List(ctx context.Context) ([]domain.Company, error)
	Get(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, name string) (*domain.Company, error)
	Update(ctx context.Context, id, name string) (*domain.Company, error)
	Delete(ctx context.Context, id string) error
}

type CompanyHandler struct {
	*BaseHandler
	service CompanyService
}

func NewCompanyHandler(service CompanyService, base *BaseHandler) *CompanyHandler {
	return &CompanyHandler{BaseHandler: base, service: service}
}

// ListCompanies godoc
// @Summary List companies
// @Description List the companies of the caller's tenant
// @Tags companies
// @Produce json
// @Success 200 {array} dto.CompanyResponse
// @Failure 401 {object} dto.Error
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.service.List(h.RequestCtx(c))
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCompanies(companies))
}

// GetCompany godoc
// @Summary Get company
// @Tags companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} dto.Error
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := h.ResourceID(c)
	if !ok {
		return
	}

	company, err := h.service.Get(h.RequestCtx(c), id)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCompany(company))
}

// CreateCompany godoc
// @Summary Create company
// @Tags companies
// @Accept json
// @Produce json
// @Param body body dto.CreateCompanyRequest true "Company"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} dto.Error
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	company, err := h.service.Create(h.RequestCtx(c), req.Name)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromCompany(company))
}

// UpdateCompany godoc
// @Summary Rename company
// @Tags companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param body body dto.UpdateCompanyRequest true "Company"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := h.ResourceID(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	company, err := h.service.Update(h.RequestCtx(c), id, req.Name)
	if err != nil {
		h.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCompany(company))
}

// DeleteCompany godoc
// @Summary Delete company and its sales
// @Tags companies
// @Param id path string true "Company ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := h.ResourceID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(h.RequestCtx(c), id); err != nil {
		h.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
