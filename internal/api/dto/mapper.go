package dto

import (
	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

func FromTenant(tenant *domain.TenantInfo) TenantResponse {
	return TenantResponse{
		Identifier: tenant.Identifier,
		Name:       tenant.Name,
	}
}

func FromTenants(tenants []domain.TenantInfo) []TenantResponse {
	responses := make([]TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = FromTenant(&tenants[i])
	}
	return responses
}

func FromCompany(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:   company.ID,
		Name: company.Name,
	}
}

func FromCompanies(companies []domain.Company) []CompanyResponse {
	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = FromCompany(&companies[i])
	}
	return responses
}

func FromSale(sale *domain.Sale) SaleResponse {
	resp := SaleResponse{
		ID:        sale.ID,
		Amount:    sale.Amount,
		CreatedAt: sale.CreatedAt,
		CompanyID: sale.CompanyID,
	}
	if sale.Company != nil {
		company := FromCompany(sale.Company)
		resp.Company = &company
	}
	return resp
}

func FromSales(sales []domain.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = FromSale(&sales[i])
	}
	return responses
}
