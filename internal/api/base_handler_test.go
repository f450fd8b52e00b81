package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/internal/service"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{tenancy.ErrTenantUnresolved, http.StatusUnauthorized},
		{fmt.Errorf("resolve tenant %q: %w", "x", tenancy.ErrTenantNotFound), http.StatusUnauthorized},
		{fmt.Errorf("create: %w", tenancy.ErrTenantMismatch), http.StatusForbidden},
		{service.ErrCompanyNotFound, http.StatusNotFound},
		{service.ErrSaleNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrUnknownCompany, http.StatusBadRequest},
		{service.ErrInvalidAmount, http.StatusBadRequest},
		{service.ErrInvalidName, http.StatusBadRequest},
		{tenancy.ErrTenantNotSet, http.StatusInternalServerError},
		{tenancy.ErrRawSQLNotScoped, http.StatusInternalServerError},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
