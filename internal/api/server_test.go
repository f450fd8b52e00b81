package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
	"github.com/kingrain94/tenant-notify-api/internal/mocks"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type ServerTestSuite struct {
	suite.Suite
	cfg       *config.Config
	auth      *middleware.AuthMiddleware
	directory *mocks.TenantRepository
	companies *MockCompanyService
	tenants   *MockTenantService
	router    *gin.Engine
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = testConfig()
	log := logger.NewNop()

	redisClient := redis.NewClient(&redis.Options{Addr: miniredis.RunT(s.T()).Addr()})
	s.T().Cleanup(func() { redisClient.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	s.auth = middleware.NewAuthMiddleware(s.cfg)
	s.directory = new(mocks.TenantRepository)
	s.directory.On("GetByIdentifier", mock.Anything, "acme").
		Return(&domain.TenantInfo{ID: "id-acme", Identifier: "acme", Name: "Acme"}, nil)
	s.directory.On("GetByIdentifier", mock.Anything, "ghost").Return(nil, tenancy.ErrTenantNotFound)

	resolver := tenancy.NewResolver(s.directory,
		tenancy.ClaimStrategy{Claim: s.cfg.Tenant.Claim},
		tenancy.HeaderStrategy{Header: s.cfg.Tenant.Header},
	)

	s.companies = new(MockCompanyService)
	s.tenants = new(MockTenantService)

	hub := NewWebSocketHandler(s.auth, s.directory, tenancy.ClaimStrategy{Claim: s.cfg.Tenant.Claim},
		realtime.NewRegistry(m), new(MockTenantNotifier), m, log)

	server := NewServer(s.cfg,
		Services{
			Tenant:       s.tenants,
			Company:      s.companies,
			Sale:         new(MockSaleService),
			Notification: new(MockNotificationService),
		},
		Middlewares{
			Auth:       s.auth,
			Tenant:     middleware.NewTenantMiddleware(resolver, log, m),
			RateLimit:  middleware.NewRateLimitMiddleware(redisClient, s.cfg, log),
			Validation: middleware.NewValidationMiddleware(log),
		},
		hub, m, reg, log)

	s.router = gin.New()
	server.SetupRoutes(s.router)
}

func (s *ServerTestSuite) get(path, tenant string, roles ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tenant != "" {
		token, err := s.auth.GenerateToken("user-1", tenant, roles)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) TestHealth() {
	s.Equal(http.StatusOK, s.get("/health", "").Code)
}

func (s *ServerTestSuite) TestMetricsExposed() {
	s.get("/health", "")

	w := s.get("/metrics", "")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "tenant_notify_http_requests_total")
}

func (s *ServerTestSuite) TestRequiresToken() {
	s.Equal(http.StatusUnauthorized, s.get("/api/v1/companies", "").Code)
}

func (s *ServerTestSuite) TestUnknownTenant() {
	w := s.get("/api/v1/companies", "ghost")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.companies.AssertNotCalled(s.T(), "List", mock.Anything)
}

func (s *ServerTestSuite) TestScopedRequestCarriesTenant() {
	s.companies.On("List", mock.MatchedBy(func(ctx context.Context) bool {
		tenant, err := tenancy.FromContext(ctx)
		return err == nil && tenant.Identifier == "acme"
	})).Return([]domain.Company{{ID: "c1", Name: "Widgets"}}, nil)

	w := s.get("/api/v1/companies", "acme")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("1000", w.Header().Get("X-RateLimit-Limit"))
	s.companies.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestAdminOnlyRoutes() {
	s.tenants.On("List", mock.Anything).Return([]domain.TenantInfo{}, nil)

	s.Equal(http.StatusForbidden, s.get("/api/v1/tenants", "acme", "user").Code)
	s.Equal(http.StatusOK, s.get("/api/v1/tenants", "acme", "admin").Code)
}

func (s *ServerTestSuite) TestMalformedTenantHeader() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
	req.Header.Set("X-Tenant-ID", "../etc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}
