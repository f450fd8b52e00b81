package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type Services struct {
	Tenant       TenantService
	Company      CompanyService
	Sale         SaleService
	Notification NotificationService
}

type Middlewares struct {
	Auth       *middleware.AuthMiddleware
	Tenant     *middleware.TenantMiddleware
	RateLimit  *middleware.RateLimitMiddleware
	Validation *middleware.ValidationMiddleware
}

type Server struct {
	config       *config.Config
	tenant       *TenantHandler
	company      *CompanyHandler
	sale         *SaleHandler
	notification *NotificationHandler
	websocket    *WebSocketHandler
	middlewares  Middlewares
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
}

func NewServer(
	cfg *config.Config,
	services Services,
	middlewares Middlewares,
	websocket *WebSocketHandler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *logger.Logger,
) *Server {
	base := NewBaseHandler(logger)
	return &Server{
		config:       cfg,
		tenant:       NewTenantHandler(services.Tenant, base),
		company:      NewCompanyHandler(services.Company, base),
		sale:         NewSaleHandler(services.Sale, base),
		notification: NewNotificationHandler(services.Notification, base),
		websocket:    websocket,
		middlewares:  middlewares,
		metrics:      m,
		gatherer:     gatherer,
	}
}

// SetupRoutes mounts the health and metrics endpoints on router and the API
// under /api/v1.
func (s *Server) SetupRoutes(router *gin.Engine) {
	router.Use(metrics.Middleware(s.metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.Use(otelgin.Middleware(s.config.Telemetry.ServiceName))

	validation := s.middlewares.Validation
	api.Use(validation.ValidateRequestSize(s.config.MaxRequestBytes))
	api.Use(validation.ValidateContentType("application/json"))
	api.Use(validation.ValidateTenantIdentifier(s.config.Tenant.Header, s.config.Tenant.QueryKey))
	api.Use(s.middlewares.RateLimit.GlobalRateLimit(s.config.GlobalRateLimit))

	// The hub authenticates the upgrade itself.
	api.GET("/hub", s.websocket.HandleWebSocket)

	auth := s.middlewares.Auth
	scoped := api.Group("",
		auth.JWTAuth(),
		s.middlewares.Tenant.TenantContext(),
		s.middlewares.RateLimit.TenantRateLimit(),
	)
	{
		scoped.GET("/tenant", s.tenant.CurrentTenant)
		scoped.GET("/tenants", auth.RequireRole(domain.RoleAdmin), s.tenant.ListTenants)

		companies := scoped.Group("/companies")
		{
			companies.GET("", s.company.ListCompanies)
			companies.POST("", s.company.CreateCompany)
			companies.GET("/:id", s.company.GetCompany)
			companies.PUT("/:id", s.company.UpdateCompany)
			companies.DELETE("/:id", s.company.DeleteCompany)
		}

		sales := scoped.Group("/sales")
		{
			sales.GET("", s.sale.ListSales)
			sales.POST("", s.sale.CreateSale)
			sales.GET("/:id", s.sale.GetSale)
		}

		notifications := scoped.Group("/notifications")
		{
			notifications.POST("", s.notification.NotifyTenant)
			notifications.POST("/broadcast", auth.RequireRole(domain.RoleAdmin), s.notification.Broadcast)
			notifications.POST("/users", auth.RequireRole(domain.RoleAdmin), s.notification.SendToUsers)
		}
	}
}
