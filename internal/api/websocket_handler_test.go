package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
	"github.com/kingrain94/tenant-notify-api/internal/mocks"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type MockTenantNotifier struct {
	mock.Mock
}

func (m *MockTenantNotifier) NotifyTenant(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:       "test-secret",
		JWTIssuer:          "tenant-notify-api",
		JWTAudience:        "tenant-notify-api",
		JWTExpirationHours: 1,
		DefaultRateLimit:   1000,
		GlobalRateLimit:    1000,
		MaxRequestBytes:    1 << 20,
		Tenant: config.TenantConfig{
			Claim:      "tenant_id",
			Header:     "X-Tenant-ID",
			RouteParam: "tenant",
			QueryKey:   "tenant",
		},
		Telemetry: config.TelemetryConfig{ServiceName: "tenant-notify-api-test"},
	}
}

type WebSocketHandlerTestSuite struct {
	suite.Suite
	auth      *middleware.AuthMiddleware
	directory *mocks.TenantRepository
	notifier  *MockTenantNotifier
	registry  *realtime.Registry
	handler   *WebSocketHandler
	server    *httptest.Server
}

func TestWebSocketHandler(t *testing.T) {
	suite.Run(t, new(WebSocketHandlerTestSuite))
}

func (s *WebSocketHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	s.auth = middleware.NewAuthMiddleware(cfg)
	s.directory = new(mocks.TenantRepository)
	s.notifier = new(MockTenantNotifier)
	s.registry = realtime.NewRegistry(nil)
	s.handler = NewWebSocketHandler(
		s.auth,
		s.directory,
		tenancy.ClaimStrategy{Claim: cfg.Tenant.Claim},
		s.registry,
		s.notifier,
		nil,
		logger.NewNop(),
	)

	s.directory.On("GetByIdentifier", mock.Anything, "acme").
		Return(&domain.TenantInfo{ID: "id-acme", Identifier: "acme", Name: "Acme"}, nil)
	s.directory.On("GetByIdentifier", mock.Anything, "ghost").Return(nil, tenancy.ErrTenantNotFound)

	router := gin.New()
	router.GET("/hub", s.handler.HandleWebSocket)
	s.server = httptest.NewServer(router)
}

func (s *WebSocketHandlerTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *WebSocketHandlerTestSuite) dial(query string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/hub" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func (s *WebSocketHandlerTestSuite) token(tenant string) string {
	token, err := s.auth.GenerateToken("user-1", tenant, []string{"user"})
	s.Require().NoError(err)
	return token
}

func (s *WebSocketHandlerTestSuite) TestRejectsMissingToken() {
	_, resp, err := s.dial("")

	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WebSocketHandlerTestSuite) TestRejectsInvalidToken() {
	_, resp, err := s.dial("?access_token=not-a-token")

	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WebSocketHandlerTestSuite) TestRejectsUnknownTenant() {
	_, resp, err := s.dial("?access_token=" + s.token("ghost"))

	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Empty(s.registry.All())
}

func (s *WebSocketHandlerTestSuite) TestRejectsTokenWithoutTenant() {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iss": "tenant-notify-api",
		"aud": "tenant-notify-api",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, resp, err := s.dial("?access_token=" + token)

	s.Require().Error(err)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.directory.AssertNotCalled(s.T(), "GetByIdentifier", mock.Anything, mock.Anything)
}

func (s *WebSocketHandlerTestSuite) TestJoinTriggerAndLeave() {
	group := realtime.TenantGroup("acme")
	triggered := make(chan string, 1)
	s.notifier.On("NotifyTenant", mock.Anything).Run(func(args mock.Arguments) {
		tenant, err := tenancy.FromContext(args.Get(0).(context.Context))
		if err == nil {
			triggered <- tenant.Identifier
		}
	}).Return(nil)

	ws, _, err := s.dial("?access_token=" + s.token("acme"))
	s.Require().NoError(err)

	s.Eventually(func() bool { return s.registry.GroupSize(group) == 1 }, time.Second, 10*time.Millisecond)
	members := s.registry.Members(group)
	s.Require().Len(members, 1)
	s.Equal("user-1", members[0].UserID())
	s.Equal("acme", members[0].Item(realtime.ItemTenantIdentifier))

	frame, _ := json.Marshal(realtime.Frame{Type: realtime.FrameInvoke, Target: TargetSendNotification})
	s.Require().NoError(ws.WriteMessage(websocket.TextMessage, frame))

	select {
	case identifier := <-triggered:
		s.Equal("acme", identifier)
	case <-time.After(time.Second):
		s.Fail("notification trigger did not run")
	}

	s.Require().NoError(ws.Close())
	s.Eventually(func() bool { return s.registry.GroupSize(group) == 0 }, time.Second, 10*time.Millisecond)
	s.Empty(s.registry.All())
}

func (s *WebSocketHandlerTestSuite) TestFrameWithoutTenantIsSkipped() {
	conn := realtime.NewConn("user-1", 4)

	s.handler.handleFrame(conn, realtime.Frame{Type: realtime.FrameInvoke, Target: TargetSendNotification})

	s.notifier.AssertNotCalled(s.T(), "NotifyTenant", mock.Anything)
	s.Empty(conn.Outbound())
}

func (s *WebSocketHandlerTestSuite) TestUnknownTarget() {
	conn := realtime.NewConn("user-1", 4)
	conn.SetItem(realtime.ItemTenantIdentifier, "acme")

	s.handler.handleFrame(conn, realtime.Frame{Type: realtime.FrameInvoke, Target: "DropTables"})

	s.Require().Len(conn.Outbound(), 1)
	var frame realtime.Frame
	s.NoError(json.Unmarshal(<-conn.Outbound(), &frame))
	s.Equal(realtime.FrameError, frame.Type)
	s.notifier.AssertNotCalled(s.T(), "NotifyTenant", mock.Anything)
}
