package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyTenant(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockNotificationService) Broadcast(ctx context.Context, method string, payload json.RawMessage) error {
	args := m.Called(ctx, method, payload)
	return args.Error(0)
}

func (m *MockNotificationService) SendToUsers(ctx context.Context, userIDs []string, method string, payload json.RawMessage) error {
	args := m.Called(ctx, userIDs, method, payload)
	return args.Error(0)
}

type NotificationHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockNotificationService
	handler     *NotificationHandler
}

func TestNotificationHandler(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}

func (s *NotificationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockService = new(MockNotificationService)
	s.handler = NewNotificationHandler(s.mockService, NewBaseHandler(logger.NewNop()))

	s.router.POST("/notifications", s.handler.NotifyTenant)
	s.router.POST("/notifications/broadcast", s.handler.Broadcast)
	s.router.POST("/notifications/users", s.handler.SendToUsers)
}

func (s *NotificationHandlerTestSuite) post(path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *NotificationHandlerTestSuite) TestNotifyTenant_Success() {
	s.mockService.On("NotifyTenant", mock.Anything).Return(nil)

	w := s.post("/notifications", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.NotificationResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("ReceiveNotification", resp.Method)
	s.Equal("sent", resp.Status)
}

func (s *NotificationHandlerTestSuite) TestNotifyTenant_DeliveryFailure() {
	s.mockService.On("NotifyTenant", mock.Anything).
		Return(multierr.Combine(realtime.ErrSendQueueFull, errors.New("closed")))

	w := s.post("/notifications", nil)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "closed")
}

func (s *NotificationHandlerTestSuite) TestBroadcast() {
	payload := json.RawMessage(`{"text":"maintenance at noon"}`)
	s.mockService.On("Broadcast", mock.Anything, "SystemMessage", mock.MatchedBy(func(p json.RawMessage) bool {
		return string(p) == string(payload)
	})).Return(nil)

	w := s.post("/notifications/broadcast", dto.NotificationRequest{Method: "SystemMessage", Payload: payload})

	s.Equal(http.StatusOK, w.Code)
	s.mockService.AssertExpectations(s.T())
}

func (s *NotificationHandlerTestSuite) TestBroadcast_MissingMethod() {
	w := s.post("/notifications/broadcast", map[string]string{})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *NotificationHandlerTestSuite) TestSendToUsers() {
	s.mockService.On("SendToUsers", mock.Anything, []string{"u1", "u2"}, "Ping", mock.Anything).Return(nil)

	w := s.post("/notifications/users", dto.UserNotificationRequest{UserIDs: []string{"u1", "u2"}, Method: "Ping"})

	s.Equal(http.StatusOK, w.Code)
	s.mockService.AssertExpectations(s.T())
}

func (s *NotificationHandlerTestSuite) TestSendToUsers_NoUsers() {
	w := s.post("/notifications/users", dto.UserNotificationRequest{UserIDs: []string{}, Method: "Ping"})

	s.Equal(http.StatusBadRequest, w.Code)
}
