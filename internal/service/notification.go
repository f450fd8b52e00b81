package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/api/dto"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const (
	MethodReceiveNotification = "ReceiveNotification"
	MethodRecordChanged       = "RecordChanged"
)

//go:generate mockery --name Sender --output ../mocks
type Sender interface {
	Broadcast(ctx context.Context, note realtime.Notification, exclude ...string) error
	SendToTenant(ctx context.Context, note realtime.Notification, exclude ...string) error
	SendToUsers(ctx context.Context, userIDs []string, note realtime.Notification) error
}

type NotificationService struct {
	repo   repository.Repository
	sender Sender
	logger *logger.Logger
}

func NewNotificationService(repo repository.Repository, sender Sender, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

// NotifyTenant sends the active tenant's companies to every connection of
// that tenant.
func (s *NotificationService) NotifyTenant(ctx context.Context) error {
	companies, err := s.repo.Company().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load companies: %w", err)
	}

	note, err := realtime.NewNotification(MethodReceiveNotification, dto.FromCompanies(companies))
	if err != nil {
		return err
	}
	return s.sender.SendToTenant(ctx, note)
}

// NotifyChange tells the active tenant's connections that a record changed.
func (s *NotificationService) NotifyChange(ctx context.Context, event domain.ChangeEvent) error {
	note, err := realtime.NewNotification(MethodRecordChanged, event)
	if err != nil {
		return err
	}
	return s.sender.SendToTenant(ctx, note)
}

func (s *NotificationService) Broadcast(ctx context.Context, method string, payload json.RawMessage) error {
	s.logger.Info("Broadcasting notification", zap.String("method", method))
	return s.sender.Broadcast(ctx, realtime.Notification{Method: method, Payload: payload})
}

func (s *NotificationService) SendToUsers(ctx context.Context, userIDs []string, method string, payload json.RawMessage) error {
	return s.sender.SendToUsers(ctx, userIDs, realtime.Notification{Method: method, Payload: payload})
}
