package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
)

type ChangePublisher struct {
	mock.Mock
}

func (m *ChangePublisher) SendChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type Sender struct {
	mock.Mock
}

func (m *Sender) Broadcast(ctx context.Context, note realtime.Notification, exclude ...string) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *Sender) SendToTenant(ctx context.Context, note realtime.Notification, exclude ...string) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *Sender) SendToUsers(ctx context.Context, userIDs []string, note realtime.Notification) error {
	args := m.Called(ctx, userIDs, note)
	return args.Error(0)
}
