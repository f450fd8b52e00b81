package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

//go:generate mockery --name ChangePublisher --output ../mocks
type ChangePublisher interface {
	SendChangeEvent(ctx context.Context, event domain.ChangeEvent) error
}

// emitChange queues a change event for the tenant active in ctx. Queue
// failures are logged; the write has already been committed.
func emitChange(ctx context.Context, publisher ChangePublisher, log *logger.Logger, entity domain.EntityType, action domain.ActionType, id string) {
	if publisher == nil {
		return
	}
	tenant, err := tenancy.FromContext(ctx)
	if err != nil {
		log.Error("Change event without tenant", err, zap.String("entity", string(entity)))
		return
	}

	event := domain.ChangeEvent{
		TenantIdentifier: tenant.Identifier,
		Entity:           entity,
		Action:           action,
		EntityID:         id,
		OccurredAt:       time.Now().UTC(),
	}
	if err := publisher.SendChangeEvent(ctx, event); err != nil {
		log.Error("Failed to queue change event", err,
			zap.String("tenant", tenant.Identifier),
			zap.String("entity", string(entity)),
			zap.String("entity_id", id))
	}
}
