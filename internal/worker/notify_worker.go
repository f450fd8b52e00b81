package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/service/queue"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

// ChangeNotifier pushes a change event to the tenant active in ctx.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, event domain.ChangeEvent) error
}

// NotifyWorker turns queued change events into RecordChanged notifications.
// Each message is its own operation: the tenant is re-entered from the
// tenant_identifier attribute, never taken from the body.
type NotifyWorker struct {
	sqsService   *queue.SQSService
	resolver     *tenancy.Resolver
	notifier     ChangeNotifier
	logger       *logger.Logger
	metrics      *metrics.Metrics
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	ctx          context.Context
	cancel       context.CancelFunc
	waitGroup    sync.WaitGroup
}

func NewNotifyWorker(
	sqsService *queue.SQSService,
	directory tenancy.Directory,
	notifier ChangeNotifier,
	logger *logger.Logger,
	m *metrics.Metrics,
	workerCount int,
	pollInterval time.Duration,
) *NotifyWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &NotifyWorker{
		sqsService:   sqsService,
		resolver:     tenancy.NewResolver(directory, tenancy.ItemStrategy{Key: queue.AttributeTenantIdentifier}),
		notifier:     notifier,
		logger:       logger,
		metrics:      m,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		maxMessages:  10, // Process up to 10 messages at a time
		waitTime:     20, // Long polling: wait up to 20 seconds for messages
		ctx:          ctx,
		cancel:       cancel,
	}
}

// WithPolling overrides the batch size and long-poll wait.
func (w *NotifyWorker) WithPolling(maxMessages, waitTime int32) *NotifyWorker {
	w.maxMessages = maxMessages
	w.waitTime = waitTime
	return w
}

func (w *NotifyWorker) Start() {
	w.logger.Info("Starting notify workers...")

	for i := 0; i < w.workerCount; i++ {
		w.waitGroup.Add(1)
		go w.runWorker(i)
	}
}

// Stop cancels in-flight polls and waits for every worker to return.
func (w *NotifyWorker) Stop() {
	w.logger.Info("Stopping notify workers...")
	w.cancel()
	w.waitGroup.Wait()
	w.logger.Info("All notify workers stopped")
}

func (w *NotifyWorker) runWorker(workerID int) {
	defer w.waitGroup.Done()

	w.logger.Infof("Notify worker %d started", workerID)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Infof("Notify worker %d shutting down", workerID)
			return
		case <-ticker.C:
			if err := w.processMessages(w.ctx); err != nil && w.ctx.Err() == nil {
				w.logger.Error("Failed to process messages", err, zap.Int("worker_id", workerID))
			}
		}
	}
}

func (w *NotifyWorker) processMessages(ctx context.Context) error {
	messages, err := w.sqsService.ReceiveMessages(ctx, w.maxMessages, w.waitTime)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range messages {
		if !w.processMessage(ctx, msg) {
			continue
		}

		if err := w.sqsService.DeleteMessage(ctx, msg.ReceiptHandle); err != nil {
			w.logger.Error("Failed to delete message", err)
		}
	}

	return nil
}

// processMessage reports whether the message is finished with and can be
// deleted. Messages that can never succeed are finished too.
func (w *NotifyWorker) processMessage(ctx context.Context, msg queue.ReceivedMessage) bool {
	if msg.DecodeErr != nil {
		w.metrics.RecordQueueMessage("dropped_decode")
		w.logger.Warn("Dropping undecodable change event", zap.Error(msg.DecodeErr))
		return true
	}

	opCtx, tenant, err := w.resolver.Enter(ctx, tenancy.Items(msg.Attributes))
	if err != nil {
		if tenancy.IsResolutionFailure(err) {
			w.metrics.RecordQueueMessage("dropped_tenant")
			w.metrics.RecordResolutionFailure("queue", "unresolved")
			w.logger.Warn("Dropping change event without a known tenant",
				zap.String("entity_id", msg.Event.EntityID),
				zap.Error(err))
			return true
		}
		w.metrics.RecordQueueMessage("failed")
		w.logger.Error("Failed to resolve tenant for change event", err)
		return false
	}

	event := msg.Event
	if event.TenantIdentifier != tenant.Identifier {
		w.logger.Warn("Change event body names a different tenant",
			zap.String("body_tenant", event.TenantIdentifier),
			zap.String("tenant", tenant.Identifier))
		event.TenantIdentifier = tenant.Identifier
	}

	if err := w.notifier.NotifyChange(opCtx, event); err != nil {
		w.metrics.RecordQueueMessage("failed")
		w.logger.Error("Failed to notify change", err,
			zap.String("tenant", tenant.Identifier),
			zap.String("entity_id", event.EntityID))
		return false
	}

	w.metrics.RecordQueueMessage("delivered")
	w.logger.Info("Delivered change notification",
		zap.String("tenant", tenant.Identifier),
		zap.String("entity", string(event.Entity)),
		zap.String("action", string(event.Action)))
	return true
}
