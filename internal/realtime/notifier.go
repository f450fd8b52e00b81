package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

// Target kinds carried by an Envelope.
const (
	TargetAll   = "all"
	TargetGroup = "group"
	TargetUsers = "users"
)

// Envelope is a notification addressed to recipients that may be connected
// to any instance.
type Envelope struct {
	Origin       string       `json:"origin"`
	Target       string       `json:"target"`
	Group        string       `json:"group,omitempty"`
	Users        []string     `json:"users,omitempty"`
	Exclude      []string     `json:"exclude,omitempty"`
	Notification Notification `json:"notification"`
}

// Backplane relays envelopes between instances. Group envelopes reach only
// instances subscribed to that group; the rest reach every instance.
type Backplane interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, group string, handler func(Envelope)) error
	SubscribeAll(ctx context.Context, handler func(Envelope)) error
	Unsubscribe(group string)
	Close()
}

// Notifier fans notifications out to local connections and, when a
// backplane is configured, to connections held by other instances.
// Delivery to one connection never blocks or fails delivery to another.
type Notifier struct {
	instanceID string
	registry   *Registry
	backplane  Backplane
	logger     *logger.Logger
	metrics    *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewNotifier wires itself into registry so the backplane subscriptions
// follow local group membership. backplane may be nil.
func NewNotifier(registry *Registry, backplane Backplane, log *logger.Logger, m *metrics.Metrics) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		instanceID: uuid.New().String(),
		registry:   registry,
		backplane:  backplane,
		logger:     log,
		metrics:    m,
		ctx:        ctx,
		cancel:     cancel,
	}
	if backplane != nil {
		registry.SetHooks(n)
	}
	return n
}

// Start subscribes to instance-wide envelopes.
func (n *Notifier) Start() error {
	if n.backplane == nil {
		return nil
	}
	return n.backplane.SubscribeAll(n.ctx, n.receive)
}

func (n *Notifier) Stop() {
	n.once.Do(func() {
		n.cancel()
		if n.backplane != nil {
			n.backplane.Close()
		}
	})
}

func (n *Notifier) InstanceID() string {
	return n.instanceID
}

// GroupActive implements GroupHooks. A failed subscribe fails the join that
// triggered it; the next join to the group tries again.
func (n *Notifier) GroupActive(group string) error {
	if err := n.backplane.Subscribe(n.ctx, group, n.receive); err != nil {
		n.logger.Error("Failed to subscribe to group", err, zap.String("group", group))
		return err
	}
	return nil
}

// GroupInactive implements GroupHooks.
func (n *Notifier) GroupInactive(group string) {
	n.backplane.Unsubscribe(group)
}

func (n *Notifier) Broadcast(ctx context.Context, note Notification, exclude ...string) error {
	return n.dispatch(ctx, Envelope{Target: TargetAll, Exclude: exclude, Notification: note})
}

// SendToTenant sends to the group of the tenant active in ctx.
func (n *Notifier) SendToTenant(ctx context.Context, note Notification, exclude ...string) error {
	tenant, err := tenancy.FromContext(ctx)
	if err != nil {
		return err
	}
	return n.SendToGroup(ctx, TenantGroup(tenant.Identifier), note, exclude...)
}

func (n *Notifier) SendToGroup(ctx context.Context, group string, note Notification, exclude ...string) error {
	if group == "" {
		return ErrGroupNameEmpty
	}
	return n.dispatch(ctx, Envelope{Target: TargetGroup, Group: group, Exclude: exclude, Notification: note})
}

func (n *Notifier) SendToGroups(ctx context.Context, groups []string, note Notification) error {
	var errs error
	for _, group := range groups {
		errs = multierr.Append(errs, n.SendToGroup(ctx, group, note))
	}
	return errs
}

func (n *Notifier) SendToUser(ctx context.Context, userID string, note Notification) error {
	return n.SendToUsers(ctx, []string{userID}, note)
}

// SendToUsers reaches every connection of the given users in any tenant.
func (n *Notifier) SendToUsers(ctx context.Context, userIDs []string, note Notification) error {
	if len(userIDs) == 0 {
		return nil
	}
	return n.dispatch(ctx, Envelope{Target: TargetUsers, Users: userIDs, Notification: note})
}

func (n *Notifier) dispatch(ctx context.Context, env Envelope) error {
	env.Origin = n.instanceID

	errs := n.deliverLocal(ctx, env)
	if n.backplane != nil {
		if err := n.backplane.Publish(ctx, env); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to publish %s notification: %w", env.Target, err))
		}
	}
	return errs
}

// receive handles envelopes relayed by the backplane.
func (n *Notifier) receive(env Envelope) {
	if env.Origin == n.instanceID {
		return
	}
	if err := n.deliverLocal(n.ctx, env); err != nil {
		n.logger.Warn("Remote notification partially delivered",
			zap.String("target", env.Target),
			zap.String("group", env.Group),
			zap.Error(err))
	}
}

func (n *Notifier) deliverLocal(ctx context.Context, env Envelope) error {
	frame, err := env.Notification.frame()
	if err != nil {
		return err
	}

	var recipients []*Conn
	switch env.Target {
	case TargetGroup:
		recipients = n.registry.Members(env.Group)
	case TargetUsers:
		recipients = n.registry.ByUsers(env.Users...)
	default:
		recipients = n.registry.All()
	}

	excluded := make(map[string]struct{}, len(env.Exclude))
	for _, id := range env.Exclude {
		excluded[id] = struct{}{}
	}

	var errs error
	for _, conn := range recipients {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if _, skip := excluded[conn.ID()]; skip {
			continue
		}
		err := conn.Send(frame)
		n.metrics.RecordDelivery(env.Target, err)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("deliver to connection %s: %w", conn.ID(), err))
		}
	}
	return errs
}
