package realtime

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kingrain94/tenant-notify-api/internal/metrics"
)

// GroupHooks is told when a group gains local members and when it loses its
// last one. Calls for one group are serialized and never overlap the
// registry lock, so a slow hook only delays joins to that same group.
type GroupHooks interface {
	GroupActive(group string) error
	GroupInactive(group string)
}

// groupSync tracks whether the hooks last saw a group as active. refs counts
// goroutines currently reconciling the group.
type groupSync struct {
	mu      sync.Mutex
	applied atomic.Bool
	refs    int
}

// Registry tracks live connections and their group membership. A connection
// belongs to at most one group.
type Registry struct {
	mu         sync.RWMutex
	conns      map[string]*Conn
	groups     map[string]map[string]*Conn
	membership map[string]string
	hooks      GroupHooks
	syncs      map[string]*groupSync
	metrics    *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		conns:      make(map[string]*Conn),
		groups:     make(map[string]map[string]*Conn),
		membership: make(map[string]string),
		syncs:      make(map[string]*groupSync),
		metrics:    m,
	}
}

func (r *Registry) SetHooks(hooks GroupHooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = hooks
}

// Join registers conn and adds it to group. If conn is already in another
// group it is moved. When the hooks cannot activate the group the connection
// is removed and closed, so no member is left without a subscription.
func (r *Registry) Join(conn *Conn, group string) error {
	if group == "" {
		return ErrGroupNameEmpty
	}

	previous, err := r.join(conn, group)
	if err != nil {
		return err
	}
	if previous != "" {
		_ = r.reconcile(previous)
	}
	if err := r.reconcile(group); err != nil {
		r.Leave(conn.ID())
		return fmt.Errorf("failed to activate group %s: %w", group, err)
	}
	return nil
}

// join updates membership and returns the group conn was moved out of.
func (r *Registry) join(conn *Conn, group string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := conn.join(group); err != nil {
		return "", err
	}

	id := conn.ID()
	if _, ok := r.conns[id]; !ok {
		r.conns[id] = conn
		r.metrics.ConnectionOpened()
	}
	previous, ok := r.membership[id]
	if ok {
		if previous == group {
			return "", nil
		}
		r.removeFromGroup(id, previous)
	}

	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]*Conn)
		r.groups[group] = members
	}
	members[id] = conn
	r.membership[id] = group
	r.metrics.GroupJoined()
	return previous, nil
}

// Leave removes the connection from its group and from the registry and
// closes it. Unknown ids are ignored.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	group, joined := r.membership[connID]
	if joined {
		r.removeFromGroup(connID, group)
	}
	delete(r.conns, connID)
	conn.Close()
	r.metrics.ConnectionClosed()
	r.mu.Unlock()

	if joined {
		_ = r.reconcile(group)
	}
}

func (r *Registry) removeFromGroup(connID, group string) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	if _, ok := members[connID]; !ok {
		return
	}
	delete(members, connID)
	delete(r.membership, connID)
	r.metrics.GroupLeft()
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// reconcile brings the hooks in line with the group's current membership.
// It runs without the registry lock held. Whoever reconciles last sees the
// final membership, so concurrent joins and leaves converge.
func (r *Registry) reconcile(group string) error {
	r.mu.Lock()
	hooks := r.hooks
	if hooks == nil {
		r.mu.Unlock()
		return nil
	}
	gs, ok := r.syncs[group]
	if !ok {
		gs = &groupSync{}
		r.syncs[group] = gs
	}
	gs.refs++
	r.mu.Unlock()
	defer r.releaseSync(group, gs)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	active := r.GroupSize(group) > 0
	switch {
	case active && !gs.applied.Load():
		if err := hooks.GroupActive(group); err != nil {
			return err
		}
		gs.applied.Store(true)
	case !active && gs.applied.Load():
		hooks.GroupInactive(group)
		gs.applied.Store(false)
	}
	return nil
}

func (r *Registry) releaseSync(group string, gs *groupSync) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gs.refs--
	if gs.refs == 0 && !gs.applied.Load() {
		delete(r.syncs, group)
	}
}

func (r *Registry) Get(connID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

func (r *Registry) Members(group string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.groups[group]
	conns := make([]*Conn, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// ByUsers returns every connection owned by one of the given users,
// regardless of group.
func (r *Registry) ByUsers(userIDs ...string) []*Conn {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []*Conn
	for _, conn := range r.conns {
		if _, ok := wanted[conn.UserID()]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	return names
}
