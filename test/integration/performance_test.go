package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

func tenantCtx(t testing.TB, identifier string) context.Context {
	ctx, err := tenancy.WithTenant(context.Background(), &domain.TenantInfo{ID: "id-" + identifier, Identifier: identifier})
	require.NoError(t, err)
	return ctx
}

// drain empties conn's queue until it is closed, counting frames.
func drain(conn *realtime.Conn, counter *int64) {
	for {
		select {
		case <-conn.Outbound():
			atomic.AddInt64(counter, 1)
		case <-conn.Done():
			return
		}
	}
}

func BenchmarkSendToTenant(b *testing.B) {
	registry := realtime.NewRegistry(nil)
	notifier := realtime.NewNotifier(registry, nil, logger.NewNop(), nil)

	var received int64
	for i := 0; i < 1000; i++ {
		conn := realtime.NewConn(fmt.Sprintf("user-%d", i), 1024)
		require.NoError(b, registry.Join(conn, realtime.TenantGroup("tenant1")))
		go drain(conn, &received)
	}
	b.Cleanup(func() {
		for _, conn := range registry.All() {
			registry.Leave(conn.ID())
		}
	})

	ctx := tenantCtx(b, "tenant1")
	note, err := realtime.NewNotification("ReceiveNotification", map[string]string{"text": "bench"})
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = notifier.SendToTenant(ctx, note)
	}
}

// TestHighConcurrencyJoinLeave churns connections across tenants and checks
// the registry ends up empty.
func TestHighConcurrencyJoinLeave(t *testing.T) {
	registry := realtime.NewRegistry(nil)

	numGoroutines := 100
	cyclesPerGoroutine := 20

	startTime := time.Now()
	var wg sync.WaitGroup
	var failures int32

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < cyclesPerGoroutine; j++ {
				conn := realtime.NewConn(fmt.Sprintf("user-%d", worker), 4)
				if err := registry.Join(conn, realtime.TenantGroup(fmt.Sprintf("tenant%d", (worker+j)%10))); err != nil {
					atomic.AddInt32(&failures, 1)
					continue
				}
				if j%2 == 0 {
					// Move to another tenant group before leaving.
					if err := registry.Join(conn, realtime.TenantGroup(fmt.Sprintf("tenant%d", (worker+j+1)%10))); err != nil {
						atomic.AddInt32(&failures, 1)
					}
				}
				registry.Leave(conn.ID())
				registry.Leave(conn.ID())
			}
		}(i)
	}

	wg.Wait()

	t.Logf("=== Join/Leave Churn Results ===")
	t.Logf("Cycles: %d", numGoroutines*cyclesPerGoroutine)
	t.Logf("Total time: %v", time.Since(startTime))

	assert.Equal(t, int32(0), failures)
	assert.Empty(t, registry.All())
	assert.Empty(t, registry.Groups())
}

// TestConcurrentSendsStayInTenant fans out to ten tenants in parallel and
// checks that no connection sees another tenant's notification.
func TestConcurrentSendsStayInTenant(t *testing.T) {
	registry := realtime.NewRegistry(nil)
	notifier := realtime.NewNotifier(registry, nil, logger.NewNop(), nil)

	const tenants = 10
	const connsPerTenant = 20
	const sendsPerTenant = 50

	type received struct {
		conn   *realtime.Conn
		tenant string
	}
	var conns []received
	for i := 0; i < tenants; i++ {
		identifier := fmt.Sprintf("tenant%d", i)
		for j := 0; j < connsPerTenant; j++ {
			conn := realtime.NewConn(fmt.Sprintf("user-%d-%d", i, j), sendsPerTenant)
			require.NoError(t, registry.Join(conn, realtime.TenantGroup(identifier)))
			conns = append(conns, received{conn: conn, tenant: identifier})
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < tenants; i++ {
		identifier := fmt.Sprintf("tenant%d", i)
		ctx := tenantCtx(t, identifier)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < sendsPerTenant; j++ {
				note, _ := realtime.NewNotification("ReceiveNotification", map[string]string{"tenant": identifier})
				assert.NoError(t, notifier.SendToTenant(ctx, note))
			}
		}()
	}
	wg.Wait()

	for _, r := range conns {
		require.Len(t, r.conn.Outbound(), sendsPerTenant, r.tenant)
		for k := 0; k < sendsPerTenant; k++ {
			var frame realtime.Frame
			require.NoError(t, json.Unmarshal(<-r.conn.Outbound(), &frame))
			var payload map[string]string
			require.NoError(t, json.Unmarshal(frame.Payload, &payload))
			assert.Equal(t, r.tenant, payload["tenant"])
		}
	}
}
