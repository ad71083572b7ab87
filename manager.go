package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartshield/authcore/password"
	"github.com/smartshield/authcore/session"
	"github.com/smartshield/authcore/token"
)

// Manager is the auth session engine. Construct it through [New] and
// [Builder.Build]; a Manager is immutable and safe for concurrent use.
type Manager struct {
	config       Config
	tokens       *token.Codec
	sessions     *session.Store
	passwords    *password.Hasher
	userProvider UserProvider
	audit        *auditDispatcher
	metrics      *Metrics
	warn         func(msg string)
}

// Close flushes and stops the audit dispatcher. Call it on shutdown.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
		if n := m.audit.Dropped(); n > 0 && m.warn != nil {
			m.warn(fmt.Sprintf("authcore: %d audit events dropped", n))
		}
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot copies the current counter values.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

// storeCtx bounds one session-store round trip with the configured timeout.
func (m *Manager) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, m.config.Session.StoreTimeout)
}

// storeErr maps transport-level store failures onto ErrStoreUnavailable
// and passes sentinel errors through untouched.
func (m *Manager) storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrRedisUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		m.metricInc(MetricStoreUnavailable)
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}

// Ping verifies the session store is reachable and reports the round-trip
// latency.
func (m *Manager) Ping(ctx context.Context) (time.Duration, error) {
	if m == nil || m.sessions == nil {
		return 0, ErrManagerNotReady
	}
	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	rtt, err := m.sessions.Ping(sctx)
	return rtt, m.storeErr(err)
}
