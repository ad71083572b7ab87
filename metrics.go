package authcore

import "sync/atomic"

// MetricID indexes one counter in the in-process metrics registry.
type MetricID uint16

const (
	MetricSignupSuccess MetricID = iota
	MetricSignupDuplicate
	MetricSignupFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricRefreshConflict
	MetricSessionCreated
	MetricSessionRevoked
	MetricLogout
	MetricLogoutAll
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure
	MetricStoreUnavailable

	metricCount
)

var metricNames = [metricCount]string{
	MetricSignupSuccess:         "authcore_signup_success_total",
	MetricSignupDuplicate:       "authcore_signup_duplicate_total",
	MetricSignupFailure:         "authcore_signup_failure_total",
	MetricLoginSuccess:          "authcore_login_success_total",
	MetricLoginFailure:          "authcore_login_failure_total",
	MetricRefreshSuccess:        "authcore_refresh_success_total",
	MetricRefreshFailure:        "authcore_refresh_failure_total",
	MetricRefreshReuseDetected:  "authcore_refresh_reuse_detected_total",
	MetricRefreshConflict:       "authcore_refresh_conflict_total",
	MetricSessionCreated:        "authcore_session_created_total",
	MetricSessionRevoked:        "authcore_session_revoked_total",
	MetricLogout:                "authcore_logout_total",
	MetricLogoutAll:             "authcore_logout_all_total",
	MetricPasswordChangeSuccess: "authcore_password_change_success_total",
	MetricPasswordChangeFailure: "authcore_password_change_failure_total",
	MetricStoreUnavailable:      "authcore_store_unavailable_total",
}

var metricHelp = [metricCount]string{
	MetricSignupSuccess:         "Successful account registrations.",
	MetricSignupDuplicate:       "Registrations rejected as duplicate email.",
	MetricSignupFailure:         "Failed account registrations.",
	MetricLoginSuccess:          "Successful login attempts.",
	MetricLoginFailure:          "Failed login attempts.",
	MetricRefreshSuccess:        "Successful refresh rotations.",
	MetricRefreshFailure:        "Failed refresh operations.",
	MetricRefreshReuseDetected:  "Detected refresh token reuses.",
	MetricRefreshConflict:       "Refresh rotations lost to a concurrent winner.",
	MetricSessionCreated:        "Created session families.",
	MetricSessionRevoked:        "Revoked session families.",
	MetricLogout:                "Single-session logout operations.",
	MetricLogoutAll:             "Logout-all operations.",
	MetricPasswordChangeSuccess: "Successful password changes.",
	MetricPasswordChangeFailure: "Failed password changes.",
	MetricStoreUnavailable:      "Session store round trips that failed or timed out.",
}

// MetricName returns the stable exporter-facing name for id, or "" for an
// unknown id.
func MetricName(id MetricID) string {
	if id >= metricCount {
		return ""
	}
	return metricNames[id]
}

// MetricHelp returns the human-readable description for id.
func MetricHelp(id MetricID) string {
	if id >= metricCount {
		return ""
	}
	return metricHelp[id]
}

// MetricIDs returns every registered counter ID in declaration order.
func MetricIDs() []MetricID {
	ids := make([]MetricID, 0, metricCount)
	for id := MetricID(0); id < metricCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Metrics is a fixed-size lock-free counter registry.
//
//	Performance: Inc is a single atomic add; Snapshot copies all counters.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// NewMetrics returns an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments a counter. No-op for unknown IDs and nil receivers.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
