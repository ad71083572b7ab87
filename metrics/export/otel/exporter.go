package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/smartshield/authcore"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// metricsSource is the slice of [authcore.Manager] the exporter needs.
type metricsSource interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         authcore.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter bridges authcore counters into an OpenTelemetry meter through
// observable instruments. One callback reads a snapshot per collection
// cycle; the hot path stays free of OTel calls.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	auditDropped metric.Int64ObservableCounter
}

// NewExporter registers observable counters for every authcore metric on
// the given meter, sourcing values from the manager.
func NewExporter(meter metric.Meter, manager *authcore.Manager) (*Exporter, error) {
	return NewExporterFromSource(meter, manager)
}

// NewExporterFromSource is NewExporter for a custom snapshot source, used
// in tests and aggregation layers.
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	ids := authcore.MetricIDs()

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(ids)),
	}

	observables := make([]metric.Observable, 0, len(ids)+1)

	for _, id := range ids {
		ins, err := meter.Int64ObservableCounter(
			authcore.MetricName(id),
			metric.WithDescription(authcore.MetricHelp(id)),
		)
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", authcore.MetricName(id), err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: id, instrument: ins})
		observables = append(observables, ins)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"authcore_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
