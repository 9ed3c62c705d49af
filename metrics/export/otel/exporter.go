package otel

import (
	"context"
	"errors"
	"fmt"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter   = errors.New("nil meter")
	ErrNilService = errors.New("nil token service")
)

// OTelExporter publishes token service metrics through observable
// instruments. Labels become attributes; the decode latency histogram is
// reported as a bucket gauge keyed by the "le" attribute plus sum and count
// gauges.
type OTelExporter struct {
	source       internaldefs.Source
	registration metric.Registration

	counters map[string]metric.Int64ObservableCounter
	buckets  metric.Int64ObservableGauge
	count    metric.Int64ObservableGauge
	sum      metric.Float64ObservableGauge
}

// NewOTelExporter registers the instruments on meter and reads svc on every
// collection.
func NewOTelExporter(meter metric.Meter, svc *goJWT.Service) (*OTelExporter, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	return newExporter(meter, svc)
}

func newExporter(meter metric.Meter, source internaldefs.Source) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilService
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[string]metric.Int64ObservableCounter, len(internaldefs.CounterNames)),
	}
	observables := make([]metric.Observable, 0, len(internaldefs.CounterNames)+3)

	for _, name := range internaldefs.CounterNames {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(internaldefs.Help[name]))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", name, err)
		}
		e.counters[name] = ins
		observables = append(observables, ins)
	}

	var err error
	latency := internaldefs.DecodeLatency
	if e.buckets, err = meter.Int64ObservableGauge(latency+"_bucket",
		metric.WithDescription("Cumulative decode latency bucket counts, keyed by le."),
	); err != nil {
		return nil, fmt.Errorf("create latency bucket gauge: %w", err)
	}
	if e.count, err = meter.Int64ObservableGauge(latency+"_count",
		metric.WithDescription("Decode latency sample count."),
	); err != nil {
		return nil, fmt.Errorf("create latency count gauge: %w", err)
	}
	if e.sum, err = meter.Float64ObservableGauge(latency+"_sum",
		metric.WithDescription("Total decode latency."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create latency sum gauge: %w", err)
	}
	observables = append(observables, e.buckets, e.count, e.sum)

	if e.registration, err = meter.RegisterCallback(e.observe, observables...); err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	for _, f := range internaldefs.Collect(e.source) {
		switch f.Kind {
		case internaldefs.Counter:
			ins, ok := e.counters[f.Name]
			if !ok {
				continue
			}
			for _, s := range f.Samples {
				observer.ObserveInt64(ins, int64(s.Value), metric.WithAttributes(attributes(s.Labels)...))
			}
		case internaldefs.Histogram:
			for i, le := range internaldefs.HistogramBounds {
				observer.ObserveInt64(e.buckets, int64(f.Buckets[i]),
					metric.WithAttributes(attribute.String(internaldefs.LabelBound, le)))
			}
			observer.ObserveInt64(e.count, int64(f.Count))
			observer.ObserveFloat64(e.sum, f.Sum)
		}
	}
	return nil
}

func attributes(labels []internaldefs.Label) []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(labels))
	for i, l := range labels {
		out[i] = attribute.String(l.Name, l.Value)
	}
	return out
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
