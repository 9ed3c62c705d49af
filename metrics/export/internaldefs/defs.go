package internaldefs

import (
	"maps"
	"slices"

	goJWT "github.com/MrEthical07/goJWT"
)

// Source is the part of a token service the exporters read.
type Source interface {
	MetricsSnapshot() goJWT.MetricsSnapshot
	AuditDroppedByType() map[string]uint64
}

// Exported metric names.
const (
	TokensTotal          = "gojwt_tokens_total"
	KeySetLookupFailures = "gojwt_keyset_lookup_failures_total"
	AsyncCancelled       = "gojwt_async_cancelled_total"
	AuditDropped         = "gojwt_audit_dropped_total"
	DecodeLatency        = "gojwt_decode_latency_seconds"
)

// Label names.
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelBound     = "le"
)

// Help holds the description of every exported metric.
var Help = map[string]string{
	TokensTotal:          "Sign and decode calls by outcome.",
	KeySetLookupFailures: "Remote key set lookups that failed.",
	AsyncCancelled:       "Async calls abandoned by their context.",
	AuditDropped:         "Audit events dropped by the dispatcher, by event type.",
	DecodeLatency:        "Decode latency.",
}

// CounterNames lists the counter families in output order.
var CounterNames = []string{TokensTotal, KeySetLookupFailures, AsyncCancelled, AuditDropped}

// TokenOutcome binds a service counter to its operation and outcome labels.
type TokenOutcome struct {
	ID        goJWT.MetricID
	Operation string
	Outcome   string
}

// TokenOutcomes covers every sign and decode counter of the service.
var TokenOutcomes = []TokenOutcome{
	{ID: goJWT.MetricSignSuccess, Operation: "sign", Outcome: "success"},
	{ID: goJWT.MetricSignFailure, Operation: "sign", Outcome: "failure"},
	{ID: goJWT.MetricDecodeSuccess, Operation: "decode", Outcome: "success"},
	{ID: goJWT.MetricDecodeInvalidToken, Operation: "decode", Outcome: "invalid_token"},
	{ID: goJWT.MetricDecodeInvalidAlgorithm, Operation: "decode", Outcome: "invalid_algorithm"},
}

// HistogramBounds are the upper bounds of the eight latency buckets, in seconds.
var HistogramBounds = [8]string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// Kind tells counters from histograms.
type Kind int

const (
	Counter Kind = iota
	Histogram
)

// Label is one name/value pair on a sample.
type Label struct {
	Name  string
	Value string
}

// Sample is one labelled counter value.
type Sample struct {
	Labels []Label
	Value  uint64
}

// Family is one metric at collection time. Counters carry Samples;
// histograms carry cumulative Buckets, Count and Sum (seconds).
type Family struct {
	Name    string
	Help    string
	Kind    Kind
	Samples []Sample
	Buckets [8]uint64
	Count   uint64
	Sum     float64
}

// Collect reads src once and returns its metric families in output order. It
// returns nil when metrics are disabled and nothing was dropped.
func Collect(src Source) []Family {
	if src == nil {
		return nil
	}

	snap := src.MetricsSnapshot()
	dropped := src.AuditDroppedByType()
	var droppedTotal uint64
	for _, n := range dropped {
		droppedTotal += n
	}
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && droppedTotal == 0 {
		return nil
	}

	tokens := family(TokensTotal, Counter)
	for _, o := range TokenOutcomes {
		tokens.Samples = append(tokens.Samples, Sample{
			Labels: []Label{{LabelOperation, o.Operation}, {LabelOutcome, o.Outcome}},
			Value:  snap.Counters[o.ID],
		})
	}

	lookups := family(KeySetLookupFailures, Counter)
	lookups.Samples = []Sample{{Value: snap.Counters[goJWT.MetricKeySetLookupFailure]}}

	cancelled := family(AsyncCancelled, Counter)
	cancelled.Samples = []Sample{{Value: snap.Counters[goJWT.MetricAsyncCancelled]}}

	audit := family(AuditDropped, Counter)
	for _, eventType := range slices.Sorted(maps.Keys(dropped)) {
		audit.Samples = append(audit.Samples, Sample{
			Labels: []Label{{LabelEventType, eventType}},
			Value:  dropped[eventType],
		})
	}

	out := []Family{tokens, lookups, cancelled, audit}

	if raw, ok := snap.Histograms[goJWT.MetricDecodeLatency]; ok {
		latency := family(DecodeLatency, Histogram)
		latency.Buckets = CumulativeBuckets(NormalizeBuckets(raw))
		latency.Count = latency.Buckets[len(latency.Buckets)-1]
		latency.Sum = snap.DecodeLatencySum.Seconds()
		out = append(out, latency)
	}

	return out
}

func family(name string, kind Kind) Family {
	return Family{Name: name, Help: Help[name], Kind: kind}
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, n := range raw {
		running += n
		out[i] = running
	}
	return out
}
