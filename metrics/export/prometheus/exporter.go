package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/metrics/export/internaldefs"
)

// PrometheusExporter renders token service metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source internaldefs.Source
}

// NewPrometheusExporter creates a Prometheus exporter that reads from svc.
func NewPrometheusExporter(svc *goJWT.Service) *PrometheusExporter {
	if svc == nil {
		return &PrometheusExporter{}
	}
	return &PrometheusExporter{source: svc}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. The output is empty while the service
// collects no metrics and has dropped no audit events.
func (p *PrometheusExporter) Render() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for _, f := range internaldefs.Collect(p.source) {
		writeHeader(&b, f)
		switch f.Kind {
		case internaldefs.Counter:
			for _, s := range f.Samples {
				writeSample(&b, f.Name, s.Labels, strconv.FormatUint(s.Value, 10))
			}
		case internaldefs.Histogram:
			for i, le := range internaldefs.HistogramBounds {
				labels := []internaldefs.Label{{Name: internaldefs.LabelBound, Value: le}}
				writeSample(&b, f.Name+"_bucket", labels, strconv.FormatUint(f.Buckets[i], 10))
			}
			writeSample(&b, f.Name+"_sum", nil, strconv.FormatFloat(f.Sum, 'g', -1, 64))
			writeSample(&b, f.Name+"_count", nil, strconv.FormatUint(f.Count, 10))
		}
	}
	return b.String()
}

func writeHeader(b *strings.Builder, f internaldefs.Family) {
	kind := "counter"
	if f.Kind == internaldefs.Histogram {
		kind = "histogram"
	}
	b.WriteString("# HELP " + f.Name + " " + escapeHelp(f.Help) + "\n")
	b.WriteString("# TYPE " + f.Name + " " + kind + "\n")
}

func writeSample(b *strings.Builder, name string, labels []internaldefs.Label, value string) {
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l.Name + `="` + escapeLabel(l.Value) + `"`)
		}
		b.WriteByte('}')
	}
	b.WriteString(" " + value + "\n")
}

func escapeHelp(help string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(help)
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`).Replace(v)
}
