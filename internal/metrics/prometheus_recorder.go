package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry     *prom.Registry
	passDuration prom.Histogram
	runDuration  prom.Histogram
	documents    *prom.CounterVec
	failures     *prom.CounterVec
	resolved     prom.Counter
	unresolved   prom.Gauge
	brokenLinks  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the generation metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		passDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docgen",
			Name:      "pass_duration_seconds",
			Help:      "Duration of individual generation passes",
			Buckets:   prom.DefBuckets,
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docgen",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "documents_total",
			Help:      "Documents by generator and outcome",
		}, []string{"generator", "outcome"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "document_failures_total",
			Help:      "Failed documents by error category",
		}, []string{"category"}),
		resolved: prom.NewCounter(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "resolved_signatures_total",
			Help:      "Distinct signatures resolved",
		}),
		unresolved: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docgen",
			Name:      "unresolved_signatures",
			Help:      "Signatures still unresolved after the last run",
		}),
		brokenLinks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "broken_links_total",
			Help:      "Links between generated documents whose target was not generated",
		}, []string{"generator"}),
	}
	reg.MustRegister(pr.passDuration, pr.runDuration, pr.documents, pr.failures, pr.resolved, pr.unresolved, pr.brokenLinks)
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocument(generator string, outcome Outcome) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(generator, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncFailure(category string) {
	if p == nil {
		return
	}
	p.failures.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) AddResolved(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.resolved.Add(float64(n))
}

func (p *PrometheusRecorder) SetUnresolved(n int) {
	if p == nil {
		return
	}
	p.unresolved.Set(float64(n))
}

func (p *PrometheusRecorder) IncBrokenLink(generator string) {
	if p == nil {
		return
	}
	p.brokenLinks.WithLabelValues(generator).Inc()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return errors.FileSystemError("write metrics textfile").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
