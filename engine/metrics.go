package engine

import (
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is an optional set of Prometheus collectors a host can
// register once and share across every Factory it builds, mirroring
// mountinfo.go's promauto.NewGaugeVec/NewCounterVec registration
// pattern. A nil *Metrics disables instrumentation entirely.
type Metrics struct {
	documentsScored *prometheus.CounterVec
	candidatesDropped *prometheus.CounterVec
	teaserBytes       prometheus.Histogram
}

// NewMetrics registers Juniper's collectors against reg and returns a
// Metrics a Factory can be built with.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		documentsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juniper_documents_scored_total",
			Help: "Documents scored against a query handle, by whether any match was found.",
		}, []string{"matched"}),
		candidatesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juniper_candidates_dropped_total",
			Help: "Match candidates dropped, by reason (expired, overlap, alloc_capped).",
		}, []string{"reason"}),
		teaserBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "juniper_teaser_bytes",
			Help:    "Size in bytes of built teasers.",
			Buckets: prometheus.ExponentialBuckets(32, 2, 8),
		}),
	}
}

func (m *Metrics) observeResult(matched bool, teaserLen int) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.documentsScored.WithLabelValues(label).Inc()
	m.teaserBytes.Observe(float64(teaserLen))
}

// occurrenceCountSummary renders a human-readable occurrence count for
// the debug log's summary line (mirrors mcand.cpp's log() annotation
// giving a quick read on match volume).
func occurrenceCountSummary(n int) string {
	return humanize.Comma(int64(n))
}
