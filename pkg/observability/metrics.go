// Package observability exposes Prometheus metrics for the pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SegmentsRendered counts successfully rendered audio segments.
	SegmentsRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscast_segments_rendered_total",
		Help: "Audio segments rendered successfully.",
	})

	// RenderFailures counts excluded segments by failure code.
	RenderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscast_render_failures_total",
		Help: "Segments excluded from the timeline by failure code.",
	}, []string{"code"})

	// RenderCacheHits counts renders satisfied without a vendor call.
	RenderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newscast_render_cache_hits_total",
		Help: "Renders served from the on-disk audio cache.",
	})

	// StepDuration observes wall time per pipeline step.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newscast_step_duration_seconds",
		Help:    "Pipeline step wall time.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"step"})

	// AnchorJobs counts worker pool outcomes.
	AnchorJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newscast_anchor_jobs_total",
		Help: "Anchor render jobs by outcome.",
	}, []string{"status"})

	// ManifestSegments gauges the segment count of the last built manifest.
	ManifestSegments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newscast_manifest_segments",
		Help: "Segments in the most recently built manifest.",
	})
)

// ObserveStep records the elapsed time of a step that started at start.
func ObserveStep(step string, start time.Time) {
	StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
}
