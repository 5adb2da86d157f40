// Package metrics provides Prometheus metrics for tree rebuilds
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rebuild results.
const (
	ResultPublished = "published"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
)

// Metrics holds all Prometheus metrics for the tree orchestrator
type Metrics struct {
	// Rebuild metrics
	RebuildsTotal   *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	RebuildDuration prometheus.Histogram

	// Trigger metrics
	TriggersTotal  prometheus.Counter
	CoalescedTotal prometheus.Counter

	// Tree metrics
	DocumentsTotal prometheus.Gauge
	LeavesTotal    prometheus.Gauge
	NodesTotal     prometheus.Gauge

	Registry *prometheus.Registry
}

// NewMetrics creates all metrics and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}

	m.RebuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagfolder_rebuilds_total",
			Help: "Total number of tree rebuild requests by result",
		},
		[]string{"result"},
	)

	m.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagfolder_stage_duration_seconds",
			Help:    "Duration of each rebuild stage in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stage"},
	)

	m.RebuildDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tagfolder_rebuild_duration_seconds",
			Help:    "Duration of full tree rebuilds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.TriggersTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "tagfolder_triggers_total",
			Help: "Total number of rebuild triggers received",
		},
	)

	m.CoalescedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "tagfolder_triggers_coalesced_total",
			Help: "Triggers folded into an already pending rebuild",
		},
	)

	m.DocumentsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagfolder_documents",
			Help: "Documents in the file cache",
		},
	)

	m.LeavesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagfolder_leaves",
			Help: "Documents placed in the published tree",
		},
	)

	m.NodesTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagfolder_nodes",
			Help: "Tag nodes in the published tree",
		},
	)

	return m
}

// RecordRebuild records the outcome of a rebuild request
func (m *Metrics) RecordRebuild(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RebuildsTotal.WithLabelValues(result).Inc()
	if result == ResultPublished {
		m.RebuildDuration.Observe(duration.Seconds())
	}
}

// RecordStage records the time spent in one pipeline stage
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordTrigger counts a trigger, noting whether it joined a pending one
func (m *Metrics) RecordTrigger(coalesced bool) {
	if m == nil {
		return
	}
	m.TriggersTotal.Inc()
	if coalesced {
		m.CoalescedTotal.Inc()
	}
}

// UpdateTreeStats updates the size gauges after a publish
func (m *Metrics) UpdateTreeStats(documents, leaves, nodes int) {
	if m == nil {
		return
	}
	m.DocumentsTotal.Set(float64(documents))
	m.LeavesTotal.Set(float64(leaves))
	m.NodesTotal.Set(float64(nodes))
}
