// Package metrics exposes prometheus collectors for the e-paper core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epaper_mutations_total",
			Help: "Committed admin mutations by operation.",
		},
		[]string{"operation"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epaper_validation_failures_total",
			Help: "Rejected admin mutations by operation.",
		},
		[]string{"operation"},
	)
	TargetsRemapped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "epaper_hotspot_targets_remapped_total",
			Help: "Hotspot target_page_no values rewritten after renumbering.",
		},
	)
	DanglingSoftReferences = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "epaper_dangling_soft_references",
			Help: "Hotspots whose target_page_no names no page in their edition, as of the last audit.",
		},
	)
)

func init() {
	prometheus.MustRegister(Mutations, ValidationFailures, TargetsRemapped, DanglingSoftReferences)
}
