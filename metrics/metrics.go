package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluatorRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zenithex_evaluator_runs_total",
		Help: "Conditional order evaluator cycles.",
	})

	ConditionalTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenithex_conditional_triggers_total",
		Help: "Conditional order trigger attempts by outcome.",
	}, []string{"result"})

	TwapSlices = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenithex_twap_slices_total",
		Help: "TWAP slices submitted by outcome.",
	}, []string{"result"})

	ReconViolations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "zenithex_recon_violations",
		Help: "Violations found by the last reconciliation run, per check.",
	}, []string{"check"})

	ReconDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zenithex_recon_check_duration_seconds",
		Help:    "Reconciliation check wall time.",
		Buckets: prometheus.DefBuckets,
	}, []string{"check"})

	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zenithex_orders_placed_total",
		Help: "Orders accepted by the placement path, by type.",
	}, []string{"ord_type"})
)
