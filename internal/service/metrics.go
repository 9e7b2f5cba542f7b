package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litreads_cart_mutations_total",
			Help: "Cart mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	cartLoadFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litreads_cart_load_fallbacks_total",
			Help: "Cart loads that fell back to an empty or repaired cart",
		},
		[]string{"reason"},
	)

	formSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litreads_form_submissions_total",
			Help: "Simulated form submissions by form and outcome",
		},
		[]string{"form", "outcome"},
	)
)

const (
	outcomeOK      = "ok"
	outcomeNoop    = "noop"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)
