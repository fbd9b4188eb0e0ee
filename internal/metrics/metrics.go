// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HousesSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tesp_houses_simulated_total",
		Help: "Houses run to completion by the simulation engine",
	})

	SimulationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tesp_simulation_errors_total",
		Help: "Simulation runs that ended in an error",
	}, []string{"stage"})

	PeriodsSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tesp_market_periods_total",
		Help: "Market periods bid, cleared and stepped",
	})

	ForecastRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tesp_forecast_requests_total",
		Help: "Forecast window lookups by outcome",
	}, []string{"outcome"})

	PlanFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tesp_plan_fallbacks_total",
		Help: "Day-ahead plans degraded to schedule tracking",
	})

	PlanSolveSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tesp_plan_solve_seconds",
		Help:    "Day-ahead optimizer solve time",
		Buckets: prometheus.DefBuckets,
	})
)
