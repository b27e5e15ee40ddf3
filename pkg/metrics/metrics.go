// Motion planner metrics
//
// Prometheus collectors for the planning core:
// - plans produced, by move type
// - planning failures, by reason
// - planning latency and path length
// - labware currently loaded
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "opentrons"

// Failure reasons reported by PlanFailed.
const (
	ReasonInfeasible = "infeasible"
	ReasonNotFound   = "not_found"
	ReasonNoLabware  = "no_labware"
	ReasonOther      = "other"
)

// Recorder holds the planner collectors.
type Recorder struct {
	PlansTotal     *prometheus.CounterVec
	PlanFailures   *prometheus.CounterVec
	PlanDuration   prometheus.Histogram
	PlanWaypoints  prometheus.Histogram
	LoadedLabware  prometheus.Gauge
	LoadedPipettes prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Recorder registered on reg. A nil reg gets a private
// registry, so engines in the same process never collide.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{registry: reg}

	r.PlansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "motion_plans_total",
		Help:      "Moves planned, by move type.",
	}, []string{"move_type"})
	r.PlanFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "motion_plan_failures_total",
		Help:      "Moves that could not be planned, by reason.",
	}, []string{"reason"})
	r.PlanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "motion_plan_duration_seconds",
		Help:      "Time spent planning a move.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	r.PlanWaypoints = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "motion_plan_waypoints",
		Help:      "Waypoints per planned move.",
		Buckets:   prometheus.LinearBuckets(1, 1, 6),
	})
	r.LoadedLabware = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "engine_loaded_labware",
		Help:      "Labware currently loaded on the deck.",
	})
	r.LoadedPipettes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "engine_loaded_pipettes",
		Help:      "Pipettes currently attached.",
	})

	reg.MustRegister(
		r.PlansTotal, r.PlanFailures,
		r.PlanDuration, r.PlanWaypoints,
		r.LoadedLabware, r.LoadedPipettes,
	)
	return r
}

// ObservePlan records a successful plan.
func (r *Recorder) ObservePlan(moveType string, waypoints int, elapsed time.Duration) {
	r.PlansTotal.WithLabelValues(moveType).Inc()
	r.PlanWaypoints.Observe(float64(waypoints))
	r.PlanDuration.Observe(elapsed.Seconds())
}

// PlanFailed records a move that could not be planned.
func (r *Recorder) PlanFailed(reason string, elapsed time.Duration) {
	r.PlanFailures.WithLabelValues(reason).Inc()
	r.PlanDuration.Observe(elapsed.Seconds())
}

// SetLoaded updates the loaded labware and pipette gauges.
func (r *Recorder) SetLoaded(labware, pipettes int) {
	r.LoadedLabware.Set(float64(labware))
	r.LoadedPipettes.Set(float64(pipettes))
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
