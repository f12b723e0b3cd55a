// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus collectors for voting activity.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ideaboard"

type Metrics struct {
	registry *prometheus.Registry

	votes           *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	conflictRetries prometheus.Counter
	rewards         prometheus.Counter
	sessions        prometheus.Counter
	countersFixed   *prometheus.CounterVec
}

// New creates the collectors on a private registry, along with the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote ledger operations by target kind and outcome.",
		}, []string{"kind", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_rejections_total",
			Help:      "Rejected vote attempts by target kind and reason.",
		}, []string{"kind", "reason"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_conflict_retries_total",
			Help:      "Ledger transactions retried after losing a race.",
		}),
		rewards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_upvotes_total",
			Help:      "Reward upvotes granted to sessions.",
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Anonymous sessions minted.",
		}),
		countersFixed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counters_rebuilt_total",
			Help:      "Vote counters corrected by a ledger rebuild.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.votes, m.rejections, m.conflictRetries, m.rewards, m.sessions, m.countersFixed)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Vote(kind, outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Rejection(kind, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ConflictRetry() {
	if m == nil {
		return
	}
	m.conflictRetries.Inc()
}

func (m *Metrics) Reward() {
	if m == nil {
		return
	}
	m.rewards.Inc()
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) CountersFixed(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.countersFixed.WithLabelValues(kind).Add(float64(n))
}
