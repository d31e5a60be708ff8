// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics records Prometheus metrics about connection races.
//
// Create a Collector, install it in the handler group of one or more
// dialers, and register it with a Prometheus registry:
//
//	c := metrics.NewCollector("myapp")
//	c.Install(handlers)
//	prometheus.MustRegister(c)
package metrics

import (
	"context"
	"errors"

	"github.com/gogama/eyeballs"
	"github.com/gogama/eyeballs/race"
	"github.com/prometheus/client_golang/prometheus"
)

// Attempt outcomes, as used in the outcome label.
const (
	Connected = "connected"
	Failed    = "failed"
	Abandoned = "abandoned"
)

// Race results, as used in the result label.
const (
	Won       = "won"
	Lost      = "lost"
	Cancelled = "cancelled"
)

// A Collector is a prometheus.Collector which counts connection
// attempts and races. It is safe for concurrent use by many races.
type Collector struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	races    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCollector returns a Collector whose metric names are prefixed with
// namespace, which may be empty.
func NewCollector(namespace string) *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eyeballs",
			Name:      "attempts_started_total",
			Help:      "Connection attempts started, by address family.",
		}, []string{"family"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eyeballs",
			Name:      "attempts_ended_total",
			Help:      "Connection attempts ended, by address family, outcome, and error category.",
		}, []string{"family", "outcome", "category"}),
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eyeballs",
			Name:      "races_total",
			Help:      "Connection races ended, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eyeballs",
			Name:      "race_duration_seconds",
			Help:      "Duration of connection races.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// Install adds the collector's event handlers to g.
func (c *Collector) Install(g *eyeballs.HandlerGroup) {
	g.PushBackAll(c, eyeballs.BeforeAttempt, eyeballs.AfterAttempt, eyeballs.AfterRaceEnd)
}

// Handle records the event.
func (c *Collector) Handle(evt eyeballs.Event, e *race.Execution) {
	switch evt {
	case eyeballs.BeforeAttempt:
		c.attempts.WithLabelValues(e.Family().String()).Inc()
	case eyeballs.AfterAttempt:
		outcome, category := Connected, ""
		if e.Err == eyeballs.Redundant {
			outcome = Abandoned
		} else if e.Err != nil {
			outcome, category = Failed, e.Category().String()
		}
		c.outcomes.WithLabelValues(e.Family().String(), outcome, category).Inc()
	case eyeballs.AfterRaceEnd:
		c.races.WithLabelValues(result(e.Err)).Inc()
		c.duration.Observe(e.Duration().Seconds())
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return Won
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	default:
		return Lost
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.attempts.Describe(ch)
	c.outcomes.Describe(ch)
	c.races.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.attempts.Collect(ch)
	c.outcomes.Collect(ch)
	c.races.Collect(ch)
	c.duration.Collect(ch)
}
