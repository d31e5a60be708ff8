// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stagger

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// A Gate decides when a new connection attempt is ready to start.
//
// Implementations of Gate must be safe for concurrent use by multiple
// goroutines. A single Gate may be shared by many races, in which case
// it limits the attempts of all of them together.
//
// A *rate.Limiter from golang.org/x/time/rate is a Gate.
//
// A race waits on its gates before it takes the next candidate address,
// so a successful Wait counts against a throttle or rate gate even when
// the candidates turn out to have run out. Races skip the wait once they
// know the candidates have run out, which leaves only the case where
// the source ends while the wait is in progress.
type Gate interface {
	// Wait blocks until a new attempt may start or the context is
	// done. It returns nil if the attempt may start, and otherwise an
	// error which ends the race. If the context is done first, Wait
	// returns the context's error.
	Wait(ctx context.Context) error
}

// Open is a gate that never waits.
var Open Gate = open{}

type open struct{}

func (_ open) Wait(ctx context.Context) error {
	return ctx.Err()
}

// A Limit specifies the maximum number of connection attempts allowed
// to start per unit time.
type Limit struct {
	MaxAttempts int
	Period      time.Duration
}

// NewThrottleGate constructs a gate which throttles new connection
// attempts based on one or more limits. An attempt passes the gate
// only when it would not exceed any limit. Otherwise the gate waits
// until the oldest blocking attempt leaves its period.
//
// For example, the following gate holds back a new attempt if 10
// attempts have started in the last half second, or 15 have started in
// the last second:
//
//	g := stagger.NewThrottleGate(
//		stagger.Limit{MaxAttempts: 10, Period: 500*time.Millisecond},
//		stagger.Limit{MaxAttempts: 15, Period: 1*time.Second})
func NewThrottleGate(limits ...Limit) Gate {
	return newThrottleGate(clock.New(), limits...)
}

func newThrottleGate(clk clock.Clock, limits ...Limit) *throttleGate {
	g := &throttleGate{
		clock:  clk,
		limits: make([]limitQueue, len(limits)),
	}
	for i, l := range limits {
		if l.MaxAttempts < 1 {
			panic("eyeballs/stagger: limit must allow at least one attempt")
		}
		if l.Period <= 0 {
			panic("eyeballs/stagger: limit period must be positive")
		}
		g.limits[i] = newLimitQueue(l.Period, l.MaxAttempts)
	}
	return g
}

type throttleGate struct {
	clock  clock.Clock
	limits []limitQueue
	lock   sync.Mutex
}

func (g *throttleGate) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := g.tryAccept()
		if d <= 0 {
			return nil
		}
		timer := g.clock.Timer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// tryAccept records a new attempt if every limit has room for it and
// returns zero. Otherwise nothing is recorded and the returned value is
// how long until every limit may have room.
func (g *throttleGate) tryAccept() time.Duration {
	g.lock.Lock()
	defer g.lock.Unlock()
	now := g.clock.Now()
	var wait time.Duration
	for i := range g.limits {
		if d := g.limits[i].wait(now); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return wait
	}
	for i := range g.limits {
		g.limits[i].add(now)
	}
	return 0
}

// limitQueue is a ring buffer of the start times of the attempts within
// the most recent period.
type limitQueue struct {
	period     time.Duration
	a          []time.Time
	start, len int
}

func newLimitQueue(period time.Duration, cap int) limitQueue {
	return limitQueue{
		period: period,
		a:      make([]time.Time, cap),
	}
}

// wait evicts samples which have left the period and returns how long
// until there is room for a new sample. It returns zero if there is
// room now.
func (q *limitQueue) wait(now time.Time) time.Duration {
	cutoff := now.Add(-q.period)
	for q.len > 0 && !cutoff.Before(q.a[q.start]) {
		q.start = (q.start + 1) % len(q.a)
		q.len--
	}
	if q.len < len(q.a) {
		return 0
	}
	return q.a[q.start].Sub(cutoff)
}

func (q *limitQueue) add(t time.Time) {
	i := (q.start + q.len) % len(q.a)
	q.a[i] = t
	q.len++
}

// NewRateGate constructs a token bucket gate which allows attempts to
// start at rate r, with bursts of at most burst attempts.
func NewRateGate(r rate.Limit, burst int) Gate {
	if burst < 1 {
		panic("eyeballs/stagger: burst must be positive")
	}
	return rate.NewLimiter(r, burst)
}
