// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stagger

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/eyeballs/race"
)

// DefaultDelay is the stagger delay used by DefaultPolicy.
const DefaultDelay = 250 * time.Millisecond

// A Scheduler schedules the next connection attempt in a race.
//
// Implementations of Scheduler must be safe for concurrent use by
// multiple goroutines.
type Scheduler interface {
	// Schedule returns how long to wait before starting the next
	// connection attempt. It is called each time a new attempt has
	// just started, and e.Attempt is the zero-based number of that
	// attempt.
	//
	// The delay only governs when the next attempt may start. It is
	// not a timeout on the attempt which just started.
	Schedule(e *race.Execution) time.Duration
}

// Fixed constructs a scheduler which always returns d.
func Fixed(d time.Duration) Scheduler {
	if d < 0 {
		panic("eyeballs/stagger: negative delay")
	}
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Schedule(_ *race.Execution) time.Duration {
	return time.Duration(f)
}

// NewStaticScheduler constructs a scheduler from a table of delays.
// The delay after attempt i is delays[i]. Once the table is used up,
// its last delay is repeated.
//
// For example, the following scheduler waits 100ms after the first
// attempt, 200ms after the second, and 400ms after every later one:
//
//	sc := stagger.NewStaticScheduler(100*time.Millisecond, 200*time.Millisecond, 400*time.Millisecond)
func NewStaticScheduler(delays ...time.Duration) Scheduler {
	if len(delays) == 0 {
		panic("eyeballs/stagger: no delays")
	}
	s := make(staticScheduler, len(delays))
	for i, d := range delays {
		if d < 0 {
			panic("eyeballs/stagger: negative delay")
		}
		s[i] = d
	}
	return s
}

type staticScheduler []time.Duration

func (s staticScheduler) Schedule(e *race.Execution) time.Duration {
	i := e.Attempt
	if i >= len(s) {
		i = len(s) - 1
	} else if i < 0 {
		i = 0
	}
	return s[i]
}

// NewExpScheduler constructs a Scheduler implementing an exponentially
// growing delay with optional jitter.
//
// Parameters base and max control the exponential calculation of the
// ceiling:
//
//	ceil := min(base * 2**attempt, max)
//
// Base and max must be positive values, and max must be at least equal
// to base.
//
// Parameter jitter is used to generate a random delay between 0 and
// ceil. To make a scheduler that does not jitter and simply returns
// ceil on each attempt, pass nil for jitter. Otherwise you may specify
// either a random number generator seed value (as a time.Time, int, or
// int64) or a random number generator (as a rand.Source or *rand.Rand).
func NewExpScheduler(base, max time.Duration, jitter interface{}) Scheduler {
	if base < 1 {
		panic("eyeballs/stagger: base must be positive")
	}
	if max < base {
		panic("eyeballs/stagger: max must be at least base")
	}
	return &expScheduler{
		base: base,
		max:  max,
		rand: jitterToRand(jitter),
	}
}

type expScheduler struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (s *expScheduler) Schedule(e *race.Execution) time.Duration {
	ceil := s.max
	if e.Attempt < 63 {
		exp := int64(1) << uint(e.Attempt)
		if c := int64(s.base) * exp; c/exp == int64(s.base) && c < int64(s.max) {
			ceil = time.Duration(c)
		}
	}

	if s.rand == nil {
		return ceil
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	return time.Duration(s.rand.Int63n(int64(ceil) + 1))
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("eyeballs/stagger: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("eyeballs/stagger: invalid jitter type")
	}
	return rand.New(s)
}
