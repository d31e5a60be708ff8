// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stagger

import (
	"context"
	"time"

	"github.com/gogama/eyeballs/race"
)

// DefaultPolicy is the policy used by a race when no policy is given.
// It waits DefaultDelay between attempts and has an open gate.
var DefaultPolicy = NewPolicy(Fixed(DefaultDelay), Open)

// A Policy controls the pacing of connection attempts in a race. It
// decides both how long to wait after an attempt starts before the next
// one is due, and whether a due attempt is ready to start.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Scheduler
	Gate
}

type policy struct {
	scheduler Scheduler
	gate      Gate
}

// NewPolicy composes a Scheduler and a Gate into a Policy.
func NewPolicy(s Scheduler, g Gate) Policy {
	if s == nil {
		panic("eyeballs/stagger: nil scheduler")
	}
	if g == nil {
		panic("eyeballs/stagger: nil gate")
	}
	return policy{scheduler: s, gate: g}
}

func (p policy) Schedule(e *race.Execution) time.Duration {
	return p.scheduler.Schedule(e)
}

func (p policy) Wait(ctx context.Context) error {
	return p.gate.Wait(ctx)
}
