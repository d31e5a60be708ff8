// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"context"
	"net"
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/race"
	"github.com/gogama/eyeballs/stagger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// racer holds the state of one race. Only the goroutine running run
// touches its fields, except for the channels and the sequence, which
// is handed to at most one pull goroutine at a time.
type racer struct {
	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	connector Connector
	gate      stagger.Gate
	policy    stagger.Policy
	handlers  *HandlerGroup
	clock     clock.Clock
	exhausted func() error

	e     race.Execution
	timer *clock.Timer

	want        bool
	pulling     bool
	outstanding map[int]netip.AddrPort

	pulled  chan pull
	results chan result
	done    chan struct{}
	once    sync.Once
}

type pull struct {
	addr   netip.AddrPort
	ended  bool
	err    error
	source bool // err came from the sequence rather than a gate
}

type result struct {
	attempt int
	conn    net.Conn
	err     error
}

func newRacer(ctx context.Context, connector Connector, policy stagger.Policy, handlers *HandlerGroup, clk clock.Clock, exhausted func() error) *racer {
	r := &racer{
		parent:      ctx,
		connector:   connector,
		policy:      policy,
		handlers:    handlers,
		clock:       clk,
		exhausted:   exhausted,
		want:        true,
		outstanding: make(map[int]netip.AddrPort),
		pulled:      make(chan pull),
		results:     make(chan result),
		done:        make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	if g, ok := connector.(stagger.Gate); ok {
		r.gate = g
	}
	return r
}

func (r *racer) run(seq *candidate.Interleaver) (*race.Execution, error) {
	r.e.ID = uuid.New()
	r.e.Clock = r.clock
	r.e.Start = r.clock.Now()
	r.handlers.run(BeforeRaceStart, &r.e)

	var winner *result
	var winnerAddr netip.AddrPort
	var err error

Loop:
	for {
		if r.e.Exhausted && len(r.outstanding) == 0 {
			err = r.exhausted()
			break
		}

		if r.want && !r.pulling && !r.e.Exhausted {
			r.pulling = true
			go r.pull(seq)
		}

		var timerC <-chan time.Time
		if r.timer != nil {
			timerC = r.timer.C
		}

		select {
		case <-r.parent.Done():
			err = r.parent.Err()
			break Loop
		case <-timerC:
			r.want = true
			r.handlers.run(AfterTimer, &r.e)
		case p := <-r.pulled:
			r.pulling = false
			if p.err == candidate.Done {
				r.sourceEnded(nil)
			} else if p.err != nil {
				if ctxErr := r.parent.Err(); ctxErr != nil {
					err = ctxErr
					break Loop
				}
				if p.source {
					r.sourceEnded(p.err)
				}
				err = p.err
				break Loop
			} else {
				r.start(p.addr)
				if p.ended {
					r.sourceEnded(nil)
				}
			}
		case res := <-r.results:
			if res.err != nil && r.parent.Err() != nil {
				// The attempt failed because the race was cancelled.
				err = r.parent.Err()
				break Loop
			}
			addr := r.outstanding[res.attempt]
			delete(r.outstanding, res.attempt)
			r.e.Racing--
			r.e.Attempt = res.attempt
			r.e.Addr = addr
			r.e.Err = res.err
			if res.err == nil {
				r.e.Conn = res.conn
				r.handlers.run(AfterAttempt, &r.e)
				winner, winnerAddr = &res, addr
				break Loop
			}
			if res.conn != nil {
				_ = res.conn.Close()
			}
			r.e.Errs = multierr.Append(r.e.Errs, res.err)
			r.want = true
			r.handlers.run(AfterAttempt, &r.e)
			if r.e.Exhausted && len(r.outstanding) == 0 {
				// The last possible attempt failed. Failures seen
				// before the candidates ran out are only diagnostics.
				err = res.err
				break Loop
			}
		}
	}

	r.close()
	r.abandon()

	if winner != nil {
		r.e.Attempt = winner.attempt
		r.e.Addr = winnerAddr
		r.e.Conn = winner.conn
		r.e.Err = nil
	} else {
		r.e.Conn = nil
		r.e.Err = err
	}
	r.e.End = r.clock.Now()
	r.handlers.run(AfterRaceEnd, &r.e)
	return &r.e, r.e.Err
}

// pull waits until a new attempt is ready to start and then takes the
// next address from the sequence. The gates are skipped when the
// sequence has already ended.
func (r *racer) pull(seq *candidate.Interleaver) {
	var p pull
	if !seq.Ended() {
		if p.err = r.policy.Wait(r.ctx); p.err == nil && r.gate != nil {
			p.err = r.gate.Wait(r.ctx)
		}
	}
	if p.err == nil {
		p.addr, p.err = seq.Next(r.ctx)
		p.ended = p.err == nil && seq.Ended()
		p.source = p.err != nil
	}
	select {
	case r.pulled <- p:
	case <-r.done:
	}
}

func (r *racer) start(addr netip.AddrPort) {
	i := r.e.Attempts
	r.e.Attempts++
	r.e.Racing++
	r.e.Attempt = i
	r.e.Addr = addr
	r.e.Err = nil
	r.outstanding[i] = addr
	r.want = false
	r.handlers.run(BeforeAttempt, &r.e)

	go func() {
		conn, err := r.connector.Connect(r.ctx, addr)
		select {
		case r.results <- result{attempt: i, conn: conn, err: err}:
		case <-r.done:
			if conn != nil {
				_ = conn.Close()
			}
		}
	}()

	r.arm(r.policy.Schedule(&r.e))
}

// arm replaces the stagger timer with one that fires after d.
func (r *racer) arm(d time.Duration) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.clock.Timer(d)
}

func (r *racer) sourceEnded(err error) {
	r.e.Exhausted = true
	r.e.Err = err
	r.handlers.run(AfterSourceEnd, &r.e)
}

// abandon concludes every outstanding attempt as redundant, in attempt
// order.
func (r *racer) abandon() {
	attempts := make([]int, 0, len(r.outstanding))
	for i := range r.outstanding {
		attempts = append(attempts, i)
	}
	sort.Ints(attempts)
	for _, i := range attempts {
		r.e.Racing--
		r.e.Attempt = i
		r.e.Addr = r.outstanding[i]
		r.e.Err = Redundant
		delete(r.outstanding, i)
		r.handlers.run(AfterAttempt, &r.e)
	}
}

// close cancels every outstanding attempt and stops the timer. It is
// safe to call more than once.
func (r *racer) close() {
	r.once.Do(func() {
		r.cancel()
		close(r.done)
		if r.timer != nil {
			r.timer.Stop()
		}
	})
}
