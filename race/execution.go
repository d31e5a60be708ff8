// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package race

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/transient"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// An Execution represents the state of a single connection race.
//
// Stagger policies and event handlers may set values on an Execution
// using its SetValue method and read them back using the Value method.
// They should treat the exported fields as read-only, as the execution
// state is vital to the correct functioning of the race.
//
// An Execution is only ever accessed from the goroutine running the
// race, so handlers and policies do not need to synchronize.
type Execution struct {
	// ID uniquely identifies the race, for example to correlate log
	// entries.
	ID uuid.UUID

	// Start is the start time of the race. It is assigned a non-zero
	// value when the race starts, and this value remains constant
	// thereafter.
	Start time.Time

	// End is the end time of the race. It contains the zero value until
	// the race ends, when it is set to the current time.
	End time.Time

	// Attempt is the zero-based number of the connection attempt the
	// current event concerns. Attempts are numbered in the order they
	// were started, which is the interleaved candidate order.
	//
	// When the race ends successfully, Attempt is the number of the
	// winning attempt. Before the first attempt starts it is zero.
	Attempt int

	// Attempts is the count of connection attempts started so far.
	Attempts int

	// Racing is the count of connection attempts currently outstanding.
	// It is increased by one whenever an attempt starts and reduced by
	// one whenever an attempt ends or is abandoned.
	Racing int

	// Addr is the candidate address of the connection attempt the
	// current event concerns. When the race ends successfully, it is
	// the address of the winning attempt.
	Addr netip.AddrPort

	// Err is the error of the connection attempt the current event
	// concerns, if it failed. Once the race has ended, Err has the same
	// value as the error returned by the race.
	Err error

	// Errs combines the errors of every failed attempt, in the order
	// the failures were observed. Use Errors to get them as a slice.
	// Attempts abandoned because the race ended do not contribute.
	Errs error

	// Conn is the connection established by the winning attempt. It is
	// nil until the race ends successfully.
	Conn net.Conn

	// Exhausted indicates that every candidate address has been handed
	// out, so no new attempt can be started.
	Exhausted bool

	// Clock is the clock which timed the race. Duration reads it while
	// the race is running. If Clock is nil, the system clock is used.
	Clock clock.Clock

	data context.Context
}

// Family returns the address family of Addr.
func (e *Execution) Family() candidate.Family {
	if !e.Addr.IsValid() {
		return candidate.Unspecified
	}
	return candidate.FamilyOf(e.Addr)
}

// Category returns the transience category of Err.
func (e *Execution) Category() transient.Category {
	return transient.Categorize(e.Err)
}

// Errors returns the errors of every failed attempt so far, in the
// order they were observed.
func (e *Execution) Errors() []error {
	return multierr.Errors(e.Errs)
}

// Duration returns the duration of the race.
//
// If the race has not yet started, the duration is zero. If the race
// has ended, the duration returned is equal to End minus Start.
// Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		if e.Clock == nil {
			return time.Since(e.Start)
		}
		return e.Clock.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the race has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the race has ended. Once it has ended, the
// execution will not change any more.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different event handlers putting data into the
// same execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
