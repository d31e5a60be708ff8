// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Dialer to extend it with custom
// functionality, such as logging or metrics.
type Event int

const (
	// BeforeRaceStart identifies the event that occurs before the race
	// starts.
	//
	// When Dialer fires BeforeRaceStart, the execution's ID and Start
	// fields are set, but no attempt has started.
	BeforeRaceStart Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// connection attempt starts.
	//
	// When Dialer fires BeforeAttempt, the execution's Attempt and Addr
	// fields identify the attempt which WILL START after all
	// BeforeAttempt handlers have finished, and Attempts and Racing
	// already count it.
	BeforeAttempt
	// AfterAttempt identifies the event that occurs after a connection
	// attempt is concluded, whether it succeeded, failed, or was
	// abandoned because the race ended.
	//
	// When Dialer fires AfterAttempt, the execution's Attempt and Addr
	// fields identify the concluded attempt and Err holds its error, if
	// any. An abandoned attempt has Err set to Redundant.
	//
	// AfterAttempt fires exactly once for every attempt which fired
	// BeforeAttempt.
	AfterAttempt
	// AfterTimer identifies the event that occurs after the stagger
	// delay elapses, meaning a new attempt is due.
	AfterTimer
	// AfterSourceEnd identifies the event that occurs when the race
	// learns that there are no more candidate addresses to try.
	//
	// When Dialer fires AfterSourceEnd, the execution's Exhausted field
	// is true. If the candidate source ended with an error other than
	// candidate.Done, Err holds that error.
	AfterSourceEnd
	// AfterRaceEnd identifies the event that occurs after the race
	// ends.
	//
	// When Dialer fires AfterRaceEnd, the execution is in its final
	// state: End is set, Err holds the error returned by the race, and
	// on success Conn holds the winning connection while Attempt and
	// Addr identify the winning attempt.
	AfterRaceEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeRaceStart",
	"BeforeAttempt",
	"AfterAttempt",
	"AfterTimer",
	"AfterSourceEnd",
	"AfterRaceEnd",
}

// Events returns a slice containing all events which can occur in a
// connection race run by Dialer, in the order in which they would
// first occur.
func Events() []Event {
	return []Event{
		BeforeRaceStart,
		BeforeAttempt,
		AfterAttempt,
		AfterTimer,
		AfterSourceEnd,
		AfterRaceEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
