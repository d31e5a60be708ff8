// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"github.com/gogama/eyeballs/race"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Dialer. The zero value is an empty group.
//
// A HandlerGroup may be shared by any number of dialers and concurrent
// races, provided it is not modified while a race is running.
type HandlerGroup struct {
	chains []chain
}

type chain []Handler

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("eyeballs: nil handler")
	}
	if evt < 0 || evt >= eventSentinel {
		panic("eyeballs: unknown event")
	}

	if g.chains == nil {
		g.chains = make([]chain, numEvents)
	}

	g.chains[evt] = append(g.chains[evt], h)
}

// PushBackAll adds h to the back of the chain of every listed event,
// in order. With no events listed, h is added for every event.
func (g *HandlerGroup) PushBackAll(h Handler, evts ...Event) {
	if len(evts) == 0 {
		evts = Events()
	}
	for _, evt := range evts {
		g.PushBack(evt, h)
	}
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	if int(evt) < 0 || int(evt) >= len(g.chains) {
		return 0
	}
	return len(g.chains[evt])
}

func (g *HandlerGroup) run(evt Event, e *race.Execution) {
	if int(evt) < len(g.chains) {
		g.chains[evt].run(evt, e)
	}
}

func (c chain) run(evt Event, e *race.Execution) {
	for _, h := range c {
		h.Handle(evt, e)
	}
}

// A Handler handles the occurrence of an event during a connection
// race.
//
// Handlers run on the goroutine running the race, one at a time, so a
// slow handler delays the race. The Execution is only valid for the
// duration of the call; copy any fields needed later.
type Handler interface {
	Handle(Event, *race.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *race.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *race.Execution) {
	f(evt, e)
}
