// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package eyeballs provides a connection dialer which races connection
attempts to every address of a destination, following the Happy
Eyeballs strategy, within a simple and familiar interface.

Create a Dialer to begin dialing. Its DialContext method has the same
signature as net.Dialer's, so it can be used wherever a dial function
is expected.

	dialer := &eyeballs.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", "www.example.com:443")
	...
	transport := &http.Transport{
		DialContext: dialer.DialContext,
	}

To race a list of addresses you already have, use DialAddrs, or Race for
the full race execution state.

	conn, err := dialer.DialAddrs(ctx, addr1, addr2, addr3)
	...
	e, err := dialer.Race(ctx, candidate.Slice(addr1, addr2, addr3))
	fmt.Println("Winner:", e.Addr, "after", e.Attempts, "attempts")

The candidate addresses are interleaved so the IPv6 and IPv4 families
alternate. Attempts start one after another, each one after the
previous one's stagger delay, while earlier attempts keep running. The
first attempt to connect wins and every other attempt is cancelled.

For control over the pacing of attempts, set a custom policy built with
package stagger:

	dialer := &eyeballs.Dialer{
		Policy: stagger.NewPolicy(
			stagger.Fixed(300*time.Millisecond),
			stagger.NewThrottleGate(stagger.Limit{MaxAttempts: 10, Period: time.Second})),
	}

For control over how each individual attempt connects, set a custom
Connector. The default, NetConnector, dials with a standard net.Dialer.

	dialer := &eyeballs.Dialer{
		Connector: &eyeballs.NetConnector{
			Dialer: net.Dialer{KeepAlive: 30 * time.Second},
		},
	}

For control over name resolution, set a custom candidate.Resolver, such
as one from package resolve:

	dialer := &eyeballs.Dialer{
		Resolver: &resolve.Resolver{Servers: []string{"192.0.2.53:53"}},
	}

To hook into the fine-grained details of a race, install a handler into
the appropriate handler chain. Packages logging and metrics provide
ready-made handlers.

	handlers := &eyeballs.HandlerGroup{}
	handlers.PushBack(eyeballs.BeforeAttempt, eyeballs.HandlerFunc(
		func(_ eyeballs.Event, e *race.Execution) {
			log.Printf("Attempt %d to %s", e.Attempt, e.Addr)
		}),
	)
	dialer := &eyeballs.Dialer{
		Handlers: handlers,
	}

Package eyeballs provides basic interfaces for racing (Racer) and for
dialing (ContextDialer), and the utility function DialAddrs for working
with any Racer.
*/
package eyeballs
