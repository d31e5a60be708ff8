// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package stagger provides policies deciding when a connection race may
start its next connection attempt.

Starting every attempt at once wastes resources and can trip connection
limits on NATs and firewalls, while starting them strictly one after
another brings back the very tail latency a race exists to avoid. A
race therefore staggers its attempts: after starting an attempt it
waits for a delay before starting the next one, while earlier attempts
keep running. A failed attempt is replaced immediately, without waiting
for the delay.

A Policy is made of two parts.

• A Scheduler decides the stagger delay. After each new attempt starts,
  the Scheduler is asked how long to wait before starting the next one.
  Use Fixed for a constant delay (the default is DefaultDelay, 250ms),
  NewStaticScheduler for a per-attempt table of delays, or
  NewExpScheduler for exponentially growing delays.

• A Gate decides readiness. Before each new attempt starts, whether
  because the delay elapsed or because an attempt failed, the race
  waits on the Gate. Use Open to never wait, NewThrottleGate to cap how
  many attempts start per unit time, or NewRateGate for a token bucket.

Use NewPolicy to compose any scheduler and any gate into a policy. The
default policy, DefaultPolicy, is a fixed 250ms delay with an open gate.
*/
package stagger
