// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package resolve turns host names into streams of candidate addresses.

Both resolvers in this package look up the IPv6 (AAAA) and IPv4 (A)
addresses of a host concurrently and push each set of answers into a
candidate.Stream as soon as it arrives, so a race can start connecting
before resolution has finished.

If the IPv4 answers arrive first, they are held back for a short
resolution delay (DefaultResolutionDelay, 50ms) to give the IPv6
answers a chance to arrive, since IPv6 is preferred. The IPv4 answers
are released as soon as the IPv6 lookup completes or the delay elapses,
whichever is first.

Resolver queries DNS servers directly using github.com/miekg/dns.
SystemResolver uses a standard library net.Resolver, and System is the
SystemResolver used by default.

Hosts which are IP literals are not looked up at all.
*/
package resolve
