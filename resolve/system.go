// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package resolve

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
)

// System is the SystemResolver used when no resolver is configured.
var System = &SystemResolver{}

// A SystemResolver resolves host names with a standard library
// net.Resolver, so it honors /etc/hosts, search domains, and the rest
// of the system configuration. Its zero value is a valid configuration.
type SystemResolver struct {
	// Resolver does the lookups.
	//
	// If Resolver is nil, net.DefaultResolver is used.
	Resolver *net.Resolver
	// ResolutionDelay is how long IPv4 answers are held back waiting
	// for IPv6 answers.
	//
	// If ResolutionDelay is zero, DefaultResolutionDelay is used. If it
	// is negative, IPv4 answers are never held back.
	ResolutionDelay time.Duration
	// Clock provides the resolution delay timer.
	//
	// If Clock is nil, the system clock is used.
	Clock clock.Clock
}

// Resolve starts looking up host and returns a candidate source which
// produces the addresses found, each combined with port. It behaves
// like Resolver.Resolve.
func (r *SystemResolver) Resolve(ctx context.Context, network, host string, port uint16) (candidate.Source, error) {
	return resolve(ctx, network, host, port, delayOf(r.ResolutionDelay), clockOf(r.Clock), r.lookup)
}

func (r *SystemResolver) lookup(ctx context.Context, host string, f candidate.Family) ([]netip.Addr, error) {
	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	network := "ip4"
	if f == candidate.IPv6 {
		network = "ip6"
	}
	return res.LookupNetIP(ctx, network, host)
}
