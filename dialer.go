// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"context"
	"net"
	"net/netip"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/race"
	"github.com/gogama/eyeballs/resolve"
	"github.com/gogama/eyeballs/stagger"
)

var emptyHandlers = HandlerGroup{}

// A Dialer races connection attempts to the candidate addresses of a
// destination following the Happy Eyeballs strategy. Its zero value is
// a valid configuration.
//
// The zero value dialer dials with NetConnector, paces attempts with
// stagger.DefaultPolicy, resolves host names with resolve.System, and
// has an empty handler group (no event handlers/plug-ins).
//
// Dialer is safe for concurrent use by multiple goroutines. Each race
// has its own state, created when the race starts and discarded when
// it ends.
//
// A race works as follows.
//
// • The candidate addresses are interleaved so that the IPv6 and IPv4
// families alternate (see candidate.Interleave).
//
// • The first attempt starts immediately. After each attempt starts,
// the next one is due once the policy's stagger delay elapses, while
// earlier attempts keep running. When an attempt fails, its
// replacement is due at once.
//
// • The first attempt to connect wins. Every other outstanding attempt
// is cancelled and its connection, if any, is closed.
//
// • When the last outstanding attempt fails after the candidates have
// run out, the race fails with that attempt's error. When the
// candidates run out while no attempt is outstanding, because there
// never was a candidate or because every earlier failure was already
// replaced, the race fails with the exhaustion error.
//
// Individual attempts have no timeout of their own. To bound a race,
// use a context with a deadline, or set a timeout on the dialer inside
// NetConnector.
type Dialer struct {
	// Connector makes the individual connection attempts.
	//
	// If Connector is nil, a NetConnector dialing the requested
	// network is used.
	Connector Connector
	// Policy decides how long to wait between starting attempts and
	// when a due attempt is ready to start.
	//
	// If Policy is nil, stagger.DefaultPolicy is used.
	Policy stagger.Policy
	// ExhaustedError produces the error returned by a race whose
	// candidates run out while no attempt is outstanding. Errors of
	// attempts which failed earlier remain available through
	// race.Execution.Errors.
	//
	// If ExhaustedError is nil, or returns nil, Exhausted is used.
	ExhaustedError func() error
	// Resolver turns host names into candidate addresses for
	// DialContext.
	//
	// If Resolver is nil, resolve.System is used.
	Resolver candidate.Resolver
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a race.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Clock provides the time and the stagger timer.
	//
	// If Clock is nil, the system clock is used.
	Clock clock.Clock
}

// Race runs a connection race over the addresses produced by src,
// following the policy set on Dialer.
//
// The returned Execution is never nil. If the race succeeds, its Conn
// field holds the winning connection, and the error is nil. Otherwise
// the error is the last attempt error, the exhaustion error, an error
// from the candidate source or the policy gate, or the context error if
// ctx was done first. Once Race returns, no attempt started by the race
// is still running unobserved.
func (d *Dialer) Race(ctx context.Context, src candidate.Source) (*race.Execution, error) {
	return d.race(ctx, "tcp", src)
}

// DialAddrs races TCP connections to a fixed list of addresses, using
// the same policies followed by Race.
func (d *Dialer) DialAddrs(ctx context.Context, addrs ...netip.AddrPort) (net.Conn, error) {
	return DialAddrs(ctx, d, addrs...)
}

// DialContext connects to the address on the named network, racing
// every address the host name resolves to.
//
// Known networks are "tcp", "tcp4" (IPv4-only), "tcp6" (IPv6-only),
// "udp", "udp4" (IPv4-only), and "udp6" (IPv6-only). The address has
// the form "host:port", as for net.Dial. The host may be a name or an
// IP literal.
//
// Any returned error is of type *net.OpError.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
	default:
		return nil, opError(network, netip.AddrPort{}, net.UnknownNetworkError(network))
	}

	host, service, err := net.SplitHostPort(address)
	if err != nil {
		return nil, opError(network, netip.AddrPort{}, err)
	}
	port, err := net.DefaultResolver.LookupPort(ctx, network, service)
	if err != nil {
		return nil, opError(network, netip.AddrPort{}, err)
	}

	// Lookups still running when the race ends are not needed.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver := d.Resolver
	if resolver == nil {
		resolver = resolve.System
	}
	src, err := resolver.Resolve(ctx, network, host, uint16(port))
	if err != nil {
		return nil, opError(network, netip.AddrPort{}, err)
	}

	e, err := d.race(ctx, network, src)
	if err != nil {
		return nil, opError(network, e.Addr, err)
	}
	return e.Conn, nil
}

// Dial connects to the address on the named network using
// context.Background.
func (d *Dialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

func (d *Dialer) race(ctx context.Context, network string, src candidate.Source) (*race.Execution, error) {
	connector := d.Connector
	if connector == nil {
		connector = &NetConnector{Network: network}
	}

	policy := d.Policy
	if policy == nil {
		policy = stagger.DefaultPolicy
	}

	handlers := d.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}

	clk := d.Clock
	if clk == nil {
		clk = clock.New()
	}

	r := newRacer(ctx, connector, policy, handlers, clk, d.exhaustedError)
	defer r.close()
	return r.run(candidate.Interleave(src))
}

func (d *Dialer) exhaustedError() error {
	if d.ExhaustedError != nil {
		if err := d.ExhaustedError(); err != nil {
			return err
		}
	}
	return Exhausted
}

func opError(network string, addr netip.AddrPort, err error) error {
	if _, ok := err.(*net.OpError); ok {
		return err
	}

	op := &net.OpError{
		Op:  "dial",
		Net: network,
		Err: err,
	}
	if addr.IsValid() {
		switch network {
		case "udp", "udp4", "udp6":
			op.Addr = net.UDPAddrFromAddrPort(addr)
		default:
			op.Addr = net.TCPAddrFromAddrPort(addr)
		}
	}
	return op
}
