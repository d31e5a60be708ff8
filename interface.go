// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"context"
	"net"
	"net/netip"

	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/race"
)

// A Connector makes a single connection attempt to one candidate
// address.
//
// Connect must return promptly once ctx is done, since the race
// cancels the context of every attempt still outstanding when the race
// ends. If Connect returns a connection after that, the race closes it.
//
// A Connector which also implements stagger.Gate is asked for readiness
// before each new attempt starts, after the race's own policy gate.
// This lets a connection pool or a limited transport hold back new
// attempts while it is saturated.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Connector interface {
	Connect(ctx context.Context, addr netip.AddrPort) (net.Conn, error)
}

// The ConnectorFunc type is an adapter to allow the use of ordinary
// functions as connectors.
type ConnectorFunc func(ctx context.Context, addr netip.AddrPort) (net.Conn, error)

// Connect calls f(ctx, addr).
func (f ConnectorFunc) Connect(ctx context.Context, addr netip.AddrPort) (net.Conn, error) {
	return f(ctx, addr)
}

// Racer is the interface that wraps the basic Race method.
//
// Race runs a connection race over the addresses produced by src, and
// returns the final race execution state and error, if any. Dialer
// implements the Racer interface, and any other Racer implementation
// must behave substantially the same as Dialer.Race.
type Racer interface {
	Race(ctx context.Context, src candidate.Source) (*race.Execution, error)
}

// ContextDialer is the interface that wraps the basic DialContext
// method. It has the same method set as the proxy.ContextDialer
// interface from golang.org/x/net/proxy, and is implemented by both
// Dialer and net.Dialer.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DialAddrs uses the specified Racer to race connections to a fixed
// list of addresses, and returns the winning connection.
func DialAddrs(ctx context.Context, r Racer, addrs ...netip.AddrPort) (net.Conn, error) {
	e, err := r.Race(ctx, candidate.Slice(addrs...))
	if err != nil {
		return nil, err
	}
	return e.Conn, nil
}
