// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"context"
	"net"
	"net/netip"
)

// A NetConnector is a Connector which makes each attempt with a
// standard library net.Dialer. Its zero value dials TCP.
type NetConnector struct {
	// Network is the network passed to the net.Dialer, for example
	// "tcp" or "udp". If Network is empty, "tcp" is used.
	Network string
	// Dialer is the dialer making the attempts. Its zero value is a
	// valid configuration. Any Timeout or Deadline set on it applies
	// to each attempt individually.
	Dialer net.Dialer
}

// Connect dials addr.
func (c *NetConnector) Connect(ctx context.Context, addr netip.AddrPort) (net.Conn, error) {
	network := c.Network
	if network == "" {
		network = "tcp"
	}
	return c.Dialer.DialContext(ctx, network, addr.String())
}
