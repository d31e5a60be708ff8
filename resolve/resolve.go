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
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DefaultResolutionDelay is how long IPv4 answers are held back waiting
// for IPv6 answers, unless configured otherwise.
const DefaultResolutionDelay = 50 * time.Millisecond

// lookupFunc looks up the addresses of one family for a host.
type lookupFunc func(ctx context.Context, host string, f candidate.Family) ([]netip.Addr, error)

// families returns the address families to look up for a network, in
// order of preference.
func families(network string) ([]candidate.Family, error) {
	switch network {
	case "", "ip", "tcp", "udp":
		return []candidate.Family{candidate.IPv6, candidate.IPv4}, nil
	case "ip6", "tcp6", "udp6":
		return []candidate.Family{candidate.IPv6}, nil
	case "ip4", "tcp4", "udp4":
		return []candidate.Family{candidate.IPv4}, nil
	default:
		return nil, net.UnknownNetworkError(network)
	}
}

func delayOf(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultResolutionDelay
	} else if d < 0 {
		return 0
	}
	return d
}

func clockOf(clk clock.Clock) clock.Clock {
	if clk == nil {
		return clock.New()
	}
	return clk
}

// resolve starts resolving host and returns the stream the answers are
// pushed into.
func resolve(ctx context.Context, network, host string, port uint16, delay time.Duration, clk clock.Clock, lookup lookupFunc) (candidate.Source, error) {
	fams, err := families(network)
	if err != nil {
		return nil, err
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		for _, f := range fams {
			if candidate.FamilyOf(netip.AddrPortFrom(ip, port)) == f {
				return candidate.Slice(netip.AddrPortFrom(ip, port)), nil
			}
		}
		return nil, &net.AddrError{Err: "no suitable address found", Addr: host}
	}

	s := candidate.NewStream()
	go run(ctx, s, host, port, fams, delay, clk, lookup)
	return s, nil
}

func run(ctx context.Context, s *candidate.Stream, host string, port uint16, fams []candidate.Family, delay time.Duration, clk clock.Clock, lookup lookupFunc) {
	var g errgroup.Group
	errs := make([]error, len(fams))
	found := make([]bool, len(fams))

	// Closed once the IPv6 lookup is over. Stays nil when IPv6 is not
	// looked up, so IPv4 answers are never held back.
	var v6Done chan struct{}
	if fams[0] == candidate.IPv6 && len(fams) > 1 {
		v6Done = make(chan struct{})
	}

	for i, f := range fams {
		i, f := i, f
		g.Go(func() error {
			ips, err := lookup(ctx, host, f)
			if f == candidate.IPv6 && v6Done != nil {
				defer close(v6Done)
			}
			if err != nil {
				errs[i] = err
				return err
			}
			if f == candidate.IPv4 && v6Done != nil && len(ips) > 0 && delay > 0 {
				timer := clk.Timer(delay)
				select {
				case <-v6Done:
				case <-timer.C:
				case <-ctx.Done():
				}
				timer.Stop()
			}
			addrs := make([]netip.AddrPort, 0, len(ips))
			for _, ip := range ips {
				ip = ip.Unmap()
				if candidate.FamilyOf(netip.AddrPortFrom(ip, port)) == f {
					addrs = append(addrs, netip.AddrPortFrom(ip, port))
				}
			}
			found[i] = len(addrs) > 0
			s.Push(addrs...)
			return nil
		})
	}

	_ = g.Wait()
	for _, ok := range found {
		if ok {
			s.Close(nil)
			return
		}
	}
	if err := multierr.Combine(errs...); err != nil {
		s.Close(err)
		return
	}
	s.Close(&net.DNSError{Err: "no such host", Name: host, IsNotFound: true})
}
