// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package resolve

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
	"github.com/miekg/dns"
	"go.uber.org/multierr"
)

// ResolvConf is the file Resolver reads its DNS servers from when
// none are configured.
const ResolvConf = "/etc/resolv.conf"

// A Resolver resolves host names by querying DNS servers directly. Its
// zero value is a valid configuration which queries the servers listed
// in ResolvConf.
//
// The host name is queried as given, without applying any search
// domains. Servers are tried in order until one answers.
type Resolver struct {
	// Servers lists the DNS servers to query, in "host:port" form.
	//
	// If Servers is empty, the servers are read from ResolvConf.
	Servers []string
	// Client sends the DNS queries.
	//
	// If Client is nil, a UDP client with default settings is used.
	Client *dns.Client
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

	once    sync.Once
	servers []string
	err     error
}

// Resolve starts looking up host and returns a candidate source which
// produces the addresses found, each combined with port.
//
// The error is non-nil only if the lookup cannot start, for example
// because the network is unknown. Lookup failures are reported by the
// returned source, which ends with the combined error of every failed
// lookup if no address was found.
func (r *Resolver) Resolve(ctx context.Context, network, host string, port uint16) (candidate.Source, error) {
	return resolve(ctx, network, host, port, delayOf(r.ResolutionDelay), clockOf(r.Clock), r.lookup)
}

func (r *Resolver) lookup(ctx context.Context, host string, f candidate.Family) ([]netip.Addr, error) {
	servers, err := r.serverList()
	if err != nil {
		return nil, err
	}

	client := r.Client
	if client == nil {
		client = &dns.Client{}
	}

	qtype := dns.TypeA
	if f == candidate.IPv6 {
		qtype = dns.TypeAAAA
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)

	var errs error
	for _, server := range servers {
		in, _, err := client.ExchangeContext(ctx, m, server)
		if err != nil {
			errs = multierr.Append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if in.Rcode != dns.RcodeSuccess {
			errs = multierr.Append(errs, &net.DNSError{
				Err:        dns.RcodeToString[in.Rcode],
				Name:       host,
				Server:     server,
				IsNotFound: in.Rcode == dns.RcodeNameError,
			})
			if in.Rcode == dns.RcodeNameError {
				break
			}
			continue
		}
		return answers(in), nil
	}
	return nil, errs
}

func (r *Resolver) serverList() ([]string, error) {
	if len(r.Servers) > 0 {
		return r.Servers, nil
	}
	r.once.Do(func() {
		var c *dns.ClientConfig
		c, r.err = dns.ClientConfigFromFile(ResolvConf)
		if r.err != nil {
			return
		}
		for _, s := range c.Servers {
			r.servers = append(r.servers, net.JoinHostPort(s, c.Port))
		}
	})
	return r.servers, r.err
}

func answers(in *dns.Msg) []netip.Addr {
	var ips []netip.Addr
	for _, rr := range in.Answer {
		var ip netip.Addr
		var ok bool
		switch v := rr.(type) {
		case *dns.A:
			ip, ok = netip.AddrFromSlice(v.A)
		case *dns.AAAA:
			ip, ok = netip.AddrFromSlice(v.AAAA)
		}
		if ok {
			ips = append(ips, ip.Unmap())
		}
	}
	return ips
}
