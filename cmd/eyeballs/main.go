// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command eyeballs races connections to every address of a host and
// reports which address won.
//
// Usage:
//
//	eyeballs [flags] host:port
//
// With -plan, eyeballs only prints the order in which the addresses
// would be attempted.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gogama/eyeballs"
	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/logging"
	"github.com/gogama/eyeballs/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == flag.ErrHelp {
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "eyeballs: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	config  string
	ips     string
	plan    bool
	verbose bool
	metrics bool
	delay   time.Duration
	dns     string
	network string
	timeout time.Duration
	address string
}

func parseArgs(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	fs := flag.NewFlagSet("eyeballs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: eyeballs [flags] host:port")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.config, "config", "", "YAML config `file`")
	fs.StringVar(&o.ips, "ips", "", "comma-separated IP addresses to race instead of resolving the host")
	fs.BoolVar(&o.plan, "plan", false, "print the attempt order and exit without connecting")
	fs.BoolVar(&o.verbose, "v", false, "log race events to stderr")
	fs.BoolVar(&o.metrics, "metrics", false, "print race metrics in Prometheus text format")
	fs.DurationVar(&o.delay, "delay", 0, "fixed delay between attempt starts (default 250ms)")
	fs.StringVar(&o.dns, "dns", "", "comma-separated DNS servers to query instead of the system resolver")
	fs.StringVar(&o.network, "network", "", "dial network: tcp, tcp4, tcp6, udp, udp4, or udp6 (default tcp)")
	fs.DurationVar(&o.timeout, "timeout", 0, "bound on the whole race (default none)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, nil, flag.ErrHelp
	}
	o.address = fs.Arg(0)

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// merge applies the flags which were set to cfg.
func (o *options) merge(cfg *config, set map[string]bool) {
	if set["network"] {
		cfg.Network = o.network
	}
	if set["timeout"] {
		cfg.Timeout = o.timeout
	}
	if set["delay"] {
		cfg.Delay = o.delay
		cfg.Schedule = nil
		cfg.Backoff = nil
	}
	if set["dns"] {
		if cfg.DNS == nil {
			cfg.DNS = &dnsConfig{}
		}
		cfg.DNS.Servers = splitList(o.dns)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, set, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg := &config{}
	if o.config != "" {
		if cfg, err = loadConfig(o.config); err != nil {
			return err
		}
	}
	o.merge(cfg, set)

	switch cfg.network() {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
	default:
		return net.UnknownNetworkError(cfg.network())
	}
	policy, err := cfg.policy()
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	src, err := source(ctx, cfg, o)
	if err != nil {
		return err
	}

	if o.plan {
		addrs, err := candidate.Collect(ctx, candidate.Interleave(src))
		for i, a := range addrs {
			fmt.Fprintf(stdout, "%d\t%s\t%v\n", i, candidate.FamilyOf(a), a)
		}
		return err
	}

	logger := zap.NewNop()
	if o.verbose {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(stderr),
			zap.DebugLevel,
		)
		logger = zap.New(core, zap.Development())
		defer func() { _ = logger.Sync() }()
	}

	handlers := &eyeballs.HandlerGroup{}
	logging.Install(handlers, logger)
	collector := metrics.NewCollector("")
	collector.Install(handlers)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	d := &eyeballs.Dialer{
		Connector: &eyeballs.NetConnector{Network: cfg.network()},
		Policy:    policy,
		Handlers:  handlers,
	}
	e, raceErr := d.Race(ctx, src)
	if raceErr == nil {
		fmt.Fprintf(stdout, "connected to %v in %v (attempt %d of %d)\n", e.Addr, e.Duration().Round(time.Millisecond), e.Attempt+1, e.Attempts)
		_ = e.Conn.Close()
	}

	if o.metrics {
		if err := writeMetrics(stdout, registry); err != nil {
			return err
		}
	}

	if raceErr != nil {
		return fmt.Errorf("%s: %w", o.address, raceErr)
	}
	return nil
}

// source produces the candidate addresses for the address argument,
// either from the -ips flag or by resolving the host.
func source(ctx context.Context, cfg *config, o *options) (candidate.Source, error) {
	host, service, err := net.SplitHostPort(o.address)
	if err != nil {
		return nil, err
	}
	port, err := net.DefaultResolver.LookupPort(ctx, cfg.network(), service)
	if err != nil {
		return nil, err
	}

	if o.ips == "" {
		return cfg.resolver().Resolve(ctx, cfg.network(), host, uint16(port))
	}

	var addrs []netip.AddrPort
	for _, s := range splitList(o.ips) {
		ip, err := netip.ParseAddr(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, netip.AddrPortFrom(ip.Unmap(), uint16(port)))
	}
	return candidate.Slice(addrs...), nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
