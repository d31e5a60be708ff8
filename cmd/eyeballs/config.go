// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/resolve"
	"github.com/gogama/eyeballs/stagger"
	"github.com/miekg/dns"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// config is the contents of the YAML file named by the -config flag.
// Command line flags override it.
type config struct {
	// Network is the dial network, "tcp" unless set.
	Network string `yaml:"network"`
	// Timeout bounds the whole race. Zero means no bound.
	Timeout time.Duration `yaml:"timeout"`

	// At most one of Delay, Schedule, and Backoff may be set. If none
	// is set, the default stagger delay applies.
	Delay    time.Duration   `yaml:"delay"`
	Schedule []time.Duration `yaml:"schedule"`
	Backoff  *backoffConfig  `yaml:"backoff,omitempty"`

	// At most one of Throttle and Rate may be set. If neither is set,
	// attempts start as soon as they are due.
	Throttle []limitConfig `yaml:"throttle,omitempty"`
	Rate     *rateConfig   `yaml:"rate,omitempty"`

	// DNS configures a resolver which queries DNS servers directly.
	// If DNS is nil, the operating system resolver is used.
	DNS *dnsConfig `yaml:"dns,omitempty"`
}

type backoffConfig struct {
	Base   time.Duration `yaml:"base"`
	Max    time.Duration `yaml:"max"`
	Jitter bool          `yaml:"jitter"`
}

type limitConfig struct {
	Attempts int           `yaml:"attempts"`
	Period   time.Duration `yaml:"period"`
}

type rateConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type dnsConfig struct {
	Servers         []string      `yaml:"servers"`
	Net             string        `yaml:"net"`
	Timeout         time.Duration `yaml:"timeout"`
	ResolutionDelay time.Duration `yaml:"resolution_delay"`
}

// loadConfig reads the config file at path.
func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *config) network() string {
	if c.Network == "" {
		return "tcp"
	}
	return c.Network
}

func (c *config) scheduler() (stagger.Scheduler, error) {
	n := 0
	if c.Delay != 0 {
		n++
	}
	if len(c.Schedule) > 0 {
		n++
	}
	if c.Backoff != nil {
		n++
	}
	if n > 1 {
		return nil, errors.New("delay, schedule, and backoff are mutually exclusive")
	}

	switch {
	case c.Delay < 0:
		return nil, fmt.Errorf("negative delay %v", c.Delay)
	case c.Delay > 0:
		return stagger.Fixed(c.Delay), nil
	case len(c.Schedule) > 0:
		for _, d := range c.Schedule {
			if d < 0 {
				return nil, fmt.Errorf("negative delay %v in schedule", d)
			}
		}
		return stagger.NewStaticScheduler(c.Schedule...), nil
	case c.Backoff != nil:
		if c.Backoff.Base <= 0 || c.Backoff.Max < c.Backoff.Base {
			return nil, fmt.Errorf("backoff needs 0 < base <= max, got base %v and max %v", c.Backoff.Base, c.Backoff.Max)
		}
		var jitter interface{}
		if c.Backoff.Jitter {
			jitter = time.Now()
		}
		return stagger.NewExpScheduler(c.Backoff.Base, c.Backoff.Max, jitter), nil
	default:
		return stagger.Fixed(stagger.DefaultDelay), nil
	}
}

func (c *config) gate() (stagger.Gate, error) {
	if len(c.Throttle) > 0 && c.Rate != nil {
		return nil, errors.New("throttle and rate are mutually exclusive")
	}

	switch {
	case len(c.Throttle) > 0:
		limits := make([]stagger.Limit, len(c.Throttle))
		for i, l := range c.Throttle {
			if l.Attempts < 1 || l.Period <= 0 {
				return nil, fmt.Errorf("throttle limit %d needs attempts >= 1 and a positive period", i)
			}
			limits[i] = stagger.Limit{MaxAttempts: l.Attempts, Period: l.Period}
		}
		return stagger.NewThrottleGate(limits...), nil
	case c.Rate != nil:
		if c.Rate.PerSecond <= 0 || c.Rate.Burst < 1 {
			return nil, errors.New("rate needs a positive per_second and burst")
		}
		return stagger.NewRateGate(rate.Limit(c.Rate.PerSecond), c.Rate.Burst), nil
	default:
		return stagger.Open, nil
	}
}

func (c *config) policy() (stagger.Policy, error) {
	s, err := c.scheduler()
	if err != nil {
		return nil, err
	}
	g, err := c.gate()
	if err != nil {
		return nil, err
	}
	return stagger.NewPolicy(s, g), nil
}

func (c *config) resolver() candidate.Resolver {
	if c.DNS == nil {
		return resolve.System
	}
	return &resolve.Resolver{
		Servers: c.DNS.Servers,
		Client: &dns.Client{
			Net:     c.DNS.Net,
			Timeout: c.DNS.Timeout,
		},
		ResolutionDelay: c.DNS.ResolutionDelay,
	}
}
