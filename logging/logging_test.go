// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/gogama/eyeballs"
	"github.com/gogama/eyeballs/stagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	v6 = netip.MustParseAddrPort("[2001:db8::1]:443")
	v4 = netip.MustParseAddrPort("192.0.2.1:443")
)

func newDialer(t *testing.T, level zapcore.Level, connect eyeballs.ConnectorFunc) (*eyeballs.Dialer, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	g := &eyeballs.HandlerGroup{}
	Install(g, zap.New(core))
	return &eyeballs.Dialer{
		Connector: connect,
		Policy:    stagger.NewPolicy(stagger.Fixed(time.Hour), stagger.Open),
		Handlers:  g,
	}, logs
}

func TestInstall(t *testing.T) {
	assert.PanicsWithValue(t, "eyeballs/logging: nil handler group", func() { Install(nil, zap.NewNop()) })
	assert.PanicsWithValue(t, "eyeballs/logging: nil logger", func() { Install(&eyeballs.HandlerGroup{}, nil) })

	g := &eyeballs.HandlerGroup{}
	Install(g, zap.NewNop())
	for _, evt := range eyeballs.Events() {
		assert.Equal(t, 1, g.Len(evt), evt.Name())
	}
}

func TestRaceWon(t *testing.T) {
	refused := errors.New("connection refused")
	d, logs := newDialer(t, zap.DebugLevel, func(_ context.Context, addr netip.AddrPort) (net.Conn, error) {
		if addr == v6 {
			return nil, refused
		}
		c, _ := net.Pipe()
		return c, nil
	})

	c, err := d.DialAddrs(context.Background(), v6, v4)
	require.NoError(t, err)
	defer c.Close()

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"race started",
		"attempt started",
		"attempt failed",
		"attempt started",
		"candidates ended",
		"attempt connected",
		"race won",
	}, messages)

	failed := logs.FilterMessage("attempt failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.Equal(t, "[2001:db8::1]:443", fields["addr"])
	assert.Equal(t, "ipv6", fields["family"])
	assert.Equal(t, "connection refused", fields["error"])
	assert.Equal(t, "not", fields["category"])

	won := logs.FilterMessage("race won").All()
	require.Len(t, won, 1)
	assert.Equal(t, zapcore.InfoLevel, won[0].Level)
	fields = won[0].ContextMap()
	assert.Equal(t, "192.0.2.1:443", fields["addr"])
	assert.Equal(t, int64(2), fields["attempts"])
	assert.Equal(t, int64(1), fields["attempt"])
	assert.NotEmpty(t, fields["race"])
	for _, entry := range logs.All() {
		assert.Equal(t, fields["race"], entry.ContextMap()["race"], "race ID on %q", entry.Message)
	}
}

func TestRaceFailed(t *testing.T) {
	refused := errors.New("connection refused")
	d, logs := newDialer(t, zap.InfoLevel, func(_ context.Context, _ netip.AddrPort) (net.Conn, error) {
		return nil, refused
	})

	_, err := d.DialAddrs(context.Background(), v6, v4)
	require.Error(t, err)

	require.Equal(t, 1, logs.Len(), "debug entries filtered out")
	entry := logs.All()[0]
	assert.Equal(t, "race failed", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "connection refused", fields["error"])
	assert.Equal(t, int64(2), fields["attempts"])
	assert.Len(t, fields["attempt_errors"], 2)
}

func TestRaceAbandoned(t *testing.T) {
	d, logs := newDialer(t, zap.DebugLevel, func(ctx context.Context, addr netip.AddrPort) (net.Conn, error) {
		if addr == v6 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		c, _ := net.Pipe()
		return c, nil
	})
	d.Policy = stagger.NewPolicy(stagger.Fixed(20*time.Millisecond), stagger.Open)

	c, err := d.DialAddrs(context.Background(), v6, v4)
	require.NoError(t, err)
	defer c.Close()

	abandoned := logs.FilterMessage("attempt abandoned").All()
	require.Len(t, abandoned, 1)
	assert.Equal(t, int64(0), abandoned[0].ContextMap()["attempt"])
	assert.GreaterOrEqual(t, logs.FilterMessage("stagger delay elapsed").Len(), 1)
}
