// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/eyeballs/candidate"
	"github.com/gogama/eyeballs/race"
	"github.com/stretchr/testify/mock"
)

func v6(n byte) netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16([16]byte{0x20, 0x01, 0x0d, 0xb8, 15: n}), 443)
}

func v4(n byte) netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4([4]byte{192, 0, 2, n}), 443)
}

// outcome scripts how a scriptConnector answers a connection attempt.
type outcome struct {
	delay time.Duration // Wait this long first.
	err   error         // Fail with err, or succeed if nil.
	never bool          // Block until the attempt is cancelled.
	late  chan struct{} // Ignore cancellation and succeed once closed.
}

// scriptConnector answers each address according to its script.
// Addresses without a script never connect.
type scriptConnector struct {
	script    map[netip.AddrPort]outcome
	lock      sync.Mutex
	started   []netip.AddrPort
	cancelled chan netip.AddrPort
	conns     chan *testConn
}

func newScriptConnector(script map[netip.AddrPort]outcome) *scriptConnector {
	return &scriptConnector{
		script:    script,
		cancelled: make(chan netip.AddrPort, 64),
		conns:     make(chan *testConn, 64),
	}
}

func (c *scriptConnector) Connect(ctx context.Context, addr netip.AddrPort) (net.Conn, error) {
	c.lock.Lock()
	c.started = append(c.started, addr)
	c.lock.Unlock()

	o, ok := c.script[addr]
	if !ok {
		o.never = true
	}
	if o.late != nil {
		<-o.late
		return c.conn(addr), nil
	}
	if o.delay > 0 {
		select {
		case <-time.After(o.delay):
		case <-ctx.Done():
			c.cancelled <- addr
			return nil, ctx.Err()
		}
	}
	if o.never {
		<-ctx.Done()
		c.cancelled <- addr
		return nil, ctx.Err()
	}
	if o.err != nil {
		return nil, o.err
	}
	return c.conn(addr), nil
}

func (c *scriptConnector) conn(addr netip.AddrPort) *testConn {
	conn := &testConn{addr: addr}
	c.conns <- conn
	return conn
}

func (c *scriptConnector) Started() []netip.AddrPort {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]netip.AddrPort(nil), c.started...)
}

// chanConnector hands control of every attempt to the test. Each
// started attempt is announced on starts, and concludes when the test
// sends on the address's outcome channel: a nil error to connect, or an
// error to fail.
type chanConnector struct {
	starts   chan netip.AddrPort
	outcomes map[netip.AddrPort]chan error
}

func newChanConnector(addrs ...netip.AddrPort) *chanConnector {
	c := &chanConnector{
		starts:   make(chan netip.AddrPort, 64),
		outcomes: make(map[netip.AddrPort]chan error, len(addrs)),
	}
	for _, a := range addrs {
		c.outcomes[a] = make(chan error, 1)
	}
	return c
}

func (c *chanConnector) Connect(ctx context.Context, addr netip.AddrPort) (net.Conn, error) {
	c.starts <- addr
	select {
	case err := <-c.outcomes[addr]:
		if err != nil {
			return nil, err
		}
		return &testConn{addr: addr}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// gatedConnector is a Connector which also acts as a readiness gate.
type gatedConnector struct {
	Connector
	waits int32
	err   error
}

func (c *gatedConnector) Wait(ctx context.Context) error {
	atomic.AddInt32(&c.waits, 1)
	if c.err != nil {
		return c.err
	}
	return ctx.Err()
}

type testConn struct {
	net.Conn
	addr   netip.AddrPort
	closed int32
}

func (c *testConn) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return nil
}

func (c *testConn) Closed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *testConn) RemoteAddr() net.Addr {
	return net.TCPAddrFromAddrPort(c.addr)
}

// armClock is a mock clock which announces the duration of every timer
// it makes, once the timer is registered.
type armClock struct {
	*clock.Mock
	armed chan time.Duration
}

func newArmClock() *armClock {
	return &armClock{
		Mock:  clock.NewMock(),
		armed: make(chan time.Duration, 64),
	}
}

func (c *armClock) Timer(d time.Duration) *clock.Timer {
	t := c.Mock.Timer(d)
	c.armed <- d
	return t
}

type errGate struct {
	err error
}

func (g errGate) Wait(_ context.Context) error {
	return g.err
}

type mockRacer struct {
	mock.Mock
}

func newMockRacer(t mock.TestingT) *mockRacer {
	m := &mockRacer{}
	m.Test(t)
	return m
}

func (m *mockRacer) Race(ctx context.Context, src candidate.Source) (*race.Execution, error) {
	args := m.Called(ctx, src)
	err := args.Error(1)
	if e, ok := args.Get(0).(*race.Execution); ok {
		return e, err
	}
	return nil, err
}

type mockResolver struct {
	mock.Mock
}

func newMockResolver(t mock.TestingT) *mockResolver {
	m := &mockResolver{}
	m.Test(t)
	return m
}

func (m *mockResolver) Resolve(ctx context.Context, network, host string, port uint16) (candidate.Source, error) {
	args := m.Called(ctx, network, host, port)
	err := args.Error(1)
	if src, ok := args.Get(0).(candidate.Source); ok {
		return src, err
	}
	return nil, err
}

func (g *HandlerGroup) mock(evt Event) *mockHandler {
	var m *mockHandler
	if len(g.chains) <= int(evt) || len(g.chains[evt]) < 1 {
		m = &mockHandler{}
		g.PushBack(evt, m)
		return m
	}

	for _, h := range g.chains[evt] {
		if m, ok := h.(*mockHandler); ok {
			return m
		}
	}

	m = &mockHandler{}
	g.PushBack(evt, m)
	return m
}

func (g *HandlerGroup) assertExpectations(t mock.TestingT) {
	if g.chains == nil {
		return
	}

	for _, evt := range Events() {
		handlers := g.chains[evt]
		for _, h := range handlers {
			if m, ok := h.(*mockHandler); ok {
				m.AssertExpectations(t)
			}
		}
	}
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(evt Event, e *race.Execution) {
	m.Called(evt, e)
}

// trace records every event, and for attempt events, the attempt
// number and error.
type trace struct {
	calls     []string
	redundant []int
	failed    []int
}

func (d *Dialer) addTraceHandlers() *trace {
	if d.Handlers == nil {
		d.Handlers = &HandlerGroup{}
	}
	tr := &trace{}
	f := func(evt Event, e *race.Execution) {
		tr.calls = append(tr.calls, evt.Name())
		if evt == AfterAttempt && e.Err == Redundant {
			tr.redundant = append(tr.redundant, e.Attempt)
		} else if evt == AfterAttempt && e.Err != nil {
			tr.failed = append(tr.failed, e.Attempt)
		}
	}
	d.Handlers.PushBackAll(HandlerFunc(f))
	return tr
}
