// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package candidate

import (
	"context"
	"errors"
	"net/netip"
	"sync"
)

// Done is the error returned by Source.Next when the source has ended
// normally and will produce no more addresses.
var Done = errors.New("eyeballs/candidate: no more addresses")

// A Source lazily produces candidate addresses.
//
// A Source is consumed by one goroutine at a time. Implementations
// which are also fed by producer goroutines, such as Stream, must
// synchronize internally.
type Source interface {
	// Next returns the next candidate address.
	//
	// Next blocks until an address is available, the context is done,
	// or the source ends. If the context is done first, Next returns
	// the context's error and the source remains usable. If the source
	// has ended, Next returns Done, or the error the source ended
	// with, and keeps returning it on every later call.
	Next(ctx context.Context) (netip.AddrPort, error)

	// Ended reports whether the source has definitely ended, meaning
	// any further call to Next will return without an address. Ended
	// never consumes an address.
	Ended() bool
}

// A Resolver turns a host name into a Source of candidate addresses.
//
// The network parameter has the same meaning as in net.Dial. A network
// ending in "4" or "6" restricts the candidate addresses to the IPv4
// or IPv6 family respectively.
type Resolver interface {
	Resolve(ctx context.Context, network, host string, port uint16) (Source, error)
}

// Slice returns a Source which produces the given addresses in order.
// The returned source reports Ended as soon as its last address has
// been returned by Next.
func Slice(addrs ...netip.AddrPort) Source {
	s := make(slice, len(addrs))
	copy(s, addrs)
	return &s
}

type slice []netip.AddrPort

func (s *slice) Next(ctx context.Context) (netip.AddrPort, error) {
	if err := ctx.Err(); err != nil {
		return netip.AddrPort{}, err
	}
	if len(*s) == 0 {
		return netip.AddrPort{}, Done
	}
	a := (*s)[0]
	*s = (*s)[1:]
	return a, nil
}

func (s *slice) Ended() bool {
	return len(*s) == 0
}

// A Stream is a Source fed by producers. Producers add addresses with
// Push and end the stream with Close. Until the stream is closed, Next
// blocks while no pushed address is waiting to be consumed.
//
// Push and Close are safe for concurrent use by multiple goroutines.
// The zero value is not usable; use NewStream.
type Stream struct {
	lock   sync.Mutex
	queue  []netip.AddrPort
	closed bool
	err    error
	notify chan struct{}
}

// NewStream returns an empty, open Stream.
func NewStream() *Stream {
	return &Stream{
		notify: make(chan struct{}, 1),
	}
}

// Push appends addresses to the stream. Pushing to a closed stream
// panics.
func (s *Stream) Push(addrs ...netip.AddrPort) {
	if len(addrs) == 0 {
		return
	}
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		panic("eyeballs/candidate: push to closed stream")
	}
	s.queue = append(s.queue, addrs...)
	s.lock.Unlock()
	s.wake()
}

// Close ends the stream. Addresses already pushed are still returned
// by Next. Once they are consumed, Next returns err, or Done if err is
// nil. Only the first call to Close has any effect.
func (s *Stream) Close(err error) {
	s.lock.Lock()
	if !s.closed {
		s.closed = true
		s.err = err
	}
	s.lock.Unlock()
	s.wake()
}

// Next returns the next pushed address, blocking until one is pushed,
// the stream is closed, or the context is done.
func (s *Stream) Next(ctx context.Context) (netip.AddrPort, error) {
	for {
		s.lock.Lock()
		if len(s.queue) > 0 {
			a := s.queue[0]
			s.queue = s.queue[1:]
			s.lock.Unlock()
			return a, nil
		}
		if s.closed {
			err := s.err
			s.lock.Unlock()
			if err == nil {
				err = Done
			}
			return netip.AddrPort{}, err
		}
		s.lock.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return netip.AddrPort{}, ctx.Err()
		}
	}
}

// Ended reports whether the stream is closed and every pushed address
// has been consumed.
func (s *Stream) Ended() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed && len(s.queue) == 0
}

func (s *Stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Collect pulls every remaining address from src and returns them in
// order. The error is nil if src ended with Done, and otherwise the
// error which stopped collection.
func Collect(ctx context.Context, src Source) ([]netip.AddrPort, error) {
	var addrs []netip.AddrPort
	for {
		a, err := src.Next(ctx)
		if err == Done {
			return addrs, nil
		} else if err != nil {
			return addrs, err
		}
		addrs = append(addrs, a)
	}
}
