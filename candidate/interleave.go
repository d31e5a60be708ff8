// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package candidate

import (
	"context"
	"net/netip"
)

// An Interleaver is a Source which reorders the addresses of an
// underlying source so that address families alternate whenever both
// families are available.
//
// The Interleaver remembers the family it emitted last. Addresses of
// that same family which arrive from the underlying source are held in
// a first-in-first-out pending buffer while the Interleaver keeps
// pulling in search of an address of the other family. Buffered
// addresses are emitted as soon as they provide a family switch, and
// drained in order once the underlying source ends.
//
// Every address held in the pending buffer has the same family. As long
// as both families remain, either in the pending buffer or still to
// come from the source, consecutive addresses emitted by Next differ in
// family.
//
// Like any Source, an Interleaver is not safe for concurrent use. It is
// resumable: if Next returns early because its context is done, the
// pending buffer is kept and the next call continues where the previous
// one stopped.
type Interleaver struct {
	src     Source
	pending []netip.AddrPort
	last    Family
}

// Interleave returns an Interleaver reading from src.
func Interleave(src Source) *Interleaver {
	if src == nil {
		panic("eyeballs/candidate: nil source")
	}
	return &Interleaver{src: src}
}

// Next returns the next address in interleaved order.
func (il *Interleaver) Next(ctx context.Context) (netip.AddrPort, error) {
	if il.last == Unspecified {
		a, err := il.src.Next(ctx)
		if err != nil {
			return netip.AddrPort{}, err
		}
		il.last = FamilyOf(a)
		return a, nil
	}

	if len(il.pending) > 0 && FamilyOf(il.pending[0]) != il.last {
		return il.pop(), nil
	}

	for {
		a, err := il.src.Next(ctx)
		if err != nil {
			// The source has ended, normally or with an error. Drain
			// the pending buffer before reporting it.
			if len(il.pending) == 0 || ctx.Err() != nil {
				return netip.AddrPort{}, err
			}
			return il.pop(), nil
		}
		if f := FamilyOf(a); f != il.last {
			il.last = f
			return a, nil
		}
		il.pending = append(il.pending, a)
	}
}

// Ended reports whether the pending buffer is empty and the underlying
// source has ended.
func (il *Interleaver) Ended() bool {
	return len(il.pending) == 0 && il.src.Ended()
}

// Pending returns the number of addresses held in the pending buffer.
func (il *Interleaver) Pending() int {
	return len(il.pending)
}

func (il *Interleaver) pop() netip.AddrPort {
	a := il.pending[0]
	il.pending[0] = netip.AddrPort{}
	il.pending = il.pending[1:]
	il.last = FamilyOf(a)
	return a
}
