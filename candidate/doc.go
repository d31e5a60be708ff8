// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package candidate contains the candidate address types consumed by a
connection race: the address Family, the lazily produced address
Source, and the Interleaver which reorders a Source so that the IPv6
and IPv4 families alternate.

A Source hands out addresses one at a time. Pulling the next address
may block, for example while a DNS answer is still in flight, so every
Source takes a context:

	src := candidate.Slice(v6a, v6b, v4a)
	for {
		a, err := src.Next(ctx)
		if err == candidate.Done {
			break
		}
		...
	}

Interleave wraps any Source in an Interleaver, which is itself a
Source. The Interleaver emits addresses in source order except that,
whenever the source produces several addresses of the same family in a
row, it banks the surplus and emits the next address of the other
family first. Relative order within each family is preserved and no
address is lost or duplicated:

	il := candidate.Interleave(candidate.Slice(v6a, v6b, v6c, v4a, v4b))
	addrs, _ := candidate.Collect(ctx, il)
	// addrs: v6a, v4a, v6b, v4b, v6c
*/
package candidate
