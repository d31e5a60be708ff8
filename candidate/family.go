// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package candidate

import "net/netip"

// A Family is the address family of a candidate address.
//
// The zero value, Unspecified, is never the family of an actual
// address. The Interleaver uses it to mean that no address has been
// emitted yet.
type Family int

const (
	// Unspecified is the zero Family.
	Unspecified Family = iota
	// IPv6 is the 128-bit address family.
	IPv6
	// IPv4 is the 32-bit address family. IPv4-mapped IPv6 addresses
	// belong to IPv4.
	IPv4
)

var familyNames = []string{
	"unspecified",
	"ipv6",
	"ipv4",
}

// FamilyOf returns the family of a candidate address.
func FamilyOf(a netip.AddrPort) Family {
	ip := a.Addr()
	if ip.Is4() || ip.Is4In6() {
		return IPv4
	}
	return IPv6
}

// String returns the lower case name of the family.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return "unknown"
	}
	return familyNames[f]
}
