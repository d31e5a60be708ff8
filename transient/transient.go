// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the category of a connection attempt error, as
// reported by function Categorize().
type Category int

const (
	// Not indicates a nil error or an error which fits no other
	// category.
	Not Category = iota
	// Timeout indicates the attempt timed out.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// A refused connection means the address is reachable but nothing
	// listens on the port. Other addresses of the same host often
	// behave the same way.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet while
	// the connection was being established, and corresponds to the
	// POSIX error code ECONNRESET.
	ConnReset
	// Unreachable indicates there is no route to the address, and
	// corresponds to the POSIX error codes EHOSTUNREACH, ENETUNREACH and
	// EADDRNOTAVAIL.
	//
	// Unreachable is the typical outcome of dialing an IPv6 address from
	// a host whose IPv6 connectivity is broken, which is the situation
	// an interleaved race is designed to paper over.
	Unreachable
)

var categoryNames = []string{
	"not",
	"timeout",
	"conn_refused",
	"conn_reset",
	"unreachable",
}

// String returns the snake case name of the category, suitable for use
// as a metric label value.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the category of the given error. A nil error, and
// an error fitting no other category, produce the return value Not.
//
// Categorize looks at wrapped cause errors contained within err, not
// just err itself. It never checks if an error has a Temporary()
// function, as the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.EHOSTUNREACH, syscall.ENETUNREACH, syscall.EADDRNOTAVAIL:
			return Unreachable
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
