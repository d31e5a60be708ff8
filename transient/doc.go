// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies connection attempt errors.
//
// The race itself treats every failed attempt the same way: it moves on
// to the next candidate address. The categories reported by Categorize
// are for diagnostics, such as the logging and metrics handlers, where
// it helps to tell a refused port from an unreachable address family.
package transient
