// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package race contains the core type Execution, which describes the
state of a single connection race.

A connection race tries candidate addresses, starting a new connection
attempt whenever the stagger delay elapses or an earlier attempt fails,
until one attempt succeeds or every candidate has failed. The Execution
records the progress of the race. It is handed to stagger policies when
they schedule the next attempt, to event handlers while the race runs,
and returned to the caller once the race ends:

	e, err := dialer.Race(ctx, candidate.Slice(addrs...))
	if err != nil {
		for _, attemptErr := range e.Errors() {
			...
		}
	}

Only the error of the last failed attempt is returned as the race's
error. Every attempt error is kept on the Execution for diagnostics.
*/
package race
