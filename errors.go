// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"io/fs"
)

// Exhausted is the default error returned by a race which ran out of
// candidate addresses while no attempt was outstanding, most often
// because there were no candidates to begin with, or because every
// failed attempt was replaced before the candidates were known to be
// used up.
//
// Exhausted also matches fs.ErrNotExist under errors.Is, so code which
// treats "no address could be used" as a not-found condition keeps
// working.
var Exhausted error = exhaustedError{}

type exhaustedError struct{}

func (_ exhaustedError) Error() string {
	return "eyeballs: no address could be used"
}

func (_ exhaustedError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// Redundant is set as the Err of a connection attempt which was
// abandoned because the race ended before the attempt did, either
// because another attempt won or because the race failed or was
// cancelled.
//
// Redundant is only ever seen by AfterAttempt event handlers. It is
// never returned by a race.
var Redundant error = redundantError{}

type redundantError struct{}

func (_ redundantError) Error() string {
	return "eyeballs: attempt abandoned after race ended"
}
