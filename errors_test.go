// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package eyeballs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExhausted(t *testing.T) {
	assert.EqualError(t, Exhausted, "eyeballs: no address could be used")
	assert.ErrorIs(t, Exhausted, fs.ErrNotExist)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", Exhausted), fs.ErrNotExist)
	assert.NotErrorIs(t, Exhausted, fs.ErrPermission)
	assert.NotErrorIs(t, Redundant, fs.ErrNotExist)
}

func TestRedundant(t *testing.T) {
	assert.EqualError(t, Redundant, "eyeballs: attempt abandoned after race ended")
	assert.False(t, errors.Is(Redundant, Exhausted))
}
