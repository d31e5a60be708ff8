// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stagger

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gogama/eyeballs/race"
	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	assert.PanicsWithValue(t, "eyeballs/stagger: negative delay", func() { Fixed(-1) })
	sc := Fixed(time.Second)
	assert.Equal(t, time.Second, sc.Schedule(&race.Execution{}))
	assert.Equal(t, time.Second, sc.Schedule(&race.Execution{Attempt: 1000}))
	assert.Equal(t, time.Duration(0), Fixed(0).Schedule(&race.Execution{Attempt: 1}))
}

func TestNewStaticScheduler(t *testing.T) {
	t.Run("Bad Args", func(t *testing.T) {
		assert.PanicsWithValue(t, "eyeballs/stagger: no delays", func() { NewStaticScheduler() })
		assert.PanicsWithValue(t, "eyeballs/stagger: negative delay", func() { NewStaticScheduler(time.Second, -1) })
	})
	t.Run("Size=1", func(t *testing.T) {
		sc := NewStaticScheduler(time.Hour)
		assert.Equal(t, time.Hour, sc.Schedule(&race.Execution{Attempt: 0}))
		assert.Equal(t, time.Hour, sc.Schedule(&race.Execution{Attempt: 1}))
	})
	t.Run("Size=2", func(t *testing.T) {
		sc := NewStaticScheduler(time.Millisecond, time.Second)
		assert.Equal(t, time.Millisecond, sc.Schedule(&race.Execution{Attempt: 0}))
		assert.Equal(t, time.Second, sc.Schedule(&race.Execution{Attempt: 1}))
		assert.Equal(t, time.Second, sc.Schedule(&race.Execution{Attempt: 2}))
		assert.Equal(t, time.Second, sc.Schedule(&race.Execution{Attempt: 1000}))
	})
	t.Run("Copies Input", func(t *testing.T) {
		delays := []time.Duration{time.Millisecond}
		sc := NewStaticScheduler(delays...)
		delays[0] = time.Hour
		assert.Equal(t, time.Millisecond, sc.Schedule(&race.Execution{}))
	})
}

func TestNewExpScheduler(t *testing.T) {
	base, max := 1*time.Millisecond, 1*time.Hour
	t.Run("invalid base", func(t *testing.T) {
		assert.Panics(t, func() {
			NewExpScheduler(time.Duration(-1), max, nil)
		}, "negative base")
		assert.Panics(t, func() {
			NewExpScheduler(time.Duration(0), max, nil)
		}, "zero base")
	})
	t.Run("invalid max", func(t *testing.T) {
		assert.Panics(t, func() {
			NewExpScheduler(time.Duration(2), time.Duration(1), nil)
		}, "max less than base")
	})
	t.Run("invalid jitter", func(t *testing.T) {
		assert.Panics(t, func() {
			NewExpScheduler(base, max, float64(1))
		}, "float64")
		var nilRand *rand.Rand
		assert.Panics(t, func() {
			NewExpScheduler(base, max, nilRand)
		}, "nil *rand.Rand")
	})
	t.Run("no jitter", func(t *testing.T) {
		s := NewExpScheduler(base, max, nil).(*expScheduler)
		assert.Nil(t, s.rand)
		var src rand.Source
		s = NewExpScheduler(base, max, src).(*expScheduler)
		assert.Nil(t, s.rand, "nil rand.Source")
		for i := 0; i < 10; i++ {
			ceil := 1 << i
			assert.Equal(t, time.Duration(ceil)*time.Millisecond, s.Schedule(&race.Execution{Attempt: i}))
		}
		assert.Equal(t, max, s.Schedule(&race.Execution{Attempt: 25}))
		assert.Equal(t, max, s.Schedule(&race.Execution{Attempt: 1000}))
		assert.Equal(t, max, s.Schedule(&race.Execution{Attempt: math.MaxInt}))
	})
	t.Run("with jitter", func(t *testing.T) {
		jitters := []struct {
			name   string
			jitter interface{}
		}{
			{"time.Time", time.Now()},
			{"int", 1},
			{"int64", int64(2)},
			{"rand.Source", rand.NewSource(3)},
			{"*rand.Rand", rand.New(rand.NewSource(4))},
		}
		for _, jitter := range jitters {
			t.Run(jitter.name, func(t *testing.T) {
				s := NewExpScheduler(base, max, jitter.jitter).(*expScheduler)
				assert.NotNil(t, s.rand)
				for i := 0; i < 30; i++ {
					d := s.Schedule(&race.Execution{Attempt: i})
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.LessOrEqual(t, d, max)
					if i < 10 {
						assert.LessOrEqual(t, d, time.Duration(1<<i)*time.Millisecond)
					}
				}
			})
		}
	})
}
