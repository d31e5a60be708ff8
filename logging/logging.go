// Copyright 2021 The eyeballs Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging logs the progress of connection races to a zap
// logger.
//
// Attempts and other intermediate events are logged at debug level.
// A won race is logged at info level, and a failed one at warn level.
// Every entry carries the race ID so the entries of concurrent races
// can be told apart.
package logging

import (
	"github.com/gogama/eyeballs"
	"github.com/gogama/eyeballs/race"
	"go.uber.org/zap"
)

// Install adds event handlers to g which log to l.
func Install(g *eyeballs.HandlerGroup, l *zap.Logger) {
	if g == nil {
		panic("eyeballs/logging: nil handler group")
	}
	if l == nil {
		panic("eyeballs/logging: nil logger")
	}
	g.PushBackAll(&handler{logger: l})
}

type handler struct {
	logger *zap.Logger
}

func (h *handler) Handle(evt eyeballs.Event, e *race.Execution) {
	switch evt {
	case eyeballs.BeforeRaceStart:
		h.debug("race started", e)
	case eyeballs.BeforeAttempt:
		h.debug("attempt started", e, attemptFields(e)...)
	case eyeballs.AfterAttempt:
		switch e.Err {
		case nil:
			h.debug("attempt connected", e, attemptFields(e)...)
		case eyeballs.Redundant:
			h.debug("attempt abandoned", e, attemptFields(e)...)
		default:
			h.debug("attempt failed", e, append(attemptFields(e),
				zap.Error(e.Err),
				zap.Stringer("category", e.Category()))...)
		}
	case eyeballs.AfterTimer:
		h.debug("stagger delay elapsed", e, zap.Int("racing", e.Racing))
	case eyeballs.AfterSourceEnd:
		if e.Err != nil {
			h.debug("candidates ended", e, zap.Error(e.Err))
		} else {
			h.debug("candidates ended", e)
		}
	case eyeballs.AfterRaceEnd:
		fields := []zap.Field{
			zap.Stringer("race", e.ID),
			zap.Int("attempts", e.Attempts),
			zap.Duration("elapsed", e.Duration()),
		}
		if e.Err == nil {
			h.logger.Info("race won", append(fields,
				zap.Stringer("addr", e.Addr),
				zap.Stringer("family", e.Family()),
				zap.Int("attempt", e.Attempt))...)
		} else {
			h.logger.Warn("race failed", append(fields,
				zap.Error(e.Err),
				zap.Errors("attempt_errors", e.Errors()))...)
		}
	}
}

func (h *handler) debug(msg string, e *race.Execution, fields ...zap.Field) {
	if ce := h.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(append([]zap.Field{zap.Stringer("race", e.ID)}, fields...)...)
	}
}

func attemptFields(e *race.Execution) []zap.Field {
	return []zap.Field{
		zap.Int("attempt", e.Attempt),
		zap.Stringer("addr", e.Addr),
		zap.Stringer("family", e.Family()),
		zap.Int("racing", e.Racing),
	}
}
