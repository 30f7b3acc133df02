// Copyright 2026 The nfc-rw Authors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package polling runs the single background loop that watches the
// reader for tags and hands each one to a callback. There is exactly one
// tag session at a time: the transport connection is held for the
// duration of the callback and released before the next cycle.
package polling

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/danielrosehill/nfc-rw"
	"github.com/danielrosehill/nfc-rw/internal/syncutil"
)

// TagSource produces tag sessions. transport/pcsc.Reader implements it
// against real hardware; tests substitute scripted sources.
type TagSource interface {
	// WaitForTag blocks until a tag is present and selected.
	WaitForTag(ctx context.Context) (*nfcrw.Tag, error)

	// WaitForRemoval blocks until the tag has left the reader.
	WaitForRemoval(ctx context.Context) error
}

// Session polls a TagSource and dispatches callbacks. Callbacks run on
// the polling goroutine; a callback error is reported via OnError and
// does not stop the loop.
type Session struct {
	// OnTag is invoked with each newly present tag. The session closes
	// the tag when the callback returns.
	OnTag func(ctx context.Context, tag *nfcrw.Tag) error

	// OnRemoved is invoked after the tag leaves the reader.
	OnRemoved func()

	// OnError is invoked with per-cycle failures that the loop absorbed.
	OnError func(err error)

	source  TagSource
	config  *Config
	state   TagState
	stateMu syncutil.RWMutex
	closed  atomic.Bool
}

// NewSession creates a session over the given source.
func NewSession(source TagSource, config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{
		source: source,
		config: config,
	}
}

// State returns the current antenna state.
func (s *Session) State() TagState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(state TagState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Close stops the loop after the current cycle.
func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

// Start runs the poll loop until the context is cancelled, Close is
// called, or the reader disappears. Every per-tag failure is treated as
// "no tag this cycle": it is reported through OnError and the loop keeps
// polling. Only reader loss ends the loop with an error.
func (s *Session) Start(ctx context.Context) error {
	for {
		if s.closed.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		tag, err := s.source.WaitForTag(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if nfcrw.IsFatal(err) {
				return err
			}
			s.reportError(err)
			s.sleep(ctx, s.config.PollInterval)
			continue
		}

		s.setState(StatePresent)
		s.runCallback(ctx, tag)
		_ = tag.Close()

		if err := s.source.WaitForRemoval(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.setState(StateAbsent)
				return err
			}
			s.reportError(err)
		}

		s.setState(StateAbsent)
		if s.OnRemoved != nil {
			s.OnRemoved()
		}
		s.sleep(ctx, s.config.RemovalInterval)
	}
}

func (s *Session) runCallback(ctx context.Context, tag *nfcrw.Tag) {
	if s.OnTag == nil {
		return
	}
	if err := s.OnTag(ctx, tag); err != nil {
		// The tag may have been yanked mid-operation; the state machine
		// recovers on the next cycle either way.
		s.reportError(err)
	}
}

func (s *Session) reportError(err error) {
	nfcrw.Debugf("poll cycle: %v", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}

func (s *Session) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
