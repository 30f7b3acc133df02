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

package nfctest

import (
	"context"
	"sync"

	"github.com/danielrosehill/nfc-rw"
)

// sourceItem is one scripted presentation: either a transport to select
// a tag over, or an error for the cycle.
type sourceItem struct {
	transport nfcrw.Transport
	err       error
}

// Source is a scripted tag source for poll-loop and batch tests. Each
// queued transport is handed out once; when the queue runs dry,
// WaitForTag blocks until the context is cancelled, like an empty
// reader would.
type Source struct {
	mu    sync.Mutex
	queue []sourceItem
	waits int
}

// NewSource creates a source that will present the given transports in
// order.
func NewSource(transports ...nfcrw.Transport) *Source {
	s := &Source{}
	for _, t := range transports {
		s.Push(t)
	}
	return s
}

// Push queues a tag presentation.
func (s *Source) Push(t nfcrw.Transport) {
	s.mu.Lock()
	s.queue = append(s.queue, sourceItem{transport: t})
	s.mu.Unlock()
}

// PushError queues a failed poll cycle.
func (s *Source) PushError(err error) {
	s.mu.Lock()
	s.queue = append(s.queue, sourceItem{err: err})
	s.mu.Unlock()
}

// Waits returns how many WaitForTag calls have been made.
func (s *Source) Waits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waits
}

// WaitForTag implements polling.TagSource.
func (s *Source) WaitForTag(ctx context.Context) (*nfcrw.Tag, error) {
	s.mu.Lock()
	s.waits++
	if len(s.queue) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	item := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	if item.err != nil {
		return nil, item.err
	}
	if v, ok := item.transport.(*VirtualTag); ok {
		v.Reopen()
	}
	return nfcrw.NewTag(ctx, item.transport)
}

// WaitForRemoval implements polling.TagSource. Removal is immediate in
// the scripted world.
func (*Source) WaitForRemoval(_ context.Context) error {
	return nil
}
