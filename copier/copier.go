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

// Package copier writes the same NDEF content to a batch of tags, one
// tag at a time. The user presents and removes tags; the copier skips a
// tag it just wrote (so leaving a tag on the reader does not consume the
// quota), reports per-tag progress and supports cancellation between tag
// operations.
package copier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielrosehill/nfc-rw"
	"github.com/danielrosehill/nfc-rw/pkg/ndef"
	"github.com/danielrosehill/nfc-rw/polling"
)

// Progress describes one batch event. Err is nil for a successfully
// written tag; otherwise Step names the operation that failed.
type Progress struct {
	Err     error
	Job     string
	UID     string
	Step    string
	Written int
	Target  int
}

// Result summarizes a finished batch.
type Result struct {
	Job     string
	Written int
	Failed  int
}

// Copier writes a prepared message to N tags sequentially.
type Copier struct {
	// OnProgress receives one event per handled tag.
	OnProgress func(Progress)

	source polling.TagSource

	// Lock makes each tag read-only after a successful write.
	Lock bool
}

// New creates a copier over the given tag source.
func New(source polling.TagSource) *Copier {
	return &Copier{source: source}
}

// Run writes msg to quantity tags. A failed tag is reported and does not
// count toward the quota. Run returns early only on context cancellation
// or reader loss; the partial Result is returned alongside the error.
func (c *Copier) Run(ctx context.Context, msg *ndef.Message, quantity int) (*Result, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity %d", nfcrw.ErrInvalidParameter, quantity)
	}

	result := &Result{Job: uuid.NewString()}
	nfcrw.Debugf("batch %s: writing %d tags", result.Job, quantity)

	lastUID := ""
	for result.Written < quantity {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tag, err := c.source.WaitForTag(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || nfcrw.IsFatal(err) {
				return result, err
			}
			continue
		}

		uid := tag.UIDString()
		if uid == lastUID {
			// Same tag still on the reader; wait for a fresh one.
			_ = tag.Close()
			if err := c.awaitRemoval(ctx); err != nil {
				return result, err
			}
			continue
		}

		step, err := c.writeOne(ctx, tag, msg)
		_ = tag.Close()

		if err != nil {
			result.Failed++
			c.report(Progress{
				Job: result.Job, UID: uid, Step: step, Err: err,
				Written: result.Written, Target: quantity,
			})
		} else {
			lastUID = uid
			result.Written++
			c.report(Progress{
				Job: result.Job, UID: uid,
				Written: result.Written, Target: quantity,
			})
		}

		if result.Written < quantity {
			if err := c.awaitRemoval(ctx); err != nil {
				return result, err
			}
		}
	}

	nfcrw.Debugf("batch %s: done, %d written, %d failed", result.Job, result.Written, result.Failed)
	return result, nil
}

// writeOne performs the write (and optional lock) for a single tag,
// naming the step that failed.
func (c *Copier) writeOne(ctx context.Context, tag *nfcrw.Tag, msg *ndef.Message) (step string, err error) {
	if err := tag.WriteNDEF(ctx, msg); err != nil {
		return "writing", err
	}
	if c.Lock {
		if err := tag.Lock(ctx); err != nil {
			return "locking", err
		}
	}
	return "", nil
}

func (c *Copier) awaitRemoval(ctx context.Context) error {
	if err := c.source.WaitForRemoval(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || nfcrw.IsFatal(err) {
			return err
		}
	}
	return nil
}

func (c *Copier) report(p Progress) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}
