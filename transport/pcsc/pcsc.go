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

// Package pcsc implements the card transport on top of the host's PC/SC
// stack via github.com/ebfe/scard. One Reader owns the PC/SC context;
// each tag session gets an exclusively-shared card connection that is
// released before the next poll.
package pcsc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebfe/scard"

	"github.com/danielrosehill/nfc-rw"
	"github.com/danielrosehill/nfc-rw/internal/syncutil"
)

const (
	statusPollTimeout = 250 * time.Millisecond
	connectRetries    = 10
	connectRetryDelay = 100 * time.Millisecond
)

// Reader is an attached NFC reader. It implements polling.TagSource.
type Reader struct {
	ctx   *scard.Context
	name  string
	model string
}

// Open establishes a PC/SC context and selects an NFC-capable reader.
// A non-empty preferred string selects the first reader whose PC/SC
// name contains it; otherwise the model allow-list decides.
func Open(preferred string) (*Reader, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("%w: establish context: %w", nfcrw.ErrReaderNotFound, err)
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("%w: list readers: %w", nfcrw.ErrReaderNotFound, err)
	}

	name, model, err := selectReader(readers, preferred)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("%w: %d readers attached, none usable", err, len(readers))
	}

	nfcrw.Debugf("using reader %q (%s)", name, model)
	return &Reader{ctx: ctx, name: name, model: model}, nil
}

// Name returns the PC/SC reader name.
func (r *Reader) Name() string { return r.name }

// Model returns the detected reader model.
func (r *Reader) Model() string { return r.model }

// Close releases the PC/SC context.
func (r *Reader) Close() error {
	if err := r.ctx.Release(); err != nil {
		return fmt.Errorf("release context: %w", err)
	}
	return nil
}

// WaitForTag blocks until a tag is present, connects to it exclusively
// and selects it. The returned Tag owns the connection; closing the tag
// releases it.
func (r *Reader) WaitForTag(ctx context.Context) (*nfcrw.Tag, error) {
	if err := r.waitForState(ctx, true); err != nil {
		return nil, err
	}

	card, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := nfcrw.NewTag(ctx, card)
	if err != nil {
		_ = card.Close()
		return nil, err
	}
	return tag, nil
}

// WaitForRemoval blocks until the reader reports no tag present.
func (r *Reader) WaitForRemoval(ctx context.Context) error {
	return r.waitForState(ctx, false)
}

// waitForState polls GetStatusChange until the present flag matches.
func (r *Reader) waitForState(ctx context.Context, present bool) error {
	states := []scard.ReaderState{{Reader: r.name, CurrentState: scard.StateUnaware}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.ctx.GetStatusChange(states, statusPollTimeout)
		if err != nil && !errors.Is(err, scard.ErrTimeout) {
			return mapReaderError(err)
		}
		states[0].CurrentState = states[0].EventState

		if states[0].EventState&scard.StatePresent != 0 == present {
			return nil
		}
	}
}

// connect opens an exclusive card connection, retrying while the tag
// settles on the antenna.
func (r *Reader) connect(ctx context.Context) (*Card, error) {
	var lastErr error
	for range connectRetries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := r.ctx.Connect(r.name, scard.ShareExclusive, scard.ProtocolAny)
		if err == nil {
			return &Card{card: card, reader: r.name, connected: true}, nil
		}
		lastErr = err
		time.Sleep(connectRetryDelay)
	}
	return nil, mapCardError("connect", lastErr)
}

// Card is one exclusively-owned card connection implementing
// nfcrw.Transport.
type Card struct {
	card      *scard.Card
	reader    string
	mu        syncutil.Mutex
	connected bool
}

// Transmit sends one command APDU and returns the raw response,
// including the status word.
func (c *Card) Transmit(ctx context.Context, apdu []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil, nfcrw.ErrTagRemoved
	}

	resp, err := c.card.Transmit(apdu)
	if err != nil {
		return nil, mapCardError("transmit", err)
	}
	return resp, nil
}

// Close disconnects from the card, leaving it powered on the reader.
func (c *Card) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	c.connected = false
	if err := c.card.Disconnect(scard.LeaveCard); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// IsConnected implements nfcrw.Transport
func (c *Card) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Type implements nfcrw.Transport
func (*Card) Type() nfcrw.TransportType {
	return nfcrw.TransportPCSC
}

// mapCardError translates scard card-level errors into the package
// taxonomy so callers can use errors.Is.
func mapCardError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scard.ErrRemovedCard),
		errors.Is(err, scard.ErrUnpoweredCard),
		errors.Is(err, scard.ErrUnresponsiveCard),
		errors.Is(err, scard.ErrResetCard):
		return fmt.Errorf("%s: %w: %w", op, nfcrw.ErrTagRemoved, err)
	case errors.Is(err, scard.ErrNoSmartcard):
		return fmt.Errorf("%s: %w: %w", op, nfcrw.ErrNoTag, err)
	default:
		return mapReaderError(err)
	}
}

// mapReaderError translates scard context-level errors.
func mapReaderError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scard.ErrUnknownReader),
		errors.Is(err, scard.ErrReaderUnavailable),
		errors.Is(err, scard.ErrNoReadersAvailable),
		errors.Is(err, scard.ErrNoService),
		errors.Is(err, scard.ErrServiceStopped):
		return fmt.Errorf("%w: %w", nfcrw.ErrReaderUnavailable, err)
	default:
		return err
	}
}
