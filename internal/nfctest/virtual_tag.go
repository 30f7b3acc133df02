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

// Package nfctest provides an in-memory NTAG21x simulator implementing
// the transport interface, plus a scripted tag source for poll-loop and
// batch tests. The simulator answers the same pseudo-APDUs a PC/SC
// reader translates for a real tag, enforces static lock bits and
// supports failure injection (rejected pages, mid-operation removal).
package nfctest

import (
	"context"
	"fmt"
	"sync"

	"github.com/danielrosehill/nfc-rw"
)

const (
	pageSize     = 4
	headerPages  = 4 // UID, lock bytes, CC
	trailerPages = 5 // dynamic lock, config, password

	staticLockFirstPage = 3
	staticLockLastPage  = 15
)

// VirtualTag emulates an NTAG21x behind a card connection.
type VirtualTag struct {
	failWriteErr error
	uid          []byte
	pages        [][]byte
	mu           sync.Mutex
	transmits    int
	removeAfter  int
	failWriteAt  int
	userPages    int
	connected    bool
}

// NewNTAG213 creates a blank, NDEF-formatted virtual NTAG213 with an
// empty NDEF message in user memory.
func NewNTAG213() *VirtualTag {
	return newVirtual(36, 0x12, []byte{0x04, 0xD3, 0x5A, 0x01, 0x02, 0x03, 0x04})
}

// NewNTAG215 creates a blank, NDEF-formatted virtual NTAG215.
func NewNTAG215() *VirtualTag {
	return newVirtual(126, 0x3E, []byte{0x04, 0x7E, 0x21, 0x05, 0x06, 0x07, 0x08})
}

// NewBlank creates a factory-fresh tag: NTAG213 geometry with a zeroed
// capability container and empty user memory, the way tags leave the
// fab before any NDEF formatting.
func NewBlank() *VirtualTag {
	v := newVirtual(36, 0x12, []byte{0x04, 0x99, 0x88, 0x0A, 0x0B, 0x0C, 0x0D})
	v.pages[3] = make([]byte, pageSize)
	v.pages[4] = make([]byte, pageSize)
	return v
}

func newVirtual(userPages int, ccSize byte, uid []byte) *VirtualTag {
	total := headerPages + userPages + trailerPages
	pages := make([][]byte, total)
	for i := range pages {
		pages[i] = make([]byte, pageSize)
	}

	// UID spread over pages 0-1 the way NTAG does it; the check bytes
	// don't matter to anything above the transport.
	copy(pages[0], uid[:3])
	copy(pages[1], uid[3:7])
	pages[3] = []byte{0xE1, 0x10, ccSize, 0x00}

	// Empty NDEF TLV
	pages[4] = []byte{0x03, 0x00, 0xFE, 0x00}

	return &VirtualTag{
		uid:         append([]byte(nil), uid...),
		pages:       pages,
		userPages:   userPages,
		connected:   true,
		failWriteAt: -1,
		removeAfter: -1,
	}
}

// SetUID overrides the simulated UID.
func (v *VirtualTag) SetUID(uid []byte) {
	v.mu.Lock()
	v.uid = append([]byte(nil), uid...)
	v.mu.Unlock()
}

// FailWriteAtPage makes the write to the given page fail with err (a
// bare status error when err is nil).
func (v *VirtualTag) FailWriteAtPage(page int, err error) {
	v.mu.Lock()
	v.failWriteAt = page
	v.failWriteErr = err
	v.mu.Unlock()
}

// RemoveAfterTransmits simulates the tag leaving the field: every
// transmit after the first n fails with a removal error.
func (v *VirtualTag) RemoveAfterTransmits(n int) {
	v.mu.Lock()
	v.removeAfter = n
	v.mu.Unlock()
}

// TransmitCount returns the number of APDUs the tag has seen.
func (v *VirtualTag) TransmitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transmits
}

// UserMemory returns a copy of the user data area.
func (v *VirtualTag) UserMemory() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]byte, 0, v.userPages*pageSize)
	for i := 0; i < v.userPages; i++ {
		out = append(out, v.pages[headerPages+i]...)
	}
	return out
}

// Page returns a copy of one raw page.
func (v *VirtualTag) Page(page int) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.pages[page]...)
}

// Transmit implements the transport interface.
func (v *VirtualTag) Transmit(ctx context.Context, apdu []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.connected {
		return nil, nfcrw.ErrTagRemoved
	}
	if v.removeAfter >= 0 && v.transmits >= v.removeAfter {
		return nil, fmt.Errorf("transmit: %w", nfcrw.ErrTagRemoved)
	}
	v.transmits++

	if len(apdu) < 4 || apdu[0] != 0xFF {
		return []byte{0x6A, 0x81}, nil
	}

	switch apdu[1] {
	case 0xCA: // GET DATA: UID
		return append(append([]byte(nil), v.uid...), 0x90, 0x00), nil
	case 0xB0: // READ BINARY
		return v.readPage(int(apdu[3])), nil
	case 0xD6: // UPDATE BINARY
		page := int(apdu[3])
		if v.failWriteAt == page && v.failWriteErr != nil {
			return nil, v.failWriteErr
		}
		return v.writePage(page, apdu[5:]), nil
	default:
		return []byte{0x6A, 0x81}, nil
	}
}

func (v *VirtualTag) readPage(page int) []byte {
	if page >= len(v.pages) {
		return []byte{0x6A, 0x82}
	}
	return append(append([]byte(nil), v.pages[page]...), 0x90, 0x00)
}

func (v *VirtualTag) writePage(page int, data []byte) []byte {
	if page >= len(v.pages) || page < 2 {
		return []byte{0x6A, 0x82}
	}
	if len(data) != pageSize {
		return []byte{0x67, 0x00}
	}
	if v.failWriteAt == page {
		return []byte{0x63, 0x00}
	}
	if v.pageLocked(page) {
		return []byte{0x69, 0x82}
	}

	if page == 2 {
		// Static lock bits are one-time-programmable: new bits OR in,
		// set bits never clear. Bytes 0-1 are not writable.
		v.pages[2][2] |= data[2]
		v.pages[2][3] |= data[3]
	} else {
		copy(v.pages[page], data)
	}
	return []byte{0x90, 0x00}
}

// pageLocked reports whether the static lock bits cover the page.
func (v *VirtualTag) pageLocked(page int) bool {
	if page < staticLockFirstPage || page > staticLockLastPage {
		return false
	}
	bit := uint(page - staticLockFirstPage)
	bits := uint16(v.pages[2][2]) | uint16(v.pages[2][3])<<8
	return bits&(1<<bit) != 0
}

// Close implements the transport interface.
func (v *VirtualTag) Close() error {
	v.mu.Lock()
	v.connected = false
	v.mu.Unlock()
	return nil
}

// Reopen re-establishes a closed connection, as if the tag stayed on
// the reader and a new session connected to it.
func (v *VirtualTag) Reopen() {
	v.mu.Lock()
	v.connected = true
	v.mu.Unlock()
}

// IsConnected implements the transport interface.
func (v *VirtualTag) IsConnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}

// Type implements the transport interface.
func (*VirtualTag) Type() nfcrw.TransportType {
	return nfcrw.TransportMock
}
