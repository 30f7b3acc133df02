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

package nfcrw

import (
	"errors"
	"fmt"
)

// Error categories for reader, tag and data failures
var (
	// Reader errors - the PC/SC side is gone, polling should stop
	ErrReaderNotFound    = errors.New("no usable NFC reader found")
	ErrReaderUnavailable = errors.New("reader unavailable")

	// Tag errors - the tag on the antenna misbehaved or left
	ErrNoTag            = errors.New("no tag present")
	ErrTagRemoved       = errors.New("tag removed")
	ErrTagReadFailed    = errors.New("tag read failed")
	ErrTagWriteRejected = errors.New("tag write rejected")
	ErrLockFailed       = errors.New("tag lock failed")
	ErrTagUnsupported   = errors.New("tag type not supported")

	// Data errors - caller bugs or content that cannot fit, never retryable
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDataTooLarge     = errors.New("data too large for tag")
)

// StatusError wraps a non-success APDU status word with the operation
// that produced it. SW1/SW2 come straight off the wire.
type StatusError struct {
	Op  string
	SW1 byte
	SW2 byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: SW=%02X%02X (%s)", e.Op, e.SW1, e.SW2, statusWordMeaning(e.SW1, e.SW2))
}

// statusWordMeaning returns a human-readable meaning for common status
// words returned by ACR-family readers (ISO 7816-4 plus the reader's
// pseudo-APDU conventions).
func statusWordMeaning(sw1, sw2 byte) string {
	switch {
	case sw1 == 0x90 && sw2 == 0x00:
		return "success"
	case sw1 == 0x63 && sw2 == 0x00:
		return "operation failed"
	case sw1 == 0x69 && sw2 == 0x82:
		return "security status not satisfied"
	case sw1 == 0x69 && sw2 == 0x81:
		return "command incompatible"
	case sw1 == 0x6A && sw2 == 0x81:
		return "function not supported"
	case sw1 == 0x6A && sw2 == 0x82:
		return "address out of range"
	case sw1 == 0x67 && sw2 == 0x00:
		return "wrong length"
	case sw1 == 0x6F && sw2 == 0x00:
		return "no precise diagnosis"
	default:
		return "unknown status"
	}
}

// IsWriteProtected reports whether the status word indicates the page is
// locked or otherwise read-only.
func (e *StatusError) IsWriteProtected() bool {
	return (e.SW1 == 0x69 && e.SW2 == 0x82) || (e.SW1 == 0x63 && e.SW2 == 0x00)
}

// WriteError reports a page write sequence that stopped partway through.
// BytesWritten counts the bytes committed to the tag before the failure;
// the pages before Page hold the new content, everything after does not.
type WriteError struct {
	Err          error
	Page         byte
	BytesWritten int
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing page %d (after %d bytes): %v", e.Page, e.BytesWritten, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsTagAbsent reports whether the error means there is no tag to talk to,
// either because none was presented or because it left mid-operation.
func IsTagAbsent(err error) bool {
	return errors.Is(err, ErrNoTag) || errors.Is(err, ErrTagRemoved)
}

// IsFatal reports whether the error indicates the reader itself is gone
// and polling should stop entirely, as opposed to a per-tag failure that
// the next poll cycle can absorb.
func IsFatal(err error) bool {
	return errors.Is(err, ErrReaderNotFound) || errors.Is(err, ErrReaderUnavailable)
}
