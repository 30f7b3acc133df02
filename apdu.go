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
	"context"
	"fmt"
)

// PC/SC pseudo-APDU encoding for contactless storage cards. These are
// the standard ACR-family commands: the reader translates them to the
// Type 2 Tag READ/WRITE commands on the RF side.
const (
	claPseudo       = 0xFF
	insGetData      = 0xCA // GET DATA: returns the anti-collision UID
	insReadBinary   = 0xB0 // READ BINARY: reads pages by number
	insUpdateBinary = 0xD6 // UPDATE BINARY: writes one page

	swSuccess1 = 0x90
	swSuccess2 = 0x00
)

// apduGetUID builds the GET DATA command for the tag UID.
func apduGetUID() []byte {
	return []byte{claPseudo, insGetData, 0x00, 0x00, 0x00}
}

// apduReadPage builds a READ BINARY for one 4-byte page.
func apduReadPage(page byte) []byte {
	return []byte{claPseudo, insReadBinary, 0x00, page, PageSize}
}

// apduWritePage builds an UPDATE BINARY for one 4-byte page.
func apduWritePage(page byte, data []byte) []byte {
	apdu := make([]byte, 0, 5+PageSize)
	apdu = append(apdu, claPseudo, insUpdateBinary, 0x00, page, PageSize)
	return append(apdu, data...)
}

// splitResponse separates response data from the SW1/SW2 trailer.
func splitResponse(op string, resp []byte) (data []byte, sw1, sw2 byte, err error) {
	if len(resp) < 2 {
		return nil, 0, 0, fmt.Errorf("%s: %w: short APDU response (%d bytes)",
			op, ErrTagReadFailed, len(resp))
	}
	return resp[:len(resp)-2], resp[len(resp)-2], resp[len(resp)-1], nil
}

// exchange transmits an APDU and returns the response data, converting a
// non-success status word into a *StatusError.
func exchange(ctx context.Context, t Transport, op string, apdu []byte) ([]byte, error) {
	resp, err := t.Transmit(ctx, apdu)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, sw1, sw2, err := splitResponse(op, resp)
	if err != nil {
		return nil, err
	}
	if sw1 != swSuccess1 || sw2 != swSuccess2 {
		return nil, &StatusError{Op: op, SW1: sw1, SW2: sw2}
	}
	return data, nil
}
