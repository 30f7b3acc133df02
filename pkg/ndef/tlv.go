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

package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TLV type bytes per the NFC Forum Type 2 Tag specification.
const (
	TLVNull          = 0x00 // padding byte, no length field
	TLVLockControl   = 0x01
	TLVMemoryControl = 0x02
	TLVNDEFMessage   = 0x03
	TLVTerminator    = 0xFE // end of data area, no length field
)

// tlvLongForm marks the 3-byte length format (0xFF + 2-byte big endian).
const tlvLongForm = 0xFF

// ErrNoNDEFMessage signals a readable tag that simply holds no NDEF
// message. It is an outcome, not a failure; callers present it as an
// empty tag.
var ErrNoNDEFMessage = errors.New("ndef: no NDEF message present")

// EncodeTLV serializes the message and wraps it in an NDEF Message TLV
// followed by a terminator TLV, producing the byte image written to the
// tag's user memory.
func EncodeTLV(m *Message) ([]byte, error) {
	body, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+5)
	if len(body) < tlvLongForm {
		out = append(out, TLVNDEFMessage, byte(len(body)))
	} else {
		if len(body) > 0xFFFF {
			return nil, fmt.Errorf("%w: message body is %d bytes", ErrMalformed, len(body))
		}
		var lenBytes [2]byte
		binary.BigEndian.PutUint16(lenBytes[:], uint16(len(body)))
		out = append(out, TLVNDEFMessage, tlvLongForm, lenBytes[0], lenBytes[1])
	}
	out = append(out, body...)
	return append(out, TLVTerminator), nil
}

// DecodeTLV scans a user memory image for the NDEF Message TLV and
// decodes it. NULL, Lock Control, Memory Control and proprietary TLVs
// are skipped per the Type 2 Tag specification. A missing or empty NDEF
// TLV yields ErrNoNDEFMessage; inconsistent lengths yield ErrMalformed.
func DecodeTLV(data []byte) (*Message, error) {
	offset := 0
	for offset < len(data) {
		switch tlvType := data[offset]; tlvType {
		case TLVNull:
			offset++

		case TLVTerminator:
			return nil, ErrNoNDEFMessage

		case TLVNDEFMessage:
			length, bodyStart, err := tlvLength(data, offset)
			if err != nil {
				return nil, err
			}
			if length == 0 {
				return nil, ErrNoNDEFMessage
			}
			if bodyStart+length > len(data) {
				return nil, fmt.Errorf("%w: TLV length %d exceeds %d available bytes",
					ErrMalformed, length, len(data)-bodyStart)
			}
			return DecodeMessage(data[bodyStart : bodyStart+length])

		default:
			// Lock Control, Memory Control and proprietary TLVs carry a
			// length field and are skipped whole.
			length, bodyStart, err := tlvLength(data, offset)
			if err != nil {
				return nil, err
			}
			offset = bodyStart + length
		}
	}
	return nil, ErrNoNDEFMessage
}

// ImageComplete reports whether a partially read user-memory image
// already holds everything DecodeTLV needs: a terminator TLV outside
// any TLV body, or an NDEF Message TLV with its full body. Page readers
// use it to stop early without mistaking a 0xFE payload byte for the
// terminator.
func ImageComplete(data []byte) bool {
	offset := 0
	for offset < len(data) {
		switch data[offset] {
		case TLVNull:
			offset++

		case TLVTerminator:
			return true

		default:
			length, bodyStart, err := tlvLength(data, offset)
			if err != nil {
				// Length bytes not read yet.
				return false
			}
			if data[offset] == TLVNDEFMessage {
				return bodyStart+length <= len(data)
			}
			offset = bodyStart + length
		}
	}
	return false
}

// tlvLength decodes the length field of the TLV at offset, returning the
// payload length and the offset where the payload starts.
func tlvLength(data []byte, offset int) (length, bodyStart int, err error) {
	if offset+1 >= len(data) {
		return 0, 0, fmt.Errorf("%w: missing TLV length at offset %d", ErrMalformed, offset)
	}

	lengthByte := data[offset+1]
	if lengthByte != tlvLongForm {
		return int(lengthByte), offset + 2, nil
	}

	if offset+3 >= len(data) {
		return 0, 0, fmt.Errorf("%w: incomplete long TLV length at offset %d", ErrMalformed, offset)
	}
	return int(binary.BigEndian.Uint16(data[offset+2 : offset+4])), offset + 4, nil
}
