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

// Package ndef encodes and decodes NDEF messages for NFC Forum Type 2
// tags: the record layout, the URI and Text well-known types, and the
// TLV wrapping used in tag user memory.
package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TNF (Type Name Format) values as defined by NFC Forum.
const (
	TNFEmpty       byte = 0x00
	TNFWellKnown   byte = 0x01
	TNFMedia       byte = 0x02
	TNFAbsoluteURI byte = 0x03
	TNFExternal    byte = 0x04
	TNFUnknown     byte = 0x05
	TNFUnchanged   byte = 0x06

	tnfMask byte = 0x07
	flagMB  byte = 0x80
	flagME  byte = 0x40
	flagCF  byte = 0x20
	flagSR  byte = 0x10
	flagIL  byte = 0x08

	shortRecordMaxLen = 255
)

// Common errors.
var (
	ErrEmptyMessage  = errors.New("ndef: empty message")
	ErrMalformed     = errors.New("ndef: malformed message")
	ErrInvalidTNF    = errors.New("ndef: invalid TNF value")
	ErrChunkedRecord = errors.New("ndef: chunked records not supported")
	ErrWrongType     = errors.New("ndef: record has a different type")
)

// Record is a single NDEF record. The message begin/end flags are not
// stored; they are derived from the record's position during encoding.
type Record struct {
	Type    string
	Payload []byte
	TNF     byte
}

// Message is an ordered sequence of NDEF records. Tags written by this
// module always carry exactly one record; decoding accepts whatever a
// foreign writer put on the tag.
type Message struct {
	Records []Record
}

// NewURIMessage builds a single-record message holding a URI, compressed
// with the NFC Forum prefix table.
func NewURIMessage(uri string) *Message {
	return &Message{Records: []Record{NewURIRecord(uri)}}
}

// NewTextMessage builds a single-record message holding UTF-8 text with
// the given IANA language code ("en" when empty).
func NewTextMessage(text, language string) *Message {
	return &Message{Records: []Record{NewTextRecord(text, language)}}
}

// First returns the first record, or nil for an empty message.
func (m *Message) First() *Record {
	if len(m.Records) == 0 {
		return nil
	}
	return &m.Records[0]
}

// Marshal serializes the message. Message begin/end flags are assigned
// by record position.
func (m *Message) Marshal() ([]byte, error) {
	if len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}

	var out []byte
	for i := range m.Records {
		mb := i == 0
		me := i == len(m.Records)-1
		enc, err := encodeRecord(&m.Records[i], mb, me)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, enc...)
	}
	return out, nil
}

// DecodeMessage parses an NDEF message body (without TLV wrapping).
func DecodeMessage(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &Message{}
	offset := 0
	for offset < len(data) {
		rec, consumed, last, err := decodeRecord(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		msg.Records = append(msg.Records, rec)
		offset += consumed
		if last {
			break
		}
	}

	if len(msg.Records) == 0 {
		return nil, ErrEmptyMessage
	}
	return msg, nil
}

// encodeRecord serializes one record. Payloads up to 255 bytes use the
// short-record form; anything larger gets the 4-byte length field.
func encodeRecord(r *Record, mb, me bool) ([]byte, error) {
	if r.TNF > TNFUnchanged {
		return nil, ErrInvalidTNF
	}
	if len(r.Type) > 255 {
		return nil, fmt.Errorf("%w: type length %d", ErrMalformed, len(r.Type))
	}

	flags := r.TNF & tnfMask
	if mb {
		flags |= flagMB
	}
	if me {
		flags |= flagME
	}
	short := len(r.Payload) <= shortRecordMaxLen
	if short {
		flags |= flagSR
	}

	out := make([]byte, 0, 6+len(r.Type)+len(r.Payload))
	out = append(out, flags, byte(len(r.Type)))
	if short {
		out = append(out, byte(len(r.Payload)))
	} else {
		var lenBytes [4]byte
		binary.BigEndian.PutUint32(lenBytes[:], uint32(len(r.Payload)))
		out = append(out, lenBytes[:]...)
	}
	out = append(out, r.Type...)
	out = append(out, r.Payload...)
	return out, nil
}

// decodeRecord parses one record and reports the bytes consumed and
// whether the ME flag ended the message.
func decodeRecord(data []byte) (rec Record, consumed int, last bool, err error) {
	if len(data) < 3 {
		return Record{}, 0, false, fmt.Errorf("%w: truncated record header", ErrMalformed)
	}

	flags := data[0]
	if flags&flagCF != 0 {
		return Record{}, 0, false, ErrChunkedRecord
	}
	rec.TNF = flags & tnfMask
	if rec.TNF > TNFUnchanged {
		return Record{}, 0, false, ErrInvalidTNF
	}
	last = flags&flagME != 0

	typeLen := int(data[1])
	offset := 2

	var payloadLen int
	if flags&flagSR != 0 {
		payloadLen = int(data[offset])
		offset++
	} else {
		if offset+4 > len(data) {
			return Record{}, 0, false, fmt.Errorf("%w: truncated payload length", ErrMalformed)
		}
		payloadLen = int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}

	var idLen int
	if flags&flagIL != 0 {
		if offset >= len(data) {
			return Record{}, 0, false, fmt.Errorf("%w: truncated ID length", ErrMalformed)
		}
		idLen = int(data[offset])
		offset++
	}

	if offset+typeLen+idLen+payloadLen > len(data) {
		return Record{}, 0, false, fmt.Errorf("%w: record fields exceed %d available bytes",
			ErrMalformed, len(data))
	}

	rec.Type = string(data[offset : offset+typeLen])
	offset += typeLen
	offset += idLen // record IDs are carried over but not interpreted
	rec.Payload = append([]byte(nil), data[offset:offset+payloadLen]...)
	offset += payloadLen

	return rec, offset, last, nil
}
