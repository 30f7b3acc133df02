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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_MarshalDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *Message
	}{
		{
			name: "single URI record",
			msg:  NewURIMessage("https://example.com/page"),
		},
		{
			name: "single text record",
			msg:  NewTextMessage("hello", "en"),
		},
		{
			name: "two records",
			msg: &Message{Records: []Record{
				NewTextRecord("first", "en"),
				NewURIRecord("https://example.com"),
			}},
		},
		{
			name: "unknown TNF payload",
			msg: &Message{Records: []Record{
				{TNF: TNFUnknown, Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
			}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := tt.msg.Marshal()
			require.NoError(t, err)

			decoded, err := DecodeMessage(data)
			require.NoError(t, err)
			require.Len(t, decoded.Records, len(tt.msg.Records))

			for i := range tt.msg.Records {
				assert.Equal(t, tt.msg.Records[i].TNF, decoded.Records[i].TNF)
				assert.Equal(t, tt.msg.Records[i].Type, decoded.Records[i].Type)
				assert.Equal(t, tt.msg.Records[i].Payload, decoded.Records[i].Payload)
			}
		})
	}
}

func TestMessage_MarshalEmpty(t *testing.T) {
	t.Parallel()

	msg := &Message{}
	_, err := msg.Marshal()
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestEncodeRecord_ShortRecordBoundary(t *testing.T) {
	t.Parallel()

	// 255 bytes still fits the 1-byte length field.
	short := &Record{TNF: TNFUnknown, Payload: make([]byte, 255)}
	enc, err := encodeRecord(short, true, true)
	require.NoError(t, err)
	assert.NotZero(t, enc[0]&flagSR, "255-byte payload should use short record form")
	assert.Len(t, enc, 3+255)

	// 256 bytes needs the 4-byte big-endian length.
	long := &Record{TNF: TNFUnknown, Payload: make([]byte, 256)}
	enc, err = encodeRecord(long, true, true)
	require.NoError(t, err)
	assert.Zero(t, enc[0]&flagSR, "256-byte payload should use long record form")
	assert.Len(t, enc, 6+256)

	decoded, err := DecodeMessage(enc)
	require.NoError(t, err)
	require.Len(t, decoded.Records, 1)
	assert.Len(t, decoded.Records[0].Payload, 256)
}

func TestEncodeRecord_InvalidTNF(t *testing.T) {
	t.Parallel()

	rec := &Record{TNF: 0x08}
	_, err := encodeRecord(rec, true, true)
	assert.ErrorIs(t, err, ErrInvalidTNF)
}

func TestDecodeMessage_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		data    []byte
	}{
		{
			name:    "empty input",
			data:    nil,
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "truncated header",
			data:    []byte{0xD1, 0x01},
			wantErr: ErrMalformed,
		},
		{
			name:    "payload exceeds data",
			data:    []byte{0xD1, 0x01, 0x10, 'U', 0x04},
			wantErr: ErrMalformed,
		},
		{
			name:    "chunked record",
			data:    []byte{0xB1 | flagCF, 0x01, 0x01, 'U', 0x00},
			wantErr: ErrChunkedRecord,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeMessage(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeMessage_SkipsRecordID(t *testing.T) {
	t.Parallel()

	// MB|ME|SR|IL, well-known "U", 2-byte payload, ID "ab".
	data := []byte{
		flagMB | flagME | flagSR | flagIL | TNFWellKnown,
		0x01, 0x02, 0x02,
		'U', 'a', 'b',
		0x04, 'x',
	}

	msg, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Len(t, msg.Records, 1)

	uri, err := msg.Records[0].URI()
	require.NoError(t, err)
	assert.Equal(t, "https://x", uri)
}

func TestDecodeMessage_StopsAtMessageEnd(t *testing.T) {
	t.Parallel()

	msg := NewTextMessage("done", "en")
	data, err := msg.Marshal()
	require.NoError(t, err)

	// Garbage after the ME record must be ignored, not decoded.
	data = append(data, 0xFF, 0xFF, 0xFF)
	decoded, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Records, 1)
}

func TestMessage_First(t *testing.T) {
	t.Parallel()

	assert.Nil(t, (&Message{}).First())

	msg := NewURIMessage("https://example.com")
	rec := msg.First()
	require.NotNil(t, rec)
	assert.Equal(t, URIRecordType, rec.Type)
}

func TestMessage_LargePayloadRoundTrip(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("0123456789", 40) // 400 bytes, forces long record form
	msg := NewTextMessage(text, "en")

	data, err := msg.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeMessage(data)
	require.NoError(t, err)

	payload, err := decoded.First().Text()
	require.NoError(t, err)
	assert.Equal(t, text, payload.Text)
}
