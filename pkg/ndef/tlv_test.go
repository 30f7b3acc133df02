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

func TestEncodeTLV_ShortForm(t *testing.T) {
	t.Parallel()

	msg := NewURIMessage("https://example.com")
	image, err := EncodeTLV(msg)
	require.NoError(t, err)

	assert.Equal(t, byte(TLVNDEFMessage), image[0])
	assert.Less(t, image[1], byte(tlvLongForm), "small message should use 1-byte length")
	assert.Equal(t, byte(TLVTerminator), image[len(image)-1])

	body, err := msg.Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte(len(body)), image[1])
}

func TestEncodeTLV_LongForm(t *testing.T) {
	t.Parallel()

	// 300-byte text payload pushes the message body past 254 bytes.
	msg := NewTextMessage(strings.Repeat("x", 300), "en")
	image, err := EncodeTLV(msg)
	require.NoError(t, err)

	assert.Equal(t, byte(TLVNDEFMessage), image[0])
	assert.Equal(t, byte(tlvLongForm), image[1])

	bodyLen := int(image[2])<<8 | int(image[3])
	assert.Equal(t, len(image)-5, bodyLen) // type + 3 length bytes + terminator

	decoded, err := DecodeTLV(image)
	require.NoError(t, err)
	payload, err := decoded.First().Text()
	require.NoError(t, err)
	assert.Len(t, payload.Text, 300)
}

func TestDecodeTLV_RoundTrip(t *testing.T) {
	t.Parallel()

	msg := NewURIMessage("https://inventory.example.com/item/42")
	image, err := EncodeTLV(msg)
	require.NoError(t, err)

	decoded, err := DecodeTLV(image)
	require.NoError(t, err)

	uri, err := decoded.First().URI()
	require.NoError(t, err)
	assert.Equal(t, "https://inventory.example.com/item/42", uri)
}

func TestDecodeTLV_NoMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "empty input",
			data: nil,
		},
		{
			name: "factory blank tag",
			data: []byte{0x03, 0x00, 0xFE, 0x00},
		},
		{
			name: "terminator only",
			data: []byte{0xFE},
		},
		{
			name: "null padding then terminator",
			data: []byte{0x00, 0x00, 0x00, 0xFE},
		},
		{
			name: "all zeros",
			data: make([]byte, 16),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeTLV(tt.data)
			assert.ErrorIs(t, err, ErrNoNDEFMessage)
		})
	}
}

func TestDecodeTLV_SkipsControlTLVs(t *testing.T) {
	t.Parallel()

	msg := NewURIMessage("https://example.com")
	image, err := EncodeTLV(msg)
	require.NoError(t, err)

	// Lock Control and Memory Control TLVs ahead of the message, the way
	// some factory-formatted tags ship.
	prefixed := append([]byte{
		TLVLockControl, 0x03, 0xA0, 0x10, 0x44,
		TLVMemoryControl, 0x03, 0xA1, 0x10, 0x44,
		TLVNull,
	}, image...)

	decoded, err := DecodeTLV(prefixed)
	require.NoError(t, err)

	uri, err := decoded.First().URI()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", uri)
}

func TestImageComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{
			name: "terminator in TLV position",
			data: []byte{0xFE},
			want: true,
		},
		{
			name: "factory blank empty message",
			data: []byte{0x03, 0x00, 0xFE, 0x00},
			want: true,
		},
		{
			name: "complete message with terminator byte in body",
			data: []byte{0x03, 0x03, 0xAA, 0xFE, 0xBB},
			want: true,
		},
		{
			name: "message body still being read",
			data: []byte{0x03, 0x03, 0xAA, 0xFE},
			want: false,
		},
		{
			name: "only null padding so far",
			data: []byte{0x00, 0x00, 0x00, 0x00},
			want: false,
		},
		{
			name: "length byte not read yet",
			data: []byte{0x03},
			want: false,
		},
		{
			name: "partially read lock control TLV",
			data: []byte{0x01, 0x03, 0xA0},
			want: false,
		},
		{
			name: "empty",
			data: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ImageComplete(tt.data))
		})
	}
}

func TestDecodeTLV_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "length exceeds data",
			data: []byte{0x03, 0x20, 0xD1},
		},
		{
			name: "missing length byte",
			data: []byte{0x03},
		},
		{
			name: "incomplete long length",
			data: []byte{0x03, 0xFF, 0x01},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeTLV(tt.data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
