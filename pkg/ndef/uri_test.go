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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURIRecord_PrefixCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		uri        string
		wantSuffix string
		wantCode   byte
	}{
		{
			name:       "https bare",
			uri:        "https://example.com",
			wantCode:   0x04,
			wantSuffix: "example.com",
		},
		{
			name:       "https www prefers longer prefix",
			uri:        "https://www.example.com",
			wantCode:   0x02,
			wantSuffix: "example.com",
		},
		{
			name:       "http bare",
			uri:        "http://example.com",
			wantCode:   0x03,
			wantSuffix: "example.com",
		},
		{
			name:       "http www",
			uri:        "http://www.example.com",
			wantCode:   0x01,
			wantSuffix: "example.com",
		},
		{
			name:       "tel",
			uri:        "tel:+1234567890",
			wantCode:   0x05,
			wantSuffix: "+1234567890",
		},
		{
			name:       "mailto",
			uri:        "mailto:a@example.com",
			wantCode:   0x06,
			wantSuffix: "a@example.com",
		},
		{
			name:       "urn prefers epc over bare urn",
			uri:        "urn:epc:id:something",
			wantCode:   0x1E,
			wantSuffix: "something",
		},
		{
			name:       "no known prefix stored verbatim",
			uri:        "spotify:track:abc",
			wantCode:   0x00,
			wantSuffix: "spotify:track:abc",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewURIRecord(tt.uri)
			require.NotEmpty(t, rec.Payload)
			assert.Equal(t, tt.wantCode, rec.Payload[0])
			assert.Equal(t, tt.wantSuffix, string(rec.Payload[1:]))

			uri, err := rec.URI()
			require.NoError(t, err)
			assert.Equal(t, tt.uri, uri)
		})
	}
}

func TestRecord_URI_Errors(t *testing.T) {
	t.Parallel()

	text := NewTextRecord("not a uri", "en")
	_, err := text.URI()
	assert.ErrorIs(t, err, ErrWrongType)

	empty := Record{TNF: TNFWellKnown, Type: URIRecordType}
	_, err = empty.URI()
	assert.ErrorIs(t, err, ErrURIPayloadTooShort)

	bad := Record{TNF: TNFWellKnown, Type: URIRecordType, Payload: []byte{0x7F, 'x'}}
	_, err = bad.URI()
	assert.ErrorIs(t, err, ErrURIInvalidPrefixCode)
}

func TestURIPrefixString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", URIPrefixString(0x00))
	assert.Equal(t, "https://", URIPrefixString(0x04))
	assert.Equal(t, "urn:nfc:", URIPrefixString(0x23))
	assert.Equal(t, "", URIPrefixString(0x24))
}
