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

func TestNewTextRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		language string
		wantLang string
	}{
		{
			name:     "explicit language",
			text:     "bonjour",
			language: "fr",
			wantLang: "fr",
		},
		{
			name:     "default language",
			text:     "hello",
			language: "",
			wantLang: "en",
		},
		{
			name:     "unicode text",
			text:     "日本語のテキスト",
			language: "ja",
			wantLang: "ja",
		},
		{
			name:     "empty text",
			text:     "",
			language: "en",
			wantLang: "en",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewTextRecord(tt.text, tt.language)
			payload, err := rec.Text()
			require.NoError(t, err)

			assert.Equal(t, tt.text, payload.Text)
			assert.Equal(t, tt.wantLang, payload.Language)
			assert.False(t, payload.UTF16)
		})
	}
}

func TestNewTextRecord_LanguageTruncated(t *testing.T) {
	t.Parallel()

	rec := NewTextRecord("x", strings.Repeat("a", 100))
	payload, err := rec.Text()
	require.NoError(t, err)
	assert.Len(t, payload.Language, maxLanguageLen)
	assert.Equal(t, "x", payload.Text)
}

func TestRecord_Text_Errors(t *testing.T) {
	t.Parallel()

	uri := NewURIRecord("https://example.com")
	_, err := uri.Text()
	assert.ErrorIs(t, err, ErrWrongType)

	empty := Record{TNF: TNFWellKnown, Type: TextRecordType}
	_, err = empty.Text()
	assert.ErrorIs(t, err, ErrTextPayloadTooShort)

	truncated := Record{TNF: TNFWellKnown, Type: TextRecordType, Payload: []byte{0x05, 'e'}}
	_, err = truncated.Text()
	assert.ErrorIs(t, err, ErrTextPayloadTruncated)
}

func TestRecord_Text_UTF16Flag(t *testing.T) {
	t.Parallel()

	rec := Record{
		TNF:     TNFWellKnown,
		Type:    TextRecordType,
		Payload: append([]byte{textUTF16Flag | 0x02}, []byte("enXY")...),
	}
	payload, err := rec.Text()
	require.NoError(t, err)
	assert.True(t, payload.UTF16)
	assert.Equal(t, "en", payload.Language)
}
