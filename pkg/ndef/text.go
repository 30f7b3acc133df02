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

import "errors"

// Text record constants. The status byte packs the language code length
// into its low 6 bits; the high bit flags UTF-16 payloads.
const (
	TextRecordType = "T"

	textUTF16Flag   = 0x80
	textLangLenMask = 0x3F
	maxLanguageLen  = 63
	defaultLanguage = "en"
)

// Text record errors.
var (
	ErrTextPayloadTooShort  = errors.New("ndef: text payload too short")
	ErrTextPayloadTruncated = errors.New("ndef: text payload truncated")
)

// TextPayload is a decoded Text record.
type TextPayload struct {
	Text     string
	Language string
	UTF16    bool // rare; this module always writes UTF-8
}

// NewTextRecord creates a UTF-8 Text record. An over-long language code
// is truncated to the 63 bytes the status byte can express.
func NewTextRecord(text, language string) Record {
	if language == "" {
		language = defaultLanguage
	}
	if len(language) > maxLanguageLen {
		language = language[:maxLanguageLen]
	}

	payload := make([]byte, 1+len(language)+len(text))
	payload[0] = byte(len(language))
	copy(payload[1:], language)
	copy(payload[1+len(language):], text)

	return Record{
		TNF:     TNFWellKnown,
		Type:    TextRecordType,
		Payload: payload,
	}
}

// Text decodes the record's payload as a Text record.
func (r *Record) Text() (*TextPayload, error) {
	if r.TNF != TNFWellKnown || r.Type != TextRecordType {
		return nil, ErrWrongType
	}
	if len(r.Payload) < 1 {
		return nil, ErrTextPayloadTooShort
	}

	status := r.Payload[0]
	langLen := int(status & textLangLenMask)
	if len(r.Payload) < 1+langLen {
		return nil, ErrTextPayloadTruncated
	}

	return &TextPayload{
		Text:     string(r.Payload[1+langLen:]),
		Language: string(r.Payload[1 : 1+langLen]),
		UTF16:    status&textUTF16Flag != 0,
	}, nil
}
