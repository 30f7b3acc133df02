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
	"errors"
	"strings"
)

// URIRecordType is the well-known type byte for URI records.
const URIRecordType = "U"

// URI record errors.
var (
	ErrURIPayloadTooShort   = errors.New("ndef: URI payload too short")
	ErrURIInvalidPrefixCode = errors.New("ndef: invalid URI prefix code")
)

// uriPrefixes is the abbreviation table from the NFC Forum URI Record
// Type Definition. The payload's first byte indexes this table; 0x00
// means the URI is stored verbatim.
var uriPrefixes = []string{
	"",                           // 0x00
	"http://www.",                // 0x01
	"https://www.",               // 0x02
	"http://",                    // 0x03
	"https://",                   // 0x04
	"tel:",                       // 0x05
	"mailto:",                    // 0x06
	"ftp://anonymous:anonymous@", // 0x07
	"ftp://ftp.",                 // 0x08
	"ftps://",                    // 0x09
	"sftp://",                    // 0x0A
	"smb://",                     // 0x0B
	"nfs://",                     // 0x0C
	"ftp://",                     // 0x0D
	"dav://",                     // 0x0E
	"news:",                      // 0x0F
	"telnet://",                  // 0x10
	"imap:",                      // 0x11
	"rtsp://",                    // 0x12
	"urn:",                       // 0x13
	"pop:",                       // 0x14
	"sip:",                       // 0x15
	"sips:",                      // 0x16
	"tftp:",                      // 0x17
	"btspp://",                   // 0x18
	"btl2cap://",                 // 0x19
	"btgoep://",                  // 0x1A
	"tcpobex://",                 // 0x1B
	"irdaobex://",                // 0x1C
	"file://",                    // 0x1D
	"urn:epc:id:",                // 0x1E
	"urn:epc:tag:",               // 0x1F
	"urn:epc:pat:",               // 0x20
	"urn:epc:raw:",               // 0x21
	"urn:epc:",                   // 0x22
	"urn:nfc:",                   // 0x23
}

// NewURIRecord creates a URI record, abbreviating the URI with the
// longest matching prefix from the NFC Forum table.
func NewURIRecord(uri string) Record {
	code, suffix := compressURI(uri)
	payload := make([]byte, 1+len(suffix))
	payload[0] = code
	copy(payload[1:], suffix)
	return Record{
		TNF:     TNFWellKnown,
		Type:    URIRecordType,
		Payload: payload,
	}
}

// URI expands the record's payload back into the full URI string.
func (r *Record) URI() (string, error) {
	if r.TNF != TNFWellKnown || r.Type != URIRecordType {
		return "", ErrWrongType
	}
	if len(r.Payload) < 1 {
		return "", ErrURIPayloadTooShort
	}

	code := int(r.Payload[0])
	if code >= len(uriPrefixes) {
		return "", ErrURIInvalidPrefixCode
	}
	return uriPrefixes[code] + string(r.Payload[1:]), nil
}

// compressURI finds the longest abbreviation table entry that prefixes
// the URI and splits it off.
func compressURI(uri string) (code byte, suffix string) {
	best := 0
	for i := 1; i < len(uriPrefixes); i++ {
		p := uriPrefixes[i]
		if strings.HasPrefix(uri, p) && len(p) > len(uriPrefixes[best]) {
			best = i
		}
	}
	return byte(best), uri[len(uriPrefixes[best]):]
}

// URIPrefixString returns the prefix string for an abbreviation code,
// or the empty string for codes outside the table.
func URIPrefixString(code byte) string {
	if int(code) < len(uriPrefixes) {
		return uriPrefixes[code]
	}
	return ""
}
