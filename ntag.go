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

// NTAG21x memory geometry. All variants share the same header layout:
// pages 0-1 hold the UID, page 2 holds BCC1, the internal byte and the
// static lock bytes, page 3 holds the capability container, and user
// memory starts at page 4.
const (
	// PageSize is the NTAG21x page size in bytes.
	PageSize = 4
	// UserMemStart is the first user memory page.
	UserMemStart = 4

	ntagPageStaticLock = 2 // static lock bytes live in page 2, bytes 2-3
	ntagPageCC         = 3 // capability container

	ccMagic   = 0xE1 // CC byte 0 for an NDEF-formatted Type 2 tag
	ccVersion = 0x10 // CC byte 1, mapping version 1.0

	// CC byte 2 encodes the data area size in 8-byte units.
	ccSize213 = 0x12 // 144 bytes
	ccSize215 = 0x3E // 496 bytes
	ccSize216 = 0x6A // 848 bytes

	ntag213UserPages = 36  // pages 4-39
	ntag215UserPages = 126 // pages 4-129
	ntag216UserPages = 222 // pages 4-225
)

// TagType identifies the NTAG21x variant on the reader.
type TagType int

const (
	// TagTypeUnknown is a Type 2 tag whose capability container did not
	// match a known NTAG21x variant. NTAG213 geometry is assumed.
	TagTypeUnknown TagType = iota
	// TagTypeNTAG213 is an NTAG213 (144 bytes of user memory).
	TagTypeNTAG213
	// TagTypeNTAG215 is an NTAG215 (504 bytes of user memory).
	TagTypeNTAG215
	// TagTypeNTAG216 is an NTAG216 (888 bytes of user memory).
	TagTypeNTAG216
)

// String returns the tag type name
func (t TagType) String() string {
	switch t {
	case TagTypeNTAG213:
		return "NTAG213"
	case TagTypeNTAG215:
		return "NTAG215"
	case TagTypeNTAG216:
		return "NTAG216"
	case TagTypeUnknown:
		return "Type2-compatible"
	}
	return "unknown"
}

// userPages returns the number of user memory pages for the variant.
// Unknown variants get the smallest geometry so writes never run past
// the end of a real tag.
func (t TagType) userPages() int {
	switch t {
	case TagTypeNTAG215:
		return ntag215UserPages
	case TagTypeNTAG216:
		return ntag216UserPages
	case TagTypeNTAG213, TagTypeUnknown:
		return ntag213UserPages
	}
	return ntag213UserPages
}

// tagTypeFromCC maps a capability container page to the tag variant.
func tagTypeFromCC(cc []byte) TagType {
	if len(cc) < 3 || cc[0] != ccMagic {
		return TagTypeUnknown
	}
	switch cc[2] {
	case ccSize213:
		return TagTypeNTAG213
	case ccSize215:
		return TagTypeNTAG215
	case ccSize216:
		return TagTypeNTAG216
	}
	return TagTypeUnknown
}
