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

package pcsc

import (
	"strings"

	"github.com/danielrosehill/nfc-rw"
)

// readerModel pairs a substring of the PC/SC reader name with the
// marketing name shown to the user.
type readerModel struct {
	match string
	name  string
}

// Known NFC reader models, most specific first.
var readerModels = []readerModel{
	{"ACR1252", "ACR1252U"},
	{"ACR122", "ACR122U"},
	{"ACS ACR", "ACS Reader"},
	{"SCM Microsystems", "SCM Reader"},
	{"OMNIKEY", "HID Omnikey"},
	{"Sony", "Sony RC-S380"},
	{"PN53", "PN532"},
}

// Smart-card devices that enumerate as PC/SC readers but cannot talk to
// NFC tags. These are skipped during auto-detection.
var ignoredReaders = []string{
	"Yubico",
	"YubiKey",
	"Common Access Card",
	"CAC Reader",
	"PIV Reader",
	"EMV Reader",
}

// selectReader picks an NFC-capable reader from the PC/SC reader list.
// A non-empty preferred string matches by substring and bypasses the
// model allow-list.
func selectReader(readers []string, preferred string) (name, model string, err error) {
	if preferred != "" {
		for _, r := range readers {
			if strings.Contains(r, preferred) {
				return r, modelName(r), nil
			}
		}
		return "", "", nfcrw.ErrReaderNotFound
	}

	for _, r := range readers {
		if isIgnoredReader(r) {
			continue
		}
		if m := modelName(r); m != "" {
			return r, m, nil
		}
	}
	return "", "", nfcrw.ErrReaderNotFound
}

func isIgnoredReader(reader string) bool {
	for _, ignored := range ignoredReaders {
		if strings.Contains(reader, ignored) {
			return true
		}
	}
	return false
}

// modelName returns the marketing name for a reader, or "" if the model
// is not a known NFC reader.
func modelName(reader string) string {
	for _, m := range readerModels {
		if strings.Contains(reader, m.match) {
			return m.name
		}
	}
	return ""
}
