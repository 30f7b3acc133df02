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

package polling

// TagState is the session's view of the reader antenna.
type TagState int

const (
	// StateAbsent means no tag is on the reader.
	StateAbsent TagState = iota
	// StatePresent means a tag session is active or the tag is still on
	// the reader after its operation finished.
	StatePresent
)

// String returns the state name
func (s TagState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePresent:
		return "present"
	}
	return "unknown"
}
