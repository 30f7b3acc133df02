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

import "time"

// Config controls the poll loop timing.
type Config struct {
	// PollInterval is the pause after a cycle that found no tag or
	// failed to establish a session.
	PollInterval time.Duration

	// RemovalInterval is the pause between removal checks once a tag
	// has been handled.
	RemovalInterval time.Duration
}

// DefaultConfig returns the timing used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:    200 * time.Millisecond,
		RemovalInterval: 150 * time.Millisecond,
	}
}
