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

import (
	"context"
	"errors"

	"github.com/danielrosehill/nfc-rw/internal/syncutil"
)

// Transport is a connected card channel. Implementations exchange one
// command APDU for one response APDU (data plus trailing status word).
// A Transport is owned exclusively for the duration of one tag session.
type Transport interface {
	// Transmit sends a raw command APDU and returns the full response
	// including the SW1/SW2 trailer.
	Transmit(ctx context.Context, apdu []byte) ([]byte, error)

	// Close releases the connection. The tag may remain on the reader.
	Close() error

	// IsConnected returns true while the connection is usable.
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportPCSC represents a PC/SC smart-card reader connection.
	TransportPCSC TransportType = "pcsc"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// MockTransport provides a scripted implementation of Transport for
// testing. Responses are matched on the first two APDU bytes (CLA+INS).
type MockTransport struct {
	responses map[[2]byte][]byte
	errorMap  map[[2]byte]error
	sent      [][]byte
	mu        syncutil.Mutex
	connected bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		connected: true,
		responses: make(map[[2]byte][]byte),
		errorMap:  make(map[[2]byte]error),
	}
}

func apduKey(apdu []byte) [2]byte {
	var key [2]byte
	copy(key[:], apdu)
	return key
}

// Transmit implements Transport
func (m *MockTransport) Transmit(ctx context.Context, apdu []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil, errors.New("transport not connected")
	}

	sent := make([]byte, len(apdu))
	copy(sent, apdu)
	m.sent = append(m.sent, sent)

	key := apduKey(apdu)
	if err, ok := m.errorMap[key]; ok {
		return nil, err
	}
	if resp, ok := m.responses[key]; ok {
		return resp, nil
	}

	// Default to a bare success trailer
	return []byte{0x90, 0x00}, nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// SetResponse configures the response for APDUs starting with cla+ins
func (m *MockTransport) SetResponse(cla, ins byte, response []byte) {
	m.mu.Lock()
	m.responses[[2]byte{cla, ins}] = response
	m.mu.Unlock()
}

// SetError configures an error for APDUs starting with cla+ins
func (m *MockTransport) SetError(cla, ins byte, err error) {
	m.mu.Lock()
	m.errorMap[[2]byte{cla, ins}] = err
	m.mu.Unlock()
}

// Sent returns copies of all transmitted APDUs in order
func (m *MockTransport) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// TransmitCount returns how many APDUs have been transmitted
func (m *MockTransport) TransmitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
