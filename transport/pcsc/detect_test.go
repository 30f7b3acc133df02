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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nfcrw "github.com/danielrosehill/nfc-rw"
)

func TestSelectReader_AutoDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		wantName  string
		wantModel string
		readers   []string
		wantErr   bool
	}{
		{
			name:      "single ACR1252",
			readers:   []string{"ACS ACR1252 1S CL Reader PICC 0"},
			wantName:  "ACS ACR1252 1S CL Reader PICC 0",
			wantModel: "ACR1252U",
		},
		{
			name: "skips yubikey",
			readers: []string{
				"Yubico YubiKey OTP+FIDO+CCID 00 00",
				"ACS ACR122U PICC Interface 00 00",
			},
			wantName:  "ACS ACR122U PICC Interface 00 00",
			wantModel: "ACR122U",
		},
		{
			name:      "unknown model rejected",
			readers:   []string{"Generic Smartcard Reader 00"},
			wantErr:   true,
		},
		{
			name:    "no readers",
			readers: nil,
			wantErr: true,
		},
		{
			name: "only ignored readers",
			readers: []string{
				"Yubico YubiKey OTP+FIDO+CCID 00 00",
				"Gemalto PIV Reader 01",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name, model, err := selectReader(tt.readers, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, nfcrw.ErrReaderNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestSelectReader_Preferred(t *testing.T) {
	t.Parallel()

	readers := []string{
		"ACS ACR1252 1S CL Reader PICC 0",
		"Generic Smartcard Reader 00",
	}

	// A preferred substring bypasses the model allow-list entirely.
	name, model, err := selectReader(readers, "Generic")
	require.NoError(t, err)
	assert.Equal(t, "Generic Smartcard Reader 00", name)
	assert.Empty(t, model)

	_, _, err = selectReader(readers, "does-not-exist")
	assert.ErrorIs(t, err, nfcrw.ErrReaderNotFound)
}

func TestModelName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ACR1252U", modelName("ACS ACR1252 1S CL Reader PICC 0"))
	assert.Equal(t, "PN532", modelName("Adafruit PN532 breakout"))
	assert.Empty(t, modelName("Generic Smartcard Reader"))
}
