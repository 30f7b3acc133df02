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
	"fmt"
)

// Static lock byte positions within page 2. The NTAG21x lock bits are
// one-time-programmable: a set bit can never be cleared again, so there
// is deliberately no Unlock counterpart anywhere in this package.
const (
	staticLockByte0 = 2
	staticLockByte1 = 3
)

// Lock makes the data area permanently read-only by setting every static
// lock bit (capability container plus pages 4-15, which covers the whole
// NDEF TLV on the tags this package writes). The lock page is read back
// afterwards; ErrLockFailed is returned if the bits did not stick.
func (t *Tag) Lock(ctx context.Context) error {
	page, err := t.readPage(ctx, ntagPageStaticLock)
	if err != nil {
		return fmt.Errorf("%w: reading lock page: %w", ErrLockFailed, err)
	}

	locked := make([]byte, PageSize)
	copy(locked, page)
	locked[staticLockByte0] = 0xFF
	locked[staticLockByte1] = 0xFF

	if err := t.writePage(ctx, ntagPageStaticLock, locked); err != nil {
		return fmt.Errorf("%w: %w", ErrLockFailed, err)
	}

	verify, err := t.readPage(ctx, ntagPageStaticLock)
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %w", ErrLockFailed, err)
	}
	if verify[staticLockByte0] != 0xFF || verify[staticLockByte1] != 0xFF {
		return fmt.Errorf("%w: lock bytes read back as %02X %02X",
			ErrLockFailed, verify[staticLockByte0], verify[staticLockByte1])
	}

	Debugf("tag %s locked", t.UIDString())
	return nil
}

// Locked reports whether any static lock bit is set on the tag.
func (t *Tag) Locked(ctx context.Context) (bool, error) {
	page, err := t.readPage(ctx, ntagPageStaticLock)
	if err != nil {
		return false, err
	}
	return page[staticLockByte0] != 0 || page[staticLockByte1] != 0, nil
}
