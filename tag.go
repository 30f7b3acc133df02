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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/danielrosehill/nfc-rw/pkg/ndef"
)

// Tag is one tag session over an exclusively-owned transport. It is
// created when a tag lands on the reader and discarded when the tag
// leaves; page state is never cached across sessions.
type Tag struct {
	transport Transport
	uid       []byte
	tagType   TagType
}

// NewTag selects the tag behind the transport: it fetches the UID as a
// presence check and reads the capability container to identify the
// NTAG21x variant.
func NewTag(ctx context.Context, transport Transport) (*Tag, error) {
	uid, err := exchange(ctx, transport, "select tag", apduGetUID())
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %w", ErrNoTag, err)
		}
		return nil, err
	}

	cc, err := exchange(ctx, transport, "read capability container", apduReadPage(ntagPageCC))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagReadFailed, err)
	}

	tag := &Tag{
		transport: transport,
		uid:       uid,
		tagType:   tagTypeFromCC(cc),
	}
	Debugf("tag selected: uid=%s type=%s", tag.UIDString(), tag.tagType)
	return tag, nil
}

// UID returns the tag's anti-collision UID.
func (t *Tag) UID() []byte { return t.uid }

// UIDString returns the UID as an upper-case hex string.
func (t *Tag) UIDString() string {
	return strings.ToUpper(hex.EncodeToString(t.uid))
}

// Type returns the detected NTAG21x variant.
func (t *Tag) Type() TagType { return t.tagType }

// Capacity returns the user memory size in bytes.
func (t *Tag) Capacity() int { return t.tagType.userPages() * PageSize }

// Close releases the underlying transport connection.
func (t *Tag) Close() error {
	return t.transport.Close()
}

// ReadPages reads count pages starting at start and returns the
// concatenated bytes. Header pages may be read; only writes are
// restricted.
func (t *Tag) ReadPages(ctx context.Context, start byte, count int) ([]byte, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: page count %d", ErrInvalidParameter, count)
	}
	if int(start)+count > UserMemStart+t.tagType.userPages() {
		return nil, fmt.Errorf("%w: %d pages at page %d runs past %s memory",
			ErrInvalidParameter, count, start, t.tagType)
	}

	data := make([]byte, 0, count*PageSize)
	for i := 0; i < count; i++ {
		page := start + byte(i)
		pageData, err := t.readPage(ctx, page)
		if err != nil {
			return nil, err
		}
		data = append(data, pageData...)
	}
	return data, nil
}

func (t *Tag) readPage(ctx context.Context, page byte) ([]byte, error) {
	op := fmt.Sprintf("read page %d", page)
	data, err := exchange(ctx, t.transport, op, apduReadPage(page))
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %w", ErrTagReadFailed, err)
		}
		return nil, err
	}
	if len(data) < PageSize {
		return nil, fmt.Errorf("%w: page %d returned %d bytes", ErrTagReadFailed, page, len(data))
	}
	// Some readers answer with a full 16-byte quad; keep the page asked for.
	return data[:PageSize], nil
}

// WritePages writes data page-by-page starting at start. The length must
// be a multiple of the page size and the range must lie entirely inside
// user memory; both are checked before any APDU is issued. On failure
// the remaining pages are not attempted and a *WriteError reports how
// far the sequence got.
func (t *Tag) WritePages(ctx context.Context, start byte, data []byte) error {
	if len(data) == 0 || len(data)%PageSize != 0 {
		return fmt.Errorf("%w: write length %d is not a multiple of %d",
			ErrInvalidParameter, len(data), PageSize)
	}
	if start < UserMemStart {
		return fmt.Errorf("%w: page %d is reserved (UID/lock/CC)", ErrInvalidParameter, start)
	}

	pages := len(data) / PageSize
	if int(start)-UserMemStart+pages > t.tagType.userPages() {
		return fmt.Errorf("%w: %d bytes at page %d exceeds %s user memory",
			ErrDataTooLarge, len(data), start, t.tagType)
	}

	for i := 0; i < pages; i++ {
		page := start + byte(i)
		if err := t.writePage(ctx, page, data[i*PageSize:(i+1)*PageSize]); err != nil {
			return &WriteError{Page: page, BytesWritten: i * PageSize, Err: err}
		}
	}
	return nil
}

func (t *Tag) writePage(ctx context.Context, page byte, data []byte) error {
	op := fmt.Sprintf("write page %d", page)
	_, err := exchange(ctx, t.transport, op, apduWritePage(page, data))
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return fmt.Errorf("%w: %w", ErrTagWriteRejected, err)
		}
		return err
	}
	return nil
}

// ReadUserMemory reads the tag's data area from page 4 up to the end of
// the TLV sequence or the end of user memory, whichever comes first. A
// 0xFE byte inside a TLV body is payload, not the terminator, so the
// stop condition follows the TLV structure rather than raw bytes.
func (t *Tag) ReadUserMemory(ctx context.Context) ([]byte, error) {
	userPages := t.tagType.userPages()
	data := make([]byte, 0, userPages*PageSize)

	for i := 0; i < userPages; i++ {
		page := UserMemStart + byte(i)
		pageData, err := t.readPage(ctx, page)
		if err != nil {
			return nil, err
		}
		data = append(data, pageData...)

		if ndef.ImageComplete(data) {
			return data, nil
		}
	}
	return data, nil
}

// ReadNDEF reads and decodes the tag's NDEF message. A formatted but
// empty tag yields ndef.ErrNoNDEFMessage, which callers should treat as
// "nothing stored" rather than a failure.
func (t *Tag) ReadNDEF(ctx context.Context) (*ndef.Message, error) {
	data, err := t.ReadUserMemory(ctx)
	if err != nil {
		return nil, err
	}
	return ndef.DecodeTLV(data)
}

// WriteNDEF encodes the message into a TLV image and writes it to user
// memory starting at page 4, zero-padding the final page. Content that
// cannot fit the tag's data area is rejected with ErrDataTooLarge before
// any page is touched.
func (t *Tag) WriteNDEF(ctx context.Context, msg *ndef.Message) error {
	image, err := ndef.EncodeTLV(msg)
	if err != nil {
		return err
	}
	if len(image) > t.Capacity() {
		return fmt.Errorf("%w: NDEF TLV is %d bytes, %s holds %d",
			ErrDataTooLarge, len(image), t.tagType, t.Capacity())
	}

	if err := t.ensureFormatted(ctx); err != nil {
		return err
	}

	if rem := len(image) % PageSize; rem != 0 {
		image = append(image, make([]byte, PageSize-rem)...)
	}
	return t.WritePages(ctx, UserMemStart, image)
}

// Format writes an empty NDEF message, erasing whatever record the data
// area currently holds.
func (t *Tag) Format(ctx context.Context) error {
	if err := t.ensureFormatted(ctx); err != nil {
		return err
	}
	return t.WritePages(ctx, UserMemStart, []byte{ndef.TLVNDEFMessage, 0x00, ndef.TLVTerminator, 0x00})
}

// ensureFormatted initializes the capability container on a factory
// blank tag so other NDEF readers recognize the data area. A CC that
// already carries the NDEF magic byte is left alone; the CC bytes are
// one-time-programmable and must not be rewritten.
func (t *Tag) ensureFormatted(ctx context.Context) error {
	if t.tagType != TagTypeUnknown {
		return nil
	}

	cc, err := t.readPage(ctx, ntagPageCC)
	if err != nil {
		return fmt.Errorf("reading capability container: %w", err)
	}
	if cc[0] == ccMagic {
		return nil
	}

	init := []byte{ccMagic, ccVersion, ccSize213, 0x00}
	if err := t.writePage(ctx, ntagPageCC, init); err != nil {
		return fmt.Errorf("initializing capability container: %w", err)
	}
	t.tagType = TagTypeNTAG213
	Debugf("tag %s: capability container initialized", t.UIDString())
	return nil
}
