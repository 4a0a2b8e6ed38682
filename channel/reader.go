// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package channel

import (
	"fmt"
	"io"
	"strings"

	"github.com/SnellerInc/exi/utf8"
	"github.com/SnellerInc/exi/violation"
)

// Reader is a Decoder over an in-memory buffer.
//
// A single *Reader is shared by reference between
// a decoder and every nested decoder it spawns;
// only the innermost active decoder advances it.
type Reader struct {
	buf   []byte
	pos   int // in bits
	align Alignment
}

var _ Decoder = (*Reader)(nil)

// NewReader returns a Reader positioned at
// the start of buf.
func NewReader(buf []byte, a Alignment) *Reader {
	return &Reader{buf: buf, align: a}
}

// Alignment returns the layout of the channel.
func (r *Reader) Alignment() Alignment { return r.align }

// Offset returns the number of bytes consumed,
// counting a partially consumed byte as consumed.
func (r *Reader) Offset() int { return (r.pos + 7) >> 3 }

// BitOffset returns the number of bits consumed.
func (r *Reader) BitOffset() int { return r.pos }

// Remaining returns the number of unconsumed bits.
func (r *Reader) Remaining() int { return len(r.buf)*8 - r.pos }

func (r *Reader) bits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n > r.Remaining() {
		r.pos = len(r.buf) * 8
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for n > 0 {
		avail := 8 - (r.pos & 7)
		take := avail
		if n < take {
			take = n
		}
		b := uint64(r.buf[r.pos>>3])
		v = v<<take | (b>>(avail-take))&(1<<take-1)
		r.pos += take
		n -= take
	}
	return v, nil
}

func (r *Reader) octet() (byte, error) {
	v, err := r.bits(8)
	return byte(v), err
}

// DecodeBoolean reads a single bit when bit-packed
// or a whole byte when byte-aligned.
func (r *Reader) DecodeBoolean() (bool, error) {
	if r.align == ByteAligned {
		b, err := r.octet()
		return b != 0, err
	}
	v, err := r.bits(1)
	return v != 0, err
}

// DecodeUnsignedInteger reads a 7-bit-group
// unsigned integer.
func (r *Reader) DecodeUnsignedInteger() (uint64, error) {
	var v uint64
	for i := 0; i < maxUintGroups; i++ {
		b, err := r.octet()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, violation.Wrap("DecodeUnsignedInteger", "malformed integer", errOverflow)
}

// DecodeNBitUnsignedInteger reads an n-bit
// unsigned integer.
func (r *Reader) DecodeNBitUnsignedInteger(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("channel.DecodeNBitUnsignedInteger(%d): %w", n, errBadWidth)
	}
	if r.align == BitPacked {
		return r.bits(n)
	}
	var v uint64
	for i := 0; i*8 < n; i++ {
		b, err := r.octet()
		if err != nil {
			return 0, err
		}
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// DecodeString reads a length-prefixed string.
func (r *Reader) DecodeString() (string, error) {
	l, err := r.DecodeUnsignedInteger()
	if err != nil {
		return "", err
	}
	if l > uint64(r.Remaining()/8) {
		// every code point takes at least one octet
		return "", io.ErrUnexpectedEOF
	}
	return r.DecodeStringOnly(int(l))
}

// DecodeStringOnly reads length code points.
func (r *Reader) DecodeStringOnly(length int) (string, error) {
	if length == 0 {
		return "", nil
	}
	if length < 0 || length > r.Remaining()/8 {
		return "", io.ErrUnexpectedEOF
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		cp, err := r.DecodeUnsignedInteger()
		if err != nil {
			return "", err
		}
		if !utf8.ValidCodePoint(cp) {
			return "", violation.Wrap("DecodeStringOnly", fmt.Sprintf("code point %#x", cp), errCodePoint)
		}
		sb.WriteRune(rune(cp))
	}
	return sb.String(), nil
}

// Align skips to the next byte boundary.
// Byte-aligned channels are always on one.
func (r *Reader) Align() error {
	r.pos = (r.pos + 7) &^ 7
	return nil
}

// DecodeByte consumes the next 8 bits.
func (r *Reader) DecodeByte() (byte, error) {
	return r.octet()
}

// Skip consumes n bytes without interpreting them.
func (r *Reader) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("channel.Skip: negative count %d", n)
	}
	if n > int64(r.Remaining()/8) {
		r.pos = len(r.buf) * 8
		return io.ErrUnexpectedEOF
	}
	r.pos += int(n) * 8
	return nil
}
