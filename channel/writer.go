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

	"github.com/SnellerInc/exi/ints"
	"github.com/SnellerInc/exi/utf8"
)

// Writer is an Encoder that accumulates
// output in memory.
type Writer struct {
	buf   []byte
	cur   byte // pending bits, MSB first
	nbits int  // number of pending bits in cur
	align Alignment
}

var _ Encoder = (*Writer)(nil)

// NewWriter returns an empty Writer.
func NewWriter(a Alignment) *Writer {
	return &Writer{align: a}
}

// Alignment returns the layout of the channel.
func (w *Writer) Alignment() Alignment { return w.align }

// Offset returns the number of bytes written,
// counting a partially written byte.
func (w *Writer) Offset() int {
	if w.nbits > 0 {
		return len(w.buf) + 1
	}
	return len(w.buf)
}

// Bytes pads the output to a byte boundary
// and returns it. The returned slice aliases
// the Writer's storage.
func (w *Writer) Bytes() []byte {
	w.Align()
	return w.buf
}

// Reset discards all output.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.cur, w.nbits = 0, 0
}

func (w *Writer) bits(v uint64, n int) {
	for n > 0 {
		free := 8 - w.nbits
		take := free
		if n < take {
			take = n
		}
		chunk := byte((v >> (n - take)) & (1<<take - 1))
		w.cur |= chunk << (free - take)
		w.nbits += take
		n -= take
		if w.nbits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.nbits = 0, 0
		}
	}
}

func (w *Writer) octet(b byte) {
	if w.nbits == 0 {
		w.buf = append(w.buf, b)
		return
	}
	w.bits(uint64(b), 8)
}

// EncodeBoolean writes one bit when bit-packed
// or a whole byte when byte-aligned.
func (w *Writer) EncodeBoolean(b bool) error {
	var v uint64
	if b {
		v = 1
	}
	if w.align == ByteAligned {
		w.octet(byte(v))
		return nil
	}
	w.bits(v, 1)
	return nil
}

// EncodeUnsignedInteger writes v as 7-bit groups.
func (w *Writer) EncodeUnsignedInteger(v uint64) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.octet(b)
		if v == 0 {
			return nil
		}
	}
}

// EncodeNBitUnsignedInteger writes v in n bits.
// It fails if v does not fit.
func (w *Writer) EncodeNBitUnsignedInteger(v uint64, n int) error {
	if n < 0 || n > 64 {
		return fmt.Errorf("channel.EncodeNBitUnsignedInteger(%d): %w", n, errBadWidth)
	}
	if v > ints.MaxNBit(n) {
		return fmt.Errorf("channel.EncodeNBitUnsignedInteger: %d does not fit in %d bits", v, n)
	}
	if w.align == BitPacked {
		w.bits(v, n)
		return nil
	}
	for i := 0; i*8 < n; i++ {
		w.octet(byte(v >> (8 * i)))
	}
	return nil
}

// EncodeString writes the code point count
// of s followed by its characters.
func (w *Writer) EncodeString(s string) error {
	n, err := utf8.Count(s)
	if err != nil {
		return err
	}
	if err := w.EncodeUnsignedInteger(uint64(n)); err != nil {
		return err
	}
	return w.chars(s)
}

// EncodeStringOnly writes the characters of s.
// It fails with utf8.ErrInvalid before writing
// anything if s is not valid UTF-8.
func (w *Writer) EncodeStringOnly(s string) error {
	if _, err := utf8.Count(s); err != nil {
		return err
	}
	return w.chars(s)
}

func (w *Writer) chars(s string) error {
	for _, r := range s {
		if err := w.EncodeUnsignedInteger(uint64(r)); err != nil {
			return err
		}
	}
	return nil
}

// Align pads with zero bits up to the next
// byte boundary.
func (w *Writer) Align() error {
	if w.nbits > 0 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.nbits = 0, 0
	}
	return nil
}
