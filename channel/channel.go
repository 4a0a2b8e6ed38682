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

// Package channel implements the bit cursor
// that EXI values are read from and written to.
//
// A channel is either bit-packed (values are
// packed without regard to byte boundaries)
// or byte-aligned (every value starts on a
// byte boundary). Both representations share
// the unsigned integer and string encodings:
//
//   - unsigned integers are sequences of octets
//     carrying 7 bits each, least significant
//     group first, with the high bit set on
//     every octet except the last;
//   - n-bit unsigned integers are n bits, most
//     significant first, when bit-packed, or
//     ceil(n/8) little-endian bytes when aligned;
//   - strings are an unsigned length followed by
//     that many code points as unsigned integers.
package channel

import (
	"errors"
	"fmt"
)

// Alignment selects the bit layout of a channel.
type Alignment int

const (
	// BitPacked packs values without padding.
	BitPacked Alignment = iota
	// ByteAligned starts every value on a byte boundary.
	ByteAligned
)

func (a Alignment) String() string {
	switch a {
	case BitPacked:
		return "bit-packed"
	case ByteAligned:
		return "byte-aligned"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Alignment) MarshalText() ([]byte, error) {
	switch a {
	case BitPacked, ByteAligned:
		return []byte(a.String()), nil
	}
	return nil, fmt.Errorf("channel: cannot marshal %s", a)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alignment) UnmarshalText(text []byte) error {
	switch string(text) {
	case "bit-packed", "":
		*a = BitPacked
	case "byte-aligned":
		*a = ByteAligned
	default:
		return fmt.Errorf("channel: unknown alignment %q", text)
	}
	return nil
}

// Encoder is the set of primitives that
// value codecs write through.
type Encoder interface {
	EncodeBoolean(b bool) error
	EncodeUnsignedInteger(v uint64) error
	EncodeNBitUnsignedInteger(v uint64, n int) error
	// EncodeString writes the code point
	// length of s followed by its characters.
	EncodeString(s string) error
	// EncodeStringOnly writes the characters
	// of s without a length prefix.
	EncodeStringOnly(s string) error
	// Align pads to the next byte boundary.
	Align() error
}

// Decoder is the set of primitives that
// value codecs read through.
type Decoder interface {
	DecodeBoolean() (bool, error)
	DecodeUnsignedInteger() (uint64, error)
	DecodeNBitUnsignedInteger(n int) (uint64, error)
	DecodeString() (string, error)
	DecodeStringOnly(length int) (string, error)
	// Align skips to the next byte boundary.
	Align() error
	// DecodeByte consumes one opaque byte.
	DecodeByte() (byte, error)
	// Skip consumes n opaque bytes.
	Skip(n int64) error
}

// maxUintGroups bounds the number of 7-bit
// groups in an unsigned integer that still
// fits in 64 bits.
const maxUintGroups = 10

var (
	errOverflow  = errors.New("unsigned integer overflows 64 bits")
	errBadWidth  = errors.New("n-bit width out of range")
	errCodePoint = errors.New("invalid code point")
)
