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

// Package utf8 provides code-point counting
// for the string table length gates.
package utf8

import (
	"errors"
	"math/bits"
	"unicode/utf8"
)

// ErrInvalid is returned by Count for
// strings that are not valid UTF-8.
var ErrInvalid = errors.New("utf8: invalid UTF-8 string")

// le64 loads 8 bytes of s starting at i
// as a little-endian word.
func le64(s string, i int) uint64 {
	_ = s[i+7]
	return uint64(s[i]) | uint64(s[i+1])<<8 | uint64(s[i+2])<<16 |
		uint64(s[i+3])<<24 | uint64(s[i+4])<<32 | uint64(s[i+5])<<40 |
		uint64(s[i+6])<<48 | uint64(s[i+7])<<56
}

// RuneCount returns the number of code points
// in a valid UTF-8 string.
//
// Every byte that is not a continuation byte
// (0b10xx_xxxx) starts a new code point, so the
// result is len(str) minus the continuation count.
func RuneCount(str string) int {
	n := len(str)
	continuation := 0
	i := 0
	for ; i+8 <= n; i += 8 {
		qword := le64(str, i)
		bit7 := qword & 0x8080808080808080
		if bit7 == 0 {
			continue
		}
		bit6 := qword << 1
		continuation += bits.OnesCount64(bit7 &^ bit6)
	}
	for ; i < n; i++ {
		if str[i]&0b11_000000 == 0b10_000000 {
			continuation++
		}
	}
	return n - continuation
}

// Count returns the number of code points in str,
// or ErrInvalid if str is not valid UTF-8. Writers
// use it for the length they declare ahead of the
// characters, which must match what a range loop
// over str yields.
func Count(str string) (int, error) {
	if !utf8.ValidString(str) {
		return 0, ErrInvalid
	}
	return RuneCount(str), nil
}

// Exceeds reports whether str holds more
// than max code points. A negative max
// never is exceeded.
func Exceeds(str string, max int) bool {
	if max < 0 || len(str) <= max {
		// the byte length bounds the rune count
		return false
	}
	return RuneCount(str) > max
}

// ValidCodePoint reports whether cp is a
// Unicode scalar value: at most U+10FFFF
// and not a surrogate.
func ValidCodePoint(cp uint64) bool {
	return cp <= 0x10ffff && (cp < 0xd800 || cp > 0xdfff)
}
