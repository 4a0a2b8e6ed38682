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

package utf8

import (
	"fmt"
	"testing"
	"unicode/utf8"
)

func TestRuneCount(t *testing.T) {
	testcases := []string{
		"",
		"A",
		"01",
		"0123456",
		"01234567",
		"012345678",
		"all ascii",
		"wąż",
		"żółw",
		"quite long string with the Polish word 'żółw' - a turtle",
		"日本語のテキスト",
		"\U0001F600 emoji",
	}

	for i := range testcases {
		str := testcases[i]
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			want := utf8.RuneCountInString(str)
			got := RuneCount(str)
			if want != got {
				t.Logf("want = %d", want)
				t.Logf("got  = %d", got)
				t.Errorf("wrong result for %q", str)
			}
		})
	}
}

func TestExceeds(t *testing.T) {
	testcases := []struct {
		str  string
		max  int
		want bool
	}{
		{"", -1, false},
		{"anything at all", -1, false},
		{"", 0, false},
		{"a", 0, true},
		{"abc", 3, false},
		{"abcd", 3, true},
		// 4 runes, 8 bytes
		{"żółw", 4, false},
		{"żółw", 3, true},
	}
	for i := range testcases {
		tc := testcases[i]
		if got := Exceeds(tc.str, tc.max); got != tc.want {
			t.Errorf("Exceeds(%q, %d) = %v, want %v", tc.str, tc.max, got, tc.want)
		}
	}
}

func TestCount(t *testing.T) {
	testcases := []struct {
		str  string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"żółw", 4, true},
		{"\x80ab", 0, false},
		{"ab\xc3", 0, false},
		{"\xed\xa0\x80", 0, false}, // surrogate
	}
	for i := range testcases {
		tc := testcases[i]
		got, err := Count(tc.str)
		if tc.ok != (err == nil) || got != tc.want {
			t.Errorf("Count(%q) = %d, %v", tc.str, got, err)
		}
		if !tc.ok && err != ErrInvalid {
			t.Errorf("Count(%q): got error %v", tc.str, err)
		}
	}
}

func BenchmarkRuneCount(b *testing.B) {
	str := "quite long string with the Polish word 'żółw' - a turtle"
	for i := 0; i < b.N; i++ {
		RuneCount(str)
	}
}

func BenchmarkStdlibRuneCount(b *testing.B) {
	str := "quite long string with the Polish word 'żółw' - a turtle"
	for i := 0; i < b.N; i++ {
		utf8.RuneCountInString(str)
	}
}

func TestValidCodePoint(t *testing.T) {
	for _, cp := range []uint64{0, 'a', 0xd7ff, 0xe000, 0x10ffff} {
		if !ValidCodePoint(cp) {
			t.Errorf("%#x should be valid", cp)
		}
	}
	for _, cp := range []uint64{0xd800, 0xdfff, 0x110000, 1 << 40} {
		if ValidCodePoint(cp) {
			t.Errorf("%#x should be invalid", cp)
		}
	}
}
