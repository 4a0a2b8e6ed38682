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

// Package charset implements the restricted
// character sets of the XML Schema lexical
// spaces and the string codec built on them.
package charset

import (
	"sort"

	"golang.org/x/exp/slices"

	"github.com/SnellerInc/exi/ints"
)

// Set is an ordered alphabet. Characters in
// the set are written as their position in
// ceil(log2(len+1)) bits; position len is
// the escape for characters outside the set.
type Set struct {
	name  string
	runes []rune
	index map[rune]int
	width int
}

// whitespace common to every lexical space
const ws = "\t\n\r "

func span(lo, hi rune) string {
	var out []rune
	for r := lo; r <= hi; r++ {
		out = append(out, r)
	}
	return string(out)
}

func newSet(name string, parts ...string) *Set {
	s := &Set{name: name, index: make(map[rune]int)}
	for _, p := range parts {
		for _, r := range p {
			if !slices.Contains(s.runes, r) {
				s.runes = append(s.runes, r)
			}
		}
	}
	sort.Slice(s.runes, func(i, j int) bool { return s.runes[i] < s.runes[j] })
	for i, r := range s.runes {
		s.index[r] = i
	}
	s.width = ints.CodingLength(len(s.runes) + 1)
	return s
}

var (
	Base64Binary = newSet("base64Binary", ws, "+/=", span('0', '9'), span('A', 'Z'), span('a', 'z'))
	HexBinary    = newSet("hexBinary", ws, span('0', '9'), span('A', 'F'), span('a', 'f'))
	Boolean      = newSet("boolean", ws, "01aeflrstu")
	DateTime     = newSet("dateTime", ws, "+-.:TZ", span('0', '9'))
	Decimal      = newSet("decimal", ws, "+-.", span('0', '9'))
	Double       = newSet("double", ws, "+-.EFINae", span('0', '9'))
	Integer      = newSet("integer", ws, "+-", span('0', '9'))
)

// Name returns the name of the lexical space.
func (s *Set) Name() string { return s.name }

// Len returns the number of characters in the set.
func (s *Set) Len() int { return len(s.runes) }

// Width returns the bit width of a position.
func (s *Set) Width() int { return s.width }

// Runes returns the characters in code point order.
func (s *Set) Runes() []rune { return slices.Clone(s.runes) }

// Index returns the position of r in the set.
func (s *Set) Index(r rune) (int, bool) {
	i, ok := s.index[r]
	return i, ok
}

// Contains reports whether every character of
// value belongs to the set, i.e. whether value
// can be written without escapes.
func (s *Set) Contains(value string) bool {
	for _, r := range value {
		if _, ok := s.index[r]; !ok {
			return false
		}
	}
	return true
}
