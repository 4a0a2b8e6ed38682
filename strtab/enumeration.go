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

package strtab

import (
	"fmt"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/ints"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// Enumeration is a GrammarStrings set that
// writes a member as its position in the set.
type Enumeration struct {
	values []string
	index  map[string]int
	width  int
}

var _ GrammarStrings = (*Enumeration)(nil)

// NewEnumeration builds a set from values.
// Duplicate values keep their first position.
func NewEnumeration(values ...string) *Enumeration {
	e := &Enumeration{index: make(map[string]int, len(values))}
	for _, v := range values {
		if _, ok := e.index[v]; ok {
			continue
		}
		e.index[v] = len(e.values)
		e.values = append(e.values, v)
	}
	e.width = ints.CodingLength(len(e.values))
	return e
}

// Values returns the members in position order.
func (e *Enumeration) Values() []string { return e.values }

// IsValid reports whether value is a member.
func (e *Enumeration) IsValid(value string) bool {
	_, ok := e.index[value]
	return ok
}

// WriteValue writes the position of value.
func (e *Enumeration) WriteValue(ctx *qname.Context, w channel.Encoder, value string) error {
	i, ok := e.index[value]
	if !ok {
		return fmt.Errorf("strtab.Enumeration: %q is not a member", value)
	}
	return w.EncodeNBitUnsignedInteger(uint64(i), e.width)
}

// ReadValue reads a position and returns
// the member stored there.
func (e *Enumeration) ReadValue(ctx *qname.Context, r channel.Decoder) (string, error) {
	i, err := r.DecodeNBitUnsignedInteger(e.width)
	if err != nil {
		return "", err
	}
	if i >= uint64(len(e.values)) {
		return "", violation.Errorf("Enumeration.ReadValue", "position %d out of range [0, %d)", i, len(e.values))
	}
	return e.values[i], nil
}
