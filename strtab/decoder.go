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
	"math"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/ints"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// Decoder reads string values against a Table.
type Decoder struct {
	*Table
	grammar GrammarStrings
}

// NewDecoder returns a Decoder reading against t.
func NewDecoder(t *Table) *Decoder {
	return &Decoder{Table: t}
}

// SetGrammarStrings sets the grammar strings
// selected by the grammar-string selector.
func (d *Decoder) SetGrammarStrings(g GrammarStrings) {
	d.grammar = g
}

// ReadValue reads one value written by
// Encoder.WriteValue.
func (d *Decoder) ReadValue(ctx *qname.Context, r channel.Decoder) (string, error) {
	sel, err := r.DecodeUnsignedInteger()
	if err != nil {
		return "", err
	}
	if sel < LiteralOffset {
		return d.ReadHit(ctx, r, sel)
	}
	l, err := LiteralLength(sel)
	if err != nil {
		return "", err
	}
	value, err := r.DecodeStringOnly(l)
	if err != nil {
		return "", err
	}
	if l > 0 {
		if err := d.Admit(ctx, value); err != nil {
			return "", err
		}
	}
	return value, nil
}

// LiteralLength converts a leading selector
// of at least LiteralOffset to a code point
// count.
func LiteralLength(sel uint64) (int, error) {
	if sel < LiteralOffset {
		return 0, violation.Errorf("ReadValue", "selector %d is not a literal", sel)
	}
	l := sel - LiteralOffset
	if l > math.MaxInt32 {
		return 0, violation.Errorf("ReadValue", "literal length %d", l)
	}
	return int(l), nil
}

// ReadHit reads the remainder of a value whose
// leading selector sel is below LiteralOffset.
func (d *Decoder) ReadHit(ctx *qname.Context, r channel.Decoder, sel uint64) (string, error) {
	switch sel {
	case selLocal:
		return d.ReadValueLocalHit(ctx, r)
	case selGlobal:
		return d.ReadValueGlobalHit(r)
	case selGrammar:
		if d.grammar == nil {
			return "", violation.Errorf("ReadValue", "grammar string selected but no grammar strings are configured")
		}
		return d.grammar.ReadValue(ctx, r)
	case selShared, selSplit, selUndefined:
		return "", violation.Errorf("ReadValue", "unsupported string selector %d", sel)
	default:
		return "", violation.Errorf("ReadValue", "selector %d is a literal", sel)
	}
}

// ReadValueLocalHit reads a local id under ctx.
// The id is sized by the number of local ids
// assigned so far.
func (d *Decoder) ReadValueLocalHit(ctx *qname.Context, r channel.Decoder) (string, error) {
	if !d.opts.LocalPartitions {
		return "", violation.Errorf("ReadValueLocalHit", "local value partitions are disabled")
	}
	n := ints.CodingLength(d.NumberOfStringValues(ctx))
	id, err := r.DecodeNBitUnsignedInteger(n)
	if err != nil {
		return "", err
	}
	ent, ok := d.Local(ctx, int(id))
	if !ok || id > math.MaxInt32 {
		return "", violation.Errorf("ReadValueLocalHit", "local id %d of %s is not assigned", id, ctx)
	}
	return ent.Value, nil
}

// ReadValueGlobalHit reads a global id sized
// by the number of live global values.
func (d *Decoder) ReadValueGlobalHit(r channel.Decoder) (string, error) {
	n := ints.CodingLength(d.Size())
	id, err := r.DecodeNBitUnsignedInteger(n)
	if err != nil {
		return "", err
	}
	ent, ok := d.Global(int(id))
	if !ok || id > math.MaxInt32 {
		return "", violation.Errorf("ReadValueGlobalHit", "global id %d is not assigned", id)
	}
	return ent.Value, nil
}

// Admit admits a decoded literal. A literal
// for a value that is already live could never
// have been produced by a conforming encoder.
func (d *Decoder) Admit(ctx *qname.Context, value string) error {
	if _, ok := d.values[value]; ok {
		return violation.Errorf("ReadValue", "literal %q is already in the table", value)
	}
	d.AddValue(ctx, value)
	return nil
}
