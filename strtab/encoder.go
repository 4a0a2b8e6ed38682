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
	"github.com/SnellerInc/exi/utf8"
)

// LiteralOffset is added to the code point
// length of a literal string value; smaller
// leading integers select one of the hit paths.
const LiteralOffset = 6

// leading selectors below LiteralOffset
const (
	selLocal     = 0
	selGlobal    = 1
	selGrammar   = 2
	selShared    = 3
	selSplit     = 4
	selUndefined = 5
)

// GrammarStrings is a closed set of strings
// known from the grammar. A value accepted by
// IsValid is written by the set itself instead
// of as a literal, and is never admitted into
// the string table.
type GrammarStrings interface {
	IsValid(value string) bool
	WriteValue(ctx *qname.Context, w channel.Encoder, value string) error
	ReadValue(ctx *qname.Context, r channel.Decoder) (string, error)
}

// Encoder writes string values against a Table.
type Encoder struct {
	*Table
	grammar GrammarStrings
}

// NewEncoder returns an Encoder writing against t.
func NewEncoder(t *Table) *Encoder {
	return &Encoder{Table: t}
}

// SetGrammarStrings sets the grammar strings
// consulted on a table miss. A nil set
// disables the grammar-string path.
func (e *Encoder) SetGrammarStrings(g GrammarStrings) {
	e.grammar = g
}

// WriteValue writes value under ctx as a local
// hit, a global hit, a grammar string or a
// literal, in that order of preference. Literals
// of non-zero length are admitted afterwards.
func (e *Encoder) WriteValue(ctx *qname.Context, w channel.Encoder, value string) error {
	if ent, ok := e.values[value]; ok {
		return e.writeHit(ctx, w, ent)
	}
	if e.grammar != nil && e.grammar.IsValid(value) {
		if err := w.EncodeUnsignedInteger(selGrammar); err != nil {
			return err
		}
		return e.grammar.WriteValue(ctx, w, value)
	}
	l, err := utf8.Count(value)
	if err != nil {
		return fmt.Errorf("strtab.WriteValue: %w", err)
	}
	if err := w.EncodeUnsignedInteger(uint64(l + LiteralOffset)); err != nil {
		return err
	}
	if l == 0 {
		return nil
	}
	if err := w.EncodeStringOnly(value); err != nil {
		return err
	}
	e.AddValue(ctx, value)
	return nil
}

func (e *Encoder) writeHit(ctx *qname.Context, w channel.Encoder, ent *Entry) error {
	if e.opts.LocalPartitions && ctx != nil && ctx.Equal(ent.Context) {
		if err := w.EncodeUnsignedInteger(selLocal); err != nil {
			return err
		}
		n := ints.CodingLength(e.NumberOfStringValues(ctx))
		return w.EncodeNBitUnsignedInteger(uint64(ent.LocalIndex), n)
	}
	if err := w.EncodeUnsignedInteger(selGlobal); err != nil {
		return err
	}
	n := ints.CodingLength(e.Size())
	return w.EncodeNBitUnsignedInteger(uint64(ent.GlobalIndex), n)
}

// WriteHit writes value through one of the hit
// paths. It fails if value is not live.
func (e *Encoder) WriteHit(ctx *qname.Context, w channel.Encoder, value string) error {
	ent, ok := e.values[value]
	if !ok {
		return fmt.Errorf("strtab.WriteHit: %q is not in the table", value)
	}
	return e.writeHit(ctx, w, ent)
}
