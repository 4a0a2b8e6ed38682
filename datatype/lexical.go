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

package datatype

import (
	"golang.org/x/exp/maps"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/charset"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/strtab"
)

// Lexical reads and writes values in their
// lexical (string) form, packing each one
// against the character set of its datatype.
type Lexical struct {
	dtr map[qname.Name]Datatype

	base64Binary charset.Codec
	hexBinary    charset.Codec
	boolean      charset.Codec
	dateTime     charset.Codec
	decimal      charset.Codec
	double       charset.Codec
	integer      charset.Codec
}

// NewLexical returns a Lexical codec. The
// optional dtr map replaces the datatype of
// any value whose schema type is a key.
func NewLexical(dtr map[qname.Name]Datatype) *Lexical {
	l := &Lexical{
		base64Binary: charset.NewCodec(charset.Base64Binary),
		hexBinary:    charset.NewCodec(charset.HexBinary),
		boolean:      charset.NewCodec(charset.Boolean),
		dateTime:     charset.NewCodec(charset.DateTime),
		decimal:      charset.NewCodec(charset.Decimal),
		double:       charset.NewCodec(charset.Double),
		integer:      charset.NewCodec(charset.Integer),
	}
	if len(dtr) > 0 {
		l.dtr = maps.Clone(dtr)
	}
	return l
}

// Representation returns the datatype that
// d is actually written with. The remap is
// applied once; a replacement is never itself
// looked up again.
func (l *Lexical) Representation(d Datatype) Datatype {
	if l.dtr != nil {
		if rep, ok := l.dtr[d.Schema]; ok {
			return rep
		}
	}
	return d
}

// codec returns the restricted character set
// codec for id, or false for String and for
// ids outside the dispatch set.
func (l *Lexical) codec(id ID) (charset.Codec, bool) {
	switch id {
	case Base64Binary:
		return l.base64Binary, true
	case HexBinary:
		return l.hexBinary, true
	case Boolean:
		return l.boolean, true
	case DateTime, Time, Date, GYearMonth, GYear, GMonthDay, GDay, GMonth:
		// the whole calendar family shares one lexical space
		return l.dateTime, true
	case Decimal:
		return l.decimal, true
	case Double:
		return l.double, true
	case Integer:
		return l.integer, true
	}
	return charset.Codec{}, false
}

// ReadValue reads one value of datatype d
// under ctx.
func (l *Lexical) ReadValue(d Datatype, ctx *qname.Context, r channel.Decoder, dec *strtab.Decoder) (string, error) {
	d = l.Representation(d)
	if c, ok := l.codec(d.ID); ok {
		return c.ReadValue(ctx, r, dec)
	}
	if d.ID == String {
		return dec.ReadValue(ctx, r)
	}
	return "", &UnsupportedError{Datatype: d, Func: "ReadValue"}
}

// WriteValue writes value as datatype d
// under ctx.
func (l *Lexical) WriteValue(d Datatype, ctx *qname.Context, w channel.Encoder, enc *strtab.Encoder, value string) error {
	d = l.Representation(d)
	if c, ok := l.codec(d.ID); ok {
		return c.WriteValue(ctx, w, enc, value)
	}
	if d.ID == String {
		return enc.WriteValue(ctx, w, value)
	}
	return &UnsupportedError{Datatype: d, Func: "WriteValue"}
}
