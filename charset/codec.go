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

package charset

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/strtab"
	"github.com/SnellerInc/exi/utf8"
	"github.com/SnellerInc/exi/violation"
)

// Codec writes string values of one lexical
// space. Table hits use the string table's hit
// paths; misses are literals whose characters
// are packed against the Set.
//
// A Codec has no state beyond its Set.
type Codec struct {
	set *Set
}

// NewCodec returns a Codec packing against s.
func NewCodec(s *Set) Codec { return Codec{set: s} }

// Set returns the alphabet of c.
func (c Codec) Set() *Set { return c.set }

// WriteValue writes value under ctx.
func (c Codec) WriteValue(ctx *qname.Context, w channel.Encoder, enc *strtab.Encoder, value string) error {
	if enc.IsStringHit(value) {
		return enc.WriteHit(ctx, w, value)
	}
	l, err := utf8.Count(value)
	if err != nil {
		return fmt.Errorf("%s value: %w", c.set.name, err)
	}
	if err := w.EncodeUnsignedInteger(uint64(l + strtab.LiteralOffset)); err != nil {
		return err
	}
	escape := uint64(c.set.Len())
	for _, r := range value {
		if i, ok := c.set.index[r]; ok {
			if err := w.EncodeNBitUnsignedInteger(uint64(i), c.set.width); err != nil {
				return err
			}
			continue
		}
		if err := w.EncodeNBitUnsignedInteger(escape, c.set.width); err != nil {
			return err
		}
		if err := w.EncodeUnsignedInteger(uint64(r)); err != nil {
			return err
		}
	}
	if l > 0 {
		enc.AddValue(ctx, value)
	}
	return nil
}

// ReadValue reads a value written by WriteValue.
func (c Codec) ReadValue(ctx *qname.Context, r channel.Decoder, dec *strtab.Decoder) (string, error) {
	sel, err := r.DecodeUnsignedInteger()
	if err != nil {
		return "", err
	}
	if sel < strtab.LiteralOffset {
		return dec.ReadHit(ctx, r, sel)
	}
	l, err := strtab.LiteralLength(sel)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	escape := uint64(c.set.Len())
	for i := 0; i < l; i++ {
		pos, err := r.DecodeNBitUnsignedInteger(c.set.width)
		if err != nil {
			return "", err
		}
		switch {
		case pos < escape:
			sb.WriteRune(c.set.runes[pos])
		case pos == escape:
			cp, err := r.DecodeUnsignedInteger()
			if err != nil {
				return "", err
			}
			if !utf8.ValidCodePoint(cp) {
				return "", violation.Errorf("ReadValue", "escaped code point %#x in %s value", cp, c.set.name)
			}
			sb.WriteRune(rune(cp))
		default:
			return "", violation.Errorf("ReadValue", "position %d outside the %s set", pos, c.set.name)
		}
	}
	value := sb.String()
	if l > 0 {
		if err := dec.Admit(ctx, value); err != nil {
			return "", err
		}
	}
	return value, nil
}
