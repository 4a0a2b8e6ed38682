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

package body

import (
	"fmt"
	"io"

	"github.com/SnellerInc/exi/grammar"
)

// Dump decodes d to the end of the document
// and writes one line per event to w.
// Self-contained regions are entered.
func Dump(d Decoder, w io.Writer) error {
	for {
		et, err := d.Next()
		if err != nil {
			return err
		}
		line, err := decodeEvent(d, et)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
		if et == grammar.EndDocument {
			return nil
		}
	}
}

func decodeEvent(d Decoder, et grammar.EventType) (string, error) {
	switch {
	case et == grammar.StartDocument:
		return "SD", d.DecodeStartDocument()
	case et == grammar.EndDocument:
		return "ED", d.DecodeEndDocument()
	case et.IsStartElement():
		ctx, err := d.DecodeStartElement()
		if err != nil {
			return "", err
		}
		return "SE " + ctx.Name.String(), nil
	case et.IsEndElement():
		ctx, err := d.DecodeEndElement()
		if err != nil {
			return "", err
		}
		return "EE " + ctx.Name.String(), nil
	case et == grammar.SelfContained:
		return "SC", d.DecodeStartSelfContainedFragment()
	case et.IsAttribute():
		if _, err := d.DecodeAttribute(); err != nil {
			return "", err
		}
		return fmt.Sprintf("AT %s=%q", d.AttributeName(), d.AttributeValue()), nil
	case et == grammar.AttributeXsiNil:
		if _, err := d.DecodeAttributeXsiNil(); err != nil {
			return "", err
		}
		return fmt.Sprintf("AT %s=%q", d.AttributeName(), d.AttributeValue()), nil
	case et == grammar.AttributeXsiType:
		if _, err := d.DecodeAttributeXsiType(); err != nil {
			return "", err
		}
		return fmt.Sprintf("AT %s=%q", d.AttributeName(), d.AttributeValue()), nil
	case et == grammar.NamespaceDeclaration:
		ns, err := d.DecodeNamespaceDeclaration()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NS %s=%q local=%v", ns.Prefix, ns.URI, ns.Local), nil
	case et.IsCharacters():
		v, err := d.DecodeCharacters()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CH %q", v), nil
	case et == grammar.Comment:
		v, err := d.DecodeComment()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CM %q", v), nil
	case et == grammar.ProcessingInstruction:
		pi, err := d.DecodeProcessingInstruction()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("PI %s %q", pi.Target, pi.Data), nil
	case et == grammar.DocType:
		dt, err := d.DecodeDocType()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("DT %s %q %q %q", dt.Name, dt.Public, dt.System, dt.Text), nil
	case et == grammar.EntityReference:
		v, err := d.DecodeEntityReference()
		if err != nil {
			return "", err
		}
		return "ER " + v, nil
	}
	return "", fmt.Errorf("body.Dump: unhandled event %s", et)
}
