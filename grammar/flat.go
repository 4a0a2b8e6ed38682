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

package grammar

import (
	"sort"

	"golang.org/x/exp/slices"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/datatype"
	"github.com/SnellerInc/exi/ints"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// Declaration declares an element or an attribute.
type Declaration struct {
	Name qname.Name `json:"name"`
	// Type is the representation of the content;
	// the zero ID means datatype.String.
	Type datatype.ID `json:"type,omitempty"`
	// Schema is the declared schema type; it
	// defaults to the built-in type named by Type.
	Schema qname.Name `json:"schema,omitempty"`
}

func (d *Declaration) datatype() datatype.Datatype {
	id := d.Type
	if id == datatype.Invalid {
		id = datatype.String
	}
	dt := datatype.Builtin(id)
	if d.Schema != (qname.Name{}) {
		dt.Schema = d.Schema
	}
	return dt
}

// flatCodes is the event code table of Flat;
// the event code of an event is its position.
var flatCodes = [...]EventType{
	EndDocument,
	StartElement,
	StartElementGeneric,
	EndElement,
	Attribute,
	AttributeGeneric,
	AttributeXsiType,
	AttributeXsiNil,
	Characters,
	NamespaceDeclaration,
	SelfContained,
	Comment,
	ProcessingInstruction,
	DocType,
	EntityReference,
}

var flatCodeOf [numEventTypes]int

func init() {
	for i := range flatCodeOf {
		flatCodeOf[i] = -1
	}
	for i, et := range flatCodes {
		flatCodeOf[et] = i
	}
}

// Flat is an Oracle with a single, position
// independent event code table. Declared elements
// and attributes are coded by their index in the
// sorted declaration list; anything else falls
// back to the generic variant with the name on
// the wire.
type Flat struct {
	elements   []Declaration
	attributes []Declaration
	elemIndex  map[qname.Name]int
	attrIndex  map[qname.Name]int
}

var _ Oracle = (*Flat)(nil)

func sortDecls(lst []Declaration) ([]Declaration, map[qname.Name]int) {
	lst = slices.Clone(lst)
	sort.SliceStable(lst, func(i, j int) bool {
		if lst[i].Name.Local != lst[j].Name.Local {
			return lst[i].Name.Local < lst[j].Name.Local
		}
		return lst[i].Name.URI < lst[j].Name.URI
	})
	index := make(map[qname.Name]int, len(lst))
	out := lst[:0]
	for i := range lst {
		if _, ok := index[lst[i].Name]; ok {
			continue
		}
		index[lst[i].Name] = len(out)
		out = append(out, lst[i])
	}
	return out, index
}

// NewFlat returns a Flat oracle for the given
// declarations. Duplicate names keep the first
// declaration.
func NewFlat(elements, attributes []Declaration) *Flat {
	f := &Flat{}
	f.elements, f.elemIndex = sortDecls(elements)
	f.attributes, f.attrIndex = sortDecls(attributes)
	return f
}

// Names returns every declared name, elements
// first. The body coders seed their name
// registries with it.
func (f *Flat) Names() []qname.Name {
	out := make([]qname.Name, 0, len(f.elements)+len(f.attributes))
	for i := range f.elements {
		out = append(out, f.elements[i].Name)
	}
	for i := range f.attributes {
		out = append(out, f.attributes[i].Name)
	}
	return out
}

// Element returns the declaration of the element n.
func (f *Flat) Element(n qname.Name) (Declaration, bool) {
	i, ok := f.elemIndex[n]
	if !ok {
		return Declaration{}, false
	}
	return f.elements[i], true
}

// Attribute returns the declaration of the attribute n.
func (f *Flat) Attribute(n qname.Name) (Declaration, bool) {
	i, ok := f.attrIndex[n]
	if !ok {
		return Declaration{}, false
	}
	return f.attributes[i], true
}

func (f *Flat) characters(pos *Position) datatype.Datatype {
	if d, ok := f.Element(pos.Element); ok {
		return d.datatype()
	}
	return datatype.Builtin(datatype.String)
}

var codeWidth = ints.CodingLength(len(flatCodes))

func (f *Flat) NextEvent(r channel.Decoder, pos *Position) (Event, error) {
	if !pos.Started {
		return Event{Type: StartDocument}, nil
	}
	code, err := r.DecodeNBitUnsignedInteger(codeWidth)
	if err != nil {
		return Event{}, err
	}
	if code >= uint64(len(flatCodes)) {
		return Event{}, violation.Errorf("Flat.NextEvent", "event code %d out of range", code)
	}
	ev := Event{Type: flatCodes[code]}
	switch ev.Type {
	case StartElement:
		d, err := readDecl(r, f.elements)
		if err != nil {
			return Event{}, err
		}
		ev.Name = d.Name
	case Attribute:
		d, err := readDecl(r, f.attributes)
		if err != nil {
			return Event{}, err
		}
		ev.Name = d.Name
		ev.Datatype = d.datatype()
	case AttributeGeneric:
		ev.Datatype = datatype.Builtin(datatype.String)
	case Characters:
		ev.Datatype = f.characters(pos)
	}
	return ev, nil
}

func readDecl(r channel.Decoder, lst []Declaration) (*Declaration, error) {
	i, err := r.DecodeNBitUnsignedInteger(ints.CodingLength(len(lst)))
	if err != nil {
		return nil, err
	}
	if i >= uint64(len(lst)) {
		return nil, violation.Errorf("Flat.NextEvent", "declaration %d of %d", i, len(lst))
	}
	return &lst[i], nil
}

func (f *Flat) EncodeEvent(w channel.Encoder, pos *Position, ev *Event) (Event, error) {
	if !pos.Started {
		if ev.Type != StartDocument {
			return Event{}, violation.Errorf("Flat.EncodeEvent", "%s before start document", ev.Type)
		}
		return Event{Type: StartDocument}, nil
	}
	out := Event{Type: ev.Type, Name: ev.Name}
	index, width := -1, 0
	switch {
	case ev.Type.IsStartElement():
		out.Type = StartElementGeneric
		if i, ok := f.elemIndex[ev.Name]; ok {
			out.Type = StartElement
			index, width = i, ints.CodingLength(len(f.elements))
		}
	case ev.Type.IsEndElement():
		out.Type = EndElement
	case ev.Type.IsAttribute():
		out.Type = AttributeGeneric
		out.Datatype = datatype.Builtin(datatype.String)
		if i, ok := f.attrIndex[ev.Name]; ok {
			out.Type = Attribute
			out.Datatype = f.attributes[i].datatype()
			index, width = i, ints.CodingLength(len(f.attributes))
		}
	case ev.Type.IsCharacters():
		out.Type = Characters
		out.Datatype = f.characters(pos)
	}
	code := flatCodeOf[out.Type]
	if code < 0 {
		return Event{}, violation.Errorf("Flat.EncodeEvent", "no event code for %s", ev.Type)
	}
	if err := w.EncodeNBitUnsignedInteger(uint64(code), codeWidth); err != nil {
		return Event{}, err
	}
	if index >= 0 {
		if err := w.EncodeNBitUnsignedInteger(uint64(index), width); err != nil {
			return Event{}, err
		}
	}
	return out, nil
}
