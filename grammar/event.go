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

// Package grammar defines the events of an
// EXI body and the oracle that picks which
// event comes next.
package grammar

import (
	"fmt"

	"github.com/SnellerInc/exi/datatype"
	"github.com/SnellerInc/exi/qname"
)

// EventType is the kind of a body event.
type EventType uint8

const (
	StartDocument EventType = iota
	EndDocument
	StartElement
	StartElementNS
	StartElementGeneric
	StartElementGenericUndeclared
	EndElement
	EndElementUndeclared
	Attribute
	AttributeNS
	AttributeGeneric
	AttributeGenericUndeclared
	AttributeXsiType
	AttributeXsiNil
	Characters
	CharactersGeneric
	CharactersGenericUndeclared
	NamespaceDeclaration
	SelfContained
	DocType
	EntityReference
	Comment
	ProcessingInstruction

	numEventTypes
)

var eventNames = [numEventTypes]string{
	StartDocument:                 "SD",
	EndDocument:                   "ED",
	StartElement:                  "SE",
	StartElementNS:                "SE(uri:*)",
	StartElementGeneric:           "SE(*)",
	StartElementGenericUndeclared: "SE(*)[undeclared]",
	EndElement:                    "EE",
	EndElementUndeclared:          "EE[undeclared]",
	Attribute:                     "AT",
	AttributeNS:                   "AT(uri:*)",
	AttributeGeneric:              "AT(*)",
	AttributeGenericUndeclared:    "AT(*)[undeclared]",
	AttributeXsiType:              "AT(xsi:type)",
	AttributeXsiNil:               "AT(xsi:nil)",
	Characters:                    "CH",
	CharactersGeneric:             "CH(*)",
	CharactersGenericUndeclared:   "CH(*)[undeclared]",
	NamespaceDeclaration:          "NS",
	SelfContained:                 "SC",
	DocType:                       "DT",
	EntityReference:               "ER",
	Comment:                       "CM",
	ProcessingInstruction:         "PI",
}

func (e EventType) String() string {
	if e < numEventTypes {
		return eventNames[e]
	}
	return fmt.Sprintf("EventType(%d)", uint8(e))
}

// IsStartElement returns whether e is one of
// the element start variants.
func (e EventType) IsStartElement() bool {
	switch e {
	case StartElement, StartElementNS, StartElementGeneric, StartElementGenericUndeclared:
		return true
	}
	return false
}

// IsEndElement returns whether e ends an element.
func (e EventType) IsEndElement() bool {
	return e == EndElement || e == EndElementUndeclared
}

// IsAttribute returns whether e is one of the
// attribute variants other than xsi:type and xsi:nil.
func (e EventType) IsAttribute() bool {
	switch e {
	case Attribute, AttributeNS, AttributeGeneric, AttributeGenericUndeclared:
		return true
	}
	return false
}

// IsCharacters returns whether e is one of
// the character variants.
func (e EventType) IsCharacters() bool {
	switch e {
	case Characters, CharactersGeneric, CharactersGenericUndeclared:
		return true
	}
	return false
}

// Event is an event chosen by an Oracle.
//
// Name is set for element and attribute events
// whose name the grammar determines; it is the
// zero Name when the name itself is on the wire.
// Datatype is set for value-bearing events.
type Event struct {
	Type     EventType
	Name     qname.Name
	Datatype datatype.Datatype
}

// NamedOnWire returns whether the qualified name
// of the event follows the event code.
func (e *Event) NamedOnWire() bool {
	switch e.Type {
	case StartElementGeneric, StartElementGenericUndeclared,
		AttributeGeneric, AttributeGenericUndeclared:
		return true
	}
	return false
}

func (e Event) String() string {
	if e.Name != (qname.Name{}) {
		return fmt.Sprintf("%s %s", e.Type, e.Name)
	}
	return e.Type.String()
}

// Position is the state of a body coder as
// seen by the grammar.
type Position struct {
	// Started is false until the start
	// document event has been coded.
	Started bool
	// Depth is the number of open elements.
	Depth int
	// Fragment is set for fragment streams,
	// including self-contained regions.
	Fragment bool
	// Element is the innermost open element.
	Element qname.Name
}
