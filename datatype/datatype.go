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

// Package datatype routes typed values to the
// codec of their lexical space.
package datatype

import (
	"fmt"

	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// ID identifies the representation a value
// is written with.
type ID uint8

const (
	// Invalid is the zero ID; it is never
	// a usable representation.
	Invalid ID = iota

	Base64Binary
	HexBinary
	Boolean
	DateTime
	Time
	Date
	GYearMonth
	GYear
	GMonthDay
	GDay
	GMonth
	Decimal
	Double
	Integer
	String

	// identities used by grammars that have
	// no lexical representation of their own
	List
	Enumeration
	QName

	numIDs
)

var idNames = [numIDs]string{
	Invalid:      "invalid",
	Base64Binary: "base64Binary",
	HexBinary:    "hexBinary",
	Boolean:      "boolean",
	DateTime:     "dateTime",
	Time:         "time",
	Date:         "date",
	GYearMonth:   "gYearMonth",
	GYear:        "gYear",
	GMonthDay:    "gMonthDay",
	GDay:         "gDay",
	GMonth:       "gMonth",
	Decimal:      "decimal",
	Double:       "double",
	Integer:      "integer",
	String:       "string",
	List:         "list",
	Enumeration:  "enumeration",
	QName:        "QName",
}

func (id ID) String() string {
	if id < numIDs {
		return idNames[id]
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// ParseID returns the ID named s, as
// printed by ID.String.
func ParseID(s string) (ID, error) {
	for i := range idNames {
		if idNames[i] == s && ID(i) != Invalid {
			return ID(i), nil
		}
	}
	return Invalid, fmt.Errorf("datatype: unknown datatype %q", s)
}

// Datatype is a representation plus the
// schema type it was declared with. Schema
// is the key of representation remapping.
type Datatype struct {
	ID     ID
	Schema qname.Name
}

// Builtin returns the datatype of the XML
// Schema built-in type named like id.
func Builtin(id ID) Datatype {
	return Datatype{
		ID:     id,
		Schema: qname.Name{URI: qname.XSDNamespace, Local: id.String()},
	}
}

func (d Datatype) String() string {
	if d.Schema == (qname.Name{}) {
		return d.ID.String()
	}
	return fmt.Sprintf("%s(%s)", d.ID, d.Schema)
}

// UnsupportedError is returned for a datatype
// outside the set that can be dispatched.
type UnsupportedError struct {
	Datatype Datatype
	Func     string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("exi.%s: unsupported datatype %s", e.Func, e.Datatype)
}

// Is makes UnsupportedError a protocol violation.
func (e *UnsupportedError) Is(target error) bool {
	return target == violation.ErrProtocol
}

func (id ID) MarshalText() ([]byte, error) {
	if id >= numIDs {
		return nil, fmt.Errorf("datatype: cannot marshal %s", id)
	}
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	got, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = got
	return nil
}
