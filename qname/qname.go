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

// Package qname provides the qualified-name
// identities that EXI string tables are
// partitioned by, and the registry that
// assigns and transmits them.
package qname

import (
	"fmt"
	"strings"
)

// Well-known namespaces.
const (
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
)

var (
	XsiType = Name{URI: XSINamespace, Local: "type"}
	XsiNil  = Name{URI: XSINamespace, Local: "nil"}
)

// Name is a namespace URI plus a local name.
// Names are compared by value.
type Name struct {
	URI   string
	Local string
}

// String returns the name in {uri}local form,
// or just the local name when the URI is empty.
func (n Name) String() string {
	if n.URI == "" {
		return n.Local
	}
	return "{" + n.URI + "}" + n.Local
}

// Parse parses the output of Name.String.
func Parse(s string) (Name, error) {
	if !strings.HasPrefix(s, "{") {
		if strings.ContainsAny(s, "{}") {
			return Name{}, fmt.Errorf("qname.Parse: malformed name %q", s)
		}
		return Name{Local: s}, nil
	}
	end := strings.IndexByte(s, '}')
	if end < 0 || strings.ContainsAny(s[end+1:], "{}") {
		return Name{}, fmt.Errorf("qname.Parse: malformed name %q", s)
	}
	return Name{URI: s[1:end], Local: s[end+1:]}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	p, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = p
	return nil
}

// Context is the registry-assigned identity
// of a Name. A Context is created once by its
// Registry and never mutated afterwards.
type Context struct {
	Name
	URIID   int
	LocalID int
}

// Equal compares two contexts by name.
// A nil context only equals another nil.
func (c *Context) Equal(o *Context) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Name == o.Name
}

func (c *Context) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name.String()
}
