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
	"errors"
	"fmt"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// Decoder is the decoding surface of a body.
//
// Next reports the next event; the caller then
// calls the Decode method matching that event
// exactly once before calling Next again.
type Decoder interface {
	Next() (grammar.EventType, error)

	DecodeStartDocument() error
	DecodeEndDocument() error
	DecodeStartElement() (*qname.Context, error)
	DecodeEndElement() (*qname.Context, error)
	// DecodeStartSelfContainedFragment enters the
	// self-contained region announced by Next.
	// The element that opens the region is the
	// next event.
	DecodeStartSelfContainedFragment() error
	// SkipSelfContained skips the self-contained
	// region announced by Next, which is n bytes
	// long, without decoding it.
	SkipSelfContained(n int64) error

	DecodeAttribute() (*qname.Context, error)
	DecodeAttributeXsiNil() (*qname.Context, error)
	DecodeAttributeXsiType() (*qname.Context, error)
	DecodeNamespaceDeclaration() (NamespaceDeclaration, error)
	DecodeCharacters() (string, error)
	DecodeDocType() (DocType, error)
	DecodeEntityReference() (string, error)
	DecodeComment() (string, error)
	DecodeProcessingInstruction() (ProcessingInstruction, error)

	// ElementName is the name of the element
	// most recently started or ended.
	ElementName() qname.Name
	// AttributeName and AttributeValue describe
	// the attribute most recently decoded.
	AttributeName() qname.Name
	AttributeValue() string
	// DeclaredPrefixDeclarations returns the
	// namespace declarations of the current element.
	DeclaredPrefixDeclarations() []NamespaceDeclaration
}

// NamespaceDeclaration is a namespace
// declaration event.
type NamespaceDeclaration struct {
	URI    string
	Prefix string
	// Local is set when the prefix is the
	// prefix of the declaring element.
	Local bool
}

// DocType is a document type declaration.
type DocType struct {
	Name, Public, System, Text string
}

// ProcessingInstruction is a processing
// instruction event.
type ProcessingInstruction struct {
	Target, Data string
}

// ErrNotSelfContained is returned by SkipSelfContained
// when the pending event is not a self-contained
// region.
var ErrNotSelfContained = errors.New("body: no pending self-contained region")

// EventError is returned when a Decode
// method does not match the pending event.
type EventError struct {
	Func string
	// Got is the pending event, or nil
	// if Next was not called.
	Got *grammar.EventType
}

func (e *EventError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("exi.%s: no pending event", e.Func)
	}
	return fmt.Sprintf("exi.%s: unexpected event %s", e.Func, *e.Got)
}

// Is makes EventError a protocol violation.
func (e *EventError) Is(target error) bool {
	return target == violation.ErrProtocol
}

// NewDecoder returns a Decoder reading from r.
// When opts.SelfContained is set the result
// is a *SelfContained; otherwise it is an *InOrder.
func NewDecoder(r *channel.Reader, opts *Options) (Decoder, error) {
	s, err := newSetup(opts)
	if err != nil {
		return nil, err
	}
	if r.Alignment() != opts.Alignment {
		return nil, fmt.Errorf("body.NewDecoder: reader is %s, options are %s", r.Alignment(), opts.Alignment)
	}
	if opts.SelfContained {
		return newSelfContained(r, s, 0), nil
	}
	return newInOrder(r, s, 0), nil
}
