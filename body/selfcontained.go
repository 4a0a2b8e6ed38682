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

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

// SelfContained is a Decoder that enters
// self-contained regions. While a region is
// open every call is handled by the decoder
// of that region, which reads from the same
// channel.Reader; otherwise calls are handled
// by the InOrder decoder of the enclosing body.
type SelfContained struct {
	base  *InOrder
	child *SelfContained
}

var _ Decoder = (*SelfContained)(nil)

func newSelfContained(r *channel.Reader, s *setup, level int) *SelfContained {
	return &SelfContained{base: newInOrder(r, s, level)}
}

// Base returns the decoder of the outermost body.
func (s *SelfContained) Base() *InOrder { return s.base }

// Active returns the decoder of the innermost
// open region, or s.Base() outside any region.
func (s *SelfContained) Active() *InOrder {
	for s.child != nil {
		s = s.child
	}
	return s.base
}

// Level returns the number of open
// self-contained regions.
func (s *SelfContained) Level() int {
	return s.Active().level - s.base.level
}

// Next returns the next event. When the
// open region ends, the region's decoder is
// finished and dropped, and the next event
// of the enclosing body is returned instead.
func (s *SelfContained) Next() (grammar.EventType, error) {
	if s.child == nil {
		return s.base.Next()
	}
	et, err := s.child.Next()
	if err != nil || et != grammar.EndDocument {
		return et, err
	}
	if err := s.child.DecodeEndDocument(); err != nil {
		return 0, err
	}
	s.base.r.Align()
	s.base.logf(s.child.base.id, "leave self-contained region at level %d offset %d", s.child.base.level, s.base.r.Offset())
	s.child = nil
	if _, err := s.base.pop(); err != nil {
		return 0, err
	}
	return s.base.Next()
}

func (s *SelfContained) DecodeStartSelfContainedFragment() error {
	if s.child != nil {
		return s.child.DecodeStartSelfContainedFragment()
	}
	b := s.base
	if _, err := b.take("DecodeStartSelfContainedFragment", is(grammar.SelfContained)); err != nil {
		return err
	}
	child := newSelfContained(b.r, b.fragment(), b.level+1)
	b.r.Align()
	b.logf(child.base.id, "enter self-contained region %s at level %d offset %d", b.elemName, child.base.level, b.r.Offset())
	if _, err := child.Next(); err != nil {
		return err
	}
	if err := child.DecodeStartDocument(); err != nil {
		return err
	}
	et, err := child.Next()
	if err != nil {
		return err
	}
	if !et.IsStartElement() {
		return violation.Errorf("DecodeStartSelfContainedFragment", "unsupported event type %s in self-contained region", et)
	}
	// the start element is returned by the next call to Next
	child.base.primed = true
	s.child = child
	return nil
}

func (s *SelfContained) SkipSelfContained(n int64) error {
	if s.child != nil {
		return s.child.SkipSelfContained(n)
	}
	b := s.base
	if _, err := b.take("SkipSelfContained", is(grammar.SelfContained)); err != nil {
		return ErrNotSelfContained
	}
	b.r.Align()
	if err := b.r.Skip(n); err != nil {
		return fmt.Errorf("SkipSelfContained: %w", err)
	}
	_, err := b.pop()
	return err
}

func (s *SelfContained) DecodeStartDocument() error {
	if s.child != nil {
		return s.child.DecodeStartDocument()
	}
	return s.base.DecodeStartDocument()
}

func (s *SelfContained) DecodeEndDocument() error {
	if s.child != nil {
		return violation.Errorf("DecodeEndDocument", "self-contained region still open")
	}
	return s.base.DecodeEndDocument()
}

func (s *SelfContained) DecodeStartElement() (*qname.Context, error) {
	if s.child != nil {
		return s.child.DecodeStartElement()
	}
	return s.base.DecodeStartElement()
}

func (s *SelfContained) DecodeEndElement() (*qname.Context, error) {
	if s.child != nil {
		return s.child.DecodeEndElement()
	}
	return s.base.DecodeEndElement()
}

func (s *SelfContained) DecodeAttribute() (*qname.Context, error) {
	if s.child != nil {
		return s.child.DecodeAttribute()
	}
	return s.base.DecodeAttribute()
}

func (s *SelfContained) DecodeAttributeXsiNil() (*qname.Context, error) {
	if s.child != nil {
		return s.child.DecodeAttributeXsiNil()
	}
	return s.base.DecodeAttributeXsiNil()
}

func (s *SelfContained) DecodeAttributeXsiType() (*qname.Context, error) {
	if s.child != nil {
		return s.child.DecodeAttributeXsiType()
	}
	return s.base.DecodeAttributeXsiType()
}

func (s *SelfContained) DecodeNamespaceDeclaration() (NamespaceDeclaration, error) {
	if s.child != nil {
		return s.child.DecodeNamespaceDeclaration()
	}
	return s.base.DecodeNamespaceDeclaration()
}

func (s *SelfContained) DecodeCharacters() (string, error) {
	if s.child != nil {
		return s.child.DecodeCharacters()
	}
	return s.base.DecodeCharacters()
}

func (s *SelfContained) DecodeDocType() (DocType, error) {
	if s.child != nil {
		return s.child.DecodeDocType()
	}
	return s.base.DecodeDocType()
}

func (s *SelfContained) DecodeEntityReference() (string, error) {
	if s.child != nil {
		return s.child.DecodeEntityReference()
	}
	return s.base.DecodeEntityReference()
}

func (s *SelfContained) DecodeComment() (string, error) {
	if s.child != nil {
		return s.child.DecodeComment()
	}
	return s.base.DecodeComment()
}

func (s *SelfContained) DecodeProcessingInstruction() (ProcessingInstruction, error) {
	if s.child != nil {
		return s.child.DecodeProcessingInstruction()
	}
	return s.base.DecodeProcessingInstruction()
}

func (s *SelfContained) ElementName() qname.Name {
	if s.child != nil {
		return s.child.ElementName()
	}
	return s.base.ElementName()
}

func (s *SelfContained) AttributeName() qname.Name {
	if s.child != nil {
		return s.child.AttributeName()
	}
	return s.base.AttributeName()
}

func (s *SelfContained) AttributeValue() string {
	if s.child != nil {
		return s.child.AttributeValue()
	}
	return s.base.AttributeValue()
}

func (s *SelfContained) DeclaredPrefixDeclarations() []NamespaceDeclaration {
	if s.child != nil {
		return s.child.DeclaredPrefixDeclarations()
	}
	return s.base.DeclaredPrefixDeclarations()
}
