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

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/strtab"
	"github.com/SnellerInc/exi/violation"
)

// Region is the location of a self-contained
// region in the encoded output. Length is the
// argument SkipSelfContained takes to skip it.
type Region struct {
	// Name is the element that opens the region.
	Name qname.Name
	// Level is 1 for regions in the outermost
	// body, 2 for regions nested in those, and so on.
	Level int
	// Offset is the byte offset of the region
	// from the start of the channel.Writer.
	Offset int
	// Length is the length of the region in bytes.
	Length int
}

// Encoder writes a body. Its methods mirror
// those of Decoder. When self-contained regions
// are enabled, EncodeStartSelfContainedFragment
// opens a region for the current element that
// is closed by the EncodeEndElement of that element.
type Encoder struct {
	*setup
	id    uuid.UUID
	level int

	w      *channel.Writer
	names  *qname.Registry
	table  *strtab.Table
	values *strtab.Encoder

	pos   grammar.Position
	stack []*qname.Context

	child   *Encoder
	regions *[]Region
	region  int // index of the region written by e, or -1
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w *channel.Writer, opts *Options) (*Encoder, error) {
	s, err := newSetup(opts)
	if err != nil {
		return nil, err
	}
	if w.Alignment() != opts.Alignment {
		return nil, fmt.Errorf("body.NewEncoder: writer is %s, options are %s", w.Alignment(), opts.Alignment)
	}
	return newEncoder(w, s, 0, new([]Region), -1), nil
}

func newEncoder(w *channel.Writer, s *setup, level int, regions *[]Region, region int) *Encoder {
	e := &Encoder{
		setup:   s,
		id:      uuid.New(),
		level:   level,
		w:       w,
		names:   s.newRegistry(),
		table:   s.newTable(),
		regions: regions,
		region:  region,
	}
	e.values = strtab.NewEncoder(e.table)
	if s.enum != nil {
		e.values.SetGrammarStrings(s.enum)
	}
	e.pos.Fragment = s.opts.Fragment
	return e
}

// ID returns the identifier of the encoder
// used in log lines.
func (e *Encoder) ID() uuid.UUID { return e.id }

// Table returns the value table of the
// innermost open region.
func (e *Encoder) Table() *strtab.Table { return e.active().table }

// Regions returns the self-contained regions
// closed so far, ordered by Offset.
func (e *Encoder) Regions() []Region {
	var out []Region
	for _, r := range *e.regions {
		if r.Length >= 0 {
			out = append(out, r)
		}
	}
	return out
}

func (e *Encoder) active() *Encoder {
	for e.child != nil {
		e = e.child
	}
	return e
}

func (e *Encoder) event(ev grammar.Event) (grammar.Event, error) {
	out, err := e.oracle.EncodeEvent(e.w, &e.pos, &ev)
	if err != nil {
		return out, fmt.Errorf("Encode %s: %w", ev.Type, err)
	}
	return out, nil
}

func (e *Encoder) name(out *grammar.Event, n qname.Name) (*qname.Context, error) {
	if out.NamedOnWire() {
		return e.names.EncodeName(e.w, n)
	}
	return e.names.Resolve(n), nil
}

func (e *Encoder) EncodeStartDocument() error {
	if e.child != nil {
		return e.child.EncodeStartDocument()
	}
	if _, err := e.event(grammar.Event{Type: grammar.StartDocument}); err != nil {
		return err
	}
	e.table.Clear()
	e.stack = e.stack[:0]
	e.pos = grammar.Position{Started: true, Fragment: e.opts.Fragment}
	return nil
}

func (e *Encoder) EncodeEndDocument() error {
	if e.child != nil {
		return violation.Errorf("EncodeEndDocument", "self-contained region still open")
	}
	if len(e.stack) > 0 {
		return violation.Errorf("EncodeEndDocument", "%d elements still open", len(e.stack))
	}
	_, err := e.event(grammar.Event{Type: grammar.EndDocument})
	return err
}

func (e *Encoder) EncodeStartElement(n qname.Name) error {
	if e.child != nil {
		return e.child.EncodeStartElement(n)
	}
	out, err := e.event(grammar.Event{Type: grammar.StartElement, Name: n})
	if err != nil {
		return err
	}
	ctx, err := e.name(&out, n)
	if err != nil {
		return fmt.Errorf("EncodeStartElement: %w", err)
	}
	e.stack = append(e.stack, ctx)
	e.pos.Depth = len(e.stack)
	e.pos.Element = n
	return nil
}

func (e *Encoder) pop() {
	e.stack = e.stack[:len(e.stack)-1]
	e.pos.Depth = len(e.stack)
	e.pos.Element = qname.Name{}
	if len(e.stack) > 0 {
		e.pos.Element = e.stack[len(e.stack)-1].Name
	}
}

func (e *Encoder) EncodeEndElement() error {
	if c := e.child; c != nil {
		if err := c.EncodeEndElement(); err != nil {
			return err
		}
		if c.child != nil || len(c.stack) > 0 {
			return nil
		}
		// the element that opened the region is closed
		if err := c.EncodeEndDocument(); err != nil {
			return err
		}
		e.w.Align()
		r := &(*e.regions)[c.region]
		r.Length = e.w.Offset() - r.Offset
		e.logf(c.id, "leave self-contained region %s at level %d offset %d length %d", r.Name, r.Level, e.w.Offset(), r.Length)
		e.child = nil
		e.pop()
		return nil
	}
	if len(e.stack) == 0 {
		return violation.Errorf("EncodeEndElement", "no open element")
	}
	if _, err := e.event(grammar.Event{Type: grammar.EndElement}); err != nil {
		return err
	}
	e.pop()
	return nil
}

// EncodeStartSelfContainedFragment makes the
// current element a self-contained region.
// It must directly follow EncodeStartElement
// (and any attributes and namespace declarations)
// of that element.
func (e *Encoder) EncodeStartSelfContainedFragment() error {
	if e.child != nil {
		return e.child.EncodeStartSelfContainedFragment()
	}
	if !e.opts.SelfContained {
		return violation.Errorf("EncodeStartSelfContainedFragment", "self-contained elements are not enabled")
	}
	if len(e.stack) == 0 {
		return violation.Errorf("EncodeStartSelfContainedFragment", "no open element")
	}
	if _, err := e.event(grammar.Event{Type: grammar.SelfContained}); err != nil {
		return err
	}
	e.w.Align()
	name := e.pos.Element
	*e.regions = append(*e.regions, Region{
		Name:   name,
		Level:  e.level + 1,
		Offset: e.w.Offset(),
		Length: -1,
	})
	child := newEncoder(e.w, e.fragment(), e.level+1, e.regions, len(*e.regions)-1)
	e.logf(child.id, "enter self-contained region %s at level %d offset %d", name, child.level, e.w.Offset())
	if err := child.EncodeStartDocument(); err != nil {
		return err
	}
	if err := child.EncodeStartElement(name); err != nil {
		return err
	}
	e.child = child
	return nil
}

func (e *Encoder) EncodeAttribute(n qname.Name, value string) error {
	if e.child != nil {
		return e.child.EncodeAttribute(n, value)
	}
	out, err := e.event(grammar.Event{Type: grammar.Attribute, Name: n})
	if err != nil {
		return err
	}
	ctx, err := e.name(&out, n)
	if err != nil {
		return fmt.Errorf("EncodeAttribute: %w", err)
	}
	if err := e.lexical.WriteValue(out.Datatype, ctx, e.w, e.values, value); err != nil {
		return fmt.Errorf("EncodeAttribute %s: %w", n, err)
	}
	return nil
}

func (e *Encoder) EncodeAttributeXsiNil(isNil bool) error {
	if e.child != nil {
		return e.child.EncodeAttributeXsiNil(isNil)
	}
	if _, err := e.event(grammar.Event{Type: grammar.AttributeXsiNil}); err != nil {
		return err
	}
	return e.w.EncodeBoolean(isNil)
}

func (e *Encoder) EncodeAttributeXsiType(typ qname.Name) error {
	if e.child != nil {
		return e.child.EncodeAttributeXsiType(typ)
	}
	if _, err := e.event(grammar.Event{Type: grammar.AttributeXsiType}); err != nil {
		return err
	}
	if _, err := e.names.EncodeName(e.w, typ); err != nil {
		return fmt.Errorf("EncodeAttributeXsiType: %w", err)
	}
	return nil
}

func (e *Encoder) EncodeNamespaceDeclaration(ns NamespaceDeclaration) error {
	if e.child != nil {
		return e.child.EncodeNamespaceDeclaration(ns)
	}
	if _, err := e.event(grammar.Event{Type: grammar.NamespaceDeclaration}); err != nil {
		return err
	}
	if _, err := e.names.EncodeURI(e.w, ns.URI); err != nil {
		return fmt.Errorf("EncodeNamespaceDeclaration: %w", err)
	}
	if err := e.w.EncodeString(ns.Prefix); err != nil {
		return err
	}
	return e.w.EncodeBoolean(ns.Local)
}

func (e *Encoder) EncodeCharacters(value string) error {
	if e.child != nil {
		return e.child.EncodeCharacters(value)
	}
	out, err := e.event(grammar.Event{Type: grammar.Characters})
	if err != nil {
		return err
	}
	var ctx *qname.Context
	if len(e.stack) > 0 {
		ctx = e.stack[len(e.stack)-1]
	}
	if err := e.lexical.WriteValue(out.Datatype, ctx, e.w, e.values, value); err != nil {
		return fmt.Errorf("EncodeCharacters: %w", err)
	}
	return nil
}

func (e *Encoder) strings(et grammar.EventType, lst ...string) error {
	if _, err := e.event(grammar.Event{Type: et}); err != nil {
		return err
	}
	for _, s := range lst {
		if err := e.w.EncodeString(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) EncodeDocType(dt DocType) error {
	if e.child != nil {
		return e.child.EncodeDocType(dt)
	}
	return e.strings(grammar.DocType, dt.Name, dt.Public, dt.System, dt.Text)
}

func (e *Encoder) EncodeEntityReference(name string) error {
	if e.child != nil {
		return e.child.EncodeEntityReference(name)
	}
	return e.strings(grammar.EntityReference, name)
}

func (e *Encoder) EncodeComment(text string) error {
	if e.child != nil {
		return e.child.EncodeComment(text)
	}
	return e.strings(grammar.Comment, text)
}

func (e *Encoder) EncodeProcessingInstruction(pi ProcessingInstruction) error {
	if e.child != nil {
		return e.child.EncodeProcessingInstruction(pi)
	}
	return e.strings(grammar.ProcessingInstruction, pi.Target, pi.Data)
}

// Close checks that every element and region
// is closed and returns the encoded body.
func (e *Encoder) Close() ([]byte, error) {
	if e.child != nil || len(e.stack) > 0 {
		return nil, violation.Errorf("Close", "%d elements still open", len(e.active().stack))
	}
	return slices.Clone(e.w.Bytes()), nil
}
