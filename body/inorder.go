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
	"strconv"

	"github.com/google/uuid"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/strtab"
	"github.com/SnellerInc/exi/violation"
)

// InOrder decodes a body event by event
// in stream order.
type InOrder struct {
	*setup
	id    uuid.UUID
	level int

	r      *channel.Reader
	names  *qname.Registry
	table  *strtab.Table
	values *strtab.Decoder

	pos     grammar.Position
	stack   []*qname.Context
	pending grammar.Event
	waiting bool // pending is set and not yet decoded
	primed  bool // pending was read ahead; Next returns it once

	elemName  qname.Name
	attrName  qname.Name
	attrValue string
	prefixes  []NamespaceDeclaration
}

var _ Decoder = (*InOrder)(nil)

func newInOrder(r *channel.Reader, s *setup, level int) *InOrder {
	d := &InOrder{
		setup: s,
		id:    uuid.New(),
		level: level,
		r:     r,
		names: s.newRegistry(),
		table: s.newTable(),
	}
	d.values = strtab.NewDecoder(d.table)
	if s.enum != nil {
		d.values.SetGrammarStrings(s.enum)
	}
	d.pos.Fragment = s.opts.Fragment
	return d
}

// ID returns the identifier of the decoder
// used in log lines.
func (d *InOrder) ID() uuid.UUID { return d.id }

// Table returns the value table of the decoder.
func (d *InOrder) Table() *strtab.Table { return d.table }

// Names returns the name registry of the decoder.
func (d *InOrder) Names() *qname.Registry { return d.names }

// Depth returns the number of open elements.
func (d *InOrder) Depth() int { return len(d.stack) }

func (d *InOrder) Next() (grammar.EventType, error) {
	if d.primed {
		d.primed = false
		return d.pending.Type, nil
	}
	ev, err := d.oracle.NextEvent(d.r, &d.pos)
	if err != nil {
		return 0, fmt.Errorf("Next: %w", err)
	}
	d.pending = ev
	d.waiting = true
	return ev.Type, nil
}

// take consumes the pending event if
// match accepts its type.
func (d *InOrder) take(fn string, match func(grammar.EventType) bool) (*grammar.Event, error) {
	if !d.waiting {
		return nil, &EventError{Func: fn}
	}
	if !match(d.pending.Type) {
		got := d.pending.Type
		return nil, &EventError{Func: fn, Got: &got}
	}
	d.waiting, d.primed = false, false
	return &d.pending, nil
}

func is(want grammar.EventType) func(grammar.EventType) bool {
	return func(et grammar.EventType) bool { return et == want }
}

func (d *InOrder) push(ctx *qname.Context) {
	d.stack = append(d.stack, ctx)
	d.pos.Depth = len(d.stack)
	d.pos.Element = ctx.Name
	d.elemName = ctx.Name
	d.prefixes = d.prefixes[:0]
}

func (d *InOrder) pop() (*qname.Context, error) {
	if len(d.stack) == 0 {
		return nil, violation.Errorf("DecodeEndElement", "no open element")
	}
	ctx := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	d.pos.Depth = len(d.stack)
	d.pos.Element = qname.Name{}
	if len(d.stack) > 0 {
		d.pos.Element = d.stack[len(d.stack)-1].Name
	}
	d.elemName = ctx.Name
	return ctx, nil
}

func (d *InOrder) top() *qname.Context {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

func (d *InOrder) DecodeStartDocument() error {
	if _, err := d.take("DecodeStartDocument", is(grammar.StartDocument)); err != nil {
		return err
	}
	d.table.Clear()
	d.stack = d.stack[:0]
	d.pos = grammar.Position{Started: true, Fragment: d.opts.Fragment}
	return nil
}

func (d *InOrder) DecodeEndDocument() error {
	if _, err := d.take("DecodeEndDocument", is(grammar.EndDocument)); err != nil {
		return err
	}
	if len(d.stack) > 0 {
		return violation.Errorf("DecodeEndDocument", "%d elements still open", len(d.stack))
	}
	return nil
}

func (d *InOrder) DecodeStartElement() (*qname.Context, error) {
	ev, err := d.take("DecodeStartElement", grammar.EventType.IsStartElement)
	if err != nil {
		return nil, err
	}
	var ctx *qname.Context
	if ev.NamedOnWire() {
		ctx, err = d.names.DecodeName(d.r)
		if err != nil {
			return nil, fmt.Errorf("DecodeStartElement: %w", err)
		}
	} else {
		ctx = d.names.Resolve(ev.Name)
	}
	d.push(ctx)
	return ctx, nil
}

func (d *InOrder) DecodeEndElement() (*qname.Context, error) {
	if _, err := d.take("DecodeEndElement", grammar.EventType.IsEndElement); err != nil {
		return nil, err
	}
	return d.pop()
}

// DecodeStartSelfContainedFragment always fails;
// an InOrder decoder has no self-contained support.
func (d *InOrder) DecodeStartSelfContainedFragment() error {
	if _, err := d.take("DecodeStartSelfContainedFragment", is(grammar.SelfContained)); err != nil {
		return err
	}
	return violation.Errorf("DecodeStartSelfContainedFragment", "self-contained elements are not enabled")
}

// SkipSelfContained always fails;
// an InOrder decoder has no self-contained support.
func (d *InOrder) SkipSelfContained(n int64) error {
	if !d.waiting || d.pending.Type != grammar.SelfContained {
		return ErrNotSelfContained
	}
	return violation.Errorf("SkipSelfContained", "self-contained elements are not enabled")
}

func (d *InOrder) DecodeAttribute() (*qname.Context, error) {
	ev, err := d.take("DecodeAttribute", grammar.EventType.IsAttribute)
	if err != nil {
		return nil, err
	}
	var ctx *qname.Context
	if ev.NamedOnWire() {
		ctx, err = d.names.DecodeName(d.r)
		if err != nil {
			return nil, fmt.Errorf("DecodeAttribute: %w", err)
		}
	} else {
		ctx = d.names.Resolve(ev.Name)
	}
	v, err := d.lexical.ReadValue(ev.Datatype, ctx, d.r, d.values)
	if err != nil {
		return nil, fmt.Errorf("DecodeAttribute %s: %w", ctx.Name, err)
	}
	d.attrName, d.attrValue = ctx.Name, v
	return ctx, nil
}

func (d *InOrder) DecodeAttributeXsiNil() (*qname.Context, error) {
	if _, err := d.take("DecodeAttributeXsiNil", is(grammar.AttributeXsiNil)); err != nil {
		return nil, err
	}
	isNil, err := d.r.DecodeBoolean()
	if err != nil {
		return nil, fmt.Errorf("DecodeAttributeXsiNil: %w", err)
	}
	ctx := d.names.Resolve(qname.XsiNil)
	d.attrName, d.attrValue = ctx.Name, strconv.FormatBool(isNil)
	return ctx, nil
}

func (d *InOrder) DecodeAttributeXsiType() (*qname.Context, error) {
	if _, err := d.take("DecodeAttributeXsiType", is(grammar.AttributeXsiType)); err != nil {
		return nil, err
	}
	typ, err := d.names.DecodeName(d.r)
	if err != nil {
		return nil, fmt.Errorf("DecodeAttributeXsiType: %w", err)
	}
	ctx := d.names.Resolve(qname.XsiType)
	d.attrName, d.attrValue = ctx.Name, typ.Name.String()
	return ctx, nil
}

func (d *InOrder) DecodeNamespaceDeclaration() (NamespaceDeclaration, error) {
	if _, err := d.take("DecodeNamespaceDeclaration", is(grammar.NamespaceDeclaration)); err != nil {
		return NamespaceDeclaration{}, err
	}
	id, err := d.names.DecodeURI(d.r)
	if err != nil {
		return NamespaceDeclaration{}, fmt.Errorf("DecodeNamespaceDeclaration: %w", err)
	}
	uri, _ := d.names.URI(id)
	prefix, err := d.r.DecodeString()
	if err != nil {
		return NamespaceDeclaration{}, fmt.Errorf("DecodeNamespaceDeclaration: %w", err)
	}
	local, err := d.r.DecodeBoolean()
	if err != nil {
		return NamespaceDeclaration{}, fmt.Errorf("DecodeNamespaceDeclaration: %w", err)
	}
	ns := NamespaceDeclaration{URI: uri, Prefix: prefix, Local: local}
	d.prefixes = append(d.prefixes, ns)
	return ns, nil
}

func (d *InOrder) DecodeCharacters() (string, error) {
	ev, err := d.take("DecodeCharacters", grammar.EventType.IsCharacters)
	if err != nil {
		return "", err
	}
	v, err := d.lexical.ReadValue(ev.Datatype, d.top(), d.r, d.values)
	if err != nil {
		return "", fmt.Errorf("DecodeCharacters: %w", err)
	}
	return v, nil
}

// strings reads len(dst) length-prefixed strings.
func (d *InOrder) strings(fn string, dst ...*string) error {
	for _, p := range dst {
		s, err := d.r.DecodeString()
		if err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		*p = s
	}
	return nil
}

func (d *InOrder) DecodeDocType() (DocType, error) {
	var dt DocType
	if _, err := d.take("DecodeDocType", is(grammar.DocType)); err != nil {
		return dt, err
	}
	err := d.strings("DecodeDocType", &dt.Name, &dt.Public, &dt.System, &dt.Text)
	return dt, err
}

func (d *InOrder) DecodeEntityReference() (string, error) {
	var name string
	if _, err := d.take("DecodeEntityReference", is(grammar.EntityReference)); err != nil {
		return "", err
	}
	err := d.strings("DecodeEntityReference", &name)
	return name, err
}

func (d *InOrder) DecodeComment() (string, error) {
	var text string
	if _, err := d.take("DecodeComment", is(grammar.Comment)); err != nil {
		return "", err
	}
	err := d.strings("DecodeComment", &text)
	return text, err
}

func (d *InOrder) DecodeProcessingInstruction() (ProcessingInstruction, error) {
	var pi ProcessingInstruction
	if _, err := d.take("DecodeProcessingInstruction", is(grammar.ProcessingInstruction)); err != nil {
		return pi, err
	}
	err := d.strings("DecodeProcessingInstruction", &pi.Target, &pi.Data)
	return pi, err
}

func (d *InOrder) ElementName() qname.Name   { return d.elemName }
func (d *InOrder) AttributeName() qname.Name { return d.attrName }
func (d *InOrder) AttributeValue() string    { return d.attrValue }

func (d *InOrder) DeclaredPrefixDeclarations() []NamespaceDeclaration {
	return d.prefixes
}
