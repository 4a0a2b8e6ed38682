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

// Package body implements the decoder and encoder
// of an EXI body, including self-contained regions.
package body

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/datatype"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/strtab"
)

// Options configures a body decoder or encoder.
// Both sides of a stream must use equal Options.
type Options struct {
	Alignment channel.Alignment `json:"alignment,omitempty"`
	// SelfContained enables self-contained regions.
	SelfContained bool `json:"selfContained,omitempty"`
	// Fragment marks the body as a fragment
	// rather than a document.
	Fragment bool `json:"fragment,omitempty"`

	// value table partitioning and bounds
	strtab.Options

	// SharedStrings are admitted to every
	// value table before the first value.
	SharedStrings []string `json:"sharedStrings,omitempty"`
	// Enumeration lists the strings coded by
	// their position instead of as literals.
	Enumeration []string `json:"enumeration,omitempty"`

	// Elements and Attributes declare the
	// names known to the default grammar.
	Elements   []grammar.Declaration `json:"elements,omitempty"`
	Attributes []grammar.Declaration `json:"attributes,omitempty"`
	// Representations maps a schema type to
	// the representation its values use instead.
	Representations map[qname.Name]datatype.ID `json:"representations,omitempty"`

	// Oracle replaces the grammar built from
	// Elements and Attributes.
	Oracle grammar.Oracle `json:"-"`
	// Logger, if non-nil, receives a line
	// for every self-contained region.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns bit-packed Options with
// unbounded, locally partitioned value tables.
func DefaultOptions() Options {
	return Options{
		Alignment: channel.BitPacked,
		Options:   strtab.DefaultOptions(),
	}
}

// LoadOptions reads YAML (or JSON) options
// from the file at path. Fields absent from
// the file keep their DefaultOptions value.
func LoadOptions(path string) (Options, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	return ParseOptions(buf)
}

// ParseOptions is like LoadOptions but
// reads from buf.
func ParseOptions(buf []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(buf, &opts); err != nil {
		return Options{}, fmt.Errorf("body.ParseOptions: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the options for values
// that no stream can be coded with.
func (o *Options) Validate() error {
	switch o.Alignment {
	case channel.BitPacked, channel.ByteAligned:
	default:
		return fmt.Errorf("body.Options: invalid alignment %d", o.Alignment)
	}
	if o.MaxLength < -1 {
		return fmt.Errorf("body.Options: valueMaxLength %d < -1", o.MaxLength)
	}
	if o.Capacity < -1 {
		return fmt.Errorf("body.Options: valuePartitionCapacity %d < -1", o.Capacity)
	}
	return nil
}

// setup is the immutable state shared by every
// coder built from the same Options.
type setup struct {
	opts     Options
	oracle   grammar.Oracle
	lexical *datatype.Lexical
	names   *qname.Registry // declared names; cloned per coder
	enum    *strtab.Enumeration
}

func newSetup(opts *Options) (*setup, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &setup{opts: *opts, oracle: opts.Oracle}
	if s.oracle == nil {
		s.oracle = grammar.NewFlat(opts.Elements, opts.Attributes)
	}
	var declared []qname.Name
	if n, ok := s.oracle.(interface{ Names() []qname.Name }); ok {
		declared = n.Names()
	}
	s.names = qname.NewRegistry(declared...)
	var dtr map[qname.Name]datatype.Datatype
	if len(opts.Representations) > 0 {
		dtr = make(map[qname.Name]datatype.Datatype, len(opts.Representations))
		for k, id := range opts.Representations {
			dtr[k] = datatype.Builtin(id)
		}
	}
	s.lexical = datatype.NewLexical(dtr)
	if len(opts.Enumeration) > 0 {
		s.enum = strtab.NewEnumeration(opts.Enumeration...)
	}
	return s, nil
}

// fragment returns the setup of a self-contained
// region nested in a body coded with s.
func (s *setup) fragment() *setup {
	c := *s
	c.opts.Fragment = true
	return &c
}

func (s *setup) newTable() *strtab.Table {
	t := strtab.NewTable(s.opts.Options)
	if len(s.opts.SharedStrings) > 0 {
		t.SetSharedStrings(s.opts.SharedStrings)
	}
	return t
}

func (s *setup) newRegistry() *qname.Registry {
	return s.names.Clone()
}

func (s *setup) logf(id uuid.UUID, f string, args ...interface{}) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("exi %s: "+f, append([]interface{}{id}, args...)...)
	}
}
