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

// Package strtab implements the EXI string
// value table: a global partition shared by
// every qualified name plus one local partition
// per name, bounded by a ring of compact
// identifiers.
//
// Encoders and decoders keep their own Table and
// must apply identical admissions in identical
// order; the compact identifiers on the wire are
// only meaningful against that shared history.
package strtab

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/dchest/siphash"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/utf8"
)

// Options configures a Table.
type Options struct {
	// LocalPartitions enables the per-name
	// partitions and therefore local hits.
	LocalPartitions bool `json:"localValuePartitions"`
	// MaxLength is the largest value, in code
	// points, that is ever admitted. Negative
	// means unbounded.
	MaxLength int `json:"valueMaxLength"`
	// Capacity bounds the global partition.
	// Negative means unbounded and zero
	// disables admission entirely.
	Capacity int `json:"valuePartitionCapacity"`
}

// DefaultOptions returns the options of an
// unrestricted table with local partitions.
func DefaultOptions() Options {
	return Options{
		LocalPartitions: true,
		MaxLength:       -1,
		Capacity:        -1,
	}
}

// Entry is one admitted string value.
// Entries are never modified; eviction
// replaces them.
type Entry struct {
	Value       string
	Context     *qname.Context
	LocalIndex  int
	GlobalIndex int
}

// Table is a string value table.
// A Table is not safe for concurrent use.
type Table struct {
	opts   Options
	values map[string]*Entry       // live global partition
	slots  []*Entry                // global index -> entry
	local  map[qname.Name][]*Entry // nil marks a freed id
	shared []string                // re-admitted after Clear

	// globalID is the ring slot of the most
	// recent admission, or -1 before the first
	globalID int
}

// NewTable returns an empty table.
func NewTable(opts Options) *Table {
	t := &Table{
		opts:     opts,
		values:   make(map[string]*Entry),
		local:    make(map[qname.Name][]*Entry),
		globalID: -1,
	}
	if opts.Capacity > 0 {
		t.slots = make([]*Entry, opts.Capacity)
	}
	return t
}

// Options returns the options t was built with.
func (t *Table) Options() Options { return t.opts }

// AddValue admits value under ctx.
//
// Values longer than the configured maximum
// and admissions into a zero-capacity table
// are silently dropped. In a bounded table the
// admission reuses the next ring slot and, once
// the table is full, evicts that slot's previous
// owner from both partitions; the victim's local
// id stays permanently unassigned.
//
// The caller must have classified value as a
// miss: admitting a live value panics.
func (t *Table) AddValue(ctx *qname.Context, value string) {
	if utf8.Exceeds(value, t.opts.MaxLength) {
		return
	}
	switch {
	case t.opts.Capacity == 0:
		return
	case t.opts.Capacity < 0:
		t.mustMiss(value)
		e := &Entry{
			Value:       value,
			Context:     ctx,
			LocalIndex:  t.NumberOfStringValues(ctx),
			GlobalIndex: len(t.slots),
		}
		t.slots = append(t.slots, e)
		t.values[value] = e
		t.addLocal(e)
	default:
		t.mustMiss(value)
		t.globalID++
		if t.globalID == t.opts.Capacity {
			t.globalID = 0
		}
		e := &Entry{
			Value:       value,
			Context:     ctx,
			LocalIndex:  t.NumberOfStringValues(ctx),
			GlobalIndex: t.globalID,
		}
		if len(t.values) == t.opts.Capacity {
			old := t.slots[t.globalID]
			t.freeLocal(old)
			delete(t.values, old.Value)
		}
		t.values[value] = e
		t.addLocal(e)
		t.slots[t.globalID] = e
	}
}

func (t *Table) mustMiss(value string) {
	if _, ok := t.values[value]; ok {
		panic(fmt.Sprintf("strtab.AddValue: %q is already in the global partition", value))
	}
}

func (t *Table) addLocal(e *Entry) {
	if !t.opts.LocalPartitions || e.Context == nil {
		return
	}
	t.local[e.Context.Name] = append(t.local[e.Context.Name], e)
}

func (t *Table) freeLocal(e *Entry) {
	if !t.opts.LocalPartitions || e.Context == nil {
		return
	}
	lst := t.local[e.Context.Name]
	if e.LocalIndex >= len(lst) || lst[e.LocalIndex] != e {
		panic(fmt.Sprintf("strtab: local slot %d of %s does not hold %q", e.LocalIndex, e.Context, e.Value))
	}
	lst[e.LocalIndex] = nil
}

// Clear resets the table to its initial
// state, re-admitting any shared strings.
func (t *Table) Clear() {
	maps.Clear(t.values)
	maps.Clear(t.local)
	if t.opts.Capacity > 0 {
		for i := range t.slots {
			t.slots[i] = nil
		}
	} else {
		t.slots = t.slots[:0]
	}
	t.globalID = -1
	t.admitShared()
}

// SetSharedStrings pre-populates the global
// partition with strings that carry no local
// partition. The list is re-admitted after
// every Clear.
func (t *Table) SetSharedStrings(strs []string) {
	t.shared = slices.Clone(strs)
	t.admitShared()
}

func (t *Table) admitShared() {
	for _, s := range t.shared {
		if _, ok := t.values[s]; !ok {
			t.AddValue(nil, s)
		}
	}
}

// NumberOfStringValues returns the number of
// local ids ever assigned under ctx, including
// ids freed by eviction.
func (t *Table) NumberOfStringValues(ctx *qname.Context) int {
	if ctx == nil {
		return 0
	}
	return len(t.local[ctx.Name])
}

// Size returns the number of live values
// in the global partition.
func (t *Table) Size() int { return len(t.values) }

// Lookup returns the live entry for value.
func (t *Table) Lookup(value string) (*Entry, bool) {
	e, ok := t.values[value]
	return e, ok
}

// IsStringHit reports whether value is live.
func (t *Table) IsStringHit(value string) bool {
	_, ok := t.values[value]
	return ok
}

// Local returns the entry holding local id i
// under ctx, or false if the id was never
// assigned or has been freed.
func (t *Table) Local(ctx *qname.Context, i int) (*Entry, bool) {
	if ctx == nil {
		return nil, false
	}
	lst := t.local[ctx.Name]
	if i < 0 || i >= len(lst) || lst[i] == nil {
		return nil, false
	}
	return lst[i], true
}

// Global returns the entry holding global id i.
func (t *Table) Global(i int) (*Entry, bool) {
	if i < 0 || i >= len(t.slots) || t.slots[i] == nil {
		return nil, false
	}
	return t.slots[i], true
}

// GlobalID returns the ring slot of the most
// recent admission into a bounded table, or
// -1 if nothing has been admitted yet.
func (t *Table) GlobalID() int { return t.globalID }

// siphash keys for Digest; arbitrary but fixed
const (
	digestK0 = 0x736f6d6570736575
	digestK1 = 0x646f72616e646f6d
)

// Digest returns a fingerprint of the
// complete table state. Two tables that went
// through the same admissions have equal
// digests, which makes it cheap to check that
// an encoder and a decoder stayed in lockstep.
func (t *Table) Digest() (lo, hi uint64) {
	var buf []byte
	var tmp [binary.MaxVarintLen64]byte
	num := func(n int) {
		buf = append(buf, tmp[:binary.PutVarint(tmp[:], int64(n))]...)
	}
	str := func(s string) {
		num(len(s))
		buf = append(buf, s...)
	}
	num(t.globalID)
	for i, e := range t.slots {
		if e == nil {
			continue
		}
		num(i)
		str(e.Value)
		if e.Context != nil {
			str(e.Context.String())
		}
		num(e.LocalIndex)
	}
	names := maps.Keys(t.local)
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
	for _, n := range names {
		str(n.String())
		for _, e := range t.local[n] {
			if e == nil {
				num(-1)
			} else {
				num(e.GlobalIndex)
			}
		}
	}
	return siphash.Hash128(digestK0, digestK1, buf)
}
