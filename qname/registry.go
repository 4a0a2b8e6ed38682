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

package qname

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/ints"
	"github.com/SnellerInc/exi/utf8"
	"github.com/SnellerInc/exi/violation"
)

// initial namespace and local-name entries
// present in every registry
var (
	initialURIs   = []string{"", XMLNamespace, XSINamespace}
	initialLocals = map[string][]string{
		XMLNamespace: {"base", "id", "lang", "space"},
		XSINamespace: {"nil", "type"},
	}
)

// Registry is the URI and local-name partition
// pair of a stream. Every Name it hands out a
// Context for keeps that Context for the lifetime
// of the registry.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	uris     []string
	uriIndex map[string]int
	locals   [][]*Context // by uri id, then local id
	byName   map[Name]*Context
}

// NewRegistry returns a registry holding the
// initial entries plus the declared names.
// Declared namespaces are added after the
// initial ones in lexical order, and each
// namespace's declared local names follow
// the initial ones in lexical order, so that
// any two registries built from the same set
// of names agree on every identifier.
func NewRegistry(declared ...Name) *Registry {
	r := &Registry{
		uriIndex: make(map[string]int),
		byName:   make(map[Name]*Context),
	}
	for _, u := range initialURIs {
		r.addURI(u)
		for _, l := range initialLocals[u] {
			r.addLocal(r.uriIndex[u], l)
		}
	}
	decl := slices.Clone(declared)
	sort.Slice(decl, func(i, j int) bool {
		if decl[i].URI != decl[j].URI {
			return decl[i].URI < decl[j].URI
		}
		return decl[i].Local < decl[j].Local
	})
	var extra []string
	for i := range decl {
		if _, ok := r.uriIndex[decl[i].URI]; !ok && !slices.Contains(extra, decl[i].URI) {
			extra = append(extra, decl[i].URI)
		}
	}
	for _, u := range extra {
		r.addURI(u)
	}
	for i := range decl {
		r.Resolve(decl[i])
	}
	return r
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		uris:     slices.Clone(r.uris),
		uriIndex: maps.Clone(r.uriIndex),
		byName:   maps.Clone(r.byName),
		locals:   make([][]*Context, len(r.locals)),
	}
	for i := range r.locals {
		c.locals[i] = slices.Clone(r.locals[i])
	}
	return c
}

func (r *Registry) addURI(uri string) int {
	id := len(r.uris)
	r.uris = append(r.uris, uri)
	r.uriIndex[uri] = id
	r.locals = append(r.locals, nil)
	return id
}

func (r *Registry) addLocal(uriID int, local string) *Context {
	c := &Context{
		Name:    Name{URI: r.uris[uriID], Local: local},
		URIID:   uriID,
		LocalID: len(r.locals[uriID]),
	}
	r.locals[uriID] = append(r.locals[uriID], c)
	r.byName[c.Name] = c
	return c
}

// Lookup returns the context for n, if any.
func (r *Registry) Lookup(n Name) (*Context, bool) {
	c, ok := r.byName[n]
	return c, ok
}

// Resolve returns the context for n,
// adding n to the registry if necessary.
// Resolve does not touch any channel, so
// both sides of a stream must resolve the
// same names in the same order.
func (r *Registry) Resolve(n Name) *Context {
	if c, ok := r.byName[n]; ok {
		return c
	}
	id, ok := r.uriIndex[n.URI]
	if !ok {
		id = r.addURI(n.URI)
	}
	return r.addLocal(id, n.Local)
}

// NumURIs returns the size of the URI partition.
func (r *Registry) NumURIs() int { return len(r.uris) }

// NumLocals returns the size of the local-name
// partition of uri.
func (r *Registry) NumLocals(uri string) int {
	id, ok := r.uriIndex[uri]
	if !ok {
		return 0
	}
	return len(r.locals[id])
}

// EncodeURI writes uri as a URI partition hit
// (index+1 in n bits) or as a miss (0 followed
// by the string), and returns its id.
func (r *Registry) EncodeURI(w channel.Encoder, uri string) (int, error) {
	n := ints.CodingLength(len(r.uris) + 1)
	if id, ok := r.uriIndex[uri]; ok {
		return id, w.EncodeNBitUnsignedInteger(uint64(id+1), n)
	}
	if err := w.EncodeNBitUnsignedInteger(0, n); err != nil {
		return 0, err
	}
	if err := w.EncodeString(uri); err != nil {
		return 0, err
	}
	return r.addURI(uri), nil
}

// DecodeURI is the inverse of EncodeURI.
func (r *Registry) DecodeURI(rd channel.Decoder) (int, error) {
	n := ints.CodingLength(len(r.uris) + 1)
	v, err := rd.DecodeNBitUnsignedInteger(n)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		uri, err := rd.DecodeString()
		if err != nil {
			return 0, err
		}
		if id, ok := r.uriIndex[uri]; ok {
			return 0, violation.Errorf("DecodeURI", "uri %q sent as a miss but already has id %d", uri, id)
		}
		return r.addURI(uri), nil
	}
	if v > uint64(len(r.uris)) {
		return 0, violation.Errorf("DecodeURI", "uri id %d out of range [0, %d)", v-1, len(r.uris))
	}
	return int(v - 1), nil
}

// URI returns the namespace with the given id.
func (r *Registry) URI(id int) (string, bool) {
	if id < 0 || id >= len(r.uris) {
		return "", false
	}
	return r.uris[id], true
}

func (r *Registry) encodeLocal(w channel.Encoder, uriID int, local string) (*Context, error) {
	if c, ok := r.byName[Name{URI: r.uris[uriID], Local: local}]; ok {
		if err := w.EncodeUnsignedInteger(0); err != nil {
			return nil, err
		}
		n := ints.CodingLength(len(r.locals[uriID]))
		return c, w.EncodeNBitUnsignedInteger(uint64(c.LocalID), n)
	}
	l, err := utf8.Count(local)
	if err != nil {
		return nil, err
	}
	if err := w.EncodeUnsignedInteger(uint64(l + 1)); err != nil {
		return nil, err
	}
	if err := w.EncodeStringOnly(local); err != nil {
		return nil, err
	}
	return r.addLocal(uriID, local), nil
}

func (r *Registry) decodeLocal(rd channel.Decoder, uriID int) (*Context, error) {
	v, err := rd.DecodeUnsignedInteger()
	if err != nil {
		return nil, err
	}
	if v == 0 {
		n := ints.CodingLength(len(r.locals[uriID]))
		id, err := rd.DecodeNBitUnsignedInteger(n)
		if err != nil {
			return nil, err
		}
		if id >= uint64(len(r.locals[uriID])) {
			return nil, violation.Errorf("DecodeName", "local-name id %d out of range [0, %d)", id, len(r.locals[uriID]))
		}
		return r.locals[uriID][id], nil
	}
	if v-1 > uint64(1<<31) {
		return nil, violation.Errorf("DecodeName", "local-name length %d", v-1)
	}
	local, err := rd.DecodeStringOnly(int(v - 1))
	if err != nil {
		return nil, err
	}
	n := Name{URI: r.uris[uriID], Local: local}
	if _, ok := r.byName[n]; ok {
		return nil, violation.Errorf("DecodeName", "name %s sent as a miss but already registered", n)
	}
	return r.addLocal(uriID, local), nil
}

// EncodeName writes n as a URI followed by a
// local name and returns its context.
func (r *Registry) EncodeName(w channel.Encoder, n Name) (*Context, error) {
	id, err := r.EncodeURI(w, n.URI)
	if err != nil {
		return nil, fmt.Errorf("qname.EncodeName: %w", err)
	}
	return r.encodeLocal(w, id, n.Local)
}

// DecodeName is the inverse of EncodeName.
func (r *Registry) DecodeName(rd channel.Decoder) (*Context, error) {
	id, err := r.DecodeURI(rd)
	if err != nil {
		return nil, err
	}
	return r.decodeLocal(rd, id)
}
