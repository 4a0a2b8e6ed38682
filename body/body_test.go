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
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/datatype"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

const shop = "urn:shop"

var (
	order = qname.Name{URI: shop, Local: "order"}
	item  = qname.Name{URI: shop, Local: "item"}
	qty   = qname.Name{URI: shop, Local: "qty"}
	price = qname.Name{URI: shop, Local: "price"}
	note  = qname.Name{Local: "note"}
	sku   = qname.Name{Local: "sku"}
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Elements = []grammar.Declaration{
		{Name: order},
		{Name: item},
		{Name: qty, Type: datatype.Integer},
	}
	opts.Attributes = []grammar.Declaration{
		{Name: sku, Type: datatype.HexBinary},
	}
	return opts
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// writeOrder writes an order with three items;
// each item is a self-contained region if sc is set.
func writeOrder(t *testing.T, e *Encoder, sc bool) {
	t.Helper()
	check(t, e.EncodeStartDocument())
	check(t, e.EncodeDocType(DocType{Name: "order", System: "order.dtd"}))
	check(t, e.EncodeStartElement(order))
	check(t, e.EncodeNamespaceDeclaration(NamespaceDeclaration{URI: shop, Prefix: "s", Local: true}))
	check(t, e.EncodeAttribute(sku, "CAFE"))
	check(t, e.EncodeComment("generated"))
	check(t, e.EncodeEntityReference("amp"))
	for i := 0; i < 3; i++ {
		check(t, e.EncodeStartElement(item))
		if sc {
			check(t, e.EncodeStartSelfContainedFragment())
		}
		check(t, e.EncodeAttribute(sku, "BEEF"))
		check(t, e.EncodeStartElement(qty))
		check(t, e.EncodeCharacters("12"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeStartElement(note))
		check(t, e.EncodeCharacters("fragile"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndElement())
	}
	check(t, e.EncodeStartElement(note))
	check(t, e.EncodeAttributeXsiNil(true))
	check(t, e.EncodeEndElement())
	check(t, e.EncodeProcessingInstruction(ProcessingInstruction{Target: "xml-stylesheet", Data: `href="a.xsl"`}))
	check(t, e.EncodeEndElement())
	check(t, e.EncodeEndDocument())
}

func orderEvents(sc bool) []string {
	lst := []string{
		"SD",
		`DT order "" "order.dtd" ""`,
		"SE {urn:shop}order",
		`NS s="urn:shop" local=true`,
		`AT sku="CAFE"`,
		`CM "generated"`,
		"ER amp",
	}
	for i := 0; i < 3; i++ {
		lst = append(lst, "SE {urn:shop}item")
		if sc {
			lst = append(lst, "SC", "SE {urn:shop}item")
		}
		lst = append(lst,
			`AT sku="BEEF"`,
			"SE {urn:shop}qty",
			`CH "12"`,
			"EE {urn:shop}qty",
			"SE note",
			`CH "fragile"`,
			"EE note",
			"EE {urn:shop}item",
		)
	}
	return append(lst,
		"SE note",
		fmt.Sprintf("AT %s=%q", qname.XsiNil, "true"),
		"EE note",
		`PI xml-stylesheet "href=\"a.xsl\""`,
		"EE {urn:shop}order",
		"ED",
	)
}

func encode(t *testing.T, opts *Options, fn func(e *Encoder)) ([]byte, *Encoder) {
	t.Helper()
	e, err := NewEncoder(channel.NewWriter(opts.Alignment), opts)
	check(t, err)
	fn(e)
	buf, err := e.Close()
	check(t, err)
	return buf, e
}

func dumpLines(t *testing.T, d Decoder) []string {
	t.Helper()
	var out bytes.Buffer
	if err := Dump(d, &out); err != nil {
		t.Logf("partial output:\n%s", out.String())
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func compareLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Logf("got:\n%s", strings.Join(got, "\n"))
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, align := range []channel.Alignment{channel.BitPacked, channel.ByteAligned} {
		for _, sc := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/sc=%v", align, sc), func(t *testing.T) {
				opts := testOptions()
				opts.Alignment = align
				opts.SelfContained = sc
				buf, e := encode(t, &opts, func(e *Encoder) { writeOrder(t, e, sc) })

				r := channel.NewReader(buf, align)
				d, err := NewDecoder(r, &opts)
				check(t, err)
				compareLines(t, dumpLines(t, d), orderEvents(sc))
				if r.Remaining() >= 8 {
					t.Errorf("%d bits left over", r.Remaining())
				}

				var base *InOrder
				if sc {
					base = d.(*SelfContained).Base()
				} else {
					base = d.(*InOrder)
				}
				lo0, hi0 := e.Table().Digest()
				lo1, hi1 := base.Table().Digest()
				if lo0 != lo1 || hi0 != hi1 {
					t.Error("encoder and decoder value tables differ")
				}
			})
		}
	}
}

func TestRegions(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	_, e := encode(t, &opts, func(e *Encoder) { writeOrder(t, e, true) })
	regions := e.Regions()
	if len(regions) != 3 {
		t.Fatalf("got %d regions", len(regions))
	}
	end := 0
	for i, r := range regions {
		if r.Name != item || r.Level != 1 {
			t.Errorf("region %d: %+v", i, r)
		}
		if r.Length <= 0 || r.Offset < end {
			t.Errorf("region %d: %+v overlaps or is empty", i, r)
		}
		end = r.Offset + r.Length
	}
	// a fresh table in every region
	if regions[0].Length != regions[1].Length {
		t.Errorf("identical regions coded differently: %+v", regions)
	}
}

// decode with Dump, except that every
// self-contained region is skipped
func skipAll(t *testing.T, d Decoder, r *channel.Reader, regions []Region) []string {
	var out []string
	for i := 0; ; {
		et, err := d.Next()
		check(t, err)
		if et == grammar.SelfContained {
			if i >= len(regions) {
				t.Fatal("more regions than recorded")
			}
			check(t, d.SkipSelfContained(int64(regions[i].Length)))
			if want := regions[i].Offset + regions[i].Length; r.BitOffset() != 8*want {
				t.Errorf("after skip: at bit %d, want byte %d", r.BitOffset(), want)
			}
			out = append(out, "skip")
			i++
			continue
		}
		line, err := decodeEvent(d, et)
		check(t, err)
		out = append(out, line)
		if et == grammar.EndDocument {
			return out
		}
	}
}

func TestSkip(t *testing.T) {
	for _, align := range []channel.Alignment{channel.BitPacked, channel.ByteAligned} {
		t.Run(align.String(), func(t *testing.T) {
			opts := testOptions()
			opts.Alignment = align
			opts.SelfContained = true
			buf, e := encode(t, &opts, func(e *Encoder) { writeOrder(t, e, true) })

			var want []string
			full := orderEvents(true)
			for i := 0; i < len(full); i++ {
				// the region is the rest of the item
				if full[i] == "SC" {
					want = append(want, "skip")
					for full[i] != "EE {urn:shop}item" {
						i++
					}
					continue
				}
				want = append(want, full[i])
			}

			r := channel.NewReader(buf, align)
			d, err := NewDecoder(r, &opts)
			check(t, err)
			compareLines(t, skipAll(t, d, r, e.Regions()), want)
			if r.Remaining() >= 8 {
				t.Errorf("%d bits left over", r.Remaining())
			}
		})
	}
}

func writeNested(t *testing.T, e *Encoder) {
	check(t, e.EncodeStartDocument())
	check(t, e.EncodeStartElement(order))
	check(t, e.EncodeStartSelfContainedFragment())
	check(t, e.EncodeStartElement(item))
	check(t, e.EncodeStartSelfContainedFragment())
	check(t, e.EncodeStartElement(qty))
	check(t, e.EncodeCharacters("7"))
	check(t, e.EncodeEndElement())
	check(t, e.EncodeEndElement())
	check(t, e.EncodeStartElement(note))
	check(t, e.EncodeCharacters("x"))
	check(t, e.EncodeEndElement())
	check(t, e.EncodeEndElement())
	check(t, e.EncodeEndDocument())
}

func TestNested(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	buf, e := encode(t, &opts, func(e *Encoder) { writeNested(t, e) })
	regions := e.Regions()
	if len(regions) != 2 {
		t.Fatalf("got regions %+v", regions)
	}
	outer, inner := regions[0], regions[1]
	if outer.Name != order || outer.Level != 1 || inner.Name != item || inner.Level != 2 {
		t.Errorf("got regions %+v", regions)
	}
	if inner.Offset <= outer.Offset || inner.Offset+inner.Length > outer.Offset+outer.Length {
		t.Errorf("inner region %+v not inside outer %+v", inner, outer)
	}

	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	compareLines(t, dumpLines(t, d), []string{
		"SD",
		"SE {urn:shop}order",
		"SC",
		"SE {urn:shop}order",
		"SE {urn:shop}item",
		"SC",
		"SE {urn:shop}item",
		"SE {urn:shop}qty",
		`CH "7"`,
		"EE {urn:shop}qty",
		"EE {urn:shop}item",
		"SE note",
		`CH "x"`,
		"EE note",
		"EE {urn:shop}order",
		"ED",
	})

	// skip the outer region
	r := channel.NewReader(buf, opts.Alignment)
	d, err = NewDecoder(r, &opts)
	check(t, err)
	compareLines(t, skipAll(t, d, r, regions[:1]), []string{
		"SD",
		"SE {urn:shop}order",
		"skip",
		"ED",
	})

	// skip only the inner region
	r = channel.NewReader(buf, opts.Alignment)
	d, err = NewDecoder(r, &opts)
	check(t, err)
	sc := d.(*SelfContained)
	var got []string
	for {
		et, err := d.Next()
		check(t, err)
		if et == grammar.SelfContained && sc.Level() == 1 {
			check(t, d.SkipSelfContained(int64(inner.Length)))
			got = append(got, "skip")
			continue
		}
		line, err := decodeEvent(d, et)
		check(t, err)
		got = append(got, line)
		if et == grammar.EndDocument {
			break
		}
	}
	compareLines(t, got, []string{
		"SD",
		"SE {urn:shop}order",
		"SC",
		"SE {urn:shop}order",
		"SE {urn:shop}item",
		"skip",
		"SE note",
		`CH "x"`,
		"EE note",
		"EE {urn:shop}order",
		"ED",
	})
}

func TestEndDocumentInRegion(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	buf, _ := encode(t, &opts, func(e *Encoder) { writeNested(t, e) })
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	for _, want := range []grammar.EventType{grammar.StartDocument, grammar.StartElement} {
		et, err := d.Next()
		check(t, err)
		if et != want {
			t.Fatalf("got %s want %s", et, want)
		}
		_, err = decodeEvent(d, et)
		check(t, err)
	}
	et, err := d.Next()
	check(t, err)
	if et != grammar.SelfContained {
		t.Fatalf("got %s", et)
	}
	check(t, d.DecodeStartSelfContainedFragment())
	if err := d.DecodeEndDocument(); !violation.Is(err) {
		t.Errorf("end document in region: %v", err)
	}

	e, err := NewEncoder(channel.NewWriter(opts.Alignment), &opts)
	check(t, err)
	check(t, e.EncodeStartDocument())
	check(t, e.EncodeStartElement(order))
	check(t, e.EncodeStartSelfContainedFragment())
	if err := e.EncodeEndDocument(); !violation.Is(err) {
		t.Errorf("encoding end document in region: %v", err)
	}
	if _, err := e.Close(); !violation.Is(err) {
		t.Errorf("closing with an open region: %v", err)
	}
}

// the element that opens a region is the
// first event the region's decoder returns
func TestEnterRegion(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	buf, _ := encode(t, &opts, func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(order))
		check(t, e.EncodeStartSelfContainedFragment())
		check(t, e.EncodeCharacters("x"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndDocument())
	})
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	sc := d.(*SelfContained)
	want := []struct {
		et    grammar.EventType
		level int
	}{
		{grammar.StartDocument, 0},
		{grammar.StartElement, 0},
		{grammar.SelfContained, 0},
		{grammar.StartElement, 1},
		{grammar.Characters, 1},
		{grammar.EndElement, 1},
		{grammar.EndDocument, 0},
	}
	for i := range want {
		et, err := d.Next()
		check(t, err)
		if et != want[i].et || sc.Level() != want[i].level {
			t.Fatalf("event %d: got %s at level %d, want %s at level %d", i, et, sc.Level(), want[i].et, want[i].level)
		}
		_, err = decodeEvent(d, et)
		check(t, err)
	}

	// decoding the start element without
	// calling Next first consumes it
	d, err = NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	for i := 0; i < 3; i++ {
		et, err := d.Next()
		check(t, err)
		_, err = decodeEvent(d, et)
		check(t, err)
	}
	ctx, err := d.DecodeStartElement()
	check(t, err)
	if ctx.Name != order {
		t.Errorf("got %s", ctx.Name)
	}
	et, err := d.Next()
	check(t, err)
	if et != grammar.Characters {
		t.Errorf("got %s after the start element", et)
	}
}

func TestRegionStartsWithElement(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	buf, _ := encode(t, &opts, func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(order))
		_, err := e.event(grammar.Event{Type: grammar.SelfContained})
		check(t, err)
		e.w.Align()
		// a region that opens with a comment
		pos := grammar.Position{Started: true, Fragment: true}
		_, err = e.oracle.EncodeEvent(e.w, &pos, &grammar.Event{Type: grammar.Comment})
		check(t, err)
		check(t, e.w.EncodeString("oops"))
		e.stack = e.stack[:0]
	})
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	for i := 0; i < 2; i++ {
		et, err := d.Next()
		check(t, err)
		_, err = decodeEvent(d, et)
		check(t, err)
	}
	et, err := d.Next()
	check(t, err)
	if et != grammar.SelfContained {
		t.Fatalf("got %s", et)
	}
	err = d.DecodeStartSelfContainedFragment()
	if !violation.Is(err) {
		t.Fatalf("got error %v", err)
	}
	if !strings.Contains(err.Error(), "CM") {
		t.Errorf("error %q does not name the event", err)
	}
}

func TestSkipPrecondition(t *testing.T) {
	opts := testOptions()
	opts.SelfContained = true
	buf, _ := encode(t, &opts, func(e *Encoder) { writeNested(t, e) })
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	if err := d.SkipSelfContained(1); !errors.Is(err, ErrNotSelfContained) {
		t.Errorf("skip before Next: %v", err)
	}
	et, err := d.Next()
	check(t, err)
	if et != grammar.StartDocument {
		t.Fatalf("got %s", et)
	}
	if err := d.SkipSelfContained(1); !errors.Is(err, ErrNotSelfContained) {
		t.Errorf("skip at start document: %v", err)
	}

	// without self-contained support
	opts.SelfContained = false
	d, err = NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	if _, ok := d.(*InOrder); !ok {
		t.Fatalf("got %T", d)
	}
	for i := 0; i < 2; i++ {
		et, err := d.Next()
		check(t, err)
		_, err = decodeEvent(d, et)
		check(t, err)
	}
	if et, _ := d.Next(); et != grammar.SelfContained {
		t.Fatalf("got %s", et)
	}
	if err := d.DecodeStartSelfContainedFragment(); !violation.Is(err) {
		t.Errorf("in-order decoder entered a region: %v", err)
	}
}

func TestEventMismatch(t *testing.T) {
	opts := testOptions()
	buf, _ := encode(t, &opts, func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(order))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndDocument())
	})
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	_, err = d.DecodeStartElement()
	var ee *EventError
	if !errors.As(err, &ee) || ee.Got != nil {
		t.Errorf("decode before Next: %v", err)
	}
	_, err = d.Next()
	check(t, err)
	_, err = d.DecodeCharacters()
	if !errors.As(err, &ee) || ee.Got == nil || *ee.Got != grammar.StartDocument {
		t.Errorf("characters at start document: %v", err)
	}
	if !violation.Is(err) {
		t.Errorf("%v is not a protocol violation", err)
	}
	// the event is still pending
	check(t, d.DecodeStartDocument())
	if err := d.DecodeStartDocument(); err == nil {
		t.Error("decoded the same event twice")
	}
}

func TestEncoderMisuse(t *testing.T) {
	opts := testOptions()
	e, err := NewEncoder(channel.NewWriter(opts.Alignment), &opts)
	check(t, err)
	if err := e.EncodeStartElement(order); !violation.Is(err) {
		t.Errorf("element before start document: %v", err)
	}
	e, err = NewEncoder(channel.NewWriter(opts.Alignment), &opts)
	check(t, err)
	check(t, e.EncodeStartDocument())
	if err := e.EncodeEndElement(); !violation.Is(err) {
		t.Errorf("end element at depth 0: %v", err)
	}
	check(t, e.EncodeStartElement(order))
	if err := e.EncodeStartSelfContainedFragment(); !violation.Is(err) {
		t.Errorf("region without self-contained support: %v", err)
	}
	if err := e.EncodeEndDocument(); !violation.Is(err) {
		t.Errorf("end document with an open element: %v", err)
	}
	if _, err := NewEncoder(channel.NewWriter(channel.ByteAligned), &opts); err == nil {
		t.Error("accepted a writer with the wrong alignment")
	}
}

func TestSharedStrings(t *testing.T) {
	doc := func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(note))
		check(t, e.EncodeCharacters("EUR"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndDocument())
	}
	plain := testOptions()
	shared := testOptions()
	shared.SharedStrings = []string{"USD", "EUR"}
	a, _ := encode(t, &plain, doc)
	b, e := encode(t, &shared, doc)
	if len(b) >= len(a) {
		t.Errorf("shared string not coded as a hit: %d bytes vs %d", len(b), len(a))
	}
	if e.Table().Size() != 2 {
		t.Errorf("table size %d", e.Table().Size())
	}
	d, err := NewDecoder(channel.NewReader(b, shared.Alignment), &shared)
	check(t, err)
	compareLines(t, dumpLines(t, d), []string{"SD", "SE note", `CH "EUR"`, "EE note", "ED"})
}

func TestEnumeration(t *testing.T) {
	opts := testOptions()
	opts.Enumeration = []string{"small", "large"}
	buf, e := encode(t, &opts, func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(note))
		check(t, e.EncodeCharacters("large"))
		check(t, e.EncodeCharacters("medium"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndDocument())
	})
	if e.Table().IsStringHit("large") {
		t.Error("enumerated value was admitted")
	}
	if !e.Table().IsStringHit("medium") {
		t.Error("literal was not admitted")
	}
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	compareLines(t, dumpLines(t, d), []string{"SD", "SE note", `CH "large"`, `CH "medium"`, "EE note", "ED"})
}

func TestRepresentations(t *testing.T) {
	doc := func(e *Encoder) {
		check(t, e.EncodeStartDocument())
		check(t, e.EncodeStartElement(price))
		check(t, e.EncodeCharacters("1250"))
		check(t, e.EncodeEndElement())
		check(t, e.EncodeEndDocument())
	}
	money := qname.Name{URI: shop, Local: "money"}
	remapped := testOptions()
	remapped.Elements = append(remapped.Elements, grammar.Declaration{Name: price, Type: datatype.Decimal, Schema: money})
	remapped.Representations = map[qname.Name]datatype.ID{money: datatype.Integer}
	direct := testOptions()
	direct.Elements = append(direct.Elements, grammar.Declaration{Name: price, Type: datatype.Integer})

	a, _ := encode(t, &remapped, doc)
	b, _ := encode(t, &direct, doc)
	if !bytes.Equal(a, b) {
		t.Logf("remapped: %x", a)
		t.Logf("direct:   %x", b)
		t.Error("remapped value not coded as an integer")
	}
	d, err := NewDecoder(channel.NewReader(a, remapped.Alignment), &remapped)
	check(t, err)
	compareLines(t, dumpLines(t, d), []string{"SD", "SE {urn:shop}price", `CH "1250"`, "EE {urn:shop}price", "ED"})
}

func TestLogging(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.SelfContained = true
	opts.Logger = log.New(&out, "", 0)
	buf, _ := encode(t, &opts, func(e *Encoder) { writeNested(t, e) })
	d, err := NewDecoder(channel.NewReader(buf, opts.Alignment), &opts)
	check(t, err)
	dumpLines(t, d)
	text := out.String()
	// two regions, entered and left by both sides
	if n := strings.Count(text, "enter self-contained region"); n != 4 {
		t.Errorf("%d enter lines in:\n%s", n, text)
	}
	if n := strings.Count(text, "leave self-contained region"); n != 4 {
		t.Errorf("%d leave lines in:\n%s", n, text)
	}
}

func TestRegistryPerCoder(t *testing.T) {
	opts := testOptions()
	s, err := newSetup(&opts)
	check(t, err)
	e := newEncoder(channel.NewWriter(opts.Alignment), s, 0, new([]Region), -1)
	check(t, e.EncodeStartDocument())
	check(t, e.EncodeStartElement(note))
	check(t, e.EncodeEndElement())
	check(t, e.EncodeEndDocument())
	if _, ok := e.names.Lookup(note); !ok {
		t.Fatal("undeclared name not learned")
	}
	if _, ok := s.newRegistry().Lookup(note); ok {
		t.Error("learned name leaked into a fresh registry")
	}
	for _, n := range []qname.Name{order, item, qty, sku} {
		if _, ok := s.newRegistry().Lookup(n); !ok {
			t.Errorf("declared name %s missing", n)
		}
	}
}
