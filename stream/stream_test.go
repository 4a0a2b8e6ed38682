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

package stream

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/SnellerInc/exi/body"
	"github.com/SnellerInc/exi/grammar"
	"github.com/SnellerInc/exi/qname"
	"github.com/SnellerInc/exi/violation"
)

func TestHeader(t *testing.T) {
	testcases := []struct {
		h    Header
		want []byte
	}{
		{Header{Version: 1}, []byte{0x80}},
		{Header{Cookie: true, Version: 1}, []byte{'$', 'E', 'X', 'I', 0x80}},
		{Header{Version: 2}, []byte{0x81}},
		{Header{Version: 17}, []byte{0x8f, 0x10}},
	}
	for i, tc := range testcases {
		got, err := AppendHeader(nil, tc.h)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, tc.want) {
			t.Logf("want: %x", tc.want)
			t.Logf("got:  %x", got)
			t.Errorf("case %d: header mismatch", i)
		}
		if tc.h.Len() != len(tc.want) {
			t.Errorf("case %d: Len() = %d, want %d", i, tc.h.Len(), len(tc.want))
		}
	}

	h, err := ReadHeader([]byte{'$', 'E', 'X', 'I', 0x80, 0xff})
	if err != nil || !h.Cookie || h.Version != 1 || h.Len() != 5 {
		t.Errorf("got %+v, %v", h, err)
	}
	if _, err := ReadHeader([]byte{0x81}); !errors.Is(err, ErrVersion) {
		t.Errorf("version 2: %v", err)
	}
	if _, err := ReadHeader([]byte{0x90}); !errors.Is(err, ErrVersion) {
		t.Errorf("preview: %v", err)
	}
	if _, err := ReadHeader([]byte{0xa0}); !errors.Is(err, ErrOptionsInHeader) {
		t.Errorf("options present: %v", err)
	}
	if _, err := ReadHeader([]byte{0x3c, 0x3f}); !violation.Is(err) {
		t.Errorf("xml text: %v", err)
	}
	if _, err := ReadHeader(nil); err == nil {
		t.Error("empty stream")
	}
	if _, err := AppendHeader(nil, Header{}); !errors.Is(err, ErrVersion) {
		t.Errorf("version 0: %v", err)
	}
}

var (
	doc   = qname.Name{Local: "doc"}
	entry = qname.Name{Local: "entry"}
)

func writeDoc(e *body.Encoder) error {
	steps := []func() error{
		e.EncodeStartDocument,
		func() error { return e.EncodeStartElement(doc) },
	}
	for i := 0; i < 4; i++ {
		steps = append(steps,
			func() error { return e.EncodeStartElement(entry) },
			e.EncodeStartSelfContainedFragment,
			func() error { return e.EncodeCharacters("value") },
			e.EncodeEndElement,
		)
	}
	steps = append(steps, e.EncodeEndElement, e.EncodeEndDocument)
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func TestOpen(t *testing.T) {
	testcases := []struct {
		comp, decomp string
		cookie       bool
	}{
		{"none", "none", false},
		{"", "auto", true},
		{"zstd", "auto", false},
		{"zstd", "zstd", true},
		{"s2", "s2", false},
	}
	opts := body.DefaultOptions()
	opts.SelfContained = true
	for i := range testcases {
		tc := &testcases[i]
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			src, regions, err := Encode(Header{Cookie: tc.cookie, Version: 1}, tc.comp, &opts, writeDoc)
			if err != nil {
				t.Fatal(err)
			}
			if len(regions) != 4 {
				t.Fatalf("got %d regions", len(regions))
			}
			s, err := Open(src, tc.decomp, &opts)
			if err != nil {
				t.Fatal(err)
			}
			if s.Cookie != tc.cookie {
				t.Errorf("cookie %v", s.Cookie)
			}
			// skip every other region
			entries, skipped := 0, 0
			for {
				et, err := s.Next()
				if err != nil {
					t.Fatal(err)
				}
				switch {
				case et == grammar.EndDocument:
					if err := s.DecodeEndDocument(); err != nil {
						t.Fatal(err)
					}
					if entries != 4 || skipped != 2 {
						t.Errorf("%d entries, %d skipped", entries, skipped)
					}
					return
				case et == grammar.SelfContained && entries%2 == 1:
					if err := s.SkipSelfContained(int64(regions[entries-1].Length)); err != nil {
						t.Fatal(err)
					}
					skipped++
				case et == grammar.SelfContained:
					if err := s.DecodeStartSelfContainedFragment(); err != nil {
						t.Fatal(err)
					}
				case et == grammar.StartDocument:
					err = s.DecodeStartDocument()
				case et.IsStartElement():
					var ctx *qname.Context
					ctx, err = s.DecodeStartElement()
					if err == nil && ctx.Name == entry && s.Decoder.(*body.SelfContained).Level() == 0 {
						entries++
					}
				case et.IsEndElement():
					_, err = s.DecodeEndElement()
				case et.IsCharacters():
					var v string
					v, err = s.DecodeCharacters()
					if err == nil && v != "value" {
						t.Errorf("got %q", v)
					}
				default:
					t.Fatalf("unexpected %s", et)
				}
				if err != nil {
					t.Fatal(err)
				}
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	opts := body.DefaultOptions()
	if _, err := Open([]byte{0x80}, "lz4", &opts); err == nil {
		t.Error("unknown compression")
	}
	if _, err := Open([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, "auto", &opts); err == nil {
		t.Error("corrupt zstd frame")
	}
	if _, err := Open([]byte{0xa0}, "none", &opts); !errors.Is(err, ErrOptionsInHeader) {
		t.Errorf("options in header: %v", err)
	}
	_, _, err := Encode(Header{Version: 1}, "lz4", &opts, writeDoc)
	if err == nil {
		t.Error("unknown compressor")
	}
	// self-contained regions are not enabled
	_, _, err = Encode(Header{Version: 1}, "none", &opts, writeDoc)
	if !violation.Is(err) {
		t.Errorf("got %v", err)
	}
}
