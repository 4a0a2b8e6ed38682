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

// Package stream reads and writes complete EXI
// streams: an optional compression envelope
// around a header and a body.
package stream

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/SnellerInc/exi/body"
	"github.com/SnellerInc/exi/channel"
	"github.com/SnellerInc/exi/compr"
	"github.com/SnellerInc/exi/violation"
)

// Cookie is the optional first four bytes of a stream.
const Cookie = "$EXI"

var (
	// ErrOptionsInHeader is returned for streams
	// that carry their options in the header.
	ErrOptionsInHeader = errors.New("stream: options in header are not supported")
	// ErrVersion is returned for streams of a
	// format version other than 1.
	ErrVersion = errors.New("stream: unsupported format version")
)

// Header is the stream header.
type Header struct {
	// Cookie is set if the stream starts with Cookie.
	Cookie bool
	// Preview is set for preview format versions.
	Preview bool
	// Version is the format version, starting at 1.
	Version int
}

// Len returns the encoded size of h in bytes.
func (h *Header) Len() int {
	chunks := 1 + (h.Version-1)/15
	n := (4 + 4*chunks + 7) / 8
	if h.Cookie {
		n += len(Cookie)
	}
	return n
}

// ReadHeader reads the header at the start of buf.
// The header is always bit-packed and padded to
// a byte boundary, so the body starts at
// buf[h.Len():].
func ReadHeader(buf []byte) (Header, error) {
	var h Header
	if bytes.HasPrefix(buf, []byte(Cookie)) {
		h.Cookie = true
		buf = buf[len(Cookie):]
	}
	r := channel.NewReader(buf, channel.BitPacked)
	bits, err := r.DecodeNBitUnsignedInteger(2)
	if err != nil {
		return h, fmt.Errorf("stream.ReadHeader: %w", err)
	}
	if bits != 2 {
		return h, violation.Errorf("ReadHeader", "distinguishing bits %02b", bits)
	}
	present, err := r.DecodeBoolean()
	if err != nil {
		return h, fmt.Errorf("stream.ReadHeader: %w", err)
	}
	if present {
		return h, ErrOptionsInHeader
	}
	h.Preview, err = r.DecodeBoolean()
	if err != nil {
		return h, fmt.Errorf("stream.ReadHeader: %w", err)
	}
	h.Version = 1
	for {
		chunk, err := r.DecodeNBitUnsignedInteger(4)
		if err != nil {
			return h, fmt.Errorf("stream.ReadHeader: %w", err)
		}
		h.Version += int(chunk)
		if chunk != 15 {
			break
		}
	}
	if h.Preview || h.Version != 1 {
		return h, fmt.Errorf("%w: %d (preview %v)", ErrVersion, h.Version, h.Preview)
	}
	return h, nil
}

// AppendHeader appends the encoding of h to dst.
func AppendHeader(dst []byte, h Header) ([]byte, error) {
	if h.Version < 1 {
		return dst, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.Cookie {
		dst = append(dst, Cookie...)
	}
	w := channel.NewWriter(channel.BitPacked)
	w.EncodeNBitUnsignedInteger(2, 2)
	w.EncodeBoolean(false)
	w.EncodeBoolean(h.Preview)
	for v := h.Version - 1; ; v -= 15 {
		if v >= 15 {
			w.EncodeNBitUnsignedInteger(15, 4)
			continue
		}
		w.EncodeNBitUnsignedInteger(uint64(v), 4)
		break
	}
	return append(dst, w.Bytes()...), nil
}

// Decompress removes the compression envelope
// of src. The name "auto" detects the envelope,
// and "none" or the empty string means src is
// not compressed.
func Decompress(src []byte, name string) ([]byte, error) {
	switch name {
	case "", "none":
		return src, nil
	case "auto":
		name = compr.Sniff(src)
		if name == "" {
			return src, nil
		}
	}
	dec := compr.Decompression(name)
	if dec == nil {
		return nil, fmt.Errorf("stream: unknown compression %q", name)
	}
	return dec.Decompress(src, nil)
}

// Stream is an open stream.
type Stream struct {
	Header
	body.Decoder
	// Reader is the channel the body is read from.
	Reader *channel.Reader
}

// Open decompresses src with the named
// decompressor (see Decompress), reads the
// header and returns a decoder for the body.
func Open(src []byte, compression string, opts *body.Options) (*Stream, error) {
	buf, err := Decompress(src, compression)
	if err != nil {
		return nil, err
	}
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	r := channel.NewReader(buf[h.Len():], opts.Alignment)
	d, err := body.NewDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	return &Stream{Header: h, Decoder: d, Reader: r}, nil
}

// Encode writes a stream with header h whose
// body is written by fn, and compresses it
// with the named compressor unless compression
// is "none" or empty. Offsets of the returned
// regions are relative to the start of the body.
func Encode(h Header, compression string, opts *body.Options, fn func(e *body.Encoder) error) ([]byte, []body.Region, error) {
	var comp compr.Compressor
	if compression != "" && compression != "none" {
		comp = compr.Compression(compression)
		if comp == nil {
			return nil, nil, fmt.Errorf("stream: unknown compression %q", compression)
		}
	}
	out, err := AppendHeader(nil, h)
	if err != nil {
		return nil, nil, err
	}
	e, err := body.NewEncoder(channel.NewWriter(opts.Alignment), opts)
	if err != nil {
		return nil, nil, err
	}
	if err := fn(e); err != nil {
		return nil, nil, err
	}
	b, err := e.Close()
	if err != nil {
		return nil, nil, err
	}
	out = append(out, b...)
	if comp != nil {
		out = comp.Compress(out, nil)
	}
	return out, e.Regions(), nil
}
