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

// Package violation defines the error kind
// reported when a stream or grammar is
// malformed or incompatible with the decoder.
//
// A protocol violation is never recoverable:
// the instance that returned it must be
// discarded together with its stream position.
package violation

import (
	"errors"
	"fmt"
)

// ErrProtocol is the sentinel matched by
// errors.Is for every protocol violation.
var ErrProtocol = errors.New("protocol violation")

// Error is a protocol violation raised
// by the operation Op.
type Error struct {
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exi.%s: %s: %s", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("exi.%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrProtocol.
func (e *Error) Is(target error) bool { return target == ErrProtocol }

// Errorf builds a protocol violation for op.
func Errorf(op, f string, args ...interface{}) error {
	return &Error{Op: op, Msg: fmt.Sprintf(f, args...)}
}

// Wrap builds a protocol violation for op
// caused by err.
func Wrap(op, msg string, err error) error {
	return &Error{Op: op, Msg: msg, Err: err}
}

// Is reports whether err is (or wraps)
// a protocol violation.
func Is(err error) bool {
	return errors.Is(err, ErrProtocol)
}
