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

package grammar

import (
	"github.com/SnellerInc/exi/channel"
)

// Oracle decides the next event of a body.
// The body coders never decide event legality;
// they ask the oracle and then code whatever
// content the returned event carries.
type Oracle interface {
	// NextEvent reads the code of the next
	// event at pos from r.
	NextEvent(r channel.Decoder, pos *Position) (Event, error)
	// EncodeEvent writes the code of ev at pos
	// to w. It returns the event as it was
	// actually coded, which may be a generic
	// variant of ev.Type, with Datatype filled in.
	EncodeEvent(w channel.Encoder, pos *Position, ev *Event) (Event, error)
}
