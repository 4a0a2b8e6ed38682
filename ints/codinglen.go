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

package ints

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// CodingLength returns the number of bits
// required to address n distinct values,
// i.e. ceil(log2(n)). Counts of zero or one
// need no bits at all.
func CodingLength[T constraints.Integer](n T) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n - 1))
}

// MaxNBit returns the largest value that fits
// in an n-bit unsigned field.
func MaxNBit(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}
