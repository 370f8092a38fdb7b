/*
 * RamTest - Pseudo-random pattern table.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package chip

import "math/bits"

// RandomTable holds the 256 nibble pattern used by test patterns 4 and 5.
// Verification recomputes expected values from (col,row) rather than
// storing them, so the table must regenerate identically every run.
type RandomTable [256]uint8

// Generate fills the table from a fixed 16-bit Galois LFSR. Each entry
// gets its own seed so single-entry regeneration stays possible.
func (t *RandomTable) Generate() {
	for i := 0; i < 256; i++ {
		lfsr := 0xACE1 ^ uint16(i*61)
		for n := 0; n < 8; n++ {
			lfsr = (lfsr >> 1) ^ (-(lfsr & 1) & 0xB400)
		}
		t[i] = uint8((lfsr ^ (lfsr >> 8)) & 0x0F)
	}
}

// Invert flips the low nibble of every entry. Applying it twice restores
// the original table, which is how pattern 5 reuses pattern 4's data.
func (t *RandomTable) Invert() {
	for i := 0; i < 256; i++ {
		t[i] = (t[i] & 0x0F) ^ 0x0F
	}
}

// Nibble returns the expected pattern nibble for a cell.
func (t *RandomTable) Nibble(col, row uint16) uint8 {
	return t[Mix8(col, row)]
}

// Bit returns the expected pattern bit for a cell on single-bit chips
// tested through the adapter path. The 1K entry window wraps across the
// table with four bits packed per entry.
func (t *RandomTable) Bit(col, row uint16) uint8 {
	idx := (col + (row << 4)) & 0x3FF
	return (t[idx>>2] >> (idx & 3)) & 1
}

// Mix8 folds a column and row index into a single table index. Small
// address deltas must land on different entries or adjacent cells would
// share pattern data and mask coupling faults.
func Mix8(col, row uint16) uint8 {
	v := col ^ (row + (row >> 4))
	return uint8(v ^ (v >> 8))
}

// RotateLeft steps the alternating patterns one bit per column.
func RotateLeft(v uint8) uint8 {
	return bits.RotateLeft8(v, 1)
}
