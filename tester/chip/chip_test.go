/*
 * RamTest - Chip catalogue test cases.
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

import "testing"

// Two generations must produce identical tables.
func TestRandomDeterministic(t *testing.T) {
	var a, b RandomTable
	a.Generate()
	b.Generate()
	for i := 0; i < 256; i++ {
		if a[i] != b[i] {
			t.Errorf("Table entry %d differs got: %02x expected: %02x", i, b[i], a[i])
		}
		if a[i] > 0x0F {
			t.Errorf("Table entry %d not a nibble: %02x", i, a[i])
		}
	}
}

// Inverting twice must restore the table.
func TestRandomInvert(t *testing.T) {
	var a, b RandomTable
	a.Generate()
	b.Generate()
	b.Invert()
	for i := 0; i < 256; i++ {
		if b[i] != (a[i]^0x0F)&0x0F {
			t.Errorf("Invert entry %d got: %02x expected: %02x", i, b[i], (a[i]^0x0F)&0x0F)
		}
	}
	b.Invert()
	for i := 0; i < 256; i++ {
		if a[i] != b[i] {
			t.Errorf("Double invert entry %d got: %02x expected: %02x", i, b[i], a[i])
		}
	}
}

// Expected cell values are pure functions of (col,row).
func TestRandomCellLookup(t *testing.T) {
	var table RandomTable
	table.Generate()
	for row := uint16(0); row < 256; row += 17 {
		for col := uint16(0); col < 256; col += 13 {
			first := table.Nibble(col, row)
			if second := table.Nibble(col, row); second != first {
				t.Errorf("Nibble(%d,%d) unstable got: %02x expected: %02x", col, row, second, first)
			}
			if bit := table.Bit(col, row); bit > 1 {
				t.Errorf("Bit(%d,%d) got: %d expected: 0 or 1", col, row, bit)
			}
		}
	}
}

// Adjacent addresses should not share a table entry.
func TestMix8Spread(t *testing.T) {
	if Mix8(0, 0) == Mix8(1, 0) {
		t.Error("Mix8 collides on adjacent columns")
	}
	if Mix8(0, 0) == Mix8(0, 1) {
		t.Error("Mix8 collides on adjacent rows")
	}
	if Mix8(3, 7) != Mix8(3, 7) {
		t.Error("Mix8 not deterministic")
	}
}

func TestLookup(t *testing.T) {
	if ty := Lookup("4164"); ty != T4164 {
		t.Errorf("Lookup 4164 got: %d expected: %d", ty, T4164)
	}
	if ty := Lookup(" 514258 "); ty != T514258 {
		t.Errorf("Lookup 514258 got: %d expected: %d", ty, T514258)
	}
	if ty := Lookup("9999"); ty != Type(-1) {
		t.Errorf("Lookup 9999 got: %d expected: -1", ty)
	}
}

func TestName(t *testing.T) {
	if n := Name(T4532, LowerGood); n != "4532 (L)" {
		t.Errorf("Name got: %s expected: 4532 (L)", n)
	}
	if n := Name(T3732, UpperGood); n != "3732 (H)" {
		t.Errorf("Name got: %s expected: 3732 (H)", n)
	}
	if n := Name(T41256, FullGood); n != "41256" {
		t.Errorf("Name got: %s expected: 41256", n)
	}
}

func TestDefinitions(t *testing.T) {
	for ty := 0; ty < NumTypes; ty++ {
		def := Get(Type(ty))
		if def.Rows == 0 || def.Cols == 0 {
			t.Errorf("Type %s has empty geometry", def.Name)
		}
		if def.Flags&NibbleMode == 0 && def.Retention == 0 {
			t.Errorf("Type %s has no retention budget", def.Name)
		}
	}
}
