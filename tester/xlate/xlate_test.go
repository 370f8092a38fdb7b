/*
 * RamTest - Address translation test cases.
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

package xlate

import "testing"

var wirings = []*Wiring{Pin16, Pin18, Pin18Alt, Pin20, Adapter}

// Reverse(Translate(a)) must be the identity over the full address range
// of every socket wiring.
func TestRoundTrip(t *testing.T) {
	for _, w := range wirings {
		size := uint32(1) << w.AddrBits()
		for addr := uint32(0); addr < size; addr++ {
			got := w.Reverse(w.Translate(uint16(addr)))
			if got != uint16(addr) {
				t.Errorf("%s round trip got: %d expected: %d", w.Name, got, addr)
			}
		}
	}
}

// Split tables must agree with a direct per bit computation.
func TestSplitTables(t *testing.T) {
	for _, w := range wirings {
		size := uint32(1) << w.AddrBits()
		for addr := uint32(0); addr < size; addr++ {
			var direct PortBits
			for i, b := range w.Bits {
				if addr&(1<<i) != 0 {
					direct = direct.Or(b)
				}
			}
			got := w.Translate(uint16(addr))
			if got != direct {
				t.Errorf("%s addr %d got: %+v expected: %+v", w.Name, addr, got, direct)
			}
		}
	}
}

// Every address bit must land on its own port bit.
func TestDistinctBits(t *testing.T) {
	for _, w := range wirings {
		for i, a := range w.Bits {
			bits := 0
			for _, m := range []uint8{a.B, a.C, a.D} {
				for ; m != 0; m &= m - 1 {
					bits++
				}
			}
			if bits != 1 {
				t.Errorf("%s address bit %d drives %d port bits expected: 1", w.Name, i, bits)
			}
			for j, b := range w.Bits[:i] {
				if a == b {
					t.Errorf("%s address bits %d and %d share a pin", w.Name, i, j)
				}
			}
		}
	}
}

// Spot check the 16-pin scramble against the wiring list.
func TestPin16Pattern(t *testing.T) {
	p := Pin16.Translate(0x0101) // A0 and A8
	expected := PortBits{C: 0x11}
	if p != expected {
		t.Errorf("Pin16 0x101 got: %+v expected: %+v", p, expected)
	}
	p = Pin16.Translate(0x00A2) // A1, A5, A7
	expected = PortBits{D: 0xC2}
	if p != expected {
		t.Errorf("Pin16 0xA2 got: %+v expected: %+v", p, expected)
	}
}
