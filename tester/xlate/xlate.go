/*
 * RamTest - Address to pin translation.
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

// Package xlate maps linear row/column addresses to the scattered port
// bit patterns of each socket wiring. The address pins of the socket are
// not contiguous on any port, so every family carries a fixed
// bit-remapping; one swapped bit here breaks every downstream test.
package xlate

// PortBits is one value per 8-bit port. Only address bus bits are ever
// set; control and data pins are merged in by the family drivers.
type PortBits struct {
	B uint8
	C uint8
	D uint8
}

// Or merges two port patterns.
func (p PortBits) Or(q PortBits) PortBits {
	return PortBits{p.B | q.B, p.C | q.C, p.D | q.D}
}

// Wiring is the translation for one socket layout. Lookup tables are
// split at LowBits: the low table is indexed by the low address bits,
// the high table by the remainder. The split keeps the inner column
// loop on a single small table while the row base is merged once.
type Wiring struct {
	Name    string
	Bits    []PortBits // Port bit driven by each address bit.
	LowBits int

	Mask PortBits // All port bits used by the address bus.

	low  []PortBits
	high []PortBits
}

// New builds the lookup tables for a wiring. Each address bit must map
// to exactly one port bit.
func New(name string, bits []PortBits, lowBits int) *Wiring {
	w := &Wiring{Name: name, Bits: bits, LowBits: lowBits}
	for _, b := range bits {
		w.Mask = w.Mask.Or(b)
	}
	w.low = buildTable(bits[:lowBits])
	w.high = buildTable(bits[lowBits:])
	return w
}

func buildTable(bits []PortBits) []PortBits {
	table := make([]PortBits, 1<<len(bits))
	for addr := range table {
		var p PortBits
		for i, b := range bits {
			if addr&(1<<i) != 0 {
				p = p.Or(b)
			}
		}
		table[addr] = p
	}
	return table
}

// Low returns the port pattern for the low address bits only.
func (w *Wiring) Low(addr uint16) PortBits {
	return w.low[addr&(1<<w.LowBits-1)]
}

// High returns the port pattern for the high address bits only.
func (w *Wiring) High(addr uint16) PortBits {
	return w.high[addr>>w.LowBits]
}

// Translate returns the full port pattern for a linear address.
func (w *Wiring) Translate(addr uint16) PortBits {
	return w.Low(addr).Or(w.High(addr))
}

// Reverse recovers the linear address from a port pattern. It walks the
// wiring bit by bit instead of using the tables, so it doubles as an
// independent check that the tables are a bijection.
func (w *Wiring) Reverse(p PortBits) uint16 {
	var addr uint16
	for i, b := range w.Bits {
		if p.B&b.B != 0 || p.C&b.C != 0 || p.D&b.D != 0 {
			addr |= 1 << i
		}
	}
	return addr
}

// AddrBits returns the width of the address bus.
func (w *Wiring) AddrBits() int {
	return len(w.Bits)
}
