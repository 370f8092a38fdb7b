/*
 * RamTest - 16-pin socket driver (4164, 41256, 41257, 4816, 4532, 3732).
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

package dram

import (
	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/fault"
	"github.com/rcornwell/ramtest/tester/xlate"
)

// 16-pin socket control and data lines.
var (
	ras16  = bus.Line{Port: bus.PortB, Mask: 0x02}
	we16   = bus.Line{Port: bus.PortB, Mask: 0x08}
	cas16  = bus.Line{Port: bus.PortC, Mask: 0x08}
	din16  = bus.Line{Port: bus.PortC, Mask: 0x02}
	dout16 = bus.Line{Port: bus.PortC, Mask: 0x04}
)

// test16 runs the full sequence for a chip in the 16-pin socket.
func (s *Session) test16() error {
	// A3, A4, A6 plus RAS and WE on port B, address and strobes idle.
	s.bus.SetDDR(bus.PortB, 0x3F)
	s.out(bus.PortB, 0x2A)
	// A0, A8, Din, CAS out, Dout in.
	s.bus.SetDDR(bus.PortC, 0x1B)
	s.out(bus.PortC, 0x08)
	// A1, A2, A5, A7 on port D.
	s.bus.SetDDR(bus.PortD, 0xC3)
	s.out(bus.PortD, 0x00)

	s.warmup(ras16)

	if !s.present16() {
		return fault.New(0, fault.NoChip)
	}
	if err := s.sense16(); err != nil {
		return err
	}
	if s.typ == chip.T41256 {
		s.detect41257()
	}
	if s.typ == chip.T4164 {
		// A defective column half only shows up in the pattern runs;
		// the 3732 call is deferred until those finish.
		s.rep.Detected("4164/3732(?)")
	} else {
		s.rep.Detected(chip.Get(s.typ).Name)
	}
	if s.senseOnly {
		return nil
	}
	if err := s.checkAddressing16(); err != nil {
		return err
	}
	if err := s.patterns16(); err != nil {
		return err
	}
	if s.typ == chip.T41256 {
		return s.refreshTest16()
	}
	return nil
}

// rasRow16 precharges RAS, puts the row on the bus and latches it.
func (s *Session) rasRow16(row uint16) {
	s.high(ras16)
	s.setAddr(xlate.Pin16, row)
	s.low(ras16)
}

// write16 stores one bit with a full RAS/CAS cycle.
func (s *Session) write16(row, col uint16, data uint8) {
	s.rasRow16(row)
	s.low(we16)
	s.setAddr(xlate.Pin16, col)
	if data != 0 {
		s.high(din16)
	} else {
		s.low(din16)
	}
	s.low(cas16)
	s.high(cas16)
	s.high(we16)
	s.high(ras16)
}

// read16 fetches one bit with a full RAS/CAS cycle. Din is released
// first; on shared Din/Dout parts a driven Din fights the output.
func (s *Session) read16(row, col uint16) uint8 {
	s.low(din16)
	s.rasRow16(row)
	s.setAddr(xlate.Pin16, col)
	s.low(cas16)
	v := s.pin(dout16)
	s.high(cas16)
	s.high(ras16)
	return v
}

// present16 checks that something in the socket stores data at all.
func (s *Session) present16() bool {
	s.write16(0, 0, 0)
	s.write16(1, 0, 1)

	r0 := s.read16(0, 0)
	r1 := s.read16(1, 0)
	r2 := s.read16(0, 0) // still zero after the second write
	return r0 == 0 && r1 == 1 && r2 == 0
}

// sense16 works out what is in the socket by probing address lines.
//
// A8 first: if row 256 is distinct from row 0 the chip has nine row
// bits and is a 41256. Then row A7: an aliased row 128 means a 128 row
// part, either a 4816 (columns alias too) or a TMS4532, a half good
// 4164 die with the dead row half strapped away. Everything else is
// called 4164 for now; the OKI 3732 column split variant can only be
// told apart by the pattern runs.
func (s *Session) sense16() error {
	s.high(cas16)

	s.write16(0, 0, 0)
	if s.read16(0, 0) != 0 {
		// Cell (0,0) may sit in a dead half. Try another column
		// before writing the chip off.
		s.write16(0, 192, 0)
		if s.read16(0, 192) != 0 {
			return fault.New(0, fault.NoChip)
		}
	}

	s.write16(0, 0, 0)
	s.write16(256, 0, 1)
	if s.read16(0, 0) == 0 {
		s.typ = chip.T41256
		return nil
	}

	s.write16(0, 0, 0)
	s.write16(128, 0, 1)
	if s.read16(0, 0) != 0 {
		s.write16(0, 0, 0)
		s.write16(0, 128, 1)
		if s.read16(0, 0) == 0 {
			s.typ = chip.T4532
			s.half = chip.LowerGood
		} else {
			s.typ = chip.T4816
		}
		return nil
	}

	s.typ = chip.T4164
	return nil
}

// detect41257 tells a nibble mode 41257 from a plain 41256. Cols 0-3
// are cleared, then 1,0,1,0 is written through four CAS toggles with
// the address held at zero. A 41257 advances its nibble counter and
// reads the pattern back; a 41256 hits column 0 four times and reads
// all zeros.
func (s *Session) detect41257() {
	// A8 is the nibble select, clear every row/col A8 combination.
	s.write16(0, 0, 0)
	s.write16(0, 256, 0)
	s.write16(256, 0, 0)
	s.write16(256, 256, 0)

	s.bus.Lock()
	s.rasRow16(0)
	s.low(we16)
	for _, d := range [4]uint8{1, 0, 1, 0} {
		if d != 0 {
			s.high(din16)
		} else {
			s.low(din16)
		}
		s.low(cas16)
		s.high(cas16)
	}
	s.high(we16)
	s.high(ras16)

	s.low(din16)
	s.rasRow16(0)
	var got [4]uint8
	for i := range got {
		s.low(cas16)
		got[i] = s.pin(dout16)
		s.high(cas16)
	}
	s.high(ras16)
	s.bus.Unlock()

	if got == [4]uint8{1, 0, 1, 0} {
		s.typ = chip.T41257
	}
}

// checkAddressing16 walks a one bit across the row then the column
// address lines. Column failures report as bit+16.
func (s *Session) checkAddressing16() error {
	def := chip.Get(s.typ)
	rowBits := addrBits(def.Rows)
	colBits := addrBits(def.Cols)

	s.high(cas16)
	s.high(ras16)

	for b := 0; b < rowBits; b++ {
		peer := uint16(1) << b
		s.write16(0, 0, 0)
		s.write16(peer, 0, 1)
		base := s.read16(0, 0)
		got := s.read16(peer, 0)
		// The 4532 aliases row A7 by design.
		if s.typ == chip.T4532 && b == 7 {
			continue
		}
		if base != 0 || got != 1 {
			return fault.New(uint8(b), fault.AddressLine)
		}
	}

	testRow := uint16(def.Rows >> 1)
	for b := 0; b < colBits; b++ {
		peer := uint16(1) << b
		s.write16(testRow, 0, 0)
		s.write16(testRow, peer, 1)
		if s.read16(testRow, 0) != 0 {
			return fault.New(uint8(b)+16, fault.AddressLine)
		}
		if s.read16(testRow, peer) != 1 {
			return fault.New(uint8(b)+16, fault.AddressLine)
		}
	}
	return nil
}

// patterns16 runs the six data patterns. Patterns 0-3 verify each row
// right after writing it; 4-5 stagger the read back by delayRows rows
// so cells must hold their data across the retention window. Errors
// confined to one half of a 4164 class chip are collected instead of
// failing so the half good variants can be named at the end.
func (s *Session) patterns16() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)
	nibble := def.Flags&chip.NibbleMode != 0

	s.lowerErr = 0
	s.upperErr = 0
	for pat := 0; pat < 4; pat++ {
		for row := uint16(0); row < rows; row++ {
			if err := s.writeRow16(row, pat); err != nil {
				return err
			}
			if err := s.checkRow16(row, pat, fault.Pattern); err != nil {
				return err
			}
		}
	}

	if nibble {
		// A8 selects the nibble, leaving half the rows addressable.
		rows /= 2
	}
	for pat := 4; pat <= 5; pat++ {
		if pat == 5 {
			s.table.Invert()
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.retentionRow16(row, rows, pat); err != nil {
				return err
			}
		}
	}

	// Half good naming. A 4164 with errors on exactly one column half
	// is an OKI 3732; a 4532 sensed earlier gets its live half from
	// the row error split.
	switch {
	case s.typ == chip.T4164 && s.lowerErr&0x02 != s.upperErr&0x02:
		s.typ = chip.T3732
		if s.lowerErr&0x02 != 0 {
			s.half = chip.UpperGood
		} else {
			s.half = chip.LowerGood
		}
	case s.typ == chip.T4532:
		if s.lowerErr&0x01 != 0 && s.upperErr&0x01 == 0 {
			s.half = chip.UpperGood
		} else {
			s.half = chip.LowerGood
		}
	}
	return nil
}

// writeRow16 fills one row with pattern data using page mode, or
// nibble groups of four on a 41257.
func (s *Session) writeRow16(row uint16, pat int) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	defer s.bus.Unlock()

	if def.Flags&chip.NibbleMode == 0 {
		s.rasRow16(row)
		s.low(we16)
		for col := uint16(0); col < cols; col++ {
			bit := s.bit16(pat, col, row)
			s.high(cas16)
			s.setAddr(xlate.Pin16, col)
			if bit != 0 {
				s.high(din16)
			} else {
				s.low(din16)
			}
			s.low(cas16)
		}
		s.high(cas16)
		s.high(we16)
		s.high(ras16)
		return nil
	}

	// Nibble path: one RAS cycle per group of four cells, the chip's
	// counter walks the columns after the first CAS.
	s.low(we16)
	for col := uint16(0); col < cols/2; col += 4 {
		s.rasRow16(row)
		s.setAddr(xlate.Pin16, col)
		for k := uint16(0); k < 4; k++ {
			if s.bit16(pat, col+k, row) != 0 {
				s.high(din16)
			} else {
				s.low(din16)
			}
			s.low(cas16)
			s.high(cas16)
		}
		s.high(ras16)
	}
	s.high(we16)
	return nil
}

// retentionRow16 writes a row, then verifies the row written delayRows
// ago and burns the per type retention delay, so every row is read
// back a fixed wall clock time after its write.
func (s *Session) retentionRow16(row, rows uint16, pat int) error {
	def := chip.Get(s.typ)
	if err := s.writeRow16(row, pat); err != nil {
		return err
	}
	s.refreshRow16(row)

	k := uint16(def.DelayRows)
	switch {
	case row == rows-1:
		// Tail rows are never followed by another write; simulate the
		// write time so their retention window matches.
		for x := int(k); x >= 0; x-- {
			if err := s.checkRow16(row-uint16(x), pat, fault.Retention); err != nil {
				return err
			}
			s.bus.DelayMicros(def.WriteTime * 20)
			s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
		}
	case row >= k:
		if err := s.checkRow16(row-k, pat, fault.Retention); err != nil {
			return err
		}
		s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
	default:
		s.bus.DelayMicros(def.Delays[row] * 20)
	}
	return nil
}

func (s *Session) refreshRow16(row uint16) {
	s.rasRow16(row)
	s.high(ras16)
}

// checkRow16 reads one row back and compares against the pattern.
// Only the first failing column is recorded; the scan still covers the
// whole row so the half accumulators see the true error spread.
func (s *Session) checkRow16(row uint16, pat int, kind fault.Kind) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.low(din16)
	errFound := false
	var errCol uint16

	s.bus.Lock()
	if def.Flags&chip.NibbleMode == 0 {
		s.rasRow16(row)
		for col := uint16(0); col < cols; col++ {
			s.setAddr(xlate.Pin16, col)
			s.low(cas16)
			if s.pin(dout16) != s.bit16(pat, col, row) {
				if !errFound {
					errCol = col
				}
				errFound = true
			}
			s.high(cas16)
		}
		s.high(ras16)
	} else {
		for col := uint16(0); col < cols/2 && !errFound; col += 4 {
			s.rasRow16(row)
			s.setAddr(xlate.Pin16, col)
			for k := uint16(0); k < 4; k++ {
				s.low(cas16)
				if s.pin(dout16) != s.bit16(pat, col+k, row) {
					if !errFound {
						errCol = col + k
					}
					errFound = true
				}
				s.high(cas16)
			}
			s.high(ras16)
		}
	}
	s.bus.Unlock()

	if !errFound {
		return nil
	}
	if s.recordHalf(row, errCol) {
		return fault.At(uint8(pat)+1, kind, int(row), int(errCol))
	}
	return nil
}

// bit16 is the data bit for a cell, 0 or 1. The one bit wide families
// carry their data in bit 2 of the pattern nibble, matching Dout on
// the same bit of port C.
func (s *Session) bit16(pat int, col, row uint16) uint8 {
	if s.expect(pat, col, row)&0x04 != 0 {
		return 1
	}
	return 0
}

// casBeforeRas16 strobes one CAS before RAS refresh cycle, stepping
// the chip's internal refresh counter.
func (s *Session) casBeforeRas16() {
	s.high(ras16)
	s.low(cas16)
	s.low(ras16)
	s.high(ras16)
	s.high(cas16)
}

// refreshTest16 proves the internal CBR refresh counter works on a
// 41256. Random bits go to columns 0-7 of every row, then the chip is
// left to its counter for ten full sweeps at the datasheet interval,
// then the bits are read back. A dead counter lets the rows decay.
//
// The 41256 refreshes two rows per strobe off its 8 bit counter, so a
// sweep is 256 strobes at about 15.6 microseconds each.
func (s *Session) refreshTest16() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	s.high(cas16)
	s.low(we16)
	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		s.rasRow16(row)
		for col := uint16(0); col < uint16(8); col++ {
			if (data>>col)&1 != 0 {
				s.high(din16)
			} else {
				s.low(din16)
			}
			s.setAddr(xlate.Pin16, col)
			s.low(cas16)
			s.high(cas16)
		}
		s.high(ras16)
		s.casBeforeRas16()
	}
	s.high(we16)

	for rep1 := 0; rep1 < 10; rep1++ {
		for rep2 := 0; rep2 < 256; rep2++ {
			s.casBeforeRas16()
			s.bus.DelayMicros(15)
		}
	}

	s.low(din16)
	for row := uint16(0); row < rows; row++ {
		expected := s.refreshByte(row)
		s.rasRow16(row)
		for col := uint16(0); col < uint16(8); col++ {
			s.setAddr(xlate.Pin16, col)
			s.low(cas16)
			got := s.pin(dout16)
			s.high(cas16)
			if got != (expected>>col)&1 {
				s.high(ras16)
				return fault.New(0, fault.RefreshTimeout)
			}
		}
		s.high(ras16)
		s.casBeforeRas16()
	}
	return nil
}

// addrBits is the number of address bits covering n entries.
func addrBits(n int) int {
	bits := 0
	for t := n - 1; t != 0; t >>= 1 {
		bits++
	}
	return bits
}
