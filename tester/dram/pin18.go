/*
 * RamTest - 18-pin socket driver, 4 bit wide parts (4416, 4464).
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

// 18-pin socket control lines and the four bidirectional data lines,
// ordered IO0 to IO3.
var (
	ras18 = bus.Line{Port: bus.PortC, Mask: 0x10}
	cas18 = bus.Line{Port: bus.PortC, Mask: 0x04}
	we18  = bus.Line{Port: bus.PortB, Mask: 0x02}
	oe18  = bus.Line{Port: bus.PortC, Mask: 0x01}

	data18 = [4]bus.Line{
		{Port: bus.PortC, Mask: 0x02},
		{Port: bus.PortB, Mask: 0x01},
		{Port: bus.PortB, Mask: 0x08},
		{Port: bus.PortC, Mask: 0x08},
	}
)

// test18 probes the 18-pin socket. The 4 bit wide parts share one
// pinout; the 1M x 1 411000 uses a different one and gets its own
// driver when the 4 bit probe finds nothing.
func (s *Session) test18() error {
	s.bus.SetDDR(bus.PortB, 0x3F)
	s.out(bus.PortB, 0x22)
	s.bus.SetDDR(bus.PortC, 0x1F)
	s.out(bus.PortC, 0x15)
	s.bus.SetDDR(bus.PortD, 0xE7)
	s.out(bus.PortD, 0x00)

	s.warmup(ras18)

	if !s.present18() {
		return s.test18Alt()
	}
	s.sense18()
	s.rep.Detected(chip.Get(s.typ).Name)
	if s.senseOnly {
		return nil
	}

	if err := s.checkAddressing18(); err != nil {
		return err
	}
	if err := s.patterns18(); err != nil {
		return err
	}
	if s.typ == chip.T4464 {
		return s.refreshTest18()
	}
	return nil
}

// Data bus direction. Releasing the lines enables pullups so an empty
// socket reads as 0xF.
func (s *Session) dataOut18() {
	s.bus.SetDDR(bus.PortB, 0x3F)
	s.bus.SetDDR(bus.PortC, 0x1F)
}

func (s *Session) dataIn18() {
	s.bus.SetDDR(bus.PortB, 0x36)
	s.bus.SetDDR(bus.PortC, 0x15)
	s.set(bus.PortB, 0x09)
	s.set(bus.PortC, 0x0A)
}

func (s *Session) setData18(nibble uint8) {
	for i, l := range data18 {
		if nibble>>i&1 != 0 {
			s.high(l)
		} else {
			s.low(l)
		}
	}
}

func (s *Session) getData18() uint8 {
	var v uint8
	for i, l := range data18 {
		v |= s.pin(l) << i
	}
	return v
}

func (s *Session) rasRow18(row uint16) {
	s.high(ras18)
	s.setAddr(xlate.Pin18, row)
	s.low(ras18)
}

// write18 stores one nibble with a full early-write RAS/CAS cycle.
// col is the raw value put on the address pins; 4416 callers shift.
func (s *Session) write18(row, col uint16, data uint8) {
	s.dataOut18()
	s.rasRow18(row)
	s.low(we18)
	s.setAddr(xlate.Pin18, col)
	s.setData18(data)
	s.low(cas18)
	s.high(cas18)
	s.high(we18)
	s.high(ras18)
}

func (s *Session) read18(row, col uint16) uint8 {
	s.dataIn18()
	s.rasRow18(row)
	s.setAddr(xlate.Pin18, col)
	s.low(cas18)
	s.low(oe18)
	v := s.getData18()
	s.high(oe18)
	s.high(cas18)
	s.high(ras18)
	return v
}

func (s *Session) present18() bool {
	s.write18(0, 0, 0x5)
	return s.read18(0, 0) == 0x5
}

// sense18 tells a 4416 from a 4464. The 4416 takes its column address
// on A1-A6, so columns written through A0 or A7 collapse onto column
// zero while the 4464 keeps them distinct.
func (s *Session) sense18() {
	s.write18(0, 0, 0x0)
	s.write18(0, 0x01, 0xF)
	if s.read18(0, 0) != 0 {
		s.typ = chip.T4416
		return
	}
	s.write18(0, 0, 0x0)
	s.write18(0, 0x80, 0xF)
	if s.read18(0, 0) != 0 {
		s.typ = chip.T4416
	} else {
		s.typ = chip.T4464
	}
}

// colShift18 is how far column values move up before hitting the
// address pins.
func (s *Session) colShift18() uint {
	if s.typ == chip.T4416 {
		return 1
	}
	return 0
}

// checkAddressing18 walks a one bit over the address lines. All rows
// are written before any is read so a shorted line shows as the later
// write clobbering the earlier one.
func (s *Session) checkAddressing18() error {
	def := chip.Get(s.typ)
	shift := s.colShift18()
	rowBits := addrBits(def.Rows)
	colBits := addrBits(def.Cols)

	// Column zero exists on every variant.
	safeCol := uint16(0)

	s.write18(0, safeCol, 0x5)
	for b := 0; b < rowBits; b++ {
		s.write18(1<<b, safeCol, 0xA)
	}
	if s.read18(0, safeCol) != 0x5 {
		return fault.New(0, fault.AddressLine)
	}
	for b := 0; b < rowBits; b++ {
		if s.read18(1<<b, safeCol) != 0xA {
			return fault.New(uint8(b), fault.AddressLine)
		}
	}

	testRow := uint16(def.Rows >> 1)
	for b := 0; b < colBits; b++ {
		peer := uint16(1<<b) << shift
		s.write18(testRow, 0, 0x5)
		s.write18(testRow, peer, 0xA)
		if s.read18(testRow, 0) != 0x5 || s.read18(testRow, peer) != 0xA {
			return fault.New(uint8(b)+16, fault.AddressLine)
		}
	}
	return nil
}

// nibble18 is the expected data nibble for a cell. The wide parts use
// the raw pattern byte without per column rotation; the random
// patterns index the shared table.
func (s *Session) nibble18(pat int, col, row uint16) uint8 {
	if pat < 4 {
		return chip.Patterns[pat] & 0x0F
	}
	return s.table.Nibble(col, row)
}

func (s *Session) patterns18() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for pat := 0; pat < 4; pat++ {
		for row := uint16(0); row < rows; row++ {
			s.writeRow18(row, pat)
			if err := s.checkRow18(row, pat, fault.Pattern); err != nil {
				return err
			}
		}
	}
	for pat := 4; pat <= 5; pat++ {
		if pat == 5 {
			s.table.Invert()
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.retentionRow18(row, rows, pat); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRow18 fills one row in page mode with early writes.
func (s *Session) writeRow18(row uint16, pat int) {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)
	shift := s.colShift18()

	s.bus.Lock()
	s.dataOut18()
	s.rasRow18(row)
	s.low(we18)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin18, col<<shift)
		s.setData18(s.nibble18(pat, col, row))
		s.low(cas18)
		s.high(cas18)
	}
	s.high(we18)
	s.high(ras18)
	s.bus.Unlock()
}

func (s *Session) retentionRow18(row, rows uint16, pat int) error {
	def := chip.Get(s.typ)
	s.writeRow18(row, pat)
	s.refreshRow18(row)

	k := uint16(def.DelayRows)
	switch {
	case row == rows-1:
		for x := int(k); x >= 0; x-- {
			if err := s.checkRow18(row-uint16(x), pat, fault.Retention); err != nil {
				return err
			}
			s.bus.DelayMicros(def.WriteTime * 20)
			s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
		}
	case row >= k:
		if err := s.checkRow18(row-k, pat, fault.Retention); err != nil {
			return err
		}
		s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
	default:
		s.bus.DelayMicros(def.Delays[row] * 20)
	}
	return nil
}

func (s *Session) refreshRow18(row uint16) {
	s.rasRow18(row)
	s.high(ras18)
}

// checkRow18 reads one row back in page mode and fails on the first
// mismatch. No half good variants exist in this socket, so errors
// escalate immediately.
func (s *Session) checkRow18(row uint16, pat int, kind fault.Kind) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)
	shift := s.colShift18()

	s.bus.Lock()
	defer s.bus.Unlock()

	s.dataIn18()
	s.rasRow18(row)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin18, col<<shift)
		s.low(cas18)
		s.low(oe18)
		v := s.getData18()
		s.high(oe18)
		s.high(cas18)
		if v != s.nibble18(pat, col, row) {
			s.high(ras18)
			return fault.At(uint8(pat), kind, int(row), int(col))
		}
	}
	s.high(ras18)
	return nil
}

func (s *Session) casBeforeRas18() {
	s.high(ras18)
	s.low(cas18)
	s.low(ras18)
	s.high(ras18)
	s.high(cas18)
}

// refreshTest18 proves the 4464's CBR refresh counter. Two marker
// columns per row, ten counter sweeps at the datasheet interval, then
// read back.
func (s *Session) refreshTest18() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		for col := uint16(0); col < uint16(2); col++ {
			s.write18(row, col, (data>>(col*2))&0x03)
		}
		s.casBeforeRas18()
	}

	for rep1 := 0; rep1 < 10; rep1++ {
		for rep2 := uint16(0); rep2 < rows; rep2++ {
			s.casBeforeRas18()
			s.bus.DelayMicros(15)
		}
	}

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		for col := uint16(0); col < uint16(2); col++ {
			if s.read18(row, col)&0x03 != (data>>(col*2))&0x03 {
				return fault.New(0, fault.RefreshTimeout)
			}
		}
		s.casBeforeRas18()
	}
	return nil
}
