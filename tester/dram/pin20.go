/*
 * RamTest - 20-pin socket driver (514256, 514258, 514400, 514402).
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

// 20-pin socket control lines. Data is the low nibble of port C.
var (
	ras20 = bus.Line{Port: bus.PortB, Mask: 0x02}
	cas20 = bus.Line{Port: bus.PortB, Mask: 0x01}
	we20  = bus.Line{Port: bus.PortB, Mask: 0x08}
	oe20  = bus.Line{Port: bus.PortB, Mask: 0x04}
)

// test20 probes the 20-pin socket. A 4116/4027 level shifter adapter
// announces itself through its pullups and reference rails and gets
// the single bit driver; otherwise the 4 bit 514xxx flow runs.
func (s *Session) test20() error {
	if s.senseAdapter() {
		return s.testAdapter()
	}

	s.bus.SetDDR(bus.PortB, 0x1F)
	s.out(bus.PortB, 0x3F)
	s.bus.SetDDR(bus.PortC, 0x1F)
	s.out(bus.PortC, 0x80)
	s.bus.SetDDR(bus.PortD, 0xFF)
	s.out(bus.PortD, 0x00)

	s.warmup(ras20)

	if !s.present20() {
		return fault.New(0, fault.NoChip)
	}
	s.senseRAM20()
	s.senseSCRAM20()
	s.rep.Detected(chip.Get(s.typ).Name)
	if s.senseOnly {
		return nil
	}

	if err := s.checkAddressing20(); err != nil {
		return err
	}
	if err := s.patterns20(); err != nil {
		return err
	}
	return s.refreshTest20()
}

func (s *Session) dataOut20() {
	s.bus.SetDDR(bus.PortC, 0x1F)
}

// dataIn20 floats the IO nibble with pullups, keeping A9 driven.
func (s *Session) dataIn20() {
	s.bus.SetDDR(bus.PortC, 0x10)
	s.set(bus.PortC, 0x0F)
}

func (s *Session) setData20(nibble uint8) {
	s.out(bus.PortC, s.latch[bus.PortC]&0xF0|nibble&0x0F)
}

func (s *Session) getData20() uint8 {
	return s.bus.ReadPort(bus.PortC) & 0x0F
}

func (s *Session) rasRow20(row uint16) {
	s.high(ras20)
	s.setAddr(xlate.Pin20, row)
	s.low(ras20)
}

func (s *Session) write20(row, col uint16, data uint8) {
	s.dataOut20()
	s.rasRow20(row)
	s.low(we20)
	s.setAddr(xlate.Pin20, col)
	s.setData20(data)
	s.low(cas20)
	s.high(cas20)
	s.high(we20)
	s.high(ras20)
}

func (s *Session) read20(row, col uint16) uint8 {
	s.dataIn20()
	s.rasRow20(row)
	s.setAddr(xlate.Pin20, col)
	s.low(cas20)
	s.low(oe20)
	v := s.getData20()
	s.high(oe20)
	s.high(cas20)
	s.high(ras20)
	return v
}

// present20 checks the IO nibble tri-states with OE and drives a
// stored zero with it low. An empty socket reads pullups both ways.
func (s *Session) present20() bool {
	s.write20(0, 0, 0x0)

	s.dataIn20()
	s.rasRow20(0)
	s.setAddr(xlate.Pin20, 0)
	s.high(oe20)
	s.low(cas20)
	floating := s.getData20()
	s.low(oe20)
	driven := s.getData20()
	s.high(oe20)
	s.high(cas20)
	s.high(ras20)

	return floating == 0x0F && driven == 0x00
}

// senseRAM20 separates the 256K parts (nine row bits) from the 1M
// parts (ten) by whether row 512 aliases onto row 0.
func (s *Session) senseRAM20() {
	s.write20(0, 0, 0x5)
	s.write20(512, 0, 0xA)
	if s.read20(0, 0) != 0x5 {
		s.typ = chip.T514256
	} else {
		s.typ = chip.T514400
	}
}

// senseSCRAM20 tests for static column operation: with CAS held low a
// static column part decodes the column pins live instead of latching
// them, so changing the address mid cycle reads a different cell.
func (s *Session) senseSCRAM20() {
	cols := [4]uint16{0, 5, 10, 15}

	s.bus.Lock()
	s.dataOut20()
	s.rasRow20(0)
	s.low(we20)
	for _, col := range cols {
		s.setAddr(xlate.Pin20, col)
		s.setData20(uint8(col) & 0x0F)
		s.low(cas20)
		s.high(cas20)
	}
	s.high(we20)
	s.high(ras20)

	s.dataIn20()
	s.rasRow20(0)
	s.low(cas20)
	s.low(oe20)
	static := true
	for _, col := range cols {
		s.setAddr(xlate.Pin20, col)
		if s.getData20() != uint8(col)&0x0F {
			static = false
			break
		}
	}
	s.high(oe20)
	s.high(cas20)
	s.high(ras20)
	s.bus.Unlock()

	if static {
		if s.typ == chip.T514256 {
			s.typ = chip.T514258
		} else {
			s.typ = chip.T514402
		}
	}
}

func (s *Session) checkAddressing20() error {
	def := chip.Get(s.typ)
	rowBits := addrBits(def.Rows)
	colBits := addrBits(def.Cols)

	s.write20(0, 0, 0x0)
	for b := 0; b < rowBits; b++ {
		s.write20(1<<b, 0, 0xF)
	}
	if s.read20(0, 0) != 0x0 {
		return fault.New(0, fault.AddressLine)
	}
	for b := 0; b < rowBits; b++ {
		if s.read20(1<<b, 0) != 0xF {
			return fault.New(uint8(b), fault.AddressLine)
		}
	}

	testRow := uint16(def.Rows >> 1)
	s.write20(testRow, 0, 0x0)
	for b := 0; b < colBits; b++ {
		s.write20(testRow, 1<<b, 0xF)
	}
	if s.read20(testRow, 0) != 0x0 {
		return fault.New(16, fault.AddressLine)
	}
	for b := 0; b < colBits; b++ {
		if s.read20(testRow, 1<<b) != 0xF {
			return fault.New(uint8(b)+16, fault.AddressLine)
		}
	}
	return nil
}

// nibble20 is the expected data nibble for a cell. The wide patterns
// are written without per column rotation.
func (s *Session) nibble20(pat int, col, row uint16) uint8 {
	if pat < 4 {
		return chip.Patterns[pat] & 0x0F
	}
	return s.table.Nibble(col, row)
}

// patterns20 runs the six data patterns. The solid and alternating
// patterns write the whole chip then read it all back; the random
// patterns use the staggered retention engine.
func (s *Session) patterns20() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for pat := 0; pat < 4; pat++ {
		for row := uint16(0); row < rows; row++ {
			s.writeRow20(row, pat)
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.checkRow20(row, pat, fault.Pattern); err != nil {
				return err
			}
		}
	}
	for pat := 4; pat <= 5; pat++ {
		if pat == 5 {
			s.table.Invert()
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.retentionRow20(row, rows, pat); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) writeRow20(row uint16, pat int) {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	s.dataOut20()
	s.rasRow20(row)
	s.low(we20)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin20, col)
		s.setData20(s.nibble20(pat, col, row))
		s.low(cas20)
		s.high(cas20)
	}
	s.high(we20)
	s.high(ras20)
	s.bus.Unlock()
}

func (s *Session) retentionRow20(row, rows uint16, pat int) error {
	def := chip.Get(s.typ)
	s.writeRow20(row, pat)
	s.refreshRow20(row)

	k := uint16(def.DelayRows)
	switch {
	case row == rows-1:
		for x := int(k); x >= 0; x-- {
			if err := s.checkRow20(row-uint16(x), pat, fault.Retention); err != nil {
				return err
			}
			s.bus.DelayMicros(def.WriteTime * 20)
			s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
		}
	case row >= k:
		if err := s.checkRow20(row-k, pat, fault.Retention); err != nil {
			return err
		}
		s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
	default:
		s.bus.DelayMicros(def.Delays[row] * 20)
	}
	return nil
}

func (s *Session) refreshRow20(row uint16) {
	s.rasRow20(row)
	s.high(ras20)
}

// checkRow20 reads one row back. Static column parts hold CAS low and
// flow the column address; the rest strobe CAS per column.
func (s *Session) checkRow20(row uint16, pat int, kind fault.Kind) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)
	static := def.Flags&chip.StaticColumn != 0

	s.bus.Lock()
	defer s.bus.Unlock()

	s.dataIn20()
	s.rasRow20(row)
	if static {
		s.low(cas20)
		s.low(oe20)
	}
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin20, col)
		var v uint8
		if static {
			v = s.getData20()
		} else {
			s.low(cas20)
			s.low(oe20)
			v = s.getData20()
			s.high(oe20)
			s.high(cas20)
		}
		if v != s.nibble20(pat, col, row) {
			s.high(oe20)
			s.high(cas20)
			s.high(ras20)
			return fault.At(uint8(pat), kind, int(row), int(col))
		}
	}
	s.high(oe20)
	s.high(cas20)
	s.high(ras20)
	return nil
}

func (s *Session) casBeforeRas20() {
	s.high(ras20)
	s.low(cas20)
	s.low(ras20)
	s.high(ras20)
	s.high(cas20)
}

// refreshTest20 proves the CBR refresh counter. The 514xxx parts
// refresh one row per strobe, so a sweep is the full row count.
func (s *Session) refreshTest20() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		for col := uint16(0); col < uint16(2); col++ {
			s.write20(row, col, (data>>(col*2))&0x0F)
		}
		s.casBeforeRas20()
	}

	for rep1 := 0; rep1 < 10; rep1++ {
		for rep2 := uint16(0); rep2 < rows; rep2++ {
			s.casBeforeRas20()
			s.bus.DelayMicros(15)
		}
	}

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		for col := uint16(0); col < uint16(2); col++ {
			if s.read20(row, col) != (data>>(col*2))&0x0F {
				return fault.New(0, fault.RefreshTimeout)
			}
		}
		s.casBeforeRas20()
	}
	return nil
}
