/*
 * RamTest - 4116/4027 adapter driver for the 20-pin socket.
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

// Adapter data lines. Strobes are shared with the plain 20-pin socket.
var (
	dinA  = bus.Line{Port: bus.PortC, Mask: 0x02}
	doutA = bus.Line{Port: bus.PortC, Mask: 0x01}
)

// senseAdapter detects the 4116/4027 level shifter board. Its pullups
// hold PB2 and PB4 high and its -5V charge pump presents about 1.6V
// on ADC channels 2 and 3 through the sense divider.
func (s *Session) senseAdapter() bool {
	s.bus.SetDDR(bus.PortB, 0x00)
	s.clr(bus.PortB, 0x14)
	s.bus.DelayMicros(10)
	if s.bus.ReadPort(bus.PortB)&0x14 != 0x14 {
		return false
	}
	for ch := 2; ch <= 3; ch++ {
		mv := int(s.bus.ReadADC(ch)) * 5000 / 1023
		if mv < 1440 || mv > 1760 {
			return false
		}
	}
	return true
}

// testAdapter runs the single bit parts behind the adapter.
func (s *Session) testAdapter() error {
	s.bus.SetDDR(bus.PortB, 0x1F)
	s.out(bus.PortB, 0x0B)
	s.bus.SetDDR(bus.PortC, 0x1E)
	s.out(bus.PortC, 0x00)
	s.bus.SetDDR(bus.PortD, 0xFF)
	s.out(bus.PortD, 0x00)

	s.warmup(ras20)

	if !s.presentAdapter() {
		return fault.New(0, fault.NoChip)
	}
	if s.detect4027() {
		s.typ = chip.T4027
	} else {
		s.typ = chip.T4116
	}
	s.rep.Detected(chip.Get(s.typ).Name)
	if s.senseOnly {
		return nil
	}

	if err := s.checkAddressing4116(); err != nil {
		return err
	}
	return s.patterns4116()
}

func (s *Session) rasRow4116(row uint16) {
	s.high(ras20)
	s.setAddr(xlate.Adapter, row)
	s.low(ras20)
}

// writeBit4116 stores one bit. The level shifters need the CAS strobe
// stretched.
func (s *Session) writeBit4116(row, col uint16, data uint8) {
	s.rasRow4116(row)
	s.low(we20)
	s.setAddr(xlate.Adapter, col)
	if data != 0 {
		s.high(dinA)
	} else {
		s.low(dinA)
	}
	s.low(cas20)
	s.bus.DelayMicros(1)
	s.high(cas20)
	s.high(we20)
	s.high(ras20)
}

// readBit4116 fetches one bit, sampling Dout while CAS is still low.
func (s *Session) readBit4116(row, col uint16) uint8 {
	s.rasRow4116(row)
	s.setAddr(xlate.Adapter, col)
	s.low(cas20)
	s.bus.DelayMicros(1)
	v := s.pin(doutA)
	s.high(cas20)
	s.high(ras20)
	return v
}

func (s *Session) presentAdapter() bool {
	s.writeBit4116(0, 0, 1)
	return s.readBit4116(0, 0) == 1
}

// detect4027 tells a 4027 from a 4116. The 4027 only has six address
// lines; its A6 pin position is chip select, so a store attempted with
// that pin high never lands. The 4116 treats it as a real column bit.
func (s *Session) detect4027() bool {
	s.bus.Lock()
	s.out(bus.PortD, 0x40)
	s.high(dinA)
	s.low(we20)
	s.low(ras20)
	s.low(cas20)
	s.bus.DelayMicros(1)
	s.high(cas20)

	s.low(dinA)
	s.out(bus.PortD, 0x41)
	s.low(cas20)
	s.bus.DelayMicros(1)
	s.high(cas20)
	s.high(we20)
	s.high(ras20)

	s.out(bus.PortD, 0x40)
	s.low(ras20)
	s.low(cas20)
	s.bus.DelayMicros(1)
	first := s.pin(doutA)
	s.high(cas20)
	if first == 1 {
		s.out(bus.PortD, 0x41)
		s.low(cas20)
		s.bus.DelayMicros(1)
		second := s.pin(doutA)
		s.high(cas20)
		s.high(ras20)
		s.bus.Unlock()
		return second != 0
	}
	s.high(ras20)
	s.bus.Unlock()
	return true
}

func (s *Session) checkAddressing4116() error {
	def := chip.Get(s.typ)
	rowBits := addrBits(def.Rows)
	colBits := addrBits(def.Cols)

	for b := 0; b < rowBits; b++ {
		peer := uint16(1) << b
		if err := s.addrBit4116(0, 0, peer, 0, uint8(b)); err != nil {
			return err
		}
	}

	fixedRow := uint16(0)
	if def.Rows > 64 {
		fixedRow = 64
	}
	for b := 0; b < colBits; b++ {
		peer := uint16(1) << b
		if err := s.addrBit4116(fixedRow, 0, fixedRow, peer, uint8(b)+16); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) addrBit4116(row1, col1, row2, col2 uint16, code uint8) error {
	s.writeBit4116(row1, col1, 0)
	s.writeBit4116(row2, col2, 1)
	if s.readBit4116(row1, col1) != 0 || s.readBit4116(row2, col2) != 1 {
		return fault.New(code, fault.AddressLine)
	}
	return nil
}

// bit4116 is the expected data bit for a cell.
func (s *Session) bit4116(pat int, col, row uint16) uint8 {
	if pat >= 4 {
		return s.table.Bit(col, row)
	}
	return s.expect(pat, col, row) & 0x01
}

func (s *Session) patterns4116() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for pat := 0; pat < 2; pat++ {
		for row := uint16(0); row < rows; row++ {
			if err := s.inlineRow4116(row, pat); err != nil {
				return err
			}
		}
	}
	for pat := 2; pat < 4; pat++ {
		for row := uint16(0); row < rows; row++ {
			s.writeRow4116(row, pat)
			if err := s.checkRow4116(row, pat, fault.Pattern); err != nil {
				return err
			}
		}
	}
	for pat := 4; pat <= 5; pat++ {
		if pat == 5 {
			s.table.Invert()
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.retentionRow4116(row, rows, pat); err != nil {
				return err
			}
		}
	}
	return nil
}

// inlineRow4116 writes and reads back each cell of a row under one
// RAS cycle, toggling WE around the verify read.
func (s *Session) inlineRow4116(row uint16, pat int) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	defer s.bus.Unlock()

	s.rasRow4116(row)
	s.low(we20)
	for col := uint16(0); col < cols; col++ {
		bit := s.bit4116(pat, col, row)
		s.setAddr(xlate.Adapter, col)
		if bit != 0 {
			s.high(dinA)
		} else {
			s.low(dinA)
		}
		s.low(cas20)
		s.bus.DelayMicros(1)
		s.high(cas20)

		s.high(we20)
		s.low(cas20)
		s.bus.DelayMicros(1)
		got := s.pin(doutA)
		s.high(cas20)
		s.low(we20)
		if got != bit {
			s.high(we20)
			s.high(ras20)
			return fault.At(uint8(pat), fault.Pattern, int(row), int(col))
		}
	}
	s.high(we20)
	s.high(ras20)
	return nil
}

func (s *Session) writeRow4116(row uint16, pat int) {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	s.rasRow4116(row)
	s.low(we20)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Adapter, col)
		if s.bit4116(pat, col, row) != 0 {
			s.high(dinA)
		} else {
			s.low(dinA)
		}
		s.low(cas20)
		s.bus.DelayMicros(1)
		s.high(cas20)
	}
	s.high(we20)
	s.high(ras20)
	s.bus.Unlock()
}

func (s *Session) retentionRow4116(row, rows uint16, pat int) error {
	def := chip.Get(s.typ)
	s.writeRow4116(row, pat)
	s.refreshRow4116(row)

	k := uint16(def.DelayRows)
	switch {
	case row == rows-1:
		for x := int(k); x >= 0; x-- {
			if err := s.checkRow4116(row-uint16(x), pat, fault.Retention); err != nil {
				return err
			}
			s.bus.DelayMicros(def.WriteTime * 20)
			s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
		}
	case row >= k:
		if err := s.checkRow4116(row-k, pat, fault.Retention); err != nil {
			return err
		}
		s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
	default:
		s.bus.DelayMicros(def.Delays[row] * 20)
	}
	return nil
}

func (s *Session) refreshRow4116(row uint16) {
	s.rasRow4116(row)
	s.high(ras20)
}

func (s *Session) checkRow4116(row uint16, pat int, kind fault.Kind) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	defer s.bus.Unlock()

	s.rasRow4116(row)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Adapter, col)
		s.low(cas20)
		s.bus.DelayMicros(1)
		got := s.pin(doutA)
		s.high(cas20)
		if got != s.bit4116(pat, col, row) {
			s.high(ras20)
			return fault.At(uint8(pat)+1, kind, int(row), int(col))
		}
	}
	s.high(ras20)
	return nil
}
