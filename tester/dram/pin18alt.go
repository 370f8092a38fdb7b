/*
 * RamTest - 18-pin socket driver, 1M x 1 alternate pinout (411000).
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

// Alternate 18-pin lines used by the 411000.
var (
	rasAlt  = bus.Line{Port: bus.PortB, Mask: 0x08}
	casAlt  = bus.Line{Port: bus.PortC, Mask: 0x04}
	weAlt   = bus.Line{Port: bus.PortC, Mask: 0x02}
	dinAlt  = bus.Line{Port: bus.PortC, Mask: 0x01}
	doutAlt = bus.Line{Port: bus.PortC, Mask: 0x08}
)

// test18Alt runs the 411000 sequence after the 4 bit wide probe came
// up empty. Nothing answering here means an empty or dead socket.
func (s *Session) test18Alt() error {
	s.bus.SetDDR(bus.PortB, 0x1D)
	s.out(bus.PortB, 0x08)
	s.bus.SetDDR(bus.PortC, 0x17)
	s.out(bus.PortC, 0x06)
	s.bus.SetDDR(bus.PortD, 0xE7)
	s.out(bus.PortD, 0x00)

	s.warmup(rasAlt)

	if !s.sense411000() {
		return fault.New(0, fault.NoChip)
	}
	s.typ = chip.T411000
	s.rep.Detected(chip.Get(s.typ).Name)
	if s.senseOnly {
		return nil
	}

	if err := s.checkAddressingAlt(); err != nil {
		return err
	}
	if err := s.patternsAlt(); err != nil {
		return err
	}
	return s.refreshTestAlt()
}

func (s *Session) rasRowAlt(row uint16) {
	s.high(rasAlt)
	s.setAddr(xlate.Pin18Alt, row)
	s.low(rasAlt)
}

func (s *Session) writeAlt(row, col uint16, data uint8) {
	s.rasRowAlt(row)
	s.low(weAlt)
	s.setAddr(xlate.Pin18Alt, col)
	if data != 0 {
		s.high(dinAlt)
	} else {
		s.low(dinAlt)
	}
	s.low(casAlt)
	s.high(casAlt)
	s.high(weAlt)
	s.high(rasAlt)
}

func (s *Session) readAlt(row, col uint16) uint8 {
	s.rasRowAlt(row)
	s.setAddr(xlate.Pin18Alt, col)
	s.low(casAlt)
	v := s.pin(doutAlt)
	s.high(casAlt)
	s.high(rasAlt)
	return v
}

// sense411000 doubles as the presence check. Cell (0,0) must store a
// zero, (1,1) a one, and the one must not disturb the zero.
func (s *Session) sense411000() bool {
	s.writeAlt(0, 0, 0)
	if s.readAlt(0, 0) != 0 {
		return false
	}
	s.writeAlt(1, 1, 1)
	if s.readAlt(1, 1) != 1 {
		return false
	}
	return s.readAlt(0, 0) == 0
}

func (s *Session) checkAddressingAlt() error {
	def := chip.Get(s.typ)
	rowBits := addrBits(def.Rows)
	colBits := addrBits(def.Cols)

	for b := 0; b < rowBits; b++ {
		peer := uint16(1) << b
		s.writeAlt(0, 0, 0)
		s.writeAlt(peer, 0, 1)
		if s.readAlt(0, 0) != 0 || s.readAlt(peer, 0) != 1 {
			return fault.New(uint8(b), fault.AddressLine)
		}
	}

	testRow := uint16(def.Rows >> 1)
	for b := 0; b < colBits; b++ {
		peer := uint16(1) << b

		s.bus.Lock()
		s.rasRowAlt(testRow)
		for _, wr := range [2]struct {
			col  uint16
			data uint8
		}{{0, 0}, {peer, 1}} {
			s.low(weAlt)
			s.setAddr(xlate.Pin18Alt, wr.col)
			if wr.data != 0 {
				s.high(dinAlt)
			} else {
				s.low(dinAlt)
			}
			s.low(casAlt)
			s.high(casAlt)
			s.high(weAlt)
		}
		s.setAddr(xlate.Pin18Alt, 0)
		s.low(casAlt)
		base := s.pin(doutAlt)
		s.high(casAlt)
		s.setAddr(xlate.Pin18Alt, peer)
		s.low(casAlt)
		got := s.pin(doutAlt)
		s.high(casAlt)
		s.high(rasAlt)
		s.bus.Unlock()

		if base != 0 || got != 1 {
			return fault.New(uint8(b)+16, fault.AddressLine)
		}
	}
	return nil
}

// bitAlt is the expected data bit for a cell. The single data line
// rides on bit 3 of the pattern nibble.
func (s *Session) bitAlt(pat int, col, row uint16) uint8 {
	if s.expect(pat, col, row)&0x08 != 0 {
		return 1
	}
	return 0
}

func (s *Session) patternsAlt() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	// Solid patterns verify each cell right after its write.
	for pat := 0; pat < 2; pat++ {
		for row := uint16(0); row < rows; row++ {
			if err := s.inlineRowAlt(row, pat); err != nil {
				return err
			}
		}
	}
	for pat := 2; pat < 4; pat++ {
		for row := uint16(0); row < rows; row++ {
			s.writeRowAlt(row, pat)
			if err := s.checkRowAlt(row, pat, fault.Pattern); err != nil {
				return err
			}
		}
	}
	for pat := 4; pat <= 5; pat++ {
		if pat == 5 {
			s.table.Invert()
		}
		for row := uint16(0); row < rows; row++ {
			if err := s.retentionRowAlt(row, rows, pat); err != nil {
				return err
			}
		}
	}
	return nil
}

// inlineRowAlt writes and immediately reads back each cell of a row
// under one RAS cycle.
func (s *Session) inlineRowAlt(row uint16, pat int) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	defer s.bus.Unlock()

	s.rasRowAlt(row)
	for col := uint16(0); col < cols; col++ {
		bit := s.bitAlt(pat, col, row)
		s.low(weAlt)
		s.setAddr(xlate.Pin18Alt, col)
		if bit != 0 {
			s.high(dinAlt)
		} else {
			s.low(dinAlt)
		}
		s.low(casAlt)
		s.high(casAlt)
		s.high(weAlt)
		s.low(casAlt)
		got := s.pin(doutAlt)
		s.high(casAlt)
		if got != bit {
			s.high(rasAlt)
			return fault.At(uint8(pat), fault.Pattern, int(row), int(col))
		}
	}
	s.high(rasAlt)
	return nil
}

func (s *Session) writeRowAlt(row uint16, pat int) {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	s.rasRowAlt(row)
	s.low(weAlt)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin18Alt, col)
		if s.bitAlt(pat, col, row) != 0 {
			s.high(dinAlt)
		} else {
			s.low(dinAlt)
		}
		s.low(casAlt)
		s.high(casAlt)
	}
	s.high(weAlt)
	s.high(rasAlt)
	s.bus.Unlock()
}

func (s *Session) retentionRowAlt(row, rows uint16, pat int) error {
	def := chip.Get(s.typ)
	s.writeRowAlt(row, pat)
	s.refreshRowAlt(row)

	k := uint16(def.DelayRows)
	switch {
	case row == rows-1:
		for x := int(k); x >= 0; x-- {
			if err := s.checkRowAlt(row-uint16(x), pat, fault.Retention); err != nil {
				return err
			}
			s.bus.DelayMicros(def.WriteTime * 20)
			s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
		}
	case row >= k:
		if err := s.checkRowAlt(row-k, pat, fault.Retention); err != nil {
			return err
		}
		s.bus.DelayMicros(def.Delays[def.DelayRows] * 20)
	default:
		s.bus.DelayMicros(def.Delays[row] * 20)
	}
	return nil
}

func (s *Session) refreshRowAlt(row uint16) {
	s.rasRowAlt(row)
	s.high(rasAlt)
}

func (s *Session) checkRowAlt(row uint16, pat int, kind fault.Kind) error {
	def := chip.Get(s.typ)
	cols := uint16(def.Cols)

	s.bus.Lock()
	defer s.bus.Unlock()

	s.rasRowAlt(row)
	for col := uint16(0); col < cols; col++ {
		s.setAddr(xlate.Pin18Alt, col)
		s.low(casAlt)
		got := s.pin(doutAlt)
		s.high(casAlt)
		if got != s.bitAlt(pat, col, row) {
			s.high(rasAlt)
			return fault.At(uint8(pat)+1, kind, int(row), int(col))
		}
	}
	s.high(rasAlt)
	return nil
}

func (s *Session) casBeforeRasAlt() {
	s.high(rasAlt)
	s.low(casAlt)
	s.low(rasAlt)
	s.high(rasAlt)
	s.high(casAlt)
}

// refreshTestAlt proves the 411000's CBR counter. The part refreshes
// two rows per strobe off a 9 bit counter, so a sweep is 512 strobes.
func (s *Session) refreshTestAlt() error {
	def := chip.Get(s.typ)
	rows := uint16(def.Rows)

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		s.bus.Lock()
		s.rasRowAlt(row)
		s.low(weAlt)
		for col := uint16(0); col < uint16(8); col++ {
			s.setAddr(xlate.Pin18Alt, col)
			if (data>>col)&1 != 0 {
				s.high(dinAlt)
			} else {
				s.low(dinAlt)
			}
			s.low(casAlt)
			s.high(casAlt)
		}
		s.high(weAlt)
		s.high(rasAlt)
		s.casBeforeRasAlt()
		s.bus.Unlock()
	}

	for rep1 := 0; rep1 < 10; rep1++ {
		for rep2 := 0; rep2 < 512; rep2++ {
			s.casBeforeRasAlt()
			s.bus.DelayMicros(15)
		}
	}

	for row := uint16(0); row < rows; row++ {
		data := s.refreshByte(row)
		s.bus.Lock()
		s.rasRowAlt(row)
		var bad bool
		for col := uint16(0); col < uint16(8); col++ {
			s.setAddr(xlate.Pin18Alt, col)
			s.low(casAlt)
			got := s.pin(doutAlt)
			s.high(casAlt)
			if got != (data>>col)&1 {
				bad = true
				break
			}
		}
		s.high(rasAlt)
		s.casBeforeRasAlt()
		s.bus.Unlock()
		if bad {
			return fault.New(0, fault.RefreshTimeout)
		}
	}
	return nil
}
