/*
 * RamTest - Simulated DRAM chip.
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

// Package simchip implements the port driver interface with a DRAM model
// behind it. The family drivers strobe it exactly as they strobe real
// hardware; the model decodes control edges through the same socket
// wiring and keeps a cell store with injectable defects.
//
// Simulated time only moves through the delay calls, so strobe sequences
// are instantaneous and retention behavior is fully deterministic.
package simchip

import (
	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/event"
)

// Which half of an address range an injected defect kills.
const (
	HalfNone = iota
	HalfLower
	HalfUpper
)

// Config selects the simulated part and its defects. The zero value of
// the defect fields means a healthy chip.
type Config struct {
	Type chip.Type

	Absent        bool       // Socket empty.
	StuckBit      bool       // Enable the stuck address bit.
	StuckAddrBit  int        // Address bit forced low at the chip.
	BadRowHalf    int        // HalfLower or HalfUpper row half dead.
	BadColHalf    int        // HalfLower or HalfUpper column half dead.
	RetentionUs   int        // Decay deadline override, 0 for healthy.
	BrokenRefresh bool       // CBR counter does not increment.
	Grounded      []bus.Line // Pins shorted to ground.
	Adapter       bool       // 4116/4027 adapter voltage present.
}

const decayTag = 1

// Healthy chips hold charge well past the datasheet refresh budget.
const retentionMargin = 4

// Cells in an injected dead half hold data for this long after a write.
// Long enough for a single cell probe cycle, far short of any retention
// check window.
const deadGraceUs = 50

// Sim is one chip in one socket. It implements bus.Bus.
type Sim struct {
	layout Layout
	def    *chip.Definition
	cfg    Config

	latch [3]uint8 // MCU output latches
	ddr   [3]uint8

	cells     [][]uint8
	decayed   []bool
	deadWrite []int64 // Last store time per row, for dead half decay

	rowMask  uint16
	colMask  uint16
	colShift int

	row      uint16
	col      uint16
	rasLow   bool
	casLow   bool
	weLow    bool
	casCount int // CAS pulses this RAS cycle, for nibble mode

	refresh   uint16 // Internal refresh counter
	cbrMask   uint16
	cbrDouble bool // One strobe refreshes two physical rows

	clockNs int64
	queue   event.Queue

	locked int
}

// New builds a simulated chip in the given socket layout.
func New(layout Layout, cfg Config) *Sim {
	def := chip.Get(cfg.Type)
	s := &Sim{layout: layout, def: def, cfg: cfg}

	s.rowMask = uint16(def.Rows - 1)
	s.colMask = uint16(def.Cols - 1)
	if cfg.Type == chip.T4416 {
		// Column address arrives on A1-A6.
		s.colShift = 1
	}

	s.cells = make([][]uint8, def.Rows)
	for i := range s.cells {
		s.cells[i] = make([]uint8, def.Cols)
	}
	s.decayed = make([]bool, def.Rows)
	s.deadWrite = make([]int64, def.Rows)

	s.cbrMask = s.rowMask
	switch cfg.Type {
	case chip.T41256, chip.T41257:
		// 8-bit counter on a 512 row part, one strobe does two rows.
		s.cbrMask = 0xFF
		s.cbrDouble = true
	case chip.T411000:
		s.cbrMask = 0x1FF
		s.cbrDouble = true
	}

	// Power up with every latch high, matching the pull-up state the
	// firmware establishes before a test.
	s.latch = [3]uint8{0xFF, 0xFF, 0xFF}
	for row := 0; row < def.Rows; row++ {
		s.scheduleDecay(row)
	}
	return s
}

// Clock returns elapsed simulated time in microseconds.
func (s *Sim) Clock() int64 {
	return s.clockNs / 1000
}

// Peek reads a cell directly, bypassing the protocol.
func (s *Sim) Peek(row, col int) uint8 {
	return s.cells[row][col]
}

func (s *Sim) retentionUs() int {
	if s.cfg.RetentionUs > 0 {
		return s.cfg.RetentionUs
	}
	return s.def.Retention * 1000 * retentionMargin
}

func (s *Sim) scheduleDecay(row int) {
	s.queue.CancelEvent(decayTag, row)
	s.queue.AddEvent(decayTag, s.decayRow, s.retentionUs(), row)
}

// decayRow corrupts a row that missed its refresh deadline. The charge
// is gone; later refreshes keep the corrupted data.
func (s *Sim) decayRow(row int) {
	if s.decayed[row] {
		return
	}
	s.decayed[row] = true
	for col := range s.cells[row] {
		s.cells[row][col] ^= 0x0F
	}
}

func (s *Sim) refreshRow(row uint16) {
	s.scheduleDecay(int(row & s.rowMask))
}

// dead reports whether a cell sits in an injected dead half.
func (s *Sim) dead(row, col uint16) bool {
	switch s.cfg.BadRowHalf {
	case HalfLower:
		if row < uint16(s.def.Rows/2) {
			return true
		}
	case HalfUpper:
		if row >= uint16(s.def.Rows/2) {
			return true
		}
	}
	switch s.cfg.BadColHalf {
	case HalfLower:
		if col < uint16(s.def.Cols/2) {
			return true
		}
	case HalfUpper:
		if col >= uint16(s.def.Cols/2) {
			return true
		}
	}
	return false
}

// address decodes the current address pins as the chip sees them.
func (s *Sim) address() uint16 {
	w := s.layout.Wiring
	p := w.Mask
	p.B &= s.latch[bus.PortB]
	p.C &= s.latch[bus.PortC]
	p.D &= s.latch[bus.PortD]
	addr := w.Reverse(p)
	if s.cfg.StuckBit {
		addr &^= 1 << s.cfg.StuckAddrBit
	}
	return addr
}

func (s *Sim) level(l bus.Line) bool {
	return l.Mask != 0 && s.latch[l.Port]&l.Mask == 0 // active low
}

// dataIn samples the data input pins from the MCU latches.
func (s *Sim) dataIn() uint8 {
	var v uint8
	for i, l := range s.layout.DataIn {
		if s.latch[l.Port]&l.Mask != 0 {
			v |= 1 << i
		}
	}
	return v
}

// effCol is the column for the access in progress, honoring static
// column and nibble modes.
func (s *Sim) effCol() uint16 {
	if s.def.Flags&chip.StaticColumn != 0 && s.casLow {
		return (s.address() >> s.colShift) & s.colMask
	}
	return s.col
}

// store writes the data pins into the addressed cell.
func (s *Sim) store() {
	if s.cfg.Absent {
		return
	}
	// 4027: PD6 is chip select, write ignored while it is high.
	if s.cfg.Type == chip.T4027 && s.latch[bus.PortD]&0x40 != 0 {
		return
	}
	row := s.row & s.rowMask
	col := s.effCol()
	s.cells[row][col] = s.dataIn()
	s.decayed[row] = false
	s.deadWrite[row] = s.Clock()
}

// fetch returns the value the chip drives during a read cycle. Cells in
// a dead half still latch and read back within a cycle or two, but the
// charge is gone within deadGraceUs, so they pass single cell probes
// and fail the retention staggered checks.
func (s *Sim) fetch() uint8 {
	row := s.row & s.rowMask
	col := s.effCol()
	if s.dead(row, col) && s.Clock() > s.deadWrite[row]+deadGraceUs {
		return s.cells[row][col] ^ 0x0F
	}
	return s.cells[row][col]
}

// cbrRefresh advances the internal refresh counter by one strobe.
func (s *Sim) cbrRefresh() {
	r := s.refresh & s.cbrMask
	s.refreshRow(r)
	if s.cbrDouble {
		s.refreshRow(r + s.cbrMask + 1)
	}
	if !s.cfg.BrokenRefresh {
		s.refresh = (s.refresh + 1) & s.cbrMask
	}
}

// WritePort latches a port value and reacts to control line edges.
func (s *Sim) WritePort(p bus.Port, value uint8) {
	oldRAS := s.level(s.layout.RAS)
	oldCAS := s.level(s.layout.CAS)
	oldWE := s.level(s.layout.WE)

	s.latch[p] = value

	ras := s.level(s.layout.RAS)
	cas := s.level(s.layout.CAS)
	we := s.level(s.layout.WE)

	if ras && !oldRAS {
		if cas {
			// CAS before RAS triggers the refresh counter.
			s.cbrRefresh()
		} else {
			s.row = s.address() & s.rowMask
			s.refreshRow(s.row)
		}
		s.casCount = 0
	}

	if cas && !oldCAS && ras {
		if s.def.Flags&chip.NibbleMode != 0 && s.casCount > 0 {
			s.col = (s.col + 1) & s.colMask
		} else {
			s.col = (s.address() >> s.colShift) & s.colMask
		}
		s.casCount++
		if we {
			s.store()
		}
	}

	if we && !oldWE && cas && ras {
		s.store()
	}

	s.rasLow = ras
	s.casLow = cas
	s.weLow = we
}

// driving reports whether the chip owns the data out pins right now.
func (s *Sim) driving() bool {
	if s.cfg.Absent {
		return false
	}
	if !s.rasLow || !s.casLow || s.weLow {
		return false
	}
	// Output enable gates the data pins where the socket has one.
	if s.layout.OE.Mask != 0 && !s.level(s.layout.OE) {
		return false
	}
	if s.cfg.Type == chip.T4027 && s.latch[bus.PortD]&0x40 != 0 {
		return false
	}
	return true
}

// ReadPort samples pin levels: output bits echo the latch, input bits
// show the pull-up unless the chip or a ground short drives them.
func (s *Sim) ReadPort(p bus.Port) uint8 {
	value := s.latch[p]

	if s.driving() {
		data := s.fetch()
		for i, l := range s.layout.DataOut {
			if l.Port != p {
				continue
			}
			if data&(1<<i) != 0 {
				value |= l.Mask
			} else {
				value &^= l.Mask
			}
		}
	}

	// Adapter sense pins read high even with the pull-up off.
	if s.cfg.Adapter && p == bus.PortB {
		value |= 0x14
	}

	for _, g := range s.cfg.Grounded {
		if g.Port == p {
			value &^= g.Mask
		}
	}
	return value
}

// SetDDR sets port direction bits. The model keys off latch levels, so
// directions are only recorded.
func (s *Sim) SetDDR(p bus.Port, dirs uint8) {
	s.ddr[p] = dirs
}

// DelayMicros advances simulated time. All retention behavior hangs off
// this; port traffic itself is instantaneous.
func (s *Sim) DelayMicros(n int) {
	s.clockNs += int64(n) * 1000
	s.queue.Advance(n)
}

func (s *Sim) DelayMillis(n int) {
	s.DelayMicros(n * 1000)
}

// ReadADC models the adapter sense divider: about 1.6V with the 4116
// adapter fitted, rail level otherwise.
func (s *Sim) ReadADC(channel int) uint16 {
	if s.cfg.Adapter && (channel == 2 || channel == 3) {
		return 327
	}
	return 1023
}

func (s *Sim) Lock() {
	s.locked++
}

func (s *Sim) Unlock() {
	s.locked--
}
