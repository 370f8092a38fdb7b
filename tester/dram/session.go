/*
 * RamTest - Test session state and socket dispatch.
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

// Package dram holds the test drivers for each socket family. A
// Session runs the full sequence for one socket: ground short scan,
// warm up, chip sensing, address line checks, the six data patterns
// with retention staggering, and the refresh counter test where the
// family supports it.
package dram

import (
	"fmt"

	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/fault"
	"github.com/rcornwell/ramtest/tester/report"
	"github.com/rcornwell/ramtest/tester/xlate"
)

// Socket selects which DIP socket the chip sits in.
type Socket int

const (
	Socket16 Socket = iota
	Socket18
	Socket20
)

func (s Socket) String() string {
	switch s {
	case Socket16:
		return "16pin"
	case Socket18:
		return "18pin"
	case Socket20:
		return "20pin"
	}
	return fmt.Sprintf("socket(%d)", int(s))
}

// SocketByName maps a configuration keyword to a Socket. Returns -1
// for an unknown name.
func SocketByName(name string) Socket {
	switch name {
	case "16", "16pin":
		return Socket16
	case "18", "18pin":
		return Socket18
	case "20", "20pin":
		return Socket20
	}
	return Socket(-1)
}

// typeNone marks a chip type not yet sensed.
const typeNone = chip.Type(-1)

// Session drives one test run. The latch array shadows the three
// output port registers so single pin updates stay read-modify-write
// like they are on the hardware.
type Session struct {
	bus bus.Bus
	rep *report.Reporter

	typ   chip.Type
	half  chip.Half
	table chip.RandomTable
	latch [3]uint8

	// Half good error accumulation, bit 0x01 for the row half, bit
	// 0x02 for the column half of the failing address.
	lowerErr uint8
	upperErr uint8

	// Stop after sensing, used by the detect command.
	senseOnly bool
}

func New(b bus.Bus, rep *report.Reporter) *Session {
	return &Session{bus: b, rep: rep}
}

// Run tests the chip in the given socket. It returns the detected chip
// type and, for half good parts, which half is usable. The error is a
// *fault.Fault for anything the tester can blame on the chip or
// socket.
func (s *Session) Run(socket Socket) (chip.Type, chip.Half, error) {
	s.table.Generate()
	s.typ = typeNone
	s.half = chip.FullGood
	s.lowerErr = 0
	s.upperErr = 0

	err := s.groundShort(socket)
	if err == nil {
		switch socket {
		case Socket16:
			err = s.test16()
		case Socket18:
			err = s.test18()
		case Socket20:
			err = s.test20()
		default:
			err = fmt.Errorf("unknown socket %d", int(socket))
		}
	}
	if err != nil {
		s.rep.Fail(err)
		return s.typ, s.half, err
	}
	if !s.senseOnly {
		s.rep.Pass(s.typ, s.half)
	}
	return s.typ, s.half, nil
}

// Detect runs only the probe and sensing steps, reporting what sits in
// the socket without the pattern or retention runs.
func (s *Session) Detect(socket Socket) (chip.Type, error) {
	s.senseOnly = true
	defer func() { s.senseOnly = false }()
	typ, _, err := s.Run(socket)
	return typ, err
}

// Type returns the chip type from the last run.
func (s *Session) Type() chip.Type {
	return s.typ
}

// Half returns the usable half from the last run.
func (s *Session) Half() chip.Half {
	return s.half
}

// out writes a whole port and updates the shadow latch.
func (s *Session) out(p bus.Port, v uint8) {
	s.latch[p] = v
	s.bus.WritePort(p, v)
}

// set drives latch bits high.
func (s *Session) set(p bus.Port, mask uint8) {
	s.out(p, s.latch[p]|mask)
}

// clr drives latch bits low.
func (s *Session) clr(p bus.Port, mask uint8) {
	s.out(p, s.latch[p]&^mask)
}

func (s *Session) high(l bus.Line) {
	s.set(l.Port, l.Mask)
}

func (s *Session) low(l bus.Line) {
	s.clr(l.Port, l.Mask)
}

// pin samples a single input line, returning 0 or 1.
func (s *Session) pin(l bus.Line) uint8 {
	if s.bus.ReadPort(l.Port)&l.Mask != 0 {
		return 1
	}
	return 0
}

// setAddr puts an address on the multiplexed bus through the socket's
// wiring scramble, leaving non-address bits of each port alone.
func (s *Session) setAddr(w *xlate.Wiring, addr uint16) {
	p := w.Translate(addr)
	m := w.Mask
	s.out(bus.PortB, (s.latch[bus.PortB]&^m.B)|p.B)
	s.out(bus.PortC, (s.latch[bus.PortC]&^m.C)|p.C)
	s.out(bus.PortD, (s.latch[bus.PortD]&^m.D)|p.D)
}

// warmup waits out power stabilization and wakes the chip with eight
// RAS only cycles, as every classic DRAM datasheet asks for.
func (s *Session) warmup(ras bus.Line) {
	s.bus.DelayMicros(100)
	s.high(ras)
	for rep1 := 0; rep1 < 8; rep1++ {
		s.low(ras)
		s.high(ras)
	}
}

// expect returns the data nibble a pattern predicts for a cell.
// Patterns 0-3 alternate between the pattern byte and its rotation on
// odd columns; patterns 4-5 come from the random table.
func (s *Session) expect(pat int, col, row uint16) uint8 {
	if pat >= 4 {
		return s.table.Nibble(col, row)
	}
	p := chip.Patterns[pat]
	if col&1 != 0 && pat >= 2 {
		p = chip.RotateLeft(p)
	}
	return p & 0x0F
}

// refreshByte is the per-row marker byte written during refresh tests,
// built from two nibble table entries so all eight bits vary by row.
func (s *Session) refreshByte(row uint16) uint8 {
	return s.table[row&0xFF] | s.table[(row+97)&0xFF]<<4
}

// recordHalf folds a failing cell address into the half good
// accumulators. It reports whether the error must escalate: the 4164
// class swallows errors confined to one half so a 4532 or 3732 can be
// reclassified after the pattern runs.
func (s *Session) recordHalf(row, col uint16) bool {
	if row >= 128 {
		s.upperErr |= 0x01
	} else {
		s.lowerErr |= 0x01
	}
	if col >= 128 {
		s.upperErr |= 0x02
	} else {
		s.lowerErr |= 0x02
	}
	switch s.typ {
	case chip.T4164, chip.T4532, chip.T3732:
		return s.lowerErr&s.upperErr&0x03 == 0x03
	}
	return true
}

// Ground short pin maps. Index is the port bit, value is the DIP pin
// wired to it. eol marks unused bits, nc bits wired to pins that float
// by design.
const (
	eol = 0xFF
	nc  = 0xFE
)

type pinMap struct {
	b [8]uint8
	c [8]uint8
	d [8]uint8
}

var groundPins = map[Socket]pinMap{
	Socket16: {
		b: [8]uint8{13, 4, 12, 3, eol, eol, eol, eol},
		c: [8]uint8{1, 2, 14, 15, 5, eol, eol, eol},
		d: [8]uint8{6, 7, 8, nc, nc, nc, 9, 10},
	},
	Socket18: {
		b: [8]uint8{15, 4, 14, 3, eol, eol, eol, eol},
		c: [8]uint8{1, 2, 16, 17, 5, eol, eol, eol},
		d: [8]uint8{6, 7, 8, 9, nc, 10, 11, 12},
	},
	Socket20: {
		b: [8]uint8{17, 4, 16, 3, eol, eol, eol, eol},
		c: [8]uint8{1, 2, 18, 19, 5, 10, eol, eol},
		d: [8]uint8{6, 7, 8, 9, 11, 12, 13, 14},
	},
}

// groundShort pulls every socket pin up and looks for one stuck low.
// A pin shorted to ground reads back low through its pull-up and gets
// reported by DIP pin number.
func (s *Session) groundShort(socket Socket) error {
	pm, ok := groundPins[socket]
	if !ok {
		return nil
	}
	for _, p := range []bus.Port{bus.PortB, bus.PortC, bus.PortD} {
		s.bus.SetDDR(p, 0x00)
		s.out(p, 0xFF)
	}
	s.bus.DelayMicros(10)

	pinb := s.bus.ReadPort(bus.PortB)
	pinc := s.bus.ReadPort(bus.PortC)
	pind := s.bus.ReadPort(bus.PortD)
	for i := 0; i < 8; i++ {
		mask := uint8(1) << i
		if pm.b[i] != eol && pm.b[i] != nc && pinb&mask == 0 {
			return fault.New(pm.b[i], fault.GroundShort)
		}
		if pm.c[i] != eol && pm.c[i] != nc && pinc&mask == 0 {
			return fault.New(pm.c[i], fault.GroundShort)
		}
		if pm.d[i] != eol && pm.d[i] != nc && pind&mask == 0 {
			return fault.New(pm.d[i], fault.GroundShort)
		}
	}
	return nil
}
