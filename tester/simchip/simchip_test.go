/*
 * RamTest - Simulated chip tests.
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

package simchip

import (
	"testing"

	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/xlate"
)

// rig drives a simulated chip through raw port writes, shadowing the
// output latches the way the test drivers do.
type rig struct {
	s     *Sim
	latch [3]uint8
}

func newRig(cfg Config) *rig {
	return &rig{s: New(Layout16, cfg), latch: [3]uint8{0xFF, 0xFF, 0xFF}}
}

func (r *rig) out(p bus.Port, v uint8) {
	r.latch[p] = v
	r.s.WritePort(p, v)
}

func (r *rig) set(l bus.Line) { r.out(l.Port, r.latch[l.Port]|l.Mask) }
func (r *rig) clr(l bus.Line) { r.out(l.Port, r.latch[l.Port]&^l.Mask) }

func (r *rig) addr(a uint16) {
	p := xlate.Pin16.Translate(a)
	m := xlate.Pin16.Mask
	r.out(bus.PortB, r.latch[bus.PortB]&^m.B|p.B)
	r.out(bus.PortC, r.latch[bus.PortC]&^m.C|p.C)
	r.out(bus.PortD, r.latch[bus.PortD]&^m.D|p.D)
}

// write runs one early write cycle on the 16-pin layout.
func (r *rig) write(row, col uint16, d uint8) {
	r.set(Layout16.RAS)
	r.addr(row)
	r.clr(Layout16.RAS)
	r.clr(Layout16.WE)
	r.addr(col)
	if d != 0 {
		r.set(Layout16.DataIn[0])
	} else {
		r.clr(Layout16.DataIn[0])
	}
	r.clr(Layout16.CAS)
	r.set(Layout16.CAS)
	r.set(Layout16.WE)
	r.set(Layout16.RAS)
}

// read runs one read cycle and samples Dout.
func (r *rig) read(row, col uint16) uint8 {
	r.clr(Layout16.DataIn[0])
	r.set(Layout16.RAS)
	r.addr(row)
	r.clr(Layout16.RAS)
	r.addr(col)
	r.clr(Layout16.CAS)
	v := uint8(0)
	if r.s.ReadPort(Layout16.DataOut[0].Port)&Layout16.DataOut[0].Mask != 0 {
		v = 1
	}
	r.set(Layout16.CAS)
	r.set(Layout16.RAS)
	return v
}

// refreshRow runs one RAS-only refresh cycle.
func (r *rig) refreshRow(row uint16) {
	r.set(Layout16.RAS)
	r.addr(row)
	r.clr(Layout16.RAS)
	r.set(Layout16.RAS)
}

// cbr runs one CAS-before-RAS refresh strobe.
func (r *rig) cbr() {
	r.set(Layout16.RAS)
	r.clr(Layout16.CAS)
	r.clr(Layout16.RAS)
	r.set(Layout16.RAS)
	r.set(Layout16.CAS)
}

// Early write cycles must land in the addressed cell.
func TestStoreFetch(t *testing.T) {
	r := newRig(Config{Type: chip.T4164})
	r.write(3, 7, 1)
	r.write(3, 8, 0)
	if got := r.s.Peek(3, 7); got != 1 {
		t.Errorf("Peek(3,7) got: %d expected: %d", got, 1)
	}
	if got := r.read(3, 7); got != 1 {
		t.Errorf("read(3,7) got: %d expected: %d", got, 1)
	}
	if got := r.read(3, 8); got != 0 {
		t.Errorf("read(3,8) got: %d expected: %d", got, 0)
	}
}

// An unrefreshed row must lose its data after the retention deadline.
func TestDecay(t *testing.T) {
	r := newRig(Config{Type: chip.T4164})
	r.write(0, 0, 1)
	r.s.DelayMillis(20)
	if got := r.read(0, 0); got != 0 {
		t.Errorf("decayed cell got: %d expected: %d", got, 0)
	}
}

// RAS-only refresh cycles keep a row alive indefinitely.
func TestRasOnlyRefresh(t *testing.T) {
	r := newRig(Config{Type: chip.T4164})
	r.write(5, 5, 1)
	for rep1 := 0; rep1 < 10; rep1++ {
		r.s.DelayMillis(10)
		r.refreshRow(5)
	}
	if got := r.read(5, 5); got != 1 {
		t.Errorf("refreshed cell got: %d expected: %d", got, 1)
	}
}

// The CBR counter must sweep every row; a broken counter lets rows
// decay even with strobes arriving.
func TestCBRCounter(t *testing.T) {
	r := newRig(Config{Type: chip.T4164})
	r.write(100, 0, 1)
	for rep1 := 0; rep1 < 10; rep1++ {
		for rep1 := 0; rep1 < 256; rep1++ {
			r.cbr()
		}
		r.s.DelayMillis(4)
	}
	if got := r.read(100, 0); got != 1 {
		t.Errorf("CBR refreshed cell got: %d expected: %d", got, 1)
	}

	r = newRig(Config{Type: chip.T4164, BrokenRefresh: true})
	r.write(100, 0, 1)
	for rep1 := 0; rep1 < 10; rep1++ {
		for rep1 := 0; rep1 < 256; rep1++ {
			r.cbr()
		}
		r.s.DelayMillis(4)
	}
	if got := r.read(100, 0); got != 0 {
		t.Errorf("broken CBR cell got: %d expected: %d", got, 0)
	}
}

// An empty socket never drives Dout, so the pull-up wins.
func TestAbsent(t *testing.T) {
	r := newRig(Config{Type: chip.T4164, Absent: true})
	r.write(0, 0, 0)
	if got := r.read(0, 0); got != 1 {
		t.Errorf("absent Dout got: %d expected: %d", got, 1)
	}
}

// Dead half cells pass an immediate read back but lose their charge
// within the grace window.
func TestDeadHalfGrace(t *testing.T) {
	r := newRig(Config{Type: chip.T4164, BadColHalf: HalfUpper})
	r.write(0, 200, 1)
	if got := r.read(0, 200); got != 1 {
		t.Errorf("fresh dead half cell got: %d expected: %d", got, 1)
	}
	r.s.DelayMicros(deadGraceUs + 10)
	if got := r.read(0, 200); got != 0 {
		t.Errorf("stale dead half cell got: %d expected: %d", got, 0)
	}
	// The live half is unaffected.
	r.write(0, 10, 1)
	r.s.DelayMicros(deadGraceUs + 10)
	if got := r.read(0, 10); got != 1 {
		t.Errorf("live half cell got: %d expected: %d", got, 1)
	}
}

// A stuck address bit folds the affected addresses together.
func TestStuckAddressBit(t *testing.T) {
	r := newRig(Config{Type: chip.T4164, StuckBit: true, StuckAddrBit: 2})
	r.write(0, 0, 0)
	r.write(4, 0, 1) // Lands on row 0 with bit 2 stuck low.
	if got := r.read(0, 0); got != 1 {
		t.Errorf("stuck bit alias got: %d expected: %d", got, 1)
	}
}

// Grounded pins read low no matter what drives them.
func TestGroundedPin(t *testing.T) {
	r := newRig(Config{
		Type:     chip.T4164,
		Grounded: []bus.Line{{Port: bus.PortD, Mask: 0x01}},
	})
	r.out(bus.PortD, 0xFF)
	if got := r.s.ReadPort(bus.PortD) & 0x01; got != 0 {
		t.Errorf("grounded pin got: %d expected: %d", got, 0)
	}
}

// The ADC sees the adapter's voltage divider only when it is fitted.
func TestAdapterADC(t *testing.T) {
	s := New(Layout4116, Config{Type: chip.T4116, Adapter: true})
	if got := s.ReadADC(2); got != 327 {
		t.Errorf("adapter channel 2 got: %d expected: %d", got, 327)
	}
	if got := s.ReadADC(0); got != 1023 {
		t.Errorf("adapter channel 0 got: %d expected: %d", got, 1023)
	}
	s = New(Layout16, Config{Type: chip.T4164})
	if got := s.ReadADC(2); got != 1023 {
		t.Errorf("bare channel 2 got: %d expected: %d", got, 1023)
	}
}
