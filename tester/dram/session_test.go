/*
 * RamTest - Test session tests against the simulated chips.
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
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/fault"
	"github.com/rcornwell/ramtest/tester/report"
	"github.com/rcornwell/ramtest/tester/simchip"
	"github.com/rcornwell/ramtest/tester/xlate"
)

func quietReporter() *report.Reporter {
	return report.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func runSession(cfg simchip.Config, layout simchip.Layout, socket Socket) (chip.Type, chip.Half, error) {
	sim := simchip.New(layout, cfg)
	sess := New(sim, quietReporter())
	return sess.Run(socket)
}

// faultKind unwraps an error and checks it names the expected fault.
func faultKind(t *testing.T, err error, kind fault.Kind) *fault.Fault {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a fault got: nil")
	}
	var f *fault.Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected a fault got: %v", err)
	}
	if f.Kind != kind {
		t.Errorf("fault kind got: %v expected: %v", f.Kind, kind)
	}
	return f
}

// Every healthy chip must be identified and pass the full sequence.
func TestHealthyChips(t *testing.T) {
	cases := []struct {
		typ     chip.Type
		layout  simchip.Layout
		socket  Socket
		adapter bool
		half    chip.Half
	}{
		{typ: chip.T4164, layout: simchip.Layout16, socket: Socket16},
		{typ: chip.T41256, layout: simchip.Layout16, socket: Socket16},
		{typ: chip.T41257, layout: simchip.Layout16, socket: Socket16},
		{typ: chip.T4816, layout: simchip.Layout16, socket: Socket16},
		{typ: chip.T4532, layout: simchip.Layout16, socket: Socket16, half: chip.LowerGood},
		{typ: chip.T4416, layout: simchip.Layout18, socket: Socket18},
		{typ: chip.T4464, layout: simchip.Layout18, socket: Socket18},
		{typ: chip.T411000, layout: simchip.Layout18Alt, socket: Socket18},
		{typ: chip.T514256, layout: simchip.Layout20, socket: Socket20},
		{typ: chip.T514258, layout: simchip.Layout20, socket: Socket20},
		{typ: chip.T514400, layout: simchip.Layout20, socket: Socket20},
		{typ: chip.T514402, layout: simchip.Layout20, socket: Socket20},
		{typ: chip.T4116, layout: simchip.Layout4116, socket: Socket20, adapter: true},
		{typ: chip.T4027, layout: simchip.Layout4116, socket: Socket20, adapter: true},
	}
	for _, c := range cases {
		t.Run(chip.Get(c.typ).Name, func(t *testing.T) {
			cfg := simchip.Config{Type: c.typ, Adapter: c.adapter}
			typ, half, err := runSession(cfg, c.layout, c.socket)
			if err != nil {
				t.Fatalf("healthy chip failed: %v", err)
			}
			if typ != c.typ {
				t.Errorf("type got: %v expected: %v", typ, c.typ)
			}
			if half != c.half {
				t.Errorf("half got: %d expected: %d", half, c.half)
			}
		})
	}
}

// An empty socket must report no chip, not a data fault.
func TestEmptySocket(t *testing.T) {
	cases := []struct {
		typ    chip.Type
		layout simchip.Layout
		socket Socket
	}{
		{typ: chip.T4164, layout: simchip.Layout16, socket: Socket16},
		{typ: chip.T4464, layout: simchip.Layout18, socket: Socket18},
		{typ: chip.T514256, layout: simchip.Layout20, socket: Socket20},
	}
	for _, c := range cases {
		cfg := simchip.Config{Type: c.typ, Absent: true}
		_, _, err := runSession(cfg, c.layout, c.socket)
		faultKind(t, err, fault.NoChip)
	}
}

// A stuck address bit must be blamed on the right line.
func TestStuckAddressBit(t *testing.T) {
	cfg := simchip.Config{Type: chip.T4164, StuckBit: true, StuckAddrBit: 3}
	_, _, err := runSession(cfg, simchip.Layout16, Socket16)
	f := faultKind(t, err, fault.AddressLine)
	if f.Code != 3 {
		t.Errorf("fault code got: %d expected: %d", f.Code, 3)
	}
}

// A 4164 die with one dead column half is an OKI 3732. The working
// half is named instead of failing the chip.
func TestColumnHalf3732(t *testing.T) {
	cfg := simchip.Config{Type: chip.T4164, BadColHalf: simchip.HalfUpper}
	typ, half, err := runSession(cfg, simchip.Layout16, Socket16)
	if err != nil {
		t.Fatalf("half good chip failed: %v", err)
	}
	if typ != chip.T3732 {
		t.Errorf("type got: %v expected: %v", typ, chip.T3732)
	}
	if half != chip.LowerGood {
		t.Errorf("half got: %d expected: %d", half, chip.LowerGood)
	}

	cfg.BadColHalf = simchip.HalfLower
	typ, half, err = runSession(cfg, simchip.Layout16, Socket16)
	if err != nil {
		t.Fatalf("half good chip failed: %v", err)
	}
	if typ != chip.T3732 {
		t.Errorf("type got: %v expected: %v", typ, chip.T3732)
	}
	if half != chip.UpperGood {
		t.Errorf("half got: %d expected: %d", half, chip.UpperGood)
	}
}

// A chip that loses charge before its refresh budget must fail the
// staggered retention patterns, not the immediate ones.
func TestWeakRetention(t *testing.T) {
	cfg := simchip.Config{Type: chip.T4164, RetentionUs: 500}
	_, _, err := runSession(cfg, simchip.Layout16, Socket16)
	faultKind(t, err, fault.Retention)

	cfg = simchip.Config{Type: chip.T514256, RetentionUs: 400}
	_, _, err = runSession(cfg, simchip.Layout20, Socket20)
	faultKind(t, err, fault.Retention)
}

// A dead CAS-before-RAS counter must show up in the refresh sweep.
func TestBrokenRefresh(t *testing.T) {
	cfg := simchip.Config{Type: chip.T41256, BrokenRefresh: true}
	_, _, err := runSession(cfg, simchip.Layout16, Socket16)
	faultKind(t, err, fault.RefreshTimeout)

	cfg = simchip.Config{Type: chip.T4464, BrokenRefresh: true}
	_, _, err = runSession(cfg, simchip.Layout18, Socket18)
	faultKind(t, err, fault.RefreshTimeout)
}

// A shorted pin is reported by DIP pin number before any cycle runs.
func TestGroundShort(t *testing.T) {
	// PC1 is DIP pin 2 on the 16-pin socket.
	cfg := simchip.Config{
		Type:     chip.T4164,
		Grounded: []bus.Line{{Port: bus.PortC, Mask: 0x02}},
	}
	_, _, err := runSession(cfg, simchip.Layout16, Socket16)
	f := faultKind(t, err, fault.GroundShort)
	if f.Code != 2 {
		t.Errorf("fault code got: %d expected: %d", f.Code, 2)
	}
}

// Detect senses the type without running the long patterns.
func TestDetectOnly(t *testing.T) {
	sim := simchip.New(simchip.Layout16, simchip.Config{Type: chip.T41256})
	sess := New(sim, quietReporter())
	typ, err := sess.Detect(Socket16)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if typ != chip.T41256 {
		t.Errorf("type got: %v expected: %v", typ, chip.T41256)
	}

	sim = simchip.New(simchip.Layout16, simchip.Config{Type: chip.T4164, Absent: true})
	sess = New(sim, quietReporter())
	_, err = sess.Detect(Socket16)
	faultKind(t, err, fault.NoChip)
}

// Socket names used by the console and configuration file.
func TestSocketByName(t *testing.T) {
	cases := []struct {
		name   string
		socket Socket
	}{
		{"16", Socket16},
		{"16pin", Socket16},
		{"18", Socket18},
		{"20pin", Socket20},
	}
	for _, c := range cases {
		if got := SocketByName(c.name); got != c.socket {
			t.Errorf("SocketByName(%q) got: %d expected: %d", c.name, got, c.socket)
		}
	}
	if got := SocketByName("24"); got >= 0 {
		t.Errorf("SocketByName(24) got: %d expected: negative", got)
	}
}

// rowEvent is one RAS cycle that moved data: the latched row, whether
// WE was low at the first CAS strobe, and the strobe count.
type rowEvent struct {
	row     uint16
	write   bool
	strobes int
}

// rowTrace wraps a simulated chip and reconstructs the row access
// order from the strobe edges. RAS only refresh and CAS before RAS
// cycles strobe no data and are not recorded.
type rowTrace struct {
	*simchip.Sim
	layout simchip.Layout
	latch  [3]uint8

	rasLow  bool
	row     uint16
	write   bool
	strobes int
	events  []rowEvent
}

func newRowTrace(cfg simchip.Config, layout simchip.Layout) *rowTrace {
	return &rowTrace{Sim: simchip.New(layout, cfg), layout: layout}
}

func (r *rowTrace) WritePort(p bus.Port, v uint8) {
	old := r.latch[p]
	r.latch[p] = v

	if ras := r.layout.RAS; p == ras.Port && old&ras.Mask != v&ras.Mask {
		if v&ras.Mask == 0 {
			r.rasLow = true
			r.strobes = 0
			r.row = r.layout.Wiring.Reverse(xlate.PortBits{
				B: r.latch[bus.PortB],
				C: r.latch[bus.PortC],
				D: r.latch[bus.PortD],
			})
		} else {
			if r.rasLow && r.strobes > 0 {
				r.events = append(r.events, rowEvent{row: r.row, write: r.write, strobes: r.strobes})
			}
			r.rasLow = false
		}
	}
	if cas := r.layout.CAS; p == cas.Port && old&cas.Mask != 0 && v&cas.Mask == 0 && r.rasLow {
		if r.strobes == 0 {
			we := r.layout.WE
			r.write = r.latch[we.Port]&we.Mask == 0
		}
		r.strobes++
	}
	r.Sim.WritePort(p, v)
}

// The last row of a retention pattern has no later row write to
// trigger its staggered check, so the driver sweeps the trailing
// delayRows rows itself. Reconstructs the access order of a clean run
// and verifies every trailing row is read back between the final full
// row write and the next phase.
func TestRetentionTailRows(t *testing.T) {
	cases := []struct {
		typ     chip.Type
		layout  simchip.Layout
		socket  Socket
		adapter bool
	}{
		{chip.T4164, simchip.Layout16, Socket16, false},
		{chip.T4416, simchip.Layout18, Socket18, false},
		{chip.T411000, simchip.Layout18Alt, Socket18, false},
		{chip.T514256, simchip.Layout20, Socket20, false},
		{chip.T4116, simchip.Layout4116, Socket20, true},
	}
	for _, c := range cases {
		def := chip.Get(c.typ)
		tr := newRowTrace(simchip.Config{Type: c.typ, Adapter: c.adapter}, c.layout)
		sess := New(tr, quietReporter())
		typ, _, err := sess.Run(c.socket)
		if err != nil {
			t.Errorf("%s: unexpected fault: %v", def.Name, err)
			continue
		}
		if typ != c.typ {
			t.Errorf("%s: detected type got: %d expected: %d", def.Name, typ, c.typ)
			continue
		}

		rows := uint16(def.Rows)
		rowMask := rows - 1
		last := rows - 1

		// The final full width write of the last row ends the pattern
		// phase. Refresh counter marker writes are much narrower.
		lastWrite := -1
		for i, ev := range tr.events {
			if ev.write && ev.row&rowMask == last && ev.strobes >= def.Cols {
				lastWrite = i
			}
		}
		if lastWrite < 0 {
			t.Errorf("%s: no full row write of row %d recorded", def.Name, last)
			continue
		}

		checked := make(map[uint16]bool)
		for _, ev := range tr.events[lastWrite+1:] {
			if ev.write {
				break
			}
			checked[ev.row&rowMask] = true
		}
		for k := 0; k <= def.DelayRows; k++ {
			row := last - uint16(k)
			if !checked[row] {
				t.Errorf("%s: row %d not verified after the last write", def.Name, row)
			}
		}
	}
}
