/*
 * RamTest - Simulated test bench.
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

// Package bench holds the state the console and configuration file
// manipulate: which socket is selected, what simulated chip sits in
// it, and which defects are injected. Running the bench builds a
// simulator and drives a test session against it.
package bench

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/dram"
	"github.com/rcornwell/ramtest/tester/report"
	"github.com/rcornwell/ramtest/tester/simchip"
)

const noChip = chip.Type(-1)

type Bench struct {
	log    *slog.Logger
	socket dram.Socket
	typ    chip.Type      // Chip in the socket, noChip if empty.
	cfg    simchip.Config // Injected defects.

	ran      bool
	lastTyp  chip.Type
	lastHalf chip.Half
	lastErr  error
}

func New(log *slog.Logger) *Bench {
	return &Bench{log: log, socket: dram.Socket16, typ: noChip}
}

// SetLogger replaces the logger, used when the configuration file
// names a log file after startup.
func (b *Bench) SetLogger(log *slog.Logger) {
	b.log = log
}

func (b *Bench) Socket() dram.Socket {
	return b.socket
}

func (b *Bench) SetSocket(s dram.Socket) {
	b.socket = s
}

// socketFor is the socket a chip type plugs into.
func socketFor(t chip.Type) dram.Socket {
	switch t {
	case chip.T4164, chip.T41256, chip.T41257, chip.T4816, chip.T4532, chip.T3732:
		return dram.Socket16
	case chip.T4416, chip.T4464, chip.T411000:
		return dram.Socket18
	default:
		return dram.Socket20
	}
}

// SetChip puts a simulated chip in the bench, switching to the socket
// it belongs in.
func (b *Bench) SetChip(name string) error {
	t := chip.Lookup(name)
	if t == noChip {
		return errors.New("unknown chip type: " + name)
	}
	b.typ = t
	b.socket = socketFor(t)
	return nil
}

// RemoveChip empties the socket.
func (b *Bench) RemoveChip() {
	b.typ = noChip
}

func (b *Bench) Chip() chip.Type {
	return b.typ
}

// parseLine turns a pin name like c3 into a port line.
func parseLine(name string) (bus.Line, error) {
	name = strings.ToLower(name)
	if len(name) != 2 || name[1] < '0' || name[1] > '7' {
		return bus.Line{}, errors.New("pin must be port letter and bit, like c3: " + name)
	}
	var p bus.Port
	switch name[0] {
	case 'b':
		p = bus.PortB
	case 'c':
		p = bus.PortC
	case 'd':
		p = bus.PortD
	default:
		return bus.Line{}, errors.New("pin must be port letter and bit, like c3: " + name)
	}
	return bus.Line{Port: p, Mask: 1 << (name[1] - '0')}, nil
}

// Inject adds one defect to the simulated chip. Supported defects:
// absent, stuckbit=<addr bit>, rowhalf=lower|upper, colhalf=lower|upper,
// retention=<microseconds>, refresh, ground=<pin>.
func (b *Bench) Inject(defect, value string) error {
	switch strings.ToLower(defect) {
	case "absent":
		b.cfg.Absent = true
	case "stuckbit":
		bit, err := strconv.Atoi(value)
		if err != nil || bit < 0 || bit > 9 {
			return errors.New("stuckbit needs an address bit 0-9")
		}
		b.cfg.StuckBit = true
		b.cfg.StuckAddrBit = bit
	case "rowhalf", "colhalf":
		var half int
		switch strings.ToLower(value) {
		case "lower":
			half = simchip.HalfLower
		case "upper":
			half = simchip.HalfUpper
		default:
			return errors.New(defect + " needs lower or upper")
		}
		if strings.ToLower(defect) == "rowhalf" {
			b.cfg.BadRowHalf = half
		} else {
			b.cfg.BadColHalf = half
		}
	case "retention":
		us, err := strconv.Atoi(value)
		if err != nil || us <= 0 {
			return errors.New("retention needs a decay time in microseconds")
		}
		b.cfg.RetentionUs = us
	case "refresh":
		b.cfg.BrokenRefresh = true
	case "ground":
		l, err := parseLine(value)
		if err != nil {
			return err
		}
		b.cfg.Grounded = append(b.cfg.Grounded, l)
	default:
		return errors.New("unknown defect: " + defect)
	}
	return nil
}

// Clear removes all injected defects.
func (b *Bench) Clear() {
	b.cfg = simchip.Config{}
}

// defaultType gives the simulator a geometry when the socket is empty.
func (b *Bench) defaultType() chip.Type {
	switch b.socket {
	case dram.Socket18:
		return chip.T4464
	case dram.Socket20:
		return chip.T514256
	default:
		return chip.T4164
	}
}

func (b *Bench) layout() simchip.Layout {
	switch b.socket {
	case dram.Socket18:
		if b.typ == chip.T411000 {
			return simchip.Layout18Alt
		}
		return simchip.Layout18
	case dram.Socket20:
		if b.typ == chip.T4116 || b.typ == chip.T4027 {
			return simchip.Layout4116
		}
		return simchip.Layout20
	default:
		return simchip.Layout16
	}
}

// build assembles the simulated chip and a session around it.
func (b *Bench) build() *dram.Session {
	cfg := b.cfg
	cfg.Type = b.typ
	if b.typ == noChip {
		cfg.Type = b.defaultType()
		cfg.Absent = true
	}
	cfg.Adapter = cfg.Type == chip.T4116 || cfg.Type == chip.T4027
	sim := simchip.New(b.layout(), cfg)
	return dram.New(sim, report.New(b.log))
}

// Run tests the simulated chip and remembers the outcome for show.
func (b *Bench) Run() (chip.Type, chip.Half, error) {
	sess := b.build()
	typ, half, err := sess.Run(b.socket)
	b.ran = true
	b.lastTyp = typ
	b.lastHalf = half
	b.lastErr = err
	return typ, half, err
}

// Detect senses the chip without running the pattern tests.
func (b *Bench) Detect() (chip.Type, error) {
	sess := b.build()
	return sess.Detect(b.socket)
}

// Show describes the bench state.
func (b *Bench) Show() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "socket: %v\n", b.socket)
	if b.typ == noChip {
		sb.WriteString("chip:   empty\n")
	} else {
		fmt.Fprintf(&sb, "chip:   %s\n", chip.Get(b.typ).Name)
	}
	sb.WriteString("defects:")
	defects := b.describeDefects()
	if len(defects) == 0 {
		sb.WriteString(" none")
	} else {
		for _, d := range defects {
			sb.WriteString(" " + d)
		}
	}
	sb.WriteString("\n")
	if b.ran {
		if b.lastErr != nil {
			fmt.Fprintf(&sb, "last:   failed, %v\n", b.lastErr)
		} else {
			fmt.Fprintf(&sb, "last:   passed, %s\n", chip.Name(b.lastTyp, b.lastHalf))
		}
	}
	return sb.String()
}

func (b *Bench) describeDefects() []string {
	var out []string
	if b.cfg.Absent {
		out = append(out, "absent")
	}
	if b.cfg.StuckBit {
		out = append(out, fmt.Sprintf("stuckbit=%d", b.cfg.StuckAddrBit))
	}
	if b.cfg.BadRowHalf != simchip.HalfNone {
		out = append(out, "rowhalf="+halfName(b.cfg.BadRowHalf))
	}
	if b.cfg.BadColHalf != simchip.HalfNone {
		out = append(out, "colhalf="+halfName(b.cfg.BadColHalf))
	}
	if b.cfg.RetentionUs != 0 {
		out = append(out, fmt.Sprintf("retention=%d", b.cfg.RetentionUs))
	}
	if b.cfg.BrokenRefresh {
		out = append(out, "refresh")
	}
	for _, l := range b.cfg.Grounded {
		out = append(out, "ground="+lineName(l))
	}
	return out
}

func halfName(h int) string {
	if h == simchip.HalfLower {
		return "lower"
	}
	return "upper"
}

func lineName(l bus.Line) string {
	port := "?"
	switch l.Port {
	case bus.PortB:
		port = "b"
	case bus.PortC:
		port = "c"
	case bus.PortD:
		port = "d"
	}
	bit := 0
	for m := l.Mask; m > 1; m >>= 1 {
		bit++
	}
	return fmt.Sprintf("%s%d", port, bit)
}
