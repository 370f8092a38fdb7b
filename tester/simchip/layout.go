/*
 * RamTest - Socket layouts for the simulator.
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
	"github.com/rcornwell/ramtest/tester/bus"
	"github.com/rcornwell/ramtest/tester/xlate"
)

// Layout describes how a chip in one socket sees the three ports:
// which pins carry the strobes and where data moves. DataIn and
// DataOut list the lines for each data bit; on the bidirectional
// sockets both lists name the same pins. A zero OE mask means the
// socket has no output enable.
type Layout struct {
	Wiring  *xlate.Wiring
	RAS     bus.Line
	CAS     bus.Line
	WE      bus.Line
	OE      bus.Line
	DataIn  []bus.Line
	DataOut []bus.Line
}

// 16-pin socket: RAS=PB1 CAS=PC3 WE=PB3, Din=PC1 Dout=PC2.
var Layout16 = Layout{
	Wiring:  xlate.Pin16,
	RAS:     bus.Line{Port: bus.PortB, Mask: 0x02},
	CAS:     bus.Line{Port: bus.PortC, Mask: 0x08},
	WE:      bus.Line{Port: bus.PortB, Mask: 0x08},
	DataIn:  []bus.Line{{Port: bus.PortC, Mask: 0x02}},
	DataOut: []bus.Line{{Port: bus.PortC, Mask: 0x04}},
}

// 18-pin socket, standard interface: RAS=PC4 CAS=PC2 WE=PB1 OE=PC0,
// bidirectional D0=PC1 D1=PB0 D2=PB3 D3=PC3.
var Layout18 = Layout{
	Wiring: xlate.Pin18,
	RAS:    bus.Line{Port: bus.PortC, Mask: 0x10},
	CAS:    bus.Line{Port: bus.PortC, Mask: 0x04},
	WE:     bus.Line{Port: bus.PortB, Mask: 0x02},
	OE:     bus.Line{Port: bus.PortC, Mask: 0x01},
	DataIn: []bus.Line{
		{Port: bus.PortC, Mask: 0x02},
		{Port: bus.PortB, Mask: 0x01},
		{Port: bus.PortB, Mask: 0x08},
		{Port: bus.PortC, Mask: 0x08},
	},
	DataOut: []bus.Line{
		{Port: bus.PortC, Mask: 0x02},
		{Port: bus.PortB, Mask: 0x01},
		{Port: bus.PortB, Mask: 0x08},
		{Port: bus.PortC, Mask: 0x08},
	},
}

// 18-pin socket, alternate interface (411000): RAS=PB3 CAS=PC2 WE=PC1,
// Din=PC0 Dout=PC3.
var Layout18Alt = Layout{
	Wiring:  xlate.Pin18Alt,
	RAS:     bus.Line{Port: bus.PortB, Mask: 0x08},
	CAS:     bus.Line{Port: bus.PortC, Mask: 0x04},
	WE:      bus.Line{Port: bus.PortC, Mask: 0x02},
	DataIn:  []bus.Line{{Port: bus.PortC, Mask: 0x01}},
	DataOut: []bus.Line{{Port: bus.PortC, Mask: 0x08}},
}

// 20-pin socket: RAS=PB1 CAS=PB0 WE=PB3 OE=PB2, bidirectional
// IO0-IO3 on PC0-PC3.
var Layout20 = Layout{
	Wiring: xlate.Pin20,
	RAS:    bus.Line{Port: bus.PortB, Mask: 0x02},
	CAS:    bus.Line{Port: bus.PortB, Mask: 0x01},
	WE:     bus.Line{Port: bus.PortB, Mask: 0x08},
	OE:     bus.Line{Port: bus.PortB, Mask: 0x04},
	DataIn: []bus.Line{
		{Port: bus.PortC, Mask: 0x01},
		{Port: bus.PortC, Mask: 0x02},
		{Port: bus.PortC, Mask: 0x04},
		{Port: bus.PortC, Mask: 0x08},
	},
	DataOut: []bus.Line{
		{Port: bus.PortC, Mask: 0x01},
		{Port: bus.PortC, Mask: 0x02},
		{Port: bus.PortC, Mask: 0x04},
		{Port: bus.PortC, Mask: 0x08},
	},
}

// 4116/4027 adapter in the 20-pin socket: address A0-A6 direct on
// PD0-PD6, strobes shared with the 20-pin layout, Din=PC1 Dout=PC0.
// PD6 doubles as chip select on the 4027.
var Layout4116 = Layout{
	Wiring:  xlate.Adapter,
	RAS:     bus.Line{Port: bus.PortB, Mask: 0x02},
	CAS:     bus.Line{Port: bus.PortB, Mask: 0x01},
	WE:      bus.Line{Port: bus.PortB, Mask: 0x08},
	DataIn:  []bus.Line{{Port: bus.PortC, Mask: 0x02}},
	DataOut: []bus.Line{{Port: bus.PortC, Mask: 0x01}},
}
