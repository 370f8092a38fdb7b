/*
 * RamTest - Physical port driver interface.
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

// Package bus defines the port driver interface the family drivers run
// against. The real driver talks to three 8-bit MCU ports wired to the
// test socket; the simulator implements the same interface in process.
package bus

// Port names one of the three 8-bit I/O ports.
type Port int

const (
	PortB Port = iota
	PortC
	PortD
)

// Bus is the hardware access contract. WritePort sets the output latch;
// bits configured as inputs get their pull-up from the latch instead of
// driving the pin. ReadPort samples pin levels. SetDDR sets direction
// bits, 1 for output.
//
// Lock and Unlock bracket timing critical strobe sequences. On real
// hardware Lock masks interrupts; a delayed edge inside a RAS or CAS
// pulse violates the chip's maximum pulse width. A hosted driver may
// make them a mutex or a no-op.
type Bus interface {
	WritePort(p Port, value uint8)
	ReadPort(p Port) uint8
	SetDDR(p Port, dirs uint8)

	DelayMicros(n int)
	DelayMillis(n int)

	// ReadADC samples one ADC channel, 10 bit result. Used to detect
	// the 4116 voltage adapter on the 20-pin socket.
	ReadADC(channel int) uint16

	Lock()
	Unlock()
}

// Line identifies a single pin as a port and bit mask.
type Line struct {
	Port Port
	Mask uint8
}
