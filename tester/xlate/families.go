/*
 * RamTest - Socket wiring tables.
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

package xlate

// Wiring of the 16-pin socket (4164/41256 class):
//   A0=PC4 A1=PD1 A2=PD0 A3=PB2 A4=PB4 A5=PD7 A6=PB0 A7=PD6 A8=PC0
var Pin16 = New("16pin", []PortBits{
	{C: 0x10},
	{D: 0x02},
	{D: 0x01},
	{B: 0x04},
	{B: 0x10},
	{D: 0x80},
	{B: 0x01},
	{D: 0x40},
	{C: 0x01},
}, 5)

// Wiring of the 18-pin socket, standard interface (4416/4464):
//   A0=PB2 A1=PB4 A2=PD7 A3=PD6 A4=PD5 A5=PD4 A6=PD3 A7=PD2
var Pin18 = New("18pin", []PortBits{
	{B: 0x04},
	{B: 0x10},
	{D: 0x80},
	{D: 0x40},
	{D: 0x20},
	{D: 0x10},
	{D: 0x08},
	{D: 0x04},
}, 4)

// Wiring of the 18-pin socket, alternate interface (411000, 1Mx1):
//   A0=PC4 A1=PD0 A2=PD1 A3=PD2 A4=PD5 A5=PD6 A6=PD7 A7=PB4 A8=PB2 A9=PB0
var Pin18Alt = New("18pin-alt", []PortBits{
	{C: 0x10},
	{D: 0x01},
	{D: 0x02},
	{D: 0x04},
	{D: 0x20},
	{D: 0x40},
	{D: 0x80},
	{B: 0x10},
	{B: 0x04},
	{B: 0x01},
}, 7)

// Wiring of the 4116/4027 voltage adapter in the 20-pin socket:
//   A0-A6=PD0-PD6, no scramble. PD6 doubles as chip select on the 4027.
var Adapter = New("4116-adapter", []PortBits{
	{D: 0x01},
	{D: 0x02},
	{D: 0x04},
	{D: 0x08},
	{D: 0x10},
	{D: 0x20},
	{D: 0x40},
}, 4)

// Wiring of the 20-pin socket (514xxx class):
//   A0-A7=PD0-PD7 A8=PB4 A9=PC4
var Pin20 = New("20pin", []PortBits{
	{D: 0x01},
	{D: 0x02},
	{D: 0x04},
	{D: 0x08},
	{D: 0x10},
	{D: 0x20},
	{D: 0x40},
	{D: 0x80},
	{B: 0x10},
	{C: 0x10},
}, 8)
