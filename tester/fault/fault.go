/*
 * RamTest - Test fault taxonomy.
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

// Package fault defines the terminal error type shared by all family
// drivers. A test run stops at the first fault; there is no retry.
package fault

import "fmt"

// Kind classifies a fault for the blink-pattern reporter.
type Kind uint8

const (
	NoChip Kind = iota
	AddressLine
	Pattern
	Retention
	GroundShort
	RefreshTimeout
)

func (k Kind) String() string {
	switch k {
	case NoChip:
		return "no chip"
	case AddressLine:
		return "address line"
	case Pattern:
		return "pattern fault"
	case Retention:
		return "retention fault"
	case GroundShort:
		return "ground short"
	case RefreshTimeout:
		return "refresh timeout"
	}
	return "unknown"
}

// Fault carries the failure code shown to the user. For address line
// faults Code is the failed bit number, with 16 added for column bits.
// For ground shorts Code is the socket pin number. Row and Col are -1
// when no cell position applies.
type Fault struct {
	Code uint8
	Kind Kind
	Row  int
	Col  int
}

func (f *Fault) Error() string {
	if f.Row < 0 {
		return fmt.Sprintf("%s: code %d", f.Kind.String(), f.Code)
	}
	return fmt.Sprintf("%s: code %d at row %d col %d", f.Kind.String(), f.Code, f.Row, f.Col)
}

// New builds a fault with no cell position.
func New(code uint8, kind Kind) *Fault {
	return &Fault{Code: code, Kind: kind, Row: -1, Col: -1}
}

// At builds a fault located at a cell.
func At(code uint8, kind Kind, row, col int) *Fault {
	return &Fault{Code: code, Kind: kind, Row: row, Col: col}
}
