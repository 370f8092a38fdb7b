/*
 * RamTest - DRAM chip catalogue.
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

// Package chip holds the static catalogue of supported DRAM types: their
// geometry, retention budgets and per-pattern timing, plus the pseudo-random
// pattern generator shared by every family driver.
package chip

import "strings"

// Type identifies one of the supported DRAM variants. The value is also
// the index into the definition table.
type Type int

const (
	T4164 Type = iota
	T41256
	T41257
	T4416
	T4464
	T514256
	T514258
	T514400
	T514402
	T411000
	T4116
	T4816
	T4027
	T4532
	T3732

	NumTypes int = iota
)

// Half marks a half-good part as having its working cells in the lower or
// upper half of the split address range.
type Half int

const (
	FullGood Half = iota
	LowerGood
	UpperGood
)

// Definition flags.
const (
	StaticColumn = 1 << iota // Column address latched without CAS toggle.
	NibbleMode               // CAS pulses auto-increment the column counter.
	SmallType                // Reduced geometry variant of the family.
)

// Definition describes one chip type. Delays and WriteTime are in 20
// microsecond units, matching the retention stagger tables the tests
// were tuned with.
type Definition struct {
	Name      string
	Retention int // Refresh budget in milliseconds.
	DelayRows int // Retention check stagger depth.
	Rows      int
	Cols      int
	Flags     int
	Delays    [6]int // Retention delay by pipeline row position, 20us units.
	WriteTime int    // Row write time, 20us units.
}

// Timing and geometry per type. Retention delays are derived from each
// chip's datasheet refresh budget less the measured row write time.
var definitions = [NumTypes]Definition{
	T4164:   {"4164", 4, 2, 256, 256, SmallType, [6]int{62, 61, 20, 20, 20, 20}, 39},
	T41256:  {"41256", 4, 1, 512, 512, 0, [6]int{125, 41, 41, 41, 41, 41}, 75},
	T41257:  {"41257", 4, 0, 512, 512, NibbleMode, [6]int{0, 0, 0, 0, 0, 0}, 0},
	T4416:   {"4416", 4, 4, 256, 64, SmallType, [6]int{30, 30, 30, 30, 11, 11}, 21},
	T4464:   {"4464", 4, 1, 256, 256, 0, [6]int{122, 48, 48, 48, 48, 48}, 77},
	T514256: {"514256", 4, 2, 512, 512, SmallType, [6]int{69, 68, 27, 27, 27, 27}, 31},
	T514258: {"514258", 4, 2, 512, 512, StaticColumn | SmallType, [6]int{69, 68, 27, 27, 27, 27}, 31},
	T514400: {"514400", 16, 5, 1024, 1024, 0, [6]int{98, 98, 98, 98, 98, 16}, 62},
	T514402: {"514402", 16, 5, 1024, 1024, StaticColumn, [6]int{99, 98, 98, 98, 98, 14}, 62},
	T411000: {"411000", 8, 1, 1024, 1024, 0, [6]int{244, 135, 135, 135, 135, 135}, 255},
	T4116:   {"4116", 2, 2, 128, 128, 0, [6]int{30, 30, 6, 6, 6, 6}, 24},
	T4816:   {"4816", 2, 2, 128, 128, 0, [6]int{30, 30, 7, 7, 7, 7}, 24},
	T4027:   {"4027", 2, 2, 64, 64, 0, [6]int{40, 40, 27, 27, 27, 27}, 12},
	T4532:   {"4532", 2, 1, 128, 256, SmallType, [6]int{54, 5, 5, 5, 5, 5}, 50},
	T3732:   {"3732", 2, 1, 256, 128, SmallType, [6]int{54, 5, 5, 5, 5, 5}, 50},
}

// Canonical test pattern bytes. Patterns 4 and 5 use the random table
// instead; the table entries here are only placeholders for display.
var Patterns = [6]uint8{0x00, 0xff, 0xaa, 0x55, 0xaa, 0x55}

// Get returns the definition for a chip type.
func Get(t Type) *Definition {
	return &definitions[t]
}

// Name of a chip type, with the half-good suffix if any.
func Name(t Type, half Half) string {
	name := definitions[t].Name
	switch half {
	case LowerGood:
		name += " (L)"
	case UpperGood:
		name += " (H)"
	}
	return name
}

func (t Type) String() string {
	if t < 0 || int(t) >= NumTypes {
		return "unknown"
	}
	return definitions[t].Name
}

// Lookup finds a chip type by name. Returns -1 when not known.
func Lookup(name string) Type {
	name = strings.TrimSpace(strings.ToUpper(name))
	for i := range definitions {
		if strings.ToUpper(definitions[i].Name) == name {
			return Type(i)
		}
	}
	return Type(-1)
}

// Width returns the data width in bits for a chip type.
func Width(t Type) int {
	switch t {
	case T4416, T4464, T514256, T514258, T514400, T514402:
		return 4
	default:
		return 1
	}
}
