/*
 * RamTest - Result reporting and LED blink codes.
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

// Package report translates test outcomes into the tester's front panel
// language. The hardware has a single two color LED; results come out
// as counted blink groups. Pass patterns are green then orange, fail
// patterns are red then orange. The reporter logs each outcome once
// with its blink pattern instead of looping forever like the firmware.
package report

import (
	"errors"
	"log/slog"

	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/fault"
)

// Blink is one LED indication: count blinks of the lead color followed
// by count blinks of orange. Slow marks the continuous slow red blink
// used when no chip answers at all.
type Blink struct {
	Lead   int
	Orange int
	Slow   bool
}

// passBlinks maps each chip type to its green/orange success pattern.
var passBlinks = [chip.NumTypes]Blink{
	chip.T4164:   {Lead: 1, Orange: 1},
	chip.T41256:  {Lead: 1, Orange: 2},
	chip.T41257:  {Lead: 1, Orange: 3},
	chip.T4416:   {Lead: 2, Orange: 1},
	chip.T4464:   {Lead: 2, Orange: 2},
	chip.T514256: {Lead: 3, Orange: 1},
	chip.T514258: {Lead: 3, Orange: 3},
	chip.T514400: {Lead: 3, Orange: 2},
	chip.T514402: {Lead: 3, Orange: 4},
	chip.T411000: {Lead: 2, Orange: 3},
	chip.T4116:   {Lead: 4, Orange: 1},
	chip.T4816:   {Lead: 1, Orange: 4},
	chip.T4027:   {Lead: 4, Orange: 2},
	chip.T4532:   {Lead: 1, Orange: 5},
	chip.T3732:   {Lead: 1, Orange: 5},
}

// PassBlink returns the green/orange pattern for a passing chip. Half
// good parts share the 4532 patterns, the upper good variant getting
// the sixth orange count.
func PassBlink(t chip.Type, half chip.Half) Blink {
	b := passBlinks[t]
	if (t == chip.T4532 || t == chip.T3732) && half == chip.UpperGood {
		b.Orange = 6
	}
	return b
}

// FailBlink returns the red/orange pattern for a fault.
func FailBlink(f *fault.Fault) Blink {
	switch f.Kind {
	case fault.NoChip:
		return Blink{Slow: true}
	case fault.AddressLine:
		o := 0
		if f.Code > 0 && f.Code <= 20 {
			o = int(f.Code)
		}
		return Blink{Lead: 1, Orange: o}
	case fault.Pattern:
		o := 6
		if f.Code <= 4 {
			o = int(f.Code) + 1
		}
		return Blink{Lead: 2, Orange: o}
	case fault.Retention:
		return Blink{Lead: 2, Orange: 7}
	case fault.GroundShort:
		o := 0
		if f.Code > 0 && f.Code <= 20 {
			o = int(f.Code)
		}
		return Blink{Lead: 3, Orange: o}
	case fault.RefreshTimeout:
		return Blink{Lead: 2, Orange: 8}
	}
	return Blink{}
}

// Reporter writes outcomes to the session log. A nil Reporter is
// silent, which keeps the test drivers usable without one.
type Reporter struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Reporter {
	return &Reporter{log: log}
}

// Detected announces the sensed chip type before the long tests run.
func (r *Reporter) Detected(name string) {
	if r == nil {
		return
	}
	r.log.Info("detected", "chip", name)
}

// Pass reports a fully tested good chip with its blink pattern.
func (r *Reporter) Pass(t chip.Type, half chip.Half) {
	if r == nil {
		return
	}
	b := PassBlink(t, half)
	r.log.Info("test passed", "chip", chip.Name(t, half),
		"green", b.Lead, "orange", b.Orange)
}

// Fail reports a failed test. Faults log their blink pattern and the
// failing address when one was recorded.
func (r *Reporter) Fail(err error) {
	if r == nil {
		return
	}
	var f *fault.Fault
	if !errors.As(err, &f) {
		r.log.Error("test aborted", "err", err)
		return
	}
	b := FailBlink(f)
	args := []any{"kind", f.Kind.String(), "code", f.Code}
	if f.Row >= 0 {
		args = append(args, "row", f.Row, "col", f.Col)
	}
	if b.Slow {
		args = append(args, "blink", "slow red")
	} else {
		args = append(args, "red", b.Lead, "orange", b.Orange)
	}
	r.log.Error("test failed", args...)
}
