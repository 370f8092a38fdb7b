/*
 * RamTest - Console commands.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/ramtest/tester/bench"
	"github.com/rcornwell/ramtest/tester/chip"
	"github.com/rcornwell/ramtest/tester/dram"
	"github.com/rcornwell/ramtest/tester/fault"
	"github.com/rcornwell/ramtest/tester/report"
)

var cmdList = []cmd{
	{Name: "test", Min: 1, Process: test},
	{Name: "detect", Min: 1, Process: detect},
	{Name: "inject", Min: 1, Process: inject, Complete: injectComplete},
	{Name: "clear", Min: 2, Process: clear},
	{Name: "chip", Min: 2, Process: setChip, Complete: chipComplete},
	{Name: "show", Min: 2, Process: show},
	{Name: "socket", Min: 2, Process: socket, Complete: socketComplete},
	{Name: "quit", Min: 1, Process: quit},
}

// Handle test command.
func test(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Test")

	if !line.isEOL() {
		return false, errors.New("test takes no arguments")
	}
	typ, half, err := b.Run()
	if err != nil {
		fmt.Println("Test failed: " + err.Error())
		var f *fault.Fault
		if errors.As(err, &f) {
			blink := report.FailBlink(f)
			fmt.Printf("LEDs: %d red, %d orange\n", blink.Lead, blink.Orange)
		}
		return false, nil
	}
	blink := report.PassBlink(typ, half)
	fmt.Printf("Test passed: %s\n", chip.Name(typ, half))
	fmt.Printf("LEDs: %d green, %d orange\n", blink.Lead, blink.Orange)
	return false, nil
}

// Handle detect command.
func detect(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Detect")

	if !line.isEOL() {
		return false, errors.New("detect takes no arguments")
	}
	typ, err := b.Detect()
	if err != nil {
		fmt.Println("Nothing detected: " + err.Error())
		return false, nil
	}
	fmt.Printf("Detected: %s\n", chip.Get(typ).Name)
	return false, nil
}

// Handle inject command, inject <defect>[=<value>].
func inject(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Inject")

	defect := line.getWord()
	if defect == "" {
		return false, errors.New("inject needs a defect name")
	}
	value := line.getEqual()
	return false, b.Inject(defect, value)
}

// Handle clear command.
func clear(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Clear")

	if !line.isEOL() {
		return false, errors.New("clear takes no arguments")
	}
	b.Clear()
	return false, nil
}

// Handle chip command, put a simulated chip in the bench.
func setChip(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Chip")

	name := line.getToken()
	if name == "" {
		return false, errors.New("chip needs a type name")
	}
	if name == "none" {
		b.RemoveChip()
		return false, nil
	}
	if err := b.SetChip(name); err != nil {
		return false, err
	}
	fmt.Printf("Socket: %v\n", b.Socket())
	return false, nil
}

// Handle show command.
func show(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Show")

	if !line.isEOL() {
		return false, errors.New("show takes no arguments")
	}
	fmt.Print(b.Show())
	return false, nil
}

// Handle socket command.
func socket(line *cmdLine, b *bench.Bench) (bool, error) {
	slog.Debug("Command Socket")

	name := line.getToken()
	if name == "" {
		fmt.Printf("Socket: %v\n", b.Socket())
		return false, nil
	}
	s := dram.SocketByName(name)
	if s < 0 {
		return false, errors.New("unknown socket: " + name)
	}
	b.SetSocket(s)
	return false, nil
}

// Handle quit command.
func quit(_ *cmdLine, _ *bench.Bench) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}
