/*
 * RamTest - Bench configuration keyword tests.
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

package testconfig

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	config "github.com/rcornwell/ramtest/config/configparser"
	"github.com/rcornwell/ramtest/tester/bench"
	"github.com/rcornwell/ramtest/tester/chip"
)

// A full configuration file drives the bench through the registered
// keywords.
func TestLoadConfigFile(t *testing.T) {
	text := `# bench setup
socket 18
chip 41256
inject stuckbit bit=3
inject refresh
logfile "ramtest.log"
log debug
`
	path := filepath.Join(t.TempDir(), "ramtest.cfg")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	Bench = bench.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	LogFile = ""
	Debug = false
	defer func() { Bench = nil }()

	if err := config.LoadConfigFile(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// The chip keyword moves the bench to the 16-pin socket.
	if Bench.Chip() != chip.T41256 {
		t.Errorf("chip got: %v expected: %v", Bench.Chip(), chip.T41256)
	}
	show := Bench.Show()
	if !strings.Contains(show, "stuckbit=3") || !strings.Contains(show, "refresh") {
		t.Errorf("defects not applied: %q", show)
	}
	if LogFile != "ramtest.log" {
		t.Errorf("logfile got: %q expected: %q", LogFile, "ramtest.log")
	}
	if !Debug {
		t.Errorf("log debug got: false expected: true")
	}
}

// Keyword errors surface with the line number.
func TestLoadConfigErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cfg")
	if err := os.WriteFile(path, []byte("socket 99\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	Bench = bench.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { Bench = nil }()
	if err := config.LoadConfigFile(path); err == nil {
		t.Errorf("socket 99 got: nil expected: error")
	}
}
