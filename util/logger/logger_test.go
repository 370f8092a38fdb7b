/*
 * RamTest - Logger tests.
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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogFile(t *testing.T) {
	var out bytes.Buffer
	debug := false
	log := slog.New(NewHandler(&out, slog.LevelDebug, &debug))

	log.Info("chip passed", "type", "4164")
	line := out.String()
	if !strings.Contains(line, "INFO: chip passed") {
		t.Errorf("log line missing message got: %q", line)
	}
	if !strings.Contains(line, "type=4164") {
		t.Errorf("log line missing attribute got: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("log line not newline terminated got: %q", line)
	}

	// Debug records still reach the file with the mirror off.
	out.Reset()
	log.Debug("strobe trace")
	if !strings.Contains(out.String(), "DEBUG: strobe trace") {
		t.Errorf("debug record missing got: %q", out.String())
	}
}

func TestLogLevel(t *testing.T) {
	var out bytes.Buffer
	debug := false
	log := slog.New(NewHandler(&out, slog.LevelInfo, &debug))

	log.Debug("dropped")
	if out.Len() != 0 {
		t.Errorf("debug record not filtered got: %q", out.String())
	}
	log.Info("kept")
	if !strings.Contains(out.String(), "kept") {
		t.Errorf("info record missing got: %q", out.String())
	}
}

func TestLogAttrsAndGroups(t *testing.T) {
	var out bytes.Buffer
	debug := false
	log := slog.New(NewHandler(&out, slog.LevelInfo, &debug))

	log.With("socket", "16pin").WithGroup("fault").Info("failed", "code", 3)
	line := out.String()
	if !strings.Contains(line, "socket=16pin") {
		t.Errorf("prefixed attribute missing got: %q", line)
	}
	if strings.Contains(line, "fault.socket") {
		t.Errorf("attribute added before the group carries its prefix got: %q", line)
	}
	if !strings.Contains(line, "fault.code=3") {
		t.Errorf("grouped attribute missing got: %q", line)
	}
}
