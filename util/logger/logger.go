/*
 * RamTest - Wrapper for slog
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

// Package logger formats test results and status as single line
// records for the console and an optional log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandler writes records to an optional log file and mirrors them
// to stderr. Debug records only reach stderr when debug output is
// switched on.
type LogHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	// prefix holds attrs from With, rendered under the group that was
	// open when they were added.
	prefix []string
	group  string
	debug  bool
}

// NewHandler builds a handler writing to file, which may be nil for
// console only operation.
func NewHandler(file io.Writer, level slog.Leveler, debug *bool) *LogHandler {
	return &LogHandler{
		mu:    &sync.Mutex{},
		out:   file,
		level: level,
		debug: *debug,
	}
}

// SetDebug turns the stderr mirror for debug records on or off.
func (h *LogHandler) SetDebug(debug *bool) {
	h.debug = *debug
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.prefix = append([]string{}, h.prefix...)
	for _, a := range attrs {
		c.prefix = append(c.prefix, h.attr(a))
	}
	return &c
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{
		r.Time.Format("2006/01/02 15:04:05"),
		r.Level.String() + ":",
		r.Message,
	}
	parts = append(parts, h.prefix...)
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, h.attr(a))
		return true
	})
	b := []byte(strings.Join(parts, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(b)
	}
	if h.debug || r.Level > slog.LevelDebug {
		_, err = os.Stderr.Write(b)
	}
	return err
}

// attr renders one attribute as key=value, with the group path on the
// key when one is open.
func (h *LogHandler) attr(a slog.Attr) string {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	return key + "=" + a.Value.String()
}
