/*
 * RamTest - Command parser.
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
	"strings"
	"unicode"

	"github.com/rcornwell/ramtest/tester/bench"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *bench.Bench) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// ProcessCommand executes one console command against the bench. The
// bool result requests exit.
func ProcessCommand(commandLine string, b *bench.Bench) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord()
	if command == "" {
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, b)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	l := 0
	for i := 0; i < len(command); i++ {
		l = i
		if l >= len(match.Name) || match.Name[l] != command[l] {
			return false
		}
	}
	return (l + 1) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// Try and match one command.
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for {
		if line.pos >= len(line.line) {
			return
		}
		if unicode.IsSpace(rune(line.line[line.pos])) {
			line.pos++
			continue
		}
		return
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	line.skipSpace()
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

// getWord grabs the next run of letters, lowercased.
func (line *cmdLine) getWord() string {
	line.skipSpace()

	value := ""
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		if !unicode.IsLetter(rune(by)) {
			break
		}
		value += string([]byte{by})
		line.pos++
	}
	return strings.ToLower(value)
}

// getToken grabs the next run of letters and digits, lowercased. Chip
// names and socket sizes start with a digit, so commands taking them
// use this instead of getWord.
func (line *cmdLine) getToken() string {
	line.skipSpace()

	value := ""
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		if !unicode.IsLetter(rune(by)) && !unicode.IsNumber(rune(by)) {
			break
		}
		value += string([]byte{by})
		line.pos++
	}
	return strings.ToLower(value)
}

// getEqual consumes an optional = followed by a token.
func (line *cmdLine) getEqual() string {
	line.skipSpace()
	if line.pos < len(line.line) && line.line[line.pos] == '=' {
		line.pos++
	}
	return line.getToken()
}
