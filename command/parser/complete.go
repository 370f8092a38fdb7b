/*
 * RamTest - Command line completion.
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
	"slices"
	"strings"

	"github.com/rcornwell/ramtest/tester/chip"
)

// CompleteCmd completes a command line during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	// Word followed by more text, hand off to the command completer.
	if !line.isEOL() || strings.HasSuffix(commandLine, " ") {
		match := matchList(name)
		if len(match) != 1 {
			return nil
		}
		if match[0].Complete != nil {
			return match[0].Complete(&line)
		}
		return nil
	}

	// Complete the command word itself.
	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name)
		}
	}
	slices.Sort(matches)
	return matches
}

// matchWords filters candidates by the partial argument and prepends
// the text before it.
func (line *cmdLine) matchWords(candidates []string) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	partial := line.getToken()

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, partial) {
			matches = append(matches, leading+c+" ")
		}
	}
	slices.Sort(matches)
	return matches
}

func socketComplete(line *cmdLine) []string {
	return line.matchWords([]string{"16", "18", "20"})
}

func chipComplete(line *cmdLine) []string {
	names := []string{"none"}
	for t := 0; t < chip.NumTypes; t++ {
		names = append(names, strings.ToLower(chip.Get(chip.Type(t)).Name))
	}
	return line.matchWords(names)
}

func injectComplete(line *cmdLine) []string {
	return line.matchWords([]string{
		"absent", "stuckbit", "rowhalf", "colhalf",
		"retention", "refresh", "ground",
	})
}
