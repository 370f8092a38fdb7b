/*
 * RamTest - Configuration file parser test cases.
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

package configparser

import (
	"testing"
)

var testOptions []Option
var testValue string
var testCalls int

func cleanUpConfig() {
	keywords = map[string]keywordDef{}
	testOptions = nil
	testValue = "error"
	testCalls = 0
}

func record(value string, options []Option) error {
	testValue = value
	testOptions = options
	testCalls++
	return nil
}

func parse(t *testing.T, text string) error {
	t.Helper()
	line := optionLine{line: text}
	return line.parseLine()
}

func TestOptionKeyword(t *testing.T) {
	cleanUpConfig()
	RegisterOption("socket", record)

	err := parse(t, "socket 16\n")
	if err != nil {
		t.Errorf("parse failed: %v", err)
	}
	if testValue != "16" {
		t.Errorf("value got: %s expected: 16", testValue)
	}

	err = parse(t, "socket\n")
	if err == nil {
		t.Errorf("option keyword without value succeeded")
	}

	err = parse(t, "socket 16 extra\n")
	if err == nil {
		t.Errorf("option keyword with extra value succeeded")
	}
}

func TestSwitchKeyword(t *testing.T) {
	cleanUpConfig()
	RegisterSwitch("refresh", record)

	err := parse(t, "refresh\n")
	if err != nil {
		t.Errorf("parse failed: %v", err)
	}
	if testCalls != 1 {
		t.Errorf("calls got: %d expected: 1", testCalls)
	}

	err = parse(t, "refresh now\n")
	if err == nil {
		t.Errorf("switch keyword with value succeeded")
	}
}

func TestOptionsKeyword(t *testing.T) {
	cleanUpConfig()
	RegisterOptions("inject", record)

	err := parse(t, "inject stuckbit bit=3\n")
	if err != nil {
		t.Errorf("parse failed: %v", err)
	}
	if testValue != "stuckbit" {
		t.Errorf("value got: %s expected: stuckbit", testValue)
	}
	if len(testOptions) != 1 {
		t.Fatalf("options got: %d expected: 1", len(testOptions))
	}
	if testOptions[0].Name != "bit" {
		t.Errorf("option name got: %s expected: bit", testOptions[0].Name)
	}
	if testOptions[0].EqualOpt != "3" {
		t.Errorf("option value got: %s expected: 3", testOptions[0].EqualOpt)
	}
}

func TestCommaOptions(t *testing.T) {
	cleanUpConfig()
	RegisterOptions("log", record)

	err := parse(t, "log trace bus, timing\n")
	if err != nil {
		t.Errorf("parse failed: %v", err)
	}
	if testValue != "trace" {
		t.Errorf("value got: %s expected: trace", testValue)
	}
	if len(testOptions) != 1 {
		t.Fatalf("options got: %d expected: 1", len(testOptions))
	}
	if len(testOptions[0].Value) != 1 || *testOptions[0].Value[0] != "timing" {
		t.Errorf("comma option missing")
	}
}

func TestQuotedValue(t *testing.T) {
	cleanUpConfig()
	RegisterOption("logfile", record)

	err := parse(t, "logfile \"test dir/ramtest.log\"\n")
	if err != nil {
		t.Errorf("parse failed: %v", err)
	}
	if testValue != "test dir/ramtest.log" {
		t.Errorf("value got: %s expected: test dir/ramtest.log", testValue)
	}
}

func TestCommentAndUnknown(t *testing.T) {
	cleanUpConfig()
	RegisterOption("socket", record)

	err := parse(t, "# socket 16\n")
	if err != nil {
		t.Errorf("comment line failed: %v", err)
	}
	if testCalls != 0 {
		t.Errorf("comment line called handler")
	}

	err = parse(t, "chip 4164\n")
	if err == nil {
		t.Errorf("unknown keyword succeeded")
	}
}
