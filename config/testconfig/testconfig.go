/*
 * RamTest - Bench configuration keywords.
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

// Package testconfig registers the bench keywords with the
// configuration parser:
//
//	socket 16|18|20
//	chip 4164
//	inject stuckbit bit=3
//	inject retention us=300
//	logfile "ramtest.log"
//	log debug
package testconfig

import (
	"errors"
	"strings"

	config "github.com/rcornwell/ramtest/config/configparser"
	"github.com/rcornwell/ramtest/tester/bench"
	"github.com/rcornwell/ramtest/tester/dram"
)

// Bench is the target the keywords apply to. Main sets it before
// loading the configuration file.
var Bench *bench.Bench

// LogFile and Debug are picked up by main after the load.
var LogFile string
var Debug bool

func init() {
	config.RegisterOption("socket", setSocket)
	config.RegisterOption("chip", setChip)
	config.RegisterOptions("inject", setInject)
	config.RegisterOption("logfile", setLogFile)
	config.RegisterOptions("log", setLog)
}

func setSocket(value string, _ []config.Option) error {
	if Bench == nil {
		return errors.New("no bench to configure")
	}
	s := dram.SocketByName(strings.ToLower(value))
	if s < 0 {
		return errors.New("unknown socket: " + value)
	}
	Bench.SetSocket(s)
	return nil
}

func setChip(value string, _ []config.Option) error {
	if Bench == nil {
		return errors.New("no bench to configure")
	}
	return Bench.SetChip(value)
}

// setInject passes the defect and its first option value to the bench.
func setInject(value string, options []config.Option) error {
	if Bench == nil {
		return errors.New("no bench to configure")
	}
	param := ""
	if len(options) > 0 {
		param = options[0].EqualOpt
	}
	return Bench.Inject(value, param)
}

func setLogFile(value string, _ []config.Option) error {
	LogFile = value
	return nil
}

func setLog(value string, _ []config.Option) error {
	switch strings.ToLower(value) {
	case "debug":
		Debug = true
	case "info", "normal":
		Debug = false
	default:
		return errors.New("unknown log level: " + value)
	}
	return nil
}
