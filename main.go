/*
 * RamTest - Main process.
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

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/ramtest/command/reader"
	config "github.com/rcornwell/ramtest/config/configparser"
	testconfig "github.com/rcornwell/ramtest/config/testconfig"
	bench "github.com/rcornwell/ramtest/tester/bench"
	logger "github.com/rcornwell/ramtest/util/logger"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "ramtest.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	handler := logger.NewHandler(file, programLevel, optDebug)
	Logger := slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("RamTest Started")

	b := bench.New(Logger)
	testconfig.Bench = b

	// The configuration file is optional. The bench starts empty
	// without one.
	_, err := os.Stat(*optConfig)
	if err == nil {
		err = config.LoadConfigFile(*optConfig)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if file == nil && testconfig.LogFile != "" {
		file, _ = os.Create(testconfig.LogFile)
		handler = logger.NewHandler(file, programLevel, optDebug)
		Logger = slog.New(handler)
		slog.SetDefault(Logger)
		b.SetLogger(Logger)
	}
	if testconfig.Debug {
		debug := true
		handler.SetDebug(&debug)
	}

	reader.ConsoleReader(b)
	Logger.Info("RamTest stopped.")
}
