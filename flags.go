// @license
// Copyright (C) 2025  Dinko Korunic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"time"

	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/sqlitedb"
	"github.com/pborman/getopt/v2"
)

const (
	DefaultConfFile     = ".untis-bot.toml" // default configuration filename
	DefaultTickInterval = "1h"              // default (and minimal permitted value) is 1 tick per 1h
	DefaultWeeks        = 1                 // work weeks ahead of the current one
	DefaultRetries      = 3                 // upstream and messenger attempts
)

var (
	debug, colorLogs, daemon, emulation, jitter, debugEvents *bool
	confFile, dbFile, tickIntervalString, cpuProfile        *string
	memProfile                                              *string
	weeks, retries                                          *uint
	tickInterval                                            time.Duration
)

// init initializes flags configuration.
func init() {
	debug = getopt.BoolLong("verbose", 'v', "enable verbose/debug log level")
	colorLogs = getopt.BoolLong("colorlogs", 'l', "enable colorized console logging")
	daemon = getopt.BoolLong("daemon", 'd', "enable daemon mode (running as a service)")
	emulation = getopt.BoolLong("test", 't', "send a test alert to all configured messengers and exit")
	jitter = getopt.BoolLong("jitter", 'j', "add random jitter of up to +-10% to the poll interval")
	debugEvents = getopt.BoolLong("debugevents", 'g', "log every received timetable alert")
	confFile = getopt.StringLong("conffile", 'f', DefaultConfFile, "configuration file (in TOML)")
	dbFile = getopt.StringLong("database", 'b', sqlitedb.DefaultDBPath, "alert database file")
	tickIntervalString = getopt.StringLong("interval", 'i', DefaultTickInterval,
		"interval between polls when in daemon mode")
	weeks = getopt.UintLong("weeks", 'w', DefaultWeeks, "work weeks to check ahead of the current one")
	retries = getopt.UintLong("retries", 'r', DefaultRetries, "retry attempts for upstream calls and alert delivery")
	cpuProfile = getopt.StringLong("cpuprofile", 0, "", "CPU profile output file")
	memProfile = getopt.StringLong("memprofile", 0, "", "memory profile output file")
}

// parseFlags parses input arguments and flags.
func parseFlags() {
	getopt.Parse()

	var err error

	tickInterval, err = time.ParseDuration(*tickIntervalString)
	if err != nil {
		logger.Fatal().Msgf("Unable to parse the poll interval %v: %v", *tickIntervalString, err)
	}

	if tickInterval < time.Hour {
		logger.Info().Msg("Poll interval is below 1h, so I will default to 1h")

		tickInterval = time.Hour
	}

	if *retries < 1 {
		*retries = 1
	}
}
