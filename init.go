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
	"os"
	"strings"

	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/mattn/go-isatty"
)

// init trims build-time version variables.
//
//nolint:gochecknoinits
func init() {
	GitTag = strings.TrimSpace(GitTag)
	GitCommit = strings.TrimSpace(GitCommit)
	GitDirty = strings.TrimSpace(GitDirty)
	BuildTime = strings.TrimSpace(BuildTime)
}

// isTerminal checks if the current output is a terminal.
//
// It returns true if the environment does not disable color output, the terminal
// is not set to "dumb", and the output file descriptor is a terminal. It also
// considers Cygwin terminals as valid terminals.
func isTerminal() bool {
	fd := os.Stdout.Fd()

	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb" &&
		(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// checkExport creates the export directory before the first run and disables exports when that is not possible.
func checkExport(cfg *config.TomlConfig) {
	if !cfg.ExportEnabled {
		return
	}

	if err := os.MkdirAll(cfg.Export.Dir, exportDirPerm); err != nil {
		logger.Error().Msgf("%v %v, disabling timetable export: %v", ErrExport, cfg.Export.Dir, err)

		cfg.ExportEnabled = false
	}
}
