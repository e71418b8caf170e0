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

// Package logger provides a global zerolog logger shared by all packages.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger, writing JSON lines with timestamps to stderr.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Output duplicates the global logger and sets w as its output.
func Output(w io.Writer) zerolog.Logger {
	return Logger.Output(w)
}

// Level creates a child logger with the minimum accepted level set to level.
func Level(level zerolog.Level) zerolog.Logger {
	return Logger.Level(level)
}

// With creates a child logger with the field added to its context.
func With() zerolog.Context {
	return Logger.With()
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts a new message with info level.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a new message with warn level.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts a new message with error level.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal starts a new message with fatal level. The os.Exit(1) function is called by the Msg method.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Print sends a log event using debug level and no extra field.
func Print(v ...any) {
	Logger.Debug().CallerSkipFrame(1).Msg(sprint(v...))
}

// Printf sends a log event using debug level and no extra field.
func Printf(format string, v ...any) {
	Logger.Debug().CallerSkipFrame(1).Msgf(format, v...)
}

// sprint formats v the way fmt.Sprint does.
func sprint(v ...any) string {
	return fmt.Sprint(v...)
}
