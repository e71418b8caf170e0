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

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Output(&buf)
	l.Info().Msg("timetable fetched")
	if !strings.Contains(buf.String(), "timetable fetched") {
		t.Errorf("Output() did not write to the buffer")
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Output(&buf).Level(zerolog.WarnLevel)
	l.Info().Msg("hidden")
	l.Warn().Msg("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Level() let an info message through")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Level() dropped a warn message")
	}
}

func TestPrintAndPrintf(t *testing.T) {
	var buf bytes.Buffer
	saved := Logger
	defer func() { Logger = saved }()

	Logger = Logger.Output(&buf).Level(zerolog.DebugLevel)
	Print("test")
	Printf("test %s", "string")
	if !strings.Contains(buf.String(), `"message":"test"`) {
		t.Errorf("Print() did not write to the buffer")
	}
	if !strings.Contains(buf.String(), "test string") {
		t.Errorf("Printf() did not write to the buffer")
	}
}
