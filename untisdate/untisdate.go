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

// Package untisdate converts between calendar dates and the compact YYYYMMDD
// integers used by WebUntis, and computes Monday–Friday school-week windows.
package untisdate

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	Layout       = "20060102" // YYYYMMDD
	daysPerWeek  = 7
	workWeekSpan = 4 // Monday + 4 days is Friday
)

var ErrInvalidDate = errors.New("invalid WebUntis date")

// Encode formats t as YYYYMMDD using its own calendar fields, without any timezone conversion.
func Encode(t time.Time) string {
	return fmt.Sprintf("%04d%02d%02d", t.Year(), int(t.Month()), t.Day())
}

// EncodeInt is Encode returning the numeric form used inside request options.
func EncodeInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Decode parses a YYYYMMDD code into a date at midnight in the local timezone.
func Decode(code string) (time.Time, error) {
	if len(code) != len(Layout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, code)
	}

	year, errY := strconv.Atoi(code[0:4])
	month, errM := strconv.Atoi(code[4:6])
	day, errD := strconv.Atoi(code[6:8])

	if err := errors.Join(errY, errM, errD); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, code, err)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)

	// time.Date normalizes overflowing fields (20240231 -> March 2nd), reject those
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, code)
	}

	return t, nil
}

// DecodeInt is Decode for the numeric form found in timetable periods.
func DecodeInt(code int) (time.Time, error) {
	return Decode(strconv.Itoa(code))
}

// CurrentWorkWeek returns Monday and Friday of the week containing now.
func CurrentWorkWeek(now time.Time) (time.Time, time.Time) {
	return WorkWeekOffsetBy(now, 0)
}

// WorkWeekOffsetBy returns Monday and Friday of the week weeks away from the week containing now. Negative weeks
// go back in time.
func WorkWeekOffsetBy(now time.Time, weeks int) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Sunday is 0, so Sunday maps back 6 days and Monday maps to itself
	back := (int(today.Weekday()) + 6) % daysPerWeek

	monday := today.AddDate(0, 0, weeks*daysPerWeek-back)

	return monday, monday.AddDate(0, 0, workWeekSpan)
}
