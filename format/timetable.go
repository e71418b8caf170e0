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

package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dkorunic/untis-bot/entity"
)

const (
	DateLayout      = "Mon 2006-01-02"
	DefaultDuration = 45 * time.Minute // used when a period has no usable end time
)

// ClockTime renders a WebUntis HHMM time such as 745 as "07:45".
func ClockTime(hhmm int) string {
	return fmt.Sprintf("%02d:%02d", hhmm/100, hhmm%100)
}

// PeriodBounds returns the start and end of a timetable entry in the location of its date.
func PeriodBounds(e entity.TimetableEntry) (time.Time, time.Time) {
	start := atClock(e.Date, e.StartTime)

	end, err := strconv.Atoi(e.EndTime)
	if err != nil || end <= e.StartTime {
		return start, start.Add(DefaultDuration)
	}

	return start, atClock(e.Date, end)
}

// PeriodSpan renders the time span of a timetable entry, e.g. "08:00-08:45".
func PeriodSpan(e entity.TimetableEntry) string {
	start, end := PeriodBounds(e)

	return ClockTime(start.Hour()*100+start.Minute()) + "-" + ClockTime(end.Hour()*100+end.Minute())
}

// EntryFields returns the descriptions and values describing a timetable entry in an alert.
func EntryFields(e entity.TimetableEntry) ([]string, []string) {
	descriptions := []string{"Date", "Time", "Room"}
	fields := []string{e.Date.Format(DateLayout), PeriodSpan(e), roomName(e.Room)}

	if e.Room.IsChanged && e.Room.OriginalRoomName != nil {
		descriptions = append(descriptions, "Original room")
		fields = append(fields, *e.Room.OriginalRoomName)
	}

	if e.LsNumber != 0 {
		descriptions = append(descriptions, "Lesson")
		fields = append(fields, strconv.Itoa(e.LsNumber))
	}

	return descriptions, fields
}

// SubjectName returns the long subject name, falling back to the short one.
func SubjectName(s entity.Subject) string {
	if s.LongName != "" {
		return s.LongName
	}

	return s.Name
}

func roomName(r entity.Room) string {
	if r.LongName != "" && r.LongName != r.Name {
		return r.Name + " (" + r.LongName + ")"
	}

	return r.Name
}

func atClock(date time.Time, hhmm int) time.Time {
	y, m, d := date.Date()

	return time.Date(y, m, d, hhmm/100, hhmm%100, 0, 0, date.Location())
}
