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
	"io"
	"strings"
	"time"

	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/untisdate"
	"github.com/jordic/goics"
)

const (
	ICalProductID = "-//dkorunic//untis-bot//EN"
	icalUIDDomain = "untis-bot"
)

// Calendar is a timetable of one user that can be emitted as an iCalendar document.
type Calendar struct {
	Stamp    time.Time
	Username string
	Entries  []entity.TimetableEntry
}

// EmitICal builds a VCALENDAR with one VEVENT per timetable entry. Cancelled lessons are kept with a CANCELLED
// status.
func (c Calendar) EmitICal() goics.Componenter {
	cal := goics.NewComponent()
	cal.SetType("VCALENDAR")
	cal.AddProperty("VERSION", "2.0")
	cal.AddProperty("PRODID", ICalProductID)
	cal.AddProperty("CALSCALE", "GREGORIAN")
	cal.AddProperty("X-WR-CALNAME", icalText(c.Username))

	for _, e := range c.Entries {
		start, end := PeriodBounds(e)

		ev := goics.NewComponent()
		ev.SetType("VEVENT")
		ev.AddProperty("UID", fmt.Sprintf("%v-%v-%v@%v", e.ID, untisdate.Encode(e.Date), e.StartTime, icalUIDDomain))

		k, v := goics.FormatDateTime("DTSTAMP", c.Stamp)
		ev.AddProperty(k, v)

		k, v = goics.FormatDateTime("DTSTART", start)
		ev.AddProperty(k, v)

		k, v = goics.FormatDateTime("DTEND", end)
		ev.AddProperty(k, v)

		ev.AddProperty("SUMMARY", icalText(SubjectName(e.Subject)))
		ev.AddProperty("LOCATION", icalText(roomName(e.Room)))

		if e.IsCancelled {
			ev.AddProperty("STATUS", "CANCELLED")
		} else {
			ev.AddProperty("STATUS", "CONFIRMED")
		}

		if e.Room.IsChanged && e.Room.OriginalRoomName != nil {
			ev.AddProperty("DESCRIPTION", icalText("Room changed from "+*e.Room.OriginalRoomName))
		}

		cal.AddComponent(ev)
	}

	return cal
}

// WriteICal encodes the timetable entries of a user as iCalendar into w.
func WriteICal(w io.Writer, username string, entries []entity.TimetableEntry, stamp time.Time) {
	goics.NewICalEncode(w).Encode(Calendar{Stamp: stamp, Username: username, Entries: entries})
}

// icalText escapes TEXT property values.
func icalText(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`).Replace(s)
}
