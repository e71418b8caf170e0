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

package entity

import "time"

// School is a WebUntis school as returned by the school search.
type School struct {
	ServerHostname   string
	ServerURL        string
	MobileServiceURL string
	Address          string
	ID               int
	DisplayName      string
	LoginName        string // JSON-RPC "school" query parameter
}

// Session is an authenticated WebUntis session.
type Session struct {
	Cookie   string // JSESSIONID and schoolname cookies, sent as-is in the Cookie header
	UserID   int
	UserType int // element type of the person, used in timetable requests
}

// Subject is a teaching subject.
type Subject struct {
	ID       int
	Name     string
	LongName string
}

// Room is a room booked for a timetable period. OriginalRoomID and OriginalRoomName are only set when IsChanged.
type Room struct {
	ID               int
	Name             string
	LongName         string
	IsChanged        bool
	OriginalRoomID   *int
	OriginalRoomName *string
}

// TimetableEntry is a single timetable period.
type TimetableEntry struct {
	ID          int
	Date        time.Time // midnight, local time
	StartTime   int       // HHMM
	EndTime     string    // HHMM, as sent by upstream
	Subject     Subject
	Room        Room
	LsNumber    int
	IsCancelled bool
}
