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

// Package entity holds WebUntis domain entities and the functions mapping raw JSON-RPC nodes into them.
package entity

import (
	"errors"
	"fmt"

	"github.com/dkorunic/untis-bot/fetch"
	"github.com/dkorunic/untis-bot/untisdate"
)

const CodeCancelled = "cancelled"

var ErrMalformedResponse = errors.New("malformed WebUntis response")

// MapSubject converts a subject node into a Subject.
func MapSubject(node fetch.SubjectNode) (Subject, error) {
	if node.ID == nil {
		return Subject{}, missing("subject", "id")
	}

	return Subject{
		ID:       *node.ID,
		Name:     node.Name,
		LongName: node.LongName,
	}, nil
}

// MapRoom converts a room node into a Room. A room counts as changed when either an original room ID or an original
// room name is present.
func MapRoom(node fetch.RoomNode) (Room, error) {
	if node.ID == nil {
		return Room{}, missing("room", "id")
	}

	r := Room{
		ID:       *node.ID,
		Name:     node.Name,
		LongName: node.LongName,
	}

	hasOrgID := node.OrgID != nil && *node.OrgID != 0
	r.IsChanged = hasOrgID || node.OrgName != ""

	if r.IsChanged {
		if hasOrgID {
			id := *node.OrgID
			r.OriginalRoomID = &id
		}

		if node.OrgName != "" {
			name := node.OrgName
			r.OriginalRoomName = &name
		}
	}

	return r, nil
}

// MapTimetableEntry converts a getTimetable period into a TimetableEntry. Only the first subject and the first room of
// the period are used.
func MapTimetableEntry(node fetch.PeriodNode) (TimetableEntry, error) {
	if node.ID == nil {
		return TimetableEntry{}, missing("period", "id")
	}

	if len(node.Subjects) == 0 {
		return TimetableEntry{}, missing("period", "su")
	}

	if len(node.Rooms) == 0 {
		return TimetableEntry{}, missing("period", "ro")
	}

	if node.StartTime == nil {
		return TimetableEntry{}, missing("period", "startTime")
	}

	date, err := untisdate.Decode(string(node.Date))
	if err != nil {
		return TimetableEntry{}, fmt.Errorf("%w: period %v: %w", ErrMalformedResponse, *node.ID, err)
	}

	subject, err := MapSubject(node.Subjects[0])
	if err != nil {
		return TimetableEntry{}, err
	}

	room, err := MapRoom(node.Rooms[0])
	if err != nil {
		return TimetableEntry{}, err
	}

	e := TimetableEntry{
		ID:          *node.ID,
		Date:        date,
		StartTime:   *node.StartTime,
		EndTime:     string(node.EndTime),
		Subject:     subject,
		Room:        room,
		IsCancelled: node.Code == CodeCancelled,
	}

	if node.LsNumber != nil {
		e.LsNumber = *node.LsNumber
	}

	return e, nil
}

// MapSchool converts a school search node into a School.
func MapSchool(node fetch.SchoolNode) (School, error) {
	if node.Server == "" {
		return School{}, missing("school", "server")
	}

	if node.LoginName == "" {
		return School{}, missing("school", "loginName")
	}

	s := School{
		ServerHostname:   node.Server,
		ServerURL:        node.ServerURL,
		MobileServiceURL: node.MobileServiceURL,
		Address:          node.Address,
		DisplayName:      node.DisplayName,
		LoginName:        node.LoginName,
	}

	if node.SchoolID != nil {
		s.ID = *node.SchoolID
	}

	return s, nil
}

// MapSubjects maps all subject nodes in order, failing on the first malformed one.
func MapSubjects(nodes []fetch.SubjectNode) ([]Subject, error) {
	return mapAll(nodes, MapSubject)
}

// MapTimetable maps all periods in upstream order, failing on the first malformed one.
func MapTimetable(nodes []fetch.PeriodNode) ([]TimetableEntry, error) {
	return mapAll(nodes, MapTimetableEntry)
}

// MapSchools maps all school nodes in order, failing on the first malformed one.
func MapSchools(nodes []fetch.SchoolNode) ([]School, error) {
	return mapAll(nodes, MapSchool)
}

// mapAll applies f to every node, preserving order.
func mapAll[N, E any](nodes []N, f func(N) (E, error)) ([]E, error) {
	out := make([]E, 0, len(nodes))

	for i := range nodes {
		e, err := f(nodes[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out = append(out, e)
	}

	return out, nil
}

// missing returns ErrMalformedResponse for a required field absent from a node.
func missing(node, field string) error {
	return fmt.Errorf("%w: %v without %v", ErrMalformedResponse, node, field)
}
