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

package untis

import (
	"context"
	"sync"
	"time"

	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/fetch"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/untisdate"
)

const (
	methodGetTimetable = "getTimetable"
	methodGetSubjects  = "getSubjects"
)

// requested fields for every element type in getTimetable
var elementFields = []string{"id", "name", "longname", "externalkey"}

// Client talks to a single school server on behalf of one authenticated user.
type Client struct {
	transport  fetch.Transport
	clock      func() time.Time
	clientName string
	school     entity.School
	session    *entity.Session
	mu         sync.RWMutex
}

type timetableElement struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

type timetableOptions struct {
	ID               int64            `json:"id"`
	Element          timetableElement `json:"element"`
	ShowLsText       bool             `json:"showLsText"`
	ShowStudentgroup bool             `json:"showStudentgroup"`
	ShowLsNumber     bool             `json:"showLsNumber"`
	ShowSubstText    bool             `json:"showSubstText"`
	ShowInfo         bool             `json:"showInfo"`
	ShowBooking      bool             `json:"showBooking"`
	KlasseFields     []string         `json:"klasseFields"`
	RoomFields       []string         `json:"roomFields"`
	SubjectFields    []string         `json:"subjectFields"`
	TeacherFields    []string         `json:"teacherFields"`
	StartDate        string           `json:"startDate"`
	EndDate          string           `json:"endDate"`
}

type timetableParams struct {
	Options timetableOptions `json:"options"`
}

// NewClient returns a Client bound to school. The client is not authenticated until Authenticate succeeds.
func NewClient(school entity.School, opts ...Option) *Client {
	o := newOptions(opts)

	return &Client{
		transport:  o.transport,
		clock:      o.clock,
		clientName: o.clientName,
		school:     school,
	}
}

// School returns the school this client is bound to.
func (c *Client) School() entity.School {
	return c.school
}

// Session returns the current session and whether the client is authenticated.
func (c *Client) Session() (entity.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return entity.Session{}, false
	}

	return *c.session, true
}

// Authenticate logs in with username and password. On failure the previous session, if any, is kept.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := authenticate(ctx, c.transport, c.school, username, password, c.clientName)
	if err != nil {
		return err
	}

	c.session = &s

	return nil
}

// FetchTimetableBetween returns the timetable of the authenticated user between start and end (inclusive), in
// upstream order.
func (c *Client) FetchTimetableBetween(ctx context.Context, start, end time.Time) ([]entity.TimetableEntry, error) {
	s, _ := c.Session()

	params := timetableParams{
		Options: timetableOptions{
			ID:               c.clock().UnixMilli(),
			Element:          timetableElement{ID: s.UserID, Type: s.UserType},
			ShowLsText:       true,
			ShowStudentgroup: true,
			ShowLsNumber:     true,
			ShowSubstText:    true,
			ShowInfo:         true,
			ShowBooking:      true,
			KlasseFields:     elementFields,
			RoomFields:       elementFields,
			SubjectFields:    elementFields,
			TeacherFields:    elementFields,
			StartDate:        untisdate.Encode(start),
			EndDate:          untisdate.Encode(end),
		},
	}

	logger.Debug().Msgf("Fetching timetable %v-%v from %v", params.Options.StartDate, params.Options.EndDate,
		c.school.ServerHostname)

	var nodes []fetch.PeriodNode

	if err := c.call(ctx, s, methodGetTimetable, params, &nodes); err != nil {
		return nil, err
	}

	return entity.MapTimetable(nodes)
}

// FetchTimetableInWeeks returns the timetable for the work week weeks away from the current one.
func (c *Client) FetchTimetableInWeeks(ctx context.Context, weeks int) ([]entity.TimetableEntry, error) {
	monday, friday := untisdate.WorkWeekOffsetBy(c.clock(), weeks)

	return c.FetchTimetableBetween(ctx, monday, friday)
}

// FetchCurrentTimetable returns the timetable for the current work week.
func (c *Client) FetchCurrentTimetable(ctx context.Context) ([]entity.TimetableEntry, error) {
	monday, friday := untisdate.CurrentWorkWeek(c.clock())

	return c.FetchTimetableBetween(ctx, monday, friday)
}

// FetchAllSubjects returns every subject known to the school.
func (c *Client) FetchAllSubjects(ctx context.Context) ([]entity.Subject, error) {
	s, _ := c.Session()

	logger.Debug().Msgf("Fetching subjects from %v", c.school.ServerHostname)

	var nodes []fetch.SubjectNode

	if err := c.call(ctx, s, methodGetSubjects, struct{}{}, &nodes); err != nil {
		return nil, err
	}

	return entity.MapSubjects(nodes)
}

// Close releases idle connections held by the default transport.
func (c *Client) Close() {
	if t, ok := c.transport.(interface{ CloseConnections() }); ok {
		t.CloseConnections()
	}
}

// call sends a batched data request carrying the session cookie.
func (c *Client) call(ctx context.Context, s entity.Session, method string, params, result any) error {
	url := fetch.JSONRPCURL(c.school.ServerHostname, c.school.LoginName)

	return fetch.Call(ctx, c.transport, url, fetch.CookieHeader(s.Cookie), fetch.Batch(fetch.NewRequest(method, params)),
		result)
}
