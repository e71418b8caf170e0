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
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/fetch"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	authReply = `{"id":"1","jsonrpc":"2.0","result":{"sessionId":"ABC123","personType":5,"personId":42,"klasseId":7}}`

	timetableReply = `[{"id":"1","jsonrpc":"2.0","result":[{"id":1,"date":20240115,"startTime":800,"endTime":845,
		"su":[{"id":5,"name":"MA","longname":"Math"}],"ro":[{"id":2,"name":"101","longname":"Room 101"}],
		"code":"cancelled","lsnumber":3}]}]`

	subjectsReply = `[{"id":"1","jsonrpc":"2.0","result":[{"id":5,"name":"MA","longName":"Math"},
		{"id":6,"name":"PH","longName":"Physics"}]}]`

	schoolsReply = `{"id":"1","jsonrpc":"2.0","result":{"size":2,"schools":[
		{"server":"a.webuntis.com","serverUrl":"https://a.webuntis.com/WebUntis/?school=first","mobileServiceUrl":"",
		"address":"First Street 1","schoolId":1,"displayName":"First School","loginName":"first"},
		{"server":"b.webuntis.com","serverUrl":"https://b.webuntis.com/WebUntis/?school=second","mobileServiceUrl":"",
		"address":"Second Street 2","schoolId":2,"displayName":"Second School","loginName":"Second School"}]}}`
)

var testSchool = entity.School{
	ServerHostname: "example.webuntis.com",
	ID:             4242,
	DisplayName:    "Example School",
	LoginName:      "Example School",
}

// wednesday noon in the week of 2024-01-15
var testNow = time.Date(2024, 1, 17, 12, 0, 0, 0, time.Local)

type recordedCall struct {
	url    string
	header http.Header
	body   []byte
}

type fakeTransport struct {
	replies map[string]string
	err     error
	calls   []recordedCall
	mu      sync.Mutex
}

func newFakeTransport(replies map[string]string) *fakeTransport {
	return &fakeTransport{replies: replies}
}

func (f *fakeTransport) Post(_ context.Context, url string, header http.Header, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{url: url, header: header, body: b})
	reply, ok := f.replies[methodOf(b)]
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	if !ok {
		return errors.New("no reply for method")
	}

	return json.Unmarshal([]byte(reply), out)
}

func (f *fakeTransport) lastCall(t *testing.T) recordedCall {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.calls)

	return f.calls[len(f.calls)-1]
}

func methodOf(body []byte) string {
	var req struct {
		Method string `json:"method"`
	}

	if len(body) > 0 && body[0] == '[' {
		var batch []json.RawMessage
		if json.Unmarshal(body, &batch) != nil || len(batch) == 0 {
			return ""
		}

		body = batch[0]
	}

	if json.Unmarshal(body, &req) != nil {
		return ""
	}

	return req.Method
}

func newTestClient(t *testing.T, replies map[string]string) (*Client, *fakeTransport) {
	t.Helper()

	ft := newFakeTransport(replies)
	c := NewClient(testSchool, WithTransport(ft), WithClock(func() time.Time { return testNow }))

	return c, ft
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	c, ft := newTestClient(t, map[string]string{methodAuthenticate: authReply})

	_, ok := c.Session()
	assert.False(t, ok)

	require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

	s, ok := c.Session()
	require.True(t, ok)
	assert.Equal(t, `JSESSIONID="ABC123"; schoolname="Example School"`, s.Cookie)
	assert.Equal(t, 42, s.UserID)
	assert.Equal(t, 5, s.UserType)

	call := ft.lastCall(t)
	assert.Equal(t, "https://example.webuntis.com/WebUntis/jsonrpc.do?school=Example+School", call.url)
	assert.Empty(t, call.header.Get("Cookie"))

	var req struct {
		ID      string     `json:"id"`
		Params  authParams `json:"params"`
		Method  string     `json:"method"`
		JSONRPC string     `json:"jsonrpc"`
	}

	require.Equal(t, byte('{'), call.body[0], "authenticate must use a bare object envelope")
	require.NoError(t, json.Unmarshal(call.body, &req))
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "authenticate", req.Method)
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, authParams{User: "alice", Password: "secret", Client: DefaultClientName}, req.Params)
}

func TestAuthenticateFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		reply string
	}{
		{"MissingSessionID", `{"id":"1","result":{"personType":5,"personId":42}}`},
		{"EmptySessionID", `{"id":"1","result":{"sessionId":"","personType":5,"personId":42}}`},
		{"MissingPersonID", `{"id":"1","result":{"sessionId":"ABC123","personType":5}}`},
		{"RPCError", `{"id":"1","error":{"code":-8504,"message":"bad credentials"}}`},
		{"NullResult", `{"id":"1","result":null}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newTestClient(t, map[string]string{methodAuthenticate: tc.reply})

			err := c.Authenticate(context.Background(), "alice", "wrong")
			require.ErrorIs(t, err, ErrAuthenticationFailed)

			_, ok := c.Session()
			assert.False(t, ok, "failed authentication must leave the session unset")
		})
	}
}

func TestAuthenticateRPCErrorDetails(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, map[string]string{
		methodAuthenticate: `{"id":"1","error":{"code":-8504,"message":"bad credentials"}}`,
	})

	err := c.Authenticate(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, fetch.ErrRPC)

	var rpcErr *fetch.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -8504, rpcErr.Code)
}

func TestAuthenticateFailureKeepsPreviousSession(t *testing.T) {
	t.Parallel()

	c, ft := newTestClient(t, map[string]string{methodAuthenticate: authReply})
	require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

	before, _ := c.Session()

	ft.mu.Lock()
	ft.replies[methodAuthenticate] = `{"id":"1","result":{"personId":42}}`
	ft.mu.Unlock()

	require.ErrorIs(t, c.Authenticate(context.Background(), "alice", "secret"), ErrAuthenticationFailed)

	after, ok := c.Session()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestAuthenticateTransportError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	c, ft := newTestClient(t, nil)
	ft.err = errBoom

	err := c.Authenticate(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrAuthenticationFailed)
}

func TestFetchCurrentTimetable(t *testing.T) {
	t.Parallel()

	c, ft := newTestClient(t, map[string]string{
		methodAuthenticate: authReply,
		methodGetTimetable: timetableReply,
	})
	require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

	entries, err := c.FetchCurrentTimetable(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, 1, e.ID)
	assert.True(t, e.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 800, e.StartTime)
	assert.Equal(t, "845", e.EndTime)
	assert.Equal(t, entity.Subject{ID: 5, Name: "MA", LongName: "Math"}, e.Subject)
	assert.Equal(t, entity.Room{ID: 2, Name: "101", LongName: "Room 101"}, e.Room)
	assert.Equal(t, 3, e.LsNumber)
	assert.True(t, e.IsCancelled)

	call := ft.lastCall(t)
	assert.Equal(t, `JSESSIONID="ABC123"; schoolname="Example School"`, call.header.Get("Cookie"))
	require.Equal(t, byte('['), call.body[0], "getTimetable must use an array envelope")

	var batch []struct {
		Method string          `json:"method"`
		Params timetableParams `json:"params"`
	}

	require.NoError(t, json.Unmarshal(call.body, &batch))
	require.Len(t, batch, 1)
	assert.Equal(t, "getTimetable", batch[0].Method)

	opts := batch[0].Params.Options
	assert.Equal(t, testNow.UnixMilli(), opts.ID)
	assert.Equal(t, timetableElement{ID: 42, Type: 5}, opts.Element)
	assert.Equal(t, "20240115", opts.StartDate)
	assert.Equal(t, "20240119", opts.EndDate)
	assert.True(t, opts.ShowLsText && opts.ShowStudentgroup && opts.ShowLsNumber)
	assert.True(t, opts.ShowSubstText && opts.ShowInfo && opts.ShowBooking)

	fields := []string{"id", "name", "longname", "externalkey"}
	assert.Equal(t, fields, opts.KlasseFields)
	assert.Equal(t, fields, opts.RoomFields)
	assert.Equal(t, fields, opts.SubjectFields)
	assert.Equal(t, fields, opts.TeacherFields)
}

func TestFetchTimetableInWeeks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		weeks      int
		start, end string
	}{
		{0, "20240115", "20240119"},
		{1, "20240122", "20240126"},
		{3, "20240205", "20240209"},
		{-1, "20240108", "20240112"},
	}

	for _, tc := range testCases {
		c, ft := newTestClient(t, map[string]string{
			methodAuthenticate: authReply,
			methodGetTimetable: `[{"id":"1","result":[]}]`,
		})
		require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

		entries, err := c.FetchTimetableInWeeks(context.Background(), tc.weeks)
		require.NoError(t, err)
		assert.Empty(t, entries)

		var batch []struct {
			Params timetableParams `json:"params"`
		}

		require.NoError(t, json.Unmarshal(ft.lastCall(t).body, &batch))
		assert.Equal(t, tc.start, batch[0].Params.Options.StartDate, "weeks %d", tc.weeks)
		assert.Equal(t, tc.end, batch[0].Params.Options.EndDate, "weeks %d", tc.weeks)
	}
}

func TestFetchTimetableMalformed(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, map[string]string{
		methodAuthenticate: authReply,
		methodGetTimetable: `[{"id":"1","result":[{"id":1,"date":20240115,"startTime":800,"endTime":845,"su":[],
			"ro":[{"id":2,"name":"101"}]}]}]`,
	})
	require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

	entries, err := c.FetchCurrentTimetable(context.Background())
	require.ErrorIs(t, err, entity.ErrMalformedResponse)
	assert.Nil(t, entries)
}

func TestFetchWithoutSession(t *testing.T) {
	t.Parallel()

	c, ft := newTestClient(t, map[string]string{
		methodGetTimetable: `[{"id":"1","error":{"code":-8520,"message":"not authenticated"}}]`,
	})

	_, err := c.FetchCurrentTimetable(context.Background())
	require.ErrorIs(t, err, fetch.ErrRPC)
	assert.Empty(t, ft.lastCall(t).header.Get("Cookie"))
}

func TestFetchAllSubjects(t *testing.T) {
	t.Parallel()

	c, ft := newTestClient(t, map[string]string{
		methodAuthenticate: authReply,
		methodGetSubjects:  subjectsReply,
	})
	require.NoError(t, c.Authenticate(context.Background(), "alice", "secret"))

	first, err := c.FetchAllSubjects(context.Background())
	require.NoError(t, err)

	second, err := c.FetchAllSubjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entity.Subject{
		{ID: 5, Name: "MA", LongName: "Math"},
		{ID: 6, Name: "PH", LongName: "Physics"},
	}, first)
	assert.Equal(t, first, second)

	var batch []struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}

	require.NoError(t, json.Unmarshal(ft.lastCall(t).body, &batch))
	require.Len(t, batch, 1)
	assert.Equal(t, "getSubjects", batch[0].Method)
	assert.JSONEq(t, `{}`, string(batch[0].Params))
}

func TestConcurrentFetches(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, map[string]string{
		methodAuthenticate: authReply,
		methodGetSubjects:  subjectsReply,
	})

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if i%2 == 0 {
				_ = c.Authenticate(context.Background(), "alice", "secret")

				return
			}

			_, _ = c.FetchAllSubjects(context.Background())
		}()
	}

	wg.Wait()

	_, ok := c.Session()
	assert.True(t, ok)
}

func TestSearchSchools(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{methodSearchSchool: schoolsReply})

	schools, err := SearchSchools(context.Background(), "School", WithTransport(ft))
	require.NoError(t, err)
	require.Len(t, schools, 2)

	assert.Equal(t, "first", schools[0].LoginName)
	assert.Equal(t, "a.webuntis.com", schools[0].ServerHostname)
	assert.Equal(t, 1, schools[0].ID)
	assert.Equal(t, "Second School", schools[1].LoginName)
	assert.Equal(t, "Second Street 2", schools[1].Address)

	call := ft.lastCall(t)
	assert.Equal(t, fetch.SchoolQueryURL, call.url)

	var req struct {
		Method string         `json:"method"`
		Params []searchParams `json:"params"`
	}

	require.Equal(t, byte('{'), call.body[0])
	require.NoError(t, json.Unmarshal(call.body, &req))
	assert.Equal(t, "searchSchool", req.Method)
	assert.Equal(t, []searchParams{{Search: "School"}}, req.Params)
}

func TestSearchSchoolsEmpty(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{methodSearchSchool: `{"id":"1","result":{"size":0,"schools":[]}}`})

	schools, err := SearchSchools(context.Background(), "nothing", WithTransport(ft))
	require.NoError(t, err)
	assert.Empty(t, schools)
}

func TestClientSchoolAndClose(t *testing.T) {
	t.Parallel()

	c := NewClient(testSchool)
	assert.Equal(t, testSchool, c.School())

	c.Close()
}
