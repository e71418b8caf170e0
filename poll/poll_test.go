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

package poll

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/untis"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	authReply      = `{"id":"1","result":{"sessionId":"S1","personType":5,"personId":42}}`
	timetableReply = `[{"id":"1","result":[
		{"id":1,"date":20240115,"startTime":800,"endTime":845,"code":"cancelled",
			"su":[{"id":5,"name":"MA","longname":"Math"}],"ro":[{"id":2,"name":"101"}]},
		{"id":2,"date":20240115,"startTime":900,"endTime":945,
			"su":[{"id":6,"name":"PH","longname":"Physics"}],"ro":[{"id":3,"name":"102","orgname":"101"}]},
		{"id":3,"date":20240116,"startTime":800,"endTime":845,
			"su":[{"id":7,"name":"EN","longname":"English"}],"ro":[{"id":2,"name":"101"}]}]}]`
	schoolsReply = `{"id":"1","result":{"size":2,"schools":[
		{"server":"first.webuntis.com","schoolId":1,"displayName":"Example Academy","loginName":"academy"},
		{"server":"second.webuntis.com","schoolId":2,"displayName":"Example School","loginName":"Example School"}]}}`
)

type fakeTransport struct {
	replies  map[string]string
	failures map[string]int // transient failures left per method
	calls    map[string]int
	urls     []string
	mu       sync.Mutex
}

var errTransient = errors.New("connection reset")

func newFakeTransport(replies map[string]string) *fakeTransport {
	return &fakeTransport{replies: replies, failures: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeTransport) Post(_ context.Context, url string, _ http.Header, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var req struct {
		Method string `json:"method"`
	}

	if strings.HasPrefix(string(b), "[") {
		var batch []json.RawMessage
		if err := json.Unmarshal(b, &batch); err != nil {
			return err
		}

		b = batch[0]
	}

	if err := json.Unmarshal(b, &req); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[req.Method]++
	f.urls = append(f.urls, url)

	if f.failures[req.Method] > 0 {
		f.failures[req.Method]--

		return errTransient
	}

	return json.Unmarshal([]byte(f.replies[req.Method]), out)
}

func (f *fakeTransport) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method]
}

func collect(ch chan msgtypes.Message) []msgtypes.Message {
	close(ch)

	var msgs []msgtypes.Message
	for m := range ch {
		msgs = append(msgs, m)
	}

	return msgs
}

func testOpts(ft *fakeTransport) []untis.Option {
	clock := func() time.Time { return time.Date(2024, 1, 17, 12, 0, 0, 0, time.Local) }

	return []untis.Option{untis.WithTransport(ft), untis.WithClock(clock)}
}

var explicitSchool = config.School{Server: "example.webuntis.com", LoginName: "Example School"}

func TestGetTimetableAlerts(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{"authenticate": authReply, "getTimetable": timetableReply})
	ch := make(chan msgtypes.Message, 10)

	entries, err := GetTimetableAlerts(context.Background(), ch, explicitSchool,
		config.User{Username: "alice", Password: "secret"}, 1, 1, testOpts(ft)...)
	require.NoError(t, err)

	assert.Len(t, entries, 6)
	assert.Equal(t, 2, ft.count("getTimetable"))
	assert.Equal(t, 0, ft.count("searchSchool"))

	msgs := collect(ch)
	require.Len(t, msgs, 4)

	assert.Equal(t, msgtypes.Cancelled, msgs[0].Code)
	assert.Equal(t, "Math", msgs[0].Subject)
	assert.Equal(t, "alice", msgs[0].Username)
	assert.Equal(t, []string{"Mon 2024-01-15", "08:00-08:45", "101"}, msgs[0].Fields)

	assert.Equal(t, msgtypes.RoomChange, msgs[1].Code)
	assert.Equal(t, "Physics", msgs[1].Subject)
	assert.Contains(t, msgs[1].Fields, "101")
}

func TestGetTimetableAlertsSearch(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{
		"searchSchool": schoolsReply, "authenticate": authReply, "getTimetable": `[{"id":"1","result":[]}]`,
	})
	ch := make(chan msgtypes.Message, 10)

	_, err := GetTimetableAlerts(context.Background(), ch, config.School{Search: "example school"},
		config.User{Username: "alice", Password: "secret"}, 0, 1, testOpts(ft)...)
	require.NoError(t, err)
	assert.Empty(t, collect(ch))

	ft.mu.Lock()
	defer ft.mu.Unlock()

	require.Len(t, ft.urls, 3)
	assert.Equal(t, "https://second.webuntis.com/WebUntis/jsonrpc.do?school=Example+School", ft.urls[1])
}

func TestGetTimetableAlertsAuthNotRetried(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{"authenticate": `{"id":"1","result":{"personId":42}}`})
	ch := make(chan msgtypes.Message, 10)

	_, err := GetTimetableAlerts(context.Background(), ch, explicitSchool,
		config.User{Username: "alice", Password: "wrong"}, 0, 3, testOpts(ft)...)
	require.ErrorIs(t, err, untis.ErrAuthenticationFailed)
	assert.Equal(t, 1, ft.count("authenticate"))
	assert.Equal(t, 0, ft.count("getTimetable"))
}

func TestGetTimetableAlertsRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{"authenticate": authReply, "getTimetable": timetableReply})
	ft.failures["authenticate"] = 1
	ft.failures["getTimetable"] = 1

	ch := make(chan msgtypes.Message, 10)

	entries, err := GetTimetableAlerts(context.Background(), ch, explicitSchool,
		config.User{Username: "alice", Password: "secret"}, 0, 3, testOpts(ft)...)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 2, ft.count("authenticate"))
	assert.Equal(t, 2, ft.count("getTimetable"))
	assert.Len(t, collect(ch), 2)
}

func TestGetTimetableAlertsGivesUp(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport(map[string]string{"authenticate": authReply})
	ft.failures["authenticate"] = 5

	_, err := GetTimetableAlerts(context.Background(), make(chan msgtypes.Message, 1), explicitSchool,
		config.User{Username: "alice", Password: "secret"}, 0, 2, testOpts(ft)...)
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, ft.count("authenticate"))
}

func TestPickSchool(t *testing.T) {
	t.Parallel()

	schools := []entity.School{
		{DisplayName: "Example Academy", LoginName: "academy"},
		{DisplayName: "Example School", LoginName: "example"},
	}

	s, err := pickSchool("EXAMPLE SCHOOL", schools)
	require.NoError(t, err)
	assert.Equal(t, "example", s.LoginName)

	s, err = pickSchool("academy", schools)
	require.NoError(t, err)
	assert.Equal(t, "academy", s.LoginName)

	s, err = pickSchool("Example", schools)
	require.NoError(t, err)
	assert.Equal(t, "academy", s.LoginName)

	_, err = pickSchool("nothing", nil)
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, isRetryable(errTransient))
	assert.False(t, isRetryable(untis.ErrAuthenticationFailed))
	assert.False(t, isRetryable(entity.ErrMalformedResponse))
	assert.False(t, isRetryable(ErrSchoolNotFound))
}
