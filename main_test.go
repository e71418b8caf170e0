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

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/sqlitedb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationRandJitter(t *testing.T) {
	duration := 100 * time.Second
	min := time.Duration(float64(duration) * 0.9)
	max := time.Duration(float64(duration) * 1.1)

	for i := 0; i < 100; i++ {
		jittered := durationRandJitter(duration)
		if jittered < min || jittered > max {
			t.Errorf("jittered duration %v is outside the expected range [%v, %v]", jittered, min, max)
		}
	}
}

func TestExportName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"Plain", "alice", "alice"},
		{"Mail", "alice@school.example", "alice_school.example"},
		{"PathTraversal", "../../etc/passwd", "_.._etc_passwd"},
		{"LeadingDots", "..hidden", "hidden"},
		{"Empty", "", "timetable"},
		{"OnlyDots", "...", "timetable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exportName(tt.username); got != tt.want {
				t.Errorf("exportName(%q) = %q, want %q", tt.username, got, tt.want)
			}
		})
	}
}

func TestExportTimetable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	entries := []entity.TimetableEntry{
		{
			ID:        1,
			Date:      time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local),
			StartTime: 800,
			EndTime:   "845",
			Subject:   entity.Subject{ID: 10, Name: "MA", LongName: "Mathematics"},
			Room:      entity.Room{ID: 7, Name: "R101", LongName: "Room 101"},
		},
	}

	err := exportTimetable(config.Export{Dir: dir, ICal: true, XLSX: true}, "alice@school.example", entries)
	require.NoError(t, err)

	ics, err := os.ReadFile(filepath.Join(dir, "alice_school.example.ics"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(ics), "BEGIN:VCALENDAR"))
	assert.True(t, strings.Contains(string(ics), "Mathematics"))

	st, err := os.Stat(filepath.Join(dir, "alice_school.example.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestExportTimetableDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, exportTimetable(config.Export{Dir: dir}, "alice", nil))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExportTimetableMissingDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "missing")

	err := exportTimetable(config.Export{Dir: dir, ICal: true}, "alice", nil)
	require.ErrorIs(t, err, ErrExport)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"-1", zerolog.TraceLevel},
		{"0", zerolog.DebugLevel},
		{"3", zerolog.ErrorLevel},
		{"7", zerolog.Disabled},
		{"8", zerolog.InfoLevel},
		{"-2", zerolog.InfoLevel},
		{"1000", zerolog.InfoLevel},
		{"debug", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in, zerolog.InfoLevel); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTag(t *testing.T) {
	t.Parallel()

	v1, err := parseTag("v1.2.3")
	require.NoError(t, err)

	v2, err := parseTag("1.10.0")
	require.NoError(t, err)

	assert.True(t, v2.GT(v1))

	_, err = parseTag("latest")
	require.Error(t, err)
}

// runDedup feeds alerts through msgDedup and collects what passes.
func runDedup(t *testing.T, store *sqlitedb.Store, alerts ...msgtypes.Message) []msgtypes.Message {
	t.Helper()

	in := make(chan msgtypes.Message, len(alerts))
	out := make(chan msgtypes.Message, len(alerts))

	for _, a := range alerts {
		in <- a
	}

	close(in)

	var wg sync.WaitGroup

	msgDedup(context.Background(), store, &wg, in, out)
	wg.Wait()

	var got []msgtypes.Message
	for g := range out {
		got = append(got, g)
	}

	return got
}

func TestMsgDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts")

	alert := func(subject string, day time.Time) msgtypes.Message {
		return msgtypes.Message{
			Username:     "alice",
			Subject:      subject,
			Code:         msgtypes.Cancelled,
			Descriptions: []string{"Date", "Time"},
			Fields:       []string{day.Format(format.DateLayout), "08:00-08:45"},
		}
	}

	nextWeek := time.Now().AddDate(0, 0, 7)
	lastWeek := time.Now().AddDate(0, 0, -7)

	seen := alert("Mathematics", nextWeek)

	// fresh database is only seeded
	store, err := sqlitedb.New(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, runDedup(t, store, seen))
	require.NoError(t, store.Close())

	store, err = sqlitedb.New(context.Background(), path)
	require.NoError(t, err)

	defer store.Close()

	fresh := alert("Physics", nextWeek)
	past := alert("Chemistry", lastWeek)

	got := runDedup(t, store, seen, fresh, past)
	require.Len(t, got, 1)
	assert.Equal(t, "Physics", got[0].Subject)

	// same alert with another code is a different alert
	moved := fresh
	moved.Code = msgtypes.RoomChange

	got = runDedup(t, store, fresh, moved)
	require.Len(t, got, 1)
	assert.Equal(t, msgtypes.RoomChange, got[0].Code)
}
