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

// Package poll fetches timetables of configured WebUntis users and turns cancelled lessons and room changes into
// alerts.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/fetch"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/untis"
	"github.com/reiver/go-cast"
)

var ErrSchoolNotFound = errors.New("no school matches the search")

// GetTimetableAlerts resolves the school, logs the user in and fetches the current work week plus weeks work weeks
// ahead. An alert is sent to ch for every cancelled lesson and every room change. All fetched entries are returned in
// upstream order, week by week.
//
// Every upstream call is retried up to retries times, except for authentication failures and malformed responses.
func GetTimetableAlerts(ctx context.Context, ch chan<- msgtypes.Message, school config.School, user config.User,
	weeks, retries uint, opts ...untis.Option,
) ([]entity.TimetableEntry, error) {
	r64, err := cast.Int64(retries)
	if err != nil || r64 < 1 {
		r64 = 1
	}

	w64, err := cast.Int64(weeks)
	if err != nil {
		w64 = 0
	}

	w := int(w64)

	// search, login and one fetch per week, each with its own retries
	ctx, stop := context.WithTimeout(ctx, time.Duration(r64*(w64+3))*fetch.Timeout)
	defer stop()

	retryOpts := []retry.Option{
		retry.Attempts(uint(r64)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	}

	s, err := resolveSchool(ctx, school, retryOpts, opts)
	if err != nil {
		return nil, err
	}

	client := untis.NewClient(s, opts...)
	defer client.Close()

	err = retry.Do(
		func() error {
			return client.Authenticate(ctx, user.Username, user.Password)
		},
		retryOpts...,
	)
	if err != nil {
		return nil, err
	}

	var all []entity.TimetableEntry

	for week := 0; week <= w; week++ {
		var entries []entity.TimetableEntry

		logger.Debug().Msgf("Fetching timetable for user %v, week offset %v", user.Username, week)

		err = retry.Do(
			func() error {
				var err error
				entries, err = client.FetchTimetableInWeeks(ctx, week)

				return err
			},
			retryOpts...,
		)
		if err != nil {
			return nil, fmt.Errorf("week offset %v: %w", week, err)
		}

		sendAlerts(ch, user.Username, entries)

		all = append(all, entries...)
	}

	return all, nil
}

// isRetryable reports whether an upstream error may go away on a retry.
func isRetryable(err error) bool {
	return !errors.Is(err, untis.ErrAuthenticationFailed) &&
		!errors.Is(err, entity.ErrMalformedResponse) &&
		!errors.Is(err, ErrSchoolNotFound)
}
