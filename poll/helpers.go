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
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/untis"
)

// resolveSchool returns the configured school directly, or searches the school directory and picks the school whose
// display or login name matches the search term, falling back to the first result.
func resolveSchool(ctx context.Context, school config.School, retryOpts []retry.Option, opts []untis.Option,
) (entity.School, error) {
	if school.Server != "" && school.LoginName != "" {
		return entity.School{
			ServerHostname: school.Server,
			DisplayName:    school.LoginName,
			LoginName:      school.LoginName,
		}, nil
	}

	var schools []entity.School

	err := retry.Do(
		func() error {
			var err error
			schools, err = untis.SearchSchools(ctx, school.Search, opts...)

			return err
		},
		retryOpts...,
	)
	if err != nil {
		return entity.School{}, err
	}

	return pickSchool(school.Search, schools)
}

// pickSchool selects the best match for query from search results.
func pickSchool(query string, schools []entity.School) (entity.School, error) {
	if len(schools) == 0 {
		return entity.School{}, ErrSchoolNotFound
	}

	for _, s := range schools {
		if strings.EqualFold(s.DisplayName, query) || strings.EqualFold(s.LoginName, query) {
			return s, nil
		}
	}

	if len(schools) > 1 {
		logger.Warn().Msgf("Multiple schools match %q, using %q (%v)", query, schools[0].DisplayName,
			schools[0].ServerHostname)
	}

	return schools[0], nil
}

// sendAlerts emits an alert for every cancelled lesson and room change among entries.
func sendAlerts(ch chan<- msgtypes.Message, username string, entries []entity.TimetableEntry) {
	now := time.Now()

	for _, e := range entries {
		descriptions, fields := format.EntryFields(e)

		if e.IsCancelled {
			ch <- msgtypes.Message{
				Timestamp:    now,
				Username:     username,
				Subject:      format.SubjectName(e.Subject),
				Descriptions: descriptions,
				Fields:       fields,
				Code:         msgtypes.Cancelled,
			}
		}

		if e.Room.IsChanged {
			ch <- msgtypes.Message{
				Timestamp:    now,
				Username:     username,
				Subject:      format.SubjectName(e.Subject),
				Descriptions: descriptions,
				Fields:       fields,
				Code:         msgtypes.RoomChange,
			}
		}
	}
}
