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

	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/fetch"
	"github.com/dkorunic/untis-bot/logger"
)

const methodSearchSchool = "searchSchool"

type searchParams struct {
	Search string `json:"search"`
}

// SearchSchools queries the central WebUntis school directory and returns the matching schools in upstream order.
func SearchSchools(ctx context.Context, query string, opts ...Option) ([]entity.School, error) {
	o := newOptions(opts)
	req := fetch.NewRequest(methodSearchSchool, []searchParams{{Search: query}})

	logger.Debug().Msgf("Searching schools matching %q", query)

	var res fetch.SchoolSearchResult

	if err := fetch.Call(ctx, o.transport, fetch.SchoolQueryURL, nil, req, &res); err != nil {
		return nil, err
	}

	return entity.MapSchools(res.Schools)
}
