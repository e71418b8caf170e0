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

	"github.com/dkorunic/untis-bot/logger"
	"github.com/dkorunic/untis-bot/sqlitedb"
)

// openDB opens the alert database, exiting on failure.
func openDB(ctx context.Context, file string) *sqlitedb.Store {
	store, err := sqlitedb.New(ctx, file)
	if err != nil {
		logger.Fatal().Msgf("Unable to open application database: %v", err)
	}

	return store
}

// closeDB closes the alert database.
func closeDB(store *sqlitedb.Store) {
	if err := store.Close(); err != nil {
		logger.Fatal().Msgf("Unable to close application database: %v", err)
	}
}
