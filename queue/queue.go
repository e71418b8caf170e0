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

package queue

import (
	"context"
	"errors"

	"github.com/dkorunic/untis-bot/encdec"
	"github.com/dkorunic/untis-bot/msgtypes"
	"github.com/dkorunic/untis-bot/sqlitedb"
)

var ErrQueueing = errors.New("problem with persistent queue")

// StoreFailedMsgs appends an alert to the persistent queue identified by key, creating the queue when missing.
// Undecodable queue contents are replaced.
func StoreFailedMsgs(ctx context.Context, store *sqlitedb.Store, key []byte, g msgtypes.Message) error {
	return store.FetchAndStore(ctx, key, func(old []byte) ([]byte, error) {
		msgs, _ := encdec.DecodeMsgs(old)
		msgs = append(msgs, g)

		return encdec.EncodeMsgs(msgs)
	})
}
