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

package encdec

import (
	"bytes"
	"encoding/gob"

	"github.com/dkorunic/untis-bot/msgtypes"
)

// DecodeMsgs decodes a GOB-encoded list of alerts. An empty input decodes to an empty list.
func DecodeMsgs(val []byte) ([]msgtypes.Message, error) {
	if len(val) == 0 {
		return []msgtypes.Message{}, nil
	}

	var msgs []msgtypes.Message

	err := gob.NewDecoder(bytes.NewReader(val)).Decode(&msgs)

	return msgs, err
}

// EncodeMsgs GOB-encodes a list of alerts.
func EncodeMsgs(msgs []msgtypes.Message) ([]byte, error) {
	var buf bytes.Buffer

	err := gob.NewEncoder(&buf).Encode(msgs)

	return buf.Bytes(), err
}
