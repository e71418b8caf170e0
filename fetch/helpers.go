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

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	JSONRPCVersion = "2.0"
	SchoolQueryURL = "https://mobile.webuntis.com/ms/schoolquery2?m=searchSchool&v=i3.22.0"
	jsonRPCURL     = "https://%s/WebUntis/jsonrpc.do?school=%s"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrUnexpectedType   = errors.New("unexpected JSON type")
	ErrDecode           = errors.New("could not decode reply")
	ErrEmptyReply       = errors.New("empty JSON-RPC reply")
	ErrRPC              = errors.New("JSON-RPC error")
)

// JSONRPCURL returns the JSON-RPC endpoint of a school server. The login name only gets its spaces replaced with "+",
// any other character is passed through as-is.
func JSONRPCURL(serverHostname, loginName string) string {
	return fmt.Sprintf(jsonRPCURL, serverHostname, strings.ReplaceAll(loginName, " ", "+"))
}

// NewRequest builds a JSON-RPC 2.0 request envelope with a random request ID.
func NewRequest(method string, params any) Request {
	return Request{
		ID:      uuid.NewString(),
		Params:  params,
		Method:  method,
		JSONRPC: JSONRPCVersion,
	}
}

// Batch wraps a request into a single-element array, the shape WebUntis expects for data methods.
func Batch(req Request) []Request {
	return []Request{req}
}

// CookieHeader returns headers carrying the given cookie string, or no headers for an empty one.
func CookieHeader(cookie string) http.Header {
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", cookie)
	}

	return header
}

// Call posts body through t and decodes the result of the JSON-RPC reply into result. The reply may be an object or
// an array holding a single object. An error member in the reply yields ErrRPC.
func Call(ctx context.Context, t Transport, url string, header http.Header, body, result any) error {
	var raw json.RawMessage

	if err := t.Post(ctx, url, header, body, &raw); err != nil {
		return err
	}

	return DecodeReply(raw, result)
}

// DecodeReply decodes a raw JSON-RPC reply into result.
func DecodeReply(raw []byte, result any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return fmt.Errorf("%w", ErrEmptyReply)
	}

	var r reply

	// batched replies are arrays, take the first (and only) element
	if raw[0] == '[' {
		var replies []reply
		if err := json.Unmarshal(raw, &replies); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}

		if len(replies) == 0 {
			return fmt.Errorf("%w", ErrEmptyReply)
		}

		r = replies[0]
	} else if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if r.Error != nil {
		return fmt.Errorf("%w: %w", ErrRPC, r.Error)
	}

	if len(r.Result) == 0 || bytes.Equal(r.Result, []byte("null")) {
		return fmt.Errorf("%w: no result", ErrEmptyReply)
	}

	if err := json.Unmarshal(r.Result, result); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}
