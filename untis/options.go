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

// Package untis is a client for the WebUntis JSON-RPC API: school discovery, authentication and normalized timetable
// and subject retrieval.
package untis

import (
	"net/http"
	"time"

	"github.com/dkorunic/untis-bot/fetch"
)

// DefaultClientName is sent as the client identifier on authentication.
const DefaultClientName = "untis-bot"

// Option configures a Client or a SearchSchools call.
type Option func(*options)

type options struct {
	transport  fetch.Transport
	httpClient *http.Client
	clock      func() time.Time
	clientName string
}

// WithTransport replaces the HTTP transport, typically with a fake in tests.
func WithTransport(t fetch.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHTTPClient sets the HTTP client used by the default transport. It is ignored when WithTransport is given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithClock sets the source of "now" used for work-week computation and request IDs.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithClientName sets the client identifier sent on authentication.
func WithClientName(name string) Option {
	return func(o *options) {
		o.clientName = name
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:      time.Now,
		clientName: DefaultClientName,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.transport == nil {
		o.transport = fetch.NewHTTPTransport(o.httpClient)
	}

	return o
}
