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
	"errors"
	"fmt"

	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/fetch"
	"github.com/dkorunic/untis-bot/logger"
)

const methodAuthenticate = "authenticate"

var ErrAuthenticationFailed = errors.New("authentication failed")

type authParams struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Client   string `json:"client"`
}

// authenticate logs a user into a school server and returns the session credential for subsequent calls.
func authenticate(ctx context.Context, t fetch.Transport, school entity.School, username, password, client string,
) (entity.Session, error) {
	url := fetch.JSONRPCURL(school.ServerHostname, school.LoginName)
	req := fetch.NewRequest(methodAuthenticate, authParams{
		User:     username,
		Password: password,
		Client:   client,
	})

	logger.Debug().Msgf("Authenticating user %v at %v", username, school.ServerHostname)

	var res fetch.AuthResult

	if err := fetch.Call(ctx, t, url, nil, req, &res); err != nil {
		if errors.Is(err, fetch.ErrRPC) || errors.Is(err, fetch.ErrEmptyReply) {
			return entity.Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}

		return entity.Session{}, err
	}

	if res.SessionID == "" {
		return entity.Session{}, fmt.Errorf("%w: no session ID", ErrAuthenticationFailed)
	}

	if res.PersonID == nil || *res.PersonID == 0 {
		return entity.Session{}, fmt.Errorf("%w: no person ID", ErrAuthenticationFailed)
	}

	return entity.Session{
		Cookie:   fmt.Sprintf(`JSESSIONID="%s"; schoolname="%s"`, res.SessionID, school.LoginName),
		UserID:   *res.PersonID,
		UserType: res.PersonType,
	}, nil
}
