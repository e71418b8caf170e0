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
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Transport posts a JSON body to an URL and decodes the JSON reply into out.
type Transport interface {
	Post(ctx context.Context, url string, header http.Header, body, out any) error
}

// Request is a single JSON-RPC 2.0 request envelope.
type Request struct {
	ID      string `json:"id"`
	Params  any    `json:"params"`
	Method  string `json:"method"`
	JSONRPC string `json:"jsonrpc"`
}

// RPCError is the error member of a JSON-RPC reply.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%v (code %v)", e.Message, e.Code)
}

// reply is a JSON-RPC reply with a not yet decoded result.
type reply struct {
	ID     any             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// AuthResult is the result of the authenticate method.
type AuthResult struct {
	SessionID  string `json:"sessionId"`
	PersonType int    `json:"personType"`
	PersonID   *int   `json:"personId"`
	KlasseID   int    `json:"klasseId"`
}

// SchoolNode is a single school from the searchSchool result.
type SchoolNode struct {
	Server           string `json:"server"`
	ServerURL        string `json:"serverUrl"`
	MobileServiceURL string `json:"mobileServiceUrl"`
	Address          string `json:"address"`
	SchoolID         *int   `json:"schoolId"`
	DisplayName      string `json:"displayName"`
	LoginName        string `json:"loginName"`
}

// SchoolSearchResult is the result of the searchSchool method.
type SchoolSearchResult struct {
	Size    int          `json:"size"`
	Schools []SchoolNode `json:"schools"`
}

// SubjectNode is a subject as found in getSubjects results and in timetable periods. Upstream spells the long name
// as longName in the former and longname in the latter, both match the case-insensitive tag.
type SubjectNode struct {
	ID       *int   `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longname"`
}

// RoomNode is a room reference inside a timetable period. Orgid and orgname are only set for substituted rooms.
type RoomNode struct {
	ID       *int   `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longname"`
	OrgID    *int   `json:"orgid"`
	OrgName  string `json:"orgname"`
}

// PeriodNode is a single getTimetable result element.
type PeriodNode struct {
	ID        *int          `json:"id"`
	Date      Text          `json:"date"`
	StartTime *int          `json:"startTime"`
	EndTime   Text          `json:"endTime"`
	Subjects  []SubjectNode `json:"su"`
	Rooms     []RoomNode    `json:"ro"`
	Code      string        `json:"code"`
	LsNumber  *int          `json:"lsnumber"`
}

// Text holds a JSON scalar that upstream sends either as a string or as a number, keeping its textual form.
type Text string

// UnmarshalJSON accepts a JSON string or a bare literal. Null leaves Text empty.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*t = Text(s)
	case b[0] == '{', b[0] == '[':
		return fmt.Errorf("%w: %s", ErrUnexpectedType, b)
	default:
		*t = Text(b)
	}

	return nil
}
