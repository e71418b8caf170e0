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

package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dkorunic/untis-bot/entity"
	"github.com/tealeg/xlsx/v3"
)

const maxSheetName = 31

var (
	ErrXLSXSheet = errors.New("could not create spreadsheet sheet")
	ErrXLSXWrite = errors.New("could not write spreadsheet")

	XLSXHeader = []string{"Date", "Start", "End", "Subject", "Room", "Original room", "Lesson", "Status"}
)

// WriteXLSX writes the timetable entries of a user as a single sheet spreadsheet into w.
func WriteXLSX(w io.Writer, username string, entries []entity.TimetableEntry) error {
	wb := xlsx.NewFile()

	sh, err := wb.AddSheet(sheetName(username))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrXLSXSheet, err)
	}

	row := sh.AddRow()
	for _, h := range XLSXHeader {
		row.AddCell().SetString(h)
	}

	for _, e := range entries {
		start, end := PeriodBounds(e)

		row = sh.AddRow()
		row.AddCell().SetString(e.Date.Format("2006-01-02"))
		row.AddCell().SetString(start.Format("15:04"))
		row.AddCell().SetString(end.Format("15:04"))
		row.AddCell().SetString(SubjectName(e.Subject))
		row.AddCell().SetString(roomName(e.Room))

		original := ""
		if e.Room.IsChanged && e.Room.OriginalRoomName != nil {
			original = *e.Room.OriginalRoomName
		}

		row.AddCell().SetString(original)

		lesson := row.AddCell()
		if e.LsNumber != 0 {
			lesson.SetInt(e.LsNumber)
		}

		status := "scheduled"
		if e.IsCancelled {
			status = "cancelled"
		}

		row.AddCell().SetString(status)
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrXLSXWrite, err)
	}

	return nil
}

// sheetName strips characters not allowed in sheet names and truncates to the maximum length.
func sheetName(username string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}

		return r
	}, username)

	if name == "" {
		name = "Timetable"
	}

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	return name
}
