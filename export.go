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
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkorunic/untis-bot/config"
	"github.com/dkorunic/untis-bot/entity"
	"github.com/dkorunic/untis-bot/format"
	"github.com/dkorunic/untis-bot/logger"
	"github.com/google/renameio/v2"
)

const (
	exportDirPerm  = 0o755
	exportFilePerm = 0o644
	icalExt        = ".ics"
	xlsxExt        = ".xlsx"
)

var ErrExport = errors.New("unable to export timetable to")

// exportTimetable atomically writes the timetable of a user as iCalendar and/or XLSX into the export directory.
func exportTimetable(cfg config.Export, username string, entries []entity.TimetableEntry) error {
	base := filepath.Join(cfg.Dir, exportName(username))

	if cfg.ICal {
		var buf bytes.Buffer

		format.WriteICal(&buf, username, entries, time.Now())

		if err := renameio.WriteFile(base+icalExt, buf.Bytes(), exportFilePerm); err != nil {
			return fmt.Errorf("%w %v: %w", ErrExport, base+icalExt, err)
		}

		logger.Debug().Msgf("Exported %v timetable entries to %v", len(entries), base+icalExt)
	}

	if cfg.XLSX {
		if err := writeXLSX(base+xlsxExt, username, entries); err != nil {
			return fmt.Errorf("%w %v: %w", ErrExport, base+xlsxExt, err)
		}

		logger.Debug().Msgf("Exported %v timetable entries to %v", len(entries), base+xlsxExt)
	}

	return nil
}

// writeXLSX streams the spreadsheet into a pending file replacing path only on success.
func writeXLSX(path, username string, entries []entity.TimetableEntry) error {
	t, err := renameio.NewPendingFile(path, renameio.WithPermissions(exportFilePerm))
	if err != nil {
		return err
	}
	defer t.Cleanup() //nolint:errcheck

	if err := format.WriteXLSX(t, username, entries); err != nil {
		return err
	}

	return t.CloseAtomicallyReplace()
}

// exportName turns a username into a safe file name.
func exportName(username string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, username)

	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "timetable"
	}

	return name
}
