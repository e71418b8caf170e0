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

// Package sqlitedb is a small key/value store on top of SQLite, used to remember already sent alerts and to keep
// persistent queues of failed messages.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkorunic/untis-bot/logger"
	_ "modernc.org/sqlite" // register pure-Go sqlite database/sql driver
)

const (
	DefaultDBPath = ".untis-bot.db"
	DefaultTTL    = time.Hour * 24 * 120 // a bit more than one school term
	dbSuffix      = ".sqlite"
)

var (
	ErrSqliteOpen        = errors.New("could not open Sqlite database")
	ErrSqliteCreateTable = errors.New("could not create table")
)

// Store holds the sql.DB handle of the alert database.
type Store struct {
	db         *sql.DB
	now        func() time.Time
	isExisting bool // already created/initialized db
}

// New opens a database at filePath (with a .sqlite suffix appended when missing), creating the schema if needed and
// flagging whether the database file already existed.
func New(ctx context.Context, filePath string) (*Store, error) {
	if filePath == "" {
		filePath = DefaultDBPath
	}

	if !strings.HasSuffix(filePath, dbSuffix) {
		filePath += dbSuffix
	}

	isExisting := dbExists(filePath)

	logger.Debug().Msgf("Opening database: %v", filePath)

	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSqliteOpen, err)
	}

	// single writer, avoids SQLITE_BUSY between messenger goroutines
	db.SetMaxOpenConns(1)

	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key BLOB PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON kv(expires_at);
	`
	if _, err = db.ExecContext(ctx, query); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("%w: %w", ErrSqliteCreateTable, err)
	}

	s := &Store{db: db, now: time.Now, isExisting: isExisting}

	s.cleanup(ctx)

	return s, nil
}

// Close closes database.
func (s *Store) Close() error {
	logger.Debug().Msg("Closing database")

	return s.db.Close()
}

// Existing returns if the database file existed before it was opened.
func (s *Store) Existing() bool {
	return s.isExisting
}

// CheckAndFlagTTL checks if an alert key already exists in the database and flags it with DefaultTTL if it doesn't.
//
// The key is a SHA-256 hash of bucket (user), subBucket (alert kind) and the alert fields. It returns true when the
// key was already present and not expired.
func (s *Store) CheckAndFlagTTL(ctx context.Context, bucket, subBucket string, target []string) (bool, error) {
	key := hashContent(bucket, subBucket, target)
	now := s.now()

	var expiresAt sql.NullInt64

	err := s.db.QueryRowContext(ctx, "SELECT expires_at FROM kv WHERE key = ?", key).Scan(&expiresAt)

	switch {
	case err == nil:
		if !expiresAt.Valid || expiresAt.Int64 >= now.Unix() {
			return true, nil
		}
		// expired, overwritten below
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	_, err = s.db.ExecContext(ctx, "INSERT OR REPLACE INTO kv (key, value, expires_at) VALUES (?, ?, ?)", key,
		[]byte(""), now.Add(DefaultTTL).Unix())
	if err != nil {
		return false, err
	}

	return false, nil
}

// FetchAndStore reads the value stored under key (nil when missing or expired), passes it to f and stores the result
// under the same key without expiry, all in a single transaction.
func (s *Store) FetchAndStore(ctx context.Context, key []byte, f func(old []byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var (
		val       []byte
		expiresAt sql.NullInt64
	)

	err = tx.QueryRowContext(ctx, "SELECT value, expires_at FROM kv WHERE key = ?", key).Scan(&val, &expiresAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		val = nil
	case err != nil:
		return err
	case expiresAt.Valid && expiresAt.Int64 < s.now().Unix():
		val = nil
	}

	newVal, err := f(val)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO kv (key, value, expires_at) VALUES (?, ?, NULL)", key, newVal)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// cleanup removes expired keys.
func (s *Store) cleanup(ctx context.Context) {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at < ?", s.now().Unix())
	if err != nil {
		logger.Error().Msgf("Failed to cleanup expired keys: %v", err)
	}
}
