// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// github.com/bloomjoin/brjperf/store. It must be imported instead of
// go-sqlite3 to ensure foreign keys are properly honored.
package sqlite3

import (
	"database/sql"
	"strings"

	"github.com/bloomjoin/brjperf/store"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func init() {
	store.RegisterOpenHook("sqlite3", func(db *sql.DB, dsn string) error {
		db.Driver().(*sqlite3.SQLiteDriver).ConnectHook = func(c *sqlite3.SQLiteConn) error {
			_, err := c.Exec("PRAGMA foreign_keys = ON;", nil)
			return err
		}
		// Each connection to an in-memory database gets its own
		// database.
		if inMemory(dsn) {
			db.SetMaxOpenConns(1)
		}
		return nil
	})
}

func inMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
