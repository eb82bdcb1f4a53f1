// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens empty record databases for tests.
package dbtest

import (
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bloomjoin/brjperf/store"
	_ "github.com/bloomjoin/brjperf/store/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run tests against the empty MySQL database `dsn` instead of in-memory SQLite")

// NewDB makes a connection to a testing database, either in-memory
// sqlite3 or MySQL depending on the -mysql flag. The database is
// closed when the test finishes.
func NewDB(t testing.TB) *store.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driverName, dataSourceName = "mysql", *mysqlDSN
	}
	d, err := store.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	// Make sure the database really is empty.
	uploads, err := d.CountUploads()
	if err != nil {
		t.Fatal(err)
	}
	if uploads != 0 {
		t.Fatalf("found %d row(s) in Uploads, want 0", uploads)
	}
	return d
}
