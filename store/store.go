// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store keeps raw join records in a SQL database.
//
// Records are grouped into uploads. Each record is stored as a CSV
// row of its base columns; derived columns are never stored and are
// recomputed when records are loaded. A *DB is a load.Source.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/load"
)

// DB is a high-level interface to a database of join records. It's
// safe for concurrent use by multiple goroutines.
type DB struct {
	sql    *sql.DB // underlying database connection
	driver string

	// prepared statements
	insertUpload *sql.Stmt
	insertRecord *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
//
// The driver must have been registered, for example by importing
// github.com/go-sql-driver/mysql or store/sqlite3.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db, dataSourceName); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db, driver: driverName}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(db *sql.DB, dsn string) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. This is used by the sqlite3 package to
// register a ConnectHook. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(db *sql.DB, dsn string) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Uploads (
	UploadID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Day VARCHAR(8),
	Seq BIGINT UNSIGNED,
	Platform VARCHAR(255),
	UNIQUE (Day, Seq)
);
CREATE TABLE IF NOT EXISTS Records (
	UploadID BIGINT UNSIGNED,
	RecordID BIGINT UNSIGNED,
	Platform VARCHAR(255),
	Content BLOB,
	PRIMARY KEY (UploadID, RecordID),
{{if not .sqlite3}}
	Index (Platform(100)),
{{end}}
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RecordsPlatform ON Records(Platform);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql.
func (db *DB) createTables() error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{db.driver: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertUpload, err = db.sql.Prepare("INSERT INTO Uploads(Day, Seq, Platform) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertRecord, err = db.sql.Prepare("INSERT INTO Records(UploadID, RecordID, Platform, Content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// An Upload is a set of records written in one transaction. Records
// inserted into an Upload become visible when it is committed.
type Upload struct {
	// ID is the public identifier of the upload, of the form
	// YYYYMMDD.n, where n is one more than the highest sequence
	// number of a live upload of that day.
	ID string

	// Platform is the platform of records that lack one.
	Platform string

	// id is the numeric value used as the primary key.
	id int64
	// recordid is the index of the next record to insert.
	recordid int64
	tx       *sql.Tx
	db       *DB
}

// NewUpload returns an upload for storing new records. Records
// without a platform are stored under platform.
func (db *DB) NewUpload(ctx context.Context, platform string) (*Upload, error) {
	day := now().UTC().Format("20060102")

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(Seq), 0) FROM Uploads WHERE Day = ?", day).Scan(&seq); err != nil {
		tx.Rollback()
		return nil, err
	}
	seq++
	res, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, day, seq, platform)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Upload{
		ID:       fmt.Sprintf("%s.%d", day, seq),
		Platform: platform,
		id:       id,
		tx:       tx,
		db:       db,
	}, nil
}

// InsertRecord inserts a single record in u. Only the base columns
// of r are stored.
func (u *Upload) InsertRecord(r *joinfmt.Record) error {
	platform := r.Platform
	if !r.Has(joinfmt.ColPlatform) {
		platform = u.Platform
	}
	if platform == "" {
		return fmt.Errorf("record has no platform")
	}
	content, err := encodeRecord(r)
	if err != nil {
		return err
	}
	if _, err := u.tx.Stmt(u.db.insertRecord).Exec(u.id, u.recordid, platform, content); err != nil {
		return err
	}
	u.recordid++
	return nil
}

// Commit finishes processing the upload.
func (u *Upload) Commit() error {
	return u.tx.Commit()
}

// Abort cleans up resources associated with the upload. It does not
// attempt to clean up partial database state.
func (u *Upload) Abort() error {
	return u.tx.Rollback()
}

// encodeRecord formats the base columns of r as a CSV row. The
// platform column is left empty; it is stored separately.
func encodeRecord(r *joinfmt.Record) ([]byte, error) {
	row := make([]string, len(joinfmt.BaseColumns))
	for i, c := range joinfmt.BaseColumns {
		if c != joinfmt.ColPlatform {
			row[i] = r.Get(c)
		}
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// header is the CSV header matching encodeRecord.
var header = func() string {
	names := make([]string, len(joinfmt.BaseColumns))
	for i, c := range joinfmt.BaseColumns {
		names[i] = c.String()
	}
	return strings.Join(names, ",") + "\n"
}()

func (db *DB) String() string {
	return db.driver + " database"
}

// Records returns the records stored for platform, in upload order.
// Rows that fail to parse are returned as warnings. If no record is
// stored for platform, Records returns an error matching
// load.ErrInputNotFound.
func (db *DB) Records(ctx context.Context, platform string) ([]*joinfmt.Record, []error, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT UploadID, RecordID, Content FROM Records WHERE Platform = ? ORDER BY UploadID, RecordID", platform)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var recs []*joinfmt.Record
	var warnings []error
	for rows.Next() {
		var uploadID, recordID int64
		var content []byte
		if err := rows.Scan(&uploadID, &recordID, &content); err != nil {
			return nil, nil, err
		}
		name := "upload " + strconv.FormatInt(uploadID, 10) + " record " + strconv.FormatInt(recordID, 10)
		got, warn, err := joinfmt.ReadAll(strings.NewReader(header+string(content)), name, platform)
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, got...)
		warnings = append(warnings, warn...)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(recs) == 0 && len(warnings) == 0 {
		return nil, nil, &load.InputNotFoundError{Platform: platform, Source: db.String()}
	}
	return recs, warnings, nil
}

// Platforms returns the platforms that have stored records, sorted.
func (db *DB) Platforms(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT DISTINCT Platform FROM Records ORDER BY Platform")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var platforms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads() (int, error) {
	var uploads int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Uploads").Scan(&uploads)
	return uploads, err
}

// ErrNoUpload is returned by DeleteUpload for an unknown upload ID.
var ErrNoUpload = errors.New("no such upload")

// DeleteUpload deletes the upload with the given public ID and all of
// its records.
func (db *DB) DeleteUpload(ctx context.Context, uploadID string) (err error) {
	day, seqStr, ok := strings.Cut(uploadID, ".")
	seq, perr := strconv.ParseInt(seqStr, 10, 64)
	if !ok || perr != nil {
		return fmt.Errorf("%w: %q", ErrNoUpload, uploadID)
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	var id int64
	err = tx.QueryRowContext(ctx, "SELECT UploadID FROM Uploads WHERE Day = ? AND Seq = ?", day, seq).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrNoUpload, uploadID)
	} else if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM Records WHERE UploadID = ?", id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM Uploads WHERE UploadID = ?", id)
	return err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertUpload.Close(); err != nil {
		return err
	}
	if err := db.insertRecord.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
