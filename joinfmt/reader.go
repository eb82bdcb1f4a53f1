// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joinfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// An Entry is a single entry read from a records file. It may be a
// *Record or a *SyntaxError.
type Entry interface {
	// Pos returns the position of this entry as a file name and
	// a 1-based line number within that file.
	Pos() (fileName string, line int)
}

// A SyntaxError represents a syntax error on a particular line of a
// records file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noEntry = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// A Reader reads records in CSV form.
//
// Its API is modeled on bufio.Scanner. The first row of the input is
// a header naming the columns. Columns not named in the header are
// absent in every Record. Empty cells are absent. A header cell that
// does not name a known column is reported once as a *SyntaxError and
// then ignored, except for an empty header cell, which is silently
// ignored (this is the index column written by many dataframe tools).
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	csv      *csv.Reader
	fileName string
	platform string
	err      error // current I/O error

	header []Column // nil until the header is read; -1 for ignored cells
	entry  Entry
}

// NewReader constructs a reader to parse records from r. fileName is
// used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, "")
	return reader
}

// Reset resets the reader to begin reading from a new input.
//
// If platform is not "", it is used as the platform of every Record
// that does not have a platform column value of its own.
func (r *Reader) Reset(ior io.Reader, fileName, platform string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.csv = csv.NewReader(ior)
	r.csv.FieldsPerRecord = -1
	r.csv.ReuseRecord = true
	r.csv.TrimLeadingSpace = true
	r.fileName = fileName
	r.platform = platform
	r.err = nil
	r.header = nil
	r.entry = noEntry
}

// Scan advances the reader to the next entry and reports whether an
// entry was read. The caller should use the Result method to get the
// entry. If Scan reaches EOF or an I/O error occurs, it returns
// false, in which case the caller should use the Err method to check
// for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		row, err := r.csv.Read()
		if err == io.EOF {
			return false
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.entry = &SyntaxError{r.fileName, perr.StartLine, perr.Err.Error()}
			return true
		} else if err != nil {
			r.err = err
			return false
		}
		if isBlank(row) {
			continue
		}
		line, _ := r.csv.FieldPos(0)

		if r.header == nil {
			if bad := r.parseHeader(row); bad != nil {
				r.entry = &SyntaxError{r.fileName, line, bad.Error()}
				return true
			}
			continue
		}

		rec, err := r.parseRow(row)
		if err != nil {
			r.entry = &SyntaxError{r.fileName, line, err.Error()}
			return true
		}
		rec.fileName, rec.line = r.fileName, line
		r.entry = rec
		return true
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseHeader installs the header row. It returns an error describing
// any unknown column names, which are ignored.
func (r *Reader) parseHeader(row []string) error {
	r.header = make([]Column, len(row))
	var unknown []string
	for i, name := range row {
		name = strings.TrimSpace(name)
		c, ok := ParseColumn(name)
		if !ok {
			r.header[i] = -1
			if name != "" {
				unknown = append(unknown, fmt.Sprintf("%q", name))
			}
			continue
		}
		r.header[i] = c
	}
	if len(unknown) > 0 {
		return fmt.Errorf("ignoring unknown columns %s", strings.Join(unknown, ", "))
	}
	return nil
}

func (r *Reader) parseRow(row []string) (*Record, error) {
	if len(row) != len(r.header) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(r.header), len(row))
	}
	rec := NewRecord()
	for i, cell := range row {
		c := r.header[i]
		if c < 0 {
			continue
		}
		if err := rec.Set(c, strings.TrimSpace(cell)); err != nil {
			return nil, err
		}
	}
	if !rec.Has(ColPlatform) && r.platform != "" {
		rec.Set(ColPlatform, r.platform)
	}
	return rec, nil
}

// Result returns the entry that was just read by Scan. This is either
// a *Record or a *SyntaxError indicating a parse error that may be
// recoverable.
//
// If this returns a *Record, the caller owns it.
func (r *Reader) Result() Entry {
	return r.entry
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every Record from r. Syntax errors are collected and
// returned as warnings; the returned error is only set for I/O
// errors.
func ReadAll(r io.Reader, fileName, platform string) (recs []*Record, warnings []error, err error) {
	var reader Reader
	reader.Reset(r, fileName, platform)
	for reader.Scan() {
		switch e := reader.Result().(type) {
		case *Record:
			recs = append(recs, e)
		case *SyntaxError:
			warnings = append(warnings, e)
		}
	}
	return recs, warnings, reader.Err()
}
