// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joinfmt

import (
	"encoding/csv"
	"io"
)

// A Writer writes records in CSV form.
type Writer struct {
	w    *csv.Writer
	cols []Column
	row  []string

	first bool
}

// NewWriter returns a writer that writes the given columns of each
// record to w. If cols is nil, it writes all Columns. The header row
// is written before the first record.
func NewWriter(w io.Writer, cols []Column) *Writer {
	if cols == nil {
		cols = Columns
	}
	return &Writer{w: csv.NewWriter(w), cols: cols, row: make([]string, len(cols)), first: true}
}

// Write writes rec to w. Absent columns are written as empty cells.
func (w *Writer) Write(rec *Record) error {
	if w.first {
		for i, c := range w.cols {
			w.row[i] = c.String()
		}
		if err := w.w.Write(w.row); err != nil {
			return err
		}
		w.first = false
	}
	for i, c := range w.cols {
		w.row[i] = rec.Get(c)
	}
	return w.w.Write(w.row)
}

// Flush writes any buffered data to the underlying io.Writer and
// returns any error from this or an earlier Write.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// WriteAll writes recs to w and flushes.
func (w *Writer) WriteAll(recs []*Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
