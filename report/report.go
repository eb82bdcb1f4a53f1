// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report formats derived records and analysis results as
// tables of text, Markdown, CSV, or HTML.
//
// The builder functions (Records, Superiority, FPR, ...) turn analysis
// results into Tables. Write then renders a list of Tables in one of
// the Formats.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/bloomjoin/brjperf/internal/texttab"
)

// A Format selects how tables are rendered.
type Format int

const (
	Text Format = iota
	Markdown
	CSV
	HTML
)

var formatNames = map[string]Format{
	"text":     Text,
	"markdown": Markdown,
	"md":       Markdown,
	"csv":      CSV,
	"html":     HTML,
}

// ParseFormat parses a format name: text, markdown (or md), csv, or
// html.
func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Markdown:
		return "markdown"
	case CSV:
		return "csv"
	case HTML:
		return "html"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// A Table is a titled grid of formatted cells.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	// Numeric marks the columns whose cells are right aligned.
	Numeric []bool
	// Notes are printed after the table in text and Markdown and
	// below it in HTML. CSV omits them.
	Notes []string
}

func (t *Table) numeric(col int) bool {
	return col < len(t.Numeric) && t.Numeric[col]
}

func (t *Table) layout() *texttab.Table {
	var tab texttab.Table
	for i := range t.Header {
		if t.numeric(i) {
			tab.SetAlign(i, texttab.Right)
		}
	}
	tab.Header().Cells(t.Header...)
	for _, row := range t.Rows {
		tab.Row().Cells(row...)
	}
	return &tab
}

// Write renders tables to w in format f.
func Write(w io.Writer, f Format, tables ...*Table) error {
	switch f {
	case Text:
		return writeText(w, tables)
	case Markdown:
		return writeMarkdown(w, tables)
	case CSV:
		return writeCSV(w, tables)
	case HTML:
		return writeHTML(w, tables)
	}
	return fmt.Errorf("unknown format %v", f)
}

func writeText(w io.Writer, tables []*Table) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if t.Title != "" {
			fmt.Fprintln(w, t.Title)
		}
		if err := t.layout().Format(w); err != nil {
			return err
		}
		for _, n := range t.Notes {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, tables []*Table) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if t.Title != "" {
			fmt.Fprintf(w, "### %s\n\n", t.Title)
		}
		if err := t.layout().FormatMarkdown(w); err != nil {
			return err
		}
		if len(t.Notes) > 0 {
			fmt.Fprintln(w)
		}
		for _, n := range t.Notes {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeCSV writes each table as a header row followed by its rows.
// Tables are separated by an empty line.
func writeCSV(w io.Writer, tables []*Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		cw := csv.NewWriter(w)
		cw.Write(t.Header)
		cw.WriteAll(t.Rows)
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return nil
}
