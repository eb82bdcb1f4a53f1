// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out tables for terminals and Markdown.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Many of its methods return the Table so callers can easily chain
// them to build up many cells at once.
type Table struct {
	rows    [][]cell
	headers int // number of leading header rows
	align   []Align
}

type cell struct {
	value string
	align Align
	set   bool // align was given explicitly
}

// Align is the horizontal alignment of a cell.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func (a Align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	switch a {
	case Center:
		l := n / 2
		return strings.Repeat(" ", l) + s + strings.Repeat(" ", n-l)
	case Right:
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// Header starts a new header row. Header rows must precede all other
// rows.
func (t *Table) Header() *Table {
	if t.headers != len(t.rows) {
		panic("header row after body rows")
	}
	t.headers++
	t.rows = append(t.rows, nil)
	return t
}

// Row starts a new body row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Cell adds a cell at the end of the current row. If a is given, it
// overrides the column alignment for this cell.
func (t *Table) Cell(value string, a ...Align) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	c := cell{value: value}
	if len(a) > 0 {
		c.align, c.set = a[0], true
	}
	last := len(t.rows) - 1
	t.rows[last] = append(t.rows[last], c)
	return t
}

// Cells adds a cell for each of values at the end of the current row.
func (t *Table) Cells(values ...string) *Table {
	for _, v := range values {
		t.Cell(v)
	}
	return t
}

// SetAlign sets the default alignment of body cells in column col.
// Header cells are left aligned unless given an alignment.
func (t *Table) SetAlign(col int, a Align) *Table {
	for len(t.align) <= col {
		t.align = append(t.align, Left)
	}
	t.align[col] = a
	return t
}

func (t *Table) cols() int {
	n := 0
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	return n
}

func (t *Table) cellAlign(row, col int) Align {
	c := t.rows[row][col]
	switch {
	case c.set:
		return c.align
	case row < t.headers || col >= len(t.align):
		return Left
	}
	return t.align[col]
}

func (t *Table) widths() []int {
	ws := make([]int, t.cols())
	for _, row := range t.rows {
		for i, c := range row {
			ws[i] = max(ws[i], utf8.RuneCountInString(c.value))
		}
	}
	return ws
}

// Format lays out table t and writes it to w. Columns are separated
// by two spaces and a rule separates header rows from the body.
// Trailing spaces are trimmed.
func (t *Table) Format(w io.Writer) error {
	ws := t.widths()
	var b strings.Builder
	for r, row := range t.rows {
		b.Reset()
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(t.cellAlign(r, i).pad(c.value, ws[i]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
		if r == t.headers-1 && r < len(t.rows)-1 {
			b.Reset()
			for i, n := range ws {
				if i > 0 {
					b.WriteString("  ")
				}
				b.WriteString(strings.Repeat("─", n))
			}
			if _, err := fmt.Fprintln(w, b.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatMarkdown writes t to w as a GitHub-flavored Markdown table.
// Only the last header row is used as the Markdown header; earlier
// header rows are written as bold body rows. A table without a header
// row gets an empty one.
func (t *Table) FormatMarkdown(w io.Writer) error {
	ncols := t.cols()
	if ncols == 0 {
		return nil
	}
	line := func(cells []string) error {
		for len(cells) < ncols {
			cells = append(cells, "")
		}
		_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		return err
	}
	values := func(r int, bold bool) []string {
		out := make([]string, len(t.rows[r]))
		for i, c := range t.rows[r] {
			v := strings.ReplaceAll(c.value, "|", `\|`)
			if bold && v != "" {
				v = "**" + v + "**"
			}
			out[i] = v
		}
		return out
	}

	head := make([]string, ncols)
	if t.headers > 0 {
		copy(head, values(t.headers-1, false))
	}
	if err := line(head); err != nil {
		return err
	}
	rule := make([]string, ncols)
	for i := range rule {
		a := Left
		if i < len(t.align) {
			a = t.align[i]
		}
		switch a {
		case Center:
			rule[i] = ":---:"
		case Right:
			rule[i] = "---:"
		default:
			rule[i] = "---"
		}
	}
	if err := line(rule); err != nil {
		return err
	}
	for r := range t.rows {
		if r == t.headers-1 {
			continue
		}
		if err := line(values(r, r < t.headers)); err != nil {
			return err
		}
	}
	return nil
}
