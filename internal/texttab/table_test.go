// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"strings"
	"testing"
)

func TestPad(t *testing.T) {
	check := func(s string, a Align, w int, want string) {
		t.Helper()
		got := a.pad(s, w)
		if got != want {
			t.Errorf("want %q, got %q", want, got)
		}
	}

	check("abc", Left, 6, "abc   ")
	check("abc", Center, 6, " abc  ")
	check("abc", Center, 7, "  abc  ")
	check("abc", Right, 6, "   abc")
	check("☃", Right, 4, "   ☃")
	check("abcdef", Right, 3, "abcdef")
}

func TestFormat(t *testing.T) {
	var tab Table
	check := func(want string) {
		t.Helper()
		var gotBuf strings.Builder
		if err := tab.Format(&gotBuf); err != nil {
			t.Fatal(err)
		}
		if got := gotBuf.String(); want != got {
			t.Errorf("want:\n%sgot:\n%s", want, got)
		}
		tab = Table{}
	}

	// Basic test.
	tab.Row().Cells("a", "b", "c")
	tab.Row().Cells("d", "e", "f")
	check("a  b  c\nd  e  f\n")

	// Padding without trailing spaces.
	tab.Row().Cells("a", "b", "c")
	tab.Row().Cells("long", "e", "long")
	check("a     b  c\nlong  e  long\n")

	// Column alignment applies to the body only.
	tab.SetAlign(1, Right)
	tab.Header().Cells("name", "n")
	tab.Row().Cells("x", "100")
	tab.Row().Cells("yy", "7")
	check("name  n\n────  ───\nx     100\nyy      7\n")

	// Per-cell alignment.
	tab.Row().Cell("a", Right).Cell("b")
	tab.Row().Cells("xxx", "y")
	check("  a  b\nxxx  y\n")

	// Ragged rows.
	tab.Row().Cell("a")
	tab.Row().Cells("d", "e", "f")
	check("a\nd  e  f\n")

	// Header only.
	tab.Header().Cells("a", "b")
	check("a  b\n")
}

func TestFormatMarkdown(t *testing.T) {
	var tab Table
	tab.SetAlign(1, Right).SetAlign(2, Center)
	tab.Header().Cells("", "S:R")
	tab.Header().Cells("platform", "2", "4|8")
	tab.Row().Cells("gondor", "0.5")
	var buf strings.Builder
	if err := tab.FormatMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	want := `| platform | 2 | 4\|8 |
| --- | ---: | :---: |
|  | **S:R** |  |
| gondor | 0.5 |  |
`
	if got := buf.String(); got != want {
		t.Errorf("want:\n%sgot:\n%s", want, got)
	}
}
