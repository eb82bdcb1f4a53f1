// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"fmt"
	"strings"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/samber/lo"
)

// A Filter selects records by column values.
type Filter struct {
	terms []term
}

type term struct {
	col    joinfmt.Column
	values []string // canonical, as formatted by Record.Get
	negate bool
}

// NewFilter constructs a record filter from a query of
// space-separated column:value terms, such as
// "cpu-mapping:single bloom-filter:basic". A record matches if, for
// every column named in the query, its value equals one of the values
// given for that column. A term prefixed by "-" excludes records with
// that value instead. Values are compared after parsing, so
// "r-size:2.5e5" matches a record with r-size 250000, and an empty
// value matches records where the column is absent.
//
// The query "*" matches every record.
func NewFilter(query string) (*Filter, error) {
	f := new(Filter)
	fields := strings.Fields(query)
	if len(fields) == 1 && fields[0] == "*" {
		return f, nil
	}
	index := make(map[[2]int]int)
	for _, field := range fields {
		negate := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		name, value, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("bad filter term %q: want column:value", field)
		}
		c, ok := joinfmt.ParseColumn(name)
		if !ok {
			return nil, fmt.Errorf("bad filter term %q: unknown column %q", field, name)
		}
		scratch := joinfmt.NewRecord()
		if err := scratch.Set(c, value); err != nil {
			return nil, fmt.Errorf("bad filter term %q: %w", field, err)
		}

		k := [2]int{int(c), lo.Ternary(negate, 1, 0)}
		i, ok := index[k]
		if !ok {
			i = len(f.terms)
			index[k] = i
			f.terms = append(f.terms, term{col: c, negate: negate})
		}
		f.terms[i].values = append(f.terms[i].values, scratch.Get(c))
	}
	return f, nil
}

// Match reports whether r satisfies f.
func (f *Filter) Match(r *joinfmt.Record) bool {
	for _, t := range f.terms {
		if lo.Contains(t.values, r.Get(t.col)) == t.negate {
			return false
		}
	}
	return true
}

// Apply returns the records of recs that satisfy f, in order.
func (f *Filter) Apply(recs []*joinfmt.Record) []*joinfmt.Record {
	return Where(recs, f.Match)
}
