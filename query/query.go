// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package query selects, groups, and projects join records.
//
// All functions are read-only: they never modify the records they are
// given, so they are safe to call concurrently on a shared table.
package query

import (
	"fmt"
	"strings"

	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/samber/lo"
)

// WhereEquals returns the records of recs whose value for each column
// of cols equals proto's value for that column. A column absent in
// proto matches only records where it is also absent.
//
// If cols is empty, every column present in proto is compared.
func WhereEquals(recs []*joinfmt.Record, proto *joinfmt.Record, cols ...joinfmt.Column) []*joinfmt.Record {
	if len(cols) == 0 {
		cols = joinfmt.AllColumns.Columns()
		cols = lo.Filter(cols, func(c joinfmt.Column, _ int) bool { return proto.Has(c) })
	}
	want := lo.Map(cols, func(c joinfmt.Column, _ int) string { return proto.Get(c) })
	return Where(recs, func(r *joinfmt.Record) bool {
		for i, c := range cols {
			if r.Has(c) != proto.Has(c) || r.Get(c) != want[i] {
				return false
			}
		}
		return true
	})
}

// Where returns the records of recs for which pred returns true, in
// order.
func Where(recs []*joinfmt.Record, pred func(*joinfmt.Record) bool) []*joinfmt.Record {
	return lo.Filter(recs, func(r *joinfmt.Record, _ int) bool { return pred(r) })
}

// A Key is the value of a set of columns shared by a group of records.
type Key struct {
	cols []joinfmt.Column
	vals []string
}

func keyOf(r *joinfmt.Record, cols []joinfmt.Column) Key {
	return Key{cols, lo.Map(cols, func(c joinfmt.Column, _ int) string { return r.Get(c) })}
}

// Columns returns the columns of k.
func (k Key) Columns() []joinfmt.Column {
	return k.cols
}

// Get returns the value of column c in k, formatted as in CSV, or ""
// if c is absent or not part of k.
func (k Key) Get(c joinfmt.Column) string {
	for i, kc := range k.cols {
		if kc == c {
			return k.vals[i]
		}
	}
	return ""
}

// String returns k as space-separated column=value pairs.
func (k Key) String() string {
	var b strings.Builder
	for i, c := range k.cols {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", c, k.vals[i])
	}
	return b.String()
}

// mapKey returns a comparable form of k.
func (k Key) mapKey() string {
	return strings.Join(k.vals, "\x00")
}

// A Group is a set of records sharing a Key.
type Group struct {
	Key     Key
	Records []*joinfmt.Record
}

// GroupBy partitions recs by their values for cols. Groups are
// returned in the order their first record appears in recs, and the
// records of each group keep their relative order.
func GroupBy(recs []*joinfmt.Record, cols ...joinfmt.Column) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, r := range recs {
		k := keyOf(r, cols)
		mk := k.mapKey()
		i, ok := index[mk]
		if !ok {
			i = len(groups)
			index[mk] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

func column(recs []*joinfmt.Record, c joinfmt.Column) []string {
	return lo.Map(recs, func(r *joinfmt.Record, _ int) string { return r.Get(c) })
}

// Project returns the values of cols for each record of recs,
// formatted as in CSV. Absent values are "".
func Project(recs []*joinfmt.Record, cols ...joinfmt.Column) [][]string {
	return lo.Map(recs, func(r *joinfmt.Record, _ int) []string { return keyOf(r, cols).vals })
}
