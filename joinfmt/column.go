// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joinfmt

import "strings"

// A Column identifies one column of a Record.
type Column int

const (
	ColPlatform Column = iota
	ColFilter
	ColRSize
	ColSSize
	ColSSel
	ColBloomSize
	ColBloomHashes
	ColBloomBlockSize
	ColMapping
	ColThreads
	ColNsecPerTuple
	ColTimeUsecs

	// Hardware performance counters.
	ColCycles
	ColInstructions
	ColStallsL1DMiss
	ColStallsL2Miss
	ColStallsL3Miss
	ColStallsMemAny
	ColDTLBLoadMisses
	ColSTLBMissLoads
	ColL1DCacheLoadMisses
	ColL2RqstsMiss
	ColLLCLoadMisses

	ColFiltered

	// Derived columns.
	ColCacheUsage
	ColFPREmp
	ColFPRTheo
	ColSRRatio
	ColSpeedup

	numColumns
)

// NumCounters is the number of hardware counter columns.
const NumCounters = int(ColLLCLoadMisses-ColCycles) + 1

var columnNames = [numColumns]string{
	ColPlatform:           "platform",
	ColFilter:             "bloom-filter",
	ColRSize:              "r-size",
	ColSSize:              "s-size",
	ColSSel:               "s-sel",
	ColBloomSize:          "bloom-size",
	ColBloomHashes:        "bloom-hashes",
	ColBloomBlockSize:     "bloom-block-size",
	ColMapping:            "cpu-mapping",
	ColThreads:            "nthreads",
	ColNsecPerTuple:       "nsec-per-tuple",
	ColTimeUsecs:          "time-usecs",
	ColCycles:             "cycles",
	ColInstructions:       "instructions",
	ColStallsL1DMiss:      "cycle_activity.stalls_l1d_miss",
	ColStallsL2Miss:       "cycle_activity.stalls_l2_miss",
	ColStallsL3Miss:       "cycle_activity.stalls_l3_miss",
	ColStallsMemAny:       "cycle_activity.stalls_mem_any",
	ColDTLBLoadMisses:     "dTLB-load-misses",
	ColSTLBMissLoads:      "mem_inst_retired.stlb_miss_loads",
	ColL1DCacheLoadMisses: "L1-dcache-load-misses",
	ColL2RqstsMiss:        "l2_rqsts.miss",
	ColLLCLoadMisses:      "LLC-load-misses",
	ColFiltered:           "filtered",
	ColCacheUsage:         "cache-usage",
	ColFPREmp:             "fpr_emp",
	ColFPRTheo:            "fpr_theo",
	ColSRRatio:            "s-r-ratio",
	ColSpeedup:            "speedup",
}

var columnsByName = func() map[string]Column {
	m := make(map[string]Column, numColumns)
	for c, name := range columnNames {
		m[name] = Column(c)
	}
	return m
}()

// Columns lists every column in output order: the base columns
// followed by the derived columns.
var Columns = func() []Column {
	cols := make([]Column, numColumns)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}()

// BaseColumns lists the columns produced by a benchmark run, in output
// order.
var BaseColumns = Columns[:ColCacheUsage:ColCacheUsage]

// DerivedColumns lists the columns computed by package derive.
var DerivedColumns = Columns[ColCacheUsage:]

// CounterColumns lists the hardware counter columns.
var CounterColumns = Columns[ColCycles : ColLLCLoadMisses+1 : ColLLCLoadMisses+1]

// ParseColumn returns the Column with the given name.
func ParseColumn(name string) (Column, bool) {
	c, ok := columnsByName[strings.TrimSpace(name)]
	return c, ok
}

// String returns the column name as used in CSV headers.
func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return "column(?)"
	}
	return columnNames[c]
}

// IsCounter reports whether c is a hardware counter column.
func (c Column) IsCounter() bool {
	return ColCycles <= c && c <= ColLLCLoadMisses
}

// IsNumeric reports whether the values of c are numbers.
func (c Column) IsNumeric() bool {
	switch c {
	case ColPlatform, ColFilter, ColMapping, ColCacheUsage:
		return false
	}
	return true
}

// IsDerived reports whether c is computed by derivation rather than
// measured.
func (c Column) IsDerived() bool {
	return c >= ColCacheUsage && c < numColumns
}

// A ColumnSet is a set of Columns.
type ColumnSet uint64

// SetOf returns the set containing cols.
func SetOf(cols ...Column) ColumnSet {
	var s ColumnSet
	for _, c := range cols {
		s = s.With(c)
	}
	return s
}

// AllColumns is the set of every column.
var AllColumns = SetOf(Columns...)

// Has reports whether c is in s.
func (s ColumnSet) Has(c Column) bool {
	return s&(1<<uint(c)) != 0
}

// With returns s with c added.
func (s ColumnSet) With(c Column) ColumnSet {
	return s | 1<<uint(c)
}

// Without returns s with c removed.
func (s ColumnSet) Without(c Column) ColumnSet {
	return s &^ (1 << uint(c))
}

// Columns returns the members of s in output order.
func (s ColumnSet) Columns() []Column {
	var cols []Column
	for _, c := range Columns {
		if s.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}
