// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package joinfmt provides the record model and a reader and writer
// for measurements of the radix join (RJ) and its bloom-filtered
// variant (BRJ).
//
// Each Record is a single run of the join executable: its
// configuration (input cardinalities, selectivity, filter sizing, CPU
// mapping, thread count), its measured throughput and hardware
// counters, and, once derived, a set of derived metrics. Records are
// exchanged as CSV with a header row naming the columns; see Columns
// for the stable column order.
//
// This package is designed to be used with the higher-level packages
// load, derive, analyze, and query.
package joinfmt

import (
	"fmt"
	"math"
	"strconv"
)

// A FilterType is the bloom filter variant used by a run.
type FilterType string

const (
	NoFilter      FilterType = "no"
	BasicFilter   FilterType = "basic"
	BlockedFilter FilterType = "blocked"
)

// Filtered reports whether f applies a bloom filter.
func (f FilterType) Filtered() bool {
	return f != NoFilter
}

// ParseFilterType parses a bloom-filter column value.
func ParseFilterType(s string) (FilterType, error) {
	switch f := FilterType(s); f {
	case NoFilter, BasicFilter, BlockedFilter:
		return f, nil
	}
	return "", fmt.Errorf("unknown bloom-filter %q", s)
}

// A CPUMapping is the strategy used to pin join threads to logical
// CPUs.
type CPUMapping string

const (
	// MappingSingle places one thread per physical core.
	MappingSingle CPUMapping = "single"
	// MappingNUMA spreads threads evenly across NUMA regions.
	MappingNUMA CPUMapping = "numa"
	// MappingSMT fills a physical core with hyperthreads before
	// moving to the next.
	MappingSMT CPUMapping = "hypthr"
	// MappingAll spreads threads across NUMA regions with
	// hyperthreading enabled.
	MappingAll CPUMapping = "all"
)

// Mappings lists the CPU mappings in presentation order.
var Mappings = []CPUMapping{MappingSingle, MappingSMT, MappingNUMA, MappingAll}

// ParseCPUMapping parses a cpu-mapping column value. It accepts both
// the raw form ("hypthr") and the presentation label ("SMT").
func ParseCPUMapping(s string) (CPUMapping, error) {
	switch m := CPUMapping(s); m {
	case MappingSingle, MappingNUMA, MappingSMT, MappingAll:
		return m, nil
	}
	for _, m := range Mappings {
		if m.Label() == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown cpu-mapping %q", s)
}

// Label returns the presentation label of m: Single, SMT, NUMA, or
// All.
func (m CPUMapping) Label() string {
	switch m {
	case MappingSingle:
		return "Single"
	case MappingSMT:
		return "SMT"
	case MappingNUMA:
		return "NUMA"
	case MappingAll:
		return "All"
	}
	return string(m)
}

// A CacheUsage classifies the working set of a run relative to the
// cache budget.
type CacheUsage string

const (
	// CacheSmall means the whole working set fits in cache.
	CacheSmall CacheUsage = "S"
	// CacheMedium means the filter fits in cache, but the filter
	// together with both inputs does not.
	CacheMedium CacheUsage = "M"
	// CacheLarge means the working set (or the filter alone)
	// exceeds the cache.
	CacheLarge CacheUsage = "L"
)

// ParseCacheUsage parses a cache-usage column value.
func ParseCacheUsage(s string) (CacheUsage, error) {
	switch c := CacheUsage(s); c {
	case CacheSmall, CacheMedium, CacheLarge:
		return c, nil
	}
	return "", fmt.Errorf("unknown cache-usage %q", s)
}

// A Record is a single run of the join and its derived metrics.
//
// Records read by a Reader are owned by the caller. Once a Record has
// been handed to derive.Derive it should be treated as immutable;
// derivation works on clones.
type Record struct {
	Platform string
	Filter   FilterType

	// RSize and SSize are the cardinalities of the build and
	// probe inputs.
	RSize, SSize int64
	// SSel is the fraction of probe tuples that match the build
	// side.
	SSel float64

	// Bloom filter sizing. BloomSize is in bits. These are only
	// present for filtered runs.
	BloomSize, BloomHashes, BloomBlockSize int64

	Mapping CPUMapping
	Threads int

	NsecPerTuple float64
	TimeUsecs    float64
	Counters     [NumCounters]int64

	// Filtered is the number of probe tuples passed by the filter.
	Filtered int64

	// Derived metrics. See package derive.
	CacheUsage CacheUsage
	FPREmp     float64
	FPRTheo    float64
	SRRatio    int64
	Speedup    float64

	// Absent is the set of columns that have no value in this
	// Record. A Record literal has every column present.
	Absent ColumnSet

	// fileName and line record where this Record was read from.
	fileName string
	line     int
}

// NewRecord returns a Record with every column absent. Columns can
// then be filled in with Set. This is useful for building prototypes
// for query.WhereEquals.
func NewRecord() *Record {
	r := &Record{}
	for _, c := range Columns {
		r.SetAbsent(c)
	}
	return r
}

// Has reports whether column c has a value in r.
func (r *Record) Has(c Column) bool {
	return !r.Absent.Has(c)
}

// Pos returns the file name and line number r was read from. For
// Records that were not read from a file, it returns "", 0.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Clone makes a copy of r that shares no state with r.
func (r *Record) Clone() *Record {
	r2 := *r
	return &r2
}

// Counter returns the value of hardware counter c and whether it is
// present. c must be a counter column.
func (r *Record) Counter(c Column) (int64, bool) {
	if !c.IsCounter() {
		panic(fmt.Sprintf("%s is not a counter column", c))
	}
	return r.Counters[c-ColCycles], r.Has(c)
}

// Get returns the value of column c formatted as it would appear in a
// CSV file, or "" if c is absent.
func (r *Record) Get(c Column) string {
	if !r.Has(c) {
		return ""
	}
	switch c {
	case ColPlatform:
		return r.Platform
	case ColFilter:
		return string(r.Filter)
	case ColMapping:
		return string(r.Mapping)
	case ColCacheUsage:
		return string(r.CacheUsage)
	case ColThreads:
		return strconv.Itoa(r.Threads)
	}
	if c.IsCounter() {
		return strconv.FormatInt(r.Counters[c-ColCycles], 10)
	}
	if p := r.intField(c); p != nil {
		return strconv.FormatInt(*p, 10)
	}
	if p := r.floatField(c); p != nil {
		return strconv.FormatFloat(*p, 'g', -1, 64)
	}
	panic(fmt.Sprintf("unknown column %d", int(c)))
}

// Float returns the value of numeric column c as a float64. It
// returns false if c is absent or not numeric.
func (r *Record) Float(c Column) (float64, bool) {
	if !r.Has(c) {
		return 0, false
	}
	switch {
	case c == ColThreads:
		return float64(r.Threads), true
	case c.IsCounter():
		return float64(r.Counters[c-ColCycles]), true
	}
	if p := r.intField(c); p != nil {
		return float64(*p), true
	}
	if p := r.floatField(c); p != nil {
		return *p, true
	}
	return 0, false
}

// Set parses value and stores it in column c. If value is "", or is
// NaN for a float column, Set marks c absent. If value does not parse
// or is out of range for c, Set marks c absent and returns an error.
func (r *Record) Set(c Column, value string) error {
	if value == "" {
		r.SetAbsent(c)
		return nil
	}
	var err error
	switch c {
	case ColPlatform:
		r.Platform = value
	case ColFilter:
		r.Filter, err = ParseFilterType(value)
	case ColMapping:
		r.Mapping, err = ParseCPUMapping(value)
	case ColCacheUsage:
		r.CacheUsage, err = ParseCacheUsage(value)
	case ColThreads:
		var n int64
		n, err = parseInt(value)
		if err == nil && n < 1 {
			err = fmt.Errorf("nthreads must be positive, got %d", n)
		}
		r.Threads = int(n)
	default:
		switch {
		case c.IsCounter():
			r.Counters[c-ColCycles], err = parseInt(value)
		case r.intField(c) != nil:
			*r.intField(c), err = parseInt(value)
		case r.floatField(c) != nil:
			var f float64
			f, err = strconv.ParseFloat(value, 64)
			if err == nil && math.IsNaN(f) {
				// Dataframe tools spell missing values "NaN".
				r.SetAbsent(c)
				return nil
			}
			*r.floatField(c) = f
		default:
			panic(fmt.Sprintf("unknown column %d", int(c)))
		}
	}
	if err == nil {
		err = r.checkRange(c)
	}
	if err != nil {
		r.SetAbsent(c)
		return fmt.Errorf("%s: %w", c, err)
	}
	r.Absent = r.Absent.Without(c)
	return nil
}

// checkRange reports an error if the measured value of c is outside
// its domain.
func (r *Record) checkRange(c Column) error {
	switch c {
	case ColRSize, ColSSize, ColFiltered:
		if n := *r.intField(c); n < 0 {
			return fmt.Errorf("must be non-negative, got %d", n)
		}
	case ColNsecPerTuple, ColTimeUsecs:
		if f := *r.floatField(c); f < 0 {
			return fmt.Errorf("must be non-negative, got %g", f)
		}
	case ColSSel:
		if r.SSel < 0 || r.SSel > 1 {
			return fmt.Errorf("must be in [0, 1], got %g", r.SSel)
		}
	}
	return nil
}

// SetAbsent marks column c absent and clears its value. Absent float
// columns read as NaN.
func (r *Record) SetAbsent(c Column) {
	r.Absent = r.Absent.With(c)
	switch c {
	case ColPlatform:
		r.Platform = ""
	case ColFilter:
		r.Filter = ""
	case ColMapping:
		r.Mapping = ""
	case ColCacheUsage:
		r.CacheUsage = ""
	case ColThreads:
		r.Threads = 0
	default:
		switch {
		case c.IsCounter():
			r.Counters[c-ColCycles] = 0
		case r.intField(c) != nil:
			*r.intField(c) = 0
		case r.floatField(c) != nil:
			*r.floatField(c) = math.NaN()
		}
	}
}

// parseInt accepts integers, including integers written in float
// notation (e.g. "2.5e+08") by tools that export all numeric columns
// as floats.
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) || math.Abs(f) > 1<<62 {
		return 0, err
	}
	return int64(f), nil
}

func (r *Record) intField(c Column) *int64 {
	switch c {
	case ColRSize:
		return &r.RSize
	case ColSSize:
		return &r.SSize
	case ColBloomSize:
		return &r.BloomSize
	case ColBloomHashes:
		return &r.BloomHashes
	case ColBloomBlockSize:
		return &r.BloomBlockSize
	case ColFiltered:
		return &r.Filtered
	case ColSRRatio:
		return &r.SRRatio
	}
	return nil
}

func (r *Record) floatField(c Column) *float64 {
	switch c {
	case ColSSel:
		return &r.SSel
	case ColNsecPerTuple:
		return &r.NsecPerTuple
	case ColTimeUsecs:
		return &r.TimeUsecs
	case ColFPREmp:
		return &r.FPREmp
	case ColFPRTheo:
		return &r.FPRTheo
	case ColSpeedup:
		return &r.Speedup
	}
	return nil
}
