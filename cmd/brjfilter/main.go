// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// brjfilter reads join runs from CSV input files, filters them, and
// writes the matching runs as CSV to stdout. If no inputs are
// provided, it reads from stdin.
//
// The query is a list of column:value terms, such as
// "cpu-mapping:single bloom-filter:basic bloom-filter:blocked". A run
// matches if, for each column named, its value is one of the values
// given. A term prefixed by "-" excludes runs with that value.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bloomjoin/brjperf/config"
	"github.com/bloomjoin/brjperf/derive"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/query"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: brjfilter [flags] query [inputs...]

brjfilter reads join runs from CSV input files, filters them, and
writes the matching runs as CSV to stdout. If no inputs are provided,
it reads from stdin. An input of the form platform=file sets the
platform of runs in file that do not name one.

`)
	flag.PrintDefaults()
}

var (
	flagDerive = flag.Bool("derive", false, "derive metrics before filtering and include derived columns in the output")
	flagConfig = flag.String("config", "", "read derivation settings from YAML `file`")
)

func main() {
	log.SetPrefix("")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	filter, err := query.NewFilter(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	var opts *derive.Options
	if *flagDerive {
		cfg := config.Default()
		if *flagConfig != "" {
			if cfg, err = config.Load(*flagConfig); err != nil {
				log.Fatal(err)
			}
		}
		opts = &derive.Options{CacheBudgetBits: cfg.CacheBudgetBits, TupleBits: cfg.TupleBits}
	}

	files := joinfmt.Files{Paths: flag.Args()[1:], AllowStdin: true, AllowLabels: true}
	if err := brjfilter(os.Stdout, os.Stderr, &files, filter, opts); err != nil {
		log.Fatal(err)
	}
}

// brjfilter writes the runs of files matching filter to w. If opts is
// not nil, runs are derived with opts before filtering, so derived
// columns can be filtered on, and all columns are written. Otherwise
// only base columns are written.
func brjfilter(w, stderr io.Writer, files *joinfmt.Files, filter *query.Filter, opts *derive.Options) error {
	var recs []*joinfmt.Record
	for files.Scan() {
		switch e := files.Result().(type) {
		case *joinfmt.SyntaxError:
			// Non-fatal parse error. Warn but keep going.
			fmt.Fprintln(stderr, e)
		case *joinfmt.Record:
			recs = append(recs, e)
		}
	}
	if err := files.Err(); err != nil {
		return err
	}

	cols := joinfmt.BaseColumns
	if opts != nil {
		t := derive.Derive(recs, *opts)
		for _, warning := range t.Warnings {
			fmt.Fprintln(stderr, warning)
		}
		recs, cols = t.Records, joinfmt.Columns
	}

	writer := joinfmt.NewWriter(w, cols)
	if err := writer.WriteAll(filter.Apply(recs)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
