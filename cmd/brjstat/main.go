// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Brjstat derives metrics from bloom-filtered radix join runs and
// reports how the filtered join compares to the unfiltered one.
//
// Usage:
//
//	brjstat [flags] report [platform...]
//
// Brjstat loads the raw runs of each platform (by default, the
// platforms listed in the configuration), derives cache usage, false
// positive rates, S:R ratio and speedup, and prints one of these
// reports:
//
//	table        the derived records
//	superiority  per S:R ratio, how often a filtered join is fastest
//	groups       the fastest run of every comparison group
//	scenarios    the comparison groups won by a filtered join
//	fpr          deviation of empirical from theoretical FPR
//	threading    thread scaling of the best filter configuration
//	             against the unfiltered join, per CPU mapping and
//	             cache usage
//	mappings     thread scaling of the best filter configuration per
//	             CPU mapping
//	summary      superiority fractions of all platforms side by side
//	rollup       summary statistics of -metric grouped by -by
//
// Runs are read from <dir>/<platform>.csv (or .csv.sz), a SQL record
// store written by brjsave, or the same files in a GCS or S3 bucket,
// as selected by -source.
//
// # Example
//
// Print the superiority fractions of two platforms as Markdown:
//
//	brjstat -dir results -format markdown summary gondor isengard
//
// Show the derived runs of one platform that use a basic filter:
//
//	brjstat -filter 'bloom-filter:basic' -cols r-size,s-size,nsec-per-tuple,fpr_emp table gondor
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bloomjoin/brjperf/analyze"
	"github.com/bloomjoin/brjperf/config"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/load"
	"github.com/bloomjoin/brjperf/query"
	"github.com/bloomjoin/brjperf/report"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: brjstat [flags] report [platform...]

Reports: table, superiority, groups, scenarios, fpr, threading,
mappings, summary, rollup.

`)
	flag.PrintDefaults()
}

type options struct {
	config   string
	source   string
	dir      string
	driver   string
	dsn      string
	bucket   string
	prefix   string
	region   string
	endpoint string
	budget   int64
	format   string
	cols     string
	filter   string
	metric   string
	by       string
	quiet    bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.config, "config", "", "read settings from YAML `file`")
	fs.StringVar(&o.source, "source", "", "read runs from `kind`: dir, sql, gcs, or s3")
	fs.StringVar(&o.dir, "dir", "", "read <platform>.csv files from `directory` (implies -source dir)")
	fs.StringVar(&o.driver, "driver", "", "SQL `driver` of the record store: sqlite3 or mysql")
	fs.StringVar(&o.dsn, "dsn", "", "SQL data source `name` of the record store (implies -source sql)")
	fs.StringVar(&o.bucket, "bucket", "", "GCS or S3 `bucket` holding <prefix><platform>.csv objects")
	fs.StringVar(&o.prefix, "prefix", "", "object name `prefix` in -bucket")
	fs.StringVar(&o.region, "region", "", "S3 `region`")
	fs.StringVar(&o.endpoint, "endpoint", "", "custom S3 endpoint `url`")
	fs.Int64Var(&o.budget, "budget", 0, "classify cache usage against a cache of `bits` bits")
	fs.StringVar(&o.format, "format", "text", "print reports as `format`: text, markdown, csv, or html")
	fs.StringVar(&o.cols, "cols", "", "comma-separated `columns` of the table report (default all)")
	fs.StringVar(&o.filter, "filter", "*", "only use runs matching `query` of column:value terms")
	fs.StringVar(&o.metric, "metric", "nsec-per-tuple", "`column` summarized by the rollup report")
	fs.StringVar(&o.by, "by", "bloom-filter,cpu-mapping", "comma-separated `columns` grouping the rollup report")
	fs.BoolVar(&o.quiet, "q", false, "do not print warnings")
}

// settings returns the configuration selected by o.
func (o *options) settings() (config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return cfg, err
		}
	}
	src := &cfg.Source
	switch {
	case o.source != "":
		src.Kind = o.source
	case o.dir != "":
		src.Kind = config.KindDir
	case o.dsn != "":
		src.Kind = config.KindSQL
	}
	if o.dir != "" {
		src.Dir = o.dir
	}
	if o.driver != "" {
		src.SQL.Driver = o.driver
	}
	if o.dsn != "" {
		src.SQL.DSN = o.dsn
	}
	if o.bucket != "" {
		src.GCS.Bucket, src.S3.Bucket = o.bucket, o.bucket
	}
	if o.prefix != "" {
		src.GCS.Prefix, src.S3.Prefix = o.prefix, o.prefix
	}
	if o.region != "" {
		src.S3.Region = o.region
	}
	if o.endpoint != "" {
		src.S3.Endpoint = o.endpoint
	}
	if o.budget != 0 {
		cfg.CacheBudgetBits = o.budget
	}
	return cfg, cfg.Validate()
}

func parseColumns(list string) ([]joinfmt.Column, error) {
	if list == "" {
		return nil, nil
	}
	var cols []joinfmt.Column
	for _, name := range strings.Split(list, ",") {
		c, ok := joinfmt.ParseColumn(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

var reports = map[string]bool{
	"table": true, "superiority": true, "groups": true, "scenarios": true, "fpr": true,
	"threading": true, "mappings": true, "summary": true, "rollup": true,
}

func main() {
	log.SetPrefix("brjstat: ")
	log.SetFlags(0)

	var opts options
	opts.register(flag.CommandLine)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := brjstat(context.Background(), os.Stdout, os.Stderr, &opts, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

func brjstat(ctx context.Context, w, stderr io.Writer, opts *options, name string, platforms []string) error {
	if !reports[name] {
		return fmt.Errorf("unknown report %q", name)
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, err := opts.settings()
	if err != nil {
		return err
	}
	filter, err := query.NewFilter(opts.filter)
	if err != nil {
		return err
	}
	cols, err := parseColumns(opts.cols)
	if err != nil {
		return err
	}
	metric, ok := joinfmt.ParseColumn(opts.metric)
	if !ok {
		return fmt.Errorf("unknown column %q", opts.metric)
	}
	by, err := parseColumns(opts.by)
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		platforms = cfg.Platforms
	}

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	results, warnings, err := load.New(src, cfg).LoadAll(ctx, platforms...)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no runs found for %s in %v", strings.Join(platforms, ", "), src)
	}
	warn := func(errs []error) {
		if opts.quiet {
			return
		}
		for _, err := range errs {
			fmt.Fprintln(stderr, err)
		}
	}
	warn(warnings)

	var tables []*report.Table
	var summary []report.PlatformSuperiority
	for _, res := range results {
		warn(res.Table.Warnings)
		recs := filter.Apply(res.Table.Records)
		p := res.Platform

		switch name {
		case "table":
			tables = append(tables, report.Records(p, recs, cols))
		case "superiority", "groups", "scenarios", "summary":
			rep := analyze.Superiority(recs)
			warn(rep.Warnings)
			switch name {
			case "superiority":
				tables = append(tables, report.Superiority(p, rep))
			case "groups":
				tables = append(tables, report.Groups(p, rep))
			case "scenarios":
				tables = append(tables, report.Scenarios(p, rep))
			case "summary":
				summary = append(summary, report.PlatformSuperiority{Platform: p, Report: rep})
			}
		case "fpr":
			rep := analyze.FPRDeviation(recs)
			warn(rep.Warnings)
			tables = append(tables, report.FPR(p, rep))
		case "threading", "mappings":
			var s *analyze.Scaling
			if name == "threading" {
				s = analyze.ThreadScaling(recs)
			} else {
				s = analyze.BestByMapping(recs)
			}
			warn(s.Warnings)
			tables = append(tables, report.Scaling(p, s)...)
		case "rollup":
			tables = append(tables, report.Rollup(p, metric, by, query.Rollup(recs, metric, by...)))
		}
	}
	if name == "summary" {
		tables = append(tables, report.Summary(summary))
	}
	return report.Write(w, format, tables...)
}
