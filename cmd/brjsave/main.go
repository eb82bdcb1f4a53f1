// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Brjsave stores join runs in a SQL record store.
//
// Usage:
//
//	brjsave [-v] [-config file] [-driver name] [-dsn dsn] [-platform name] file...
//	brjsave [-config file] [-driver name] [-dsn dsn] -delete uploadid
//	brjsave [-config file] [-driver name] [-dsn dsn] -list
//
// Each input file is a CSV file of runs, optionally snappy-compressed
// (.sz). An input of the form platform=file stores the runs of file
// under that platform unless a run names its own. All inputs are
// stored in a single upload, whose ID is printed.
//
// The store can then be read with brjstat -source sql.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bloomjoin/brjperf/config"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/store"
	_ "github.com/bloomjoin/brjperf/store/sqlite3"
)

var (
	configFile = flag.String("config", "", "read store settings from YAML `file`")
	driver     = flag.String("driver", "", "SQL `driver`: sqlite3 or mysql")
	dsn        = flag.String("dsn", "", "SQL data source `name`")
	platform   = flag.String("platform", "", "store runs without a platform under `name`")
	deleteID   = flag.String("delete", "", "delete the upload with ID `uploadid` instead of storing runs")
	list       = flag.Bool("list", false, "list the platforms in the store instead of storing runs")
	verbose    = flag.Bool("v", false, "print verbose log messages")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of brjsave:
	brjsave [flags] file...
	brjsave [flags] -delete uploadid
	brjsave [flags] -list
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("brjsave: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatal(err)
		}
	}
	if *driver != "" {
		cfg.Source.SQL.Driver = *driver
	}
	if *dsn != "" {
		cfg.Source.SQL.DSN = *dsn
	}
	if cfg.Source.SQL.DSN == "" {
		log.Fatal("no record store: set -dsn or source.sql.dsn")
	}

	db, err := store.OpenSQL(cfg.Source.SQL.Driver, cfg.Source.SQL.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	switch {
	case *deleteID != "":
		if err := db.DeleteUpload(ctx, *deleteID); err != nil {
			log.Fatal(err)
		}
	case *list:
		platforms, err := db.Platforms(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range platforms {
			fmt.Println(p)
		}
	default:
		if flag.NArg() == 0 {
			log.Fatal("no files to store")
		}
		id, n, err := save(ctx, db, os.Stderr, *platform, flag.Args())
		if err != nil {
			log.Fatal(err)
		}
		if *verbose {
			log.Printf("stored %d run(s) from %d file(s)", n, flag.NArg())
		}
		fmt.Println(id)
	}
}

// save stores the runs of files in one upload and returns its ID and
// the number of runs stored. Unparseable rows are reported to stderr
// and skipped. If any run cannot be stored, the upload is aborted.
func save(ctx context.Context, db *store.DB, stderr io.Writer, platform string, files []string) (id string, n int, err error) {
	u, err := db.NewUpload(ctx, platform)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if err != nil {
			u.Abort()
		}
	}()

	inputs := joinfmt.Files{Paths: files, AllowLabels: true}
	for inputs.Scan() {
		switch e := inputs.Result().(type) {
		case *joinfmt.SyntaxError:
			// Non-fatal parse error. Warn but keep going.
			fmt.Fprintln(stderr, e)
		case *joinfmt.Record:
			if err := u.InsertRecord(e); err != nil {
				file, line := e.Pos()
				return "", 0, fmt.Errorf("%s:%d: %w", file, line, err)
			}
			n++
		}
	}
	if err := inputs.Err(); err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "", 0, fmt.Errorf("no runs in %s", strings.Join(files, ", "))
	}
	if err := u.Commit(); err != nil {
		return "", 0, err
	}
	return u.ID, n, nil
}
