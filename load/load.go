// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package load fetches the raw join records of a platform, normalizes
// them, and derives their metrics.
//
// Records come from a Source. This package provides Dir, which reads
// CSV files from a local directory. Subpackages gcs and s3 read the
// same files from object storage, and package store keeps records in
// a SQL database.
package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bloomjoin/brjperf/config"
	"github.com/bloomjoin/brjperf/derive"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/golang/snappy"
	"golang.org/x/sync/errgroup"
)

// ErrInputNotFound matches every *InputNotFoundError.
var ErrInputNotFound = errors.New("input not found")

// An InputNotFoundError reports that a source has no raw records for
// a platform.
type InputNotFoundError struct {
	Platform string
	// Source describes where the records were looked for.
	Source string
	// Err is the underlying error, if any.
	Err error
}

func (e *InputNotFoundError) Error() string {
	msg := fmt.Sprintf("no records for platform %q in %s", e.Platform, e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputNotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}

// A Source provides the raw records of a platform.
type Source interface {
	// Records returns the records stored for platform. Records
	// that could not be parsed are returned as warnings. If there
	// is no input for platform at all, Records returns an error
	// matching ErrInputNotFound.
	Records(ctx context.Context, platform string) (recs []*joinfmt.Record, warnings []error, err error)
}

// FileNames returns the names under which the records of platform are
// stored, in lookup order.
func FileNames(platform string) []string {
	return []string{platform + ".csv", platform + ".csv.sz"}
}

// ReadRecords reads CSV records from r. If name ends in ".sz", r is
// decoded as a snappy framed stream. Records without a platform
// column are assigned platform.
func ReadRecords(r io.Reader, name, platform string) ([]*joinfmt.Record, []error, error) {
	if strings.HasSuffix(name, ".sz") {
		r = snappy.NewReader(r)
	}
	return joinfmt.ReadAll(r, name, platform)
}

// A Loader loads and derives the records of platforms.
type Loader struct {
	Source Source
	Config config.Config
}

// New returns a Loader reading from src with the settings of cfg.
func New(src Source, cfg config.Config) *Loader {
	return &Loader{Source: src, Config: cfg}
}

// Load fetches the records of platform, drops hypthr runs if the
// platform has no SMT, and derives their metrics. Warnings from
// parsing and from derivation are collected in the Table.
//
// It returns an error matching ErrInputNotFound if the source has no
// records for platform. If the source had input but no row parsed,
// the error wraps the parse warnings.
func (l *Loader) Load(ctx context.Context, platform string) (*derive.Table, error) {
	recs, warnings, err := l.Source.Records(ctx, platform)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		// Every row may have been malformed; keep the reasons.
		return nil, &InputNotFoundError{Platform: platform, Source: fmt.Sprint(l.Source), Err: errors.Join(warnings...)}
	}

	if !l.Config.HasSMT(platform) {
		kept := recs[:0:0]
		for _, r := range recs {
			if r.Has(joinfmt.ColMapping) && r.Mapping == joinfmt.MappingSMT {
				continue
			}
			kept = append(kept, r)
		}
		recs = kept
	}

	t := derive.Derive(recs, derive.Options{
		CacheBudgetBits: l.Config.CacheBudgetBits,
		TupleBits:       l.Config.TupleBits,
	})
	t.Warnings = append(warnings, t.Warnings...)
	return t, nil
}

// A Result is the outcome of loading one platform in LoadAll.
type Result struct {
	Platform string
	Table    *derive.Table
}

// LoadAll loads each of platforms concurrently. It returns a Result
// for every platform that has records, in the order of platforms.
// Platforms without records are reported in warnings. Any other error
// cancels the remaining loads and is returned.
func (l *Loader) LoadAll(ctx context.Context, platforms ...string) (results []Result, warnings []error, err error) {
	tables := make([]*derive.Table, len(platforms))
	notFound := make([]error, len(platforms))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range platforms {
		i, p := i, p
		g.Go(func() error {
			t, err := l.Load(ctx, p)
			if errors.Is(err, ErrInputNotFound) {
				notFound[i] = err
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", p, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, p := range platforms {
		if notFound[i] != nil {
			warnings = append(warnings, notFound[i])
			continue
		}
		results = append(results, Result{p, tables[i]})
	}
	return results, warnings, nil
}
