// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the settings shared by the brjperf commands:
// derivation constants, the platforms under study, and where raw
// records are kept.
//
// A Config is a plain value. Commands start from Default, overlay a
// YAML file with Load, and then apply their command-line flags.
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the brjperf configuration.
type Config struct {
	// CacheBudgetBits is the cache size used to classify cache
	// usage.
	CacheBudgetBits int64 `yaml:"cache_budget_bits"`

	// TupleBits is the width of an input tuple.
	TupleBits int64 `yaml:"tuple_bits"`

	// Platforms lists the platforms to analyze, in report order.
	Platforms []string `yaml:"platforms"`

	// NoSMTPlatforms lists platforms without simultaneous
	// multithreading. Runs with the hypthr CPU mapping are dropped
	// for these platforms.
	NoSMTPlatforms []string `yaml:"no_smt_platforms"`

	Source Source `yaml:"source"`
}

// Source says where raw records are read from. Exactly one of its
// sections should be set; Kind selects which.
type Source struct {
	// Kind is one of "dir", "sql", "gcs", or "s3".
	Kind string `yaml:"kind"`

	// Dir holds <platform>.csv or <platform>.csv.sz files.
	Dir string `yaml:"dir"`

	SQL struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"sql"`

	GCS struct {
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
	} `yaml:"gcs"`

	S3 struct {
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
		Region   string `yaml:"region"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"s3"`
}

// Source kinds.
const (
	KindDir = "dir"
	KindSQL = "sql"
	KindGCS = "gcs"
	KindS3  = "s3"
)

// Default returns the default configuration: a 40 MiB cache, 128-bit
// tuples, the five study platforms, and records read from the
// current directory.
func Default() Config {
	c := Config{
		CacheBudgetBits: 40 * 8 * 1024 * 1024,
		TupleBits:       128,
		Platforms:       []string{"gondor", "celebrimbor", "isengard", "mittalmar", "forostar"},
		NoSMTPlatforms:  []string{"mittalmar", "forostar"},
	}
	c.Source.Kind = KindDir
	c.Source.Dir = "."
	c.Source.SQL.Driver = "sqlite3"
	return c
}

// Load reads the YAML file at path over Default. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	if c.CacheBudgetBits <= 0 {
		return fmt.Errorf("cache_budget_bits must be positive, got %d", c.CacheBudgetBits)
	}
	if c.TupleBits <= 0 {
		return fmt.Errorf("tuple_bits must be positive, got %d", c.TupleBits)
	}
	switch c.Source.Kind {
	case KindDir:
		if c.Source.Dir == "" {
			return fmt.Errorf("source.dir must be set")
		}
	case KindSQL:
		if c.Source.SQL.Driver == "" || c.Source.SQL.DSN == "" {
			return fmt.Errorf("source.sql needs driver and dsn")
		}
	case KindGCS:
		if c.Source.GCS.Bucket == "" {
			return fmt.Errorf("source.gcs.bucket must be set")
		}
	case KindS3:
		if c.Source.S3.Bucket == "" {
			return fmt.Errorf("source.s3.bucket must be set")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	return nil
}

// HasSMT reports whether platform supports simultaneous
// multithreading.
func (c *Config) HasSMT(platform string) bool {
	return !slices.Contains(c.NoSMTPlatforms, platform)
}
