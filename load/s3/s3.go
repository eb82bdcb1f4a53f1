// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package s3 provides a load.Source backed by Amazon S3 or an
// S3-compatible store.
package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bloomjoin/brjperf/joinfmt"
	"github.com/bloomjoin/brjperf/load"
)

// GetObjectAPI is the part of *s3.Client used by Source.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures the client created by New.
type Options struct {
	// Region is the AWS region of the bucket.
	Region string
	// Endpoint is an optional custom endpoint, such as a MinIO or
	// LocalStack server. Setting it enables path-style addressing.
	Endpoint string
}

// Source reads the records of a platform from the object
// <Prefix><platform>.csv, or <Prefix><platform>.csv.sz, in a bucket.
type Source struct {
	Client GetObjectAPI
	Bucket string
	Prefix string
}

// New returns a Source for bucket using the default AWS credential
// chain.
func New(ctx context.Context, bucket, prefix string, opts Options) (*Source, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &Source{Client: s3.NewFromConfig(awsCfg, s3Opts...), Bucket: bucket, Prefix: prefix}, nil
}

func (s *Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Prefix)
}

func (s *Source) Records(ctx context.Context, platform string) ([]*joinfmt.Record, []error, error) {
	for _, name := range load.FileNames(platform) {
		key := s.Prefix + name
		out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			continue
		} else if err != nil {
			return nil, nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, key, err)
		}
		defer out.Body.Close()
		return load.ReadRecords(out.Body, key, platform)
	}
	return nil, nil, &load.InputNotFoundError{Platform: platform, Source: s.String()}
}
