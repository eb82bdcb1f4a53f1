// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bloomjoin/brjperf/load"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	objects map[string]string
	keys    []string
}

func (c *fakeClient) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	c.keys = append(c.keys, aws.ToString(in.Bucket)+"/"+key)
	data, ok := c.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func TestRecords(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"runs/celebrimbor.csv": "platform,bloom-filter,r-size\n,blocked,5\nforostar,no,6\n",
	}}
	src := &Source{Client: client, Bucket: "brj", Prefix: "runs/"}

	recs, warnings, err := src.Records(context.Background(), "celebrimbor")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, recs, 2)
	assert.Equal(t, "celebrimbor", recs[0].Platform)
	assert.Equal(t, "forostar", recs[1].Platform)

	client.keys = nil
	_, _, err = src.Records(context.Background(), "gondor")
	assert.ErrorIs(t, err, load.ErrInputNotFound)
	assert.Equal(t, []string{"brj/runs/gondor.csv", "brj/runs/gondor.csv.sz"}, client.keys)
}
