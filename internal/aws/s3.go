// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/apiparity/internal/log"
)

// maxObject caps how much of an object is read.
const maxObject = 16 << 20

// ObjectGetter is the slice of the S3 API needed to read one object.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// IsS3URL reports whether uri uses the s3 scheme.
func IsS3URL(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "s3://")
}

// ParseS3URL splits s3://bucket/key into bucket and key.
func ParseS3URL(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URL %q: %w", uri, err)
	}
	if !strings.EqualFold(u.Scheme, "s3") {
		return "", "", fmt.Errorf("invalid S3 URL %q: scheme must be s3", uri)
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// ReadObject returns the body of bucket/key.
func ReadObject(ctx context.Context, client ObjectGetter, bucket, key string) ([]byte, error) {
	log.Debugf("s3 read: bucket=%s key=%s", bucket, key)

	out, err := client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObject))
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Fetch loads the default AWS config and reads the object at an s3:// URL.
func Fetch(ctx context.Context, uri string, opts ...Option) ([]byte, error) {
	bucket, key, err := ParseS3URL(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ReadObject(ctx, NewS3(cfg), bucket, key)
}
