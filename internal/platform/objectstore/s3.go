// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the bucket photos are written to.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS; set for R2 or MinIO
	AccessKey string
	SecretKey string

	PublicBaseURL string
}

// S3Store keeps photos in an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	urls   publicURLs
}

// NewS3Store builds the client. Static credentials are used when an access key
// is configured, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	options := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		urls:   newPublicURLs(cfg.PublicBaseURL),
	}, nil
}

// Put uploads the photo without overwriting an existing object.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}

	return s.urls.url(key), nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("objectstore: delete %s: %w", key, err)
	}
	return nil
}

// KeyFromURL implements [PhotoStore].
func (s *S3Store) KeyFromURL(publicURL string) (string, bool) {
	return s.urls.key(publicURL)
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("objectstore: head bucket %s: %w", s.bucket, err)
	}
	return nil
}
