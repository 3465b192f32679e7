// Package s3 reads and writes whole objects on an S3-compatible store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"

	"github.com/zoobzio/redact"
)

// Config describes how to reach the object store.
type Config struct {
	// Endpoint is host:port or a full URL. Empty means AWS itself.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	// PathStyle addresses buckets as /bucket/key instead of bucket.host/key.
	PathStyle  bool
	MaxRetries int
}

// Client is a thin object store client. It is safe for concurrent use.
type Client struct {
	s3 *awss3.S3
}

// New creates a client with static credentials.
func New(cfg Config) (*Client, error) {
	if cfg.Region == "" {
		return nil, errors.New("s3: region is required")
	}

	config := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		MaxRetries:       aws.Int(cfg.MaxRetries),
		HTTPClient:       &http.Client{},
	}
	if cfg.Endpoint != "" {
		config.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		config.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("new aws session: %w", err)
	}
	return &Client{s3: awss3.New(sess)}, nil
}

// Get returns the full contents of an object. A missing bucket or key is
// reported as redact.ErrObjectNotFound.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.s3.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrap(err, "get", bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Put stores data as an object, replacing any previous version.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.s3.PutObjectWithContext(ctx, input); err != nil {
		return wrap(err, "put", bucket, key)
	}
	return nil
}

func wrap(err error, op, bucket, key string) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case awss3.ErrCodeNoSuchKey, awss3.ErrCodeNoSuchBucket, "NotFound":
			return fmt.Errorf("%w: s3://%s/%s", redact.ErrObjectNotFound, bucket, key)
		}
	}
	return fmt.Errorf("%s s3://%s/%s: %w", op, bucket, key, err)
}
