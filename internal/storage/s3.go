// Package storage fetches extracted document text from S3-compatible
// object storage. Text objects are written by the ingestion pipeline; this
// service only reads them.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docketlabs/docket/backend/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client builds an S3 client from AWS_* environment variables.
// Path-style addressing keeps MinIO and other S3-compatible endpoints
// working.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// TextStore resolves indexed-text object keys against one bucket. An
// optional key prefix lets several deployments share a bucket.
type TextStore struct {
	client *s3.Client
	bucket string
	prefix string
}

type NewTextStoreParams struct {
	Client *s3.Client
	Bucket string

	// Prefix is prepended to every key, TEXT_KEY_PREFIX in the env.
	Prefix string
}

func NewTextStore(params NewTextStoreParams) *TextStore {
	prefix := params.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &TextStore{
		client: params.Client,
		bucket: params.Bucket,
		prefix: prefix,
	}
}

// GetTextObject downloads one extracted-text object and returns its
// contents as a string.
func (t *TextStore) GetTextObject(ctx context.Context, key string) (string, error) {
	result, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.prefix + key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get text object %q: %w", key, err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return "", fmt.Errorf("failed to read text object %q: %w", key, err)
	}
	return buf.String(), nil
}
