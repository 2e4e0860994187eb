// Package s3store keeps downloaded images in an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const contentType = "image/jpeg"

// PutObjectAPI is the subset of the S3 client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AssetStore writes image payloads to s3://<bucket>/<prefix>/<imageID>.jpg.
type AssetStore struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// Credentials are optional static keys. Empty keys fall back to the default chain.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig resolves region and credentials for the AWS clients.
func LoadAWSConfig(ctx context.Context, region string, creds Credentials) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewAssetStore creates a store backed by an S3 client built from cfg.
func NewAssetStore(cfg aws.Config, bucket, prefix string) *AssetStore {
	return NewAssetStoreWithClient(s3.NewFromConfig(cfg), bucket, prefix)
}

// NewAssetStoreWithClient creates a store around an existing client.
func NewAssetStoreWithClient(client PutObjectAPI, bucket, prefix string) *AssetStore {
	return &AssetStore{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key imageID is stored under.
func (s *AssetStore) Key(imageID int64) string {
	return path.Join(s.prefix, strconv.FormatInt(imageID, 10)+".jpg")
}

func (s *AssetStore) Save(ctx context.Context, imageID int64, data []byte) error {
	key := s.Key(imageID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
