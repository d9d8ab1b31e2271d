// Package storage uploads user avatars to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/chertoha/contacthub/internal/config"
)

// AvatarStore persists an avatar image and returns its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, username string, body io.Reader, contentType string) (string, error)
}

// S3AvatarStore implements AvatarStore on any S3-compatible backend
// (MinIO in development).
type S3AvatarStore struct {
	client       *s3.Client
	bucket       string
	baseEndpoint string
}

func NewS3AvatarStore(ctx context.Context, cfg *config.Config) (*S3AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3AvatarStore{
		client:       client,
		bucket:       cfg.S3Bucket,
		baseEndpoint: strings.TrimSuffix(cfg.S3BaseEndpoint, "/"),
	}, nil
}

// Upload stores the avatar under a key unique per user and upload, and
// returns the public URL of the object.
func (s *S3AvatarStore) Upload(ctx context.Context, username string, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/%s/%s", username, uuid.New())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseEndpoint, s.bucket, key), nil
}
