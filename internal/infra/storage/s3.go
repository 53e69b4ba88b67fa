package storage

import (
	"context"
	"errors"
	"fmt"

	"epaper-app/internal/domain/media"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Settings configures an S3 compatible bucket.
type S3Settings struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ObjectRemover is the subset of the S3 client used for deletion.
type ObjectRemover interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Deleter struct {
	client ObjectRemover
	bucket string
	log    *zap.Logger
}

// NewS3Client builds a client with static credentials and an optional custom endpoint.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Deleter(client ObjectRemover, bucket string, log *zap.Logger) *S3Deleter {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Deleter{client: client, bucket: bucket, log: log}
}

// DeletePageImages tries every rendition and reports all failures together.
func (d *S3Deleter) DeletePageImages(ctx context.Context, img media.PageImage) error {
	var errs []error
	for _, key := range img.Paths() {
		_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(d.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
			continue
		}
		d.log.Debug("page image deleted", zap.String("bucket", d.bucket), zap.String("key", key))
	}
	return errors.Join(errs...)
}
