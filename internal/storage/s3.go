// Package storage archives produced SVG documents in an S3-compatible
// bucket (MinIO in development).
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appconfig "github.com/roshanlimbu/png-to-svg/internal/config"
)

type Archive interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type s3Archive struct {
	client *s3.Client
	cfg    *appconfig.StorageConfig
	log    *zap.Logger
}

func NewS3Archive(cfg *appconfig.StorageConfig, log *zap.Logger) (Archive, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
				Source:            aws.EndpointSourceCustom,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithEndpointResolverWithOptions(customResolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	archive := &s3Archive{
		client: client,
		cfg:    cfg,
		log:    log,
	}

	if err := archive.ensureBucketExists(context.Background()); err != nil {
		log.Warn("Failed to ensure archive bucket exists", zap.Error(err))
	}

	return archive, nil
}

func (a *s3Archive) ensureBucketExists(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.cfg.BucketName),
	})
	if err == nil {
		a.log.Info("Archive bucket already exists", zap.String("bucket", a.cfg.BucketName))
		return nil
	}

	a.log.Info("Creating archive bucket", zap.String("bucket", a.cfg.BucketName))

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.cfg.BucketName),
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(a.cfg.Region),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.cfg.BucketName, err)
	}

	a.log.Info("Archive bucket created", zap.String("bucket", a.cfg.BucketName))

	// MinIO needs a moment before the bucket accepts writes.
	time.Sleep(1 * time.Second)

	return nil
}

func (a *s3Archive) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.cfg.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		a.log.Error("Failed to archive object",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	a.log.Info("Object archived",
		zap.String("key", key),
		zap.Int64("size", size))

	return nil
}

func (a *s3Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		a.log.Error("Failed to fetch archived object",
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	return output.Body, nil
}

func (a *s3Archive) List(ctx context.Context, prefix string) ([]string, error) {
	output, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.cfg.BucketName),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, obj := range output.Contents {
		keys = append(keys, *obj.Key)
	}

	return keys, nil
}
