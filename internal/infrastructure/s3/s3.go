package s3

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.uber.org/zap"
)

func NewS3Client(ctx context.Context, config *Config, lg *zap.Logger) (*s3.Client, error) {
	cfg, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithRegion(config.Region),
		awsCfg.WithCredentialsProvider(aws.CredentialsProviderFunc(func(_ context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     config.AccessKeyId,
				SecretAccessKey: config.SecretAccessKey,
			}, nil
		})),
		awsCfg.WithLogger(getDefaultAwsLoggerFunc(lg)),
		awsCfg.WithLogConfigurationWarnings(true),
		awsCfg.WithClientLogMode(getDefaultAwsLogMode(lg)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return s3.NewFromConfig(
		cfg,
		func(options *s3.Options) {
			options.BaseEndpoint = aws.String(config.Url)
			options.UsePathStyle = true
		},
	), nil
}

func CreateS3BucketIfNotExists(ctx context.Context, s3Client *s3.Client, bucketName string) error {
	buckets, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return err
	}
	if !lo.ContainsBy(buckets.Buckets, func(item types.Bucket) bool {
		return item.Name != nil && *item.Name == bucketName
	}) {
		_, err = s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucketName),
		})
	}
	return err
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects under a fixed bucket and key prefix.
type Uploader struct {
	api    putObjectAPI
	bucket string
	prefix string
}

func NewUploader(api putObjectAPI, config *Config) *Uploader {
	return &Uploader{api: api, bucket: config.Bucket, prefix: config.Prefix}
}

func (u *Uploader) Key(name string) string {
	return path.Join(u.prefix, name)
}

// Upload stores body at prefix/name and returns the full key.
func (u *Uploader) Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	key := u.Key(name)
	_, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", u.bucket, key, err)
	}
	return key, nil
}
