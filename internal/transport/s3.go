package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/halver/sluice/internal/utils"
)

// S3Transport serves ranged reads from an S3-compatible store.
type S3Transport struct {
	client *s3.Client
}

func NewS3Transport(ctx context.Context, cfg *utils.Config) (*S3Transport, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMode("adaptive"),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	s3Opts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}
	return &S3Transport{client: s3.NewFromConfig(awsCfg, s3Opts)}, nil
}

func (t *S3Transport) Head(ctx context.Context, bucket, key string) (int64, error) {
	headObj, err := t.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error heading s3://%s/%s: %v", bucket, key, err)
	}
	if headObj.ContentLength == nil {
		return 0, fmt.Errorf("object size is nil for s3://%s/%s", bucket, key)
	}
	return *headObj.ContentLength, nil
}

func (t *S3Transport) GetRange(ctx context.Context, bucket, key string, start, end int64) (int64, io.ReadCloser, error) {
	result, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return 0, nil, fmt.Errorf("error getting s3://%s/%s: %v", bucket, key, err)
	}
	length := int64(-1)
	if result.ContentLength != nil {
		length = *result.ContentLength
	}
	return length, result.Body, nil
}
