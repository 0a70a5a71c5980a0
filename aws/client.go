// Package aws defines functions used to interact with the AWS API and S3
// compatible providers like Cloudflare R2
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

type Options struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Custom endpoint, for R2 that's https://<account id>.r2.cloudflarestorage.com
	Endpoint string
}

// NewS3 builds a client and makes sure the bucket is reachable before the
// server starts accepting uploads
func NewS3(ctx context.Context, o Options) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.Region = o.Region

		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true

			if o.Region == "" {
				so.Region = "auto"
			}
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		return nil, classifyHeadBucketErr(err, o.Bucket)
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}

func classifyHeadBucketErr(err error, bucket string) error {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return fmt.Errorf("bucket '%s' does not exist", bucket)
		case "Forbidden", "AccessDenied":
			return fmt.Errorf("access to bucket '%s' denied, check the credentials", bucket)
		}
	}

	return fmt.Errorf("failed to check if bucket exists, %w", err)
}
