package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type Minio struct {
	c      *minio.Client
	bucket string
}

// NewMinio connects to a MinIO server and creates the bucket if it doesn't exist
func NewMinio(ctx context.Context, o MinioOptions) (*Minio, error) {
	c, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKeyID, o.SecretAccessKey, ""),
		Secure: o.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client, %w", err)
	}

	exists, err := c.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	if !exists {
		if err := c.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s', %w", o.Bucket, err)
		}
	}

	return &Minio{c: c, bucket: o.Bucket}, nil
}

func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.c.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to MinIO, %w", err)
	}

	return nil
}

func (m *Minio) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := m.c.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch object from MinIO, %w", err)
	}

	// GetObject is lazy, Stat is the first actual round trip
	info, err := obj.Stat()
	if err != nil {
		obj.Close()

		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrObjectNotFound
		}

		return nil, 0, fmt.Errorf("failed to stat MinIO object, %w", err)
	}

	return obj, info.Size, nil
}

func (m *Minio) Delete(ctx context.Context, key string) error {
	err := m.c.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object from MinIO, %w", err)
	}

	return nil
}

func (m *Minio) List(ctx context.Context) ([]Object, error) {
	var objects []Object

	for o := range m.c.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if o.Err != nil {
			return nil, fmt.Errorf("failed to list MinIO objects, %w", o.Err)
		}

		objects = append(objects, Object{
			Key:          o.Key,
			Size:         o.Size,
			LastModified: o.LastModified,
		})
	}

	return objects, nil
}
