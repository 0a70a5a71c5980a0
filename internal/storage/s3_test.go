package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	getErr  error
	pages   [][]types.Object
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}

	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: aws.Int64(int64(len(b))),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	i := 0
	if in.ContinuationToken != nil {
		i = int(aws.ToString(in.ContinuationToken)[0] - '0')
	}

	out := &s3.ListObjectsV2Output{Contents: f.pages[i]}
	if i+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(string(rune('0' + i + 1)))
	}

	return out, nil
}

func TestS3PutGetDelete(t *testing.T) {
	ctx := context.Background()
	f := &fakeS3{objects: map[string][]byte{}}
	s := NewS3(f, "files")

	require.NoError(t, s.Put(ctx, "k.docx", bytes.NewReader([]byte("data")), 4, "application/octet-stream"))

	rc, size, err := s.Get(ctx, "k.docx")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "data", string(b))
	assert.Equal(t, int64(4), size)

	require.NoError(t, s.Delete(ctx, "k.docx"))

	_, _, err = s.Get(ctx, "k.docx")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3ErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	s := NewS3(&fakeS3{objects: map[string][]byte{}, putErr: boom, getErr: boom}, "files")

	assert.ErrorIs(t, s.Put(ctx, "k", bytes.NewReader(nil), 0, ""), boom)

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}

func TestS3ListPaginates(t *testing.T) {
	now := time.Now()
	f := &fakeS3{pages: [][]types.Object{
		{{Key: aws.String("a"), Size: aws.Int64(1), LastModified: &now}},
		{{Key: aws.String("b"), Size: aws.Int64(2), LastModified: &now}},
	}}

	objects, err := NewS3(f, "files").List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a", objects[0].Key)
	assert.Equal(t, "b", objects[1].Key)
	assert.Equal(t, int64(2), objects[1].Size)
}
