package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	lastPut *s3.PutObjectInput
	getErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.lastPut = in
	f.objects[aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_SaveOpen(t *testing.T) {
	f := &fakeS3{objects: map[string]string{}}
	s := NewStore(f, "bucket")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k.xlsx", strings.NewReader("data"), ""))
	assert.Equal(t, "uploads/k.xlsx", aws.ToString(f.lastPut.Key))
	assert.Equal(t, "bucket", aws.ToString(f.lastPut.Bucket))
	assert.Equal(t, "application/octet-stream", aws.ToString(f.lastPut.ContentType))

	rc, err := s.Open(ctx, "k.xlsx")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "data", string(b))
}

func TestStore_Open_MissingKey(t *testing.T) {
	_, err := NewStore(&fakeS3{objects: map[string]string{}}, "bucket").Open(context.Background(), "gone.xlsx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_Open_OtherError(t *testing.T) {
	f := &fakeS3{objects: map[string]string{}, getErr: errors.New("throttled")}
	_, err := NewStore(f, "bucket").Open(context.Background(), "k.xlsx")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_Remove(t *testing.T) {
	f := &fakeS3{objects: map[string]string{}}
	s := NewStore(f, "bucket")
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k.xlsx", strings.NewReader("data"), ""))

	require.NoError(t, s.Remove(ctx, "k.xlsx"))
	assert.Empty(t, f.objects)
	_, err := s.Open(ctx, "k.xlsx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
