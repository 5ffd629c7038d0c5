package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/creative-catalog/internal/domain"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	getErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Mirror_SaveMirrorsCatalog(t *testing.T) {
	fake := newFakeS3()
	mirror := NewS3MirrorWithClient(fake, "bucket", "creative")

	s := newTestStore(t, WithMirror(mirror))
	s.Merge(domain.AdRecord{Name: "Ad One"})
	require.NoError(t, s.Save(context.Background()))

	local, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, local, fake.objects["bucket/creative/catalog.json"])
	assert.Equal(t, "application/json", fake.types["bucket/creative/catalog.json"])
}

func TestS3Mirror_RestoresMissingCatalog(t *testing.T) {
	fake := newFakeS3()
	fake.objects["bucket/catalog.json"] = []byte(`[{"adName":"Remote Ad"}]`)
	mirror := NewS3MirrorWithClient(fake, "bucket", "")

	s := newTestStore(t, WithMirror(mirror))
	_, ok := s.Get("Remote Ad")
	assert.True(t, ok)
}

func TestS3Mirror_EmptyMirrorStartsEmpty(t *testing.T) {
	s := newTestStore(t, WithMirror(NewS3MirrorWithClient(newFakeS3(), "bucket", "")))
	assert.Equal(t, 0, s.Len())
}

func TestS3Mirror_RestoreErrorIsReturned(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("access denied")

	path := filepath.Join(t.TempDir(), "catalog.json")
	_, err := Open(context.Background(), path, WithMirror(NewS3MirrorWithClient(fake, "bucket", "")))
	assert.Error(t, err)
}

func TestS3Mirror_UploadFile(t *testing.T) {
	fake := newFakeS3()
	mirror := NewS3MirrorWithClient(fake, "bucket", "creative")

	local := filepath.Join(t.TempDir(), "Windows_Ad_One.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpeg-bytes"), 0644))

	key, err := mirror.UploadFile(context.Background(), local, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "creative/images/Windows_Ad_One.jpg", key)
	assert.Equal(t, []byte("jpeg-bytes"), fake.objects["bucket/creative/images/Windows_Ad_One.jpg"])
	assert.Equal(t, "image/jpeg", fake.types["bucket/creative/images/Windows_Ad_One.jpg"])
}
