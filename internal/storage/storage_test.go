package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		wantErr error
	}{
		{"png", Upload{Filename: "shirt.png", ContentType: "image/png", Size: 100}, nil},
		{"upper case jpeg", Upload{Filename: "SHIRT.JPEG", ContentType: "image/jpeg", Size: 100}, nil},
		{"octet stream accepted by extension", Upload{Filename: "a.jpg", ContentType: "application/octet-stream", Size: 1}, nil},
		{"gif rejected", Upload{Filename: "a.gif", ContentType: "image/gif", Size: 1}, ErrUnsupportedImageType},
		{"mismatched content type", Upload{Filename: "a.png", ContentType: "text/html", Size: 1}, ErrUnsupportedImageType},
		{"too large", Upload{Filename: "a.png", ContentType: "image/png", Size: 2049 * 1024}, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.upload, 2048*1024)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLocalStorage_SaveExistsDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/storage/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, ProductImageFolder, Upload{
		Filename:    "Shirt.PNG",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "/storage/"+key, store.URL(key))

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is harmless
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/storage")
	require.NoError(t, err)

	assert.Error(t, store.Delete(context.Background(), "../../etc/passwd"))
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StorageWithClient(fake, "bucket", "ap-southeast-1", "")
	ctx := context.Background()

	key, err := store.Save(ctx, ProductImageFolder, Upload{
		Filename:    "a.jpg",
		ContentType: "image/jpeg",
		Size:        3,
		Body:        bytes.NewReader([]byte("jpg")),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), fake.objects[key])
	assert.Equal(t, "https://bucket.s3.ap-southeast-1.amazonaws.com/"+key, store.URL(key))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	cdn := NewS3StorageWithClient(fake, "bucket", "ap-southeast-1", "https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com/products/x.png", cdn.URL("products/x.png"))
}
