package source

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockObjectStore) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if obj, ok := args.Get(0).(io.ReadCloser); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func noSuchKey() error {
	return minio.ErrorResponse{
		Code:       "NoSuchKey",
		Message:    "The specified key does not exist.",
		StatusCode: http.StatusNotFound,
	}
}

func TestMinioOpen(t *testing.T) {
	store := new(mockObjectStore)
	modTime := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	store.On("StatObject", mock.Anything, "threads", "board/1.dat", mock.Anything).
		Return(minio.ObjectInfo{Key: "board/1.dat", LastModified: modTime, Size: 10}, nil)
	store.On("GetObject", mock.Anything, "threads", "board/1.dat", mock.Anything).
		Return(io.NopCloser(strings.NewReader("0123456789")), nil)

	obj, err := NewMinio(store, "threads").Open(context.Background(), "/board/1.dat")
	require.NoError(t, err)

	assert.Equal(t, "board/1.dat", obj.Name)
	assert.Equal(t, []byte("0123456789"), obj.Data)
	assert.Equal(t, "text/plain; charset=utf-8", obj.ContentType)
	assert.True(t, obj.ModTime.Equal(modTime))
	store.AssertExpectations(t)
}

func TestMinioOpenKeepsStoredContentType(t *testing.T) {
	store := new(mockObjectStore)
	store.On("StatObject", mock.Anything, "threads", "page.html", mock.Anything).
		Return(minio.ObjectInfo{ContentType: "text/html; charset=shift_jis"}, nil)
	store.On("GetObject", mock.Anything, "threads", "page.html", mock.Anything).
		Return(io.NopCloser(strings.NewReader("<p>")), nil)

	obj, err := NewMinio(store, "threads").Open(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=shift_jis", obj.ContentType)
}

func TestMinioOpenNotFound(t *testing.T) {
	store := new(mockObjectStore)
	store.On("StatObject", mock.Anything, "threads", "missing.dat", mock.Anything).
		Return(minio.ObjectInfo{}, noSuchKey())

	_, err := NewMinio(store, "threads").Open(context.Background(), "missing.dat")
	assert.ErrorIs(t, err, ErrNotFound)
	store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMinioOpenBackendError(t *testing.T) {
	store := new(mockObjectStore)
	store.On("StatObject", mock.Anything, "threads", "a.dat", mock.Anything).
		Return(minio.ObjectInfo{}, nil)
	store.On("GetObject", mock.Anything, "threads", "a.dat", mock.Anything).
		Return(nil, assert.AnError)

	_, err := NewMinio(store, "threads").Open(context.Background(), "a.dat")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMinioOpenRejectsTraversal(t *testing.T) {
	store := new(mockObjectStore)

	_, err := NewMinio(store, "threads").Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
	store.AssertNotCalled(t, "StatObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNewObjectStore(t *testing.T) {
	store, err := NewObjectStore(MinioConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "threads",
	})
	require.NoError(t, err)
	assert.NotNil(t, store)
}
