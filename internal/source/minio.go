package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mch/internal/logging"
)

// MinioConfig holds connection settings for an S3 compatible store.
type MinioConfig struct {
	Endpoint       string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey      string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey      string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL         bool   `mapstructure:"use_ssl" default:"false"`
	Bucket         string `mapstructure:"bucket" default:"content"`
	Region         string `mapstructure:"region" default:""`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}

// ObjectStore is the subset of the minio client used by Minio.
type ObjectStore interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

type minioClientWrapper struct {
	*minio.Client
}

func (c *minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

// NewObjectStore dials the configured endpoint. The minio client connects
// lazily, so an unreachable endpoint surfaces on the first read.
func NewObjectStore(cfg MinioConfig) (ObjectStore, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioClientWrapper{Client: client}, nil
}

// Minio serves objects from a single bucket.
type Minio struct {
	store  ObjectStore
	bucket string
}

// NewMinio creates a Minio source reading from bucket.
func NewMinio(store ObjectStore, bucket string) *Minio {
	return &Minio{store: store, bucket: bucket}
}

// Open stats and downloads the named object. The stored Content-Type is
// used when set, otherwise it is guessed from the extension.
func (m *Minio) Open(ctx context.Context, name string) (obj *Object, err error) {
	start := time.Now()
	defer func() { observeRead(BackendMinio, start, err) }()

	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	info, err := m.store.StatObject(ctx, m.bucket, cleaned, minio.StatObjectOptions{})
	if err != nil {
		return nil, m.translate(cleaned, err)
	}

	reader, err := m.store.GetObject(ctx, m.bucket, cleaned, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.translate(cleaned, err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			logging.Debug("Failed to close object %s/%s: %v", m.bucket, cleaned, cerr)
		}
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, m.translate(cleaned, err)
	}

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(cleaned)
	}

	return &Object{
		Name:        cleaned,
		ContentType: contentType,
		ModTime:     info.LastModified,
		Data:        data,
	}, nil
}

func (m *Minio) translate(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrNotFound
	case "NoSuchBucket":
		logging.Warn("Content bucket %s does not exist", m.bucket)
		return ErrNotFound
	}
	return fmt.Errorf("object %s/%s: %w", m.bucket, name, err)
}
