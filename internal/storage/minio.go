package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const minioTimeout = 60 * time.Second

// MinioStorage keeps objects in an S3-compatible bucket
type MinioStorage struct {
	client *minio.Client
	bucket string
}

var _ StorageInterface = (*MinioStorage)(nil)

// NewMinioStorage connects to the endpoint and creates the bucket when missing
func NewMinioStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), minioTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		logrus.Infof("Created bucket %s", bucket)
	}

	return &MinioStorage{client: client, bucket: bucket}, nil
}

// Store uploads data as a single object
func (s *MinioStorage) Store(filename string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), minioTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, filename, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(filename)})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", filename, err)
	}

	logrus.Debugf("Stored %s in bucket %s", filename, s.bucket)
	return nil
}

// Retrieve downloads an object
func (s *MinioStorage) Retrieve(filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), minioTimeout)
	defer cancel()

	obj, err := s.client.GetObject(ctx, s.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapError(filename, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrapError(filename, err)
	}
	return data, nil
}

// List returns every object name under prefix
func (s *MinioStorage) List(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), minioTimeout)
	defer cancel()

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Delete removes an object
func (s *MinioStorage) Delete(filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), minioTimeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", filename, err)
	}

	logrus.Infof("Deleted %s from bucket %s", filename, s.bucket)
	return nil
}

// GetObject is lazy, so a missing key surfaces on the first read.
func (s *MinioStorage) wrapError(filename string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	return fmt.Errorf("failed to download object %s: %w", filename, err)
}

func contentType(filename string) string {
	switch path.Ext(filename) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
