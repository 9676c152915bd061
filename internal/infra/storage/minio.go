package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const rawPrefix = "raw-responses"

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, now: time.Now}, nil
}

// Archive uploads one unparsable model reply and returns its object URL.
func (s *Store) Archive(ctx context.Context, raw string) (string, error) {
	key := ObjectKey(s.now(), uuid.NewString())
	_, err := s.client.PutObject(ctx, s.bucketName, key, strings.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key), nil
}

// ObjectKey lays raw replies out by UTC day.
func ObjectKey(t time.Time, id string) string {
	return fmt.Sprintf("%s/%s/%s.txt", rawPrefix, t.UTC().Format("2006/01/02"), id)
}
