package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// SnapshotStore keeps JSON copies of documents before maintenance jobs modify them.
type SnapshotStore interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

type MinioSnapshots struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to endpoint and makes sure bucket exists.
func NewMinio(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioSnapshots, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		logrus.WithField("bucket", bucket).Info("Created snapshot bucket")
	}
	return &MinioSnapshots{client: client, bucket: bucket}, nil
}

// PutJSON uploads v as <key>.json and returns the object location.
func (s *MinioSnapshots) PutJSON(ctx context.Context, key string, v any) (string, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	objectName := key + ".json"
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", objectName, err)
	}
	return s.bucket + "/" + objectName, nil
}

// Discard is used when no object storage is configured.
type Discard struct{}

func (Discard) PutJSON(context.Context, string, any) (string, error) { return "", nil }

// SnapshotKey names a snapshot object: <job>/<UTC timestamp>.
func SnapshotKey(job string, at time.Time) string {
	return job + "/" + at.UTC().Format("20060102T150405Z")
}
