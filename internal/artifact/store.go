// Package artifact uploads finished archives to S3-compatible object
// storage.
//
// Upload is optional and best-effort: a failed upload is reported to the
// caller as a warning-grade condition, never as a packaging failure. Each
// project keeps a sha256 sidecar object next to its archives so a rerun
// whose archive bytes are unchanged can skip the transfer.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"funcpack/internal/config"
)

// Store is a thin client for one bucket, optionally rooted at a key
// prefix.
type Store struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	initOnce sync.Once
	initErr  error
}

// NewStore builds a Store from the upload configuration. Endpoint, keys,
// and bucket are required; region defaults to us-east-1.
func NewStore(cfg config.UploadConfig) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("upload endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("upload access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("upload bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init upload client: %w", err)
	}

	return &Store{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// CheckBucket verifies the bucket is reachable, creating it if needed.
func (s *Store) CheckBucket(ctx context.Context) error {
	return s.ensureBucket(ctx)
}

// UploadArchive stores the archive at archivePath under the project's key
// prefix, then refreshes the project's sha256 sidecar. When the remote
// sidecar already matches the local archive bytes the transfer is skipped
// and uploaded is false.
func (s *Store) UploadArchive(ctx context.Context, project, archivePath string) (uploaded bool, err error) {
	sum, err := HashFile(archivePath)
	if err != nil {
		return false, err
	}

	sidecar := s.objectKey(project + ".sha256")
	remote, err := s.remoteHash(ctx, sidecar)
	if err != nil {
		return false, err
	}
	if remote == sum {
		return false, nil
	}

	key := s.objectKey(path.Join(project, path.Base(archivePath)))
	if _, err := s.client.FPutObject(ctx, s.bucket, key, archivePath, minio.PutObjectOptions{
		ContentType: "application/zip",
	}); err != nil {
		return false, fmt.Errorf("upload %s: %w", key, err)
	}

	body := []byte(sum + "\n")
	if _, err := s.client.PutObject(ctx, s.bucket, sidecar, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/plain",
	}); err != nil {
		return true, fmt.Errorf("write hash sidecar %s: %w", sidecar, err)
	}
	return true, nil
}

// remoteHash reads the project's sidecar object. A missing sidecar or
// bucket means no prior upload and reports an empty hash.
func (s *Store) remoteHash(ctx context.Context, key string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) objectKey(name string) string {
	name = strings.TrimLeft(name, "/")
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
