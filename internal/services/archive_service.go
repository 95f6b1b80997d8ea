package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService stores verified raw webhook payloads in object
// storage so events can be audited or replayed later. It implements
// EventArchiver.
type ArchiveService interface {
	Archive(ctx context.Context, eventID string, payload []byte) error
	EnsureBucketExists(ctx context.Context) error
}

type archiveService struct {
	client *minio.Client
	bucket string
}

func NewArchiveService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &archiveService{client: client, bucket: bucket}, nil
}

func (s *archiveService) Archive(ctx context.Context, eventID string, payload []byte) error {
	if eventID == "" {
		eventID = "unidentified"
	}
	// Date-prefixed keys keep listings browsable by day.
	objectName := fmt.Sprintf("webhooks/%s/%s.json", time.Now().UTC().Format("2006-01-02"), eventID)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (s *archiveService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
