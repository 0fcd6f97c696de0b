// Package archive writes immutable promotion snapshots to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CommentSnapshot is one community comment frozen at promotion time.
type CommentSnapshot struct {
	ID           string    `json:"id"`
	AuthorName   string    `json:"authorName"`
	AuthorRole   string    `json:"authorRole,omitempty"`
	Content      string    `json:"content"`
	Upvotes      int       `json:"upvotes"`
	IsBuildingOn bool      `json:"isBuildingOn"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FragmentSnapshot is the full crowdsourcing record of a fragment at the
// moment it was promoted. The live tables keep evolving; the snapshot does not.
type FragmentSnapshot struct {
	FragmentID    string            `json:"fragmentId"`
	IdeaID        string            `json:"ideaId"`
	Title         string            `json:"title"`
	RoughThought  string            `json:"roughThought"`
	SubmitterName string            `json:"submitterName"`
	Upvotes       int               `json:"upvotes"`
	MaturityScore int               `json:"maturityScore"`
	Comments      []CommentSnapshot `json:"comments"`
	PromotedAt    time.Time         `json:"promotedAt"`
}

// Service stores promotion snapshots as JSON objects in a MinIO bucket.
type Service struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and ensures the snapshot bucket exists.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Service, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Service{client: client, bucket: bucket}, nil
}

// ObjectName returns the storage key for a snapshot.
func ObjectName(snapshot FragmentSnapshot) string {
	return fmt.Sprintf("promotions/%s/%s.json",
		snapshot.PromotedAt.UTC().Format("2006/01"), snapshot.FragmentID)
}

// ArchivePromotion uploads the snapshot in the background. Archival is best
// effort: a failure is logged, never surfaced to the promoting caller.
func (s *Service) ArchivePromotion(snapshot FragmentSnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.upload(ctx, snapshot); err != nil {
			log.Printf("archive: snapshot fragment %s: %v", snapshot.FragmentID, err)
		}
	}()
}

func (s *Service) upload(ctx context.Context, snapshot FragmentSnapshot) error {
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, ObjectName(snapshot),
		bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
			ContentType: "application/json",
		})
	if err != nil {
		return fmt.Errorf("put snapshot object: %w", err)
	}
	return nil
}

// FetchSnapshot reads a previously archived snapshot back.
func (s *Service) FetchSnapshot(ctx context.Context, objectName string) (FragmentSnapshot, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return FragmentSnapshot{}, fmt.Errorf("get snapshot object: %w", err)
	}
	defer object.Close()

	var snapshot FragmentSnapshot
	if err := json.NewDecoder(object).Decode(&snapshot); err != nil {
		return FragmentSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}
