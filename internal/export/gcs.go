package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// GCS archives exports to a Cloud Storage bucket under exports/{userId}/.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS connects to bucket. Without credentialsFile, Application Default
// Credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCS{client: client, bucket: bucket}, nil
}

func objectPrefix(userID uuid.UUID) string {
	return path.Join("exports", userID.String()) + "/"
}

func (g *GCS) Archive(ctx context.Context, userID uuid.UUID, name string, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	object := objectPrefix(userID) + time.Now().UTC().Format("20060102T150405Z") + "_" + name

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", object, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload %s: %w", object, err)
	}

	return "gs://" + g.bucket + "/" + object, nil
}

// List returns the archived exports of userID, oldest first.
func (g *GCS) List(ctx context.Context, userID uuid.UUID) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: objectPrefix(userID)})

	var out []string

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("list exports: %w", err)
		}

		out = append(out, "gs://"+g.bucket+"/"+attrs.Name)
	}

	return out, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
