package gcsmedia

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/playtube/playtube-api/internal/application"
	"github.com/playtube/playtube-api/pkg/helpers"
)

// Store uploads media to a GCS bucket under folder/<uuid><ext> object paths.
type Store struct {
	Client *storage.Client
	Bucket string
}

func New(client *storage.Client, bucket string) *Store {
	return &Store{Client: client, Bucket: bucket}
}

func (s *Store) Upload(ctx context.Context, folder string, up *application.Upload) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(up.Filename))
	objectPath := filepath.ToSlash(filepath.Join(folder, id+ext))
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, up.ContentType, up.Reader)
}

var _ application.MediaStore = (*Store)(nil)
