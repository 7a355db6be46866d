// Package media manages the library of self-hosted video files and poster
// images. Files live in object storage; rows here map ids to object keys.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/featvid/featvid/internal/database"
)

// DownloadURLExpiry bounds how long a resolved playback URL stays valid.
// Frontend payloads are rebuilt per request, so short is fine.
const DownloadURLExpiry = 1 * time.Hour

const UploadURLExpiry = 15 * time.Minute

var ErrNotFound = errors.New("media: not found")

// ObjectStorage is the slice of the storage client the library needs.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string, contentLength int64, expiry time.Duration) (string, error)
	GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Record struct {
	ID          int64     `json:"id"`
	FileKey     string    `json:"-"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Library struct {
	db      database.DBTX
	storage ObjectStorage
}

func NewLibrary(db database.DBTX, storage ObjectStorage) *Library {
	return &Library{db: db, storage: storage}
}

// Create inserts a library row and returns it together with a presigned
// upload URL for the actual file bytes.
func (l *Library) Create(ctx context.Context, contentType string, contentLength int64) (Record, string, error) {
	token, err := newFileToken()
	if err != nil {
		return Record{}, "", err
	}
	key := "media/" + token

	var rec Record
	err = l.db.QueryRow(ctx,
		`INSERT INTO media (file_key, content_type) VALUES ($1, $2)
		 RETURNING id, file_key, content_type, created_at`,
		key, contentType,
	).Scan(&rec.ID, &rec.FileKey, &rec.ContentType, &rec.CreatedAt)
	if err != nil {
		return Record{}, "", fmt.Errorf("insert media: %w", err)
	}

	uploadURL, err := l.storage.GenerateUploadURL(ctx, key, contentType, contentLength, UploadURLExpiry)
	if err != nil {
		return Record{}, "", fmt.Errorf("presign media upload: %w", err)
	}
	return rec, uploadURL, nil
}

// Get loads a library row. Returns ErrNotFound for unknown ids.
func (l *Library) Get(ctx context.Context, id int64) (Record, error) {
	var rec Record
	err := l.db.QueryRow(ctx,
		"SELECT id, file_key, content_type, created_at FROM media WHERE id = $1", id,
	).Scan(&rec.ID, &rec.FileKey, &rec.ContentType, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get media: %w", err)
	}
	return rec, nil
}

// URL resolves a library id to a presigned playback URL. A dangling id
// yields an empty string with no error so callers can skip the entry.
func (l *Library) URL(ctx context.Context, id int64) (string, error) {
	rec, err := l.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	url, err := l.storage.GenerateDownloadURL(ctx, rec.FileKey, DownloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign media download: %w", err)
	}
	return url, nil
}

// Delete removes the row and the stored object. Removing the object is best
// effort once the row is gone.
func (l *Library) Delete(ctx context.Context, id int64) error {
	rec, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, "DELETE FROM media WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	_ = l.storage.DeleteObject(ctx, rec.FileKey)
	return nil
}

func newFileToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
