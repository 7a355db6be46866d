package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

type fakeStorage struct {
	deleted []string
	err     error
}

func (f *fakeStorage) GenerateUploadURL(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.example.com/upload/" + key, nil
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.example.com/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestLibrary(t *testing.T) (*Library, *fakeStorage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(func() { mock.Close() })
	storage := &fakeStorage{}
	return NewLibrary(mock, storage), storage, mock
}

func TestCreateReturnsUploadURL(t *testing.T) {
	library, _, mock := newTestLibrary(t)

	mock.ExpectQuery(`INSERT INTO media`).
		WithArgs(pgxmock.AnyArg(), "video/mp4").
		WillReturnRows(pgxmock.NewRows([]string{"id", "file_key", "content_type", "created_at"}).
			AddRow(int64(1), "media/abc", "video/mp4", time.Now()))

	rec, uploadURL, err := library.Create(context.Background(), "video/mp4", 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if uploadURL != "https://s3.example.com/upload/media/abc" {
		t.Fatalf("unexpected upload url %q", uploadURL)
	}
}

func TestURLResolvesFileKey(t *testing.T) {
	library, _, mock := newTestLibrary(t)

	mock.ExpectQuery(`SELECT id, file_key, content_type, created_at FROM media`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "file_key", "content_type", "created_at"}).
			AddRow(int64(7), "media/abc", "video/mp4", time.Now()))

	url, err := library.URL(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://s3.example.com/media/abc" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestURLDanglingIDResolvesEmpty(t *testing.T) {
	library, _, mock := newTestLibrary(t)

	mock.ExpectQuery(`SELECT id, file_key, content_type, created_at FROM media`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	url, err := library.URL(context.Background(), 99)
	if err != nil {
		t.Fatalf("expected dangling ids to resolve without error, got %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url, got %q", url)
	}
}

func TestGetNotFound(t *testing.T) {
	library, _, mock := newTestLibrary(t)

	mock.ExpectQuery(`SELECT id, file_key, content_type, created_at FROM media`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := library.Get(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesRowAndObject(t *testing.T) {
	library, storage, mock := newTestLibrary(t)

	mock.ExpectQuery(`SELECT id, file_key, content_type, created_at FROM media`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "file_key", "content_type", "created_at"}).
			AddRow(int64(7), "media/abc", "video/mp4", time.Now()))
	mock.ExpectExec(`DELETE FROM media`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := library.Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "media/abc" {
		t.Fatalf("expected the object deleted, got %v", storage.deleted)
	}
}
