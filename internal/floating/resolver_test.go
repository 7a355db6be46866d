package floating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/featvid/featvid/internal/settings"
)

// fakeMedia resolves ids from a fixed map; missing ids resolve to "".
type fakeMedia struct {
	urls map[int64]string
	err  error
}

func (f *fakeMedia) URL(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.urls[id], nil
}

var recordCols = []string{
	"id", "title", "status", "video_source", "coalesce", "embed_url",
	"display_type", "page_ids", "target_post_types", "target_taxonomies",
	"created_at", "updated_at",
}

func recordRow(rows *pgxmock.Rows, id int64, title, source string, videoID int64, embedURL, displayType string) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, title, StatusPublish, source, videoID, embedURL,
		displayType, []int64(nil), []string(nil), []byte("[]"),
		now, now,
	)
}

func expectPublishedList(mock pgxmock.PgxPoolIface, rows *pgxmock.Rows) {
	mock.ExpectQuery(`SELECT .+ FROM floating_videos WHERE status = \$1`).
		WithArgs(StatusPublish, ListLimit).
		WillReturnRows(rows)
}

func expectDefaultOptions(mock pgxmock.PgxPoolIface) {
	for _, key := range []string{
		settings.SelfControlsKey, settings.EmbedControlsKey,
		settings.LayoutKey, settings.AspectRatioKey,
	} {
		mock.ExpectQuery(`SELECT value FROM options`).
			WithArgs(key).
			WillReturnError(pgx.ErrNoRows)
	}
}

func newTestResolver(t *testing.T, media *fakeMedia, aspect AspectRatioFunc) (*Resolver, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	return NewResolver(mock, media, settings.NewStore(mock), aspect), mock
}

func TestResolve_BuildsPayloadInOrder(t *testing.T) {
	media := &fakeMedia{urls: map[int64]string{7: "https://cdn.example.com/7.mp4"}}
	resolver, mock := newTestResolver(t, media, nil)
	defer mock.Close()

	rows := pgxmock.NewRows(recordCols)
	rows = recordRow(rows, 2, "Newest", SourceEmbed, 0, "https://youtu.be/abc12345678", DisplaySitewide)
	rows = recordRow(rows, 1, "Older", SourceSelf, 7, "", DisplaySitewide)
	expectPublishedList(mock, rows)
	expectDefaultOptions(mock)

	payload, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload == nil {
		t.Fatal("expected a payload")
	}
	if len(payload.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(payload.Videos))
	}
	if payload.Videos[0].Title != "Newest" || payload.Videos[1].Title != "Older" {
		t.Fatalf("expected listing order preserved, got %+v", payload.Videos)
	}
	if payload.Videos[0].EmbedURL != "https://youtu.be/abc12345678" || payload.Videos[0].VideoURL != "" {
		t.Fatalf("expected embed url passthrough, got %+v", payload.Videos[0])
	}
	if payload.Videos[1].VideoURL != "https://cdn.example.com/7.mp4" || payload.Videos[1].EmbedURL != "" {
		t.Fatalf("expected resolved media url, got %+v", payload.Videos[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolve_DefaultsWhenOptionsUnset(t *testing.T) {
	media := &fakeMedia{urls: map[int64]string{7: "https://cdn.example.com/7.mp4"}}
	resolver, mock := newTestResolver(t, media, nil)
	defer mock.Close()

	rows := recordRow(pgxmock.NewRows(recordCols), 1, "Only", SourceSelf, 7, "", DisplaySitewide)
	expectPublishedList(mock, rows)
	expectDefaultOptions(mock)

	payload, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payload.SelfControls.Controls || payload.SelfControls.Autoplay {
		t.Fatalf("expected default self controls, got %+v", payload.SelfControls)
	}
	if payload.AspectRatio != "16/9" {
		t.Fatalf("expected default aspect ratio, got %q", payload.AspectRatio)
	}
	if payload.Layout != "standard" {
		t.Fatalf("expected default layout, got %q", payload.Layout)
	}
}

func TestResolve_DropsUnresolvableEntries(t *testing.T) {
	media := &fakeMedia{urls: map[int64]string{7: "https://cdn.example.com/7.mp4"}}
	resolver, mock := newTestResolver(t, media, nil)
	defer mock.Close()

	rows := pgxmock.NewRows(recordCols)
	rows = recordRow(rows, 3, "Dangling media", SourceSelf, 99, "", DisplaySitewide)
	rows = recordRow(rows, 2, "No embed url", SourceEmbed, 0, "", DisplaySitewide)
	rows = recordRow(rows, 1, "Playable", SourceSelf, 7, "", DisplaySitewide)
	expectPublishedList(mock, rows)
	expectDefaultOptions(mock)

	payload, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Videos) != 1 || payload.Videos[0].Title != "Playable" {
		t.Fatalf("expected only the playable entry, got %+v", payload.Videos)
	}
}

func TestResolve_NoMatchesYieldsNilPayload(t *testing.T) {
	resolver, mock := newTestResolver(t, &fakeMedia{}, nil)
	defer mock.Close()

	rows := recordRow(pgxmock.NewRows(recordCols), 1, "Targeted", SourceEmbed, 0, "https://youtu.be/abc12345678", DisplaySpecificPages)
	expectPublishedList(mock, rows)

	payload, err := resolver.Resolve(context.Background(), singularContext(42, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %+v", payload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResolve_AllEntriesDroppedYieldsNilPayload(t *testing.T) {
	resolver, mock := newTestResolver(t, &fakeMedia{}, nil)
	defer mock.Close()

	rows := recordRow(pgxmock.NewRows(recordCols), 1, "Dangling", SourceSelf, 99, "", DisplaySitewide)
	expectPublishedList(mock, rows)

	payload, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %+v", payload)
	}
}

func TestResolve_AspectRatioOverride(t *testing.T) {
	media := &fakeMedia{urls: map[int64]string{7: "https://cdn.example.com/7.mp4"}}
	override := func(Context) string { return "9/16" }
	resolver, mock := newTestResolver(t, media, override)
	defer mock.Close()

	rows := recordRow(pgxmock.NewRows(recordCols), 1, "Only", SourceSelf, 7, "", DisplaySitewide)
	expectPublishedList(mock, rows)
	expectDefaultOptions(mock)

	payload, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.AspectRatio != "9/16" {
		t.Fatalf("expected override to win, got %q", payload.AspectRatio)
	}
}

func TestResolve_MediaErrorPropagates(t *testing.T) {
	media := &fakeMedia{err: errors.New("storage down")}
	resolver, mock := newTestResolver(t, media, nil)
	defer mock.Close()

	rows := recordRow(pgxmock.NewRows(recordCols), 1, "Only", SourceSelf, 7, "", DisplaySitewide)
	expectPublishedList(mock, rows)

	if _, err := resolver.Resolve(context.Background(), singularContext(1, "post", nil)); err == nil {
		t.Fatal("expected an error")
	}
}
