// Package metasync keeps the canonical featured-video post meta and the
// page-builder widget settings in agreement: meta values prefill fresh
// widgets at read time, and widget edits write back to meta at save time.
package metasync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/featvid/featvid/internal/database"
)

const (
	SourceMetaKey  = "_featured_video_source"
	VideoMetaKey   = "_featured_video_id"
	PosterMetaKey  = "_featured_video_poster_id"
	EmbedMetaKey   = "_featured_video_embed_url"
	BuilderMetaKey = "_builder_data"
)

const (
	SourceSelf  = "self"
	SourceEmbed = "embed"
)

// Meta is the canonical featured-video state of a post. Values stay as
// strings because meta is stored and compared as text.
type Meta struct {
	Source   string `json:"source"`
	VideoID  string `json:"videoId"`
	PosterID string `json:"posterId"`
	EmbedURL string `json:"embedUrl"`
}

// Empty reports whether the post has no featured video: neither a library
// id nor an embed URL, whichever the source selects.
func (m Meta) Empty() bool {
	if m.Source == SourceEmbed {
		return m.EmbedURL == ""
	}
	return m.VideoID == ""
}

// normalized enforces source exclusivity: a self-hosted video clears the
// embed URL and vice versa.
func (m Meta) normalized() Meta {
	if m.Source == SourceEmbed {
		m.VideoID = ""
		m.PosterID = ""
	} else {
		m.Source = SourceSelf
		m.EmbedURL = ""
	}
	return m
}

// ReadMeta loads the canonical values through the plain accessor, bypassing
// any prefill interception.
func ReadMeta(ctx context.Context, db database.DBTX, postID int64) (Meta, error) {
	rows, err := db.Query(ctx,
		"SELECT meta_key, meta_value FROM post_meta WHERE post_id = $1 AND meta_key = ANY($2)",
		postID, []string{SourceMetaKey, VideoMetaKey, PosterMetaKey, EmbedMetaKey})
	if err != nil {
		return Meta{}, fmt.Errorf("read featured video meta: %w", err)
	}
	defer rows.Close()

	var m Meta
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Meta{}, fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case SourceMetaKey:
			m.Source = value
		case VideoMetaKey:
			m.VideoID = value
		case PosterMetaKey:
			m.PosterID = value
		case EmbedMetaKey:
			m.EmbedURL = value
		}
	}
	if err := rows.Err(); err != nil {
		return Meta{}, fmt.Errorf("read featured video meta rows: %w", err)
	}
	if m.Source == "" {
		m.Source = SourceSelf
	}
	return m, nil
}

// WriteMeta stores the full normalized set. The inactive source's fields
// are written as empty strings so the two sources never coexist.
func WriteMeta(ctx context.Context, db database.DBTX, postID int64, m Meta) error {
	m = m.normalized()
	values := []struct{ key, value string }{
		{SourceMetaKey, m.Source},
		{VideoMetaKey, m.VideoID},
		{PosterMetaKey, m.PosterID},
		{EmbedMetaKey, m.EmbedURL},
	}
	for _, v := range values {
		_, err := db.Exec(ctx,
			`INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)
			 ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
			postID, v.key, v.value)
		if err != nil {
			return fmt.Errorf("write meta %s: %w", v.key, err)
		}
	}
	return nil
}

// ReadBuilderData returns the raw builder document, or nil when the post
// has none.
func ReadBuilderData(ctx context.Context, db database.DBTX, postID int64) ([]byte, error) {
	var raw string
	err := db.QueryRow(ctx,
		"SELECT meta_value FROM post_meta WHERE post_id = $1 AND meta_key = $2",
		postID, BuilderMetaKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read builder data: %w", err)
	}
	return []byte(raw), nil
}

func WriteBuilderData(ctx context.Context, db database.DBTX, postID int64, raw []byte) error {
	_, err := db.Exec(ctx,
		`INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)
		 ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
		postID, BuilderMetaKey, string(raw))
	if err != nil {
		return fmt.Errorf("write builder data: %w", err)
	}
	return nil
}
