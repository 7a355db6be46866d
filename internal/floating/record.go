// Package floating implements floating-video records: which videos exist,
// where they display, and the resolved payload the frontend player consumes.
package floating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/featvid/featvid/internal/database"
)

const (
	StatusPublish = "publish"
	StatusDraft   = "draft"

	SourceSelf  = "self"
	SourceEmbed = "embed"

	DisplaySitewide      = "sitewide"
	DisplaySpecificPages = "specific_pages"
	DisplayPostTypes     = "post_types"
	DisplayTaxonomies    = "taxonomies"
)

// ListLimit caps every admin listing.
const ListLimit = 100

var ErrNotFound = errors.New("floating video: not found")

// TaxonomyTarget pairs a taxonomy with the term ids a record targets within
// it. An empty Terms list never matches anything.
type TaxonomyTarget struct {
	Taxonomy string  `json:"taxonomy"`
	Terms    []int64 `json:"terms"`
}

// Rule is the display condition attached to a record. Only the fields for
// the active DisplayType are consulted.
type Rule struct {
	DisplayType      string           `json:"displayType"`
	PageIDs          []int64          `json:"pageIds"`
	TargetPostTypes  []string         `json:"targetPostTypes"`
	TargetTaxonomies []TaxonomyTarget `json:"targetTaxonomies"`
}

type Record struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	VideoSource string    `json:"videoSource"`
	VideoID     int64     `json:"videoId,omitempty"`
	EmbedURL    string    `json:"embedUrl,omitempty"`
	Rule        Rule      `json:"rule"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const recordColumns = `id, title, status, video_source, COALESCE(video_id, 0), embed_url,
	display_type, page_ids, target_post_types, target_taxonomies, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var taxonomies []byte
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Status, &rec.VideoSource, &rec.VideoID, &rec.EmbedURL,
		&rec.Rule.DisplayType, &rec.Rule.PageIDs, &rec.Rule.TargetPostTypes, &taxonomies,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if len(taxonomies) > 0 {
		if err := json.Unmarshal(taxonomies, &rec.Rule.TargetTaxonomies); err != nil {
			return Record{}, fmt.Errorf("decode taxonomy targets: %w", err)
		}
	}
	return rec, nil
}

// listRecords returns records newest first. Ties on created_at break on the
// higher id so the order is total.
func listRecords(ctx context.Context, db database.DBTX, publishedOnly bool, limit int) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM floating_videos"
	args := []any{}
	if publishedOnly {
		query += " WHERE status = $1"
		args = append(args, StatusPublish)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list floating videos: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan floating video: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list floating videos rows: %w", err)
	}
	return out, nil
}

func getRecord(ctx context.Context, db database.DBTX, id int64) (Record, error) {
	rec, err := scanRecord(db.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM floating_videos WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get floating video: %w", err)
	}
	return rec, nil
}

func insertRecord(ctx context.Context, db database.DBTX, rec Record) (Record, error) {
	taxonomies, err := json.Marshal(rec.Rule.TargetTaxonomies)
	if err != nil {
		return Record{}, fmt.Errorf("encode taxonomy targets: %w", err)
	}
	saved, err := scanRecord(db.QueryRow(ctx,
		`INSERT INTO floating_videos
			(title, status, video_source, video_id, embed_url, display_type, page_ids, target_post_types, target_taxonomies)
		 VALUES ($1, $2, $3, NULLIF($4, 0::BIGINT), $5, $6, $7, $8, $9)
		 RETURNING `+recordColumns,
		rec.Title, rec.Status, rec.VideoSource, rec.VideoID, rec.EmbedURL,
		rec.Rule.DisplayType, rec.Rule.PageIDs, rec.Rule.TargetPostTypes, taxonomies,
	))
	if err != nil {
		return Record{}, fmt.Errorf("insert floating video: %w", err)
	}
	return saved, nil
}

func updateRecord(ctx context.Context, db database.DBTX, rec Record) (Record, error) {
	taxonomies, err := json.Marshal(rec.Rule.TargetTaxonomies)
	if err != nil {
		return Record{}, fmt.Errorf("encode taxonomy targets: %w", err)
	}
	saved, err := scanRecord(db.QueryRow(ctx,
		`UPDATE floating_videos SET
			title = $2, status = $3, video_source = $4, video_id = NULLIF($5, 0::BIGINT),
			embed_url = $6, display_type = $7, page_ids = $8, target_post_types = $9,
			target_taxonomies = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING `+recordColumns,
		rec.ID, rec.Title, rec.Status, rec.VideoSource, rec.VideoID, rec.EmbedURL,
		rec.Rule.DisplayType, rec.Rule.PageIDs, rec.Rule.TargetPostTypes, taxonomies,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("update floating video: %w", err)
	}
	return saved, nil
}

func deleteRecord(ctx context.Context, db database.DBTX, id int64) error {
	tag, err := db.Exec(ctx, "DELETE FROM floating_videos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete floating video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
