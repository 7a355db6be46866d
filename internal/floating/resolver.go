package floating

import (
	"context"
	"fmt"

	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/settings"
)

// MediaResolver resolves a media library id to a playback URL. An empty
// string means the id no longer resolves to a file.
type MediaResolver interface {
	URL(ctx context.Context, id int64) (string, error)
}

// AspectRatioFunc lets deployments override the player aspect ratio per
// view context. Returning an empty string keeps the configured value.
type AspectRatioFunc func(ctx Context) string

// PayloadVideo is one playable entry in the frontend payload. Exactly one
// of VideoURL and EmbedURL is set, matching VideoSource.
type PayloadVideo struct {
	VideoSource string `json:"videoSource"`
	VideoURL    string `json:"videoUrl"`
	EmbedURL    string `json:"embedUrl"`
	Title       string `json:"title"`
}

// Payload is everything the popup player needs to render: the matched
// videos in display order plus the global player settings.
type Payload struct {
	Videos        []PayloadVideo    `json:"videos"`
	SelfControls  settings.Controls `json:"selfControls"`
	EmbedControls settings.Controls `json:"embedControls"`
	AspectRatio   string            `json:"aspectRatio"`
	Layout        string            `json:"layout"`
}

// Resolver builds frontend payloads. It only reads; records are never
// mutated during resolution.
type Resolver struct {
	db          database.DBTX
	media       MediaResolver
	settings    *settings.Store
	aspectRatio AspectRatioFunc
}

func NewResolver(db database.DBTX, media MediaResolver, store *settings.Store, aspectRatio AspectRatioFunc) *Resolver {
	return &Resolver{db: db, media: media, settings: store, aspectRatio: aspectRatio}
}

// Resolve returns the payload for a view context, or nil when no published
// record matches and survives URL resolution. A nil payload with a nil
// error means "render nothing".
func (r *Resolver) Resolve(ctx context.Context, view Context) (*Payload, error) {
	records, err := listRecords(ctx, r.db, true, ListLimit)
	if err != nil {
		return nil, err
	}

	var videos []PayloadVideo
	for _, rec := range records {
		if !Matches(rec.Rule, view) {
			continue
		}
		video, ok, err := r.resolveVideo(ctx, rec)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		videos = append(videos, video)
	}
	if len(videos) == 0 {
		return nil, nil
	}

	selfControls, err := r.settings.VideoControls(ctx, SourceSelf)
	if err != nil {
		return nil, err
	}
	embedControls, err := r.settings.VideoControls(ctx, SourceEmbed)
	if err != nil {
		return nil, err
	}
	layout, err := r.settings.Layout(ctx)
	if err != nil {
		return nil, err
	}
	ratio, err := r.settings.AspectRatio(ctx)
	if err != nil {
		return nil, err
	}
	if r.aspectRatio != nil {
		if override := r.aspectRatio(view); override != "" {
			ratio = override
		}
	}

	return &Payload{
		Videos:        videos,
		SelfControls:  selfControls,
		EmbedControls: embedControls,
		AspectRatio:   ratio,
		Layout:        layout,
	}, nil
}

// resolveVideo turns a record into a payload entry. Entries whose URL
// cannot be resolved are dropped rather than shipped unplayable.
func (r *Resolver) resolveVideo(ctx context.Context, rec Record) (PayloadVideo, bool, error) {
	video := PayloadVideo{VideoSource: rec.VideoSource, Title: rec.Title}
	switch rec.VideoSource {
	case SourceSelf:
		if rec.VideoID == 0 {
			return PayloadVideo{}, false, nil
		}
		url, err := r.media.URL(ctx, rec.VideoID)
		if err != nil {
			return PayloadVideo{}, false, fmt.Errorf("resolve video %d: %w", rec.ID, err)
		}
		if url == "" {
			return PayloadVideo{}, false, nil
		}
		video.VideoURL = url
	case SourceEmbed:
		if rec.EmbedURL == "" {
			return PayloadVideo{}, false, nil
		}
		video.EmbedURL = rec.EmbedURL
	default:
		return PayloadVideo{}, false, nil
	}
	return video, true, nil
}
