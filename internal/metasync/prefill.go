package metasync

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/featvid/featvid/internal/database"
)

// MediaResolver resolves a media library id to a URL for widget previews.
type MediaResolver interface {
	URL(ctx context.Context, id int64) (string, error)
}

// Controller runs both synchronization directions: meta into fresh widgets
// at read time, widget edits back into meta at save time.
type Controller struct {
	db    database.DBTX
	media MediaResolver
}

func NewController(db database.DBTX, media MediaResolver) *Controller {
	return &Controller{db: db, media: media}
}

// PrefillBuilderData returns the builder document with canonical meta
// injected into fresh featured-video widgets. The original bytes come back
// untouched when the post has no featured video, when no widget needed
// filling, or when the document fails to decode.
func (c *Controller) PrefillBuilderData(ctx context.Context, postID int64, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	meta, err := ReadMeta(ctx, c.db, postID)
	if err != nil {
		return nil, err
	}
	if meta.Empty() {
		return raw, nil
	}

	var elements []any
	if err := json.Unmarshal(raw, &elements); err != nil {
		slog.Warn("builder data is not a valid element list, skipping prefill", "post", postID, "error", err)
		return raw, nil
	}

	if !prefillTree(elements, c.resolveValues(ctx, meta)) {
		return raw, nil
	}
	out, err := json.Marshal(elements)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveValues attaches media URLs to the meta for immediate preview.
// Resolution failures degrade to id-only injection.
func (c *Controller) resolveValues(ctx context.Context, m Meta) widgetValues {
	vals := widgetValues{
		Source:   m.normalized().Source,
		VideoID:  m.VideoID,
		PosterID: m.PosterID,
		EmbedURL: m.EmbedURL,
	}
	vals.VideoURL = c.lookupURL(ctx, m.VideoID)
	vals.PosterURL = c.lookupURL(ctx, m.PosterID)
	return vals
}

func (c *Controller) lookupURL(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	mediaID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ""
	}
	url, err := c.media.URL(ctx, mediaID)
	if err != nil {
		slog.Warn("failed to resolve media url for widget prefill", "media", id, "error", err)
		return ""
	}
	return url
}
