package metasync

import (
	"strconv"
)

// WidgetType identifies the featured-video widget inside a builder
// document.
const WidgetType = "featured_video"

// widget video_source values. A widget either inherits the featured video
// of the post it sits on or points at another post by id. The widget's
// video_type field (self or embed) picks which kind of video it holds.
const (
	sourceCurrentPost = "current_post"
	sourceByPostID    = "by_post_id"
)

// widgetValues is what gets injected into a fresh widget: the canonical
// meta plus resolved media URLs for immediate preview.
type widgetValues struct {
	Source    string
	VideoID   string
	VideoURL  string
	PosterID  string
	PosterURL string
	EmbedURL  string
}

// Elements are kept as raw maps so fields this package does not know about
// survive the round trip unchanged.

// prefillTree walks a builder document and injects values into every
// featured-video widget still at its defaults. Returns whether anything
// changed; the caller skips re-serialization when nothing did.
func prefillTree(elements []any, vals widgetValues) bool {
	changed := false
	for _, raw := range elements {
		el, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if widgetType, _ := el["widgetType"].(string); widgetType == WidgetType {
			if injectWidget(el, vals) {
				changed = true
			}
		}
		if children, ok := el["elements"].([]any); ok {
			if prefillTree(children, vals) {
				changed = true
			}
		}
	}
	return changed
}

// injectWidget fills one widget's settings. Widgets pointing at another
// post and widgets that already carry video values are left alone. The
// widget keeps sourcing the current post; only its video_type and value
// controls are filled.
func injectWidget(el map[string]any, vals widgetValues) bool {
	settings, ok := el["settings"].(map[string]any)
	if !ok {
		settings = map[string]any{}
	}

	if source, _ := settings["video_source"].(string); source != "" && source != sourceCurrentPost {
		return false
	}
	if widgetHasValues(settings) {
		return false
	}

	settings["video_source"] = sourceCurrentPost
	settings["video_type"] = vals.Source
	switch vals.Source {
	case SourceEmbed:
		settings["embed_url"] = vals.EmbedURL
	default:
		settings["self_video"] = map[string]any{"id": vals.VideoID, "url": vals.VideoURL}
		if vals.PosterID != "" {
			settings["poster"] = map[string]any{"id": vals.PosterID, "url": vals.PosterURL}
		}
	}
	el["settings"] = settings
	return true
}

func widgetHasValues(settings map[string]any) bool {
	if embedURL, _ := settings["embed_url"].(string); embedURL != "" {
		return true
	}
	if selfVideo, ok := settings["self_video"].(map[string]any); ok {
		if numString(selfVideo["id"]) != "" || stringValue(selfVideo["url"]) != "" {
			return true
		}
	}
	return false
}

// widgetMeta extracts the canonical fields from a widget's settings for the
// save-time write-back. Only widgets sourcing the current post sync back;
// a widget pointing at another post by id never touches this post's meta.
// A missing video_source defaults to the current post, matching the
// widget's default control value.
func widgetMeta(settings map[string]any) (Meta, bool) {
	source, _ := settings["video_source"].(string)
	if source != "" && source != sourceCurrentPost {
		return Meta{}, false
	}

	kind, _ := settings["video_type"].(string)
	if kind == "" {
		// Older documents carry values without a type; infer it so they
		// keep syncing. A widget with neither has nothing to sync yet.
		if embedURL, _ := settings["embed_url"].(string); embedURL != "" {
			kind = SourceEmbed
		} else if widgetHasValues(settings) {
			kind = SourceSelf
		} else {
			return Meta{}, false
		}
	}

	m := Meta{Source: kind}
	if kind == SourceEmbed {
		m.EmbedURL, _ = settings["embed_url"].(string)
	} else {
		if selfVideo, ok := settings["self_video"].(map[string]any); ok {
			m.VideoID = numString(selfVideo["id"])
		}
		if poster, ok := settings["poster"].(map[string]any); ok {
			m.PosterID = numString(poster["id"])
		}
	}
	return m, true
}

// findWidgets collects every featured-video widget's settings in document
// order.
func findWidgets(elements []any) []map[string]any {
	var out []map[string]any
	for _, raw := range elements {
		el, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if widgetType, _ := el["widgetType"].(string); widgetType == WidgetType {
			if settings, ok := el["settings"].(map[string]any); ok {
				out = append(out, settings)
			} else {
				out = append(out, map[string]any{})
			}
		}
		if children, ok := el["elements"].([]any); ok {
			out = append(out, findWidgets(children)...)
		}
	}
	return out
}

// numString renders a JSON value that may arrive as a number or a string
// as meta text. Ids stored by the builder come through as float64.
func numString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	default:
		return ""
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
