package metasync

import (
	"log/slog"
	"sync"
	"time"
)

// PanelRebuildDelay gives the editor panel time to finish rendering before
// the rebuilt controls replace it.
const PanelRebuildDelay = 50 * time.Millisecond

// SessionRegistry remembers which widget instances were already prefilled
// during an editing session, so dragging a widget in, clearing it, and
// opening it again does not refill it.
type SessionRegistry struct {
	mu     sync.Mutex
	filled map[string]bool
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{filled: make(map[string]bool)}
}

func (r *SessionRegistry) Filled(widgetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filled[widgetID]
}

func (r *SessionRegistry) MarkFilled(widgetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filled[widgetID] = true
}

// SettingsModel is the editor-side view of a widget's settings.
type SettingsModel interface {
	Get(key string) any
	SetExternal(values map[string]any)
}

// PanelRebuilder re-renders the widget's control panel after an external
// settings change.
type PanelRebuilder interface {
	Rebuild() error
}

// Scheduler defers the panel rebuild.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// FirstAddPrefiller fills a featured-video widget the first time its panel
// opens in a session, using the post's canonical meta.
type FirstAddPrefiller struct {
	registry *SessionRegistry
	meta     Meta
	values   widgetValues
	sched    Scheduler
	panel    PanelRebuilder
}

// NewFirstAddPrefiller captures the canonical meta and resolved URLs for
// the post being edited. panel may be nil when the editor exposes no
// rebuild hook.
func NewFirstAddPrefiller(registry *SessionRegistry, meta Meta, videoURL, posterURL string, sched Scheduler, panel PanelRebuilder) *FirstAddPrefiller {
	return &FirstAddPrefiller{
		registry: registry,
		meta:     meta,
		values: widgetValues{
			Source:    meta.normalized().Source,
			VideoID:   meta.VideoID,
			VideoURL:  videoURL,
			PosterID:  meta.PosterID,
			PosterURL: posterURL,
			EmbedURL:  meta.EmbedURL,
		},
		sched: sched,
		panel: panel,
	}
}

// OnPanelOpen runs when a widget's edit panel opens. Widgets pointing at
// another post, widgets the user already touched, widgets prefilled earlier
// in the session, and posts without a featured video are all left alone. Rebuild failures are
// swallowed; the settings are already in place and the panel catches up on
// its next natural render.
func (f *FirstAddPrefiller) OnPanelOpen(widgetID string, model SettingsModel) {
	if f.meta.Empty() {
		return
	}
	if f.registry.Filled(widgetID) {
		return
	}
	if source, _ := model.Get("video_source").(string); source != "" && source != sourceCurrentPost {
		f.registry.MarkFilled(widgetID)
		return
	}
	if modelHasValues(model) {
		f.registry.MarkFilled(widgetID)
		return
	}

	f.registry.MarkFilled(widgetID)
	model.SetExternal(f.externalValues())

	if f.panel == nil {
		return
	}
	f.sched.AfterFunc(PanelRebuildDelay, func() {
		if err := f.panel.Rebuild(); err != nil {
			slog.Debug("panel rebuild after prefill failed", "widget", widgetID, "error", err)
		}
	})
}

func (f *FirstAddPrefiller) externalValues() map[string]any {
	out := map[string]any{
		"video_source": sourceCurrentPost,
		"video_type":   f.values.Source,
	}
	if f.values.Source == SourceEmbed {
		out["embed_url"] = f.values.EmbedURL
		return out
	}
	out["self_video"] = map[string]any{"id": f.values.VideoID, "url": f.values.VideoURL}
	if f.values.PosterID != "" {
		out["poster"] = map[string]any{"id": f.values.PosterID, "url": f.values.PosterURL}
	}
	return out
}

func modelHasValues(model SettingsModel) bool {
	if embedURL, _ := model.Get("embed_url").(string); embedURL != "" {
		return true
	}
	if selfVideo, ok := model.Get("self_video").(map[string]any); ok {
		if numString(selfVideo["id"]) != "" || stringValue(selfVideo["url"]) != "" {
			return true
		}
	}
	return false
}
