// Package settings stores the global plugin-style options: per-source player
// controls, the floating popup layout, and the aspect ratio override.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/featvid/featvid/internal/database"
)

const (
	SelfControlsKey  = "video_controls_self"
	EmbedControlsKey = "video_controls_embed"
	LayoutKey        = "floating_video_layout"
	AspectRatioKey   = "floating_video_aspect_ratio"

	DefaultLayout      = "standard"
	DefaultAspectRatio = "16/9"
)

// Controls toggles individual player/embed behaviors. Each flag maps to one
// attribute on the media element or one embed URL parameter.
type Controls struct {
	Controls bool `json:"controls"`
	Autoplay bool `json:"autoplay"`
	Loop     bool `json:"loop"`
	Mute     bool `json:"mute"`
	PIP      bool `json:"pip"`
	Download bool `json:"download"`
}

// DefaultControls matches the behavior for a fresh install: visible controls,
// everything else off.
func DefaultControls() Controls {
	return Controls{Controls: true}
}

type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Get unmarshals the stored option into dest. Returns false when the option
// has never been set; dest is left untouched in that case.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, "SELECT value FROM options WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read option %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode option %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", key, err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO options (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("write option %s: %w", key, err)
	}
	return nil
}

// VideoControls returns the control settings for a source kind ("self" or
// "embed"), falling back to defaults when unset.
func (s *Store) VideoControls(ctx context.Context, kind string) (Controls, error) {
	key := SelfControlsKey
	if kind == "embed" {
		key = EmbedControlsKey
	}
	controls := DefaultControls()
	if _, err := s.Get(ctx, key, &controls); err != nil {
		return DefaultControls(), err
	}
	return controls, nil
}

func (s *Store) Layout(ctx context.Context) (string, error) {
	layout := DefaultLayout
	if _, err := s.Get(ctx, LayoutKey, &layout); err != nil {
		return DefaultLayout, err
	}
	if layout == "" {
		layout = DefaultLayout
	}
	return layout, nil
}

func (s *Store) AspectRatio(ctx context.Context) (string, error) {
	ratio := DefaultAspectRatio
	if _, err := s.Get(ctx, AspectRatioKey, &ratio); err != nil {
		return DefaultAspectRatio, err
	}
	if ratio == "" {
		ratio = DefaultAspectRatio
	}
	return ratio, nil
}
