package metasync

import (
	"context"
)

// SyncWidget writes one widget's video settings back to the canonical
// meta. Only widgets sourcing the current post sync; widgets pointing at
// another post by id are ignored. A widget whose values already match the
// stored meta writes nothing, so repeated saves stay idempotent.
func (c *Controller) SyncWidget(ctx context.Context, postID int64, settings map[string]any) error {
	m, ok := widgetMeta(settings)
	if !ok {
		return nil
	}
	current, err := ReadMeta(ctx, c.db, postID)
	if err != nil {
		return err
	}
	if m.normalized() == current.normalized() {
		return nil
	}
	return WriteMeta(ctx, c.db, postID, m)
}

// WriteBack syncs every featured-video widget in a saved builder document,
// in document order. Later widgets win when several carry explicit values.
func (c *Controller) WriteBack(ctx context.Context, postID int64, elements []any) error {
	for _, settings := range findWidgets(elements) {
		if err := c.SyncWidget(ctx, postID, settings); err != nil {
			return err
		}
	}
	return nil
}
