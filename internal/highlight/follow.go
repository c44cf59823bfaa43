package highlight

import (
	"context"

	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/session"
)

// Follow renders every snapshot from snaps and refreshes the overlays on
// every document change, until ctx is done or snaps is closed.
func (r *Renderer) Follow(ctx context.Context, snaps <-chan session.Snapshot, changes <-chan document.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			r.Render(snap.Matches, snap.Current)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			r.Refresh()
		}
	}
}
