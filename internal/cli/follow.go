package cli

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/dl/vsearch/internal/highlight"
	"github.com/dl/vsearch/internal/input"
	"github.com/dl/vsearch/internal/output"
	"github.com/dl/vsearch/internal/watch"
)

// follow keeps every document in sync with its file until ctx is done.
// File changes are morphed into the live documents; the sessions re-search
// on their own and each settled search is printed again.
func (r *runner) follow(ctx context.Context, views []*view) error {
	watcher, err := watch.New()
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var printMu sync.Mutex
	var renderers []*highlight.Renderer
	byPath := map[string]*view{}

	for _, v := range views {
		if v.sess == nil || v.path == input.StdinPath {
			continue
		}
		abs, err := filepath.Abs(v.path)
		if err != nil {
			continue
		}
		if err := watcher.Add(abs); err != nil {
			r.logger.Warn("failed to watch", "path", v.path, "err", err)
			continue
		}
		byPath[abs] = v
		v.sess.SetVisible(true)

		snaps, _ := v.sess.Subscribe()
		wg.Go(func() {
			for snap := range snaps {
				res := output.Result{FilePath: v.path, Matches: snap.Matches, Current: snap.Current}
				if res.HasMatch() {
					r.matched.Store(true)
				}
				printMu.Lock()
				err := r.ow.WriteResult(res)
				printMu.Unlock()
				if err != nil {
					r.logger.Warn("write failed", "err", err)
				}
			}
		})

		if r.cfg.Overlays {
			rd := r.newRenderer()
			renderers = append(renderers, rd)
			current := v.sess.Snapshot()
			rd.Render(current.Matches, current.Current)

			snaps, _ := v.sess.Subscribe()
			changes, unsubscribe := v.doc.Subscribe()
			wg.Go(func() {
				defer unsubscribe()
				rd.Follow(ctx, snaps, changes)
			})
		}
	}

	settingsPath := ""
	if r.cfg.SettingsPath != "" {
		if abs, err := filepath.Abs(r.cfg.SettingsPath); err == nil {
			if err := watcher.Add(abs); err != nil {
				r.logger.Warn("failed to watch settings", "path", r.cfg.SettingsPath, "err", err)
			} else {
				settingsPath = abs
			}
		}
	}
	updates, unsubscribe := r.store.Subscribe()
	wg.Go(func() {
		for s := range updates {
			for _, rd := range renderers {
				rd.SetStyle(s.Style())
			}
		}
	})

	events := watcher.Events()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case evt, ok := <-events:
			if !ok {
				break loop
			}
			r.handle(evt, byPath, settingsPath)
		}
	}

	cancel()
	unsubscribe()
	for _, v := range byPath {
		v.sess.Close()
	}
	wg.Wait()
	for _, rd := range renderers {
		rd.Close()
	}
	return nil
}

func (r *runner) handle(evt watch.Event, byPath map[string]*view, settingsPath string) {
	if evt.Err != nil {
		r.logger.Warn("watch error", "err", evt.Err)
		return
	}
	if evt.Path == settingsPath {
		if evt.Type == watch.EventDeleted {
			return
		}
		if err := r.store.Reload(settingsPath); err != nil {
			r.logger.Warn("failed to reload settings", "err", err)
			return
		}
		r.logger.Debug("settings reloaded", "path", settingsPath)
		return
	}

	v, ok := byPath[evt.Path]
	if !ok {
		return
	}
	switch evt.Type {
	case watch.EventModified, watch.EventCreated:
		if err := watch.Reload(v.doc, evt.Path, r.cfg.MaxSize); err != nil {
			r.logger.Warn("reload failed", "path", v.path, "err", err)
			return
		}
		r.logger.Debug("document reloaded", "path", v.path)
	case watch.EventDeleted:
		r.logger.Warn("watched file removed", "path", v.path)
	}
}

func (r *runner) newRenderer() *highlight.Renderer {
	s := r.store.Snapshot()
	return highlight.New(highlight.Options{
		Layer:  highlight.NewTextLayer(r.stderr),
		Frame:  s.Frame(),
		Style:  s.Style(),
		Logger: r.logger,
	})
}
