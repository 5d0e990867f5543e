package library

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/thumbs"
	"photo-gallery/internal/workers"
)

// WarmThumbnails generates the small and large renditions for every medium
// in the current tree so first page loads never wait on a resize. Media
// whose renditions are already fresh cost one stat each. Failures are
// logged and skipped; a single broken file must not stop the sweep.
func (l *Library) WarmThumbnails(ctx context.Context) {
	tree := l.Tree()
	if tree == nil {
		return
	}

	start := time.Now()
	n := workers.ForMixed(16)
	logging.Info("Warming renditions with %d workers", n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

	var total int
	for _, album := range tree.Albums() {
		for _, m := range album.Media {
			if !renderable(m) {
				continue
			}
			total++
			m := m
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				l.warmOne(l.thumbs, m.Path)
				l.warmOne(l.display, m.Path)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logging.Warn("Rendition warming interrupted: %v", err)
		return
	}
	logging.Info("Warmed renditions for %d media in %v", total, time.Since(start))
}

func (l *Library) warmOne(cache *thumbs.Cache, mediumPath string) {
	if _, err := cache.Get(mediumPath); err != nil {
		logging.Warn("Warming %s at height %d: %v", mediumPath, cache.Height(), err)
	}
}
