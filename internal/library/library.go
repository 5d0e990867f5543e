package library

import (
	"fmt"
	"sync/atomic"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/thumbs"
)

// Library is the long-lived handle the HTTP layer talks to. It owns the
// current album tree and the two rendition caches, and swaps in a freshly
// built tree on reload without blocking readers.
type Library struct {
	mediaDir string
	tree     atomic.Pointer[Tree]
	thumbs   *thumbs.Cache
	display  *thumbs.Cache
}

// New creates a library over mediaDir with renditions cached under
// cacheDir. The tree is empty until the first Reload.
func New(mediaDir, cacheDir string, thumbHeight, displayHeight int) *Library {
	return &Library{
		mediaDir: mediaDir,
		thumbs:   thumbs.NewCache(mediaDir, cacheDir, thumbHeight),
		display:  thumbs.NewCache(mediaDir, cacheDir, displayHeight),
	}
}

// Reload builds a new tree from the media directory and publishes it in a
// single swap. In-flight requests keep the tree they started with; the
// previous tree is dropped once they finish. On failure the current tree
// stays in place.
func (l *Library) Reload() error {
	start := time.Now()
	tree, err := Build(l.mediaDir)
	if err != nil {
		metrics.LibraryBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("rebuilding library: %w", err)
	}

	l.tree.Store(tree)

	elapsed := time.Since(start)
	metrics.LibraryBuildsTotal.WithLabelValues("success").Inc()
	metrics.LibraryBuildDuration.Observe(elapsed.Seconds())
	metrics.LibraryAlbums.Set(float64(tree.Len()))
	metrics.LibraryMedia.Set(float64(tree.MediaCount()))
	logging.Info("Library loaded: %d albums, %d media in %v", tree.Len(), tree.MediaCount(), elapsed)
	return nil
}

// Tree returns the currently published album tree. Callers should grab it
// once per request so a concurrent reload cannot change answers midway.
func (l *Library) Tree() *Tree {
	return l.tree.Load()
}

// ThumbnailHeight returns the height of the small rendition.
func (l *Library) ThumbnailHeight() int { return l.thumbs.Height() }

// DisplayHeight returns the height of the large rendition.
func (l *Library) DisplayHeight() int { return l.display.Height() }

// Thumbnail returns the path of the small rendition for a medium the
// principal may see, generating it if needed.
func (l *Library) Thumbnail(mediumPath string, p Principal) (string, error) {
	return l.rendition(l.thumbs, mediumPath, p)
}

// Display returns the path of the large rendition for a medium the
// principal may see, generating it if needed.
func (l *Library) Display(mediumPath string, p Principal) (string, error) {
	return l.rendition(l.display, mediumPath, p)
}

func (l *Library) rendition(cache *thumbs.Cache, mediumPath string, p Principal) (string, error) {
	if _, err := l.authorizeMedium(mediumPath, p); err != nil {
		return "", err
	}
	return cache.Get(mediumPath)
}

// Original returns the absolute path and MIME type of the unmodified
// medium, for download and for formats the renderer passes through.
func (l *Library) Original(mediumPath string, p Principal) (string, string, error) {
	m, err := l.authorizeMedium(mediumPath, p)
	if err != nil {
		return "", "", err
	}
	return l.Tree().absMediumPath(mediumPath), m.MimeType, nil
}

// authorizeMedium resolves the medium's owning album and checks that the
// principal may browse it, returning the medium entry from the tree so the
// caller gets the same classification the listing showed.
func (l *Library) authorizeMedium(mediumPath string, p Principal) (Medium, error) {
	tree := l.Tree()
	album, err := tree.Album(MediumOwner(mediumPath))
	if err != nil {
		return Medium{}, err
	}
	if !tree.CanBrowse(album, p) {
		return Medium{}, ErrNotBrowsable
	}
	norm, ok := normalizePath(mediumPath)
	if !ok {
		return Medium{}, ErrAlbumNotFound
	}
	for _, m := range album.Media {
		if m.Path == norm {
			return m, nil
		}
	}
	return Medium{}, fmt.Errorf("%w: no medium %q", ErrAlbumNotFound, mediumPath)
}

// renderable reports whether the caches can produce a rendition for the
// medium; pre-warming skips anything else.
func renderable(m Medium) bool {
	switch mediatypes.Classify(m.Path) {
	case mediatypes.MediumImage, mediatypes.MediumVideo:
		return true
	}
	return false
}
