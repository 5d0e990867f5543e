package thumbs

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/renameio"
	"golang.org/x/sync/singleflight"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/metrics"
)

// ErrSourceUnavailable is returned when a medium cannot be read or decoded.
var ErrSourceUnavailable = errors.New("source medium unavailable")

// jpegQuality is the encode quality for cached renditions.
const jpegQuality = 85

// Cache maps a source medium to a resized, correctly oriented .jpg under
// cacheDir/height/, generating lazily. Two instances exist per library,
// one per rendition height.
type Cache struct {
	mediaDir string
	cacheDir string
	height   int
	label    string // height as a metrics label
	group    singleflight.Group
}

// NewCache creates a cache for one target height. mediaDir is the absolute
// media root; cacheDir is the rendition root shared by all heights.
func NewCache(mediaDir, cacheDir string, height int) *Cache {
	return &Cache{
		mediaDir: mediaDir,
		cacheDir: cacheDir,
		height:   height,
		label:    strconv.Itoa(height),
	}
}

// Height returns the target height in pixels.
func (c *Cache) Height() int { return c.height }

// CachePath returns where the rendition for a medium lives, whether or not
// it has been generated yet: cacheDir/height/relpath with the extension
// replaced by .jpg.
func (c *Cache) CachePath(rel string) string {
	p := filepath.FromSlash(rel)
	ext := filepath.Ext(p)
	return filepath.Join(c.cacheDir, c.label, strings.TrimSuffix(p, ext)+".jpg")
}

// sourcePath returns the absolute path of the original medium.
func (c *Cache) sourcePath(rel string) string {
	return filepath.Join(c.mediaDir, filepath.FromSlash(rel))
}

// Get returns the path of a fresh rendition for the medium, generating it
// when missing or stale. Freshness is mtime based: the cached file must be
// strictly newer than the source. Failures to read or decode the source
// are reported as ErrSourceUnavailable.
func (c *Cache) Get(rel string) (string, error) {
	src := c.sourcePath(rel)
	srcInfo, err := filesystem.Stat(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, rel, err)
	}

	dst := c.CachePath(rel)
	if fresh(dst, srcInfo.ModTime()) {
		metrics.ThumbnailCacheHits.WithLabelValues(c.label).Inc()
		return dst, nil
	}
	metrics.ThumbnailCacheMisses.WithLabelValues(c.label).Inc()

	// Collapse concurrent generations of the same rendition.
	_, err, _ = c.group.Do(rel, func() (interface{}, error) {
		if fresh(dst, srcInfo.ModTime()) {
			return nil, nil
		}
		return nil, c.generate(rel, src, dst)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// fresh reports whether the cached file exists and is strictly newer than
// the source modification time.
func fresh(dst string, srcMod time.Time) bool {
	info, err := os.Stat(dst)
	return err == nil && info.ModTime().After(srcMod)
}

func (c *Cache) generate(rel, src, dst string) error {
	start := time.Now()

	kind := "image"
	var img image.Image
	var err error

	switch mediatypes.Classify(rel) {
	case mediatypes.MediumImage:
		img, err = c.renderImage(src)
	case mediatypes.MediumVideo:
		kind = "video"
		img, err = c.renderVideoPoster(src)
	default:
		err = fmt.Errorf("%w: %s: not a supported medium", ErrSourceUnavailable, rel)
	}

	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(c.label, kind, "error").Inc()
		return err
	}

	if err := writeJPEG(dst, img); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(c.label, kind, "error").Inc()
		return fmt.Errorf("thumbs: caching %s: %w", rel, err)
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(c.label, kind, "success").Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(c.label, kind).Observe(time.Since(start).Seconds())
	logging.Debug("thumbs: generated %s at height %d in %v", rel, c.height, time.Since(start))
	return nil
}

// renderImage decodes a photo and produces the resized, rotated rendition.
//
// The orientation tag decides both the rotation angle and which axis of the
// original the target height anchors: landscape orientations scale the
// pre-rotation height to the target, portrait orientations scale the
// pre-rotation width (which becomes the height once rotated). The resize
// happens before the rotation because both were derived from pre-rotation
// dimensions.
func (c *Cache) renderImage(src string) (image.Image, error) {
	img, err := imaging.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, src, err)
	}

	orientation := readOrientation(src)
	angle := rotationAngle(orientation)

	var resized image.Image
	if isLandscape(orientation) {
		resized = imaging.Resize(img, 0, c.height, imaging.Lanczos)
	} else {
		resized = imaging.Resize(img, c.height, 0, imaging.Lanczos)
	}

	switch angle {
	case 90:
		return imaging.Rotate90(resized), nil
	case 180:
		return imaging.Rotate180(resized), nil
	case 270:
		return imaging.Rotate270(resized), nil
	default:
		return resized, nil
	}
}

// writeJPEG encodes img and writes it to dst atomically, creating parent
// directories as needed. The write-then-rename keeps a half-written file
// from ever being visible at the final path.
func writeJPEG(dst string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return err
	}

	return renameio.WriteFile(dst, buf.Bytes(), 0o644)
}
