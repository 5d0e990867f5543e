package library

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writePhoto(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := imaging.New(80, 60, color.NRGBA{G: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func newTestLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	mediaDir := t.TempDir()
	writePhoto(t, filepath.Join(mediaDir, "cover.jpg"))
	writePhoto(t, filepath.Join(mediaDir, "private", "secret.jpg"))
	if err := os.WriteFile(
		filepath.Join(mediaDir, "private", "album.yml"),
		[]byte("users:\n  - alice@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := New(mediaDir, t.TempDir(), 20, 40)
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return lib, mediaDir
}

func TestReloadSwapsTree(t *testing.T) {
	lib, mediaDir := newTestLibrary(t)

	before := lib.Tree()
	if before.Len() != 2 {
		t.Fatalf("albums = %d, want 2", before.Len())
	}

	writePhoto(t, filepath.Join(mediaDir, "new", "extra.jpg"))
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	after := lib.Tree()
	if after == before {
		t.Error("Reload must publish a new tree")
	}
	if after.Len() != 3 {
		t.Errorf("albums after reload = %d, want 3", after.Len())
	}
	// The old snapshot is still a coherent tree for requests holding it.
	if before.Len() != 2 {
		t.Error("previous tree changed after reload")
	}
}

func TestReloadFailureKeepsCurrentTree(t *testing.T) {
	mediaDir := t.TempDir()
	writePhoto(t, filepath.Join(mediaDir, "pic.jpg"))

	lib := New(mediaDir, t.TempDir(), 20, 40)
	if err := lib.Reload(); err != nil {
		t.Fatal(err)
	}
	before := lib.Tree()

	if err := os.RemoveAll(mediaDir); err != nil {
		t.Fatal(err)
	}
	if err := lib.Reload(); err == nil {
		t.Fatal("Reload over a missing media root must fail")
	}
	if lib.Tree() != before {
		t.Error("failed reload must leave the current tree in place")
	}
}

func TestThumbnailAuthorization(t *testing.T) {
	lib, _ := newTestLibrary(t)

	if _, err := lib.Thumbnail("private/secret.jpg", alice); err != nil {
		t.Errorf("alice denied her own medium: %v", err)
	}
	if _, err := lib.Thumbnail("private/secret.jpg", bob); !errors.Is(err, ErrNotBrowsable) {
		t.Errorf("bob got %v, want ErrNotBrowsable", err)
	}
	if _, err := lib.Thumbnail("private/missing.jpg", alice); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("missing medium got %v, want ErrAlbumNotFound", err)
	}
	if _, err := lib.Thumbnail("nosuch/pic.jpg", alice); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("missing album got %v, want ErrAlbumNotFound", err)
	}
}

func TestRenditionHeights(t *testing.T) {
	lib, _ := newTestLibrary(t)

	thumb, err := lib.Thumbnail("cover.jpg", anon)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	display, err := lib.Display("cover.jpg", anon)
	if err != nil {
		t.Fatalf("Display: %v", err)
	}

	for path, want := range map[string]int{thumb: 20, display: 40} {
		img, err := imaging.Open(path)
		if err != nil {
			t.Fatalf("opening %s: %v", path, err)
		}
		if got := img.Bounds().Dy(); got != want {
			t.Errorf("%s height = %d, want %d", path, got, want)
		}
	}
}

func TestOriginal(t *testing.T) {
	lib, mediaDir := newTestLibrary(t)

	path, mime, err := lib.Original("cover.jpg", anon)
	if err != nil {
		t.Fatalf("Original: %v", err)
	}
	if want := filepath.Join(mediaDir, "cover.jpg"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}

	if _, _, err := lib.Original("private/secret.jpg", bob); !errors.Is(err, ErrNotBrowsable) {
		t.Errorf("bob got %v, want ErrNotBrowsable", err)
	}
}

func TestWarmThumbnails(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.WarmThumbnails(context.Background())

	for _, rel := range []string{"cover.jpg", "private/secret.jpg"} {
		path, err := lib.Thumbnail(rel, admin)
		if err != nil {
			t.Fatalf("Thumbnail(%s): %v", rel, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("rendition for %s missing after warm: %v", rel, err)
		}
	}
}
