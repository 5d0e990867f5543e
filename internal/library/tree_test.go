package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// buildFixture writes a media tree to disk. Keys are slash-relative paths;
// a nil value creates an empty directory, a non-nil value a file.
func buildFixture(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for rel, data := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if data == nil {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

var (
	alice = Principal{Email: "alice@example.com"}
	bob   = Principal{Email: "bob@example.com"}
	admin = Principal{Email: "root@example.com", Admin: true}
	anon  = Principal{}
)

func TestBuildAccessDenialExample(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"landscape.jpg":          {1},
		"private/album.yml":      []byte("name: Private\nusers:\n  - alice@example.com\n"),
		"private/secret.jpg":     {1},
		"private/deep/inner.png": {1},
	})

	tree, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	private, err := tree.Album("private")
	if err != nil {
		t.Fatalf("Album(private): %v", err)
	}

	if !tree.CanBrowse(private, alice) {
		t.Error("alice must be able to browse private")
	}
	if tree.CanBrowse(private, bob) {
		t.Error("bob must not browse private")
	}
	if tree.CanTraverse(private, bob) {
		t.Error("bob must not traverse into private")
	}
	if !tree.CanBrowse(private, admin) {
		t.Error("admin override must grant browse everywhere")
	}

	subs, err := tree.SubAlbums("", bob)
	if err != nil {
		t.Fatalf("SubAlbums for bob: %v", err)
	}
	for _, s := range subs {
		if s.Path == "private" {
			t.Error("private must be filtered from bob's sub-album listing")
		}
	}

	subs, err = tree.SubAlbums("", alice)
	if err != nil {
		t.Fatalf("SubAlbums for alice: %v", err)
	}
	if len(subs) != 1 || subs[0].Path != "private" {
		t.Errorf("alice's sub-albums = %v, want [private]", albumPaths(subs))
	}
}

func albumPaths(albums []*Album) []string {
	var out []string
	for _, a := range albums {
		out = append(out, a.Path)
	}
	return out
}

func TestMonotonicInheritance(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"album.yml":             []byte("users:\n  - carol@example.com\ngroups:\n  - family\n"),
		"trips/album.yml":       []byte("users:\n  - alice@example.com\n"),
		"trips/rome/album.yml":  []byte("groups:\n  - friends\n"),
		"trips/rome/pic.jpg":    {1},
		"trips/oslo/.gitignore": {1},
	})

	tree, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, a := range tree.Albums() {
		p := a.Parent()
		if p == nil {
			continue
		}
		for u := range p.Perm.Users {
			if !a.Perm.Users.Has(u) {
				t.Errorf("%q lost inherited user %q", a.Path, u)
			}
		}
		for g := range p.Perm.Groups {
			if !a.Perm.Groups.Has(g) {
				t.Errorf("%q lost inherited group %q", a.Path, g)
			}
		}
	}

	rome, err := tree.Album("trips/rome")
	if err != nil {
		t.Fatal(err)
	}
	wantUsers := []string{"alice@example.com", "carol@example.com"}
	if got := rome.Perm.Users.Names(); !reflect.DeepEqual(got, wantUsers) {
		t.Errorf("rome users = %v, want %v", got, wantUsers)
	}
	wantGroups := []string{"family", "friends"}
	if got := rome.Perm.Groups.Names(); !reflect.DeepEqual(got, wantGroups) {
		t.Errorf("rome groups = %v, want %v", got, wantGroups)
	}
}

func TestBackPropagationWidensAncestorEdges(t *testing.T) {
	// dave is granted only at the deepest album. The edges above it must
	// widen so dave can traverse down, while browse permissions above
	// stay closed to him.
	root := buildFixture(t, map[string][]byte{
		"a/album.yml":     []byte("users:\n  - alice@example.com\n"),
		"a/b/album.yml":   []byte("users: []\n"),
		"a/b/c/album.yml": []byte("users:\n  - dave@example.com\n"),
		"a/b/c/pic.jpg":   {1},
	})

	tree, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dave := Principal{Email: "dave@example.com"}

	for _, p := range []string{"a", "a/b", "a/b/c"} {
		a, err := tree.Album(p)
		if err != nil {
			t.Fatal(err)
		}
		if !tree.CanTraverse(a, dave) {
			t.Errorf("dave must traverse %q", p)
		}
	}

	for _, p := range []string{"a", "a/b"} {
		a, err := tree.Album(p)
		if err != nil {
			t.Fatal(err)
		}
		if tree.CanBrowse(a, dave) {
			t.Errorf("dave must not browse %q", p)
		}
	}

	c, _ := tree.Album("a/b/c")
	if !tree.CanBrowse(c, dave) {
		t.Error("dave must browse a/b/c")
	}
}

func TestTraversalCompleteness(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"x/album.yml":     []byte("groups:\n  - staff\n"),
		"x/y/album.yml":   []byte("users:\n  - eve@example.com\n"),
		"x/y/z/album.yml": []byte("groups:\n  - band\n"),
	})

	tree, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	principals := []Principal{
		{Email: "eve@example.com"},
		{Email: "someone@example.com", Groups: []string{"staff"}},
		{Email: "other@example.com", Groups: []string{"band"}},
		{Email: "stranger@example.com"},
	}

	for _, p := range principals {
		for _, a := range tree.Albums() {
			if !tree.CanBrowse(a, p) {
				continue
			}
			for cur := a.Parent(); cur != nil; cur = cur.Parent() {
				if !tree.CanTraverse(cur, p) {
					t.Errorf("%s browses %q but cannot traverse ancestor %q", p.Email, a.Path, cur.Path)
				}
			}
		}
	}
}

func TestIdempotentRebuild(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"album.yml":       []byte("groups:\n  - family\n"),
		"one/album.yml":   []byte("users:\n  - alice@example.com\n"),
		"one/a.jpg":       {1},
		"two/b.png":       {1},
		"one/sub/c.webm":  {1},
		"one/sub/d.txt":   {1},
		"two/album.yml":   []byte("users:\n  - bob@example.com\n"),
		"two/inner/e.mp4": {1},
	})

	first, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	if first.Len() != second.Len() {
		t.Fatalf("album counts differ: %d vs %d", first.Len(), second.Len())
	}
	for _, a := range first.Albums() {
		b, err := second.Album(a.Path)
		if err != nil {
			t.Fatalf("album %q missing from rebuild", a.Path)
		}
		if !a.Perm.Users.Equal(b.Perm.Users) || !a.Perm.Groups.Equal(b.Perm.Groups) {
			t.Errorf("%q: resolved sets differ across rebuilds", a.Path)
		}
		if !a.Edge.Users.Equal(b.Edge.Users) || !a.Edge.Groups.Equal(b.Edge.Groups) {
			t.Errorf("%q: edge sets differ across rebuilds", a.Path)
		}
		if !reflect.DeepEqual(a.Media, b.Media) {
			t.Errorf("%q: media listings differ across rebuilds", a.Path)
		}
	}
}

func TestScanMediaClassification(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"a.JPG":      {1},
		"b.jpeg":     {1},
		"c.png":      {1},
		"d.mp4":      {1},
		"e.webm":     {1},
		"f.ogv":      {1},
		"notes.txt":  {1},
		"g.gif":      {1},
		"album.yml":  []byte("name: Root\n"),
		".hidden.db": {1},
	})

	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	media, err := tree.ListMedia("", anon)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.JPG", "b.jpeg", "c.png", "d.mp4", "e.webm", "f.ogv"}
	var got []string
	for _, m := range media {
		got = append(got, m.Path)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("media = %v, want %v", got, want)
	}
}

func TestListMediaDenied(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"private/album.yml": []byte("users:\n  - alice@example.com\n"),
		"private/pic.jpg":   {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tree.ListMedia("private", bob); !errors.Is(err, ErrNotBrowsable) {
		t.Errorf("ListMedia for bob = %v, want ErrNotBrowsable", err)
	}
	if _, err := tree.ListMedia("missing", alice); !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("ListMedia for missing album = %v, want ErrAlbumNotFound", err)
	}
}

func TestSubAlbumsDeniedWhenNotTraversable(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"private/album.yml":    []byte("users:\n  - alice@example.com\n"),
		"private/inner/pic.png": {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.SubAlbums("private", bob); !errors.Is(err, ErrNotTraversable) {
		t.Errorf("SubAlbums for bob = %v, want ErrNotTraversable", err)
	}
}

func TestPathToRoot(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"trips/album.yml":      []byte("name: Trips\n"),
		"trips/rome/album.yml": []byte("name: Rome 2024\nusers:\n  - alice@example.com\n"),
		"trips/rome/pic.jpg":   {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	parts, err := tree.PathToRoot("trips/rome", alice)
	if err != nil {
		t.Fatalf("PathToRoot: %v", err)
	}
	want := []PathPart{
		{Path: "trips", Name: "Trips"},
		{Path: "trips/rome", Name: "Rome 2024"},
	}
	if !reflect.DeepEqual(parts, want) {
		t.Errorf("breadcrumb = %v, want %v", parts, want)
	}

	if _, err := tree.PathToRoot("trips/rome", bob); !errors.Is(err, ErrNotTraversable) {
		t.Errorf("PathToRoot for bob = %v, want ErrNotTraversable", err)
	}

	parts, err = tree.PathToRoot("", alice)
	if err != nil {
		t.Fatalf("PathToRoot(root): %v", err)
	}
	if len(parts) != 0 {
		t.Errorf("root breadcrumb = %v, want empty", parts)
	}
}

func TestSiblingsUnfiltered(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"open/pic.jpg":      {1},
		"private/album.yml": []byte("users:\n  - alice@example.com\n"),
		"private/pic.jpg":   {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	sibs, err := tree.Siblings("open")
	if err != nil {
		t.Fatal(err)
	}
	if got := albumPaths(sibs); !reflect.DeepEqual(got, []string{"open", "private"}) {
		t.Errorf("siblings = %v, want [open private]", got)
	}

	sibs, err = tree.Siblings("")
	if err != nil {
		t.Fatal(err)
	}
	if sibs != nil {
		t.Errorf("root siblings = %v, want nil", albumPaths(sibs))
	}
}

func TestMediumOwner(t *testing.T) {
	tests := []struct {
		medium string
		want   string
	}{
		{"trips/rome/pic.jpg", "trips/rome"},
		{"pic.jpg", ""},
		{"/trips/pic.jpg", "trips"},
		{"../escape.jpg", ""},
	}
	for _, tc := range tests {
		if got := MediumOwner(tc.medium); got != tc.want {
			t.Errorf("MediumOwner(%q) = %q, want %q", tc.medium, got, tc.want)
		}
	}
}

func TestCanGetMedium(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"private/album.yml": []byte("users:\n  - alice@example.com\n"),
		"private/pic.jpg":   {1},
		"open/pic.jpg":      {1},
		"cover.jpg":         {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	if !tree.CanGetMedium("private/pic.jpg", alice) {
		t.Error("alice must get private/pic.jpg")
	}
	if tree.CanGetMedium("private/pic.jpg", bob) {
		t.Error("bob must not get private/pic.jpg")
	}
	if tree.CanGetMedium("open/pic.jpg", anon) {
		t.Error("an album without grants admits only administrators")
	}
	if !tree.CanGetMedium("open/pic.jpg", admin) {
		t.Error("admin must get open/pic.jpg")
	}
	if !tree.CanGetMedium("cover.jpg", anon) {
		t.Error("root media must be visible to any signed-in principal")
	}
	if tree.CanGetMedium("missing/pic.jpg", admin) {
		t.Error("media in unknown albums must be denied")
	}
}

func TestAlbumRejectsEscapes(t *testing.T) {
	root := buildFixture(t, map[string][]byte{"pic.jpg": {1}})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"..", "../etc", "a/../../etc"} {
		if _, err := tree.Album(p); !errors.Is(err, ErrAlbumNotFound) {
			t.Errorf("Album(%q) = %v, want ErrAlbumNotFound", p, err)
		}
	}
	if _, err := tree.Album("/"); err != nil {
		t.Errorf("Album(%q) = %v, want root", "/", err)
	}
}

func TestManifestFallback(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"holidays/album.yml": []byte(":\nnot yaml at all ["),
		"holidays/pic.jpg":   {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}

	a, err := tree.Album("holidays")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "holidays" {
		t.Errorf("malformed manifest name = %q, want directory basename", a.Name)
	}
	if len(a.Perm.Users) != 0 || len(a.Perm.Groups) != 0 {
		t.Error("malformed manifest must fall back to empty permission sets")
	}
	if tree.CanBrowse(a, anon) {
		t.Error("fallback grants nothing, so only administrators may browse")
	}
	if !tree.CanBrowse(a, admin) {
		t.Error("admin must still browse after manifest fallback")
	}
}

func TestEmptyEmailNeverMatchesGrants(t *testing.T) {
	root := buildFixture(t, map[string][]byte{
		"odd/album.yml": []byte("users:\n  - \"\"\n"),
		"odd/pic.jpg":   {1},
	})
	tree, err := Build(root)
	if err != nil {
		t.Fatal(err)
	}
	a, err := tree.Album("odd")
	if err != nil {
		t.Fatal(err)
	}
	if tree.CanBrowse(a, anon) {
		t.Error("empty email must never match a user grant")
	}
}
