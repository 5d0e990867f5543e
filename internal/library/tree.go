package library

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/mediatypes"
)

// Tree is the album hierarchy built from one scan of the media root. It is
// immutable after Build returns; rebuilding produces a new Tree.
type Tree struct {
	rootDir string
	root    *Album
	albums  map[string]*Album
}

// Build scans rootDir recursively and constructs the album tree with fully
// resolved permission sets. Subdirectories that cannot be read are logged
// and treated as absent; only a failure to read the root itself is an error.
func Build(rootDir string) (*Tree, error) {
	rootDir = filepath.Clean(rootDir)
	if _, err := filesystem.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("library: media root %s: %w", rootDir, err)
	}

	t := &Tree{
		rootDir: rootDir,
		albums:  make(map[string]*Album),
	}

	cfg := loadManifest(rootDir)
	t.root = &Album{
		Path:   "",
		Name:   cfg.Name,
		Media:  t.scanMedia(""),
		Perm:   Permission{Users: cfg.Users.Clone(), Groups: cfg.Groups.Clone()},
	}
	t.albums[""] = t.root

	t.traverse(t.root, cfg)
	return t, nil
}

// traverse descends into the subdirectories of album, resolving each
// child's permissions against the inherited manifest and back-propagating
// newly introduced principals up the edges already built.
func (t *Tree) traverse(album *Album, inherited manifest) {
	dir := t.absDir(album.Path)

	entries, err := filesystem.ReadDir(dir)
	if err != nil {
		logging.Warn("library: skipping unreadable directory %s: %v", dir, err)
		return
	}

	// Deterministic child order regardless of filesystem enumeration.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		childPath := joinAlbumPath(album.Path, entry.Name())
		sub := loadManifest(filepath.Join(dir, entry.Name()))

		// Principals this directory grants that no ancestor already
		// resolved. Their traversal access to everything above must
		// be established before the child exists.
		newUsers := sub.Users.Diff(inherited.Users)
		newGroups := sub.Groups.Diff(inherited.Groups)
		backPropagate(album, newUsers, newGroups)

		// Inheritance is monotonic: a child can add principals but
		// never remove inherited ones.
		merged := manifest{
			Name:   sub.Name,
			Users:  inherited.Users.Union(sub.Users),
			Groups: inherited.Groups.Union(sub.Groups),
		}

		child := &Album{
			Path:  childPath,
			Name:  merged.Name,
			Media: t.scanMedia(childPath),
			Perm: Permission{
				Users:  merged.Users.Clone(),
				Groups: merged.Groups.Clone(),
			},
			// The edge starts as the child's resolved sets;
			// back-propagation from deeper albums may widen it
			// later. Cloned so widening never leaks into Perm.
			Edge: Permission{
				Users:  merged.Users.Clone(),
				Groups: merged.Groups.Clone(),
			},
			parent: album,
		}

		album.children = append(album.children, child)
		t.albums[childPath] = child

		t.traverse(child, merged)
	}
}

// backPropagate widens the edges on the path from album up to the root so
// that the given principals can traverse down to wherever they were just
// granted. The walk stops early at the first edge that already contains
// every one of them.
func backPropagate(album *Album, newUsers, newGroups Set) {
	if len(newUsers) == 0 && len(newGroups) == 0 {
		return
	}
	for cur := album; cur.parent != nil; cur = cur.parent {
		changed := cur.Edge.Users.AddAll(newUsers)
		if cur.Edge.Groups.AddAll(newGroups) {
			changed = true
		}
		if !changed {
			return
		}
	}
}

// scanMedia lists the supported files directly inside an album directory,
// sorted by path. Subdirectories are never media.
func (t *Tree) scanMedia(albumPath string) []Medium {
	dir := t.absDir(albumPath)

	entries, err := filesystem.ReadDir(dir)
	if err != nil {
		logging.Warn("library: cannot list media in %s: %v", dir, err)
		return nil
	}

	var media []Medium
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mime, ok := mediatypes.MimeType(entry.Name())
		if !ok {
			continue
		}
		media = append(media, Medium{
			Path:     joinAlbumPath(albumPath, entry.Name()),
			MimeType: mime,
		})
	}

	sort.Slice(media, func(i, j int) bool { return media[i].Path < media[j].Path })
	return media
}

// RootDir returns the absolute media root this tree was built from.
func (t *Tree) RootDir() string { return t.rootDir }

// Root returns the root album.
func (t *Tree) Root() *Album { return t.root }

// Album resolves a relative path to its album.
func (t *Tree) Album(albumPath string) (*Album, error) {
	p, ok := normalizePath(albumPath)
	if !ok {
		return nil, fmt.Errorf("library: %q: %w", albumPath, ErrAlbumNotFound)
	}
	a, ok := t.albums[p]
	if !ok {
		return nil, fmt.Errorf("library: %q: %w", albumPath, ErrAlbumNotFound)
	}
	return a, nil
}

// Albums returns every album in the tree, sorted by path.
func (t *Tree) Albums() []*Album {
	out := make([]*Album, 0, len(t.albums))
	for _, a := range t.albums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of albums in the tree, root included.
func (t *Tree) Len() int { return len(t.albums) }

// MediaCount returns the total number of media across all albums.
func (t *Tree) MediaCount() int {
	n := 0
	for _, a := range t.albums {
		n += len(a.Media)
	}
	return n
}

// CanTraverse reports whether the principal may pass through the album on
// the way to a descendant. The root is traversable by anyone logged in;
// any other album is gated by the edge from its parent.
func (t *Tree) CanTraverse(a *Album, p Principal) bool {
	if a.IsRoot() {
		return true
	}
	return a.Edge.Allows(p)
}

// CanBrowse reports whether the principal may see the album's own listing.
func (t *Tree) CanBrowse(a *Album, p Principal) bool {
	if a.IsRoot() {
		return true
	}
	return a.Perm.Allows(p)
}

// SubAlbums returns the direct children of an album that the principal may
// traverse into, sorted by path. It fails with ErrNotTraversable when the
// album itself cannot be traversed by the principal.
func (t *Tree) SubAlbums(albumPath string, p Principal) ([]*Album, error) {
	a, err := t.Album(albumPath)
	if err != nil {
		return nil, err
	}
	if !t.CanTraverse(a, p) {
		return nil, fmt.Errorf("library: %q: %w", a.Path, ErrNotTraversable)
	}

	var subs []*Album
	for _, child := range a.children {
		if t.CanTraverse(child, p) {
			subs = append(subs, child)
		}
	}
	return subs, nil
}

// ListMedia returns the album's media listing. It fails with
// ErrNotBrowsable when the principal may not browse the album.
func (t *Tree) ListMedia(albumPath string, p Principal) ([]Medium, error) {
	a, err := t.Album(albumPath)
	if err != nil {
		return nil, err
	}
	if !t.CanBrowse(a, p) {
		return nil, fmt.Errorf("library: %q: %w", a.Path, ErrNotBrowsable)
	}
	out := make([]Medium, len(a.Media))
	copy(out, a.Media)
	return out, nil
}

// MediumOwner returns the path of the album containing a medium. A medium
// is not a permission node itself; its visibility is entirely its owning
// album's browse permission.
func MediumOwner(mediumPath string) string {
	p, ok := normalizePath(mediumPath)
	if !ok {
		return ""
	}
	owner := path.Dir(p)
	if owner == "." {
		return ""
	}
	return owner
}

// CanGetMedium reports whether the principal may fetch a medium, i.e.
// browse the album that contains it.
func (t *Tree) CanGetMedium(mediumPath string, p Principal) bool {
	a, err := t.Album(MediumOwner(mediumPath))
	if err != nil {
		return false
	}
	return t.CanBrowse(a, p)
}

// PathToRoot returns the breadcrumb from (but excluding) the root down to
// the album. Every album on the way, the target included, must be
// traversable by the principal; otherwise ErrNotTraversable is returned.
func (t *Tree) PathToRoot(albumPath string, p Principal) ([]PathPart, error) {
	a, err := t.Album(albumPath)
	if err != nil {
		return nil, err
	}

	var chain []*Album
	for cur := a; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	// chain is album..root; emit root-first and skip the root itself.
	parts := make([]PathPart, 0, len(chain)-1)
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		if !t.CanTraverse(cur, p) {
			return nil, fmt.Errorf("library: %q via %q: %w", a.Path, cur.Path, ErrNotTraversable)
		}
		if cur.IsRoot() {
			continue
		}
		parts = append(parts, PathPart{Path: cur.Path, Name: cur.Name})
	}
	return parts, nil
}

// Siblings returns all children of the album's parent, the album itself
// included, sorted by path. The listing is not permission filtered; see
// SubAlbums for the filtered variant. The root has no siblings.
func (t *Tree) Siblings(albumPath string) ([]*Album, error) {
	a, err := t.Album(albumPath)
	if err != nil {
		return nil, err
	}
	if a.IsRoot() {
		return nil, nil
	}
	return a.parent.Children(), nil
}

// absDir converts an album path to the absolute directory it mirrors.
func (t *Tree) absDir(albumPath string) string {
	if albumPath == "" {
		return t.rootDir
	}
	return filepath.Join(t.rootDir, filepath.FromSlash(albumPath))
}

// absMediumPath converts a medium path to the absolute file it mirrors.
func (t *Tree) absMediumPath(mediumPath string) string {
	return filepath.Join(t.rootDir, filepath.FromSlash(mediumPath))
}

// joinAlbumPath joins slash-separated album path segments.
func joinAlbumPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// normalizePath cleans a client-supplied relative path. It returns false
// for anything that tries to escape the root.
func normalizePath(raw string) (string, bool) {
	p := strings.Trim(filepath.ToSlash(raw), "/")
	if p == "" {
		return "", true
	}
	p = path.Clean(p)
	if p == "." {
		return "", true
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}
