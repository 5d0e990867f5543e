package library

import "sort"

// Set is a set of user or group names.
type Set map[string]bool

// NewSet builds a Set from a list of names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool { return s[name] }

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for n := range s {
		c[n] = true
	}
	return c
}

// Union returns a new set containing the members of both sets.
func (s Set) Union(other Set) Set {
	c := s.Clone()
	for n := range other {
		c[n] = true
	}
	return c
}

// Diff returns a new set with the members of s that are not in other.
func (s Set) Diff(other Set) Set {
	c := make(Set)
	for n := range s {
		if !other[n] {
			c[n] = true
		}
	}
	return c
}

// AddAll unions other into s in place and reports whether s changed.
func (s Set) AddAll(other Set) bool {
	changed := false
	for n := range other {
		if !s[n] {
			s[n] = true
			changed = true
		}
	}
	return changed
}

// Equal reports whether both sets contain exactly the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other[n] {
			return false
		}
	}
	return true
}

// Names returns the sorted members of the set.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Principal is the identity a request acts as. A zero Principal has no
// identity and is denied everywhere permission is required.
type Principal struct {
	Email  string
	Admin  bool
	Groups []string
}

// Permission is a set of users and groups allowed to perform some action.
type Permission struct {
	Users  Set
	Groups Set
}

// Allows reports whether the principal satisfies this permission: their
// identity is listed, they hold the administrator role, or one of their
// groups is listed. An empty identity never matches a listed user.
func (perm Permission) Allows(p Principal) bool {
	if p.Admin {
		return true
	}
	if p.Email != "" && perm.Users.Has(p.Email) {
		return true
	}
	for _, g := range p.Groups {
		if perm.Groups.Has(g) {
			return true
		}
	}
	return false
}

// Medium is a single displayable file inside an album, identified by its
// slash-separated path relative to the media root.
type Medium struct {
	Path     string `json:"path"`
	MimeType string `json:"mimeType"`
}

// Album is one node of the tree: a directory of media plus the permission
// state resolved for it during the build.
type Album struct {
	// Path is the slash-separated path relative to the media root; the
	// root album has the empty path.
	Path string

	// Name is the display name: the manifest override or the directory
	// basename.
	Name string

	// Media lists the directly contained supported files, sorted by path.
	Media []Medium

	// Perm is the resolved browse permission: the union of every
	// manifest from the root down to this album.
	Perm Permission

	// Edge is the traversal permission on the edge from the parent to
	// this album. It starts as a copy of Perm and is widened by
	// back-propagation when descendants introduce new principals. The
	// root album has no incoming edge and a zero Edge.
	Edge Permission

	parent   *Album
	children []*Album
}

// IsRoot reports whether this is the root album.
func (a *Album) IsRoot() bool { return a.parent == nil }

// Parent returns the parent album, or nil for the root.
func (a *Album) Parent() *Album { return a.parent }

// Children returns the direct sub-albums, sorted by path.
func (a *Album) Children() []*Album {
	out := make([]*Album, len(a.children))
	copy(out, a.children)
	return out
}

// PathPart is one breadcrumb component on the way from the root to an album.
type PathPart struct {
	Path string `json:"path"`
	Name string `json:"name"`
}
