package library

import "errors"

var (
	// ErrAlbumNotFound is returned when a relative path does not name an
	// album in the current tree.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrNotTraversable is returned when a principal may not pass through
	// an album en route to its descendants.
	ErrNotTraversable = errors.New("album not traversable")

	// ErrNotBrowsable is returned when a principal may not see an album's
	// own content listing.
	ErrNotBrowsable = errors.New("album not browsable")
)
