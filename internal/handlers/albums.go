package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"photo-gallery/internal/library"
)

type subAlbumView struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type albumResponse struct {
	Path       string             `json:"path"`
	Name       string             `json:"name"`
	Breadcrumb []library.PathPart `json:"breadcrumb"`
	SubAlbums  []subAlbumView     `json:"subAlbums"`
	Media      []library.Medium   `json:"media,omitempty"`
	Browsable  bool               `json:"browsable"`
	Siblings   []subAlbumView     `json:"siblings,omitempty"`
}

// Album answers one album page: breadcrumb, traversable children, and the
// media listing when the principal may browse. A traversable but not
// browsable album still answers, with Browsable false and no media, so a
// user can pass through on the way to an album they were granted.
func (h *Handlers) Album(w http.ResponseWriter, r *http.Request) {
	albumPath := mux.Vars(r)["path"]
	p := principalFrom(r)
	tree := h.lib.Tree()

	album, err := tree.Album(albumPath)
	if err != nil {
		writeLibraryError(w, err)
		return
	}

	breadcrumb, err := tree.PathToRoot(album.Path, p)
	if err != nil {
		writeLibraryError(w, err)
		return
	}

	subs, err := tree.SubAlbums(album.Path, p)
	if err != nil {
		writeLibraryError(w, err)
		return
	}

	resp := albumResponse{
		Path:       album.Path,
		Name:       album.Name,
		Breadcrumb: breadcrumb,
		SubAlbums:  make([]subAlbumView, 0, len(subs)),
	}
	for _, s := range subs {
		resp.SubAlbums = append(resp.SubAlbums, subAlbumView{Path: s.Path, Name: s.Name})
	}

	if resp.Browsable = tree.CanBrowse(album, p); resp.Browsable {
		media, err := tree.ListMedia(album.Path, p)
		if err != nil {
			writeLibraryError(w, err)
			return
		}
		resp.Media = media

		siblings, err := tree.Siblings(album.Path)
		if err != nil {
			writeLibraryError(w, err)
			return
		}
		for _, s := range siblings {
			resp.Siblings = append(resp.Siblings, subAlbumView{Path: s.Path, Name: s.Name})
		}
	}

	writeJSON(w, resp)
}
