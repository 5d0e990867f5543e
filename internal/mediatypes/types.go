package mediatypes

import (
	"path/filepath"
	"strings"
)

// MediumType categorizes a displayable file.
type MediumType string

const (
	// MediumImage represents a supported photo format.
	MediumImage MediumType = "image"
	// MediumVideo represents a supported video format.
	MediumVideo MediumType = "video"
	// MediumUnsupported represents anything outside the allow-list.
	MediumUnsupported MediumType = "unsupported"
)

// PhotoMimeTypes maps supported photo extensions to their MIME types.
// The allow-list is deliberately fixed: classification is extension-only,
// with no content sniffing.
var PhotoMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// VideoMimeTypes maps supported video extensions to their MIME types.
var VideoMimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogv":  "video/ogg",
}

// Classify returns the medium type for a file name or path. Extension
// matching is case-insensitive.
func Classify(name string) MediumType {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := PhotoMimeTypes[ext]; ok {
		return MediumImage
	}
	if _, ok := VideoMimeTypes[ext]; ok {
		return MediumVideo
	}
	return MediumUnsupported
}

// MimeType returns the MIME type for a supported file name or path, and
// false for anything outside the allow-list.
func MimeType(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if mime, ok := PhotoMimeTypes[ext]; ok {
		return mime, true
	}
	if mime, ok := VideoMimeTypes[ext]; ok {
		return mime, true
	}
	return "", false
}

// IsSupported reports whether the file name or path is a displayable medium.
func IsSupported(name string) bool {
	return Classify(name) != MediumUnsupported
}
