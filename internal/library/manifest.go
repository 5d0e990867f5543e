package library

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
)

// ManifestName is the optional per-directory manifest file.
const ManifestName = "album.yml"

// manifest is the effective configuration of one directory: the display
// name plus the users and groups its album.yml grants. It only exists
// during a build; nothing holds on to it afterwards.
type manifest struct {
	Name   string
	Users  Set
	Groups Set
}

// rawManifest mirrors the album.yml schema.
type rawManifest struct {
	Name   string   `yaml:"name"`
	Users  []string `yaml:"users"`
	Groups []string `yaml:"groups"`
}

// loadManifest reads dir/album.yml. A missing file, a file that fails to
// parse, or missing keys all fall back to the defaults: name = directory
// basename, empty user and group sets. A broken manifest never aborts a
// build; it grants nothing.
func loadManifest(dir string) manifest {
	m := manifest{
		Name:   filepath.Base(dir),
		Users:  NewSet(),
		Groups: NewSet(),
	}

	data, err := filesystem.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("library: unreadable %s in %s: %v", ManifestName, dir, err)
		}
		return m
	}

	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		logging.Warn("library: malformed %s in %s, using defaults: %v", ManifestName, dir, err)
		return m
	}

	if raw.Name != "" {
		m.Name = raw.Name
	}
	if len(raw.Users) > 0 {
		m.Users = NewSet(raw.Users...)
	}
	if len(raw.Groups) > 0 {
		m.Groups = NewSet(raw.Groups...)
	}
	return m
}
