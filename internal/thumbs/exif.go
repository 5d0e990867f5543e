package thumbs

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"photo-gallery/internal/logging"
)

// rotateBy maps an EXIF orientation to the counterclockwise rotation, in
// degrees, that uprights the image. Mirrored orientations (2, 4, 5, 7) are
// rare in camera output and fall through to no rotation.
var rotateBy = map[int]int{
	1: 0,
	8: 90,
	3: 180,
	6: 270,
}

// landscapeFor maps an EXIF orientation to whether the stored pixel grid is
// landscape relative to the upright image.
var landscapeFor = map[int]bool{
	1: true,
	3: true,
	6: false,
	8: false,
}

// readOrientation returns the EXIF orientation of the file, or 1 when the
// file has no EXIF data or the tag cannot be read.
func readOrientation(src string) int {
	f, err := os.Open(src)
	if err != nil {
		return 1
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		logging.Debug("thumbs: unreadable orientation tag in %s: %v", src, err)
		return 1
	}
	return v
}

// rotationAngle returns the counterclockwise degrees to apply for an
// orientation value.
func rotationAngle(orientation int) int {
	return rotateBy[orientation]
}

// isLandscape reports whether the stored pixels of an image with the given
// orientation are landscape. Unknown orientations are treated as landscape.
func isLandscape(orientation int) bool {
	if v, ok := landscapeFor[orientation]; ok {
		return v
	}
	return true
}
