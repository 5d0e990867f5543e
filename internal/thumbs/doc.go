// Package thumbs maintains the on-demand cache of resized renditions.
//
// A Cache maps (medium relative path, fixed target height) to a .jpg file
// under {cacheDir}/{height}/, regenerating lazily whenever the cached file
// is missing or not strictly newer than the source. Photos are oriented
// from their EXIF orientation tag; video posters are extracted with ffmpeg
// and run through the same resize path. Generation is deduplicated per key
// with singleflight and written atomically, so concurrent first requests
// for the same rendition do neither duplicate work nor expose a partially
// written file.
package thumbs
