package thumbs

import (
	"bytes"
	"fmt"
	"image"
	"os/exec"

	"github.com/disintegration/imaging"

	"photo-gallery/internal/logging"
)

// posterSeek is where the poster frame is taken from. Seeking past the
// first frame avoids the black or blurred frames many encoders emit at
// the very start of a clip.
const posterSeek = "00:00:01.000"

// renderVideoPoster extracts a frame from the video with ffmpeg and resizes
// it to the cache height. Clips shorter than the seek point fail the first
// extraction, so it retries from the first frame.
func (c *Cache) renderVideoPoster(src string) (image.Image, error) {
	frame, err := extractFrame(src, posterSeek)
	if err != nil {
		logging.Debug("thumbs: seek extraction failed for %s, retrying from start: %v", src, err)
		frame, err = extractFrame(src, "")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, src, err)
	}

	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decoding poster frame: %v", ErrSourceUnavailable, src, err)
	}
	return imaging.Resize(img, 0, c.height, imaging.Lanczos), nil
}

// extractFrame runs ffmpeg and returns one PNG-encoded frame on stdout.
// An empty seek starts from the first frame.
func extractFrame(src, seek string) ([]byte, error) {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if seek != "" {
		args = append(args, "-ss", seek)
	}
	args = append(args,
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"-",
	)

	cmd := exec.Command("ffmpeg", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v: %s", err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame")
	}
	return out.Bytes(), nil
}
