// Package workers sizes worker pools from the available CPUs.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count scaled from GOMAXPROCS, which tracks
// container CPU limits. The multiplier accounts for how much of a worker's
// time is spent waiting on I/O rather than computing; limit caps the
// result, with 0 meaning uncapped.
//
// The THUMBNAIL_WORKERS environment variable overrides the computed count.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("THUMBNAIL_WORKERS"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			return capped(n, limit)
		}
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	return capped(n, limit)
}

func capped(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForMixed sizes a pool for work that alternates between CPU and disk,
// such as decoding and resizing photos read from storage.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
