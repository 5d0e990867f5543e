// Package memory sets the Go soft memory limit from the container's
// memory limit. Image decoding allocates whole frames, so an unconfigured
// heap on a small container gets OOM-killed before the GC reacts.
package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"photo-gallery/internal/logging"
)

// DefaultRatio is the share of container memory given to the Go heap. The
// rest is headroom for ffmpeg child processes and goroutine stacks.
const DefaultRatio = 0.85

// ConfigResult reports what ConfigureFromEnv decided.
type ConfigResult struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from the environment. Call it early in
// main, before large allocations.
//
//   - GOMEMLIMIT: honored as-is when set (the runtime already applied it)
//   - MEMORY_LIMIT: container limit in bytes, e.g. from the Kubernetes
//     Downward API; the heap gets MEMORY_RATIO of it (default 0.85)
func ConfigureFromEnv() ConfigResult {
	if os.Getenv("GOMEMLIMIT") != "" {
		limit := debug.SetMemoryLimit(-1)
		result := ConfigResult{Configured: true, Source: "GOMEMLIMIT", GoMemLimit: limit}
		logging.Info("Memory limit from GOMEMLIMIT: %s", formatBytes(limit))
		return result
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("No memory limit configured (set MEMORY_LIMIT or GOMEMLIMIT)")
		return ConfigResult{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Invalid MEMORY_LIMIT %q, leaving memory limit unset", raw)
		return ConfigResult{Source: "none"}
	}

	ratio := DefaultRatio
	if rawRatio := os.Getenv("MEMORY_RATIO"); rawRatio != "" {
		if parsed, err := strconv.ParseFloat(rawRatio, 64); err == nil && parsed > 0 && parsed <= 1 {
			ratio = parsed
		} else {
			logging.Warn("Invalid MEMORY_RATIO %q, using %.2f", rawRatio, DefaultRatio)
		}
	}

	goLimit := int64(math.Floor(float64(containerLimit) * ratio))
	debug.SetMemoryLimit(goLimit)
	logging.Info("Memory limit: %s of %s container limit (ratio %.2f)",
		formatBytes(goLimit), formatBytes(containerLimit), ratio)

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= 1024*mb {
		return strconv.FormatFloat(float64(n)/(1024*mb), 'f', 1, 64) + " GiB"
	}
	return strconv.FormatInt(n/mb, 10) + " MiB"
}
