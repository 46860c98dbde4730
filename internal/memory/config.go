package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"mch/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
// The remainder is left for in-flight response buffers and goroutine stacks.
const DefaultRatio = 0.85

// Source values reported in ConfigResult.
const (
	SourceGoMemLimit     = "GOMEMLIMIT"
	SourceContainerLimit = "MEMORY_LIMIT"
	SourceNone           = "none"
)

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configure sets the Go soft memory limit to ratio * containerLimit.
// An explicit GOMEMLIMIT in the environment wins and is only reported.
// A containerLimit <= 0 leaves the runtime default in place. Ratios outside
// (0, 1] fall back to DefaultRatio.
func Configure(containerLimit int64, ratio float64) ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := ConfigResult{Source: SourceGoMemLimit}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Debug("  GOMEMLIMIT set via environment: %s", env)
		return result
	}

	if containerLimit <= 0 {
		logging.Debug("  MEMORY_LIMIT not set, GOMEMLIMIT left at runtime default")
		return ConfigResult{Source: SourceNone}
	}

	if ratio <= 0 || ratio > 1 {
		logging.Warn("  MEMORY_RATIO %.2f out of range (0.0-1.0), using default %.2f", ratio, DefaultRatio)
		ratio = DefaultRatio
	}

	goMemLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	return ConfigResult{
		Configured:     true,
		Source:         SourceContainerLimit,
		ContainerLimit: containerLimit,
		GoMemLimit:     goMemLimit,
		Ratio:          ratio,
	}
}

// FormatBytes formats a byte count with binary units (KiB, MiB, ...).
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
