// Package audio renders script narration to audio assets and measures their
// real playable duration.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober measures the playable duration of an audio asset.
type Prober interface {
	// Duration returns the asset length in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe measures durations by decoding the asset with ffprobe. Vendor
// reported durations are never trusted; this is the ground truth all timing
// math is built on.
type FFProbe struct {
	bin string
}

// NewFFProbe returns a prober using the ffprobe binary on PATH.
func NewFFProbe() *FFProbe {
	return &FFProbe{bin: "ffprobe"}
}

// probeOutput is the subset of ffprobe's JSON output we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration runs ffprobe against the asset and parses the container duration.
func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return 0, fmt.Errorf("ffprobe %s: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("ffprobe %s: parsing output: %w", path, err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe %s: no duration in output", path)
	}

	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: parsing duration %q: %w", path, probe.Format.Duration, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("ffprobe %s: negative duration %v", path, d)
	}

	return d, nil
}
