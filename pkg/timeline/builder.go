// Package timeline computes absolute segment timing and merges
// independently produced segment blocks into one ordered sequence.
package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

// DefaultPause is the gap inserted between consecutive segments, in seconds.
const DefaultPause = 1.0

// round3 rounds to millisecond precision, the resolution persisted in the
// manifest.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Build places rendered segments on the absolute timeline.
//
// Segments are stably sorted by display_order, then walked with a running
// clock: each segment starts at the clock, ends after its measured duration,
// and advances the clock by the pause. No pause follows the final segment. A
// zero-duration segment still occupies a zero-length slot and still incurs
// the pause, so a missing-but-expected segment never collapses the schedule.
//
// The whole timeline is recomputed on every call; timestamps are never
// patched in place. That is what makes merge-then-rebuild correct without
// special cases.
func Build(segments []broadcast.RenderedSegment, pause float64) ([]broadcast.TimedSegment, error) {
	if math.IsNaN(pause) || pause < 0 {
		return nil, fmt.Errorf("%w: pause must be a non-negative number of seconds, got %v",
			apperrors.ErrConfiguration, pause)
	}

	ordered := make([]broadcast.RenderedSegment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	timed := make([]broadcast.TimedSegment, 0, len(ordered))
	t := 0.0
	for i, seg := range ordered {
		start := t
		end := round3(start + seg.Duration)
		timed = append(timed, broadcast.TimedSegment{
			RenderedSegment: seg,
			Start:           start,
			End:             end,
		})
		if i < len(ordered)-1 {
			t = round3(end + pause)
		}
	}

	return timed, nil
}

// TotalDuration returns the end of the final segment, or 0 for an empty
// timeline.
func TotalDuration(timed []broadcast.TimedSegment) float64 {
	if len(timed) == 0 {
		return 0
	}
	return timed[len(timed)-1].End
}
