package timeline

import (
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// Predicate selects segments for insertion anchoring.
type Predicate func(broadcast.RenderedSegment) bool

// TypeIs returns a predicate matching segments of the given type tag.
func TypeIs(segmentType string) Predicate {
	return func(s broadcast.RenderedSegment) bool {
		return s.SegmentType == segmentType
	}
}

// InsertionRule locates where a secondary block is spliced into a primary
// sequence. When no segment matches, the block is appended at the end; that
// is a logged warning, not an error.
type InsertionRule struct {
	after     bool
	predicate Predicate
	name      string
}

// AfterLastMatching splices the block after the last segment matching p.
func AfterLastMatching(p Predicate) InsertionRule {
	return InsertionRule{after: true, predicate: p, name: "after_last_matching"}
}

// BeforeFirstMatching splices the block before the first segment matching p.
func BeforeFirstMatching(p Predicate) InsertionRule {
	return InsertionRule{after: false, predicate: p, name: "before_first_matching"}
}

// index returns the splice position in primary, or -1 when nothing matches.
func (r InsertionRule) index(primary []broadcast.RenderedSegment) int {
	if r.predicate == nil {
		return -1
	}
	if r.after {
		for i := len(primary) - 1; i >= 0; i-- {
			if r.predicate(primary[i]) {
				return i + 1
			}
		}
		return -1
	}
	for i, seg := range primary {
		if r.predicate(seg) {
			return i
		}
	}
	return -1
}

// Merge splices the secondary block into the primary sequence at the point
// the rule selects and returns a fresh, unbuilt sequence. All absolute
// timing is discarded from both inputs; the caller must pass the result back
// through Build to get correct timestamps.
//
// Relative order within secondary is preserved exactly. The merged sequence
// is renumbered with contiguous display_order values so a rebuild (which
// sorts by display_order alone) reproduces the spliced positional order even
// when the two inputs used overlapping numbering schemes.
//
// Neither input is mutated.
func Merge(primary, secondary []broadcast.TimedSegment, rule InsertionRule, log logging.Logger) []broadcast.RenderedSegment {
	if log == nil {
		log = logging.NewNopLogger()
	}

	flat := make([]broadcast.RenderedSegment, 0, len(primary))
	for _, seg := range primary {
		flat = append(flat, seg.RenderedSegment)
	}
	block := make([]broadcast.RenderedSegment, 0, len(secondary))
	for _, seg := range secondary {
		block = append(block, seg.RenderedSegment)
	}

	at := rule.index(flat)
	if at < 0 {
		log.Warn("merge anchor not found, appending block at end",
			logging.F("rule", rule.name),
			logging.F("block_size", len(block)))
		at = len(flat)
	}

	merged := make([]broadcast.RenderedSegment, 0, len(flat)+len(block))
	merged = append(merged, flat[:at]...)
	merged = append(merged, block...)
	merged = append(merged, flat[at:]...)

	for i := range merged {
		merged[i].DisplayOrder = i
	}

	return merged
}
