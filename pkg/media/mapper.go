// Package media attaches visual assets to timed segments based on segment
// type and source content.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// Attachment roles.
const (
	RoleIntroVideo    = "intro_video"
	RoleOutroVideo    = "outro_video"
	RoleBumperVideo   = "bumper_video"
	RoleHeadlineImage = "headline_image"
	RoleNewsImage     = "news_image"
	RoleWeatherImage  = "weather_image"
)

// Fixed bookend assets under the media directory.
const (
	introAsset  = "intro.mp4"
	outroAsset  = "outro.mp4"
	bumperAsset = "bumper.mp4"
)

// Mapper resolves media attachments for timed segments. Resolution misses
// are warnings, never errors: missing decoration must not block manifest
// generation.
type Mapper struct {
	mediaDir string
	sources  []broadcast.SourceItem
	log      logging.Logger
}

// NewMapper creates a mapper over the given media directory and source
// catalog.
func NewMapper(mediaDir string, sources []broadcast.SourceItem, log logging.Logger) *Mapper {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Mapper{mediaDir: mediaDir, sources: sources, log: log}
}

// AttachAll resolves attachments for every segment and returns a new slice
// with the Media fields populated. Input segments are not mutated.
func (m *Mapper) AttachAll(segments []broadcast.TimedSegment) []broadcast.TimedSegment {
	out := make([]broadcast.TimedSegment, len(segments))
	copy(out, segments)
	for i := range out {
		out[i].Media = m.Attach(out[i])
	}
	return out
}

// Attach resolves the attachments for one segment. Dispatch is purely on
// the segment type tag.
func (m *Mapper) Attach(seg broadcast.TimedSegment) []broadcast.MediaAttachment {
	switch seg.SegmentType {
	case broadcast.TypeOpening:
		return m.bookend(seg, introAsset, RoleIntroVideo)
	case broadcast.TypeClosing:
		return m.bookend(seg, outroAsset, RoleOutroVideo)
	case broadcast.TypeHeadlineOpening:
		return m.bookend(seg, bumperAsset, RoleBumperVideo)
	case broadcast.TypeHeadline:
		return m.headline(seg)
	case broadcast.TypeNews:
		return m.news(seg)
	case broadcast.TypeWeatherOverview, broadcast.TypeWeatherCurrentOverview,
		broadcast.TypeCardCurrent, broadcast.TypeCardTemperature,
		broadcast.TypeCardFeelsLike, broadcast.TypeCardWind,
		broadcast.TypeCardHourly, broadcast.TypeWeatherMap1,
		broadcast.TypeWeatherMap2:
		return m.weatherCard(seg)
	default:
		return nil
	}
}

// bookend attaches the fixed video for an intro/outro/bumper slot.
func (m *Mapper) bookend(seg broadcast.TimedSegment, asset, role string) []broadcast.MediaAttachment {
	path := filepath.Join(m.mediaDir, asset)
	if _, err := os.Stat(path); err != nil {
		m.log.Warn("bookend video not found",
			logging.F("segment_id", seg.SegmentID),
			logging.F("path", path))
		return nil
	}
	return []broadcast.MediaAttachment{{Kind: "video", AssetRef: path, Role: role}}
}

// story returns the source item for a 1-based index, or nil with a warning
// when the index is out of range.
func (m *Mapper) story(seg broadcast.TimedSegment) *broadcast.SourceItem {
	idx := seg.SourceIndex
	if idx < 1 || idx > len(m.sources) {
		m.log.Warn("source story index out of range",
			logging.F("segment_id", seg.SegmentID),
			logging.F("source_index", idx),
			logging.F("sources", len(m.sources)))
		return nil
	}
	return &m.sources[idx-1]
}

// headlineAttachment returns the story's lead image, used both by the
// headline segment itself and carried over to the story body segment.
func headlineAttachment(item *broadcast.SourceItem, sourceIndex int) *broadcast.MediaAttachment {
	if item == nil || len(item.Media) == 0 {
		return nil
	}
	lead := item.Media[0]
	return &broadcast.MediaAttachment{
		Kind:        mediaKind(lead),
		AssetRef:    lead.Path,
		Role:        RoleHeadlineImage,
		SourceIndex: sourceIndex,
	}
}

func (m *Mapper) headline(seg broadcast.TimedSegment) []broadcast.MediaAttachment {
	item := m.story(seg)
	att := headlineAttachment(item, seg.SourceIndex)
	if att == nil {
		if item != nil {
			m.log.Warn("story has no media for headline",
				logging.F("segment_id", seg.SegmentID),
				logging.F("source_index", seg.SourceIndex))
		}
		return nil
	}
	return []broadcast.MediaAttachment{*att}
}

// news attaches every media item of the story, plus a copy of the headline
// attachment so the player can keep a persistent lower-third across the
// headline and body segments.
func (m *Mapper) news(seg broadcast.TimedSegment) []broadcast.MediaAttachment {
	item := m.story(seg)
	if item == nil {
		return nil
	}

	var atts []broadcast.MediaAttachment
	for _, sm := range item.Media {
		atts = append(atts, broadcast.MediaAttachment{
			Kind:        mediaKind(sm),
			AssetRef:    sm.Path,
			Role:        RoleNewsImage,
			SourceIndex: seg.SourceIndex,
		})
	}
	if carried := headlineAttachment(item, seg.SourceIndex); carried != nil {
		atts = append(atts, *carried)
	}
	return atts
}

// weatherCard resolves the card image by filename convention:
// <mediaDir>/weather/<type>.png with underscores mapped to dashes.
// Weather visuals are optional; a missing file yields zero attachments.
func (m *Mapper) weatherCard(seg broadcast.TimedSegment) []broadcast.MediaAttachment {
	name := strings.ReplaceAll(seg.SegmentType, "_", "-") + ".png"
	path := filepath.Join(m.mediaDir, "weather", name)
	if _, err := os.Stat(path); err != nil {
		m.log.Warn("weather card image not found",
			logging.F("segment_id", seg.SegmentID),
			logging.F("path", path))
		return nil
	}
	return []broadcast.MediaAttachment{{Kind: "image", AssetRef: path, Role: RoleWeatherImage}}
}

func mediaKind(sm broadcast.SourceMedia) string {
	if sm.Kind != "" {
		return sm.Kind
	}
	return "image"
}
