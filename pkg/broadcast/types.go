// Package broadcast defines the segment data model and the segment
// definition registry for the newscast pipeline.
//
// The model follows the segment lifecycle: a SegmentDefinition describes a
// slot in the broadcast, a Script binds narration text to it, a
// RenderedSegment adds the synthesized audio facts, and a TimedSegment places
// it on the absolute timeline. Each stage is immutable once produced; the
// next stage derives a new value rather than mutating the previous one.
package broadcast

// Segment type tags. These form a closed set: every script carries exactly
// one of them, and downstream components (media mapping, merge predicates)
// dispatch on the tag.
const (
	TypeOpening         = "opening_greeting"
	TypeSummary         = "news_summary"
	TypeHeadlineOpening = "headline_opening"
	TypeHeadline        = "headline"
	TypeNews            = "news"
	TypeClosing         = "closing_remarks"
)

// Weather card segment types.
const (
	TypeWeatherOverview        = "weather_overview"
	TypeWeatherCurrentOverview = "weather_current_overview"
	TypeCardCurrent            = "card-current"
	TypeCardTemperature        = "card-temperature"
	TypeCardFeelsLike          = "card-feels-like"
	TypeCardWind               = "card-wind"
	TypeCardHourly             = "card-hourly"
	TypeWeatherMap1            = "weather_map1"
	TypeWeatherMap2            = "weather_map2"
)

// SegmentDefinition is a static description of one slot in the broadcast.
// Definitions are created once per run from the registry and are immutable.
type SegmentDefinition struct {
	// Name uniquely identifies the slot within a run (e.g. "news_2").
	Name string `json:"name"`

	// Type is the segment type tag (e.g. TypeNews).
	Type string `json:"type"`

	// DisplayName is the human label shown in the player.
	DisplayName string `json:"display_name"`

	// DisplayOrder is the sort key. Orders are deliberately non-contiguous
	// so other components can insert between two slots without renumbering.
	DisplayOrder int `json:"display_order"`

	// TargetDuration is a planning estimate in seconds. It paces script
	// generation only; built timestamps always come from measured audio.
	TargetDuration float64 `json:"target_duration"`

	// ContentFocus describes what the segment should contain.
	ContentFocus string `json:"content_focus"`

	// SourceIndex is the 1-based source story this slot belongs to, or 0
	// for slots not tied to a story.
	SourceIndex int `json:"source_index,omitempty"`
}

// Script is generated narration text bound to a SegmentDefinition.
type Script struct {
	// SegmentType is the type tag copied from the definition.
	SegmentType string `json:"segment_type"`

	// SegmentID is the definition name this script fills.
	SegmentID string `json:"segment_id"`

	// DisplayName is the human label copied from the definition.
	DisplayName string `json:"display_name"`

	// Headline is an optional short string for on-screen display.
	Headline string `json:"headline,omitempty"`

	// Text is the narration.
	Text string `json:"script"`

	// DisplayOrder is copied from the definition at creation time and is
	// stable for the life of the run.
	DisplayOrder int `json:"display_order"`

	// SourceIndex is the 1-based source story index, or 0.
	SourceIndex int `json:"source_index,omitempty"`
}

// RenderedSegment is a Script plus its synthesized audio facts.
type RenderedSegment struct {
	Script

	// AudioRef is the path of the rendered audio asset.
	AudioRef string `json:"audio_path"`

	// Duration is the measured playable length in seconds, decoded from
	// the actual asset. Always >= 0.
	Duration float64 `json:"duration"`
}

// MediaAttachment is a visual asset tied to a timed segment.
type MediaAttachment struct {
	// Kind is "image" or "video".
	Kind string `json:"kind"`

	// AssetRef is the media asset path.
	AssetRef string `json:"path"`

	// Role tells the player how to use the asset (headline_image,
	// intro_video, news_image, ...).
	Role string `json:"role"`

	// SourceIndex is the 1-based source story the asset came from, or 0.
	SourceIndex int `json:"source_index,omitempty"`
}

// TimedSegment is a RenderedSegment placed on the absolute timeline.
// Start and End are computed by the timeline builder, never user-supplied.
type TimedSegment struct {
	RenderedSegment

	// Start and End are seconds from timeline zero.
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`

	// Media holds the attached visual assets.
	Media []MediaAttachment `json:"media,omitempty"`

	// AnchorVideo is the talking-head render for this segment, if one was
	// produced.
	AnchorVideo string `json:"anchor_video,omitempty"`
}

// SourceMedia is one uploaded asset belonging to a source item.
type SourceMedia struct {
	// Kind is "image" or "video".
	Kind string `json:"kind"`

	// Path is the asset location under the media directory.
	Path string `json:"path"`
}

// SourceItem is one collected news item: the raw content the scripts are
// generated from.
type SourceItem struct {
	Title string        `json:"title"`
	Body  string        `json:"body"`
	Media []SourceMedia `json:"media,omitempty"`
}
