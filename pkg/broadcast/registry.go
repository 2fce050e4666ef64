package broadcast

import (
	"fmt"
	"sort"

	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

// DisplayOrder layout. The news block occupies low orders, the weather block
// starts at 100, and the closing sits at 999 so merged blocks always land
// before it.
const (
	weatherBaseOrder = 100
	closingOrder     = 999
)

// DefaultStories is the story count used when Options.Stories is zero.
const DefaultStories = 3

// Options control which definitions the registry emits.
type Options struct {
	// IncludeBookends includes the opening greeting and closing remarks.
	IncludeBookends bool

	// Brief substitutes the short-format duration table.
	Brief bool

	// Stories is the number of source stories (headline + body pairs).
	// Zero means DefaultStories.
	Stories int
}

// fullDurations and briefDurations are the per-type target duration tables,
// in seconds. Target durations pace script generation only.
var fullDurations = map[string]float64{
	TypeOpening:                15,
	TypeSummary:                20,
	TypeHeadlineOpening:        10,
	TypeHeadline:               10,
	TypeNews:                   30,
	TypeClosing:                15,
	TypeWeatherOverview:        45,
	TypeWeatherCurrentOverview: 30,
	TypeCardCurrent:            35,
	TypeCardTemperature:        30,
	TypeCardFeelsLike:          20,
	TypeCardWind:               20,
	TypeCardHourly:             40,
	TypeWeatherMap1:            25,
	TypeWeatherMap2:            25,
}

var briefDurations = map[string]float64{
	TypeOpening:                8,
	TypeSummary:                12,
	TypeHeadlineOpening:        6,
	TypeHeadline:               6,
	TypeNews:                   15,
	TypeClosing:                8,
	TypeWeatherOverview:        30,
	TypeWeatherCurrentOverview: 18,
	TypeCardCurrent:            20,
	TypeCardTemperature:        15,
	TypeCardFeelsLike:          12,
	TypeCardWind:               12,
	TypeCardHourly:             25,
	TypeWeatherMap1:            15,
	TypeWeatherMap2:            15,
}

// DurationFor returns the target duration for a segment type.
// Unknown types are a configuration error.
func DurationFor(segmentType string, brief bool) (float64, error) {
	table := fullDurations
	if brief {
		table = briefDurations
	}
	d, ok := table[segmentType]
	if !ok {
		return 0, fmt.Errorf("%w: no duration for segment type %q", apperrors.ErrConfiguration, segmentType)
	}
	return d, nil
}

// ListDefinitions returns the news block definitions in ascending
// display_order: opening, summary, headline opening, per-story headlines,
// per-story bodies, closing.
func ListDefinitions(opts Options) ([]SegmentDefinition, error) {
	stories := opts.Stories
	if stories == 0 {
		stories = DefaultStories
	}
	if stories < 0 {
		return nil, fmt.Errorf("%w: story count must be non-negative, got %d", apperrors.ErrConfiguration, stories)
	}

	var defs []SegmentDefinition
	order := 0

	add := func(name, segmentType, displayName, focus string, sourceIndex int) error {
		d, err := DurationFor(segmentType, opts.Brief)
		if err != nil {
			return err
		}
		defs = append(defs, SegmentDefinition{
			Name:           name,
			Type:           segmentType,
			DisplayName:    displayName,
			DisplayOrder:   order,
			TargetDuration: d,
			ContentFocus:   focus,
			SourceIndex:    sourceIndex,
		})
		order++
		return nil
	}

	if opts.IncludeBookends {
		if err := add(TypeOpening, TypeOpening, "Opening Greeting",
			"welcome viewers, introduce the anchor and the station", 0); err != nil {
			return nil, err
		}
	}
	if err := add(TypeSummary, TypeSummary, "News Summary",
		"one-sentence teaser for each story in tonight's broadcast", 0); err != nil {
		return nil, err
	}
	if err := add(TypeHeadlineOpening, TypeHeadlineOpening, "Headlines",
		"transition into the headline rundown", 0); err != nil {
		return nil, err
	}
	for i := 1; i <= stories; i++ {
		if err := add(fmt.Sprintf("headline_%d", i), TypeHeadline,
			fmt.Sprintf("Headline %d", i),
			"single-sentence headline for the story", i); err != nil {
			return nil, err
		}
	}
	for i := 1; i <= stories; i++ {
		if err := add(fmt.Sprintf("news_%d", i), TypeNews,
			fmt.Sprintf("News Story %d", i),
			"full narration of the story body", i); err != nil {
			return nil, err
		}
	}
	if opts.IncludeBookends {
		d, err := DurationFor(TypeClosing, opts.Brief)
		if err != nil {
			return nil, err
		}
		defs = append(defs, SegmentDefinition{
			Name:           TypeClosing,
			Type:           TypeClosing,
			DisplayName:    "Closing Remarks",
			DisplayOrder:   closingOrder,
			TargetDuration: d,
			ContentFocus:   "thank viewers and sign off",
		})
	}

	return defs, nil
}

// weatherCardSequence is the on-air order of the weather cards. In brief
// mode a single combined current-conditions card replaces the overview and
// current cards.
func weatherCardSequence(brief bool) []struct{ segmentType, displayName, focus string } {
	if brief {
		return []struct{ segmentType, displayName, focus string }{
			{TypeWeatherCurrentOverview, "Current Conditions", "combined current conditions and outlook"},
			{TypeCardTemperature, "Temperature", "today's highs and lows"},
			{TypeCardHourly, "Hourly Forecast", "conditions over the next hours"},
		}
	}
	return []struct{ segmentType, displayName, focus string }{
		{TypeWeatherOverview, "Weather Overview", "overall weather picture for the area"},
		{TypeCardCurrent, "Current Conditions", "what it looks like outside right now"},
		{TypeCardTemperature, "Temperature", "today's highs and lows"},
		{TypeCardFeelsLike, "Feels Like", "apparent temperature and comfort"},
		{TypeCardWind, "Wind", "wind speed and direction"},
		{TypeCardHourly, "Hourly Forecast", "conditions over the next hours"},
		{TypeWeatherMap1, "Regional Map", "regional conditions map"},
		{TypeWeatherMap2, "Satellite Map", "satellite view of the region"},
	}
}

// WeatherDefinitions returns the weather block definitions, ordered from
// weatherBaseOrder stepping 1.
func WeatherDefinitions(opts Options) ([]SegmentDefinition, error) {
	cards := weatherCardSequence(opts.Brief)

	defs := make([]SegmentDefinition, 0, len(cards))
	for i, card := range cards {
		d, err := DurationFor(card.segmentType, opts.Brief)
		if err != nil {
			return nil, err
		}
		defs = append(defs, SegmentDefinition{
			Name:           card.segmentType,
			Type:           card.segmentType,
			DisplayName:    card.displayName,
			DisplayOrder:   weatherBaseOrder + i,
			TargetDuration: d,
			ContentFocus:   card.focus,
		})
	}
	return defs, nil
}

// SortDefinitions orders definitions by ascending display_order, stably.
func SortDefinitions(defs []SegmentDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].DisplayOrder < defs[j].DisplayOrder
	})
}
