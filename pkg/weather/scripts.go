package weather

import (
	"fmt"
	"strings"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
)

// BuildScripts seeds one deterministic card script per weather definition
// from the extracted facts. These scripts feed the same render and timeline
// path as the news block.
func BuildScripts(defs []broadcast.SegmentDefinition, facts *Facts, location string) (*broadcast.ScriptStore, error) {
	store := broadcast.NewScriptStore(defs)

	for _, def := range defs {
		script := broadcast.Script{
			SegmentID: def.Name,
			Text:      cardText(def.Type, facts, location),
		}
		if err := store.Append(script); err != nil {
			return nil, fmt.Errorf("appending weather script for %s: %w", def.Name, err)
		}
	}

	return store, nil
}

// cardText is the narration for one weather card type.
func cardText(cardType string, f *Facts, location string) string {
	switch cardType {
	case broadcast.TypeWeatherOverview:
		return fmt.Sprintf("Now a look at the weather. It's currently %s in %s at %.0f degrees.",
			strings.ToLower(f.Conditions), location, f.Temperature)

	case broadcast.TypeWeatherCurrentOverview:
		return fmt.Sprintf("A quick check on the weather in %s: %s, %.0f degrees, with a high of %.0f and a low of %.0f.",
			location, strings.ToLower(f.Conditions), f.Temperature, f.High, f.Low)

	case broadcast.TypeCardCurrent:
		return fmt.Sprintf("Right now it's %.0f degrees and %s.",
			f.Temperature, strings.ToLower(f.Conditions))

	case broadcast.TypeCardTemperature:
		return fmt.Sprintf("Today's high is %.0f degrees, with an overnight low of %.0f.",
			f.High, f.Low)

	case broadcast.TypeCardFeelsLike:
		return fmt.Sprintf("With humidity at %d percent, it feels like %.0f degrees out there.",
			f.Humidity, f.FeelsLike)

	case broadcast.TypeCardWind:
		if f.WindDirection != "" {
			return fmt.Sprintf("Winds are out of the %s at %.0f kilometers per hour.",
				f.WindDirection, f.WindSpeed)
		}
		return fmt.Sprintf("Winds at %.0f kilometers per hour.", f.WindSpeed)

	case broadcast.TypeCardHourly:
		if len(f.Hourly) == 0 {
			return "Looking at the hours ahead, conditions should hold steady."
		}
		var parts []string
		for _, h := range f.Hourly {
			parts = append(parts, fmt.Sprintf("%s, %.0f degrees and %s",
				h.Time, h.Temperature, strings.ToLower(h.Conditions)))
		}
		return "Hour by hour: " + strings.Join(parts, "; ") + "."

	case broadcast.TypeWeatherMap1:
		return "Here's how things look across the region."

	case broadcast.TypeWeatherMap2:
		return "And the satellite view of the wider area."

	default:
		return fmt.Sprintf("Weather update for %s.", location)
	}
}
