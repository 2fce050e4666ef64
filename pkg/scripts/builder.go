package scripts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexcaster/newscast-cli/config"
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// Builder fills a script store from segment definitions. When the generator
// is nil or fails for a segment, the deterministic template for that segment
// type is used instead; generation failures never abort the batch.
type Builder struct {
	station   config.StationConfig
	language  string
	generator Generator
	log       logging.Logger

	// now is swappable for tests of the time-of-day greeting.
	now func() time.Time
}

// NewBuilder creates a script builder. generator may be nil.
func NewBuilder(station config.StationConfig, language string, generator Generator, log logging.Logger) *Builder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Builder{
		station:   station,
		language:  language,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

// Build produces one script per definition and appends them to a fresh
// store validated against the same definitions.
func (b *Builder) Build(ctx context.Context, defs []broadcast.SegmentDefinition, sources []broadcast.SourceItem) (*broadcast.ScriptStore, error) {
	store := broadcast.NewScriptStore(defs)
	gctx := Context{
		Station:  b.station,
		Language: b.language,
		Sources:  sources,
	}

	for _, def := range defs {
		text := b.textFor(ctx, def, gctx)
		gctx.PriorTexts = append(gctx.PriorTexts, text)

		script := broadcast.Script{
			SegmentID: def.Name,
			Text:      text,
		}
		if story := gctx.Story(def); story != nil {
			script.Headline = story.Title
		}

		if err := store.Append(script); err != nil {
			return nil, fmt.Errorf("appending script for %s: %w", def.Name, err)
		}
	}

	return store, nil
}

// textFor asks the generator for the segment text, falling back to the
// template on any failure.
func (b *Builder) textFor(ctx context.Context, def broadcast.SegmentDefinition, gctx Context) string {
	if b.generator != nil {
		text, err := b.generator.Generate(ctx, def, gctx)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		b.log.Warn("script generation failed, using template",
			logging.F("segment", def.Name),
			logging.Err(err))
	}
	return b.template(def, gctx)
}

// template is the deterministic fallback narration for a segment.
func (b *Builder) template(def broadcast.SegmentDefinition, gctx Context) string {
	switch def.Type {
	case broadcast.TypeOpening:
		return fmt.Sprintf("Good %s, and welcome to %s. I'm %s, bringing you the latest from %s.",
			b.timeOfDay(), b.station.StationName, b.station.AnchorName, b.station.Location)

	case broadcast.TypeSummary:
		if len(gctx.Sources) == 0 {
			return "Here is what we are following tonight."
		}
		titles := make([]string, 0, len(gctx.Sources))
		for _, item := range gctx.Sources {
			titles = append(titles, item.Title)
		}
		return "Coming up: " + strings.Join(titles, ". ") + "."

	case broadcast.TypeHeadlineOpening:
		return "First, a look at the headlines."

	case broadcast.TypeHeadline:
		if story := gctx.Story(def); story != nil {
			return ensureSentence(story.Title)
		}
		return fmt.Sprintf("Headline %d.", def.SourceIndex)

	case broadcast.TypeNews:
		if story := gctx.Story(def); story != nil {
			if strings.TrimSpace(story.Body) != "" {
				return strings.TrimSpace(story.Body)
			}
			return ensureSentence(story.Title)
		}
		return fmt.Sprintf("More on story %d as it develops.", def.SourceIndex)

	case broadcast.TypeClosing:
		return fmt.Sprintf("That's all from %s for now. I'm %s. Thank you for watching, and have a good %s.",
			b.station.StationName, b.station.AnchorName, b.timeOfDay())

	default:
		return ensureSentence(def.ContentFocus)
	}
}

// timeOfDay maps the broadcast-local clock to a greeting word.
func (b *Builder) timeOfDay() string {
	now := b.now()
	if b.station.Timezone != "" {
		if loc, err := time.LoadLocation(b.station.Timezone); err == nil {
			now = now.In(loc)
		}
	}
	switch h := now.Hour(); {
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

func ensureSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
