package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/scripts"
	"github.com/nexcaster/newscast-cli/pkg/weather"
)

// Scripts command flags.
var (
	scriptsStories     int
	scriptsNoBookends  bool
	scriptsSkipWeather bool
)

// NewScriptsCommand creates the scripts step command.
func NewScriptsCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Generate narration scripts from collected sources",
		Long: `Build the segment plan from the definition registry and write one
narration script per segment. An LLM collaborator writes the text when
configured; otherwise deterministic templates built from the source
content are used. Weather card scripts are produced as a separate block
when the weather pipeline is enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, deps, "scripts", func(ctx context.Context) (*stepSummary, error) {
				return runScriptsStep(ctx, deps)
			})
		},
	}

	cmd.Flags().IntVar(&scriptsStories, "stories", 0, "number of stories (default: one per source item)")
	cmd.Flags().BoolVar(&scriptsNoBookends, "no-bookends", false, "omit the opening and closing segments")
	cmd.Flags().BoolVar(&scriptsSkipWeather, "skip-weather", false, "skip the weather block even when enabled")

	return cmd
}

func runScriptsStep(ctx context.Context, deps *Deps) (*stepSummary, error) {
	cfg := deps.Config

	sources, err := broadcast.LoadSources(cfg.Paths.SourcesPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		deps.Logger.Warn("no sources file, generating without stories",
			logging.F("path", cfg.Paths.SourcesPath))
		sources = nil
	}

	stories := scriptsStories
	if stories == 0 {
		stories = len(sources)
	}

	defs, err := broadcast.ListDefinitions(broadcast.Options{
		IncludeBookends: !scriptsNoBookends,
		Brief:           cfg.Brief,
		Stories:         stories,
	})
	if err != nil {
		return nil, err
	}

	var gen scripts.Generator
	if client := scripts.NewChatClient(cfg.LLM); client != nil {
		gen = client
	} else {
		deps.Logger.Info("no LLM endpoint configured, using script templates")
	}

	builder := scripts.NewBuilder(cfg.Station, cfg.Language, gen, deps.Logger)
	store, err := builder.Build(ctx, defs, sources)
	if err != nil {
		return nil, err
	}

	all := store.Scripts()
	if err := broadcast.SaveScripts(cfg.Paths.ScriptsPath, all); err != nil {
		return nil, fmt.Errorf("saving scripts: %w", err)
	}

	weatherCount, err := buildWeatherScripts(ctx, deps)
	if err != nil {
		return nil, err
	}

	return &stepSummary{
		Segments: len(all) + weatherCount,
		Output:   cfg.Paths.ScriptsPath,
	}, nil
}

// buildWeatherScripts produces the weather block scripts when the weather
// pipeline is enabled. Extraction failures skip the block with a warning;
// the news broadcast still goes out.
func buildWeatherScripts(ctx context.Context, deps *Deps) (int, error) {
	cfg := deps.Config
	if !cfg.Weather.Enabled || scriptsSkipWeather {
		return 0, nil
	}

	facts, err := weather.NewHTTPExtractor().Extract(ctx, cfg.Weather.SourceURL, cfg.Weather.LocationHint)
	if err != nil {
		deps.Logger.Warn("weather extraction failed, skipping weather block", logging.Err(err))
		return 0, nil
	}

	defs, err := broadcast.WeatherDefinitions(broadcast.Options{Brief: cfg.Brief})
	if err != nil {
		return 0, err
	}

	store, err := weather.BuildScripts(defs, facts, cfg.Station.Location)
	if err != nil {
		return 0, err
	}

	all := store.Scripts()
	if err := broadcast.SaveScripts(cfg.Paths.WeatherScriptsPath(), all); err != nil {
		return 0, fmt.Errorf("saving weather scripts: %w", err)
	}
	return len(all), nil
}
