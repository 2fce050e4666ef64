package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/pkg/audio"
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// NewRenderCommand creates the render step command.
func NewRenderCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Synthesize per-segment audio and measure durations",
		Long: `Render every script to an audio asset through the configured TTS
vendor. Durations are measured from the asset with ffprobe, never taken
from the vendor. Unchanged segments are cache hits and skip the vendor
call, so re-runs don't re-spend TTS budget. Failed segments are excluded
and reported as a summary count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, deps, "render", func(ctx context.Context) (*stepSummary, error) {
				return runRenderStep(ctx, deps)
			})
		},
	}
}

func runRenderStep(ctx context.Context, deps *Deps) (*stepSummary, error) {
	cfg := deps.Config

	scripts, err := broadcast.LoadScripts(cfg.Paths.ScriptsPath)
	if err != nil {
		return nil, fmt.Errorf("loading scripts (run 'newscast scripts' first): %w", err)
	}

	synth, err := audio.NewSynthesizer(cfg.TTS, apiKeyFor(deps, cfg.TTS.Vendor))
	if err != nil {
		return nil, err
	}

	var replacements map[string]string
	if cfg.TTS.UseReplacements {
		replacements = cfg.TTS.Replacements
	}
	renderer := audio.NewRenderer(synth, audio.NewFFProbe(), cfg.Paths.AudioDir, replacements, deps.Logger)

	rendered, failures := renderer.RenderAll(ctx, scripts)
	if err := broadcast.SaveRendered(cfg.Paths.RenderedPath, rendered); err != nil {
		return nil, fmt.Errorf("saving rendered segments: %w", err)
	}

	failed := len(failures)

	// The weather block renders through the same path when present.
	weatherScripts, err := broadcast.LoadScripts(cfg.Paths.WeatherScriptsPath())
	if err == nil {
		weatherRendered, weatherFailures := renderer.RenderAll(ctx, weatherScripts)
		if err := broadcast.SaveRendered(cfg.Paths.WeatherRenderedPath(), weatherRendered); err != nil {
			return nil, fmt.Errorf("saving rendered weather segments: %w", err)
		}
		rendered = append(rendered, weatherRendered...)
		failed += len(weatherFailures)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if failed > 0 {
		deps.Logger.Warn("segments excluded from the broadcast",
			logging.F("excluded", failed))
	}

	return &stepSummary{
		Segments: len(rendered),
		Failed:   failed,
		Output:   cfg.Paths.RenderedPath,
	}, nil
}
