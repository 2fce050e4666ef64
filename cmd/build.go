package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/manifest"
	"github.com/nexcaster/newscast-cli/pkg/media"
	"github.com/nexcaster/newscast-cli/pkg/observability"
	"github.com/nexcaster/newscast-cli/pkg/timeline"
)

// NewBuildCommand creates the build step command.
func NewBuildCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the timed manifest from rendered segments",
		Long: `Compute absolute start/end times for all rendered segments, splice
in the weather block after the last news story when one was rendered,
attach media, and write the manifest atomically. The whole timeline is
recomputed from scratch on every build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, deps, "build", func(ctx context.Context) (*stepSummary, error) {
				return runBuildStep(ctx, deps)
			})
		},
	}
}

func runBuildStep(ctx context.Context, deps *Deps) (*stepSummary, error) {
	cfg := deps.Config

	rendered, err := broadcast.LoadRendered(cfg.Paths.RenderedPath)
	if err != nil {
		return nil, fmt.Errorf("loading rendered segments (run 'newscast render' first): %w", err)
	}

	timed, err := timeline.Build(rendered, cfg.Pause)
	if err != nil {
		return nil, err
	}

	// Merge the independently rendered weather block, then rebuild so the
	// non-overlap invariant holds across the splice.
	weatherRendered, err := broadcast.LoadRendered(cfg.Paths.WeatherRenderedPath())
	if err == nil && len(weatherRendered) > 0 {
		weatherTimed, err := timeline.Build(weatherRendered, cfg.Pause)
		if err != nil {
			return nil, err
		}
		merged := timeline.Merge(timed, weatherTimed,
			timeline.AfterLastMatching(timeline.TypeIs(broadcast.TypeNews)), deps.Logger)
		timed, err = timeline.Build(merged, cfg.Pause)
		if err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	sources, err := broadcast.LoadSources(cfg.Paths.SourcesPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	mapper := media.NewMapper(cfg.Paths.MediaDir, sources, deps.Logger)
	timed = mapper.AttachAll(timed)
	attachAnchorVideos(timed, cfg.Paths.AnchorDir, deps.Logger)

	m := manifest.New(timed, cfg.Language, cfg.TTS.VoiceID)
	if err := manifest.Save(cfg.Paths.ManifestPath, m); err != nil {
		return nil, err
	}
	observability.ManifestSegments.Set(float64(m.SegmentCount))

	return &stepSummary{
		Segments: m.SegmentCount,
		Total:    m.TotalDuration,
		Output:   cfg.Paths.ManifestPath,
	}, nil
}

// attachAnchorVideos points segments at their talking-head renders where
// one exists. A missing render just leaves the segment without video.
func attachAnchorVideos(timed []broadcast.TimedSegment, anchorDir string, log logging.Logger) {
	for i := range timed {
		path := filepath.Join(anchorDir, timed[i].SegmentID+".mp4")
		if _, err := os.Stat(path); err == nil {
			timed[i].AnchorVideo = path
		} else {
			log.Debug("no anchor video for segment",
				logging.F("segment_id", timed[i].SegmentID))
		}
	}
}
