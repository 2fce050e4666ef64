package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/pkg/anchor"
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// Anchor command flags.
var anchorForce bool

// NewAnchorCommand creates the anchor render step command.
func NewAnchorCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Render talking-head videos for rendered segments",
		Long: `Queue one render job per rendered segment and work the queue with a
fixed-size pool. Jobs whose output already exists are skipped unless
--force is set. A failed job leaves its segment without a video; the
build step detects that by file presence and the run continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, deps, "anchor", func(ctx context.Context) (*stepSummary, error) {
				return runAnchorStep(ctx, deps)
			})
		},
	}

	cmd.Flags().BoolVar(&anchorForce, "force", false, "re-render segments that already have a video")

	return cmd
}

func runAnchorStep(ctx context.Context, deps *Deps) (*stepSummary, error) {
	cfg := deps.Config

	rendered, err := broadcast.LoadRendered(cfg.Paths.RenderedPath)
	if err != nil {
		return nil, fmt.Errorf("loading rendered segments (run 'newscast render' first): %w", err)
	}

	queue, err := newAnchorQueue(deps)
	if err != nil {
		return nil, err
	}
	defer queue.Close()

	queued := 0
	for _, seg := range rendered {
		output := filepath.Join(cfg.Paths.AnchorDir, seg.SegmentID+".mp4")
		if !anchorForce {
			if _, err := os.Stat(output); err == nil {
				deps.Logger.Debug("anchor video exists, skipping",
					logging.F("segment_id", seg.SegmentID))
				continue
			}
		}
		job := anchor.Job{
			ID:         uuid.NewString(),
			SegmentID:  seg.SegmentID,
			AudioPath:  seg.AudioRef,
			OutputPath: output,
		}
		if err := queue.Enqueue(ctx, job); err != nil {
			return nil, fmt.Errorf("queueing job for %s: %w", seg.SegmentID, err)
		}
		queued++
	}
	// All jobs are in; the pool drains the queue and stops.
	queue.Finish()

	runner := anchor.NewExecRunner(cfg.Anchor.Command, cfg.Anchor.FacePath)
	pool := anchor.NewPool(queue, runner, cfg.Anchor.Workers, deps.Logger)
	stats := pool.Run(ctx)

	deps.Logger.Info("anchor render finished",
		logging.F("queued", queued),
		logging.F("processed", stats.Processed),
		logging.F("failed", stats.Failed))

	return &stepSummary{
		Segments: int(stats.Processed),
		Failed:   int(stats.Failed),
		Output:   cfg.Paths.AnchorDir,
	}, nil
}

// newAnchorQueue selects the Redis-backed queue when configured, otherwise
// the in-process one.
func newAnchorQueue(deps *Deps) (anchor.Queue, error) {
	r := deps.Config.Anchor.Redis
	if r.Addr == "" {
		return anchor.NewMemoryQueue(256), nil
	}
	return anchor.NewRedisQueue(r.Addr, r.Password, r.DB, r.Queue)
}
