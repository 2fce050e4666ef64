package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the full-pipeline command.
func NewRunCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: scripts, render, build",
		Long: `Execute the pipeline steps in order and stop at the first failing
step. The anchor step runs only when a render command is configured.
Each step records its own run log entry and step metrics, exactly as if
it had been invoked on its own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			type pipelineStep struct {
				name string
				fn   func(context.Context) (*stepSummary, error)
			}

			steps := []pipelineStep{
				{"scripts", func(ctx context.Context) (*stepSummary, error) { return runScriptsStep(ctx, deps) }},
				{"render", func(ctx context.Context) (*stepSummary, error) { return runRenderStep(ctx, deps) }},
			}
			if deps.Config.Anchor.Command != "" {
				// Anchor runs before build so the manifest picks the videos up.
				steps = append(steps, pipelineStep{"anchor", func(ctx context.Context) (*stepSummary, error) {
					return runAnchorStep(ctx, deps)
				}})
			}
			steps = append(steps, pipelineStep{"build", func(ctx context.Context) (*stepSummary, error) {
				return runBuildStep(ctx, deps)
			}})

			for _, step := range steps {
				if err := runStep(cmd, deps, step.name, step.fn); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&scriptsStories, "stories", 0, "number of stories (default: one per source item)")
	cmd.Flags().BoolVar(&scriptsNoBookends, "no-bookends", false, "omit the opening and closing segments")
	cmd.Flags().BoolVar(&scriptsSkipWeather, "skip-weather", false, "skip the weather block even when enabled")
	cmd.Flags().BoolVar(&anchorForce, "force", false, "re-render segments that already have a video")

	return cmd
}
