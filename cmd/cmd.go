// Package cmd provides the CLI commands for the newscast tool.
package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/nexcaster/newscast-cli/config"
	"github.com/nexcaster/newscast-cli/credentials"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/observability"
	"github.com/nexcaster/newscast-cli/pkg/runlog"
)

// Deps holds the shared dependencies for all step commands.
type Deps struct {
	Config      *config.Config
	Logger      logging.Logger
	Credentials *credentials.Store

	// Recorder is nil when the run log is not configured.
	Recorder *runlog.Recorder

	// RunID ties all steps of one invocation together in the run log.
	RunID string
}

// NewDeps creates production dependencies around a loaded configuration.
func NewDeps(cfg *config.Config, log logging.Logger) *Deps {
	return &Deps{
		Config:      cfg,
		Logger:      log,
		Credentials: credentials.NewStore(),
		RunID:       uuid.NewString(),
	}
}

// stepSummary is the machine-readable result of one pipeline step.
type stepSummary struct {
	Step       string  `json:"step" yaml:"step"`
	Segments   int     `json:"segments" yaml:"segments"`
	Failed     int     `json:"failed,omitempty" yaml:"failed,omitempty"`
	DurationMs int64   `json:"duration_ms" yaml:"duration_ms"`
	Total      float64 `json:"total_duration,omitempty" yaml:"total_duration,omitempty"`
	Output     string  `json:"output,omitempty" yaml:"output,omitempty"`
}

// tracer spans each pipeline step.
func tracer() trace.Tracer {
	return otel.Tracer("newscast")
}

// runStep wraps a step with a span, a duration metric, and best-effort run
// log recording, then prints the summary.
func runStep(cmd *cobra.Command, deps *Deps, name string, fn func(ctx context.Context) (*stepSummary, error)) error {
	ctx, span := tracer().Start(cmd.Context(), "step."+name)
	defer span.End()
	span.SetAttributes(attribute.String("run_id", deps.RunID))

	start := time.Now()
	summary, err := fn(ctx)
	observability.ObserveStep(name, start)

	if deps.Recorder != nil {
		entry := runlog.Entry{
			RunID:      deps.RunID,
			Step:       name,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    err == nil,
		}
		if err != nil {
			entry.Error = err.Error()
		}
		if summary != nil {
			entry.SegmentCount = summary.Segments
			entry.FailedCount = summary.Failed
		}
		if recErr := deps.Recorder.Record(ctx, entry); recErr != nil {
			deps.Logger.Warn("recording run history failed", logging.Err(recErr))
		}
	}

	if err != nil {
		return err
	}

	summary.Step = name
	summary.DurationMs = time.Since(start).Milliseconds()
	return printSummary(cmd, deps.Config.OutputFormat, summary)
}

// printSummary writes the step result in the configured output format.
func printSummary(cmd *cobra.Command, format config.OutputFormat, s *stepSummary) error {
	switch format {
	case config.OutputFormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
	case config.OutputFormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
	default:
		cmd.Printf("%s: %d segments", s.Step, s.Segments)
		if s.Failed > 0 {
			cmd.Printf(", %d excluded", s.Failed)
		}
		if s.Total > 0 {
			cmd.Printf(", %.1fs total", s.Total)
		}
		if s.Output != "" {
			cmd.Printf(" -> %s", s.Output)
		}
		cmd.Printf(" (%dms)\n", s.DurationMs)
	}
	return nil
}

// apiKeyFor fetches the vendor key, downgrading a miss to a warning so
// cache-only re-runs work without credentials.
func apiKeyFor(deps *Deps, vendor string) string {
	key, err := deps.Credentials.Get(vendor)
	if err != nil {
		deps.Logger.Warn("no API key available, vendor calls will fail",
			logging.F("vendor", vendor),
			logging.Err(err))
		return ""
	}
	return key
}
