package anchor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/observability"
)

// Runner executes one render job.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// ExecRunner invokes an external lip-sync renderer per job. The configured
// command has {audio}, {face} and {output} placeholders substituted before
// execution.
type ExecRunner struct {
	command  string
	facePath string
}

// NewExecRunner creates a runner for the given command template.
func NewExecRunner(command, facePath string) *ExecRunner {
	return &ExecRunner{command: command, facePath: facePath}
}

func (r *ExecRunner) Run(ctx context.Context, job Job) error {
	if r.command == "" {
		return fmt.Errorf("no anchor render command configured")
	}

	expanded := strings.NewReplacer(
		"{audio}", job.AudioPath,
		"{face}", r.facePath,
		"{output}", job.OutputPath,
	).Replace(r.command)

	args := strings.Fields(expanded)
	if len(args) == 0 {
		return fmt.Errorf("anchor render command expanded to nothing")
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// Don't leave a partial render behind; the build step detects
		// missing outputs by file presence.
		os.Remove(job.OutputPath)
		return fmt.Errorf("renderer failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Stats summarize a pool run.
type Stats struct {
	Processed int64
	Failed    int64
}

// Pool runs render jobs from a queue across a fixed number of workers.
// Workers share no mutable state; a failed job leaves its segment without a
// video and the run continues.
type Pool struct {
	queue  Queue
	runner Runner
	size   int
	log    logging.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool of size workers.
func NewPool(queue Queue, runner Runner, size int, log logging.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Pool{queue: queue, runner: runner, size: size, log: log}
}

// Run consumes the queue until it closes or the context is done, then
// returns the counts.
func (p *Pool) Run(ctx context.Context) Stats {
	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			p.work(ctx, worker)
		}(i)
	}
	wg.Wait()

	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *Pool) work(ctx context.Context, worker int) {
	log := p.log.With(logging.F("worker", worker))
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, ErrQueueClosed) && !errors.Is(err, context.Canceled) {
				log.Error("dequeue failed", logging.Err(err))
			}
			return
		}

		log.Debug("rendering anchor video",
			logging.F("job_id", job.ID),
			logging.F("segment_id", job.SegmentID))

		if err := p.runner.Run(ctx, *job); err != nil {
			p.failed.Add(1)
			observability.AnchorJobs.WithLabelValues("failed").Inc()
			log.Error("anchor render failed",
				logging.F("segment_id", job.SegmentID),
				logging.Err(err))
			continue
		}
		p.processed.Add(1)
		observability.AnchorJobs.WithLabelValues("processed").Inc()
	}
}
