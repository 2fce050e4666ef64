package anchor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// recordingRunner records which jobs ran and fails the ones it's told to.
type recordingRunner struct {
	mu   sync.Mutex
	ran  []string
	fail map[string]bool
}

func (r *recordingRunner) Run(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, job.SegmentID)
	if r.fail[job.SegmentID] {
		return errors.New("render exploded")
	}
	return nil
}

func enqueueAll(t *testing.T, q Queue, segments ...string) {
	t.Helper()
	for _, id := range segments {
		require.NoError(t, q.Enqueue(context.Background(), Job{
			ID:         uuid.NewString(),
			SegmentID:  id,
			AudioPath:  "audio/" + id + ".mp3",
			OutputPath: "anchor/" + id + ".mp4",
		}))
	}
}

func TestPoolProcessesAllJobs(t *testing.T) {
	q := NewMemoryQueue(8)
	runner := &recordingRunner{}
	enqueueAll(t, q, "news_1", "news_2", "news_3")
	require.NoError(t, q.Close())

	stats := NewPool(q, runner, 2, logging.NewNopLogger()).Run(context.Background())

	assert.Equal(t, int64(3), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.ElementsMatch(t, []string{"news_1", "news_2", "news_3"}, runner.ran)
}

func TestPoolFailedJobDoesNotStopSiblings(t *testing.T) {
	q := NewMemoryQueue(8)
	runner := &recordingRunner{fail: map[string]bool{"news_2": true}}
	enqueueAll(t, q, "news_1", "news_2", "news_3")
	require.NoError(t, q.Close())

	stats := NewPool(q, runner, 2, logging.NewNopLogger()).Run(context.Background())

	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Len(t, runner.ran, 3, "all jobs attempted despite the failure")
}

func TestPoolStopsOnContextCancel(t *testing.T) {
	q := NewMemoryQueue(8)
	runner := &recordingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Stats, 1)
	go func() {
		done <- NewPool(q, runner, 2, logging.NewNopLogger()).Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancellation")
	}
}

func TestMemoryQueueDrainsAfterClose(t *testing.T) {
	q := NewMemoryQueue(4)
	enqueueAll(t, q, "news_1")
	require.NoError(t, q.Close())

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "news_1", job.SegmentID)

	_, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestExecRunnerPlaceholderSubstitution(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner("true {audio} {face} {output}", "faces/anchor.png")

	err := r.Run(context.Background(), Job{
		SegmentID:  "news_1",
		AudioPath:  "audio/news_1.mp3",
		OutputPath: dir + "/news_1.mp4",
	})
	assert.NoError(t, err)
}

func TestExecRunnerNoCommand(t *testing.T) {
	r := NewExecRunner("", "")
	err := r.Run(context.Background(), Job{SegmentID: "news_1"})
	assert.Error(t, err)
}
