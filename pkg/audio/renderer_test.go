package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

// fakeSynth counts vendor calls and returns canned audio.
type fakeSynth struct {
	calls int
	err   error
	audio []byte
	last  string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	f.last = text
	if f.err != nil {
		return nil, f.err
	}
	if f.audio != nil {
		return f.audio, nil
	}
	return []byte("fake-mp3-bytes"), nil
}

// fakeProber returns a fixed duration without touching ffprobe.
type fakeProber struct {
	duration float64
	err      error
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	return f.duration, f.err
}

func script(id, text string) broadcast.Script {
	return broadcast.Script{
		SegmentType: broadcast.TypeNews,
		SegmentID:   id,
		Text:        text,
	}
}

func TestRenderMeasuresDuration(t *testing.T) {
	synth := &fakeSynth{}
	r := NewRenderer(synth, &fakeProber{duration: 12.48}, t.TempDir(), nil, logging.NewNopLogger())

	seg, err := r.Render(context.Background(), script("news_1", "some narration"))
	require.NoError(t, err)

	assert.Equal(t, 12.48, seg.Duration, "duration comes from the prober, never the vendor")
	assert.Equal(t, r.AssetPath("news_1"), seg.AudioRef)
	assert.Equal(t, 1, synth.calls)
}

func TestRenderCacheHitSkipsVendor(t *testing.T) {
	synth := &fakeSynth{}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	sc := script("news_1", "unchanged narration")
	_, err := r.Render(context.Background(), sc)
	require.NoError(t, err)
	require.Equal(t, 1, synth.calls)

	seg, err := r.Render(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, 1, synth.calls, "second render of unchanged text must not call the vendor")
	assert.Equal(t, 5.0, seg.Duration)
}

func TestRenderEditedTextInvalidatesCache(t *testing.T) {
	synth := &fakeSynth{}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	_, err := r.Render(context.Background(), script("news_1", "original"))
	require.NoError(t, err)

	_, err = r.Render(context.Background(), script("news_1", "edited"))
	require.NoError(t, err)
	assert.Equal(t, 2, synth.calls)
}

func TestRenderAppliesReplacements(t *testing.T) {
	synth := &fakeSynth{}
	replacements := map[string]string{"km/h": "kilometers per hour"}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), replacements, logging.NewNopLogger())

	_, err := r.Render(context.Background(), script("card-wind", "gusts up to 40 km/h"))
	require.NoError(t, err)
	assert.Equal(t, "gusts up to 40 kilometers per hour", synth.last)
}

func TestRenderEmptyScript(t *testing.T) {
	synth := &fakeSynth{}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	_, err := r.Render(context.Background(), script("news_1", "   "))
	require.Error(t, err)
	assert.Equal(t, 0, synth.calls)
}

func TestRenderEmptyVendorAudio(t *testing.T) {
	synth := &fakeSynth{audio: []byte{}}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	_, err := r.Render(context.Background(), script("news_1", "text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty audio")
}

func TestRenderAllAccumulatesFailures(t *testing.T) {
	synth := &fakeSynth{}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	scripts := []broadcast.Script{
		script("news_1", "good story"),
		script("news_2", ""), // fails: empty script
		script("news_3", "another good story"),
	}

	rendered, failures := r.RenderAll(context.Background(), scripts)

	assert.Len(t, rendered, 2, "one bad story must not block the other two")
	require.Len(t, failures, 1)
	assert.Equal(t, "news_2", failures[0].SegmentID)
	assert.Equal(t, apperrors.CodeEmptyScript, failures[0].Code)
}

func TestRenderAllVendorDown(t *testing.T) {
	synth := &fakeSynth{err: errors.New("dial tcp: connection refused")}
	r := NewRenderer(synth, &fakeProber{duration: 5.0}, t.TempDir(), nil, logging.NewNopLogger())

	rendered, failures := r.RenderAll(context.Background(), []broadcast.Script{
		script("news_1", "story"),
	})

	assert.Empty(t, rendered)
	require.Len(t, failures, 1)
	assert.Equal(t, apperrors.CodeVendorUnavailable, failures[0].Code)
	assert.True(t, failures[0].Retryable())
}
