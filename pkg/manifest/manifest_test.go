package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
	"github.com/nexcaster/newscast-cli/pkg/timeline"
)

func builtTimeline(t *testing.T) []broadcast.TimedSegment {
	t.Helper()
	segments := []broadcast.RenderedSegment{
		{
			Script:   broadcast.Script{SegmentType: broadcast.TypeOpening, SegmentID: "opening_greeting", Text: "good evening", DisplayOrder: 0},
			AudioRef: "audio/opening_greeting.mp3",
			Duration: 9.357,
		},
		{
			Script:   broadcast.Script{SegmentType: broadcast.TypeNews, SegmentID: "news_1", Headline: "Bridge reopens", Text: "crews reopened...", DisplayOrder: 1, SourceIndex: 1},
			AudioRef: "audio/news_1.mp3",
			Duration: 24.102,
		},
	}
	timed, err := timeline.Build(segments, 1.0)
	require.NoError(t, err)

	timed[1].Media = []broadcast.MediaAttachment{
		{Kind: "image", AssetRef: "media/bridge.jpg", Role: "news_image", SourceIndex: 1},
	}
	return timed
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	in := New(builtTimeline(t), "en-US", "newsroom-1")
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, in.TotalDuration, out.TotalDuration)
	assert.Equal(t, in.SegmentCount, out.SegmentCount)
	require.Len(t, out.Segments, len(in.Segments))
	for i := range in.Segments {
		assert.Equal(t, in.Segments[i].DisplayOrder, out.Segments[i].DisplayOrder)
		assert.Equal(t, in.Segments[i].Start, out.Segments[i].Start)
		assert.Equal(t, in.Segments[i].End, out.Segments[i].End)
	}
	assert.Equal(t, in.Segments[1].Media, out.Segments[1].Media)
}

func TestManifestMetadata(t *testing.T) {
	timed := builtTimeline(t)
	m := New(timed, "en-US", "newsroom-1")

	assert.Equal(t, 2, m.SegmentCount)
	assert.Equal(t, timed[1].End, m.TotalDuration)
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestManifestEmptyTimeline(t *testing.T) {
	m := New(nil, "en-US", "")
	assert.Equal(t, 0, m.SegmentCount)
	assert.Equal(t, 0.0, m.TotalDuration)
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, apperrors.ErrManifestNotFound)
}

func TestSaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	first := New(builtTimeline(t), "en-US", "v1")
	require.NoError(t, Save(path, first))

	second := New(builtTimeline(t)[:1], "en-US", "v2")
	require.NoError(t, Save(path, second))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", out.Voice)
	assert.Equal(t, 1, out.SegmentCount)
}
