package scripts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcaster/newscast-cli/config"
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	"github.com/nexcaster/newscast-cli/pkg/logging"
)

var testStation = config.StationConfig{
	StationName: "Bayview Nine News",
	Location:    "Bayview",
	AnchorName:  "Dana Reyes",
	Timezone:    "UTC",
}

// fixedGenerator returns one canned text, or an error.
type fixedGenerator struct {
	text string
	err  error
}

func (g *fixedGenerator) Generate(ctx context.Context, def broadcast.SegmentDefinition, gctx Context) (string, error) {
	return g.text, g.err
}

func testDefs(t *testing.T) []broadcast.SegmentDefinition {
	t.Helper()
	defs, err := broadcast.ListDefinitions(broadcast.Options{IncludeBookends: true, Stories: 2})
	require.NoError(t, err)
	return defs
}

func testSources() []broadcast.SourceItem {
	return []broadcast.SourceItem{
		{Title: "Harbor bridge reopens", Body: "Crews reopened the harbor bridge this morning after repairs."},
		{Title: "Council approves budget", Body: "The city council approved next year's budget late last night."},
	}
}

func TestBuildOneScriptPerDefinition(t *testing.T) {
	b := NewBuilder(testStation, "en-US", nil, logging.NewNopLogger())

	store, err := b.Build(context.Background(), testDefs(t), testSources())
	require.NoError(t, err)

	scripts := store.Scripts()
	assert.Len(t, scripts, len(testDefs(t)))
	for _, s := range scripts {
		assert.NotEmpty(t, s.Text, "segment %s has empty script", s.SegmentID)
	}
}

func TestBuildUsesGeneratorWhenAvailable(t *testing.T) {
	gen := &fixedGenerator{text: "Generated narration."}
	b := NewBuilder(testStation, "en-US", gen, logging.NewNopLogger())

	store, err := b.Build(context.Background(), testDefs(t), testSources())
	require.NoError(t, err)

	for _, s := range store.Scripts() {
		assert.Equal(t, "Generated narration.", s.Text)
	}
}

func TestBuildFallsBackOnGeneratorError(t *testing.T) {
	gen := &fixedGenerator{err: errors.New("collaborator unreachable")}
	b := NewBuilder(testStation, "en-US", gen, logging.NewNopLogger())

	store, err := b.Build(context.Background(), testDefs(t), testSources())
	require.NoError(t, err, "generation failure must not abort the batch")

	scripts := store.Scripts()
	require.NotEmpty(t, scripts)
	assert.Contains(t, scripts[0].Text, "Bayview Nine News")
}

func TestTemplateStoryScripts(t *testing.T) {
	b := NewBuilder(testStation, "en-US", nil, logging.NewNopLogger())

	store, err := b.Build(context.Background(), testDefs(t), testSources())
	require.NoError(t, err)

	byID := map[string]broadcast.Script{}
	for _, s := range store.Scripts() {
		byID[s.SegmentID] = s
	}

	assert.Equal(t, "Harbor bridge reopens.", byID["headline_1"].Text)
	assert.Equal(t, "Harbor bridge reopens", byID["headline_1"].Headline)
	assert.Contains(t, byID["news_2"].Text, "city council approved")
	assert.Equal(t, 2, byID["news_2"].SourceIndex)
}

func TestGreetingByTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{8, "morning"},
		{14, "afternoon"},
		{21, "evening"},
	}

	for _, tt := range tests {
		b := NewBuilder(testStation, "en-US", nil, logging.NewNopLogger())
		b.now = func() time.Time {
			return time.Date(2026, 3, 10, tt.hour, 0, 0, 0, time.UTC)
		}

		store, err := b.Build(context.Background(), testDefs(t), testSources())
		require.NoError(t, err)

		opening := store.Scripts()[0]
		require.Equal(t, broadcast.TypeOpening, opening.SegmentType)
		assert.Contains(t, opening.Text, "Good "+tt.want)
	}
}
