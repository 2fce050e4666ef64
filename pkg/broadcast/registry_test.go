package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

func TestListDefinitionsOrdering(t *testing.T) {
	defs, err := ListDefinitions(Options{IncludeBookends: true, Stories: 2})
	require.NoError(t, err)

	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"opening_greeting", "news_summary", "headline_opening",
		"headline_1", "headline_2", "news_1", "news_2", "closing_remarks",
	}, names)

	// Ascending display_order, closing parked at the high end so merged
	// blocks always land before it.
	for i := 1; i < len(defs); i++ {
		assert.Greater(t, defs[i].DisplayOrder, defs[i-1].DisplayOrder)
	}
	assert.Equal(t, 999, defs[len(defs)-1].DisplayOrder)
}

func TestListDefinitionsWithoutBookends(t *testing.T) {
	defs, err := ListDefinitions(Options{Stories: 1})
	require.NoError(t, err)

	for _, d := range defs {
		assert.NotEqual(t, TypeOpening, d.Type)
		assert.NotEqual(t, TypeClosing, d.Type)
	}
}

func TestListDefinitionsBriefDurations(t *testing.T) {
	full, err := ListDefinitions(Options{IncludeBookends: true, Stories: 1})
	require.NoError(t, err)
	brief, err := ListDefinitions(Options{IncludeBookends: true, Stories: 1, Brief: true})
	require.NoError(t, err)

	require.Equal(t, len(full), len(brief))
	for i := range full {
		assert.Equal(t, full[i].Name, brief[i].Name)
		assert.Less(t, brief[i].TargetDuration, full[i].TargetDuration,
			"brief duration for %s", full[i].Name)
	}
}

func TestListDefinitionsDefaultStories(t *testing.T) {
	defs, err := ListDefinitions(Options{})
	require.NoError(t, err)

	var stories int
	for _, d := range defs {
		if d.Type == TypeNews {
			stories++
		}
	}
	assert.Equal(t, DefaultStories, stories)
}

func TestListDefinitionsNegativeStories(t *testing.T) {
	_, err := ListDefinitions(Options{Stories: -1})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestWeatherDefinitionsOrdering(t *testing.T) {
	defs, err := WeatherDefinitions(Options{})
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	assert.Equal(t, 100, defs[0].DisplayOrder)
	for i := 1; i < len(defs); i++ {
		assert.Equal(t, defs[i-1].DisplayOrder+1, defs[i].DisplayOrder)
	}
}

func TestWeatherDefinitionsBriefUsesCombinedCard(t *testing.T) {
	defs, err := WeatherDefinitions(Options{Brief: true})
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	assert.Equal(t, TypeWeatherCurrentOverview, defs[0].Type)
	full, err := WeatherDefinitions(Options{})
	require.NoError(t, err)
	assert.Greater(t, len(full), len(defs))
}

func TestDurationForUnknownType(t *testing.T) {
	_, err := DurationFor("interpretive_dance", false)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
