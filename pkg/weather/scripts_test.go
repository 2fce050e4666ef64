package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
)

func testFacts() *Facts {
	return &Facts{
		Temperature:   18,
		FeelsLike:     16,
		High:          21,
		Low:           11,
		Conditions:    "Partly Cloudy",
		WindSpeed:     24,
		WindDirection: "northwest",
		Humidity:      62,
		Hourly: []HourlyFact{
			{Time: "6 PM", Temperature: 17, Conditions: "Cloudy"},
			{Time: "9 PM", Temperature: 14, Conditions: "Clear"},
		},
	}
}

func TestBuildScriptsCoversEveryCard(t *testing.T) {
	defs, err := broadcast.WeatherDefinitions(broadcast.Options{})
	require.NoError(t, err)

	store, err := BuildScripts(defs, testFacts(), "Bayview")
	require.NoError(t, err)

	scripts := store.Scripts()
	require.Len(t, scripts, len(defs))
	for _, s := range scripts {
		assert.NotEmpty(t, s.Text, "card %s has empty script", s.SegmentID)
	}

	// Emission follows the card display order.
	for i := 1; i < len(scripts); i++ {
		assert.Greater(t, scripts[i].DisplayOrder, scripts[i-1].DisplayOrder)
	}
}

func TestCardTextUsesFacts(t *testing.T) {
	f := testFacts()

	assert.Contains(t, cardText(broadcast.TypeCardTemperature, f, "Bayview"), "21")
	assert.Contains(t, cardText(broadcast.TypeCardTemperature, f, "Bayview"), "11")
	assert.Contains(t, cardText(broadcast.TypeCardWind, f, "Bayview"), "northwest")
	assert.Contains(t, cardText(broadcast.TypeCardFeelsLike, f, "Bayview"), "62 percent")
	assert.Contains(t, cardText(broadcast.TypeCardHourly, f, "Bayview"), "6 PM")
	assert.Contains(t, cardText(broadcast.TypeWeatherOverview, f, "Bayview"), "partly cloudy")
}

func TestHTTPExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bayview", r.URL.Query().Get("location"))
		json.NewEncoder(w).Encode(testFacts())
	}))
	defer srv.Close()

	facts, err := NewHTTPExtractor().Extract(context.Background(), srv.URL, "Bayview")
	require.NoError(t, err)
	assert.Equal(t, 18.0, facts.Temperature)
	assert.Len(t, facts.Hourly, 2)
}

func TestHTTPExtractorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scrape failed", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPExtractor().Extract(context.Background(), srv.URL, "")
	assert.Error(t, err)
}
