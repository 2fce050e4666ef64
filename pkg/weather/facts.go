// Package weather produces the weather block of the broadcast from
// structured facts returned by an extraction collaborator.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HourlyFact is one point of the hourly forecast series.
type HourlyFact struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
}

// Facts are the structured weather facts for a location.
type Facts struct {
	Temperature   float64      `json:"temperature"`
	FeelsLike     float64      `json:"feels_like"`
	High          float64      `json:"high"`
	Low           float64      `json:"low"`
	Conditions    string       `json:"conditions"`
	WindSpeed     float64      `json:"wind_speed"`
	WindDirection string       `json:"wind_direction"`
	Humidity      int          `json:"humidity"`
	Hourly        []HourlyFact `json:"hourly,omitempty"`
}

// Extractor returns structured weather facts for a source.
type Extractor interface {
	Extract(ctx context.Context, sourceURL, locationHint string) (*Facts, error)
}

// HTTPExtractor fetches facts from a JSON endpoint.
type HTTPExtractor struct {
	client *http.Client
}

// NewHTTPExtractor creates an extractor with a bounded request timeout.
func NewHTTPExtractor() *HTTPExtractor {
	return &HTTPExtractor{client: &http.Client{Timeout: 30 * time.Second}}
}

func (e *HTTPExtractor) Extract(ctx context.Context, sourceURL, locationHint string) (*Facts, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parsing weather source url: %w", err)
	}
	if locationHint != "" {
		q := u.Query()
		q.Set("location", locationHint)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling weather source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("weather source returned %d: %s", resp.StatusCode, string(body))
	}

	var facts Facts
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return nil, fmt.Errorf("parsing weather facts: %w", err)
	}
	return &facts, nil
}
