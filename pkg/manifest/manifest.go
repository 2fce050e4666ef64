// Package manifest persists the final timed broadcast description consumed
// by the player.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

// Manifest is the persisted hand-off contract to the player: the ordered,
// timestamped segment sequence plus run-level metadata. Its shape is stable
// across merges; merging only changes content and order.
type Manifest struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	Language      string                   `json:"language,omitempty"`
	Voice         string                   `json:"voice,omitempty"`
	TotalDuration float64                  `json:"total_duration"`
	SegmentCount  int                      `json:"segment_count"`
	Segments      []broadcast.TimedSegment `json:"segments"`
}

// New assembles a manifest from a built timeline. Segments are assumed to
// arrive already ordered by the timeline builder.
func New(segments []broadcast.TimedSegment, language, voice string) *Manifest {
	var total float64
	if len(segments) > 0 {
		total = segments[len(segments)-1].End
	}
	return &Manifest{
		GeneratedAt:   time.Now().UTC(),
		Language:      language,
		Voice:         voice,
		TotalDuration: total,
		SegmentCount:  len(segments),
		Segments:      segments,
	}
}

// Save writes the manifest with an atomic replace, so a concurrent reader
// never observes a half-written file.
func Save(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

// Load reads a persisted manifest. A missing file is ErrManifestNotFound.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
