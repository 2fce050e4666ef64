package broadcast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
)

// ScriptStore collects generated scripts for a run. Scripts are validated
// against the active definition set on append; emission sorts by
// display_order with insertion order breaking ties.
type ScriptStore struct {
	defs    map[string]SegmentDefinition
	scripts []Script
}

// NewScriptStore creates a store validating against the given definitions.
func NewScriptStore(defs []SegmentDefinition) *ScriptStore {
	byName := make(map[string]SegmentDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	return &ScriptStore{defs: byName}
}

// Append validates and stores a script. The script's segment_id must name a
// definition in the active set; its display_order and type fields are
// stamped from that definition.
func (s *ScriptStore) Append(script Script) error {
	def, ok := s.defs[script.SegmentID]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownSegment, script.SegmentID)
	}

	script.SegmentType = def.Type
	script.DisplayOrder = def.DisplayOrder
	if script.DisplayName == "" {
		script.DisplayName = def.DisplayName
	}
	if script.SourceIndex == 0 {
		script.SourceIndex = def.SourceIndex
	}

	s.scripts = append(s.scripts, script)
	return nil
}

// Len returns the number of stored scripts.
func (s *ScriptStore) Len() int {
	return len(s.scripts)
}

// Scripts returns the stored scripts sorted by display_order. The sort is
// stable so scripts sharing an order keep their insertion order.
func (s *ScriptStore) Scripts() []Script {
	out := make([]Script, len(s.scripts))
	copy(out, s.scripts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// SaveScripts persists scripts as a JSON array using an atomic replace.
func SaveScripts(path string, scripts []Script) error {
	return writeJSON(path, scripts)
}

// LoadScripts reads a persisted script list.
func LoadScripts(path string) ([]Script, error) {
	var scripts []Script
	if err := readJSON(path, &scripts); err != nil {
		return nil, err
	}
	return scripts, nil
}

// SaveRendered persists rendered segments as a JSON array using an atomic
// replace.
func SaveRendered(path string, segments []RenderedSegment) error {
	return writeJSON(path, segments)
}

// LoadRendered reads a persisted rendered segment list.
func LoadRendered(path string) ([]RenderedSegment, error) {
	var segments []RenderedSegment
	if err := readJSON(path, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// LoadSources reads the collected source items file.
func LoadSources(path string) ([]SourceItem, error) {
	var items []SourceItem
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// writeJSON marshals v and replaces path atomically via a temp file rename,
// so a concurrent reader never observes a partial file.
func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// readJSON unmarshals path into v.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
