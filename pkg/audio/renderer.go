package audio

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/nexcaster/newscast-cli/pkg/broadcast"
	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/observability"
)

// Renderer turns scripts into audio assets. Re-rendering an unchanged
// segment is a cache hit: the asset is re-measured from disk and no vendor
// call is made, so iterative re-runs don't re-spend TTS budget.
type Renderer struct {
	synth        Synthesizer
	prober       Prober
	audioDir     string
	replacements map[string]string
	log          logging.Logger
}

// NewRenderer creates a renderer writing assets under audioDir. The
// replacement table (if non-nil) is applied to the narration text before
// synthesis, expanding abbreviations into their spoken form.
func NewRenderer(synth Synthesizer, prober Prober, audioDir string, replacements map[string]string, log logging.Logger) *Renderer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Renderer{
		synth:        synth,
		prober:       prober,
		audioDir:     audioDir,
		replacements: replacements,
		log:          log,
	}
}

// AssetPath returns where a segment's audio is stored.
func (r *Renderer) AssetPath(segmentID string) string {
	return filepath.Join(r.audioDir, segmentID+".mp3")
}

// hashPath is the content-hash sidecar next to the asset. The hash covers
// the post-replacement text, so edits invalidate the cache and no-op re-runs
// don't.
func (r *Renderer) hashPath(segmentID string) string {
	return r.AssetPath(segmentID) + ".hash"
}

// spokenText applies the replacement table to the narration.
func (r *Renderer) spokenText(text string) string {
	for literal, spoken := range r.replacements {
		text = strings.ReplaceAll(text, literal, spoken)
	}
	return text
}

func contentHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Render synthesizes one script, or reuses the cached asset when the
// content hash matches. The returned duration is always measured from the
// asset on disk.
func (r *Renderer) Render(ctx context.Context, script broadcast.Script) (*broadcast.RenderedSegment, error) {
	if strings.TrimSpace(script.Text) == "" {
		return nil, fmt.Errorf("empty script for segment %s", script.SegmentID)
	}

	text := r.spokenText(script.Text)
	hash := contentHash(text)
	assetPath := r.AssetPath(script.SegmentID)

	if r.cacheHit(assetPath, script.SegmentID, hash) {
		observability.RenderCacheHits.Inc()
		r.log.Debug("render cache hit", logging.F("segment_id", script.SegmentID))
	} else {
		audio, err := r.synth.Synthesize(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(audio) == 0 {
			return nil, fmt.Errorf("vendor returned empty audio for segment %s", script.SegmentID)
		}
		if err := r.writeAsset(assetPath, audio); err != nil {
			return nil, err
		}
		if err := os.WriteFile(r.hashPath(script.SegmentID), []byte(hash), 0644); err != nil {
			return nil, fmt.Errorf("writing hash sidecar: %w", err)
		}
	}

	duration, err := r.prober.Duration(ctx, assetPath)
	if err != nil {
		return nil, err
	}

	return &broadcast.RenderedSegment{
		Script:   script,
		AudioRef: assetPath,
		Duration: duration,
	}, nil
}

// cacheHit reports whether the asset exists and its sidecar matches the
// current content hash.
func (r *Renderer) cacheHit(assetPath, segmentID, hash string) bool {
	if _, err := os.Stat(assetPath); err != nil {
		return false
	}
	stored, err := os.ReadFile(r.hashPath(segmentID))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(stored)) == hash
}

// writeAsset writes audio bytes with a temp-file replace.
func (r *Renderer) writeAsset(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing audio asset: %w", err)
	}
	return nil
}

// RenderAll renders every script, accumulating failures instead of aborting
// the batch. Failed segments are excluded from the returned set; the caller
// reports the failure count.
func (r *Renderer) RenderAll(ctx context.Context, scripts []broadcast.Script) ([]broadcast.RenderedSegment, []*apperrors.RenderFailure) {
	var rendered []broadcast.RenderedSegment
	var failures []*apperrors.RenderFailure

	for _, script := range scripts {
		seg, err := r.Render(ctx, script)
		if err != nil {
			failure := apperrors.NewRenderFailure(script.SegmentType, script.SegmentID, err)
			r.log.Error("render failed, excluding segment",
				logging.F("segment_id", script.SegmentID),
				logging.F("code", string(failure.Code)),
				logging.Err(err))
			failures = append(failures, failure)
			observability.RenderFailures.WithLabelValues(string(failure.Code)).Inc()
			continue
		}
		rendered = append(rendered, *seg)
		observability.SegmentsRendered.Inc()
	}

	return rendered, failures
}
