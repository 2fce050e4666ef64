package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexcaster/newscast-cli/config"
)

// Synthesizer turns narration text into raw audio bytes. The rest of the
// pipeline is vendor-agnostic; it only ever sees measured durations.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// defaultHTTPTimeout bounds a single synthesis call.
const defaultHTTPTimeout = 60 * time.Second

// NewSynthesizer returns the synthesizer for the configured vendor.
func NewSynthesizer(cfg config.TTSConfig, apiKey string) (Synthesizer, error) {
	client := &http.Client{Timeout: defaultHTTPTimeout}
	switch cfg.Vendor {
	case config.VendorElevenLabs:
		return &ElevenLabsSynthesizer{cfg: cfg, apiKey: apiKey, client: client}, nil
	case config.VendorGoogle:
		return &GoogleSynthesizer{cfg: cfg, apiKey: apiKey, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown tts vendor %q", cfg.Vendor)
	}
}

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech API.
type ElevenLabsSynthesizer struct {
	cfg    config.TTSConfig
	apiKey string
	client *http.Client

	// BaseURL overrides the vendor endpoint, for tests.
	BaseURL string
}

type elevenLabsRequest struct {
	Text          string                 `json:"text"`
	ModelID       string                 `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceTuning `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceTuning struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://api.elevenlabs.io"
	}
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", base, s.cfg.VoiceID)

	reqBody := elevenLabsRequest{Text: text, ModelID: s.cfg.Model}
	if s.cfg.Stability != 0 || s.cfg.SimilarityBoost != 0 {
		reqBody.VoiceSettings = &elevenLabsVoiceTuning{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.SimilarityBoost,
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vendor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vendor returned %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

// GoogleSynthesizer calls the Google Cloud text-to-speech REST API.
type GoogleSynthesizer struct {
	cfg    config.TTSConfig
	apiKey string
	client *http.Client

	// BaseURL overrides the vendor endpoint, for tests.
	BaseURL string
}

type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
	} `json:"audioConfig"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://texttospeech.googleapis.com"
	}
	url := fmt.Sprintf("%s/v1/text:synthesize?key=%s", base, s.apiKey)

	var reqBody googleRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = s.cfg.LanguageCode
	reqBody.Voice.Name = s.cfg.VoiceID
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.SpeakingRate = s.cfg.SpeakingRate

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vendor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vendor returned %d: %s", resp.StatusCode, string(body))
	}

	var out googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding audio content: %w", err)
	}
	return audio, nil
}
