// Package scripts produces the narration scripts for a broadcast run. An
// LLM collaborator writes the text when one is configured; every segment
// also has a deterministic template fallback so a run never hard-depends on
// the collaborator being reachable.
package scripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexcaster/newscast-cli/config"
	"github.com/nexcaster/newscast-cli/pkg/broadcast"
)

// Context carries what the generator needs to write one segment.
type Context struct {
	// Station identifies the broadcast.
	Station config.StationConfig

	// Language is the broadcast language tag.
	Language string

	// Sources are the collected news items for the run.
	Sources []broadcast.SourceItem

	// PriorTexts are earlier segment scripts, for narrative continuity.
	PriorTexts []string
}

// Story returns the 1-based source item for a definition, or nil.
func (c Context) Story(def broadcast.SegmentDefinition) *broadcast.SourceItem {
	if def.SourceIndex < 1 || def.SourceIndex > len(c.Sources) {
		return nil
	}
	return &c.Sources[def.SourceIndex-1]
}

// Generator writes narration text for one segment definition.
type Generator interface {
	Generate(ctx context.Context, def broadcast.SegmentDefinition, gctx Context) (string, error)
}

// ChatClient is a Generator backed by an OpenAI-compatible chat-completions
// endpoint.
type ChatClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewChatClient creates a chat-completions generator. Returns nil when no
// endpoint is configured, which selects the template fallback for every
// segment.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	if cfg.BaseURL == "" {
		return nil
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatClient) Generate(ctx context.Context, def broadcast.SegmentDefinition, gctx Context) (string, error) {
	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(gctx)},
			{Role: "user", Content: segmentPrompt(def, gctx)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling collaborator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("collaborator returned %d: %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("collaborator returned no content")
	}

	return out.Choices[0].Message.Content, nil
}

// systemPrompt frames the collaborator as the station's script writer.
func systemPrompt(gctx Context) string {
	return fmt.Sprintf(
		"You write broadcast narration for %s in %s, read on air by %s. "+
			"Write in %s. Return only the narration text, no stage directions.",
		gctx.Station.StationName, gctx.Station.Location,
		gctx.Station.AnchorName, gctx.Language)
}

// segmentPrompt describes the one segment to write, pacing it against the
// target duration.
func segmentPrompt(def broadcast.SegmentDefinition, gctx Context) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Segment: %s. Focus: %s. Aim for about %.0f seconds of speech.\n",
		def.DisplayName, def.ContentFocus, def.TargetDuration)

	if story := gctx.Story(def); story != nil {
		fmt.Fprintf(&buf, "Story title: %s\nStory content: %s\n", story.Title, story.Body)
	} else if def.SourceIndex == 0 && len(gctx.Sources) > 0 {
		buf.WriteString("Tonight's stories:\n")
		for i, item := range gctx.Sources {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, item.Title)
		}
	}

	if len(gctx.PriorTexts) > 0 {
		fmt.Fprintf(&buf, "The previous segment ended with: %s\n",
			gctx.PriorTexts[len(gctx.PriorTexts)-1])
	}

	return buf.String()
}
