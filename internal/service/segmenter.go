package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storyweaver/internal/pipeline"
)

const segmenterSystemPrompt = `You are a storyboard writer. Split the story described by the user ` +
	`into a numbered list of short visual scene descriptions, one or two sentences each. ` +
	`Respond with a JSON array of strings and nothing else.`

// Compile-time check to ensure aiSegmenter implements pipeline.Segmenter
var _ pipeline.Segmenter = (*aiSegmenter)(nil)

// aiSegmenter splits a story prompt into scene descriptions using the
// configured AI text backend.
type aiSegmenter struct {
	client AIClient
	logger *zap.Logger
}

// NewSegmenter creates a scene segmenter on top of the AI client.
func NewSegmenter(client AIClient, logger *zap.Logger) pipeline.Segmenter {
	return &aiSegmenter{client: client, logger: logger.Named("Segmenter")}
}

// Split asks the backend for target scenes. The returned list is whatever
// the model produced; callers must not assume its exact length.
func (s *aiSegmenter) Split(ctx context.Context, prompt string, target int) ([]string, error) {
	userInput := fmt.Sprintf("Story: %s\nTarget number of scenes: %d", prompt, target)

	raw, err := s.client.GenerateText(ctx, segmenterSystemPrompt, userInput)
	if err != nil {
		return nil, fmt.Errorf("segmenter request failed: %w", err)
	}

	scenes, err := ParseSceneList([]byte(raw))
	if err != nil {
		s.logger.Error("Failed to parse segmenter response", zap.Error(err), zap.Int("response_bytes", len(raw)))
		return nil, fmt.Errorf("segmenter response invalid: %w", err)
	}

	s.logger.Info("Story split into scenes", zap.Int("scenes", len(scenes)), zap.Int("target", target))
	return scenes, nil
}

// ParseSceneList parses a model response into an ordered scene list. It
// tolerates markdown code fences and an object wrapper with a "scenes" key,
// both of which chat models produce even when told not to.
func ParseSceneList(data []byte) ([]string, error) {
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var scenes []string
	if err := json.Unmarshal([]byte(text), &scenes); err != nil {
		var wrapper struct {
			Scenes []string `json:"scenes"`
		}
		if wrapErr := json.Unmarshal([]byte(text), &wrapper); wrapErr != nil || len(wrapper.Scenes) == 0 {
			return nil, fmt.Errorf("failed to parse scene list: %w", err)
		}
		scenes = wrapper.Scenes
	}

	out := scenes[:0]
	for _, sc := range scenes {
		if trimmed := strings.TrimSpace(sc); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("scene list is empty")
	}
	return out, nil
}
