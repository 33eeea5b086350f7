package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/pipeline"
)

// ErrNarrationFailed - the speech backend failed to produce audio.
var ErrNarrationFailed = errors.New("narration synthesis failed")

// Compile-time check to ensure narrationService implements pipeline.NarrationSynthesizer
var _ pipeline.NarrationSynthesizer = (*narrationService)(nil)

// narrationService turns the scene list into one transcript and one audio
// artifact for the whole story.
type narrationService struct {
	client    *openaigo.Client
	model     string
	voice     string
	artifacts artifact.Store
	logger    *zap.Logger
}

// NewNarrationSynthesizer creates the speech synthesis collaborator.
func NewNarrationSynthesizer(cfg *config.Config, artifacts artifact.Store, logger *zap.Logger) pipeline.NarrationSynthesizer {
	openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	openaiConfig.BaseURL = cfg.AIBaseURL
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}

	return &narrationService{
		client:    openaigo.NewClientWithConfig(openaiConfig),
		model:     cfg.TTSModel,
		voice:     cfg.TTSVoice,
		artifacts: artifacts,
		logger:    logger.Named("Narration"),
	}
}

// Synthesize builds the transcript from the scenes and renders it to MP3.
func (s *narrationService) Synthesize(ctx context.Context, scenes []string) (string, string, error) {
	transcript := BuildTranscript(scenes)
	if transcript == "" {
		return "", "", fmt.Errorf("%w: no scenes to narrate", ErrNarrationFailed)
	}

	s.logger.Info("Synthesizing narration",
		zap.Int("scenes", len(scenes)),
		zap.Int("transcript_bytes", len(transcript)),
		zap.String("model", s.model),
	)

	resp, err := s.client.CreateSpeech(ctx, openaigo.CreateSpeechRequest{
		Model:          openaigo.SpeechModel(s.model),
		Input:          transcript,
		Voice:          openaigo.SpeechVoice(s.voice),
		ResponseFormat: openaigo.SpeechResponseFormatMp3,
	})
	if err != nil {
		ttsRequestsTotal.With(prometheus.Labels{"model": s.model, "status": "error"}).Inc()
		s.logger.Error("Speech API call failed", zap.Error(err))
		return "", "", fmt.Errorf("%w: %v", ErrNarrationFailed, err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		ttsRequestsTotal.With(prometheus.Labels{"model": s.model, "status": "error"}).Inc()
		return "", "", fmt.Errorf("%w: reading audio stream: %v", ErrNarrationFailed, err)
	}
	if len(audioData) == 0 {
		ttsRequestsTotal.With(prometheus.Labels{"model": s.model, "status": "error_empty_response"}).Inc()
		return "", "", fmt.Errorf("%w: empty audio response", ErrNarrationFailed)
	}

	audioRef, err := s.artifacts.Put("narration", "mp3", audioData)
	if err != nil {
		ttsRequestsTotal.With(prometheus.Labels{"model": s.model, "status": "error"}).Inc()
		return "", "", fmt.Errorf("%w: storing audio: %v", ErrNarrationFailed, err)
	}

	ttsRequestsTotal.With(prometheus.Labels{"model": s.model, "status": "success"}).Inc()
	s.logger.Info("Narration audio stored", zap.String("audio_ref", audioRef), zap.Int("size_bytes", len(audioData)))
	return audioRef, transcript, nil
}

// BuildTranscript joins the scene descriptions into the single narration
// text read over the whole video.
func BuildTranscript(scenes []string) string {
	parts := make([]string, 0, len(scenes))
	for _, sc := range scenes {
		sc = strings.TrimSpace(sc)
		if sc == "" {
			continue
		}
		if !strings.HasSuffix(sc, ".") && !strings.HasSuffix(sc, "!") && !strings.HasSuffix(sc, "?") {
			sc += "."
		}
		parts = append(parts, sc)
	}
	return strings.Join(parts, " ")
}
