package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/pipeline"
)

// ErrImageGenerationFailed - the image backend failed to render a scene.
var ErrImageGenerationFailed = errors.New("image generation failed")

// Compile-time check to ensure imageService implements pipeline.ImageGenerator
var _ pipeline.ImageGenerator = (*imageService)(nil)

// imageService renders one image per scene by calling an HTTP image
// generation backend and storing the returned bytes.
type imageService struct {
	baseURL     string
	ratio       string
	styleSuffix string
	client      *http.Client
	artifacts   artifact.Store
	logger      *zap.Logger
}

// NewImageGenerator creates the image generation collaborator.
func NewImageGenerator(cfg *config.Config, artifacts artifact.Store, logger *zap.Logger) pipeline.ImageGenerator {
	return &imageService{
		baseURL:     cfg.ImageServerURL,
		ratio:       cfg.ImageRatio,
		styleSuffix: cfg.ImageStyleSuffix,
		client:      &http.Client{Timeout: cfg.ImageTimeout},
		artifacts:   artifacts,
		logger:      logger.Named("ImageGen"),
	}
}

// imageAPIRequest is the request body for the image backend.
type imageAPIRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
}

// Render generates the scene images in order. The refs are
// order-correspondent with the input scenes.
func (s *imageService) Render(ctx context.Context, scenes []string) ([]string, error) {
	refs := make([]string, 0, len(scenes))

	for i, scene := range scenes {
		log := s.logger.With(zap.Int("scene", i+1), zap.Int("scenes_total", len(scenes)))

		imageData, err := s.callImageAPI(ctx, scene+s.styleSuffix)
		if err != nil {
			imageRequestsTotal.With(prometheus.Labels{"status": "error"}).Inc()
			log.Error("Image backend call failed", zap.Error(err))
			return nil, fmt.Errorf("%w: scene %d: %v", ErrImageGenerationFailed, i+1, err)
		}
		if len(imageData) == 0 {
			imageRequestsTotal.With(prometheus.Labels{"status": "error"}).Inc()
			return nil, fmt.Errorf("%w: scene %d: backend returned empty data", ErrImageGenerationFailed, i+1)
		}

		ref, err := s.artifacts.Put("scene", "png", imageData)
		if err != nil {
			imageRequestsTotal.With(prometheus.Labels{"status": "error"}).Inc()
			return nil, fmt.Errorf("%w: scene %d: storing image: %v", ErrImageGenerationFailed, i+1, err)
		}

		imageRequestsTotal.With(prometheus.Labels{"status": "success"}).Inc()
		log.Info("Scene image stored", zap.String("ref", ref), zap.Int("size_bytes", len(imageData)))
		refs = append(refs, ref)
	}

	return refs, nil
}

// callImageAPI posts one prompt to the backend and returns the image bytes.
func (s *imageService) callImageAPI(ctx context.Context, prompt string) ([]byte, error) {
	reqBody, err := json.Marshal(imageAPIRequest{Prompt: prompt, Ratio: s.ratio})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpointURL := s.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}
	return body, nil
}
