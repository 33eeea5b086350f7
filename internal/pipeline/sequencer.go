package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

// Sequencer runs the four generation collaborators for one story request and
// assembles the output bundle. Ordering contract: the segmenter runs first;
// narration and images both consume its scenes and run concurrently; the
// compositor runs strictly after both have returned. A failure in any stage
// yields no bundle at all.
type Sequencer struct {
	segmenter  Segmenter
	narrator   NarrationSynthesizer
	imageGen   ImageGenerator
	compositor VideoCompositor
	logger     *zap.Logger
}

// NewSequencer wires the four collaborators.
func NewSequencer(
	segmenter Segmenter,
	narrator NarrationSynthesizer,
	imageGen ImageGenerator,
	compositor VideoCompositor,
	logger *zap.Logger,
) *Sequencer {
	return &Sequencer{
		segmenter:  segmenter,
		narrator:   narrator,
		imageGen:   imageGen,
		compositor: compositor,
		logger:     logger.Named("Sequencer"),
	}
}

type narrationResult struct {
	audioRef   string
	transcript string
	err        error
}

type imagesResult struct {
	refs []string
	err  error
}

// Run executes the full pipeline for req. On any stage failure it returns a
// nil bundle and an error wrapping domain.ErrPipelineFailed.
func (s *Sequencer) Run(ctx context.Context, req domain.StoryRequest) (*domain.OutputBundle, error) {
	prompt := req.Prompt()
	log := s.logger.With(
		zap.String("title", req.Title),
		zap.String("style", string(req.Style)),
		zap.Int("target_scenes", req.SceneCount),
	)
	log.Info("Pipeline run started")

	segStart := time.Now()
	scenes, err := s.segmenter.Split(ctx, prompt, req.SceneCount)
	observeStage("segmenter", segStart, err)
	if err != nil {
		return nil, s.fail(log, "scene splitting", err)
	}
	if len(scenes) == 0 {
		return nil, s.fail(log, "scene splitting", fmt.Errorf("segmenter returned no scenes"))
	}
	sceneCount.Observe(float64(len(scenes)))
	log.Info("Scenes created", zap.Int("scenes", len(scenes)))

	// Narration and images depend only on the scene list and run in
	// parallel. The compositor below waits for both.
	narrationCh := make(chan narrationResult, 1)
	imagesCh := make(chan imagesResult, 1)

	go func() {
		start := time.Now()
		audioRef, transcript, err := s.narrator.Synthesize(ctx, scenes)
		observeStage("narration", start, err)
		narrationCh <- narrationResult{audioRef: audioRef, transcript: transcript, err: err}
	}()

	go func() {
		start := time.Now()
		refs, err := s.imageGen.Render(ctx, scenes)
		observeStage("images", start, err)
		imagesCh <- imagesResult{refs: refs, err: err}
	}()

	narration := <-narrationCh
	images := <-imagesCh

	if narration.err != nil {
		return nil, s.fail(log, "narration synthesis", narration.err)
	}
	if images.err != nil {
		return nil, s.fail(log, "image generation", images.err)
	}
	if len(images.refs) != len(scenes) {
		return nil, s.fail(log, "image generation",
			fmt.Errorf("got %d images for %d scenes", len(images.refs), len(scenes)))
	}
	log.Info("Narration and images ready",
		zap.Int("images", len(images.refs)),
		zap.String("audio_ref", narration.audioRef),
	)

	stitchStart := time.Now()
	videoRef, err := s.compositor.Stitch(ctx, images.refs, narration.audioRef)
	observeStage("compositor", stitchStart, err)
	if err != nil {
		return nil, s.fail(log, "video stitching", err)
	}

	bundle := &domain.OutputBundle{
		Scenes:        scenes,
		NarrationText: narration.transcript,
		AudioRef:      narration.audioRef,
		ImageRefs:     images.refs,
		VideoRef:      videoRef,
	}
	if !bundle.Complete() {
		return nil, s.fail(log, "bundle assembly", fmt.Errorf("incomplete bundle"))
	}

	runsTotal.With(prometheus.Labels{"status": "success"}).Inc()
	log.Info("Pipeline run completed", zap.String("video_ref", bundle.VideoRef))
	return bundle, nil
}

// fail records the failed run and wraps the stage error so the navigation
// controller sees one pipeline-failure signal.
func (s *Sequencer) fail(log *zap.Logger, stage string, err error) error {
	runsTotal.With(prometheus.Labels{"status": "error"}).Inc()
	log.Error("Pipeline stage failed", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", domain.ErrPipelineFailed, stage, err)
}

// observeStage records per-stage counters and duration.
func observeStage(stage string, start time.Time, err error) {
	stageDuration.With(prometheus.Labels{"stage": stage}).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	stageRequestsTotal.With(prometheus.Labels{"stage": stage, "status": status}).Inc()
}
