package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/pipeline"
)

// ErrStitchFailed - ffmpeg failed to assemble the video.
var ErrStitchFailed = errors.New("video stitching failed")

// Compile-time check to ensure ffmpegCompositor implements pipeline.VideoCompositor
var _ pipeline.VideoCompositor = (*ffmpegCompositor)(nil)

// ffmpegCompositor stitches the scene images and the narration track into a
// single MP4 using ffmpeg's concat demuxer. Each image is held on screen
// for a fixed number of seconds; -shortest trims the video to the audio
// when the narration runs out first.
type ffmpegCompositor struct {
	ffmpegPath   string
	sceneSeconds float64
	timeout      time.Duration
	artifacts    artifact.Store
	logger       *zap.Logger
}

// NewVideoCompositor creates the ffmpeg-backed compositor.
func NewVideoCompositor(cfg *config.Config, artifacts artifact.Store, logger *zap.Logger) pipeline.VideoCompositor {
	return &ffmpegCompositor{
		ffmpegPath:   cfg.FFmpegPath,
		sceneSeconds: cfg.SceneSeconds,
		timeout:      cfg.StitchTimeout,
		artifacts:    artifacts,
		logger:       logger.Named("Compositor"),
	}
}

// Stitch assembles imageRefs + audioRef into one video artifact.
func (c *ffmpegCompositor) Stitch(ctx context.Context, imageRefs []string, audioRef string) (string, error) {
	if len(imageRefs) == 0 {
		return "", fmt.Errorf("%w: no images to stitch", ErrStitchFailed)
	}

	audioPath, err := c.artifacts.Path(audioRef)
	if err != nil {
		return "", fmt.Errorf("%w: resolving audio ref: %v", ErrStitchFailed, err)
	}

	listFile, err := c.writeConcatList(imageRefs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStitchFailed, err)
	}
	defer os.Remove(listFile)

	outFile, err := os.CreateTemp("", "storyweaver-*.mp4")
	if err != nil {
		return "", fmt.Errorf("%w: creating output file: %v", ErrStitchFailed, err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.ffmpegPath, "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-i", audioPath,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-vf", "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Info("Stitching video",
		zap.Int("images", len(imageRefs)),
		zap.String("audio_ref", audioRef),
		zap.Float64("scene_seconds", c.sceneSeconds),
	)

	if err := cmd.Run(); err != nil {
		c.logger.Error("ffmpeg failed", zap.Error(err), zap.String("stderr", tail(stderr.String(), 2000)))
		return "", fmt.Errorf("%w: ffmpeg: %v", ErrStitchFailed, err)
	}

	videoData, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading ffmpeg output: %v", ErrStitchFailed, err)
	}
	if len(videoData) == 0 {
		return "", fmt.Errorf("%w: ffmpeg produced an empty file", ErrStitchFailed)
	}

	videoRef, err := c.artifacts.Put("story", "mp4", videoData)
	if err != nil {
		return "", fmt.Errorf("%w: storing video: %v", ErrStitchFailed, err)
	}

	c.logger.Info("Video stored", zap.String("video_ref", videoRef), zap.Int("size_bytes", len(videoData)))
	return videoRef, nil
}

// writeConcatList writes the concat demuxer input. The final image is
// repeated without a duration line, which the demuxer requires.
func (c *ffmpegCompositor) writeConcatList(imageRefs []string) (string, error) {
	var b strings.Builder
	for _, ref := range imageRefs {
		path, err := c.artifacts.Path(ref)
		if err != nil {
			return "", fmt.Errorf("resolving image ref %s: %w", ref, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", path)
		fmt.Fprintf(&b, "duration %.2f\n", c.sceneSeconds)
	}
	lastPath, err := c.artifacts.Path(imageRefs[len(imageRefs)-1])
	if err != nil {
		return "", fmt.Errorf("resolving image ref: %w", err)
	}
	fmt.Fprintf(&b, "file '%s'\n", lastPath)

	f, err := os.CreateTemp("", "storyweaver-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating concat list: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing concat list: %w", err)
	}
	return f.Name(), nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
