package pipeline

import "context"

// Segmenter turns a prompt into an ordered sequence of scene descriptions.
// The returned sequence is passed through unchanged: it may be shorter or
// longer than the requested target.
type Segmenter interface {
	Split(ctx context.Context, prompt string, target int) ([]string, error)
}

// NarrationSynthesizer produces one audio artifact and one transcript for
// the whole story, not per scene.
type NarrationSynthesizer interface {
	Synthesize(ctx context.Context, scenes []string) (audioRef string, transcript string, err error)
}

// ImageGenerator produces one image artifact per input scene,
// order-correspondent with the scenes.
type ImageGenerator interface {
	Render(ctx context.Context, scenes []string) ([]string, error)
}

// VideoCompositor combines the image sequence and the audio track into one
// video artifact.
type VideoCompositor interface {
	Stitch(ctx context.Context, imageRefs []string, audioRef string) (string, error)
}
