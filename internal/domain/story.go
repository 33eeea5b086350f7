package domain

import (
	"fmt"
	"strings"
)

// StoryStyle is one of the fixed set of styles a story can be written in.
type StoryStyle string

const (
	StyleFolkTale  StoryStyle = "Folk Tale"
	StyleFantasy   StoryStyle = "Fantasy"
	StyleAdventure StoryStyle = "Adventure"
	StyleMystery   StoryStyle = "Mystery"
	StyleMyth      StoryStyle = "Myth"
)

// StoryStyles lists the supported styles in presentation order.
func StoryStyles() []StoryStyle {
	return []StoryStyle{StyleFolkTale, StyleFantasy, StyleAdventure, StyleMystery, StyleMyth}
}

// Valid reports whether s is one of the supported styles.
func (s StoryStyle) Valid() bool {
	for _, known := range StoryStyles() {
		if s == known {
			return true
		}
	}
	return false
}

// SceneBounds restricts the number of scenes a story request may ask for.
type SceneBounds struct {
	Min     int
	Max     int
	Default int
}

// Contains reports whether n is within the inclusive bounds.
func (b SceneBounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// StoryRequest is the ephemeral input bundle for one Generate action.
// It is never persisted; it lives only for the duration of a pipeline run.
type StoryRequest struct {
	Title      string
	Theme      string
	Style      StoryStyle
	SceneCount int
}

// Prompt builds the single descriptive sentence handed to the segmenter.
func (r StoryRequest) Prompt() string {
	return fmt.Sprintf("%s. %s. A %s inspired tale.", r.Title, r.Theme, strings.ToLower(string(r.Style)))
}

// OutputBundle holds the full set of generation results for one completed
// Generate action. Partial bundles are never stored on a session: a bundle
// either passes Complete or it is discarded.
type OutputBundle struct {
	Scenes        []string
	NarrationText string
	AudioRef      string
	ImageRefs     []string
	VideoRef      string
}

// Complete reports whether every field of the bundle is present and the
// image refs correspond one-to-one with the scenes.
func (b *OutputBundle) Complete() bool {
	if b == nil {
		return false
	}
	return len(b.Scenes) > 0 &&
		b.NarrationText != "" &&
		b.AudioRef != "" &&
		len(b.ImageRefs) == len(b.Scenes) &&
		b.VideoRef != ""
}
