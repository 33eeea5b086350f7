package nav

import (
	"fmt"

	"storyweaver/internal/domain"
)

// View is the render model for the current screen. Building it is a pure
// function of the session: no mutation, no collaborator calls, so rendering
// the same session twice yields the same view.
type View struct {
	Page     domain.Page `json:"page"`
	Username string      `json:"username,omitempty"`
	Create   *CreateView `json:"create,omitempty"`
	Output   *OutputView `json:"output,omitempty"`
}

// CreateView carries the create-form configuration surface.
type CreateView struct {
	Styles        []domain.StoryStyle `json:"styles"`
	MinScenes     int                 `json:"min_scenes"`
	MaxScenes     int                 `json:"max_scenes"`
	DefaultScenes int                 `json:"default_scenes"`
}

// OutputView is the output screen model. When no bundle is present it
// renders the fallback: HasVideo false with Back as the only action.
type OutputView struct {
	HasVideo      bool        `json:"has_video"`
	VideoRef      string      `json:"video_ref,omitempty"`
	DownloadURL   string      `json:"download_url,omitempty"`
	Scenes        []SceneView `json:"scenes,omitempty"`
	NarrationText string      `json:"narration_text,omitempty"`
}

// SceneView is one 1-indexed scene row of the expandable panel.
type SceneView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// BuildView renders the session into its screen model.
func BuildView(sess *domain.Session, bounds domain.SceneBounds) View {
	v := View{
		Page:     sess.Page,
		Username: sess.Username,
	}

	switch sess.Page {
	case domain.PageCreate:
		v.Create = &CreateView{
			Styles:        domain.StoryStyles(),
			MinScenes:     bounds.Min,
			MaxScenes:     bounds.Max,
			DefaultScenes: bounds.Default,
		}
	case domain.PageOutput:
		v.Output = buildOutputView(sess.Bundle)
	}

	return v
}

func buildOutputView(bundle *domain.OutputBundle) *OutputView {
	if !bundle.Complete() {
		return &OutputView{HasVideo: false}
	}

	scenes := make([]SceneView, len(bundle.Scenes))
	for i, sc := range bundle.Scenes {
		scenes[i] = SceneView{
			Label: fmt.Sprintf("Scene %d", i+1),
			Text:  sc,
		}
	}

	return &OutputView{
		HasVideo:      true,
		VideoRef:      bundle.VideoRef,
		DownloadURL:   "/api/video/" + bundle.VideoRef,
		Scenes:        scenes,
		NarrationText: bundle.NarrationText,
	}
}
