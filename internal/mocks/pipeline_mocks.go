package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyweaver/internal/pipeline"
)

// MockSegmenter is a mock type for the pipeline.Segmenter type
type MockSegmenter struct {
	mock.Mock
}

func (_m *MockSegmenter) Split(ctx context.Context, prompt string, target int) ([]string, error) {
	ret := _m.Called(ctx, prompt, target)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// NewMockSegmenter creates a new instance of MockSegmenter.
// The first argument is typically a *testing.T value.
func NewMockSegmenter(t interface {
	mock.TestingT
	Helper()
}) *MockSegmenter {
	m := &MockSegmenter{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ pipeline.Segmenter = (*MockSegmenter)(nil)

// MockNarrationSynthesizer is a mock type for the pipeline.NarrationSynthesizer type
type MockNarrationSynthesizer struct {
	mock.Mock
}

func (_m *MockNarrationSynthesizer) Synthesize(ctx context.Context, scenes []string) (string, string, error) {
	ret := _m.Called(ctx, scenes)
	return ret.String(0), ret.String(1), ret.Error(2)
}

// NewMockNarrationSynthesizer creates a new instance of MockNarrationSynthesizer.
func NewMockNarrationSynthesizer(t interface {
	mock.TestingT
	Helper()
}) *MockNarrationSynthesizer {
	m := &MockNarrationSynthesizer{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ pipeline.NarrationSynthesizer = (*MockNarrationSynthesizer)(nil)

// MockImageGenerator is a mock type for the pipeline.ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

func (_m *MockImageGenerator) Render(ctx context.Context, scenes []string) ([]string, error) {
	ret := _m.Called(ctx, scenes)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// NewMockImageGenerator creates a new instance of MockImageGenerator.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ pipeline.ImageGenerator = (*MockImageGenerator)(nil)

// MockVideoCompositor is a mock type for the pipeline.VideoCompositor type
type MockVideoCompositor struct {
	mock.Mock
}

func (_m *MockVideoCompositor) Stitch(ctx context.Context, imageRefs []string, audioRef string) (string, error) {
	ret := _m.Called(ctx, imageRefs, audioRef)
	return ret.String(0), ret.Error(1)
}

// NewMockVideoCompositor creates a new instance of MockVideoCompositor.
func NewMockVideoCompositor(t interface {
	mock.TestingT
	Helper()
}) *MockVideoCompositor {
	m := &MockVideoCompositor{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ pipeline.VideoCompositor = (*MockVideoCompositor)(nil)
