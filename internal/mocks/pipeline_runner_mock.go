package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyweaver/internal/domain"
)

// MockPipelineRunner is a mock type for the nav.PipelineRunner type
type MockPipelineRunner struct {
	mock.Mock
}

func (_m *MockPipelineRunner) Run(ctx context.Context, req domain.StoryRequest) (*domain.OutputBundle, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.OutputBundle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.OutputBundle)
	}
	return r0, ret.Error(1)
}

// NewMockPipelineRunner creates a new instance of MockPipelineRunner.
// The first argument is typically a *testing.T value.
func NewMockPipelineRunner(t interface {
	mock.TestingT
	Helper()
}) *MockPipelineRunner {
	m := &MockPipelineRunner{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
