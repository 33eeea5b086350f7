package nav_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
	"storyweaver/internal/mocks"
	"storyweaver/internal/nav"
	"storyweaver/internal/service"
)

var _ nav.PipelineRunner = (*mocks.MockPipelineRunner)(nil)

var testBounds = domain.SceneBounds{Min: 3, Max: 8, Default: 5}

// newTestController wires a controller over a real auth service backed by a
// mocked user repository, plus a mocked pipeline runner.
func newTestController(t *testing.T) (*nav.Controller, *mocks.MockUserRepository, *mocks.MockPipelineRunner) {
	t.Helper()
	repo := mocks.NewMockUserRepository(t)
	runner := mocks.NewMockPipelineRunner(t)
	auth := service.NewAuthService(repo, "test-pepper", zap.NewNop())
	ctrl := nav.NewController(auth, runner, testBounds, zap.NewNop())
	return ctrl, repo, runner
}

func newSession(page domain.Page, username string) *domain.Session {
	return &domain.Session{ID: "sess-1", Page: page, Username: username}
}

func completeBundle() *domain.OutputBundle {
	return &domain.OutputBundle{
		Scenes:        []string{"a", "b", "c"},
		NarrationText: "a. b. c.",
		AudioRef:      "narr.mp3",
		ImageRefs:     []string{"1.png", "2.png", "3.png"},
		VideoRef:      "story.mp4",
	}
}

func TestController_PageNavigation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		page     domain.Page
		username string
		action   domain.Action
		wantPage domain.Page
	}{
		{"login to signup", domain.PageLogin, "", domain.ActionGotoSignup, domain.PageSignup},
		{"signup back to login", domain.PageSignup, "", domain.ActionBackToLogin, domain.PageLogin},
		{"landing to create", domain.PageLanding, "alice", domain.ActionCreateStory, domain.PageCreate},
		{"create back to landing", domain.PageCreate, "alice", domain.ActionBack, domain.PageLanding},
		{"output back to create", domain.PageOutput, "alice", domain.ActionBack, domain.PageCreate},
		{"output back to landing", domain.PageOutput, "alice", domain.ActionBackToLanding, domain.PageLanding},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, _, _ := newTestController(t)
			sess := newSession(tc.page, tc.username)

			err := ctrl.Apply(ctx, sess, tc.action, nav.Form{})
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, sess.Page)
		})
	}
}

func TestController_RejectsUnknownPairs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		page   domain.Page
		action domain.Action
	}{
		{"generate on login", domain.PageLogin, domain.ActionGenerate},
		{"login on landing", domain.PageLanding, domain.ActionLogin},
		{"signup on create", domain.PageCreate, domain.ActionSignup},
		{"create story on output", domain.PageOutput, domain.ActionCreateStory},
		{"logout on login", domain.PageLogin, domain.ActionLogout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, _, _ := newTestController(t)
			sess := newSession(tc.page, "alice")
			before := *sess

			err := ctrl.Apply(ctx, sess, tc.action, nav.Form{})
			assert.ErrorIs(t, err, domain.ErrInvalidAction)
			assert.Equal(t, before, *sess, "rejected action must leave the session unchanged")
		})
	}
}

func TestController_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success moves to landing", func(t *testing.T) {
		ctrl, repo, _ := newTestController(t)
		hash := hashForTest(t, "secret")
		repo.On("GetUserByUsername", mock.Anything, "alice").
			Return(&domain.User{Username: "alice", PasswordHash: hash}, nil).Once()

		sess := newSession(domain.PageLogin, "")
		err := ctrl.Apply(ctx, sess, domain.ActionLogin, nav.Form{Username: "alice", Password: "secret"})

		require.NoError(t, err)
		assert.Equal(t, domain.PageLanding, sess.Page)
		assert.Equal(t, "alice", sess.Username)
	})

	t.Run("bad credentials stay on login", func(t *testing.T) {
		ctrl, repo, _ := newTestController(t)
		repo.On("GetUserByUsername", mock.Anything, "alice").
			Return(nil, domain.ErrUserNotFound).Once()

		sess := newSession(domain.PageLogin, "")
		err := ctrl.Apply(ctx, sess, domain.ActionLogin, nav.Form{Username: "alice", Password: "nope"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Equal(t, domain.PageLogin, sess.Page)
		assert.Empty(t, sess.Username)
	})
}

func TestController_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("success logs in and moves to landing", func(t *testing.T) {
		ctrl, repo, _ := newTestController(t)
		repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).
			Return(nil).Once()

		sess := newSession(domain.PageSignup, "")
		err := ctrl.Apply(ctx, sess, domain.ActionSignup, nav.Form{
			Username:        "bob",
			Password:        "hunter2",
			ConfirmPassword: "hunter2",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.PageLanding, sess.Page)
		assert.Equal(t, "bob", sess.Username)
	})

	t.Run("password mismatch checked before repository", func(t *testing.T) {
		ctrl, repo, _ := newTestController(t)

		sess := newSession(domain.PageSignup, "")
		err := ctrl.Apply(ctx, sess, domain.ActionSignup, nav.Form{
			Username:        "bob",
			Password:        "hunter2",
			ConfirmPassword: "hunter3",
		})

		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
		assert.Equal(t, domain.PageSignup, sess.Page)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("empty fields rejected", func(t *testing.T) {
		ctrl, _, _ := newTestController(t)

		sess := newSession(domain.PageSignup, "")
		err := ctrl.Apply(ctx, sess, domain.ActionSignup, nav.Form{Username: "  ", Password: ""})

		assert.ErrorIs(t, err, domain.ErrFieldsRequired)
		assert.Equal(t, domain.PageSignup, sess.Page)
	})

	t.Run("duplicate username stays on signup", func(t *testing.T) {
		ctrl, repo, _ := newTestController(t)
		repo.On("CreateUser", mock.Anything, mock.Anything).
			Return(domain.ErrUserAlreadyExists).Once()

		sess := newSession(domain.PageSignup, "")
		err := ctrl.Apply(ctx, sess, domain.ActionSignup, nav.Form{
			Username:        "bob",
			Password:        "hunter2",
			ConfirmPassword: "hunter2",
		})

		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		assert.Equal(t, domain.PageSignup, sess.Page)
		assert.Empty(t, sess.Username)
	})
}

func TestController_Generate(t *testing.T) {
	ctx := context.Background()
	form := nav.Form{
		Title:      "The Clever Jackal",
		Theme:      "A clever jackal escapes a pit",
		Style:      "Folk Tale",
		SceneCount: 5,
	}

	t.Run("success stores bundle and moves to output", func(t *testing.T) {
		ctrl, _, runner := newTestController(t)
		bundle := completeBundle()
		runner.On("Run", mock.Anything, domain.StoryRequest{
			Title:      "The Clever Jackal",
			Theme:      "A clever jackal escapes a pit",
			Style:      domain.StyleFolkTale,
			SceneCount: 5,
		}).Return(bundle, nil).Once()

		sess := newSession(domain.PageCreate, "alice")
		err := ctrl.Apply(ctx, sess, domain.ActionGenerate, form)

		require.NoError(t, err)
		assert.Equal(t, domain.PageOutput, sess.Page)
		assert.Same(t, bundle, sess.Bundle)
		runner.AssertExpectations(t)
	})

	t.Run("pipeline failure stays on create with bundle untouched", func(t *testing.T) {
		ctrl, _, runner := newTestController(t)
		previous := completeBundle()
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, domain.ErrPipelineFailed).Once()

		sess := newSession(domain.PageCreate, "alice")
		sess.Bundle = previous
		err := ctrl.Apply(ctx, sess, domain.ActionGenerate, form)

		assert.ErrorIs(t, err, domain.ErrPipelineFailed)
		assert.Equal(t, domain.PageCreate, sess.Page)
		assert.Same(t, previous, sess.Bundle, "a failed run must not clobber an earlier bundle")
	})

	t.Run("unexpected runner error surfaces as pipeline failure", func(t *testing.T) {
		ctrl, _, runner := newTestController(t)
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, errors.New("dial tcp: connection refused")).Once()

		sess := newSession(domain.PageCreate, "alice")
		err := ctrl.Apply(ctx, sess, domain.ActionGenerate, form)

		assert.ErrorIs(t, err, domain.ErrPipelineFailed)
		assert.Equal(t, domain.PageCreate, sess.Page)
	})

	t.Run("invalid style rejected before the pipeline", func(t *testing.T) {
		ctrl, _, runner := newTestController(t)

		sess := newSession(domain.PageCreate, "alice")
		bad := form
		bad.Style = "Noir"
		err := ctrl.Apply(ctx, sess, domain.ActionGenerate, bad)

		assert.ErrorIs(t, err, domain.ErrInvalidStyle)
		assert.Equal(t, domain.PageCreate, sess.Page)
		runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("scene count outside bounds rejected", func(t *testing.T) {
		for _, count := range []int{0, 2, 9, -1} {
			ctrl, _, runner := newTestController(t)

			sess := newSession(domain.PageCreate, "alice")
			bad := form
			bad.SceneCount = count
			err := ctrl.Apply(ctx, sess, domain.ActionGenerate, bad)

			assert.ErrorIs(t, err, domain.ErrSceneCountOutOfRange, "count %d", count)
			runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		}
	})
}

func TestController_LogoutKeepsBundle(t *testing.T) {
	ctx := context.Background()
	ctrl, _, _ := newTestController(t)

	bundle := completeBundle()
	sess := newSession(domain.PageOutput, "alice")
	sess.Bundle = bundle

	err := ctrl.Apply(ctx, sess, domain.ActionLogout, nav.Form{})
	require.NoError(t, err)
	assert.Equal(t, domain.PageLogin, sess.Page)
	assert.Empty(t, sess.Username)
	assert.Same(t, bundle, sess.Bundle)
}

// Every page must be able to reach login through the table, so a logged-out
// user is never stranded.
func TestController_LoginReachableFromEverywhere(t *testing.T) {
	ctx := context.Background()

	paths := map[domain.Page][]domain.Action{
		domain.PageLogin:   {},
		domain.PageSignup:  {domain.ActionBackToLogin},
		domain.PageLanding: {domain.ActionLogout},
		domain.PageCreate:  {domain.ActionBack, domain.ActionLogout},
		domain.PageOutput:  {domain.ActionLogout},
	}

	for page, actions := range paths {
		t.Run(string(page), func(t *testing.T) {
			ctrl, _, _ := newTestController(t)
			sess := newSession(page, "alice")
			for _, action := range actions {
				require.NoError(t, ctrl.Apply(ctx, sess, action, nav.Form{}))
			}
			assert.Equal(t, domain.PageLogin, sess.Page)
		})
	}
}

func TestBuildView(t *testing.T) {
	t.Run("create page carries form configuration", func(t *testing.T) {
		sess := newSession(domain.PageCreate, "alice")
		v := nav.BuildView(sess, testBounds)

		assert.Equal(t, domain.PageCreate, v.Page)
		assert.Equal(t, "alice", v.Username)
		require.NotNil(t, v.Create)
		assert.Equal(t, domain.StoryStyles(), v.Create.Styles)
		assert.Equal(t, 3, v.Create.MinScenes)
		assert.Equal(t, 8, v.Create.MaxScenes)
		assert.Equal(t, 5, v.Create.DefaultScenes)
		assert.Nil(t, v.Output)
	})

	t.Run("output page with bundle", func(t *testing.T) {
		sess := newSession(domain.PageOutput, "alice")
		sess.Bundle = completeBundle()
		v := nav.BuildView(sess, testBounds)

		require.NotNil(t, v.Output)
		assert.True(t, v.Output.HasVideo)
		assert.Equal(t, "story.mp4", v.Output.VideoRef)
		assert.Equal(t, "/api/video/story.mp4", v.Output.DownloadURL)
		require.Len(t, v.Output.Scenes, 3)
		assert.Equal(t, "Scene 1", v.Output.Scenes[0].Label)
		assert.Equal(t, "a", v.Output.Scenes[0].Text)
		assert.Equal(t, "Scene 3", v.Output.Scenes[2].Label)
	})

	t.Run("output page without bundle renders fallback", func(t *testing.T) {
		sess := newSession(domain.PageOutput, "alice")
		v := nav.BuildView(sess, testBounds)

		require.NotNil(t, v.Output)
		assert.False(t, v.Output.HasVideo)
		assert.Empty(t, v.Output.DownloadURL)
		assert.Empty(t, v.Output.Scenes)
	})

	t.Run("building twice yields equal views", func(t *testing.T) {
		sess := newSession(domain.PageOutput, "alice")
		sess.Bundle = completeBundle()

		first := nav.BuildView(sess, testBounds)
		second := nav.BuildView(sess, testBounds)
		assert.Equal(t, first, second)
	})
}

// hashForTest produces a stored hash the auth service would accept for the
// given password under the test pepper.
func hashForTest(t *testing.T, password string) string {
	t.Helper()
	repo := mocks.NewMockUserRepository(t)
	auth := service.NewAuthService(repo, "test-pepper", zap.NewNop())

	var hash string
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(nil).Once().Run(func(args mock.Arguments) {
		hash = args.Get(1).(*domain.User).PasswordHash
	})
	_, err := auth.Register(context.Background(), "seed", password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	return hash
}
