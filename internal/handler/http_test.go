package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/domain"
	"storyweaver/internal/handler"
	"storyweaver/internal/mocks"
	"storyweaver/internal/nav"
	"storyweaver/internal/repository"
	"storyweaver/internal/service"
	"storyweaver/internal/session"
)

type testApp struct {
	server    *httptest.Server
	client    *http.Client
	artifacts artifact.Store
	runner    *mocks.MockPipelineRunner
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cfg := &config.Config{
		UsersFile:         filepath.Join(t.TempDir(), "users.json"),
		ArtifactsDir:      t.TempDir(),
		SessionCookieName: "storyweaver_session",
		SessionTTL:        time.Hour,
		SessionSecret:     "test-secret",
		PasswordPepper:    "test-pepper",
		MinScenes:         3,
		MaxScenes:         8,
		DefaultScenes:     5,
		ActionRateLimit:   1000,
	}

	userRepo, err := repository.NewFileUserRepository(cfg.UsersFile, logger)
	require.NoError(t, err)
	artifacts, err := artifact.NewFileStore(cfg.ArtifactsDir, logger)
	require.NoError(t, err)

	authSvc := service.NewAuthService(userRepo, cfg.PasswordPepper, logger)
	runner := mocks.NewMockPipelineRunner(t)
	bounds := domain.SceneBounds{Min: cfg.MinScenes, Max: cfg.MaxScenes, Default: cfg.DefaultScenes}
	controller := nav.NewController(authSvc, runner, bounds, logger)
	sessions := session.NewStore(logger)

	h := handler.NewHandler(controller, sessions, artifacts, cfg, logger)
	router := gin.New()
	h.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server:    server,
		client:    &http.Client{Jar: jar},
		artifacts: artifacts,
		runner:    runner,
	}
}

func (a *testApp) getView(t *testing.T) nav.View {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v nav.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testApp) postAction(t *testing.T, body map[string]any) (*http.Response, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := a.client.Post(a.server.URL+"/api/action", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (a *testApp) applyOK(t *testing.T, body map[string]any) nav.View {
	t.Helper()
	resp, data := a.postAction(t, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	var v nav.View
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestAPI_FreshSessionStartsAtLogin(t *testing.T) {
	app := newTestApp(t)

	v := app.getView(t)
	assert.Equal(t, domain.PageLogin, v.Page)
	assert.Empty(t, v.Username)
	assert.Nil(t, v.Create)
	assert.Nil(t, v.Output)
}

func TestAPI_FullFlow(t *testing.T) {
	app := newTestApp(t)

	// Fresh session lands on login; move to signup and register.
	require.Equal(t, domain.PageLogin, app.getView(t).Page)

	v := app.applyOK(t, map[string]any{"action": "goto_signup"})
	require.Equal(t, domain.PageSignup, v.Page)

	v = app.applyOK(t, map[string]any{
		"action":           "signup",
		"username":         "alice",
		"password":         "hunter2",
		"confirm_password": "hunter2",
	})
	require.Equal(t, domain.PageLanding, v.Page)
	assert.Equal(t, "alice", v.Username)

	// Landing to the create form, which carries the configuration surface.
	v = app.applyOK(t, map[string]any{"action": "create_story"})
	require.Equal(t, domain.PageCreate, v.Page)
	require.NotNil(t, v.Create)
	assert.Equal(t, 3, v.Create.MinScenes)
	assert.Equal(t, 8, v.Create.MaxScenes)
	assert.Equal(t, 5, v.Create.DefaultScenes)
	assert.Len(t, v.Create.Styles, 5)

	// Generate: the pipeline returns a bundle whose video is a real
	// artifact so the download below streams actual bytes.
	videoBytes := []byte("stitched mp4 bytes")
	videoRef, err := app.artifacts.Put("story", "mp4", videoBytes)
	require.NoError(t, err)

	bundle := &domain.OutputBundle{
		Scenes:        []string{"one", "two", "three"},
		NarrationText: "one. two. three.",
		AudioRef:      "narr.mp3",
		ImageRefs:     []string{"1.png", "2.png", "3.png"},
		VideoRef:      videoRef,
	}
	app.runner.On("Run", mock.Anything, domain.StoryRequest{
		Title:      "The Clever Jackal",
		Theme:      "A clever jackal escapes a pit",
		Style:      domain.StyleFolkTale,
		SceneCount: 5,
	}).Return(bundle, nil).Once()

	v = app.applyOK(t, map[string]any{
		"action":      "generate",
		"title":       "The Clever Jackal",
		"theme":       "A clever jackal escapes a pit",
		"style":       "Folk Tale",
		"scene_count": 5,
	})
	require.Equal(t, domain.PageOutput, v.Page)
	require.NotNil(t, v.Output)
	assert.True(t, v.Output.HasVideo)
	assert.Equal(t, videoRef, v.Output.VideoRef)
	require.Len(t, v.Output.Scenes, 3)
	assert.Equal(t, "Scene 1", v.Output.Scenes[0].Label)

	// Download the video through the session-scoped endpoint.
	resp, err := app.client.Get(app.server.URL + v.Output.DownloadURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, videoBytes, got)

	// Logout drops the identity but the view stays consistent.
	v = app.applyOK(t, map[string]any{"action": "logout"})
	assert.Equal(t, domain.PageLogin, v.Page)
	assert.Empty(t, v.Username)

	app.runner.AssertExpectations(t)
}

func TestAPI_LoginErrors(t *testing.T) {
	app := newTestApp(t)

	resp, data := app.postAction(t, map[string]any{
		"action":   "login",
		"username": "ghost",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, handler.ErrCodeWrongCredentials, errResp.Code)

	// The failed login leaves the session on the login page.
	assert.Equal(t, domain.PageLogin, app.getView(t).Page)
}

func TestAPI_SignupValidationErrors(t *testing.T) {
	app := newTestApp(t)
	app.applyOK(t, map[string]any{"action": "goto_signup"})

	resp, data := app.postAction(t, map[string]any{
		"action":           "signup",
		"username":         "bob",
		"password":         "one",
		"confirm_password": "two",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, handler.ErrCodeValidation, errResp.Code)
	assert.Equal(t, domain.PageSignup, app.getView(t).Page)
}

func TestAPI_DuplicateSignup(t *testing.T) {
	app := newTestApp(t)

	app.applyOK(t, map[string]any{"action": "goto_signup"})
	app.applyOK(t, map[string]any{
		"action":           "signup",
		"username":         "alice",
		"password":         "hunter2",
		"confirm_password": "hunter2",
	})

	other := newTestAppWithStores(t, app)
	other.applyOK(t, map[string]any{"action": "goto_signup"})
	resp, data := other.postAction(t, map[string]any{
		"action":           "signup",
		"username":         "alice",
		"password":         "different",
		"confirm_password": "different",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, handler.ErrCodeDuplicateUser, errResp.Code)
}

// newTestAppWithStores gives a second client (fresh cookie jar) against the
// same server, simulating another browser.
func newTestAppWithStores(t *testing.T, app *testApp) *testApp {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testApp{
		server:    app.server,
		client:    &http.Client{Jar: jar},
		artifacts: app.artifacts,
		runner:    app.runner,
	}
}

func TestAPI_InvalidActionForPage(t *testing.T) {
	app := newTestApp(t)

	resp, data := app.postAction(t, map[string]any{
		"action":      "generate",
		"title":       "T",
		"theme":       "Th",
		"style":       "Fantasy",
		"scene_count": 5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, handler.ErrCodeInvalidAction, errResp.Code)
}

func TestAPI_MissingActionField(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.postAction(t, map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PipelineFailureSurfaces(t *testing.T) {
	app := newTestApp(t)

	app.applyOK(t, map[string]any{"action": "goto_signup"})
	app.applyOK(t, map[string]any{
		"action":           "signup",
		"username":         "alice",
		"password":         "hunter2",
		"confirm_password": "hunter2",
	})
	app.applyOK(t, map[string]any{"action": "create_story"})

	app.runner.On("Run", mock.Anything, mock.Anything).
		Return(nil, domain.ErrPipelineFailed).Once()

	resp, data := app.postAction(t, map[string]any{
		"action":      "generate",
		"title":       "T",
		"theme":       "Th",
		"style":       "Mystery",
		"scene_count": 4,
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, handler.ErrCodePipelineFailed, errResp.Code)

	// The session stays on the create form for a retry.
	assert.Equal(t, domain.PageCreate, app.getView(t).Page)
}

func TestAPI_VideoDownloadGuards(t *testing.T) {
	app := newTestApp(t)

	// No bundle on the session yet.
	resp, err := app.client.Get(app.server.URL + "/api/video/story-whatever.mp4")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A bundle scoped to this session only allows its own ref.
	app.applyOK(t, map[string]any{"action": "goto_signup"})
	app.applyOK(t, map[string]any{
		"action":           "signup",
		"username":         "alice",
		"password":         "hunter2",
		"confirm_password": "hunter2",
	})
	app.applyOK(t, map[string]any{"action": "create_story"})

	videoRef, putErr := app.artifacts.Put("story", "mp4", []byte("bytes"))
	require.NoError(t, putErr)
	otherRef, putErr := app.artifacts.Put("story", "mp4", []byte("someone else's video"))
	require.NoError(t, putErr)

	app.runner.On("Run", mock.Anything, mock.Anything).Return(&domain.OutputBundle{
		Scenes:        []string{"one"},
		NarrationText: "one.",
		AudioRef:      "narr.mp3",
		ImageRefs:     []string{"1.png"},
		VideoRef:      videoRef,
	}, nil).Once()
	app.applyOK(t, map[string]any{
		"action":      "generate",
		"title":       "T",
		"theme":       "Th",
		"style":       "Myth",
		"scene_count": 3,
	})

	resp, err = app.client.Get(app.server.URL + "/api/video/" + otherRef)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "a ref outside the session's bundle must be refused")

	resp, err = app.client.Get(app.server.URL + "/api/video/" + videoRef)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SessionPersistsAcrossRequests(t *testing.T) {
	app := newTestApp(t)

	app.applyOK(t, map[string]any{"action": "goto_signup"})
	v := app.getView(t)
	assert.Equal(t, domain.PageSignup, v.Page, "the cookie must bind follow-up requests to the same session")

	// A client without the cookie gets a fresh session at login.
	fresh := newTestAppWithStores(t, app)
	assert.Equal(t, domain.PageLogin, fresh.getView(t).Page)
}
