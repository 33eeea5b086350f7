package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storyweaver/internal/domain"
	"storyweaver/internal/service"
)

// Form carries the input fields posted with a user action. Fields that the
// action does not use are ignored.
type Form struct {
	Username        string
	Password        string
	ConfirmPassword string
	Title           string
	Theme           string
	Style           string
	SceneCount      int
}

// PipelineRunner runs the full generation pipeline for one story request.
type PipelineRunner interface {
	Run(ctx context.Context, req domain.StoryRequest) (*domain.OutputBundle, error)
}

// Controller is the finite-state navigation core. It owns every session
// mutation: a user action is applied against the explicit transition table
// and either moves the session to its next page or fails with a recoverable
// error that leaves the session unchanged.
type Controller struct {
	auth        service.AuthService
	pipeline    PipelineRunner
	bounds      domain.SceneBounds
	transitions map[domain.Page]map[domain.Action]transitionFunc
	logger      *zap.Logger
}

type transitionFunc func(ctx context.Context, sess *domain.Session, form Form) error

// NewController builds the controller and its transition table.
func NewController(auth service.AuthService, pipeline PipelineRunner, bounds domain.SceneBounds, logger *zap.Logger) *Controller {
	c := &Controller{
		auth:     auth,
		pipeline: pipeline,
		bounds:   bounds,
		logger:   logger.Named("NavController"),
	}

	// One row per (page, action) pair of the navigation table. Pairs absent
	// here are rejected with ErrInvalidAction.
	c.transitions = map[domain.Page]map[domain.Action]transitionFunc{
		domain.PageLogin: {
			domain.ActionLogin:      c.doLogin,
			domain.ActionGotoSignup: gotoPage(domain.PageSignup),
		},
		domain.PageSignup: {
			domain.ActionSignup:      c.doSignup,
			domain.ActionBackToLogin: gotoPage(domain.PageLogin),
		},
		domain.PageLanding: {
			domain.ActionCreateStory: gotoPage(domain.PageCreate),
			domain.ActionLogout:      doLogout,
		},
		domain.PageCreate: {
			domain.ActionGenerate: c.doGenerate,
			domain.ActionBack:     gotoPage(domain.PageLanding),
		},
		domain.PageOutput: {
			domain.ActionBack:          gotoPage(domain.PageCreate),
			domain.ActionBackToLanding: gotoPage(domain.PageLanding),
			domain.ActionLogout:        doLogout,
		},
	}

	return c
}

// Apply executes one user action against the session. Recoverable failures
// (bad credentials, signup validation, pipeline failure) return an error and
// leave the session on its current page with its state untouched.
func (c *Controller) Apply(ctx context.Context, sess *domain.Session, action domain.Action, form Form) error {
	row, ok := c.transitions[sess.Page]
	if !ok {
		return fmt.Errorf("%w: unknown page %q", domain.ErrInvalidAction, sess.Page)
	}
	fn, ok := row[action]
	if !ok {
		c.logger.Warn("Rejected action for page",
			zap.String("page", string(sess.Page)),
			zap.String("action", string(action)),
		)
		return fmt.Errorf("%w: %q on page %q", domain.ErrInvalidAction, action, sess.Page)
	}
	return fn(ctx, sess, form)
}

// gotoPage returns a transition that only switches the page.
func gotoPage(to domain.Page) transitionFunc {
	return func(_ context.Context, sess *domain.Session, _ Form) error {
		sess.Page = to
		return nil
	}
}

// doLogout clears the identity and returns to the login page. Cached
// generation outputs survive the logout.
func doLogout(_ context.Context, sess *domain.Session, _ Form) error {
	sess.Username = ""
	sess.Page = domain.PageLogin
	return nil
}

func (c *Controller) doLogin(ctx context.Context, sess *domain.Session, form Form) error {
	user, err := c.auth.Login(ctx, form.Username, form.Password)
	if err != nil {
		// Session stays on login; the error surfaces to the user.
		return err
	}
	sess.Username = user.Username
	sess.Page = domain.PageLanding
	return nil
}

func (c *Controller) doSignup(ctx context.Context, sess *domain.Session, form Form) error {
	username := strings.TrimSpace(form.Username)
	if username == "" || form.Password == "" {
		return domain.ErrFieldsRequired
	}
	if form.Password != form.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}

	user, err := c.auth.Register(ctx, username, form.Password)
	if err != nil {
		return err
	}
	sess.Username = user.Username
	sess.Page = domain.PageLanding
	return nil
}

// doGenerate validates the story request, runs the pipeline and stores the
// bundle. On failure the session keeps its page and any previous bundle.
func (c *Controller) doGenerate(ctx context.Context, sess *domain.Session, form Form) error {
	req, err := c.buildRequest(form)
	if err != nil {
		return err
	}

	bundle, err := c.pipeline.Run(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrPipelineFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPipelineFailed, err)
	}

	sess.Bundle = bundle
	sess.Page = domain.PageOutput
	return nil
}

// buildRequest checks the configurable guards: style must be one of the
// fixed set, scene count within the inclusive bounds. Title and theme are
// free text.
func (c *Controller) buildRequest(form Form) (domain.StoryRequest, error) {
	style := domain.StoryStyle(form.Style)
	if !style.Valid() {
		return domain.StoryRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidStyle, form.Style)
	}
	if !c.bounds.Contains(form.SceneCount) {
		return domain.StoryRequest{}, fmt.Errorf("%w: %d not in [%d, %d]",
			domain.ErrSceneCountOutOfRange, form.SceneCount, c.bounds.Min, c.bounds.Max)
	}
	return domain.StoryRequest{
		Title:      form.Title,
		Theme:      form.Theme,
		Style:      style,
		SceneCount: form.SceneCount,
	}, nil
}
