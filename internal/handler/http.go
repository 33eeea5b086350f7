package handler

import (
	"net/http"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyweaver/internal/artifact"
	"storyweaver/internal/config"
	"storyweaver/internal/domain"
	"storyweaver/internal/nav"
	"storyweaver/internal/session"
)

// Handler wires the navigation controller and its stores to the HTTP
// surface.
type Handler struct {
	controller *nav.Controller
	sessions   *session.Store
	artifacts  artifact.Store
	bounds     domain.SceneBounds
	cfg        *config.Config
	logger     *zap.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(
	controller *nav.Controller,
	sessions *session.Store,
	artifacts artifact.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		controller: controller,
		sessions:   sessions,
		artifacts:  artifacts,
		bounds: domain.SceneBounds{
			Min:     cfg.MinScenes,
			Max:     cfg.MaxScenes,
			Default: cfg.DefaultScenes,
		},
		cfg:    cfg,
		logger: logger.Named("HTTPHandler"),
	}
}

// RegisterRoutes mounts the API on the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(h.SessionMiddleware())
	{
		api.GET("/view", h.getView)
		api.POST("/action", h.actionRateLimiter(), h.postAction)
		api.GET("/video/:ref", h.downloadVideo)
	}
}

// actionRateLimiter limits user actions per client IP with an in-memory
// store.
func (h *Handler) actionRateLimiter() gin.HandlerFunc {
	store := rateli.InMemoryStore(&rateli.InMemoryOptions{
		Rate:  time.Minute,
		Limit: h.cfg.ActionRateLimit,
	})
	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			h.logger.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    ErrCodeBadRequest,
				Message: "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

// getView renders the current screen for the caller's session.
func (h *Handler) getView(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		handleServiceError(c, domain.ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, nav.BuildView(sess, h.bounds))
}

// postAction applies one user action and returns the resulting screen.
func (h *Handler) postAction(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		handleServiceError(c, domain.ErrSessionNotFound)
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeBadRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	form := nav.Form{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Title:           req.Title,
		Theme:           req.Theme,
		Style:           req.Style,
		SceneCount:      req.SceneCount,
	}

	if err := h.controller.Apply(c.Request.Context(), sess, domain.Action(req.Action), form); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, nav.BuildView(sess, h.bounds))
}

// downloadVideo streams the session's generated video. The ref must match
// the session's own bundle so artifacts cannot be enumerated.
func (h *Handler) downloadVideo(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		handleServiceError(c, domain.ErrSessionNotFound)
		return
	}

	ref := c.Param("ref")
	if !sess.Bundle.Complete() || sess.Bundle.VideoRef != ref {
		handleServiceError(c, domain.ErrNoBundle)
		return
	}

	reader, size, err := h.artifacts.Open(ref)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+ref+`"`)
	c.DataFromReader(http.StatusOK, size, "video/mp4", reader, nil)
}
