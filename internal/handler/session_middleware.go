package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

const (
	ctxKeySession = "storyweaver_session"
	ctxKeyRelease = "storyweaver_session_release"
)

// sessionClaims is the JWT payload of the session cookie.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionMiddleware resolves the caller's session from the signed cookie,
// creating a fresh one when the cookie is absent, invalid or expired. The
// session is locked for the whole request so one action runs to completion
// before the session accepts the next.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, release := h.resolveSession(c)

		c.Set(ctxKeySession, sess)
		c.Set(ctxKeyRelease, release)
		defer release()

		c.Next()
	}
}

func (h *Handler) resolveSession(c *gin.Context) (*domain.Session, func()) {
	cookie, err := c.Cookie(h.cfg.SessionCookieName)
	if err == nil {
		if sid, parseErr := h.parseSessionToken(cookie); parseErr == nil {
			if sess, release, acqErr := h.sessions.Acquire(sid); acqErr == nil {
				return sess, release
			}
		} else if !errors.Is(parseErr, jwt.ErrTokenExpired) {
			h.logger.Debug("Invalid session cookie, issuing a new session", zap.Error(parseErr))
		}
	}

	sess, release := h.sessions.Create()
	h.setSessionCookie(c, sess.ID)
	return sess, release
}

// parseSessionToken verifies the cookie JWT and extracts the session ID.
func (h *Handler) parseSessionToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.SessionSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.SID, nil
}

func (h *Handler) setSessionCookie(c *gin.Context, sid string) {
	now := time.Now()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.SessionSecret))
	if err != nil {
		h.logger.Error("Failed to sign session cookie", zap.Error(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, signed, int(h.cfg.SessionTTL.Seconds()), "/", "", false, true)
}

// currentSession returns the session attached by SessionMiddleware.
func currentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}
