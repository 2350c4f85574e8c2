package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"unigate/internal/metrics"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

const (
	userContextKey = "user"
	sessionCookie  = "session"
)

// withUser resolves the session token into the current user. Anonymous
// requests pass through; each route decides whether a user is required.
func (s *Server) withUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			if ck, err := c.Cookie(sessionCookie); err == nil {
				token = ck.Value
			}
		}
		if token == "" {
			return next(c)
		}

		ctx := c.Request().Context()
		sess, err := s.Store.SessionByToken(ctx, token)
		if err != nil || time.Now().After(sess.ExpiresAt) {
			return next(c)
		}

		user, err := s.Store.UserByID(ctx, sess.UserID)
		if err != nil {
			return next(c)
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// requireUser rejects anonymous requests.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return apperr.ErrUnauthorized
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		metrics.Global.RecordRequest(c.Response().Status)

		s.Log.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("duration", time.Since(start)).
			Msg("request")
		return nil
	}
}
