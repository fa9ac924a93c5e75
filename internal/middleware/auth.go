package middleware

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/internal/session"
)

// SessionCookie carries the opaque session id; the session itself lives in
// Redis.
const SessionCookie = "inkwell_session"

const (
	sessionKey = "session"
	userKey    = "current_user"
)

type AuthMiddleware struct {
	sessions session.Store
	users    repository.UserRepository
	ttl      time.Duration
}

func NewAuthMiddleware(sessions session.Store, users repository.UserRepository, ttl time.Duration) *AuthMiddleware {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AuthMiddleware{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
	}
}

// LoadSession resolves (or establishes) the browser session and the current
// user, making both available to every downstream handler and template.
// Identity is carried on the request context, never in package state.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session

		if cookie, err := c.Cookie(SessionCookie); err == nil {
			sess, err = m.sessions.Get(c.Request.Context(), cookie)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				log.Printf("failed to load session: %v", err)
			}
		}

		if sess == nil {
			created, err := m.sessions.Create(c.Request.Context())
			if err != nil {
				renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
				return
			}
			sess = created

			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sess.ID, int(m.ttl.Seconds()), "/", "", false, true)
		}

		c.Set(sessionKey, sess)

		if sess.Authenticated() {
			user, err := m.users.FindByID(c.Request.Context(), sess.UserID)
			if err != nil {
				// Stale binding (user gone); treat as anonymous.
				if clearErr := m.sessions.ClearUser(c.Request.Context(), sess.ID); clearErr != nil {
					log.Printf("failed to clear stale session user: %v", clearErr)
				}
				sess.UserID = 0
			} else {
				c.Set(userKey, user)
			}
		}

		c.Next()
	}
}

// RequireAdmin guards the post management routes. Anonymous visitors get
// 406, authenticated non-admins 403; both are preserved wire behavior.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			renderError(c, http.StatusNotAcceptable, "You must be logged in to do that.")
			return
		}

		if !user.IsAdmin() {
			renderError(c, http.StatusForbidden, "Admin access required.")
			return
		}

		c.Next()
	}
}

// SessionFrom returns the request's session, established by LoadSession.
func SessionFrom(c *gin.Context) *session.Session {
	if v, exists := c.Get(sessionKey); exists {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// CurrentUser returns the authenticated user for this request, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	if v, exists := c.Get(userKey); exists {
		if user, ok := v.(*model.User); ok {
			return user, true
		}
	}
	return nil, false
}

func renderError(c *gin.Context, code int, message string) {
	user, _ := CurrentUser(c)
	c.HTML(code, "error.html", gin.H{
		"Code":        code,
		"Message":     message,
		"CurrentUser": user,
	})
	c.Abort()
}
