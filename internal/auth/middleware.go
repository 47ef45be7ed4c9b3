package auth

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coherentus/yatube/internal/models"
)

const userContextKey = "auth.user"

// CurrentUser resolves the session cookie into a request user on every
// request. Requests without a valid session just carry no user.
func CurrentUser(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			c.Next()
			return
		}
		user, err := svc.UserByToken(c.Request.Context(), cookie)
		if err != nil {
			log.Printf("session lookup failed: %v", err)
			c.Next()
			return
		}
		if user != nil {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login page, carrying the
// original path in ?next= so login can bounce back.
func RequireAuth(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c) == nil {
			next := c.Request.URL.Path
			c.Redirect(http.StatusFound, loginURL+"?next="+url.QueryEscape(next))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user for the request, or nil.
func UserFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// SafeNext keeps login redirects on-site: only rooted local paths pass.
func SafeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//")
}
