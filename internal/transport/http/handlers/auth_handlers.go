package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coherentus/yatube/internal/auth"
)

// sessionCookieMaxAge mirrors the redis session TTL so the cookie and the
// session expire together.
func (h *Handler) sessionCookieMaxAge() int {
	return h.cfg.SessionTTLHours * 3600
}

func (h *Handler) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"User": auth.UserFrom(c)})
}

func (h *Handler) Signup(c *gin.Context) {
	email := c.PostForm("email")
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.auth.Register(c.Request.Context(), email, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) || errors.Is(err, auth.ErrUsernameExists) || errors.Is(err, auth.ErrEmailExists) {
			c.HTML(http.StatusOK, "signup.html", gin.H{
				"Error":    err.Error(),
				"Email":    email,
				"Username": username,
			})
			return
		}
		h.ServerError(c)
		return
	}
	c.Redirect(http.StatusFound, h.cfg.LoginURL)
}

func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Next": c.Query("next"),
		"User": auth.UserFrom(c),
	})
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")

	_, token, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			c.HTML(http.StatusOK, "login.html", gin.H{
				"Error":    "Wrong username or password.",
				"Username": username,
				"Next":     next,
			})
			return
		}
		h.ServerError(c)
		return
	}

	c.SetCookie(auth.SessionCookie, token, h.sessionCookieMaxAge(), "/", "", false, true)
	if auth.SafeNext(next) {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
		_ = h.auth.Logout(c.Request.Context(), token)
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
