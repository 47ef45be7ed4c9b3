package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coherentus/yatube/internal/auth"
)

func (h *Handler) AboutAuthor(c *gin.Context) {
	c.HTML(http.StatusOK, "about_author.html", gin.H{"User": auth.UserFrom(c)})
}

func (h *Handler) AboutTech(c *gin.Context) {
	c.HTML(http.StatusOK, "about_tech.html", gin.H{"User": auth.UserFrom(c)})
}
