package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/config"
	"github.com/coherentus/yatube/internal/db"
	"github.com/coherentus/yatube/internal/repository"
	"github.com/coherentus/yatube/internal/service"
)

type Handler struct {
	cfg    *config.Config
	posts  *repository.PostRepository
	groups *repository.GroupRepository
	users  *repository.UserRepository
	svc    *service.PostService
	auth   *auth.Service
}

func New(cfg *config.Config, database *db.Database, svc *service.PostService, authSvc *auth.Service) *Handler {
	return &Handler{
		cfg:    cfg,
		posts:  repository.NewPostRepository(database.Gorm),
		groups: repository.NewGroupRepository(database.Gorm),
		users:  repository.NewUserRepository(database.Gorm),
		svc:    svc,
		auth:   authSvc,
	}
}

// NotFound renders the custom 404 body; also installed as the router's
// NoRoute handler.
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"Path": c.Request.URL.Path,
		"User": auth.UserFrom(c),
	})
	c.Abort()
}

func (h *Handler) ServerError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{})
	c.Abort()
}
