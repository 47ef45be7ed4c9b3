package http

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/config"
	"github.com/coherentus/yatube/internal/db"
	"github.com/coherentus/yatube/internal/service"
	"github.com/coherentus/yatube/internal/transport/http/handlers"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Router = *gin.Engine

func NewRouter(cfg *config.Config, database *db.Database, svc *service.PostService, authSvc *auth.Service) Router {
	if mode := gin.Mode(); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")))
	r.MaxMultipartMemory = 8 << 20

	h := handlers.New(cfg, database, svc, authSvc)

	r.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		h.ServerError(c)
	}))
	r.Use(auth.CurrentUser(authSvc))
	r.NoRoute(h.NotFound)

	requireAuth := auth.RequireAuth(cfg.LoginURL)

	r.GET("/", h.Index)
	r.GET("/group/", h.GroupIndex)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/new/", requireAuth, h.NewPostForm)
	r.POST("/new/", requireAuth, h.NewPost)
	r.GET("/search/", h.Search)

	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	r.GET("/auth/signup/", h.SignupForm)
	r.POST("/auth/signup/", h.Signup)
	r.GET("/auth/login/", h.LoginForm)
	r.POST("/auth/login/", h.Login)
	r.GET("/auth/logout/", h.Logout)

	r.Static("/media", cfg.MediaDir)

	// Username routes go last; every static prefix above wins over the param.
	r.GET("/:username/", h.Profile)
	r.GET("/:username/:post_id/", h.PostDetail)
	r.GET("/:username/:post_id/edit/", requireAuth, h.EditPostForm)
	r.POST("/:username/:post_id/edit/", requireAuth, h.EditPost)

	return r
}
