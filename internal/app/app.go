package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/cache"
	"github.com/coherentus/yatube/internal/config"
	"github.com/coherentus/yatube/internal/db"
	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/repository"
	"github.com/coherentus/yatube/internal/search"
	"github.com/coherentus/yatube/internal/service"
	"github.com/coherentus/yatube/internal/transport/http"
)

type Application struct {
	Config *config.Config
	DB     *db.Database
	Cache  *cache.RedisClient
	Search *search.Elastic
	Router http.Router
}

func Initialize() (*Application, error) {
	cfg := config.Load()

	database, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if err := database.AutoMigrate(&models.User{}, &models.Group{}, &models.Post{}, &models.ActivityLog{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	if err := database.EnsurePostLookupIndex(); err != nil {
		return nil, fmt.Errorf("ensure post lookup index: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	es, err := search.NewElastic(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := es.EnsurePostsIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure ES index: %w", err)
	}

	users := repository.NewUserRepository(database.Gorm)
	authSvc := auth.NewService(users, redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour)
	postSvc := service.NewPostService(database, redisClient, es)

	r := http.NewRouter(cfg, database, postSvc, authSvc)

	return &Application{
		Config: cfg,
		DB:     database,
		Cache:  redisClient,
		Search: es,
		Router: r,
	}, nil
}

func (a *Application) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
