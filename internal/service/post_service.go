package service

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/db"
	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/repository"
)

// Cache is the read-through store for post-detail lookups; the redis client
// satisfies it, tests use a no-op.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Del(ctx context.Context, key string) error
}

// Indexer receives the searchable projection of every written post. Indexing
// is best-effort: a search that lags a write is acceptable, a failed write is
// not.
type Indexer interface {
	IndexPost(ctx context.Context, p *models.Post) error
	SearchPostIDs(ctx context.Context, query string) ([]uint, error)
}

type PostService struct {
	db    *db.Database
	cache Cache
	index Indexer
	posts *repository.PostRepository
}

func NewPostService(database *db.Database, cache Cache, index Indexer) *PostService {
	return &PostService{
		db:    database,
		cache: cache,
		index: index,
		posts: repository.NewPostRepository(database.Gorm),
	}
}

type CreatePostInput struct {
	Text    string
	GroupID *uint
	Image   string
}

type UpdatePostInput struct {
	Text    string
	GroupID *uint
	Image   string
}

// CreatePost persists a new post owned by author. The post row and its
// activity-log entry commit in one transaction; nothing is written when
// either fails.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in CreatePostInput) (*models.Post, error) {
	post := &models.Post{Text: in.Text, AuthorID: author.ID, GroupID: in.GroupID, Image: in.Image}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.posts.Create(ctx, tx, post); err != nil {
			return err
		}
		return s.posts.LogActivity(ctx, tx, "new_post", post.ID)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.posts.GetByAuthorAndID(ctx, author.Username, post.ID)
	if err != nil {
		return nil, err
	}
	if err := s.index.IndexPost(ctx, created); err != nil {
		log.Printf("index post %d: %v", created.ID, err)
	}
	return created, nil
}

// UpdatePost rewrites text, group and image of an existing post in place.
// Identity, author and pub_date are untouched. The cached detail entry is
// dropped so the next read sees the new values.
func (s *PostService) UpdatePost(ctx context.Context, post *models.Post, in UpdatePostInput) (*models.Post, error) {
	updated := &models.Post{ID: post.ID, Text: in.Text, GroupID: in.GroupID, Image: in.Image}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.posts.Update(ctx, tx, updated); err != nil {
			return err
		}
		return s.posts.LogActivity(ctx, tx, "edit_post", post.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Del(ctx, detailKey(post.Author.Username, post.ID)); err != nil {
		log.Printf("invalidate post %d: %v", post.ID, err)
	}
	fresh, err := s.posts.GetByAuthorAndID(ctx, post.Author.Username, post.ID)
	if err != nil {
		return nil, err
	}
	if err := s.index.IndexPost(ctx, fresh); err != nil {
		log.Printf("index post %d: %v", fresh.ID, err)
	}
	return fresh, nil
}

// GetPost resolves a post by (author username, id) through the cache.
func (s *PostService) GetPost(ctx context.Context, username string, id uint) (*models.Post, error) {
	key := detailKey(username, id)
	var cached models.Post
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}
	post, err := s.posts.GetByAuthorAndID(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, post); err != nil {
		log.Printf("cache post %d: %v", post.ID, err)
	}
	return post, nil
}

// SearchPosts matches the query against indexed post text and re-reads the
// hits from the store in listing order.
func (s *PostService) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	ids, err := s.index.SearchPostIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.posts.ListByIDs(ctx, ids)
}

func detailKey(username string, id uint) string {
	return fmt.Sprintf("post:%s:%d", username, id)
}
