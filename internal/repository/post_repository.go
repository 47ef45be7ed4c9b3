package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/models"
)

type PostRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) *PostRepository { return &PostRepository{db: db} }

// Listings order newest first; id breaks ties so posts created inside the
// same clock tick page deterministically.
func (r *PostRepository) listing(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		Order("pub_date DESC, id DESC")
}

func (r *PostRepository) Create(ctx context.Context, tx *gorm.DB, p *models.Post) error {
	return tx.WithContext(ctx).Create(p).Error
}

// Update rewrites the mutable fields of an existing post in place. Author and
// pub_date never change after creation, so they are deliberately absent here.
func (r *PostRepository) Update(ctx context.Context, tx *gorm.DB, p *models.Post) error {
	return tx.WithContext(ctx).Model(&models.Post{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"text":     p.Text,
		"group_id": p.GroupID,
		"image":    p.Image,
	}).Error
}

// GetByAuthorAndID resolves a post jointly by its author's username and its
// id. A valid post id under the wrong username is a miss.
func (r *PostRepository) GetByAuthorAndID(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Select("posts.*").
		Preload("Author").Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("users.username = ? AND posts.id = ?", username, id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListAll(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing(ctx).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing(ctx).Where("group_id = ?", groupID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.listing(ctx).Where("author_id = ?", authorID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// ListByIDs fetches the given posts in the default listing order; ids that no
// longer exist are silently absent.
func (r *PostRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []models.Post
	err := r.listing(ctx).Where("posts.id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) LogActivity(ctx context.Context, tx *gorm.DB, action string, postID uint) error {
	entry := models.ActivityLog{Action: action, PostID: postID}
	return tx.WithContext(ctx).Create(&entry).Error
}
