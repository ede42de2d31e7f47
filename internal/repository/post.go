package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
	"yatube/internal/paginator"
)

type postRepo struct {
	db *gorm.DB
}

func newPostRepo(db *gorm.DB) Posts {
	return &postRepo{db: db}
}

// newestFirst is the one ordering every listing shares. The id tiebreak keeps
// pages stable when several posts share a timestamp.
func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("pub_date DESC").Order("id DESC")
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Group")
}

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

func (r *postRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepo) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *postRepo) list(ctx context.Context, q *gorm.DB, perPage, page int) (*paginator.Page[models.Post], error) {
	return paginator.Query[models.Post](ctx, q, perPage, page, newestFirst, withRelations)
}

func (r *postRepo) ListAll(ctx context.Context, perPage, page int) (*paginator.Page[models.Post], error) {
	return r.list(ctx, r.db.Model(&models.Post{}), perPage, page)
}

func (r *postRepo) ListByGroup(ctx context.Context, groupID uint, perPage, page int) (*paginator.Page[models.Post], error) {
	return r.list(ctx, r.db.Model(&models.Post{}).Where("group_id = ?", groupID), perPage, page)
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorID uint, perPage, page int) (*paginator.Page[models.Post], error) {
	return r.list(ctx, r.db.Model(&models.Post{}).Where("author_id = ?", authorID), perPage, page)
}

// ListFeed filters with a subquery rather than a join so duplicate follow
// edges never duplicate posts.
func (r *postRepo) ListFeed(ctx context.Context, followerID uint, perPage, page int) (*paginator.Page[models.Post], error) {
	followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", followerID)
	return r.list(ctx, r.db.Model(&models.Post{}).Where("author_id IN (?)", followed), perPage, page)
}
