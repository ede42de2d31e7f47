package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/storage"
)

// Upload is an image file attached to a post form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PostInput struct {
	Text    string
	GroupID uint // 0 means no group
	Image   *Upload
}

type Posts struct {
	repo    *repository.Repository
	storage storage.Store
	logger  *zap.Logger
}

func NewPosts(repo *repository.Repository, store storage.Store, logger *zap.Logger) *Posts {
	return &Posts{repo: repo, storage: store, logger: logger}
}

func (s *Posts) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("post %d", id), err)
	}
	return post, nil
}

// Groups lists the choices offered by the post form.
func (s *Posts) Groups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.Groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w: %w", ErrInternal, err)
	}
	return groups, nil
}

func (s *Posts) Create(ctx context.Context, actor *models.User, in PostInput) (*models.Post, error) {
	if !authz.CanCreatePost(actor) {
		return nil, ErrForbidden
	}

	groupID, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	image, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	authorID := actor.ID
	post := &models.Post{
		Text:     in.Text,
		AuthorID: &authorID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := s.repo.Posts.Create(ctx, post); err != nil {
		s.logger.Sugar().Errorf("create post for %s: %v", actor.Username, err)
		s.dropImage(ctx, image)
		return nil, fmt.Errorf("create post: %w: %w", ErrInternal, err)
	}
	return post, nil
}

// Update edits a post on behalf of its author. Anyone else gets
// ErrForbidden and the post is left untouched.
func (s *Posts) Update(ctx context.Context, actor *models.User, id uint, in PostInput) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditPost(actor, post) {
		return post, ErrForbidden
	}

	groupID, err := s.resolveGroup(ctx, in.GroupID)
	if err != nil {
		return post, err
	}
	image, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return post, err
	}

	previous := post.Image
	post.Text = in.Text
	post.GroupID = groupID
	post.Group = nil
	if image != "" {
		post.Image = image
	}
	if err := s.repo.Posts.Update(ctx, post); err != nil {
		s.logger.Sugar().Errorf("update post %d: %v", id, err)
		s.dropImage(ctx, image)
		return nil, fmt.Errorf("update post: %w: %w", ErrInternal, err)
	}
	if image != "" && previous != "" {
		s.dropImage(ctx, previous)
	}
	return post, nil
}

func (s *Posts) resolveGroup(ctx context.Context, id uint) (*uint, error) {
	if id == 0 {
		return nil, nil
	}
	group, err := s.repo.Groups.GetByID(ctx, id)
	if err != nil {
		err = lookupErr("group", err)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidGroup
		}
		return nil, err
	}
	return &group.ID, nil
}

func (s *Posts) saveImage(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	key, err := s.storage.Save(ctx, storage.PostsPrefix, up.Filename, up.Body, up.Size, up.ContentType)
	if errors.Is(err, storage.ErrNotImage) {
		return "", ErrInvalidImage
	}
	if err != nil {
		s.logger.Sugar().Errorf("save image %s: %v", up.Filename, err)
		return "", fmt.Errorf("save image: %w: %w", ErrInternal, err)
	}
	return key, nil
}

func (s *Posts) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Sugar().Warnf("delete image %s: %v", key, err)
	}
}
