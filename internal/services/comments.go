package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/models"
	"yatube/internal/repository"
)

type Comments struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewComments(repo *repository.Repository, logger *zap.Logger) *Comments {
	return &Comments{repo: repo, logger: logger}
}

// Add stores a comment by actor under the post. text must already be valid.
func (s *Comments) Add(ctx context.Context, actor *models.User, postID uint, text string) (*models.Comment, error) {
	if !authz.CanComment(actor) {
		return nil, ErrForbidden
	}
	if _, err := s.repo.Posts.GetByID(ctx, postID); err != nil {
		return nil, lookupErr(fmt.Sprintf("post %d", postID), err)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := s.repo.Comments.Create(ctx, comment); err != nil {
		s.logger.Sugar().Errorf("comment on post %d by %s: %v", postID, actor.Username, err)
		return nil, fmt.Errorf("create comment: %w: %w", ErrInternal, err)
	}
	return comment, nil
}
