package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/models"
	"yatube/internal/repository"
)

// Follows manages follow edges. Both operations are idempotent.
//
// Follow checks for an existing edge and then inserts without a transaction
// or a unique index, so two concurrent requests can both insert. Listings
// tolerate the duplicate.
type Follows struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewFollows(repo *repository.Repository, logger *zap.Logger) *Follows {
	return &Follows{repo: repo, logger: logger}
}

// Follow makes actor follow username and returns the author. Following
// yourself or an author you already follow does nothing.
func (s *Follows) Follow(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	author, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user "+username, err)
	}
	if !authz.CanFollow(actor, author) {
		return author, nil
	}

	exists, err := s.repo.Follows.Exists(ctx, actor.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w: %w", ErrInternal, err)
	}
	if exists {
		return author, nil
	}

	if err := s.repo.Follows.Create(ctx, &models.Follow{UserID: actor.ID, AuthorID: author.ID}); err != nil {
		s.logger.Sugar().Errorf("follow %s -> %s: %v", actor.Username, author.Username, err)
		return nil, fmt.Errorf("create follow: %w: %w", ErrInternal, err)
	}
	return author, nil
}

// Unfollow removes every edge from actor to username. A missing edge is not
// an error.
func (s *Follows) Unfollow(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	author, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user "+username, err)
	}
	if _, err := s.repo.Follows.Delete(ctx, actor.ID, author.ID); err != nil {
		s.logger.Sugar().Errorf("unfollow %s -> %s: %v", actor.Username, author.Username, err)
		return nil, fmt.Errorf("delete follow: %w: %w", ErrInternal, err)
	}
	return author, nil
}
