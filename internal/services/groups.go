package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yatube/internal/models"
	"yatube/internal/repository"
)

type Groups struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewGroups(repo *repository.Repository, logger *zap.Logger) *Groups {
	return &Groups{repo: repo, logger: logger}
}

func (s *Groups) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	if _, err := s.repo.Groups.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup group: %w: %w", ErrInternal, err)
	}

	group := &models.Group{Title: title, Slug: slug, Description: description}
	if err := s.repo.Groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w: %w", ErrInternal, err)
	}
	s.logger.Info("Group created", zap.String("slug", slug))
	return group, nil
}

func (s *Groups) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.Groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w: %w", ErrInternal, err)
	}
	return groups, nil
}

// Delete removes the group by slug. Its posts stay, ungrouped.
func (s *Groups) Delete(ctx context.Context, slug string) error {
	group, err := s.repo.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return lookupErr("group "+slug, err)
	}
	if err := s.repo.Groups.Delete(ctx, group.ID); err != nil {
		return lookupErr("group "+slug, err)
	}
	s.logger.Info("Group deleted", zap.String("slug", slug))
	return nil
}
