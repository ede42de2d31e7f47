package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"yatube/internal/models"
	"yatube/internal/paginator"
	"yatube/internal/repository"
)

// Listing builds the paginated post listings. Every listing shares the same
// page size and newest-first ordering.
type Listing struct {
	repo    *repository.Repository
	perPage int
	logger  *zap.Logger
}

func NewListing(repo *repository.Repository, perPage int, logger *zap.Logger) *Listing {
	if perPage < 1 {
		perPage = paginator.DefaultPerPage
	}
	return &Listing{repo: repo, perPage: perPage, logger: logger}
}

func (s *Listing) PerPage() int {
	return s.perPage
}

func (s *Listing) Index(ctx context.Context, page int) (*paginator.Page[models.Post], error) {
	p, err := s.repo.Posts.ListAll(ctx, s.perPage, page)
	if err != nil {
		s.logger.Sugar().Errorf("list posts page %d: %v", page, err)
		return nil, fmt.Errorf("list posts: %w: %w", ErrInternal, err)
	}
	return p, nil
}

type GroupListing struct {
	Group *models.Group
	Page  *paginator.Page[models.Post]
}

func (s *Listing) Group(ctx context.Context, slug string, page int) (*GroupListing, error) {
	group, err := s.repo.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr("group "+slug, err)
	}
	p, err := s.repo.Posts.ListByGroup(ctx, group.ID, s.perPage, page)
	if err != nil {
		s.logger.Sugar().Errorf("list posts of group %s: %v", slug, err)
		return nil, fmt.Errorf("list group posts: %w: %w", ErrInternal, err)
	}
	return &GroupListing{Group: group, Page: p}, nil
}

type ProfileListing struct {
	Author    *models.User
	Page      *paginator.Page[models.Post]
	PostCount int64
	Followers int64
	Following int64
	// IsFollowing is whether the viewer follows Author.
	IsFollowing bool
}

// Profile lists an author's posts. viewer may be nil.
func (s *Listing) Profile(ctx context.Context, viewer *models.User, username string, page int) (*ProfileListing, error) {
	author, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user "+username, err)
	}

	p, err := s.repo.Posts.ListByAuthor(ctx, author.ID, s.perPage, page)
	if err != nil {
		s.logger.Sugar().Errorf("list posts of %s: %v", username, err)
		return nil, fmt.Errorf("list author posts: %w: %w", ErrInternal, err)
	}

	out := &ProfileListing{Author: author, Page: p, PostCount: p.Count}
	if out.Followers, err = s.repo.Follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count followers: %w: %w", ErrInternal, err)
	}
	if out.Following, err = s.repo.Follows.CountFollowing(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("count following: %w: %w", ErrInternal, err)
	}
	if viewer != nil && viewer.ID != author.ID {
		if out.IsFollowing, err = s.repo.Follows.Exists(ctx, viewer.ID, author.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w: %w", ErrInternal, err)
		}
	}
	return out, nil
}

// Feed lists posts by the authors viewer follows.
func (s *Listing) Feed(ctx context.Context, viewer *models.User, page int) (*paginator.Page[models.Post], error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	p, err := s.repo.Posts.ListFeed(ctx, viewer.ID, s.perPage, page)
	if err != nil {
		s.logger.Sugar().Errorf("list feed of %s: %v", viewer.Username, err)
		return nil, fmt.Errorf("list feed: %w: %w", ErrInternal, err)
	}
	return p, nil
}

type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
	// AuthorPostCount is zero for posts whose author was deleted.
	AuthorPostCount int64
}

func (s *Listing) Detail(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.repo.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("post %d", id), err)
	}
	comments, err := s.repo.Comments.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w: %w", ErrInternal, err)
	}

	out := &PostDetail{Post: post, Comments: comments}
	if post.AuthorID != nil {
		if out.AuthorPostCount, err = s.repo.Posts.CountByAuthor(ctx, *post.AuthorID); err != nil {
			return nil, fmt.Errorf("count posts: %w: %w", ErrInternal, err)
		}
	}
	return out, nil
}
