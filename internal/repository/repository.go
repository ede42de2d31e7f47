package repository

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/models"
	"yatube/internal/paginator"
)

type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetStaff(ctx context.Context, id uint, staff bool) error
	// Delete removes the user with their comments and follow edges; their
	// posts stay with a NULL author.
	Delete(ctx context.Context, id uint) error
}

type Groups interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	// Delete removes the group; its posts stay with a NULL group.
	Delete(ctx context.Context, id uint) error
}

type Posts interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// Update writes the editable columns only. PubDate is never touched.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)

	ListAll(ctx context.Context, perPage, page int) (*paginator.Page[models.Post], error)
	ListByGroup(ctx context.Context, groupID uint, perPage, page int) (*paginator.Page[models.Post], error)
	ListByAuthor(ctx context.Context, authorID uint, perPage, page int) (*paginator.Page[models.Post], error)
	ListFeed(ctx context.Context, followerID uint, perPage, page int) (*paginator.Page[models.Post], error)
}

type Comments interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type Follows interface {
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Create(ctx context.Context, follow *models.Follow) error
	// Delete removes every (userID, authorID) edge and reports how many went.
	Delete(ctx context.Context, userID, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
}

type Repository struct {
	Users    Users
	Groups   Groups
	Posts    Posts
	Comments Comments
	Follows  Follows
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		Users:    newUserRepo(db),
		Groups:   newGroupRepo(db),
		Posts:    newPostRepo(db),
		Comments: newCommentRepo(db),
		Follows:  newFollowRepo(db),
	}
}
