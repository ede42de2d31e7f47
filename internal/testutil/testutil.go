// Package testutil holds database fixtures shared by package tests.
package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/models"
)

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file::memory:?_foreign_keys=on",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, zap.NewNop()))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "!"}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func CreateGroup(t *testing.T, gdb *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(t, gdb.Create(group).Error)
	return group
}

// CreatePost inserts a post published at pubDate. A nil author or group
// leaves the reference empty.
func CreatePost(t *testing.T, gdb *gorm.DB, author *models.User, group *models.Group, text string, pubDate time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, PubDate: pubDate}
	if author != nil {
		post.AuthorID = &author.ID
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, gdb.Omit("Author", "Group").Create(post).Error)
	return post
}

// CreatePosts inserts n posts by author, one minute apart, the last one newest.
// Texts are "<prefix> 1" .. "<prefix> n".
func CreatePosts(t *testing.T, gdb *gorm.DB, author *models.User, group *models.Group, prefix string, n int) []*models.Post {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	posts := make([]*models.Post, 0, n)
	for i := 1; i <= n; i++ {
		text := prefix + " " + strconv.Itoa(i)
		posts = append(posts, CreatePost(t, gdb, author, group, text, base.Add(time.Duration(i)*time.Minute)))
	}
	return posts
}

func Follow(t *testing.T, gdb *gorm.DB, user, author *models.User) {
	t.Helper()
	require.NoError(t, gdb.Omit("User", "Author").Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
}
