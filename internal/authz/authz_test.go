package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yatube/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestCanEditPost(t *testing.T) {
	author := &models.User{ID: 1, Username: "author"}
	other := &models.User{ID: 2, Username: "other"}
	post := &models.Post{ID: 10, AuthorID: uintPtr(1)}
	orphan := &models.Post{ID: 11}

	tests := []struct {
		name  string
		actor *models.User
		post  *models.Post
		want  bool
	}{
		{"author", author, post, true},
		{"other user", other, post, false},
		{"anonymous", nil, post, false},
		{"orphaned post", author, orphan, false},
		{"missing post", author, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditPost(tt.actor, tt.post))
		})
	}
}

func TestCanFollow(t *testing.T) {
	a := &models.User{ID: 1}
	b := &models.User{ID: 2}

	assert.True(t, CanFollow(a, b))
	assert.False(t, CanFollow(a, a), "self-follow")
	assert.False(t, CanFollow(nil, b))
	assert.False(t, CanFollow(a, nil))
}

func TestAuthenticatedOnly(t *testing.T) {
	u := &models.User{ID: 1}

	assert.True(t, CanCreatePost(u))
	assert.False(t, CanCreatePost(nil))
	assert.True(t, CanComment(u))
	assert.False(t, CanComment(nil))
}

func TestCanClearCache(t *testing.T) {
	assert.False(t, CanClearCache(nil))
	assert.False(t, CanClearCache(&models.User{ID: 1}))
	assert.True(t, CanClearCache(&models.User{ID: 1, IsStaff: true}))
}
