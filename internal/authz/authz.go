// Package authz decides who may change what. A nil actor is anonymous.
package authz

import "yatube/internal/models"

// CanEditPost allows only the post's author. A post whose author was
// deleted is editable by nobody.
func CanEditPost(actor *models.User, post *models.Post) bool {
	if actor == nil || post == nil {
		return false
	}
	return post.IsAuthoredBy(actor)
}

func CanCreatePost(actor *models.User) bool {
	return actor != nil
}

func CanComment(actor *models.User) bool {
	return actor != nil
}

// CanFollow rejects anonymous actors and self-follows.
func CanFollow(actor, author *models.User) bool {
	if actor == nil || author == nil {
		return false
	}
	return actor.ID != author.ID
}

func CanClearCache(actor *models.User) bool {
	return actor != nil && actor.IsStaff
}
