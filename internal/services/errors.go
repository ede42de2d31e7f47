package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidGroup = errors.New("select a valid group")
	ErrInvalidImage = errors.New("upload a valid image")
	ErrInternal     = errors.New("internal error")

	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("please enter a correct username and password")
	ErrSlugTaken          = errors.New("a group with that slug already exists")
)

// lookupErr turns a missing row into ErrNotFound and anything else into
// ErrInternal, keeping the cause in the chain.
func lookupErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", what, ErrInternal, err)
}
