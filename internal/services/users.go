package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yatube/internal/models"
	"yatube/internal/repository"
)

type SignupInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Users covers accounts: signup, login and the admin commands.
type Users struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewUsers(repo *repository.Repository, logger *zap.Logger) *Users {
	return &Users{repo: repo, logger: logger}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Users) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if _, err := s.repo.Users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w: %w", ErrInternal, err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w: %w", ErrInternal, err)
	}
	user := &models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hash,
	}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		s.logger.Sugar().Errorf("signup %s: %v", in.Username, err)
		return nil, fmt.Errorf("create user: %w: %w", ErrInternal, err)
	}
	s.logger.Info("User signed up", zap.String("username", user.Username), zap.Uint("id", user.ID))
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown user and for a
// wrong password alike.
func (s *Users) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.Users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w: %w", ErrInternal, err)
	}
	if !CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.Users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("user %d", id), err)
	}
	return user, nil
}

func (s *Users) SetStaff(ctx context.Context, username string, staff bool) error {
	user, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return lookupErr("user "+username, err)
	}
	if user.IsStaff == staff {
		return nil
	}
	if err := s.repo.Users.SetStaff(ctx, user.ID, staff); err != nil {
		return lookupErr("user "+username, err)
	}
	return nil
}

// Delete removes the account. Its posts stay, authorless.
func (s *Users) Delete(ctx context.Context, username string) error {
	user, err := s.repo.Users.GetByUsername(ctx, username)
	if err != nil {
		return lookupErr("user "+username, err)
	}
	if err := s.repo.Users.Delete(ctx, user.ID); err != nil {
		return lookupErr("user "+username, err)
	}
	s.logger.Info("User deleted", zap.String("username", username))
	return nil
}
