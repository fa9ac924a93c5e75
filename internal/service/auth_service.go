package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/inkwell-blog/inkwell/pkg/password"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `form:"email" binding:"required,email,max=100"`
	Name     string `form:"name" binding:"required,max=100"`
	Password string `form:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, input LoginInput) (*model.User, error)
}

type authService struct {
	repo repository.UserRepository
}

func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo}
}

// Register creates the account and returns it for session establishment.
// The first account ever registered receives the admin role, so a fresh
// deployment has exactly one privileged user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleMember
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = model.RoleAdmin
	}

	user := &model.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashed,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Lost a race on the unique email index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnknownEmail
		}
		return nil, err
	}

	if !password.Verify(user.PasswordHash, input.Password) {
		return nil, apperror.ErrWrongPassword
	}

	return user, nil
}
