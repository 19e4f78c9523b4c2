package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper"
	"github.com/chirotrack/backend/internal/interfaces"
	"github.com/chirotrack/backend/internal/repository"
)

var (
	ErrUserMissing          = errors.New("user not found")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
)

type UserService interface {
	GetUsers(search string, page, limit int) (*dto.UserListData, error)
	GetUser(id uint) (*domain.User, error)
	UpdateUser(id uint, input dto.UpdateUserRequest) (*domain.User, error)
	UpdatePassword(id uint, input dto.UpdatePasswordRequest) error
	UpdateProfilePicture(ctx context.Context, userID uint, image []byte) (string, error)
}

type userService struct {
	repo     repository.UserRepository
	auth     helper.Auth
	uploader interfaces.Uploader
}

func NewUserService(repo repository.UserRepository, auth helper.Auth, uploader interfaces.Uploader) UserService {
	return &userService{repo: repo, auth: auth, uploader: uploader}
}

func (s *userService) GetUsers(search string, page, limit int) (*dto.UserListData, error) {
	page, limit = normalizePage(page, limit)

	users, total, err := s.repo.ListUsers(strings.TrimSpace(search), limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return &dto.UserListData{
		Users:      out,
		Pagination: dto.NewPagination(page, limit, total, len(out)),
	}, nil
}

func (s *userService) GetUser(id uint) (*domain.User, error) {
	user, err := s.repo.FindUserByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(id uint, input dto.UpdateUserRequest) (*domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" ||
		utf8.RuneCountInString(firstName) > 50 || utf8.RuneCountInString(lastName) > 50 {
		return nil, ErrInvalidInput
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	if err := s.repo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdatePassword(id uint, input dto.UpdatePasswordRequest) error {
	if len(input.NewPassword) < 6 {
		return ErrWeakPassword
	}

	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	// Local accounts must prove the current password. Google-provisioned
	// accounts setting a first password have nothing to prove against.
	if user.HasPassword() {
		if err := s.auth.VerifyPassword(input.CurrentPassword, user.PasswordHash); err != nil {
			return ErrCurrentPasswordWrong
		}
	}

	hashed, err := s.auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.repo.SaveUser(user)
}

func (s *userService) UpdateProfilePicture(ctx context.Context, userID uint, image []byte) (string, error) {
	if s.uploader == nil {
		return "", errors.New("uploader not configured")
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}

	url, err := s.uploader.UploadBytes(ctx, "profile-pictures", fmt.Sprintf("user-%d", userID), image)
	if err != nil {
		return "", err
	}

	user.ProfilePicture = &url
	if err := s.repo.SaveUser(user); err != nil {
		return "", err
	}
	return url, nil
}
