package service

import (
	"context"
	"errors"
	"strings"

	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/repository"
)

// ProfileUpdate 资料修改请求，nil 表示不修改
type ProfileUpdate struct {
	Username        *string
	AvatarURL       *string
	CurrentPassword string
	NewPassword     string
}

// UserService 用户资料
type UserService struct {
	users   UserStore
	reviews ReviewStore
}

// NewUserService 创建用户服务
func NewUserService(users UserStore, reviews ReviewStore) *UserService {
	return &UserService{users: users, reviews: reviews}
}

// Profile 当前用户资料
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile 修改用户名、头像或密码。修改密码需要提供当前密码。
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdate) (*model.User, error) {
	if req.Username == nil && req.AvatarURL == nil && req.NewPassword == "" {
		return nil, invalid("No data provided to update")
	}

	current, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var username *string
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, invalid("Username cannot be empty")
		}
		if name != current.Username {
			other, err := s.users.FindByUsername(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != userID {
				return nil, ErrUsernameTaken
			}
		}
		username = &name
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, invalid("Current password is required to set a new one")
		}
		if len(req.NewPassword) < minPasswordLength {
			return nil, invalid("New password must be at least 6 characters")
		}
		if !s.users.CheckPassword(current, req.CurrentPassword) {
			return nil, invalid("Current password is incorrect")
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, username, req.AvatarURL, req.NewPassword)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// MyReviews 当前用户的评论，附带电影摘要，最新的在前
func (s *UserService) MyReviews(ctx context.Context, userID string) ([]model.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}
