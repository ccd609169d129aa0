package service

import (
	"errors"

	"github.com/user/moviereview/internal/repository"
)

// 存储层错误直接透传，处理器按同一组哨兵判断
var (
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = repository.ErrForbidden
)

var (
	ErrAlreadyReviewed    = errors.New("you have already reviewed this movie")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token expired")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError 请求参数校验失败，在任何写入之前返回
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation 是否为参数校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
