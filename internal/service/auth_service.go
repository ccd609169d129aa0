package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/repository"
)

const minPasswordLength = 6

var validate = validator.New()

// Claims JWT 声明
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthResult 注册 / 登录结果
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService 注册、登录与令牌校验
type AuthService struct {
	users  UserStore
	secret []byte
	expiry time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(users UserStore, secret string, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = 72 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), expiry: expiry}
}

// Register 注册新用户，角色为 USER
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if err := validate.Var(email, "required,email"); err != nil {
		return nil, invalid("A valid email is required")
	}
	if username == "" {
		return nil, invalid("Username is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("Password must be at least 6 characters")
	}

	if u, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrEmailTaken
	}
	if u, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrUsernameTaken
	}

	user, err := s.users.Create(ctx, email, username, password)
	if err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GenerateToken 生成 JWT Token
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate 校验令牌并加载调用者的当前身份（角色以数据库为准）
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrUnauthorized
	}
	if !token.Valid || claims.UserID == "" || !isUUID(claims.UserID) {
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	id := model.IdentityOf(user)
	return &id, nil
}
