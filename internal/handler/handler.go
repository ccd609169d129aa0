package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/middleware"
	"github.com/user/moviereview/internal/repository"
	"github.com/user/moviereview/internal/service"
	"github.com/user/moviereview/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Config  *config.Config
	Movies  *service.MovieService
	Reviews *service.ReviewService
	Users   *service.UserService
	Auth    *service.AuthService
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, svc *service.Services) *Handler {
	return &Handler{
		Config:  cfg,
		Movies:  svc.Movies,
		Reviews: svc.Reviews,
		Users:   svc.Users,
		Auth:    svc.Auth,
	}
}

// respondError 把服务层错误映射为 HTTP 响应，resource 用于 404 提示
func (h *Handler) respondError(c *gin.Context, err error, resource string) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		utils.BadRequest(c, ve.Message)
	case errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		utils.BadRequest(c, capitalize(err.Error()))
	case errors.Is(err, repository.ErrDuplicateKey):
		utils.BadRequest(c, "A record with this data already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, service.ErrTokenExpired):
		utils.Unauthorized(c, "Token expired")
	case errors.Is(err, service.ErrUnauthorized):
		utils.Unauthorized(c, "")
	case errors.Is(err, service.ErrForbidden):
		utils.Forbidden(c, "You do not have permission to modify this "+strings.ToLower(resource))
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, resource+" not found")
	default:
		logging.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("[Handler] 请求处理失败")
		if h.Config != nil && h.Config.IsProduction() {
			utils.InternalServerError(c, "")
			return
		}
		utils.ErrorWithDetail(c, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

// bindError 请求体解析 / 校验失败
func bindError(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, describeField(fe))
	}
	utils.BadRequest(c, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

// toSnake CommentText -> comment_text
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
