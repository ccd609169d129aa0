package service

import (
	"context"

	"github.com/user/moviereview/internal/model"
)

// 服务依赖的存储接口，repository 包中的实现满足这些接口，测试中使用内存实现

// MovieStore 电影存储
type MovieStore interface {
	FindByID(ctx context.Context, id string) (*model.Movie, error)
	FindByExternalID(ctx context.Context, externalID int64) (*model.Movie, error)
	FindByTitle(ctx context.Context, title string) (*model.Movie, error)
	List(ctx context.Context, q model.MovieQuery) ([]model.Movie, error)
	Count(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, movie *model.Movie) (*model.Movie, error)
}

// ReviewStore 评论存储，修改和删除都限定在作者本人
type ReviewStore interface {
	FindByUserAndMovie(ctx context.Context, userID, movieID string) (*model.Review, error)
	ListByMovie(ctx context.Context, movieID string) ([]model.Review, error)
	ListByUser(ctx context.Context, userID string) ([]model.Review, error)
	ListScoresByMovie(ctx context.Context, movieID string) ([]model.ReviewScore, error)
	CreateWithPromotion(ctx context.Context, review *model.Review, threshold int) (int64, bool, error)
	Update(ctx context.Context, userID, reviewID string, patch model.ReviewPatch) (*model.Review, error)
	Delete(ctx context.Context, userID, reviewID string) error
}

// UserStore 用户存储
type UserStore interface {
	Create(ctx context.Context, email, username, password string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	UpdateProfile(ctx context.Context, userID string, username, avatarURL *string, newPassword string) (*model.User, error)
}
