package service

import (
	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/provider"
	"github.com/user/moviereview/internal/repository"
)

// Services 服务集合
type Services struct {
	Catalog *CatalogService
	Ratings *RatingService
	Movies  *MovieService
	Reviews *ReviewService
	Users   *UserService
	Auth    *AuthService
	Refresh *RefreshService
}

// NewServices 创建所有服务。primary / secondary 为按优先级排列的外部数据源。
func NewServices(repos *repository.Repositories, primary, secondary provider.Provider, cfg *config.Config) *Services {
	catalog := NewCatalogService(repos.Movie, primary, secondary, cfg.Catalog.EmptyCooldown)
	ratings := NewRatingService(repos.Review)

	return &Services{
		Catalog: catalog,
		Ratings: ratings,
		Movies:  NewMovieService(repos.Movie, catalog, ratings, cfg.Catalog),
		Reviews: NewReviewService(repos.Review, repos.Movie),
		Users:   NewUserService(repos.User, repos.Review),
		Auth:    NewAuthService(repos.User, cfg.AppSecret, cfg.JWTExpiry),
		Refresh: NewRefreshService(repos.Movie, catalog, cfg.Catalog.RefreshInterval, cfg.Catalog.MinTrending),
	}
}
