package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/repository"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultListLimit = 50
	TrendingLimit    = 20
)

// ListQuery 电影列表查询条件
type ListQuery struct {
	Search string
	Genres []string
	Sort   string
	Limit  int // <= 0 时使用 DefaultListLimit
}

// ClampLimit 把显式传入的 limit 限制在 1..MaxMovieQuery
func ClampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > repository.MaxMovieQuery {
		return repository.MaxMovieQuery
	}
	return n
}

// MovieService 电影查询：本地查询 -> 按需外部补全 -> 附加评分 -> 类型过滤 -> 排序 -> 截断
type MovieService struct {
	movies  MovieStore
	catalog *CatalogService
	ratings *RatingService
	cfg     config.CatalogConfig
	sf      singleflight.Group
}

// NewMovieService 创建电影服务
func NewMovieService(movies MovieStore, catalog *CatalogService, ratings *RatingService, cfg config.CatalogConfig) *MovieService {
	return &MovieService{
		movies:  movies,
		catalog: catalog,
		ratings: ratings,
		cfg:     cfg,
	}
}

// List 电影列表。仅在没有搜索词和类型过滤、且本地数量不足时才触发外部补全。
func (s *MovieService) List(ctx context.Context, q ListQuery) ([]model.MovieWithRatings, error) {
	order := model.OrderCreatedDesc
	if isDateSort(q.Sort) {
		order = model.OrderReleaseDesc
	}
	mq := model.MovieQuery{
		Search:  strings.TrimSpace(q.Search),
		OrderBy: order,
		Limit:   repository.MaxMovieQuery,
	}

	movies, err := s.movies.List(ctx, mq)
	if err != nil {
		return nil, err
	}

	filtered := mq.Search != "" || len(ExpandGenres(q.Genres)) > 0
	if !filtered && len(movies) < s.cfg.MinListing {
		if s.fill(ctx, TriggerCatalog) {
			if movies, err = s.movies.List(ctx, mq); err != nil {
				return nil, err
			}
		}
	}

	annotated, err := s.ratings.Annotate(ctx, movies)
	if err != nil {
		return nil, err
	}

	annotated = FilterByGenres(annotated, q.Genres)
	SortMovies(annotated, q.Sort)

	limit := DefaultListLimit
	if q.Limit > 0 {
		limit = ClampLimit(q.Limit)
	}
	if len(annotated) > limit {
		annotated = annotated[:limit]
	}
	return annotated, nil
}

// Trending 最近入库的电影，本地不足时触发外部补全
func (s *MovieService) Trending(ctx context.Context) ([]model.MovieWithRatings, error) {
	mq := model.MovieQuery{OrderBy: model.OrderCreatedDesc, Limit: TrendingLimit}

	movies, err := s.movies.List(ctx, mq)
	if err != nil {
		return nil, err
	}

	if len(movies) < s.cfg.MinTrending {
		if s.fill(ctx, TriggerTrending) {
			if movies, err = s.movies.List(ctx, mq); err != nil {
				return nil, err
			}
		}
	}

	annotated, err := s.ratings.Annotate(ctx, movies)
	if err != nil {
		return nil, err
	}
	if len(annotated) > TrendingLimit {
		annotated = annotated[:TrendingLimit]
	}
	return annotated, nil
}

// fill 外部补全，失败只记录日志，返回是否有新数据（包括出错前已保存的部分）
func (s *MovieService) fill(ctx context.Context, trigger string) bool {
	n, err := s.catalog.Fill(ctx, trigger)
	if err != nil {
		logging.Error().Err(err).Str("trigger", trigger).Msg("[MovieService] 外部补全失败，使用本地数据")
	}
	return n > 0
}

// Get 按本地 UUID、external id 或外部数据源 ID 获取电影。
// 本地没有时从外部数据源解析并入库，相同 ID 的并发请求合并为一次。
func (s *MovieService) Get(ctx context.Context, id string) (*model.MovieWithRatings, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	// 合并的请求不随第一个调用方取消
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(id, func() (interface{}, error) {
		return s.resolve(shared, id)
	})
	if err != nil {
		return nil, err
	}

	return s.ratings.AnnotateOne(ctx, v.(*model.Movie))
}

func (s *MovieService) resolve(ctx context.Context, id string) (*model.Movie, error) {
	if isUUID(id) {
		movie, err := s.movies.FindByID(ctx, id)
		if err != nil || movie != nil {
			return movie, err
		}
	}

	if externalID, ok := localExternalID(id); ok {
		movie, err := s.movies.FindByExternalID(ctx, externalID)
		if err != nil || movie != nil {
			return movie, err
		}
	}

	external := s.catalog.FindExternal(ctx, id)
	if external == nil {
		return nil, ErrNotFound
	}
	return s.catalog.Resolve(ctx, *external)
}

// localExternalID 纯数字或 tt 开头的 ID 对应的 external id
func localExternalID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, "tt"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
