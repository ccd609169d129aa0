package service

import (
	"context"
	"math"

	"github.com/user/moviereview/internal/model"
	"golang.org/x/sync/errgroup"
)

// annotateConcurrency 同时计算评分的电影数量上限
const annotateConcurrency = 8

// RatingService 评分聚合。只读、不缓存，按评论作者的当前角色划分影评人和观众。
type RatingService struct {
	reviews ReviewStore
}

// NewRatingService 创建评分服务
func NewRatingService(reviews ReviewStore) *RatingService {
	return &RatingService{reviews: reviews}
}

// Compute 计算单部电影的评分快照
func (s *RatingService) Compute(ctx context.Context, movieID string) (model.RatingSnapshot, error) {
	scores, err := s.reviews.ListScoresByMovie(ctx, movieID)
	if err != nil {
		return model.RatingSnapshot{}, err
	}
	return Summarize(scores), nil
}

// Summarize 把评论分数汇总为 0-100 的评分：round(平均分 * 10)，无评论时为 0
func Summarize(scores []model.ReviewScore) model.RatingSnapshot {
	var criticSum, audienceSum int
	var snap model.RatingSnapshot

	for _, s := range scores {
		if s.Role == model.RoleCritic {
			criticSum += s.Score
			snap.CriticReviewsCount++
		} else {
			audienceSum += s.Score
			snap.AudienceReviewsCount++
		}
	}

	snap.CriticRating = scale(criticSum, snap.CriticReviewsCount)
	snap.AudienceRating = scale(audienceSum, snap.AudienceReviewsCount)
	return snap
}

func scale(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n) * 10))
}

// Annotate 并发为每部电影附加评分，保持输入顺序
func (s *RatingService) Annotate(ctx context.Context, movies []model.Movie) ([]model.MovieWithRatings, error) {
	out := make([]model.MovieWithRatings, len(movies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(annotateConcurrency)

	for i := range movies {
		g.Go(func() error {
			snap, err := s.Compute(ctx, movies[i].ID)
			if err != nil {
				return err
			}
			out[i] = model.MovieWithRatings{Movie: movies[i], RatingSnapshot: snap}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AnnotateOne 单部电影附加评分
func (s *RatingService) AnnotateOne(ctx context.Context, movie *model.Movie) (*model.MovieWithRatings, error) {
	snap, err := s.Compute(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	return &model.MovieWithRatings{Movie: *movie, RatingSnapshot: snap}, nil
}
