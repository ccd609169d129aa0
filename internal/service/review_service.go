package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/repository"
	"github.com/user/moviereview/internal/utils"
)

// ReviewService 评论服务
type ReviewService struct {
	reviews ReviewStore
	movies  MovieStore
}

// NewReviewService 创建评论服务
func NewReviewService(reviews ReviewStore, movies MovieStore) *ReviewService {
	return &ReviewService{reviews: reviews, movies: movies}
}

// CreateResult 创建评论的结果
type CreateResult struct {
	Review           *model.Review `json:"review"`
	TotalReviews     int64         `json:"total_reviews"`
	PromotedToCritic bool          `json:"promoted_to_critic"`
}

// ListByMovie 电影的全部评论，最新的在前
func (s *ReviewService) ListByMovie(ctx context.Context, movieID string) ([]model.Review, error) {
	if _, err := s.movie(ctx, movieID); err != nil {
		return nil, err
	}
	return s.reviews.ListByMovie(ctx, movieID)
}

// Create 创建评论。每个用户对同一部电影只能评论一次；
// 评论数达到阈值时作者在同一事务中晋升为影评人。
func (s *ReviewService) Create(ctx context.Context, userID, movieID string, score int, comment *string) (*CreateResult, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}
	if _, err := s.movie(ctx, movieID); err != nil {
		return nil, err
	}

	existing, err := s.reviews.FindByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	review := &model.Review{
		UserID:      userID,
		MovieID:     movieID,
		Score:       score,
		CommentText: cleanComment(comment),
	}

	total, promoted, err := s.reviews.CreateWithPromotion(ctx, review, model.CriticPromotionThreshold)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	if promoted {
		logging.Info().Str("user_id", userID).Int64("total_reviews", total).Msg("[Review] 用户晋升为影评人")
	}

	return &CreateResult{Review: review, TotalReviews: total, PromotedToCritic: promoted}, nil
}

// Update 修改自己的评论，不触发角色晋升
func (s *ReviewService) Update(ctx context.Context, userID, reviewID string, score *int, comment *string) (*model.Review, error) {
	if !isUUID(reviewID) {
		return nil, ErrNotFound
	}
	if score == nil && comment == nil {
		return nil, invalid("Nothing to update")
	}
	if score != nil {
		if err := validateScore(*score); err != nil {
			return nil, err
		}
	}

	patch := model.ReviewPatch{Score: score}
	if comment != nil {
		cleaned := ""
		if c := cleanComment(comment); c != nil {
			cleaned = *c
		}
		patch.CommentText = &cleaned
	}

	return s.reviews.Update(ctx, userID, reviewID, patch)
}

// Delete 删除自己的评论
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	if !isUUID(reviewID) {
		return ErrNotFound
	}
	return s.reviews.Delete(ctx, userID, reviewID)
}

func (s *ReviewService) movie(ctx context.Context, movieID string) (*model.Movie, error) {
	if !isUUID(movieID) {
		return nil, ErrNotFound
	}
	movie, err := s.movies.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrNotFound
	}
	return movie, nil
}

func validateScore(score int) error {
	if score < model.MinScore || score > model.MaxScore {
		return invalid(fmt.Sprintf("Score must be between %d and %d", model.MinScore, model.MaxScore))
	}
	return nil
}

// cleanComment 去除标签和首尾空白，结果为空时返回 nil
func cleanComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	c := strings.TrimSpace(utils.StripMarkup(*comment))
	if c == "" {
		return nil
	}
	return &c
}

// isUUID 非 UUID 的 ID 在 uuid 列上查询会报错，提前判定为不存在
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
