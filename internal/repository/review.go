package repository

import (
	"context"
	"errors"

	"github.com/user/moviereview/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindByID 根据 ID 查找评论
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByUserAndMovie 查找用户对某部电影的评论
func (r *ReviewRepository) FindByUserAndMovie(ctx context.Context, userID, movieID string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByMovie 电影的评论列表（新的在前），附带作者信息
func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachAuthors(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByUser 用户的评论列表（新的在前），附带电影摘要
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return reviews, nil
	}

	ids := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.MovieID)
	}

	var movies []model.Movie
	if err := r.db.WithContext(ctx).Select("id", "title", "poster_url").Where("id IN ?", ids).Find(&movies).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*model.MovieSummary, len(movies))
	for _, m := range movies {
		byID[m.ID] = &model.MovieSummary{ID: m.ID, Title: m.Title, PosterURL: m.PosterURL}
	}
	for i := range reviews {
		reviews[i].Movie = byID[reviews[i].MovieID]
	}
	return reviews, nil
}

// ListScoresByMovie 电影所有评论的分数及作者当前角色
func (r *ReviewRepository) ListScoresByMovie(ctx context.Context, movieID string) ([]model.ReviewScore, error) {
	var scores []model.ReviewScore
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.score AS score, users.role AS role").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.movie_id = ?", movieID).
		Scan(&scores).Error
	return scores, err
}

// CreateWithPromotion 在同一事务中创建评论、实时统计作者评论数，
// 达到 threshold 且尚不是影评人时晋升为 CRITIC。作者不存在时返回 ErrNotFound
func (r *ReviewRepository) CreateWithPromotion(ctx context.Context, review *model.Review, threshold int) (int64, bool, error) {
	var (
		total    int64
		promoted bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住作者行，同一用户的并发评论串行执行，计数不会漏掉彼此
		var author model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", review.UserID).First(&author).Error; err != nil {
			return translate(err)
		}

		if err := tx.Create(review).Error; err != nil {
			return translate(err)
		}

		if err := tx.Model(&model.Review{}).Where("user_id = ?", review.UserID).Count(&total).Error; err != nil {
			return err
		}

		if total >= int64(threshold) {
			res := tx.Model(&model.User{}).
				Where("id = ? AND role <> ?", review.UserID, model.RoleCritic).
				Update("role", model.RoleCritic)
			if res.Error != nil {
				return res.Error
			}
			promoted = res.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	// 晋升后重新读取作者，保证返回的角色是最新的
	if author, err := r.author(ctx, review.UserID); err == nil {
		review.User = author
	}
	return total, promoted, nil
}

// Update 更新评论，仅作者本人可操作
func (r *ReviewRepository) Update(ctx context.Context, userID, reviewID string, patch model.ReviewPatch) (*model.Review, error) {
	review, err := r.owned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Score != nil {
		updates["score"] = *patch.Score
	}
	if patch.CommentText != nil {
		// 空字符串表示清空评论
		if *patch.CommentText == "" {
			updates["comment_text"] = gorm.Expr("NULL")
		} else {
			updates["comment_text"] = *patch.CommentText
		}
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
			return nil, translate(err)
		}
	}

	updated, err := r.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	updated.User, err = r.author(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 删除评论，仅作者本人可操作
func (r *ReviewRepository) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := r.owned(ctx, userID, reviewID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(review).Error
}

func (r *ReviewRepository) owned(ctx context.Context, userID, reviewID string) (*model.Review, error) {
	review, err := r.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.UserID != userID {
		return nil, ErrForbidden
	}
	return review, nil
}

func (r *ReviewRepository) author(ctx context.Context, userID string) (*model.Identity, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("id", "username", "role", "avatar_url").Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	id := model.IdentityOf(&user)
	return &id, nil
}

// attachAuthors 批量填充评论作者
func (r *ReviewRepository) attachAuthors(ctx context.Context, reviews []model.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.UserID)
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Select("id", "username", "role", "avatar_url").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return err
	}
	byID := make(map[string]model.Identity, len(users))
	for i := range users {
		byID[users[i].ID] = model.IdentityOf(&users[i])
	}
	for i := range reviews {
		if author, ok := byID[reviews[i].UserID]; ok {
			reviews[i].User = &author
		}
	}
	return nil
}
