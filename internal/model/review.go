package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Review 用户评论，(user_id, movie_id) 唯一
type Review struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_movie"`
	MovieID     string    `json:"movie_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_movie;index"`
	Score       int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	CommentText *string   `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联查询时填充
	User  *Identity     `json:"user,omitempty" gorm:"-"`
	Movie *MovieSummary `json:"movie,omitempty" gorm:"-"`
}

// BeforeCreate 插入前分配 UUID
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReviewScore 评论分数及作者当前角色
type ReviewScore struct {
	Score int    `json:"score"`
	Role  string `json:"role"`
}

// ReviewPatch 评论的部分更新，nil 字段保持不变
type ReviewPatch struct {
	Score       *int
	CommentText *string
}
