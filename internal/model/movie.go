package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Movie 本地片库中的电影
type Movie struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	ExternalAPIID *int64         `json:"external_api_id" gorm:"uniqueIndex"`
	Title         string         `json:"title" gorm:"not null;index"`
	Synopsis      *string        `json:"synopsis"`
	PosterURL     *string        `json:"poster_url"`
	ReleaseDate   *time.Time     `json:"release_date" gorm:"type:date"`
	Genres        pq.StringArray `json:"genres" gorm:"type:text[]"`
	Actors        pq.StringArray `json:"actors" gorm:"type:text[]"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// BeforeCreate 插入前分配 UUID
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MovieSummary 用户评论列表中附带的电影摘要
type MovieSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	PosterURL *string `json:"poster_url"`
}

// RatingSnapshot 实时计算的评分快照（不落库）
type RatingSnapshot struct {
	CriticRating         int `json:"critic_rating"`
	AudienceRating       int `json:"audience_rating"`
	CriticReviewsCount   int `json:"critic_reviews_count"`
	AudienceReviewsCount int `json:"audience_reviews_count"`
}

// MovieWithRatings 带评分的电影，JSON 中字段平铺
type MovieWithRatings struct {
	Movie
	RatingSnapshot
}

// MovieOrder 本地查询排序方式
type MovieOrder string

const (
	OrderCreatedDesc MovieOrder = "created_at"
	OrderReleaseDesc MovieOrder = "release_date"
)

// MovieQuery 本地片库查询条件
type MovieQuery struct {
	Search  string // 标题模糊匹配（不区分大小写）
	OrderBy MovieOrder
	Limit   int
}
