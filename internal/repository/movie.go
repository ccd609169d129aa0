package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/user/moviereview/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxMovieQuery 单次本地查询的上限（评分计算前）
const MaxMovieQuery = 100

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindByID 根据本地 ID 查找电影
func (r *MovieRepository) FindByID(ctx context.Context, id string) (*model.Movie, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByExternalID 根据外部数据源 ID 查找电影
func (r *MovieRepository) FindByExternalID(ctx context.Context, externalID int64) (*model.Movie, error) {
	return r.first(ctx, "external_api_id = ?", externalID)
}

// FindByTitle 按标题精确查找（唯一约束冲突时的兜底）
func (r *MovieRepository) FindByTitle(ctx context.Context, title string) (*model.Movie, error) {
	return r.first(ctx, "title = ?", title)
}

func (r *MovieRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC").First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// List 按条件查询本地电影
func (r *MovieRepository) List(ctx context.Context, q model.MovieQuery) ([]model.Movie, error) {
	limit := q.Limit
	if limit <= 0 || limit > MaxMovieQuery {
		limit = MaxMovieQuery
	}

	tx := r.db.WithContext(ctx).Model(&model.Movie{})
	if q.Search != "" {
		tx = tx.Where("title ILIKE ?", "%"+escapeLike(q.Search)+"%")
	}

	switch q.OrderBy {
	case model.OrderReleaseDesc:
		// 无上映日期的排在最后
		tx = tx.Order("release_date DESC NULLS LAST").Order("created_at DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var movies []model.Movie
	err := tx.Limit(limit).Find(&movies).Error
	return movies, err
}

// Count 本地电影总数
func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// Upsert 按 external_api_id 创建或更新电影，id 与 created_at 不会被覆盖
func (r *MovieRepository) Upsert(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	if movie.ExternalAPIID == nil {
		return nil, errors.New("upsert requires external_api_id")
	}

	now := time.Now()
	record := *movie
	record.ID = ""
	record.CreatedAt = now
	record.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_api_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "synopsis", "poster_url", "genres", "actors", "release_date", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, translate(err)
	}

	saved, err := r.FindByExternalID(ctx, *movie.ExternalAPIID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, ErrNotFound
	}
	return saved, nil
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
