// Package provider 外部电影数据源适配器。
//
// 每个适配器把数据源自己的电影结构转换成统一的 NormalizedMovie，
// 并分配稳定的 external id。适配器的公开方法从不返回错误：
// 网络故障、缺少密钥、非 2xx、熔断、超时一律降级为 nil / 空切片。
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/user/moviereview/internal/model"
)

// ErrUnavailable 数据源不可用，仅在适配器内部流转
var ErrUnavailable = errors.New("provider unavailable")

const (
	SourceOMDb = "omdb"
	SourceTMDB = "tmdb"
)

// Provider 外部电影数据源
type Provider interface {
	Name() string
	FindByID(ctx context.Context, id string) *NormalizedMovie
	Search(ctx context.Context, query string) []NormalizedMovie
	Trending(ctx context.Context) []NormalizedMovie
}

// Pacer 限速器，rate.Limiter 即满足该接口
type Pacer interface {
	Wait(ctx context.Context) error
}

// NormalizedMovie 入库前的统一电影结构
type NormalizedMovie struct {
	Source      string     `json:"source"`
	NativeID    string     `json:"native_id"`
	ExternalID  *int64     `json:"external_api_id"`
	Title       string     `json:"title"`
	Synopsis    *string    `json:"synopsis"`
	PosterURL   *string    `json:"poster_url"`
	ReleaseDate *time.Time `json:"release_date"`
	Genres      []string   `json:"genres"`
	Actors      []string   `json:"actors"`
}

// ToModel 转换为待入库的 Movie（不含 ID 和时间戳）
func (n NormalizedMovie) ToModel() *model.Movie {
	genres := n.Genres
	if genres == nil {
		genres = []string{}
	}
	actors := n.Actors
	if actors == nil {
		actors = []string{}
	}
	return &model.Movie{
		ExternalAPIID: n.ExternalID,
		Title:         n.Title,
		Synopsis:      n.Synopsis,
		PosterURL:     n.PosterURL,
		ReleaseDate:   n.ReleaseDate,
		Genres:        pq.StringArray(genres),
		Actors:        pq.StringArray(actors),
	}
}
