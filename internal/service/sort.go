package service

import (
	"sort"
	"strings"

	"github.com/user/moviereview/internal/model"
)

// 排序参数
const (
	SortDate           = "date"
	SortReleaseDate    = "release_date"
	SortCriticRating   = "critic_rating"
	SortRating         = "rating"
	SortAudienceRating = "audience_rating"
)

// isDateSort 按上映日期排序
func isDateSort(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key == SortDate || key == SortReleaseDate
}

// SortMovies 稳定排序，均为降序：
// date/release_date 按上映日期（空日期视为最早），critic_rating/rating 按影评人评分，
// audience_rating 按观众评分，其余按创建时间。
func SortMovies(movies []model.MovieWithRatings, key string) {
	var less func(a, b model.MovieWithRatings) bool

	switch strings.ToLower(strings.TrimSpace(key)) {
	case SortDate, SortReleaseDate:
		less = func(a, b model.MovieWithRatings) bool {
			if a.ReleaseDate == nil {
				return false
			}
			if b.ReleaseDate == nil {
				return true
			}
			return a.ReleaseDate.After(*b.ReleaseDate)
		}
	case SortCriticRating, SortRating:
		less = func(a, b model.MovieWithRatings) bool { return a.CriticRating > b.CriticRating }
	case SortAudienceRating:
		less = func(a, b model.MovieWithRatings) bool { return a.AudienceRating > b.AudienceRating }
	default:
		less = func(a, b model.MovieWithRatings) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(movies, func(i, j int) bool { return less(movies[i], movies[j]) })
}
