package service

import (
	"strings"
	"unicode"

	"github.com/user/moviereview/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// genreSynonyms 请求的类型（归一化后）展开为多个候选词，未收录的类型只匹配自身
var genreSynonyms = map[string][]string{
	"accion":          {"accion", "action", "accion y aventura", "action & adventure", "adventure"},
	"drama":           {"drama"},
	"ciencia ficcion": {"ciencia ficcion", "ciencia-ficcion", "scifi", "science fiction", "sci-fi"},
	"comedia":         {"comedia", "comedy"},
	"terror":          {"terror", "horror"},
	"romance":         {"romance", "romantic"},
	"animacion":       {"animacion", "animation", "animated"},
	"aventura":        {"aventura", "adventure"},
}

// NormalizeText 转小写并去掉变音符号（NFD 分解后删除组合字符）
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// ExpandGenres 把请求的类型展开为归一化后的同义词列表
func ExpandGenres(requested []string) []string {
	var out []string
	for _, g := range requested {
		n := NormalizeText(g)
		if n == "" {
			continue
		}
		if syn, ok := genreSynonyms[n]; ok {
			out = append(out, syn...)
		} else {
			out = append(out, n)
		}
	}
	return out
}

// MatchGenres 电影任一类型与任一同义词互相包含即视为匹配
func MatchGenres(movieGenres, expanded []string) bool {
	for _, g := range movieGenres {
		ng := NormalizeText(g)
		if ng == "" {
			continue
		}
		for _, want := range expanded {
			if strings.Contains(ng, want) || strings.Contains(want, ng) {
				return true
			}
		}
	}
	return false
}

// FilterByGenres 按类型过滤，requested 为空时原样返回
func FilterByGenres(movies []model.MovieWithRatings, requested []string) []model.MovieWithRatings {
	expanded := ExpandGenres(requested)
	if len(expanded) == 0 {
		return movies
	}

	out := make([]model.MovieWithRatings, 0, len(movies))
	for _, m := range movies {
		if MatchGenres(m.Genres, expanded) {
			out = append(out, m)
		}
	}
	return out
}
