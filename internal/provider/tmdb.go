package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/utils"
)

// TMDB 备用数据源（Provider B），原生 ID 为数字。
// 类型以数字编码保存，演员需要额外请求，这里不获取。
type TMDB struct {
	cfg    config.ProviderConfig
	client *client
}

// NewTMDB 创建 TMDB 适配器
func NewTMDB(cfg config.ProviderConfig) *TMDB {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logging.Warn().Msg("[TMDB] 未配置 TMDB_API_KEY，TMDB 数据源将返回空结果")
	}
	return &TMDB{
		cfg:    cfg,
		client: newClient(SourceTMDB, cfg.Timeout),
	}
}

func (p *TMDB) Name() string { return SourceTMDB }

func (p *TMDB) configured() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

// tmdbMovie 列表接口带 genre_ids，详情接口带 genres
type tmdbMovie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
	GenreIDs    []int  `json:"genre_ids"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbPage struct {
	Results []tmdbMovie `json:"results"`
}

// FindByID 按 TMDB 数字 ID 查找
func (p *TMDB) FindByID(ctx context.Context, id string) *NormalizedMovie {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if !p.configured() || err != nil || n <= 0 {
		return nil
	}

	var resp tmdbMovie
	if err := p.client.getJSON(ctx, p.endpoint("/movie/"+strconv.FormatInt(n, 10)), p.params(nil), &resp); err != nil {
		logging.Warn().Err(err).Int64("tmdb_id", n).Msg("[TMDB] 获取详情失败")
		return nil
	}
	if resp.ID == 0 {
		return nil
	}

	m := p.normalize(resp)
	return &m
}

// Search 搜索电影（第一页）
func (p *TMDB) Search(ctx context.Context, query string) []NormalizedMovie {
	if !p.configured() || strings.TrimSpace(query) == "" {
		return []NormalizedMovie{}
	}
	return p.list(ctx, "/search/movie", url.Values{"query": {query}, "page": {"1"}})
}

// Trending 当日热门电影
func (p *TMDB) Trending(ctx context.Context) []NormalizedMovie {
	if !p.configured() {
		return []NormalizedMovie{}
	}
	return p.list(ctx, "/trending/movie/day", nil)
}

func (p *TMDB) list(ctx context.Context, path string, extra url.Values) []NormalizedMovie {
	var page tmdbPage
	if err := p.client.getJSON(ctx, p.endpoint(path), p.params(extra), &page); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("[TMDB] 请求失败")
		return []NormalizedMovie{}
	}

	movies := make([]NormalizedMovie, 0, len(page.Results))
	for _, r := range page.Results {
		movies = append(movies, p.normalize(r))
	}
	return movies
}

func (p *TMDB) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

func (p *TMDB) params(extra url.Values) url.Values {
	v := url.Values{"api_key": {p.cfg.APIKey}}
	for k, vs := range extra {
		v[k] = vs
	}
	return v
}

func (p *TMDB) normalize(t tmdbMovie) NormalizedMovie {
	var externalID *int64
	if t.ID > 0 {
		id := t.ID
		externalID = &id
	}

	genres := make([]string, 0, len(t.GenreIDs)+len(t.Genres))
	for _, g := range t.GenreIDs {
		genres = append(genres, strconv.Itoa(g))
	}
	if len(t.GenreIDs) == 0 {
		for _, g := range t.Genres {
			genres = append(genres, strconv.Itoa(g.ID))
		}
	}

	var poster *string
	if t.PosterPath != "" {
		u := p.cfg.ImageBaseURL + t.PosterPath
		poster = &u
	}

	return NormalizedMovie{
		Source:      SourceTMDB,
		NativeID:    strconv.FormatInt(t.ID, 10),
		ExternalID:  externalID,
		Title:       strings.TrimSpace(t.Title),
		Synopsis:    utils.OptionalString(t.Overview),
		PosterURL:   poster,
		ReleaseDate: utils.ParseDate(t.ReleaseDate, "2006-01-02"),
		Genres:      genres,
		Actors:      []string{},
	}
}
