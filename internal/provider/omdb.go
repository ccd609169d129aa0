package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/utils"
	"golang.org/x/time/rate"
)

const (
	omdbNotAvailable  = "N/A"
	omdbSearchDetails = 10 // 搜索时最多补全详情的条数
	trendingPerTerm   = 3
	trendingTarget    = 20
	maxOMDbActors     = 5

	// MinRequestInterval OMDb 相邻请求的最小间隔，配置值低于它时按它限速
	MinRequestInterval = 200 * time.Millisecond
)

// trendingTerms OMDb 没有热门接口，用固定的热门搜索词模拟
var trendingTerms = []string{
	"avengers", "batman", "spider", "star wars", "harry potter",
	"inception", "interstellar", "matrix", "titanic", "avatar",
	"joker", "toy story", "frozen", "finding nemo", "cars",
	"iron man", "captain america", "thor", "black panther", "wonder woman",
}

// OMDb 主数据源（Provider A），以 IMDb ID 为原生标识
type OMDb struct {
	cfg    config.ProviderConfig
	client *client
	pacer  Pacer
	cache  *utils.SearchCache[NormalizedMovie]
}

// NewOMDb 创建 OMDb 适配器。pacer 为 nil 时按 cfg.RequestInterval 构建令牌桶（突发 1）
func NewOMDb(cfg config.ProviderConfig, pacer Pacer) *OMDb {
	if pacer == nil {
		pacer = NewPacer(cfg.RequestInterval)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logging.Warn().Msg("[OMDb] 未配置 OMDB_API_KEY，OMDb 数据源将返回空结果")
	}
	return &OMDb{
		cfg:    cfg,
		client: newClient(SourceOMDb, cfg.Timeout),
		pacer:  pacer,
		cache:  utils.NewSearchCache[NormalizedMovie](cfg.CacheSize, cfg.CacheTTL),
	}
}

// NewPacer 固定间隔令牌桶，间隔不低于 MinRequestInterval
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval < MinRequestInterval {
		if interval != 0 {
			logging.Warn().Dur("interval", interval).Dur("min", MinRequestInterval).
				Msg("[OMDb] 请求间隔过小，使用最小间隔")
		}
		interval = MinRequestInterval
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func (p *OMDb) Name() string { return SourceOMDb }

func (p *OMDb) configured() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

type omdbMovie struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Released string `json:"Released"`
	Genre    string `json:"Genre"`
	Actors   string `json:"Actors"`
	Plot     string `json:"Plot"`
	Poster   string `json:"Poster"`
	IMDbID   string `json:"imdbID"`
}

type omdbSearchResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Search   []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDbID string `json:"imdbID"`
	} `json:"Search"`
}

// FindByID 按 IMDb ID 查找，非 tt 开头的 ID 直接返回 nil
func (p *OMDb) FindByID(ctx context.Context, id string) *NormalizedMovie {
	if !p.configured() || !strings.HasPrefix(id, "tt") {
		return nil
	}
	return p.detail(ctx, id)
}

// Search 搜索电影，并依次补全前 10 条的详情
func (p *OMDb) Search(ctx context.Context, query string) []NormalizedMovie {
	if !p.configured() || strings.TrimSpace(query) == "" {
		return []NormalizedMovie{}
	}

	hits := p.search(ctx, query)
	if len(hits) > omdbSearchDetails {
		hits = hits[:omdbSearchDetails]
	}

	movies := make([]NormalizedMovie, 0, len(hits))
	for _, imdbID := range hits {
		if m := p.detail(ctx, imdbID); m != nil {
			movies = append(movies, *m)
		}
	}
	return movies
}

// Trending 依次搜索热门词，每个词取前 3 条，按 IMDb ID 和 external id 去重，
// 凑够 20 部或词表用完为止。请求严格串行，并经过 pacer 限速。
func (p *OMDb) Trending(ctx context.Context) []NormalizedMovie {
	if !p.configured() {
		return []NormalizedMovie{}
	}

	movies := make([]NormalizedMovie, 0, trendingTarget)
	seenNative := make(map[string]bool)
	seenExternal := make(map[int64]bool)

	for _, term := range trendingTerms {
		if ctx.Err() != nil {
			break
		}

		hits := p.search(ctx, term)
		if len(hits) > trendingPerTerm {
			hits = hits[:trendingPerTerm]
		}

		for _, imdbID := range hits {
			if imdbID == "" || seenNative[imdbID] {
				continue
			}
			seenNative[imdbID] = true

			m := p.detail(ctx, imdbID)
			if m == nil || m.ExternalID == nil || seenExternal[*m.ExternalID] {
				continue
			}
			seenExternal[*m.ExternalID] = true
			movies = append(movies, *m)

			if len(movies) >= trendingTarget {
				return movies
			}
		}
	}

	logging.Debug().Int("count", len(movies)).Msg("[OMDb] 热门电影模拟完成")
	return movies
}

// search 返回搜索结果的 IMDb ID 列表
func (p *OMDb) search(ctx context.Context, query string) []string {
	if err := p.pacer.Wait(ctx); err != nil {
		return nil
	}

	var resp omdbSearchResponse
	params := url.Values{
		"apikey": {p.cfg.APIKey},
		"s":      {query},
		"type":   {"movie"},
		"page":   {"1"},
	}
	if err := p.client.getJSON(ctx, p.cfg.BaseURL, params, &resp); err != nil {
		logging.Warn().Err(err).Str("query", query).Msg("[OMDb] 搜索失败")
		return nil
	}
	if resp.Response == "False" {
		return nil
	}

	ids := make([]string, 0, len(resp.Search))
	for _, s := range resp.Search {
		ids = append(ids, s.IMDbID)
	}
	return ids
}

// detail 获取并缓存单部电影详情
func (p *OMDb) detail(ctx context.Context, imdbID string) *NormalizedMovie {
	if cached, ok := p.cache.Get(imdbID); ok {
		return &cached
	}

	if err := p.pacer.Wait(ctx); err != nil {
		return nil
	}

	var resp omdbMovie
	params := url.Values{
		"apikey": {p.cfg.APIKey},
		"i":      {imdbID},
		"plot":   {"full"},
	}
	if err := p.client.getJSON(ctx, p.cfg.BaseURL, params, &resp); err != nil {
		logging.Warn().Err(err).Str("imdb_id", imdbID).Msg("[OMDb] 获取详情失败")
		return nil
	}
	if resp.Response == "False" {
		logging.Debug().Str("imdb_id", imdbID).Str("reason", resp.Error).Msg("[OMDb] 电影未找到")
		return nil
	}

	m := normalizeOMDb(resp)
	p.cache.Set(imdbID, m)
	return &m
}

// normalizeOMDb OMDb 用 "N/A" 表示缺失字段
func normalizeOMDb(o omdbMovie) NormalizedMovie {
	externalID := ExternalIDFromIMDb(o.IMDbID, o.Title, o.Year)

	actors := utils.SplitList(o.Actors, ",", omdbNotAvailable)
	if len(actors) > maxOMDbActors {
		actors = actors[:maxOMDbActors]
	}

	title := strings.TrimSpace(o.Title)
	if title == omdbNotAvailable {
		title = ""
	}

	return NormalizedMovie{
		Source:      SourceOMDb,
		NativeID:    o.IMDbID,
		ExternalID:  &externalID,
		Title:       title,
		Synopsis:    utils.OptionalString(o.Plot, omdbNotAvailable),
		PosterURL:   utils.OptionalString(o.Poster, omdbNotAvailable),
		ReleaseDate: utils.ParseDate(o.Released, "02 Jan 2006"),
		Genres:      utils.SplitList(o.Genre, ",", omdbNotAvailable),
		Actors:      actors,
	}
}
