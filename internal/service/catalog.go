package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/metrics"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/provider"
	"github.com/user/moviereview/internal/repository"
	"github.com/user/moviereview/internal/utils"
	"golang.org/x/sync/singleflight"
)

// Mode 合并模式
type Mode int

const (
	// ModeBulk 批量补全：缺少 external id 的直接跳过，冲突且按标题找不到时记录日志后跳过
	ModeBulk Mode = iota
	// ModeSingle 单部解析：缺少 external id 时按标题查找，冲突且找不到时返回错误
	ModeSingle
)

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "bulk"
}

// 补全触发来源
const (
	TriggerCatalog  = "catalog"
	TriggerTrending = "trending"
)

const sourceNone = "none"

// CatalogService 把外部数据源的电影合并进本地片库
type CatalogService struct {
	movies    MovieStore
	primary   provider.Provider
	secondary provider.Provider
	cooldown  *utils.Cooldown
	sf        singleflight.Group
}

// NewCatalogService 创建片库服务。primary 优先，返回空时才查询 secondary；
// emptyCooldown 为某个触发来源在外部源全部为空后的冷却时间。
func NewCatalogService(movies MovieStore, primary, secondary provider.Provider, emptyCooldown time.Duration) *CatalogService {
	return &CatalogService{
		movies:    movies,
		primary:   primary,
		secondary: secondary,
		cooldown:  utils.NewCooldown(emptyCooldown),
	}
}

// Reconcile 按数据源返回的顺序依次合并。以 external id 为键做 upsert；
// 唯一键冲突时先按 external id、再按标题找回已有记录。
// 除唯一键冲突以外的存储错误直接返回。
func (s *CatalogService) Reconcile(ctx context.Context, external []provider.NormalizedMovie, mode Mode) ([]model.Movie, error) {
	saved := make([]model.Movie, 0, len(external))

	for _, em := range external {
		if em.ExternalID == nil {
			if mode == ModeBulk || strings.TrimSpace(em.Title) == "" {
				metrics.ReconciledMovies.WithLabelValues("skipped").Inc()
				continue
			}
			existing, err := s.movies.FindByTitle(ctx, em.Title)
			if err != nil {
				return saved, err
			}
			if existing == nil {
				metrics.ReconciledMovies.WithLabelValues("skipped").Inc()
				continue
			}
			metrics.ReconciledMovies.WithLabelValues("recovered").Inc()
			saved = append(saved, *existing)
			continue
		}

		movie, err := s.movies.Upsert(ctx, em.ToModel())
		if err == nil {
			metrics.ReconciledMovies.WithLabelValues("upserted").Inc()
			saved = append(saved, *movie)
			continue
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return saved, fmt.Errorf("保存电影 %d 失败: %w", *em.ExternalID, err)
		}

		existing, lookupErr := s.recover(ctx, em)
		if lookupErr != nil {
			return saved, lookupErr
		}
		if existing != nil {
			metrics.ReconciledMovies.WithLabelValues("recovered").Inc()
			saved = append(saved, *existing)
			continue
		}

		if mode == ModeSingle {
			return saved, err
		}
		metrics.ReconciledMovies.WithLabelValues("skipped").Inc()
		logging.Warn().Err(err).Int64("external_api_id", *em.ExternalID).Str("title", em.Title).
			Msg("[Catalog] 唯一键冲突且无法找回已有记录，跳过")
	}

	return saved, nil
}

// recover 冲突后找回已有记录，都找不到时返回 nil
func (s *CatalogService) recover(ctx context.Context, em provider.NormalizedMovie) (*model.Movie, error) {
	existing, err := s.movies.FindByExternalID(ctx, *em.ExternalID)
	if err != nil || existing != nil {
		return existing, err
	}
	if strings.TrimSpace(em.Title) == "" {
		return nil, nil
	}
	return s.movies.FindByTitle(ctx, em.Title)
}

// Resolve 以单部模式合并一部外部电影
func (s *CatalogService) Resolve(ctx context.Context, em provider.NormalizedMovie) (*model.Movie, error) {
	saved, err := s.Reconcile(ctx, []provider.NormalizedMovie{em}, ModeSingle)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, ErrNotFound
	}
	return &saved[0], nil
}

// FetchExternal 获取外部热门电影：primary 有结果就用 primary，否则用 secondary，两者不合并。
// 返回实际使用的数据源名称。
func (s *CatalogService) FetchExternal(ctx context.Context) ([]provider.NormalizedMovie, string) {
	for _, p := range []provider.Provider{s.primary, s.secondary} {
		if p == nil {
			continue
		}
		if movies := p.Trending(ctx); len(movies) > 0 {
			return movies, p.Name()
		}
		logging.Info().Str("provider", p.Name()).Msg("[Catalog] 数据源无结果，尝试下一个")
	}
	return nil, sourceNone
}

// FindExternal 按 ID 从外部数据源查找单部电影。
// tt 开头的 ID 只查 primary；纯数字 ID 先按 tt%07d 查 primary，再按原值查 secondary。
func (s *CatalogService) FindExternal(ctx context.Context, id string) *provider.NormalizedMovie {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "tt") {
		if s.primary == nil {
			return nil
		}
		return s.primary.FindByID(ctx, id)
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	if s.primary != nil {
		if m := s.primary.FindByID(ctx, fmt.Sprintf("tt%07d", n)); m != nil {
			return m
		}
	}
	if s.secondary != nil {
		return s.secondary.FindByID(ctx, id)
	}
	return nil
}

// Fill 执行一次批量补全并返回合并的电影数。同一触发来源的并发调用合并为一次；
// 外部源全部为空时该来源进入冷却，冷却期间直接返回 0。
// 存储错误中断补全时，仍返回出错前已合并的数量。
func (s *CatalogService) Fill(ctx context.Context, trigger string) (int, error) {
	if s.cooldown.Active(trigger) {
		logging.Debug().Str("trigger", trigger).Msg("[Catalog] 冷却中，跳过外部补全")
		return 0, nil
	}

	// 共享的补全不随单个请求取消，外部请求各自有超时
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(trigger, func() (interface{}, error) {
		start := time.Now()
		external, source := s.FetchExternal(shared)
		metrics.ReconcilePasses.WithLabelValues(trigger, source).Inc()

		if len(external) == 0 {
			s.cooldown.Arm(trigger)
			logging.Warn().Str("trigger", trigger).Msg("[Catalog] 所有数据源均无结果")
			return 0, nil
		}

		saved, err := s.Reconcile(shared, external, ModeBulk)
		logging.Info().Str("trigger", trigger).Str("source", source).
			Int("fetched", len(external)).Int("saved", len(saved)).
			Dur("took", time.Since(start)).Msg("[Catalog] 外部补全完成")
		if err != nil {
			logging.Error().Err(err).Str("trigger", trigger).Int("saved", len(saved)).
				Msg("[Catalog] 外部补全中断")
		}
		return len(saved), err
	})
	n, _ := v.(int)
	return n, err
}
