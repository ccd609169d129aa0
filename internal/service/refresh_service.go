package service

import (
	"context"
	"time"

	"github.com/user/moviereview/internal/logging"
)

// RefreshService 后台定时补全片库
type RefreshService struct {
	movies    MovieStore
	catalog   *CatalogService
	interval  time.Duration
	threshold int
}

// NewRefreshService 创建定时补全服务，interval <= 0 时 Start 不做任何事
func NewRefreshService(movies MovieStore, catalog *CatalogService, interval time.Duration, threshold int) *RefreshService {
	return &RefreshService{
		movies:    movies,
		catalog:   catalog,
		interval:  interval,
		threshold: threshold,
	}
}

// Start 启动定时任务，ctx 取消后退出
func (s *RefreshService) Start(ctx context.Context) {
	if s.interval <= 0 {
		logging.Info().Msg("[RefreshService] 未配置 CATALOG_REFRESH_INTERVAL，后台补全关闭")
		return
	}

	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()

		// 启动时先运行一次
		s.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				logging.Info().Msg("[RefreshService] 已停止")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce 片库数量低于阈值时补全一次，返回本次合并的电影数
func (s *RefreshService) RunOnce(ctx context.Context) int {
	count, err := s.movies.Count(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("[RefreshService] 统计片库数量失败")
		return 0
	}
	if count >= int64(s.threshold) {
		logging.Debug().Int64("count", count).Msg("[RefreshService] 片库数量充足，跳过")
		return 0
	}

	logging.Info().Int64("count", count).Msg("[RefreshService] 开始补全片库...")
	n, err := s.catalog.Fill(ctx, TriggerTrending)
	if err != nil {
		logging.Error().Err(err).Msg("[RefreshService] 补全失败")
		return 0
	}
	logging.Info().Int("saved", n).Msg("[RefreshService] 补全完成")
	return n
}
