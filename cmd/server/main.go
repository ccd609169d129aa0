package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/moviereview/internal/config"
	"github.com/user/moviereview/internal/handler"
	"github.com/user/moviereview/internal/logging"
	"github.com/user/moviereview/internal/middleware"
	"github.com/user/moviereview/internal/provider"
	"github.com/user/moviereview/internal/repository"
	"github.com/user/moviereview/internal/router"
	"github.com/user/moviereview/internal/service"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("数据库连接失败")
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库与外部数据源，OMDb 优先，TMDB 兜底
	repos := repository.NewRepositories(db)
	omdb := provider.NewOMDb(cfg.OMDb, nil)
	tmdb := provider.NewTMDB(cfg.TMDB)

	svc := service.NewServices(repos, omdb, tmdb, cfg)

	// 启动后台片库补全
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	svc.Refresh.Start(ctx)

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.CORS())

	h := handler.NewHandler(cfg, svc)
	router.RegisterRoutes(r, h, svc.Auth)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logging.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("正在关闭服务器...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("服务器强制关闭")
	}

	logging.Info().Msg("服务器已退出")
}
