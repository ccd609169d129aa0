package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string
	LogLevel    string
	LogFormat   string

	OMDb    ProviderConfig
	TMDB    ProviderConfig
	Catalog CatalogConfig
}

// ProviderConfig 外部电影数据源配置
type ProviderConfig struct {
	BaseURL         string
	ImageBaseURL    string
	APIKey          string
	Timeout         time.Duration
	RequestInterval time.Duration // 相邻请求的间隔，OMDb 不低于 200ms
	CacheTTL        time.Duration
	CacheSize       int
}

// CatalogConfig 本地片库补全策略
type CatalogConfig struct {
	MinListing      int           // 普通列表低于该数量时触发外部补全
	MinTrending     int           // 热门列表低于该数量时触发外部补全
	EmptyCooldown   time.Duration // 外部源返回空结果后的冷却时间
	RefreshInterval time.Duration // 后台定时补全间隔，0 表示关闭
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load 加载配置
func Load() *Config {
	expiryHours := getEnvInt("JWT_EXPIRY_HOURS", 72)

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "moviereview")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", defaultSecret))

	if getEnv("APP_ENV", "development") == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	timeout := getEnvDuration("PROVIDER_TIMEOUT", 8*time.Second)

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   appSecret,
		DatabaseURL: dbURL,
		JWTExpiry:   time.Duration(expiryHours) * time.Hour,
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		OMDb: ProviderConfig{
			BaseURL: getEnv("OMDB_BASE_URL", "http://www.omdbapi.com/"),
			// 与旧版保持一致：未配置 OMDB_API_KEY 时尝试 TMDB_API_KEY
			APIKey:          getEnv("OMDB_API_KEY", os.Getenv("TMDB_API_KEY")),
			Timeout:         timeout,
			RequestInterval: getEnvDuration("OMDB_REQUEST_INTERVAL", 250*time.Millisecond),
			CacheTTL:        getEnvDuration("OMDB_CACHE_TTL", 30*time.Minute),
			CacheSize:       getEnvInt("OMDB_CACHE_SIZE", 1000),
		},
		TMDB: ProviderConfig{
			BaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
			APIKey:       os.Getenv("TMDB_API_KEY"),
			Timeout:      timeout,
		},
		Catalog: CatalogConfig{
			MinListing:      getEnvInt("CATALOG_MIN_LISTING", 20),
			MinTrending:     getEnvInt("CATALOG_MIN_TRENDING", 10),
			EmptyCooldown:   getEnvDuration("CATALOG_EMPTY_COOLDOWN", time.Minute),
			RefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 0),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
