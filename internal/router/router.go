package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/moviereview/internal/handler"
	"github.com/user/moviereview/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, auth middleware.Authenticator) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(auth)

	v1 := r.Group("/api/v1")

	// ==================== 认证 ====================
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// ==================== 电影 ====================
	movies := v1.Group("/movies")
	{
		movies.GET("", h.ListMovies)
		movies.GET("/trending", h.TrendingMovies)
		movies.GET("/:id", h.GetMovie)
		movies.GET("/:id/reviews", h.ListReviews)
		movies.POST("/:id/reviews", requireAuth, h.CreateReview)
	}

	// ==================== 评论（需要登录）====================
	reviews := v1.Group("/reviews")
	reviews.Use(requireAuth)
	{
		reviews.PUT("/:reviewId", h.UpdateReview)
		reviews.DELETE("/:reviewId", h.DeleteReview)
	}

	// ==================== 用户中心（需要登录）====================
	users := v1.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/me", h.Profile)
		users.PUT("/me", h.UpdateProfile)
		users.GET("/me/reviews", h.MyReviews)
	}
}
