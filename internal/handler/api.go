package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/moviereview/internal/middleware"
	"github.com/user/moviereview/internal/service"
	"github.com/user/moviereview/internal/utils"
)

// ListMovies 电影列表 GET /api/v1/movies?search=&genre=&sort=&limit=
func (h *Handler) ListMovies(c *gin.Context) {
	q := service.ListQuery{
		Search: c.Query("search"),
		Genres: utils.ParseQueryList(c.QueryArray("genre")),
		Sort:   c.Query("sort"),
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.BadRequest(c, "limit must be an integer")
			return
		}
		q.Limit = service.ClampLimit(n)
	}

	movies, err := h.Movies.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "Movie")
		return
	}
	utils.Success(c, movies)
}

// TrendingMovies 热门电影
func (h *Handler) TrendingMovies(c *gin.Context) {
	movies, err := h.Movies.Trending(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Movie")
		return
	}
	utils.Success(c, movies)
}

// GetMovie 电影详情，id 可以是本地 ID、external id 或外部数据源 ID
func (h *Handler) GetMovie(c *gin.Context) {
	movie, err := h.Movies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Movie")
		return
	}
	utils.Success(c, movie)
}

// ListReviews 电影的评论
func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.Reviews.ListByMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Movie")
		return
	}
	utils.Success(c, reviews)
}

type createReviewRequest struct {
	Score       *int    `json:"score" binding:"required"`
	CommentText *string `json:"comment_text" binding:"omitempty,max=5000"`
}

// CreateReview 发表评论
func (h *Handler) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.Reviews.Create(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), *req.Score, req.CommentText)
	if err != nil {
		h.respondError(c, err, "Movie")
		return
	}

	utils.Created(c, "Review created successfully", res.Review, gin.H{
		"totalReviews":     res.TotalReviews,
		"promotedToCritic": res.PromotedToCritic,
	})
}

type updateReviewRequest struct {
	Score       *int    `json:"score"`
	CommentText *string `json:"comment_text" binding:"omitempty,max=5000"`
}

// UpdateReview 修改自己的评论
func (h *Handler) UpdateReview(c *gin.Context) {
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.Reviews.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("reviewId"), req.Score, req.CommentText)
	if err != nil {
		h.respondError(c, err, "Review")
		return
	}
	utils.SuccessWithMessage(c, "Review updated successfully", review)
}

// DeleteReview 删除自己的评论
func (h *Handler) DeleteReview(c *gin.Context) {
	if err := h.Reviews.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("reviewId")); err != nil {
		h.respondError(c, err, "Review")
		return
	}
	utils.SuccessWithMessage(c, "Review deleted successfully", nil)
}
