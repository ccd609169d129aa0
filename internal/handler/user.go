package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/moviereview/internal/middleware"
	"github.com/user/moviereview/internal/service"
	"github.com/user/moviereview/internal/utils"
)

// Profile 当前用户资料
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.Users.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	utils.Success(c, user)
}

type updateProfileRequest struct {
	Username        *string `json:"username" binding:"omitempty,max=50"`
	AvatarURL       *string `json:"avatar_url"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

// UpdateProfile 修改资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), service.ProfileUpdate{
		Username:        req.Username,
		AvatarURL:       req.AvatarURL,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	utils.SuccessWithMessage(c, "Profile updated successfully", user)
}

// MyReviews 当前用户的评论
func (h *Handler) MyReviews(c *gin.Context) {
	reviews, err := h.Users.MyReviews(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	utils.Success(c, reviews)
}
