package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/moviereview/internal/utils"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	utils.Created(c, "User registered successfully", res, nil)
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "User")
		return
	}
	utils.SuccessWithMessage(c, "Login successful", res)
}
