package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser   = "USER"
	RoleCritic = "CRITIC"
)

// CriticPromotionThreshold 累计评论达到该数量时晋升为影评人
const CriticPromotionThreshold = 5

// User 用户模型
type User struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" gorm:"not null;default:USER"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate 插入前分配 UUID 与默认角色
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Identity 通过认证的调用者
type Identity struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url"`
}

// IdentityOf 从用户记录提取身份信息
func IdentityOf(u *User) Identity {
	return Identity{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}
