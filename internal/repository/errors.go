// Package repository 基于 gorm 的持久化层。
//
// 查找类方法在记录不存在时返回 (nil, nil)；按用户限定的写操作
// 通过下面的哨兵错误区分失败原因，由上层映射为对应的 HTTP 状态。
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey 违反唯一约束（external_api_id、(user_id, movie_id) 等）
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForbidden 操作他人拥有的记录
	ErrForbidden = errors.New("forbidden")
)

// translate 将 gorm 错误转换为仓库层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}
