package storage

import (
	"errors"

	"contactbox/backend/internal/domain"
)

var (
	// ErrMessageNotFound 留言不存在
	ErrMessageNotFound = errors.New("message not found")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists 用户邮箱已被占用
	ErrEmailExists = errors.New("email already exists")
	// ErrNotConfigured 未配置持久化存储的连接信息
	ErrNotConfigured = errors.New("storage not configured")
	// ErrUnreachable 存储后端无法连接
	ErrUnreachable = errors.New("storage unreachable")
)

// MessageRepository 留言存储接口
type MessageRepository interface {
	// SaveMessage 保存一条新留言
	SaveMessage(message *domain.Message) error

	// ListMessages 按 createdAt 降序（createdAt 相同时按 date 降序）返回留言，
	// limit > 0 时截断到前 limit 条
	ListMessages(limit int) ([]domain.Message, error)

	// GetMessage 按 ID 查询留言，不存在时返回 ErrMessageNotFound
	GetMessage(id string) (*domain.Message, error)

	// UpdateMessage 对留言做部分更新并返回更新后的完整记录，
	// 不存在时返回 ErrMessageNotFound
	UpdateMessage(id string, patch domain.MessagePatch) (*domain.Message, error)

	// DeleteMessage 删除留言；ID 不存在时不报错（删除是幂等的）
	DeleteMessage(id string) error

	// CountMessages 返回留言总数和未读数
	CountMessages() (total int64, unread int64, err error)
}

// UserRepository 用户存储接口
type UserRepository interface {
	// SaveUser 保存一个新用户，邮箱冲突时返回 ErrEmailExists
	SaveUser(user *domain.User) error

	// ListUsers 按 createdAt 降序返回全部用户
	ListUsers() ([]domain.User, error)

	// GetUser 按 ID 查询用户，不存在时返回 ErrUserNotFound
	GetUser(id string) (*domain.User, error)

	// UpdateUser 对用户做部分更新并返回更新后的完整记录
	UpdateUser(id string, patch domain.UserPatch) (*domain.User, error)

	// DeleteUser 删除用户；ID 不存在时不报错
	DeleteUser(id string) error
}

// Store 聚合存储接口，所有实现（内存、SQL、缓存装饰层、懒加载代理）都满足它
type Store interface {
	MessageRepository
	UserRepository

	// Health 探测存储是否可用
	Health() error

	// Close 释放底层连接
	Close() error
}
