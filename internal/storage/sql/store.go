package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contactbox/backend/internal/config"
	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
)

// Store SQL 数据库存储实现（支持 MySQL 5.7+ 和 PostgreSQL）
type Store struct {
	db *gorm.DB
}

// NewStore 创建 SQL 数据库存储
//
// DSN 为空返回 storage.ErrNotConfigured；建连探测在 cfg.ConnectTimeout
// 内失败返回包装了 storage.ErrUnreachable 的错误。两种情况下都不会留下
// 半开的连接，调用方可以在下一次请求时重试。
func NewStore(cfg config.DatabaseConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, storage.ErrNotConfigured
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", cfg.Type)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnreachable, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 建连探测，限定超时避免阻塞请求
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrUnreachable, err)
	}

	store := &Store{db: gdb}

	if err := store.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate 执行数据库迁移（使用 GORM AutoMigrate）
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.Message{},
		&domain.User{},
	)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库健康状态
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// SaveMessage 保存一条新留言
func (s *Store) SaveMessage(message *domain.Message) error {
	return s.db.Create(message).Error
}

// ListMessages 按 createdAt 降序（再按 date 降序）返回留言
func (s *Store) ListMessages(limit int) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)

	query := s.db.Order("created_at DESC, date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessage 按 ID 查询留言
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	var message domain.Message
	if err := s.db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// UpdateMessage 对留言做部分更新并返回更新后的记录
func (s *Store) UpdateMessage(id string, patch domain.MessagePatch) (*domain.Message, error) {
	cols := patch.Columns()
	if len(cols) > 0 {
		result := s.db.Model(&domain.Message{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			// Updates 不区分"不存在"和"值未变化"，确认一下记录是否存在
			if _, err := s.GetMessage(id); err != nil {
				return nil, err
			}
		}
	}
	return s.GetMessage(id)
}

// DeleteMessage 删除留言，ID 不存在时不报错
func (s *Store) DeleteMessage(id string) error {
	return s.db.Delete(&domain.Message{}, "id = ?", id).Error
}

// CountMessages 返回留言总数和未读数
func (s *Store) CountMessages() (int64, int64, error) {
	var total, unread int64

	if err := s.db.Model(&domain.Message{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	// read 在 MySQL 中是保留字，用 map 条件让 GORM 按方言加引号
	if err := s.db.Model(&domain.Message{}).Where(map[string]interface{}{"read": false}).Count(&unread).Error; err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}

// SaveUser 保存一个新用户
func (s *Store) SaveUser(user *domain.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return storage.ErrEmailExists
		}
		return err
	}
	return nil
}

// ListUsers 按 createdAt 降序返回全部用户
func (s *Store) ListUsers() ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser 按 ID 查询用户
func (s *Store) GetUser(id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser 对用户做部分更新并返回更新后的记录
func (s *Store) UpdateUser(id string, patch domain.UserPatch) (*domain.User, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}

	cols := patch.Columns()
	if len(cols) > 0 {
		if err := s.db.Model(&domain.User{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, storage.ErrEmailExists
			}
			return nil, err
		}
	}
	return s.GetUser(id)
}

// DeleteUser 删除用户，ID 不存在时不报错
func (s *Store) DeleteUser(id string) error {
	return s.db.Delete(&domain.User{}, "id = ?", id).Error
}

// isUniqueViolation 判断错误是否为唯一约束冲突
//
// MySQL 返回 "Duplicate entry"，PostgreSQL 返回 SQLSTATE 23505，
// gorm v2 同时提供了 ErrDuplicatedKey 的转换。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "23505")
}
