package service

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
)

var (
	// ErrInvalidStatus 用户状态不在枚举范围内
	ErrInvalidStatus = errors.New("invalid user status")
)

// CreateUserInput 创建用户的输入参数
type CreateUserInput struct {
	Name   string
	Email  string
	Status domain.UserStatus // 留空默认 active
}

// UserService 用户业务逻辑
type UserService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(store storage.Store, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Create 创建一个新用户，邮箱必须唯一
func (s *UserService) Create(input CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	user := &domain.User{
		ID:        domain.NewID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// List 返回全部用户
func (s *UserService) List() ([]domain.User, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Get 按 ID 查询用户
func (s *UserService) Get(id string) (*domain.User, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.GetUser(id)
}

// Update 对用户做部分更新并返回更新后的记录
func (s *UserService) Update(id string, patch domain.UserPatch) (*domain.User, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if patch.IsEmpty() {
		return s.store.GetUser(id)
	}

	updated, err := s.store.UpdateUser(id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("id", id))
	return updated, nil
}

// Delete 删除用户，ID 不存在时也视为成功
func (s *UserService) Delete(id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	if err := s.store.DeleteUser(id); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("id", id))
	return nil
}
