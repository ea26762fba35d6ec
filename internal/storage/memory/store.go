package memory

import (
	"sort"
	"sync"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
)

// Store 内存存储实现
//
// 用于开发和测试，进程退出后数据即丢失。所有返回值都是副本，
// 调用方修改返回的记录不会影响存储内容。
type Store struct {
	mu       sync.RWMutex
	messages map[string]*domain.Message
	users    map[string]*domain.User
	emails   map[string]string // email -> user ID，维护邮箱唯一约束
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		messages: make(map[string]*domain.Message),
		users:    make(map[string]*domain.User),
		emails:   make(map[string]string),
	}
}

// SaveMessage 保存一条新留言
func (s *Store) SaveMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *message
	s.messages[message.ID] = &copied
	return nil
}

// ListMessages 按 createdAt 降序返回留言，createdAt 相同时按 date 降序
func (s *Store) ListMessages(limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		out = append(out, *msg)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetMessage 按 ID 查询留言
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}

	copied := *msg
	return &copied, nil
}

// UpdateMessage 对留言做部分更新并返回更新后的记录
func (s *Store) UpdateMessage(id string, patch domain.MessagePatch) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}

	patch.Apply(msg)

	copied := *msg
	return &copied, nil
}

// DeleteMessage 删除留言，ID 不存在时静默成功
func (s *Store) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, id)
	return nil
}

// CountMessages 返回留言总数和未读数
func (s *Store) CountMessages() (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unread int64
	for _, msg := range s.messages {
		if !msg.Read {
			unread++
		}
	}
	return int64(len(s.messages)), unread, nil
}

// SaveUser 保存一个新用户
func (s *Store) SaveUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.emails[user.Email]; ok && existingID != user.ID {
		return storage.ErrEmailExists
	}

	copied := *user
	s.users[user.ID] = &copied
	s.emails[user.Email] = user.ID
	return nil
}

// ListUsers 按 createdAt 降序返回全部用户
func (s *Store) ListUsers() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetUser 按 ID 查询用户
func (s *Store) GetUser(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

// UpdateUser 对用户做部分更新并返回更新后的记录
func (s *Store) UpdateUser(id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	// 邮箱修改需要保持唯一约束
	if patch.Email != nil && *patch.Email != u.Email {
		if existingID, taken := s.emails[*patch.Email]; taken && existingID != id {
			return nil, storage.ErrEmailExists
		}
		delete(s.emails, u.Email)
		s.emails[*patch.Email] = id
	}

	patch.Apply(u)

	copied := *u
	return &copied, nil
}

// DeleteUser 删除用户，ID 不存在时静默成功
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		delete(s.emails, u.Email)
		delete(s.users, id)
	}
	return nil
}

// Health 内存存储始终可用
func (s *Store) Health() error {
	return nil
}

// Close 内存存储无需释放资源
func (s *Store) Close() error {
	return nil
}
