package lazy

import (
	"sync"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
)

// OpenFunc 打开底层存储的工厂函数
//
// 配置缺失时应返回 storage.ErrNotConfigured，后端不可达时返回
// 包装了 storage.ErrUnreachable 的错误。
type OpenFunc func() (storage.Store, error)

// Store 懒加载存储代理
//
// 首次调用任意方法时才真正建立底层连接，成功后缓存句柄供后续
// 请求复用；建连失败不缓存，下一次调用会重试。并发的首次调用
// 由互斥锁串行化，保证只会打开一个句柄。
type Store struct {
	mu     sync.Mutex
	open   OpenFunc
	cached storage.Store
}

// NewStore 创建懒加载存储代理
func NewStore(open OpenFunc) *Store {
	return &Store{open: open}
}

// acquire 返回缓存的存储句柄，必要时先建立连接
func (s *Store) acquire() (storage.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	st, err := s.open()
	if err != nil {
		return nil, err
	}

	s.cached = st
	return st, nil
}

// SaveMessage 保存一条新留言
func (s *Store) SaveMessage(message *domain.Message) error {
	st, err := s.acquire()
	if err != nil {
		return err
	}
	return st.SaveMessage(message)
}

// ListMessages 返回留言列表
func (s *Store) ListMessages(limit int) ([]domain.Message, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.ListMessages(limit)
}

// GetMessage 按 ID 查询留言
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.GetMessage(id)
}

// UpdateMessage 对留言做部分更新
func (s *Store) UpdateMessage(id string, patch domain.MessagePatch) (*domain.Message, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.UpdateMessage(id, patch)
}

// DeleteMessage 删除留言
func (s *Store) DeleteMessage(id string) error {
	st, err := s.acquire()
	if err != nil {
		return err
	}
	return st.DeleteMessage(id)
}

// CountMessages 返回留言总数和未读数
func (s *Store) CountMessages() (int64, int64, error) {
	st, err := s.acquire()
	if err != nil {
		return 0, 0, err
	}
	return st.CountMessages()
}

// SaveUser 保存一个新用户
func (s *Store) SaveUser(user *domain.User) error {
	st, err := s.acquire()
	if err != nil {
		return err
	}
	return st.SaveUser(user)
}

// ListUsers 返回全部用户
func (s *Store) ListUsers() ([]domain.User, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.ListUsers()
}

// GetUser 按 ID 查询用户
func (s *Store) GetUser(id string) (*domain.User, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.GetUser(id)
}

// UpdateUser 对用户做部分更新
func (s *Store) UpdateUser(id string, patch domain.UserPatch) (*domain.User, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return st.UpdateUser(id, patch)
}

// DeleteUser 删除用户
func (s *Store) DeleteUser(id string) error {
	st, err := s.acquire()
	if err != nil {
		return err
	}
	return st.DeleteUser(id)
}

// Health 探测底层存储，尚未建连时会触发建连
func (s *Store) Health() error {
	st, err := s.acquire()
	if err != nil {
		return err
	}
	return st.Health()
}

// Close 关闭已缓存的句柄并清空缓存
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return nil
	}

	err := s.cached.Close()
	s.cached = nil
	return err
}
