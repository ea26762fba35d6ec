package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	localcache "contactbox/backend/internal/cache"
	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
)

// Store 读缓存装饰层
//
// 包装任意 storage.Store，为留言的读路径提供两级缓存：
// 进程内 L1（LocalCache）和可选的 Redis L2。管理后台前端每 10 秒
// 轮询一次列表，短 TTL 缓存能把轮询压力挡在数据库之外。
//
// 写操作直接落到内层存储并使相关缓存失效；缓存层任何故障都只记
// 日志并回退到内层存储，不影响正确性。用户记录访问频率低，不缓存。
type Store struct {
	inner  storage.Store
	local  *localcache.LocalCache
	client *redis.Client // 可为 nil，表示只用 L1
	ttl    time.Duration
	logger *zap.Logger

	// 出现过的列表缓存键，写操作失效时逐个删除
	listKeys sync.Map
}

// NewStore 创建读缓存装饰层
//
// client 传 nil 时只启用进程内缓存。
func NewStore(inner storage.Store, local *localcache.LocalCache, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		inner:  inner,
		local:  local,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func listKey(limit int) string {
	return fmt.Sprintf("contactbox:messages:list:%d", limit)
}

func messageKey(id string) string {
	return "contactbox:messages:" + id
}

// lookup 依次查 L1、L2，命中 L2 时回填 L1
func (s *Store) lookup(key string) ([]byte, bool) {
	if data, ok := s.local.Get(key); ok {
		return data, true
	}

	if s.client == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	s.local.Set(key, data)
	return data, true
}

// fill 同时写入 L1 和 L2
func (s *Store) fill(key string, data []byte) {
	s.local.Set(key, data)

	if s.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateMessages 使指定留言及所有列表缓存失效
func (s *Store) invalidateMessages(id string) {
	keys := []string{messageKey(id)}
	s.listKeys.Range(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})

	for _, key := range keys {
		s.local.Delete(key)
	}

	if s.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("redis del failed", zap.Error(err))
	}
}

// SaveMessage 保存留言并使列表缓存失效
func (s *Store) SaveMessage(message *domain.Message) error {
	if err := s.inner.SaveMessage(message); err != nil {
		return err
	}
	s.invalidateMessages(message.ID)
	return nil
}

// ListMessages 优先返回缓存的列表
func (s *Store) ListMessages(limit int) ([]domain.Message, error) {
	key := listKey(limit)
	s.listKeys.Store(key, struct{}{})

	if data, ok := s.lookup(key); ok {
		var messages []domain.Message
		if err := json.Unmarshal(data, &messages); err == nil {
			return messages, nil
		}
		// 缓存内容损坏，当作未命中
		s.local.Delete(key)
	}

	messages, err := s.inner.ListMessages(limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(messages); err == nil {
		s.fill(key, data)
	}
	return messages, nil
}

// GetMessage 优先返回缓存的单条留言
func (s *Store) GetMessage(id string) (*domain.Message, error) {
	key := messageKey(id)

	if data, ok := s.lookup(key); ok {
		var message domain.Message
		if err := json.Unmarshal(data, &message); err == nil {
			return &message, nil
		}
		s.local.Delete(key)
	}

	message, err := s.inner.GetMessage(id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(message); err == nil {
		s.fill(key, data)
	}
	return message, nil
}

// UpdateMessage 更新留言并使缓存失效
func (s *Store) UpdateMessage(id string, patch domain.MessagePatch) (*domain.Message, error) {
	updated, err := s.inner.UpdateMessage(id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateMessages(id)
	return updated, nil
}

// DeleteMessage 删除留言并使缓存失效
func (s *Store) DeleteMessage(id string) error {
	if err := s.inner.DeleteMessage(id); err != nil {
		return err
	}
	s.invalidateMessages(id)
	return nil
}

// CountMessages 计数不走缓存
func (s *Store) CountMessages() (int64, int64, error) {
	return s.inner.CountMessages()
}

// SaveUser 直接委托内层存储
func (s *Store) SaveUser(user *domain.User) error {
	return s.inner.SaveUser(user)
}

// ListUsers 直接委托内层存储
func (s *Store) ListUsers() ([]domain.User, error) {
	return s.inner.ListUsers()
}

// GetUser 直接委托内层存储
func (s *Store) GetUser(id string) (*domain.User, error) {
	return s.inner.GetUser(id)
}

// UpdateUser 直接委托内层存储
func (s *Store) UpdateUser(id string, patch domain.UserPatch) (*domain.User, error) {
	return s.inner.UpdateUser(id, patch)
}

// DeleteUser 直接委托内层存储
func (s *Store) DeleteUser(id string) error {
	return s.inner.DeleteUser(id)
}

// Health 探测内层存储
func (s *Store) Health() error {
	return s.inner.Health()
}

// Close 依次关闭缓存和内层存储
func (s *Store) Close() error {
	s.local.Close()
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	return s.inner.Close()
}
