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
	// ErrNameRequired 创建留言时缺少 name 字段
	ErrNameRequired = errors.New("name is required")
	// ErrEmailRequired 创建留言时缺少 email 字段
	ErrEmailRequired = errors.New("email is required")
	// ErrBodyRequired 创建留言时缺少 message 字段
	ErrBodyRequired = errors.New("message is required")
)

// CreateMessageInput 创建留言的输入参数
type CreateMessageInput struct {
	Name    string
	Email   string
	Subject string
	Title   string
	Body    string
}

// MessageService 留言业务逻辑
type MessageService struct {
	store     storage.Store
	listLimit int // 列表返回条数上限，0 表示不限制
	logger    *zap.Logger
}

// NewMessageService 创建留言服务
func NewMessageService(store storage.Store, listLimit int, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:     store,
		listLimit: listLimit,
		logger:    logger,
	}
}

// Create 创建一条新留言
//
// ID、date、createdAt 由服务端生成，客户端提交的时间值一律忽略；
// read 初始为 false。
func (s *MessageService) Create(input CreateMessageInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrEmailRequired
	}
	if err := domain.ValidateEmail(strings.TrimSpace(input.Email)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrBodyRequired
	}

	now := time.Now().UTC()
	message := &domain.Message{
		ID:        domain.NewID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Date:      now,
		CreatedAt: now,
		Read:      false,
	}

	if err := s.store.SaveMessage(message); err != nil {
		s.logger.Error("failed to save message", zap.String("id", message.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("message created",
		zap.String("id", message.ID),
		zap.String("email", message.Email),
	)
	return message, nil
}

// List 返回按时间倒序排列的留言列表
func (s *MessageService) List() ([]domain.Message, error) {
	messages, err := s.store.ListMessages(s.listLimit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Get 按 ID 查询留言
func (s *MessageService) Get(id string) (*domain.Message, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.GetMessage(id)
}

// Update 对留言做部分更新并返回更新后的记录
//
// ID 不存在时返回 storage.ErrMessageNotFound；空补丁直接返回当前记录。
func (s *MessageService) Update(id string, patch domain.MessagePatch) (*domain.Message, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.store.GetMessage(id)
	}

	updated, err := s.store.UpdateMessage(id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message updated", zap.String("id", id))
	return updated, nil
}

// Delete 删除留言，ID 不存在时也视为成功
func (s *MessageService) Delete(id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	if err := s.store.DeleteMessage(id); err != nil {
		return err
	}

	s.logger.Info("message deleted", zap.String("id", id))
	return nil
}

// Stats 返回留言总数和未读数
func (s *MessageService) Stats() (total int64, unread int64, err error) {
	return s.store.CountMessages()
}

// SeedSampleData 在存储为空时写入示例留言，用于开发演示
func (s *MessageService) SeedSampleData() error {
	total, _, err := s.store.CountMessages()
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	samples := []CreateMessageInput{
		{
			Name:    "John Doe",
			Email:   "john@example.com",
			Subject: "Website Inquiry",
			Body:    "Hello, I am interested in your services.",
		},
		{
			Name:    "Jane Smith",
			Email:   "jane@example.com",
			Subject: "Partnership Proposal",
			Body:    "We would like to discuss a potential partnership.",
		},
		{
			Name:    "Bob Wilson",
			Email:   "bob@example.com",
			Subject: "Support Request",
			Body:    "I need help with my recent order.",
		},
	}

	for _, input := range samples {
		if _, err := s.Create(input); err != nil {
			return err
		}
	}

	s.logger.Info("sample messages seeded", zap.Int("count", len(samples)))
	return nil
}
