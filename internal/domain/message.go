package domain

import "time"

// Message 表示一条联系表单留言
//
// 字段同时携带 JSON 与 GORM 标签：JSON 形状是管理后台前端的兼容契约，
// GORM 标签决定 messages 表结构。
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Subject   string    `json:"subject" gorm:"type:varchar(500)"`
	Title     string    `json:"title,omitempty" gorm:"type:varchar(500)"` // 旧版客户端使用的字段别名
	Body      string    `json:"message" gorm:"column:message;type:text;not null"`
	Date      time.Time `json:"date" gorm:"index:idx_messages_order,priority:2"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_messages_order,priority:1"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
}

// TableName 指定表名，保持与既有数据的 messages 集合一致
func (Message) TableName() string {
	return "messages"
}

// MessagePatch 表示对留言的部分更新
//
// 指针为 nil 表示该字段不修改；JSON 中未知的字段在绑定时被忽略。
type MessagePatch struct {
	Name    *string    `json:"name"`
	Email   *string    `json:"email"`
	Subject *string    `json:"subject"`
	Title   *string    `json:"title"`
	Body    *string    `json:"message"`
	Date    *time.Time `json:"date"`
	Read    *bool      `json:"read"`
}

// IsEmpty 判断补丁是否不包含任何修改
func (p MessagePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Subject == nil &&
		p.Title == nil && p.Body == nil && p.Date == nil && p.Read == nil
}

// Apply 将补丁合并到留言上，nil 字段保持原值
func (p MessagePatch) Apply(m *Message) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Body != nil {
		m.Body = *p.Body
	}
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Read != nil {
		m.Read = *p.Read
	}
}

// Columns 以 GORM 列名返回补丁中被修改的字段
func (p MessagePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Subject != nil {
		cols["subject"] = *p.Subject
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Body != nil {
		cols["message"] = *p.Body
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Read != nil {
		cols["read"] = *p.Read
	}
	return cols
}
