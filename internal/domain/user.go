package domain

import "time"

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusPending  UserStatus = "pending"
)

// Valid 判断状态值是否在枚举范围内
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusPending:
		return true
	}
	return false
}

// User 表示管理后台维护的用户记录
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null"`
	Email     string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Status    UserStatus `json:"status" gorm:"type:varchar(16);not null;default:active"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// UserPatch 表示对用户的部分更新，nil 字段不修改
type UserPatch struct {
	Name   *string     `json:"name"`
	Email  *string     `json:"email"`
	Status *UserStatus `json:"status"`
}

// IsEmpty 判断补丁是否不包含任何修改
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Status == nil
}

// Apply 将补丁合并到用户上
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
}

// Columns 以 GORM 列名返回补丁中被修改的字段
func (p UserPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	return cols
}
