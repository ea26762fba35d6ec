package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidID 标识路径段不是合法的留言/用户 ID
	ErrInvalidID = errors.New("invalid identifier")
	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = errors.New("invalid email address")
)

// ID 必须是非空的字母数字串，避免把任意路径段透传到存储层
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// emailPattern 只做宽松的形状校验，真正的可达性不在服务端验证
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewID 生成一个新的记录 ID（去掉连字符的 UUID，纯字母数字）
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateID 校验路径中携带的记录 ID
func ValidateID(id string) error {
	if id == "" || !idPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

// ValidateEmail 校验邮箱格式
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
