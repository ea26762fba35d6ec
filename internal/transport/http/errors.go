package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/service"
	"contactbox/backend/internal/storage"
)

// 暴露给客户端的错误文案
const (
	MsgInvalidMessageID = "Invalid message id"
	MsgMessageNotFound  = "Message not found"
	MsgInvalidUserID    = "Invalid user id"
	MsgUserNotFound     = "User not found"
	MsgEmailExists      = "Email already exists"
	MsgInvalidBody      = "Invalid request body"
)

// validationMessages 业务校验错误到客户端文案的映射
var validationMessages = map[error]string{
	service.ErrNameRequired:  "Name is required",
	service.ErrEmailRequired: "Email is required",
	service.ErrBodyRequired:  "Message is required",
	service.ErrInvalidStatus: "Invalid status value",
	domain.ErrInvalidEmail:   "Invalid email address",
}

// writeMessageError 把留言相关的业务错误翻译成响应
func writeMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		BadRequest(c, MsgInvalidMessageID)
	case errors.Is(err, storage.ErrMessageNotFound):
		NotFound(c, MsgMessageNotFound)
	default:
		if msg, ok := validationMessage(err); ok {
			BadRequest(c, msg)
			return
		}
		// 配置缺失和后端不可达都按 500 暴露具体原因
		InternalError(c, err.Error())
	}
}

// writeUserError 把用户相关的业务错误翻译成响应
func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		BadRequest(c, MsgInvalidUserID)
	case errors.Is(err, storage.ErrUserNotFound):
		NotFound(c, MsgUserNotFound)
	case errors.Is(err, storage.ErrEmailExists):
		BadRequest(c, MsgEmailExists)
	default:
		if msg, ok := validationMessage(err); ok {
			BadRequest(c, msg)
			return
		}
		InternalError(c, err.Error())
	}
}

func validationMessage(err error) (string, bool) {
	for target, msg := range validationMessages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}
