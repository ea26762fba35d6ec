package http

import (
	"github.com/gin-gonic/gin"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/service"
)

// createMessageRequest 创建留言的请求体
//
// 客户端提交的 date/createdAt 会被服务端时间覆盖，这里不接收。
type createMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Title   string `json:"title"`
	Body    string `json:"message"`
}

// listMessages 返回按时间倒序的留言数组
// GET /api/messages
func (h *Handler) listMessages(c *gin.Context) {
	messages, err := h.messages.List()
	if err != nil {
		writeMessageError(c, err)
		return
	}
	OK(c, messages)
}

// getMessage 返回单条留言
// GET /api/messages/:id
func (h *Handler) getMessage(c *gin.Context) {
	message, err := h.messages.Get(c.Param("id"))
	if err != nil {
		writeMessageError(c, err)
		return
	}
	OK(c, message)
}

// createMessage 创建一条留言
// POST /api/messages
func (h *Handler) createMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidBody)
		return
	}

	message, err := h.messages.Create(service.CreateMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Title:   req.Title,
		Body:    req.Body,
	})
	if err != nil {
		writeMessageError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.NotifyMessageCreated(message)
	}
	Created(c, message)
}

// updateMessage 对留言做部分更新并返回更新后的文档
// PATCH /api/messages/:id
func (h *Handler) updateMessage(c *gin.Context) {
	var patch domain.MessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, MsgInvalidBody)
		return
	}

	updated, err := h.messages.Update(c.Param("id"), patch)
	if err != nil {
		writeMessageError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.NotifyMessageUpdated(updated)
	}
	OK(c, updated)
}

// deleteMessage 删除留言，ID 不存在时同样返回成功
// DELETE /api/messages/:id
func (h *Handler) deleteMessage(c *gin.Context) {
	id := c.Param("id")
	if err := h.messages.Delete(id); err != nil {
		writeMessageError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.NotifyMessageDeleted(id)
	}
	Deleted(c)
}
