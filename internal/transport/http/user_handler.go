package http

import (
	"github.com/gin-gonic/gin"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/service"
)

type createUserRequest struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Status domain.UserStatus `json:"status"`
}

// listUsers 返回全部用户
// GET /api/users
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		writeUserError(c, err)
		return
	}
	OK(c, users)
}

// getUser 返回单个用户
// GET /api/users/:id
func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Get(c.Param("id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	OK(c, user)
}

// createUser 创建一个用户
// POST /api/users
func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidBody)
		return
	}

	user, err := h.users.Create(service.CreateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Status: req.Status,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	Created(c, user)
}

// updateUser 对用户做部分更新
// PATCH /api/users/:id
func (h *Handler) updateUser(c *gin.Context) {
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, MsgInvalidBody)
		return
	}

	updated, err := h.users.Update(c.Param("id"), patch)
	if err != nil {
		writeUserError(c, err)
		return
	}
	OK(c, updated)
}

// deleteUser 删除用户
// DELETE /api/users/:id
func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Param("id")); err != nil {
		writeUserError(c, err)
		return
	}
	Deleted(c)
}
