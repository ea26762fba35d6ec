package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 管理后台前端直接消费文档本体，而不是 {code,msg,data} 这类信封，
// 这里的辅助函数固定了这套响应形状。

// OK 返回 200 和文档本体
func OK(c *gin.Context, doc interface{}) {
	c.JSON(http.StatusOK, doc)
}

// Created 返回 201 和新建的文档
func Created(c *gin.Context, doc interface{}) {
	c.JSON(http.StatusCreated, doc)
}

// Deleted 删除成功的固定响应
func Deleted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// BadRequest 返回 400 和校验错误说明
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// NotFound 返回 404 和资源缺失说明
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

// InternalError 返回 500，detail 携带具体原因方便排障
func InternalError(c *gin.Context, detail string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": detail,
	})
}

// RouteNotFound 未匹配任何路由时的诊断响应
func RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":  "Not found",
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	})
}
