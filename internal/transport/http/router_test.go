package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/health"
	"contactbox/backend/internal/service"
	"contactbox/backend/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := zap.NewNop()

	router := NewRouter(RouterDependencies{
		Messages:    service.NewMessageService(store, 100, logger),
		Users:       service.NewUserService(store, logger),
		Health:      health.NewChecker(store, logger),
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})
	return router, store
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestMessage(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/messages", map[string]string{
		"name":    "Alice",
		"email":   "alice@example.com",
		"subject": "Hello",
		"message": "This is a test message.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

func TestMessageLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	// 创建：服务端生成 id 和时间戳，read 初始为 false
	created := createTestMessage(t, router)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Alice", created["name"])
	assert.Equal(t, "This is a test message.", created["message"])
	assert.Equal(t, false, created["read"])
	assert.NotEmpty(t, created["createdAt"])
	assert.NotEmpty(t, created["date"])

	// 列表：裸数组，包含刚创建的留言
	w := doRequest(router, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	// 单条查询
	w = doRequest(router, http.MethodGet, "/api/messages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got["id"])

	// 部分更新：标记已读，其余字段不变
	w = doRequest(router, http.MethodPatch, "/api/messages/"+id, map[string]interface{}{"read": true})
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, true, updated["read"])
	assert.Equal(t, "Alice", updated["name"])

	// 删除：固定 {success:true} 响应
	w = doRequest(router, http.MethodDelete, "/api/messages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// 重复删除同样成功（幂等）
	w = doRequest(router, http.MethodDelete, "/api/messages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// 删除后查询返回 404
	w = doRequest(router, http.MethodGet, "/api/messages/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Message not found"}`, w.Body.String())
}

func TestListMessagesEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListMessagesOrdering(t *testing.T) {
	router, store := newTestRouter(t)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.SaveMessage(&domain.Message{
			ID: id, Name: "N", Email: "n@example.com", Body: "b",
			Date: ts, CreatedAt: ts,
		}))
	}

	w := doRequest(router, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "m3", list[0]["id"])
	assert.Equal(t, "m2", list[1]["id"])
	assert.Equal(t, "m1", list[2]["id"])
}

func TestCreateMessageValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	testCases := []struct {
		name    string
		body    map[string]string
		wantMsg string
	}{
		{
			name:    "缺少name",
			body:    map[string]string{"email": "a@example.com", "message": "hi"},
			wantMsg: "Name is required",
		},
		{
			name:    "缺少email",
			body:    map[string]string{"name": "Alice", "message": "hi"},
			wantMsg: "Email is required",
		},
		{
			name:    "缺少message",
			body:    map[string]string{"name": "Alice", "email": "a@example.com"},
			wantMsg: "Message is required",
		},
		{
			name:    "邮箱格式错误",
			body:    map[string]string{"name": "Alice", "email": "nope", "message": "hi"},
			wantMsg: "Invalid email address",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/messages", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.wantMsg), w.Body.String())
		})
	}
}

func TestMalformedJSONBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader([]byte(`{"name": `)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestInvalidMessageID(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			var body interface{}
			if method == http.MethodPatch {
				body = map[string]interface{}{"read": true}
			}
			w := doRequest(router, method, "/api/messages/abc-123", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid message id"}`, w.Body.String())
		})
	}
}

func TestUpdateMissingMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPatch, "/api/messages/abc123", map[string]interface{}{"read": true})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Message not found"}`, w.Body.String())
}

func TestUnknownRouteDiagnostics(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not found", body["error"])
	assert.Equal(t, "/api/unknown", body["path"])
	assert.Equal(t, http.MethodGet, body["method"])
}

func TestCORSBehaviour(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("OPTIONS请求返回200", func(t *testing.T) {
		w := doRequest(router, http.MethodOptions, "/api/messages", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("任意路径的OPTIONS也返回200", func(t *testing.T) {
		w := doRequest(router, http.MethodOptions, "/api/anything/else", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("成功响应携带CORS头", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/messages", nil)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("错误响应同样携带CORS头", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/messages/abc-123", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("预检请求返回200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Server is running", body["message"])
	assert.Equal(t, "connected", body["database"])
}

func TestHealthProbes(t *testing.T) {
	router, _ := newTestRouter(t)

	live := doRequest(router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, live.Code)

	ready := doRequest(router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestUserEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("创建并查询用户", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/users", map[string]string{
			"name":  "Alice",
			"email": "alice@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "active", user["status"])

		id := user["id"].(string)
		w = doRequest(router, http.MethodGet, "/api/users/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("重复邮箱返回400", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/users", map[string]string{
			"name":  "Bob",
			"email": "alice@example.com",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Email already exists"}`, w.Body.String())
	})

	t.Run("非法状态返回400", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/users", map[string]string{
			"name":   "Carol",
			"email":  "carol@example.com",
			"status": "banned",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Invalid status value"}`, w.Body.String())
	})

	t.Run("更新用户状态", func(t *testing.T) {
		created := doRequest(router, http.MethodPost, "/api/users", map[string]string{
			"name":  "Dave",
			"email": "dave@example.com",
		})
		require.Equal(t, http.StatusCreated, created.Code)
		var user map[string]interface{}
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &user))
		id := user["id"].(string)

		w := doRequest(router, http.MethodPatch, "/api/users/"+id, map[string]string{"status": "inactive"})
		require.Equal(t, http.StatusOK, w.Code)
		var updated map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "inactive", updated["status"])
	})

	t.Run("删除用户幂等", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, "/api/users/abc123", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("不存在的用户返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/abc123", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
	})
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createTestMessage(t, router)
	id := created["id"].(string)

	// 只改 subject，正文和已读状态保持不变
	w := doRequest(router, http.MethodPatch, "/api/messages/"+id, map[string]string{"subject": "Changed"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Changed", updated["subject"])
	assert.Equal(t, "This is a test message.", updated["message"])
	assert.Equal(t, false, updated["read"])

	// 未知字段被忽略，不影响其他字段
	w = doRequest(router, http.MethodPatch, "/api/messages/"+id, map[string]interface{}{"bogus": 42})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Changed", updated["subject"])
}
