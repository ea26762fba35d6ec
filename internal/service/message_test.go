package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contactbox/backend/internal/domain"
	"contactbox/backend/internal/storage"
	"contactbox/backend/internal/storage/memory"
)

func newMessageService(listLimit int) *MessageService {
	return NewMessageService(memory.NewStore(), listLimit, zap.NewNop())
}

func TestCreateMessage(t *testing.T) {
	t.Run("创建留言成功", func(t *testing.T) {
		svc := newMessageService(100)

		msg, err := svc.Create(CreateMessageInput{
			Name:    "Alice",
			Email:   "alice@example.com",
			Subject: "Hello",
			Body:    "This is a test message.",
		})

		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.NoError(t, domain.ValidateID(msg.ID))
		assert.Equal(t, "Alice", msg.Name)
		assert.Equal(t, "alice@example.com", msg.Email)
		assert.False(t, msg.Read)
		assert.WithinDuration(t, time.Now().UTC(), msg.CreatedAt, 2*time.Second)
		assert.Equal(t, msg.CreatedAt, msg.Date)
	})

	t.Run("服务端时间戳覆盖客户端值", func(t *testing.T) {
		svc := newMessageService(100)

		msg, err := svc.Create(CreateMessageInput{
			Name:  "Alice",
			Email: "alice@example.com",
			Body:  "hello",
		})

		require.NoError(t, err)
		assert.False(t, msg.CreatedAt.IsZero())
		assert.False(t, msg.Date.IsZero())
	})

	t.Run("字段前后空白被裁剪", func(t *testing.T) {
		svc := newMessageService(100)

		msg, err := svc.Create(CreateMessageInput{
			Name:  "  Alice  ",
			Email: " alice@example.com ",
			Body:  "hello",
		})

		require.NoError(t, err)
		assert.Equal(t, "Alice", msg.Name)
		assert.Equal(t, "alice@example.com", msg.Email)
	})

	t.Run("缺少必填字段失败", func(t *testing.T) {
		svc := newMessageService(100)

		testCases := []struct {
			name    string
			input   CreateMessageInput
			wantErr error
		}{
			{
				name:    "缺少name",
				input:   CreateMessageInput{Email: "a@example.com", Body: "hi"},
				wantErr: ErrNameRequired,
			},
			{
				name:    "缺少email",
				input:   CreateMessageInput{Name: "Alice", Body: "hi"},
				wantErr: ErrEmailRequired,
			},
			{
				name:    "缺少message",
				input:   CreateMessageInput{Name: "Alice", Email: "a@example.com"},
				wantErr: ErrBodyRequired,
			},
			{
				name:    "邮箱格式错误",
				input:   CreateMessageInput{Name: "Alice", Email: "not-an-email", Body: "hi"},
				wantErr: domain.ErrInvalidEmail,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				msg, err := svc.Create(tc.input)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, msg)
			})
		}
	})
}

func TestListMessages(t *testing.T) {
	t.Run("空存储返回空切片而非nil", func(t *testing.T) {
		svc := newMessageService(100)

		out, err := svc.List()
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("按创建时间倒序返回", func(t *testing.T) {
		svc := newMessageService(100)

		for _, name := range []string{"first", "second", "third"} {
			_, err := svc.Create(CreateMessageInput{
				Name:  name,
				Email: name + "@example.com",
				Body:  "hello",
			})
			require.NoError(t, err)
			time.Sleep(2 * time.Millisecond) // 保证 createdAt 单调递增
		}

		out, err := svc.List()
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "third", out[0].Name)
		assert.Equal(t, "first", out[2].Name)
	})

	t.Run("列表条数受上限约束", func(t *testing.T) {
		svc := newMessageService(2)

		for i := 0; i < 5; i++ {
			_, err := svc.Create(CreateMessageInput{
				Name:  "Alice",
				Email: "alice@example.com",
				Body:  "hello",
			})
			require.NoError(t, err)
		}

		out, err := svc.List()
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}

func TestGetMessage(t *testing.T) {
	t.Run("按ID查询成功", func(t *testing.T) {
		svc := newMessageService(100)
		created, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)

		got, err := svc.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("非法ID返回ErrInvalidID", func(t *testing.T) {
		svc := newMessageService(100)

		got, err := svc.Get("bad/id")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
		assert.Nil(t, got)
	})

	t.Run("不存在的ID返回ErrMessageNotFound", func(t *testing.T) {
		svc := newMessageService(100)

		got, err := svc.Get("abc123")
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
		assert.Nil(t, got)
	})
}

func TestUpdateMessage(t *testing.T) {
	t.Run("标记已读成功", func(t *testing.T) {
		svc := newMessageService(100)
		created, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)

		read := true
		updated, err := svc.Update(created.ID, domain.MessagePatch{Read: &read})
		require.NoError(t, err)
		assert.True(t, updated.Read)
		assert.Equal(t, "Alice", updated.Name)
	})

	t.Run("空补丁返回当前记录", func(t *testing.T) {
		svc := newMessageService(100)
		created, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)

		updated, err := svc.Update(created.ID, domain.MessagePatch{})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.False(t, updated.Read)
	})

	t.Run("更新不存在的留言返回ErrMessageNotFound", func(t *testing.T) {
		svc := newMessageService(100)

		read := true
		updated, err := svc.Update("abc123", domain.MessagePatch{Read: &read})
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
		assert.Nil(t, updated)
	})

	t.Run("非法ID返回ErrInvalidID", func(t *testing.T) {
		svc := newMessageService(100)

		read := true
		_, err := svc.Update("bad id", domain.MessagePatch{Read: &read})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestDeleteMessage(t *testing.T) {
	t.Run("删除存在的留言成功", func(t *testing.T) {
		svc := newMessageService(100)
		created, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(created.ID))

		_, err = svc.Get(created.ID)
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})

	t.Run("删除不存在的留言也成功", func(t *testing.T) {
		svc := newMessageService(100)
		assert.NoError(t, svc.Delete("abc123"))
	})

	t.Run("非法ID返回ErrInvalidID", func(t *testing.T) {
		svc := newMessageService(100)
		assert.ErrorIs(t, svc.Delete("bad id"), domain.ErrInvalidID)
	})
}

func TestMessageStats(t *testing.T) {
	svc := newMessageService(100)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)
	}

	out, err := svc.List()
	require.NoError(t, err)
	read := true
	_, err = svc.Update(out[0].ID, domain.MessagePatch{Read: &read})
	require.NoError(t, err)

	total, unread, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), unread)
}

func TestSeedSampleData(t *testing.T) {
	t.Run("空存储写入示例留言", func(t *testing.T) {
		svc := newMessageService(100)

		require.NoError(t, svc.SeedSampleData())

		out, err := svc.List()
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("非空存储不重复写入", func(t *testing.T) {
		svc := newMessageService(100)
		_, err := svc.Create(CreateMessageInput{
			Name: "Alice", Email: "alice@example.com", Body: "hello",
		})
		require.NoError(t, err)

		require.NoError(t, svc.SeedSampleData())

		out, err := svc.List()
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}
