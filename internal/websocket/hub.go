package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"contactbox/backend/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// EventType 推送事件类型
type EventType string

const (
	EventMessageCreated EventType = "message_created"
	EventMessageUpdated EventType = "message_updated"
	EventMessageDeleted EventType = "message_deleted"
)

// Event 推送给管理后台的事件
//
// 管理面板默认每 10 秒轮询一次列表，订阅了推送的客户端
// 可以在收到事件后立刻刷新，而不用等下一个轮询周期。
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// newUpgrader 创建带 Origin 校验的升级器
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			for _, origin := range allowedOrigins {
				if origin == "*" {
					return true
				}
			}

			requestOrigin := r.Header.Get("Origin")
			if requestOrigin == "" {
				// 无 Origin 视为同源请求
				return true
			}

			for _, origin := range allowedOrigins {
				if requestOrigin == origin {
					return true
				}
			}
			return false
		},
	}
}

// Client 一个已连接的管理后台客户端
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *zap.Logger
}

// Hub 管理所有 WebSocket 连接并向它们广播事件
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
	logger     *zap.Logger

	// 连接数变化的回调，用于指标上报，可为 nil
	OnConnect    func()
	OnDisconnect func()
}

// NewHub 创建广播中心
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		upgrader:   newUpgrader(allowedOrigins),
		logger:     logger,
	}
}

// Run 事件循环，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.OnConnect != nil {
				h.OnConnect()
			}
			h.logger.Debug("websocket client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if h.OnDisconnect != nil {
					h.OnDisconnect()
				}
				h.logger.Debug("websocket client disconnected", zap.Int("clients", len(h.clients)))
			}

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// 发送缓冲已满，放弃这个慢客户端
					delete(h.clients, client)
					close(client.send)
					if h.OnDisconnect != nil {
						h.OnDisconnect()
					}
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				_ = client.conn.Close()
			}
			h.clients = make(map[*Client]bool)
			return
		}
	}
}

// publish 序列化事件并广播
func (h *Hub) publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast queue full, event dropped", zap.String("type", string(event.Type)))
	}
}

// NotifyMessageCreated 广播留言创建事件
func (h *Hub) NotifyMessageCreated(message *domain.Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	h.publish(Event{
		Type:      EventMessageCreated,
		Data:      data,
		ID:        message.ID,
		Timestamp: time.Now().UTC(),
	})
}

// NotifyMessageUpdated 广播留言更新事件
func (h *Hub) NotifyMessageUpdated(message *domain.Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	h.publish(Event{
		Type:      EventMessageUpdated,
		Data:      data,
		ID:        message.ID,
		Timestamp: time.Now().UTC(),
	})
}

// NotifyMessageDeleted 广播留言删除事件
func (h *Hub) NotifyMessageDeleted(id string) {
	h.publish(Event{
		Type:      EventMessageDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	})
}

// HandleConnection 处理 WebSocket 升级请求（挂载在 gin 路由上）
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
		hub:  h,
		log:  h.logger,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump 消费客户端发来的数据
//
// 管理后台客户端只接收事件，收到的内容全部丢弃；
// 这个循环的意义在于处理 pong 和感知连接关闭。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump 把事件写给客户端并维持心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
