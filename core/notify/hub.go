package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"QFMPlayer/logger"
)

// MessageType 消息类型
type MessageType string

const (
	MsgTypeNotice   MessageType = "notice"   // 用户提示
	MsgTypeSnapshot MessageType = "snapshot" // 播放器状态快照
	MsgTypePing     MessageType = "ping"     // 心跳
	MsgTypePong     MessageType = "pong"     // 心跳响应
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Client WebSocket 客户端
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient 创建客户端，Conn 为 nil 时只用于接收广播
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 64),
	}
}

// Hub 事件广播中心：提示和播放器快照推送给所有连接
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

// NewHub 创建 Hub，需要调用 Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 主循环，Stop 后返回
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("websocket client registered", logger.String("client", client.ID))

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.fanOut(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop 停止 Hub，可重复调用
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		logger.Debug("websocket client unregistered", logger.String("client", client.ID))
	}
}

func (h *Hub) fanOut(msg []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.Send <- msg:
		default:
			// 发送缓冲区满，移除客户端
			h.removeClient(c)
		}
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.Send)
	}
	h.clients = make(map[*Client]bool)
}

// Register 注册客户端
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish 广播一条消息；缓冲区满时丢弃
func (h *Hub) Publish(t MessageType, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(WSMessage{Type: t, Data: raw, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		logger.Warn("broadcast buffer full, dropping message", logger.String("type", string(t)))
	}
	return nil
}

// Notify 实现 Notifier，把提示推送给所有连接
func (h *Hub) Notify(level Level, message string) {
	if err := h.Publish(MsgTypeNotice, Notice{Level: level, Message: message, Time: time.Now()}); err != nil {
		logger.Warn("publish notice failed", logger.ErrorField(err))
	}
}

// ReadPump 读取消息循环，只处理心跳
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", logger.ErrorField(err), logger.String("client", c.ID))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn("invalid message format", logger.ErrorField(err), logger.String("client", c.ID))
			continue
		}
		if msg.Type == MsgTypePing {
			pong, _ := json.Marshal(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
			select {
			case c.Send <- pong:
			default:
			}
		}
	}
}

// WritePump 写入消息循环
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub 关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
