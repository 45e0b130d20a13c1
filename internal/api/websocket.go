// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsSendBuffer   = 64
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventClient 表示一个事件订阅连接；sessionID 为空时接收全部事件
type EventClient struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	closed    int32
	createdAt time.Time
}

// Close 安全关闭客户端连接
func (client *EventClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) && client.conn != nil {
		client.conn.Close()
	}
}

// IsClosed 检查连接是否已关闭
func (client *EventClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

func (client *EventClient) wants(event models.Event) bool {
	return client.sessionID == "" || client.sessionID == event.SessionID
}

// EventHub 管理事件订阅连接，实现 services.EventPublisher。
// clients 只在 Run 协程中修改，send 通道也只在该协程中关闭。
type EventHub struct {
	clients    map[*EventClient]struct{}
	broadcast  chan models.Event
	register   chan *EventClient
	unregister chan *EventClient
	mutex      sync.RWMutex
	logger     *utils.Logger
}

// NewEventHub 创建事件中心，需要调用 Run 才会投递事件
func NewEventHub(logger *utils.Logger) *EventHub {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &EventHub{
		clients:    make(map[*EventClient]struct{}),
		broadcast:  make(chan models.Event, 256),
		register:   make(chan *EventClient, 16),
		unregister: make(chan *EventClient, 16),
		logger:     logger,
	}
}

// Run 运行事件中心主循环，直到 ctx 结束
func (hub *EventHub) Run(ctx context.Context) {
	for {
		select {
		case client := <-hub.register:
			hub.mutex.Lock()
			hub.clients[client] = struct{}{}
			hub.mutex.Unlock()
			hub.logger.Debug("Event subscriber connected", map[string]interface{}{
				"session_id": client.sessionID,
			})

		case client := <-hub.unregister:
			hub.remove(client)

		case event := <-hub.broadcast:
			hub.deliver(event)

		case <-ctx.Done():
			hub.shutdown()
			return
		}
	}
}

// Publish 非阻塞地发布事件，队列满时丢弃
func (hub *EventHub) Publish(event models.Event) {
	select {
	case hub.broadcast <- event:
	default:
		hub.logger.Warn("Event queue full, event dropped", map[string]interface{}{
			"type": string(event.Type),
		})
	}
}

// ClientCount 当前订阅连接数
func (hub *EventHub) ClientCount() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients)
}

func (hub *EventHub) deliver(event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		hub.logger.Error("Failed to encode event", map[string]interface{}{"error": err.Error()})
		return
	}

	hub.mutex.RLock()
	targets := make([]*EventClient, 0, len(hub.clients))
	for client := range hub.clients {
		if client.wants(event) {
			targets = append(targets, client)
		}
	}
	hub.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- payload:
		default:
			// 慢客户端直接断开
			hub.logger.Warn("Slow event subscriber dropped", map[string]interface{}{
				"session_id": client.sessionID,
			})
			hub.remove(client)
		}
	}
}

func (hub *EventHub) remove(client *EventClient) {
	hub.mutex.Lock()
	_, ok := hub.clients[client]
	delete(hub.clients, client)
	hub.mutex.Unlock()

	if ok {
		close(client.send)
	}
	client.Close()
}

func (hub *EventHub) shutdown() {
	hub.mutex.Lock()
	clients := hub.clients
	hub.clients = make(map[*EventClient]struct{})
	hub.mutex.Unlock()

	for client := range clients {
		close(client.send)
		client.Close()
	}
}

// ServeWS 处理 /ws/events 连接，可选 session_id 过滤
func (hub *EventHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Warn("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := &EventClient{
		conn:      conn,
		sessionID: c.Query("session_id"),
		send:      make(chan []byte, wsSendBuffer),
		createdAt: time.Now(),
	}
	hub.register <- client

	go hub.writePump(client)
	hub.readPump(client)
}

// readPump 只处理控制帧，连接断开时注销客户端
func (hub *EventHub) readPump(client *EventClient) {
	defer func() {
		select {
		case hub.unregister <- client:
		case <-time.After(time.Second):
			client.Close()
		}
	}()

	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Debug("WebSocket read error", map[string]interface{}{"error": err.Error()})
			}
			return
		}
	}
}

func (hub *EventHub) writePump(client *EventClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
