// Package websocket 实现学习会话的实时消息推送
// 参与者按会话订阅，新消息写库后由 Hub 推送给该会话的所有在线连接
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/dto/respond"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/errorx"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 跨域由 cors 中间件和 JWT 控制
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessagePoster 会话消息写入
// 由会话服务实现，写库成功后会回调 Hub.Broadcast
type MessagePoster interface {
	PostMessage(ctx context.Context, actorId, sessionId string, req request.PostSessionMessageRequest) (*respond.SessionMessageRespond, error)
}

type transmitMessage struct {
	sessionId string
	payload   []byte
}

// errorFrame 推送给发送者的错误帧
type errorFrame struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// SessionHub 会话连接管理与消息分发
type SessionHub struct {
	mu      sync.RWMutex
	clients map[string]map[*SessionConn]struct{} // sessionId -> 连接集合

	// Transmit 待分发的消息
	Transmit chan transmitMessage

	poster    MessagePoster
	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionHub 创建 Hub，需要调用 Start 启动分发循环
func NewSessionHub() *SessionHub {
	return &SessionHub{
		clients:  make(map[string]map[*SessionConn]struct{}),
		Transmit: make(chan transmitMessage, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// SetPoster 注入消息写入实现
// 会话服务依赖 Hub 做推送，因此在服务创建后注入
func (h *SessionHub) SetPoster(poster MessagePoster) {
	h.poster = poster
}

// Start 分发循环，直到 Close
func (h *SessionHub) Start() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.Transmit:
			h.dispatch(msg)
		}
	}
}

// Close 断开所有连接并停止分发
func (h *SessionHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for sessionId, conns := range h.clients {
			for conn := range conns {
				conn.stop()
			}
			delete(h.clients, sessionId)
		}
	})
}

// Broadcast 实现 booking.Broadcaster，非阻塞
// 分发通道已满时丢弃，客户端可通过消息列表接口补齐
func (h *SessionHub) Broadcast(sessionId string, payload []byte) {
	select {
	case h.Transmit <- transmitMessage{sessionId: sessionId, payload: payload}:
	case <-h.done:
	default:
		zap.L().Warn("会话消息分发通道已满，丢弃推送", zap.String("session_id", sessionId))
	}
}

// OnlineCount 会话当前在线连接数
func (h *SessionHub) OnlineCount(sessionId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionId])
}

// Serve 升级为 WebSocket 并订阅会话
// 调用方需要先确认 userId 是该会话的参与者
func (h *SessionHub) Serve(w http.ResponseWriter, r *http.Request, userId, sessionId string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &SessionConn{
		Conn:      conn,
		UserId:    userId,
		SessionId: sessionId,
		send:      make(chan []byte, constants.CHANNEL_SIZE),
		done:      make(chan struct{}),
		hub:       h,
	}
	if !h.register(client) {
		_ = conn.Close()
		return errorx.ErrServerBusy
	}
	go client.writePump()
	go client.readPump()
	zap.L().Info("ws连接成功", zap.String("user_id", userId), zap.String("session_id", sessionId))
	return nil
}

func (h *SessionHub) register(c *SessionConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	conns, ok := h.clients[c.SessionId]
	if !ok {
		conns = make(map[*SessionConn]struct{})
		h.clients[c.SessionId] = conns
	}
	conns[c] = struct{}{}
	return true
}

func (h *SessionHub) unregister(c *SessionConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.SessionId]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.SessionId)
	}
	c.stop()
}

func (h *SessionHub) dispatch(msg transmitMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients[msg.sessionId] {
		if !conn.enqueue(msg.payload) {
			zap.L().Warn("客户端发送缓冲已满，丢弃推送",
				zap.String("user_id", conn.UserId),
				zap.String("session_id", msg.sessionId),
			)
		}
	}
}
