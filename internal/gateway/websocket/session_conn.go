package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"skillswap_server/internal/dto/request"
	"skillswap_server/pkg/errorx"
)

// SessionConn 单个参与者在某个会话上的连接
type SessionConn struct {
	Conn      *websocket.Conn
	UserId    string
	SessionId string

	send     chan []byte // 给前端
	done     chan struct{}
	stopOnce sync.Once
	hub      *SessionHub
}

func (c *SessionConn) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// enqueue 非阻塞写入发送缓冲
func (c *SessionConn) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// readPump 读取前端发来的消息并写入会话
func (c *SessionConn) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.Conn.Close()
		zap.L().Info("ws连接断开", zap.String("user_id", c.UserId), zap.String("session_id", c.SessionId))
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws读取失败", zap.String("user_id", c.UserId), zap.Error(err))
			}
			return
		}

		var req request.PostSessionMessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.replyError(errorx.New(errorx.CodeInvalidParam, "消息格式错误"))
			continue
		}
		if c.hub.poster == nil {
			c.replyError(errorx.ErrServerBusy)
			continue
		}
		// 写库成功后由会话服务广播，发送者也会收到自己的消息
		if _, err := c.hub.poster.PostMessage(context.Background(), c.UserId, c.SessionId, req); err != nil {
			c.replyError(err)
		}
	}
}

// writePump 将发送缓冲中的消息写给前端，并定期发送 ping
func (c *SessionConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Warn("ws写入失败", zap.String("user_id", c.UserId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *SessionConn) replyError(err error) {
	frame := errorFrame{Code: errorx.GetCode(err), Msg: err.Error()}
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		frame.Msg = errorx.ErrServerBusy.Msg
	}
	payload, _ := json.Marshal(frame)
	c.enqueue(payload)
}
