package respond

import "time"

// SessionMessageRespond 会话消息
// MessageId 为雪花 ID 的字符串形式，避免前端精度丢失
// 使用位置:
//   - internal/service/booking/service.go: PostMessage, ListMessages
//   - internal/gateway/websocket/session_conn.go: SessionConn.readPump，序列化后推送给在线参与者
type SessionMessageRespond struct {
	MessageId string    `json:"message_id"`
	SessionId string    `json:"session_id"`
	SenderId  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
