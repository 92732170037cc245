package request

// PostSessionMessageRequest 会话内发送消息请求
// 使用位置:
//   - internal/handler/learning_session_handler.go: LearningSessionHandler.PostMessage
//   - internal/gateway/websocket/session_conn.go: SessionConn.readPump
//   - internal/service/booking/service.go: PostMessage
type PostSessionMessageRequest struct {
	Content string `json:"content"`
}
