// Package handler 提供 HTTP 请求处理器
// 本文件处理会话实时消息的 WebSocket 连接
package handler

import (
	"net/http"

	"skillswap_server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionGateway 会话 WebSocket 网关
type SessionGateway interface {
	Serve(w http.ResponseWriter, r *http.Request, userId, sessionId string) error
}

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	sessionSvc service.LearningSessionService
	gateway    SessionGateway
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(sessionSvc service.LearningSessionService, gateway SessionGateway) *WsHandler {
	return &WsHandler{sessionSvc: sessionSvc, gateway: gateway}
}

// Connect 订阅会话实时消息
// GET /ws/session?sessionId=xxx&token=xxx
// 只有会话参与者可以订阅
func (h *WsHandler) Connect(c *gin.Context) {
	sessionId := c.Query("sessionId")
	userId := actorId(c)
	if _, err := h.sessionSvc.Get(c.Request.Context(), userId, sessionId); err != nil {
		HandleError(c, err)
		return
	}
	if err := h.gateway.Serve(c.Writer, c.Request, userId, sessionId); err != nil {
		// Upgrade 失败时 gorilla 已写入响应
		zap.L().Warn("ws upgrade failed", zap.String("user_id", userId), zap.String("session_id", sessionId), zap.Error(err))
	}
}
