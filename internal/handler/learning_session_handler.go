// Package handler 提供 HTTP 请求处理器
// 本文件处理学习会话相关的 API 请求
package handler

import (
	"errors"
	"io"

	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/service"

	"github.com/gin-gonic/gin"
)

// LearningSessionHandler 学习会话请求处理器
type LearningSessionHandler struct {
	sessionSvc service.LearningSessionService
}

// NewLearningSessionHandler 创建学习会话处理器实例
func NewLearningSessionHandler(sessionSvc service.LearningSessionService) *LearningSessionHandler {
	return &LearningSessionHandler{sessionSvc: sessionSvc}
}

// Create 学员预约技能
// POST /sessions
// 请求体: request.CreateLearningSessionRequest
// 响应: respond.LearningSessionRespond
func (h *LearningSessionHandler) Create(c *gin.Context) {
	var req request.CreateLearningSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sessionSvc.Create(c.Request.Context(), actorId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// List 我参与的会话
// GET /sessions?role=learner|mentor
// 响应: []respond.LearningSessionRespond
func (h *LearningSessionHandler) List(c *gin.Context) {
	data, err := h.sessionSvc.List(c.Request.Context(), actorId(c), c.Query("role"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Get 会话详情
// GET /sessions/:sessionId
func (h *LearningSessionHandler) Get(c *gin.Context) {
	data, err := h.sessionSvc.Get(c.Request.Context(), actorId(c), c.Param("sessionId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Approve 导师批准
// POST /sessions/:sessionId/approve
// 请求体（可选）: request.MentorDecisionRequest
func (h *LearningSessionHandler) Approve(c *gin.Context) {
	var req request.MentorDecisionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sessionSvc.Approve(c.Request.Context(), actorId(c), c.Param("sessionId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Reject 导师拒绝
// POST /sessions/:sessionId/reject
// 请求体（可选）: request.MentorDecisionRequest
func (h *LearningSessionHandler) Reject(c *gin.Context) {
	var req request.MentorDecisionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sessionSvc.Reject(c.Request.Context(), actorId(c), c.Param("sessionId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Reschedule 改期
// POST /sessions/:sessionId/reschedule
// 请求体: request.RescheduleSessionRequest
func (h *LearningSessionHandler) Reschedule(c *gin.Context) {
	var req request.RescheduleSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sessionSvc.Reschedule(c.Request.Context(), actorId(c), c.Param("sessionId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Complete 标记完成
// POST /sessions/:sessionId/complete
func (h *LearningSessionHandler) Complete(c *gin.Context) {
	data, err := h.sessionSvc.Complete(c.Request.Context(), actorId(c), c.Param("sessionId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Cancel 取消
// POST /sessions/:sessionId/cancel
func (h *LearningSessionHandler) Cancel(c *gin.Context) {
	data, err := h.sessionSvc.Cancel(c.Request.Context(), actorId(c), c.Param("sessionId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PostMessage 发送会话消息
// POST /sessions/:sessionId/messages
// 请求体: request.PostSessionMessageRequest
func (h *LearningSessionHandler) PostMessage(c *gin.Context) {
	var req request.PostSessionMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sessionSvc.PostMessage(c.Request.Context(), actorId(c), c.Param("sessionId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMessages 会话消息列表
// GET /sessions/:sessionId/messages
func (h *LearningSessionHandler) ListMessages(c *gin.Context) {
	data, err := h.sessionSvc.ListMessages(c.Request.Context(), actorId(c), c.Param("sessionId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// bindOptionalJSON 请求体为空时保持零值
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
