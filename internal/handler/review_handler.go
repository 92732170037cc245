// Package handler 提供 HTTP 请求处理器
// 本文件处理评价与信誉相关的 API 请求
package handler

import (
	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler 评价请求处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建评价处理器实例
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Create 创建评价
// POST /reviews
// 请求体: request.CreateReviewRequest
// 响应: respond.ReviewRespond
func (h *ReviewHandler) Create(c *gin.Context) {
	var req request.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.reviewSvc.CreateReview(c.Request.Context(), actorId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMine 我给出或收到的评价
// GET /reviews
func (h *ReviewHandler) ListMine(c *gin.Context) {
	data, err := h.reviewSvc.ListForActor(c.Request.Context(), actorId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Update 修改评价
// PATCH /reviews/:reviewId
// 请求体: request.UpdateReviewRequest
func (h *ReviewHandler) Update(c *gin.Context) {
	var req request.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.reviewSvc.UpdateReview(c.Request.Context(), actorId(c), c.Param("reviewId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Delete 删除评价
// DELETE /reviews/:reviewId
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviewSvc.DeleteReview(c.Request.Context(), actorId(c), c.Param("reviewId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListForUser 用户收到的评价
// GET /users/:userId/reviews
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	data, err := h.reviewSvc.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetReputation 用户信誉
// GET /users/:userId/reputation
func (h *ReviewHandler) GetReputation(c *gin.Context) {
	data, err := h.reviewSvc.GetReputation(c.Request.Context(), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ReconcileMine 重算自己的信誉
// POST /reviews/reconcile
func (h *ReviewHandler) ReconcileMine(c *gin.Context) {
	data, err := h.reviewSvc.Reconcile(c.Request.Context(), actorId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
