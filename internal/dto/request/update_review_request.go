package request

// UpdateReviewRequest 修改评价请求，字段为空表示不修改
// 使用位置:
//   - internal/handler/review_handler.go: ReviewHandler.Update
//   - internal/service/reputation/service.go: UpdateReview
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}
