package request

// CreateReviewRequest 创建评价请求
// ReviewedId 为空时自动推断为会话的另一方
// 使用位置:
//   - internal/handler/review_handler.go: ReviewHandler.Create
//   - internal/service/reputation/service.go: CreateReview
type CreateReviewRequest struct {
	SessionId  string `json:"session_id" binding:"required"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment" binding:"max=2000"`
	ReviewedId string `json:"reviewed_id"`
}
