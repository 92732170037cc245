package respond

import "time"

// ReviewRespond 评价详情
// 使用位置:
//   - internal/service/reputation/service.go: CreateReview, UpdateReview, ListForUser, ListForActor
type ReviewRespond struct {
	ReviewId   string    `json:"review_id"`
	SessionId  string    `json:"session_id"`
	ReviewerId string    `json:"reviewer_id"`
	ReviewedId string    `json:"reviewed_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReputationRespond 用户信誉聚合值
// 使用位置:
//   - internal/service/reputation/service.go: GetReputation, Reconcile
type ReputationRespond struct {
	UserId        string  `json:"user_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}
