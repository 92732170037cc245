package repository

import (
	"context"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价 Repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// FindByUuid 按 UUID 查找评价
func (r *reviewRepository) FindByUuid(ctx context.Context, uuid string) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).First(&review, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询评价 uuid=%s", uuid)
	}
	return &review, nil
}

// ExistsByTriple 判断联合键是否已存在
func (r *reviewRepository) ExistsByTriple(ctx context.Context, sessionId, reviewerId, reviewedId string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("session_id = ? AND reviewer_id = ? AND reviewed_id = ?", sessionId, reviewerId, reviewedId).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询评价是否存在 session_id=%s", sessionId)
	}
	return count > 0, nil
}

// FindByReviewedId 查找用户收到的评价
func (r *reviewRepository) FindByReviewedId(ctx context.Context, reviewedId string) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Where("reviewed_id = ?", reviewedId).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询收到的评价 reviewed_id=%s", reviewedId)
	}
	return reviews, nil
}

// FindByParticipant 查找用户给出或收到的评价
func (r *reviewRepository) FindByParticipant(ctx context.Context, userId string) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Where("reviewer_id = ? OR reviewed_id = ?", userId, userId).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询相关评价 user=%s", userId)
	}
	return reviews, nil
}

// SummaryByReviewedId 统计评分总和与数量
// 平均值在应用侧计算，避免不同数据库 AVG 精度差异
func (r *reviewRepository) SummaryByReviewedId(ctx context.Context, reviewedId string) (RatingSummary, error) {
	var summary RatingSummary
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(SUM(rating), 0) AS total_rating, COUNT(*) AS review_count").
		Where("reviewed_id = ?", reviewedId).
		Scan(&summary).Error; err != nil {
		return RatingSummary{}, wrapDBErrorf(err, "统计评分 reviewed_id=%s", reviewedId)
	}
	return summary, nil
}

// Create 创建评价
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return wrapDBError(err, "创建评价")
	}
	return nil
}

// Save 保存评价
func (r *reviewRepository) Save(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Model(review).
		Select("rating", "comment", "updated_at").
		Updates(review).Error; err != nil {
		return wrapDBErrorf(err, "更新评价 uuid=%s", review.Uuid)
	}
	return nil
}

// Delete 删除评价
func (r *reviewRepository) Delete(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Delete(review).Error; err != nil {
		return wrapDBErrorf(err, "删除评价 uuid=%s", review.Uuid)
	}
	return nil
}
