package repository

import (
	"context"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建用户档案 Repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUuid 按 UUID 查找档案
func (r *profileRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户档案 uuid=%s", uuid)
	}
	return &profile, nil
}

// FindByUuidForUpdate 按 UUID 加锁查找档案
func (r *profileRepository) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&profile, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "加锁查询用户档案 uuid=%s", uuid)
	}
	return &profile, nil
}

// FindAllUuids 列出全部档案 UUID
func (r *profileRepository) FindAllUuids(ctx context.Context) ([]string, error) {
	var uuids []string
	if err := r.db.WithContext(ctx).Model(&model.UserProfile{}).Order("id ASC").Pluck("uuid", &uuids).Error; err != nil {
		return nil, wrapDBError(err, "查询档案列表")
	}
	return uuids, nil
}

// Create 创建档案
func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return wrapDBError(err, "创建用户档案")
	}
	return nil
}

// UpdateReputation 更新信誉聚合字段
func (r *profileRepository) UpdateReputation(ctx context.Context, uuid string, averageRating float64, reviewCount int) error {
	res := r.db.WithContext(ctx).Model(&model.UserProfile{}).Where("uuid = ?", uuid).Updates(map[string]interface{}{
		"average_rating": averageRating,
		"review_count":   reviewCount,
	})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "更新用户信誉 uuid=%s", uuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "更新用户信誉 uuid=%s", uuid)
	}
	return nil
}
