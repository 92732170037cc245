package repository

import (
	"context"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository 创建技能 Repository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

// FindByUuid 按 UUID 查找技能
func (r *skillRepository) FindByUuid(ctx context.Context, uuid string) (*model.Skill, error) {
	var skill model.Skill
	if err := r.db.WithContext(ctx).First(&skill, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询技能 uuid=%s", uuid)
	}
	return &skill, nil
}

// Create 创建技能
func (r *skillRepository) Create(ctx context.Context, skill *model.Skill) error {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return wrapDBError(err, "创建技能")
	}
	return nil
}
