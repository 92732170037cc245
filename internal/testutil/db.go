// Package testutil 提供测试用的内存数据库和种子数据
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"skillswap_server/internal/dao/mysql/repository"
	"skillswap_server/internal/model"
	"skillswap_server/pkg/enum/user_type_enum"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB 创建独立的内存 SQLite 数据库并完成迁移
// 单连接，事务内外不会互相加锁
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// NewTestRepos 创建基于内存数据库的 Repository 聚合
func NewTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewTestDB(t))
}

// SeedProfile 写入一个用户档案
func SeedProfile(t *testing.T, repos *repository.Repositories, id, userType string) *model.UserProfile {
	t.Helper()
	profile := &model.UserProfile{Uuid: id, Nickname: id, UserType: userType}
	if err := repos.Profile.Create(context.Background(), profile); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
	return profile
}

// SeedSkill 写入一个由 mentorId 提供的技能
func SeedSkill(t *testing.T, repos *repository.Repositories, id, mentorId string, durationMinutes int) *model.Skill {
	t.Helper()
	skill := &model.Skill{Uuid: id, MentorId: mentorId, Title: "skill " + id, DurationMinutes: durationMinutes}
	if err := repos.Skill.Create(context.Background(), skill); err != nil {
		t.Fatalf("seed skill %s: %v", id, err)
	}
	return skill
}

// SeedSession 直接写入一条指定状态的学习会话
func SeedSession(t *testing.T, repos *repository.Repositories, id string, skill *model.Skill, learnerId, status string, scheduledAt time.Time) *model.LearningSession {
	t.Helper()
	session := &model.LearningSession{
		Uuid:        id,
		SkillId:     skill.Uuid,
		LearnerId:   learnerId,
		MentorId:    skill.MentorId,
		ScheduledAt: scheduledAt,
		Status:      status,
	}
	if err := repos.Session.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session %s: %v", id, err)
	}
	return session
}

// SeedMarketplace 写入一名导师、一名学员、一名旁观者和一个 60 分钟的技能
func SeedMarketplace(t *testing.T, repos *repository.Repositories) (mentor, learner, outsider *model.UserProfile, skill *model.Skill) {
	t.Helper()
	mentor = SeedProfile(t, repos, "U_MENTOR", user_type_enum.MENTOR)
	learner = SeedProfile(t, repos, "U_LEARNER", user_type_enum.LEARNER)
	outsider = SeedProfile(t, repos, "U_OUTSIDER", user_type_enum.LEARNER)
	skill = SeedSkill(t, repos, "K_GO", mentor.Uuid, 60)
	return mentor, learner, outsider, skill
}
