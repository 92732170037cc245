// Package reminder 实现会话提醒扫描任务
// 周期性查找即将开始的已批准会话并触发 SessionReminder 通知
// 至少一次语义：相邻两次扫描的窗口有重叠，重复通知由下游容忍
package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"skillswap_server/internal/config"
	"skillswap_server/internal/dao/mysql/repository"
	myredis "skillswap_server/internal/dao/redis"
	"skillswap_server/internal/infrastructure/mq"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/enum/notify_event_enum"
	"skillswap_server/pkg/enum/session_status_enum"
)

// Reconciler 信誉对账
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// Options 扫描参数
type Options struct {
	Interval          time.Duration // 扫描间隔
	Lookahead         time.Duration // 提前多久提醒
	Window            time.Duration // 匹配窗口半宽
	LockTTL           time.Duration // 分布式锁有效期
	ReconcileInterval time.Duration // 信誉对账间隔，<=0 关闭
}

// OptionsFromConfig 将配置中的数值换算为时长
func OptionsFromConfig(conf *config.ReminderConfig) Options {
	return Options{
		Interval:          conf.Interval * time.Minute,
		Lookahead:         conf.Lookahead * time.Minute,
		Window:            conf.Window * time.Minute,
		LockTTL:           conf.LockTTL * time.Second,
		ReconcileInterval: conf.ReconcileInterval * time.Minute,
	}
}

// Scanner 提醒扫描器
type Scanner struct {
	sessions   repository.LearningSessionRepository
	notifier   mq.Notifier
	locker     myredis.Locker
	reconciler Reconciler
	opts       Options
	now        func() time.Time
}

// NewScanner 创建扫描器，reconciler 可以为 nil
func NewScanner(sessions repository.LearningSessionRepository, notifier mq.Notifier, locker myredis.Locker, reconciler Reconciler, opts Options) *Scanner {
	return &Scanner{
		sessions:   sessions,
		notifier:   notifier,
		locker:     locker,
		reconciler: reconciler,
		opts:       opts,
		now:        time.Now,
	}
}

// halfWindow 窗口半宽至少覆盖半个扫描间隔，保证相邻窗口无缝衔接
func (s *Scanner) halfWindow() time.Duration {
	half := s.opts.Window
	if 2*half < s.opts.Interval {
		half = (s.opts.Interval + 1) / 2
	}
	return half
}

// ScanOnce 执行一次扫描，返回触发的通知数
// 拿不到锁说明其他实例正在扫描，直接返回 0
func (s *Scanner) ScanOnce(ctx context.Context) (int, error) {
	token, ok, err := s.locker.TryLock(ctx, constants.REMINDER_LOCK_KEY, s.opts.LockTTL)
	if err != nil {
		return 0, err
	}
	if !ok {
		zap.L().Debug("reminder scan skipped, lock held by another instance")
		return 0, nil
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), constants.REMINDER_LOCK_KEY, token); err != nil {
			zap.L().Warn("release reminder lock failed", zap.Error(err))
		}
	}()

	target := s.now().UTC().Add(s.opts.Lookahead)
	half := s.halfWindow()
	sessions, err := s.sessions.FindByStatusScheduledBetween(ctx, session_status_enum.APPROVED, target.Add(-half), target.Add(half))
	if err != nil {
		return 0, err
	}

	for i := range sessions {
		s.notifier.Notify(ctx, notify_event_enum.SessionReminder, sessions[i].Uuid)
	}
	if len(sessions) > 0 {
		zap.L().Info("session reminders fired", zap.Int("count", len(sessions)), zap.Time("target", target))
	}
	return len(sessions), nil
}

// Run 按间隔循环扫描，直到 ctx 取消
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	var reconcileC <-chan time.Time
	if s.reconciler != nil && s.opts.ReconcileInterval > 0 {
		reconcileTicker := time.NewTicker(s.opts.ReconcileInterval)
		defer reconcileTicker.Stop()
		reconcileC = reconcileTicker.C
	}

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("reminder scanner stopped")
			return ctx.Err()
		case <-ticker.C:
			s.scan(ctx)
		case <-reconcileC:
			if _, err := s.reconciler.ReconcileAll(ctx); err != nil {
				zap.L().Error("reputation reconcile failed", zap.Error(err))
			}
		}
	}
}

func (s *Scanner) scan(ctx context.Context) {
	if _, err := s.ScanOnce(ctx); err != nil {
		zap.L().Error("reminder scan failed", zap.Error(err))
	}
}
