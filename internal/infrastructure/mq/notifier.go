// Package mq 负责会话通知事件的投递
// 核心只发布 "发生了什么"，邮件/短信等外发由下游消费者完成
package mq

import (
	"context"
	"time"

	"go.uber.org/zap"

	"skillswap_server/internal/config"
	"skillswap_server/pkg/enum/notify_event_enum"
)

// Notifier 通知触发器
// Notify 不返回错误：投递失败只记录日志，不影响已提交的业务状态
type Notifier interface {
	Notify(ctx context.Context, kind notify_event_enum.Kind, sessionId string)
	Close() error
}

// NotifyEvent Kafka 消息体
type NotifyEvent struct {
	EventKind  notify_event_enum.Kind `json:"eventKind"`
	SessionId  string                 `json:"sessionId"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// LogNotifier channel 模式下的通知实现，仅记录日志
type LogNotifier struct{}

// Notify 记录通知事件
func (LogNotifier) Notify(_ context.Context, kind notify_event_enum.Kind, sessionId string) {
	zap.L().Info("session notify", zap.String("kind", string(kind)), zap.String("session_id", sessionId))
}

// Close 无资源需要释放
func (LogNotifier) Close() error { return nil }

// NewNotifier 根据 messageMode 选择通知实现
func NewNotifier(conf *config.KafkaConfig) Notifier {
	if conf.MessageMode == "kafka" {
		return NewKafkaNotifier(conf)
	}
	return LogNotifier{}
}
