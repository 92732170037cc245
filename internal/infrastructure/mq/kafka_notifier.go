package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"skillswap_server/internal/config"
	"skillswap_server/pkg/enum/notify_event_enum"
)

// messageWriter kafka.Writer 的最小子集，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier 将通知事件写入 Kafka
// 以 sessionId 作为消息 key，同一会话的事件落在同一分区保持顺序
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

// notifyBatchTimeout 单条事件即刻发送，不等待凑批
const notifyBatchTimeout = 10 * time.Millisecond

// NewKafkaNotifier 创建 Kafka 通知器
func NewKafkaNotifier(conf *config.KafkaConfig) *KafkaNotifier {
	return &KafkaNotifier{
		writer:  newKafkaWriter(conf),
		timeout: conf.Timeout * time.Second,
		now:     time.Now,
	}
}

// newKafkaWriter 同步 writer，BatchTimeout 默认 1s，会让每次 Notify 阻塞到凑满批次或超时
func newKafkaWriter(conf *config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.NotifyTopic,
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           notifyBatchTimeout,
		WriteTimeout:           conf.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
}

// Notify 发布通知事件
func (k *KafkaNotifier) Notify(ctx context.Context, kind notify_event_enum.Kind, sessionId string) {
	payload, err := json.Marshal(NotifyEvent{
		EventKind:  kind,
		SessionId:  sessionId,
		OccurredAt: k.now().UTC(),
	})
	if err != nil {
		zap.L().Error("marshal notify event failed", zap.Error(err))
		return
	}

	// 业务请求结束后 ctx 可能已取消，这里单独控制超时
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(sessionId),
		Value: payload,
	}); err != nil {
		zap.L().Error("publish notify event failed",
			zap.String("kind", string(kind)),
			zap.String("session_id", sessionId),
			zap.Error(err))
		return
	}
	zap.L().Debug("notify event published", zap.String("kind", string(kind)), zap.String("session_id", sessionId))
}

// Close 关闭 writer
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

// CreateTopic 创建通知主题（已存在时 Kafka 返回错误，记录后忽略）
func CreateTopic(conf *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions := conf.Partition
	if partitions <= 0 {
		partitions = 1
	}
	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.NotifyTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}); err != nil {
		zap.L().Warn("create kafka topic", zap.String("topic", conf.NotifyTopic), zap.Error(err))
	}
	return nil
}
