// Package booking 实现学习会话的预约状态机
// 状态流转：PENDING -> APPROVED | REJECTED；APPROVED -> PENDING（改期）| COMPLETED | CANCELLED
// 每次流转都在事务内对会话行加锁后完成检查与写入
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"skillswap_server/internal/dao/mysql/repository"
	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/dto/respond"
	"skillswap_server/internal/infrastructure/mq"
	"skillswap_server/internal/model"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/enum/notify_event_enum"
	"skillswap_server/pkg/enum/session_status_enum"
	"skillswap_server/pkg/errorx"
	"skillswap_server/pkg/util/random"
	"skillswap_server/pkg/util/snowflake"
)

// 参与角色过滤
const (
	RoleLearner = "learner"
	RoleMentor  = "mentor"
)

// Broadcaster 向会话的在线参与者推送消息
type Broadcaster interface {
	Broadcast(sessionId string, payload []byte)
}

// bookingService 会话状态机实现
type bookingService struct {
	repos       *repository.Repositories
	notifier    mq.Notifier
	broadcaster Broadcaster
}

// NewBookingService 构造函数，注入所有依赖
// broadcaster 可以为 nil（如提醒任务进程中不需要推送）
func NewBookingService(repos *repository.Repositories, notifier mq.Notifier, broadcaster Broadcaster) *bookingService {
	return &bookingService{
		repos:       repos,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

// Create 学员预约技能，生成 PENDING 会话
// 导师取自技能所属导师，学员不能指定
func (s *bookingService) Create(ctx context.Context, learnerId string, req request.CreateLearningSessionRequest) (*respond.LearningSessionRespond, error) {
	if req.ScheduledAt.IsZero() {
		return nil, errorx.New(errorx.CodeInvalidParam, "预约时间不能为空")
	}

	skill, err := s.repos.Skill.FindByUuid(ctx, req.SkillId)
	if err != nil {
		if errorx.IsNotFound(err) {
			zap.L().Warn("预约的技能不存在",
				zap.String("learner_id", learnerId),
				zap.String("skill_id", req.SkillId),
			)
			return nil, errorx.New(errorx.CodeInvalidParam, "技能不存在")
		}
		zap.L().Error("查询技能失败", zap.String("skill_id", req.SkillId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if skill.MentorId == learnerId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能预约自己的技能")
	}

	session := model.LearningSession{
		Uuid:           random.NewUuid('L'),
		SkillId:        skill.Uuid,
		LearnerId:      learnerId,
		MentorId:       skill.MentorId,
		ScheduledAt:    req.ScheduledAt.UTC(),
		Status:         session_status_enum.PENDING,
		LearnerMessage: req.LearnerMessage,
	}
	if err := s.repos.Session.Create(ctx, &session); err != nil {
		zap.L().Error("创建学习会话失败",
			zap.String("learner_id", learnerId),
			zap.String("skill_id", skill.Uuid),
			zap.Error(err),
		)
		return nil, errorx.ErrServerBusy
	}

	zap.L().Info("学习会话创建成功",
		zap.String("session_id", session.Uuid),
		zap.String("learner_id", learnerId),
		zap.String("mentor_id", session.MentorId),
	)
	return toSessionRespond(&session), nil
}

// Approve 导师批准会话，提交后触发 BookingApproved 通知
// 不校验当前状态，重复批准会再次触发通知
func (s *bookingService) Approve(ctx context.Context, actorId, sessionId string, req request.MentorDecisionRequest) (*respond.LearningSessionRespond, error) {
	session, err := s.transition(ctx, "approve", actorId, sessionId, isMentor, func(session *model.LearningSession) error {
		session.Status = session_status_enum.APPROVED
		session.MentorResponse = req.MentorResponse
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 通知失败只记录日志，不回滚已提交的状态
	s.notifier.Notify(ctx, notify_event_enum.BookingApproved, session.Uuid)
	return toSessionRespond(session), nil
}

// Reject 导师拒绝会话
func (s *bookingService) Reject(ctx context.Context, actorId, sessionId string, req request.MentorDecisionRequest) (*respond.LearningSessionRespond, error) {
	session, err := s.transition(ctx, "reject", actorId, sessionId, isMentor, func(session *model.LearningSession) error {
		session.Status = session_status_enum.REJECTED
		session.MentorResponse = req.MentorResponse
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSessionRespond(session), nil
}

// Reschedule 参与者修改预约时间
// 已批准的会话改期后回到 PENDING，需要导师重新批准
func (s *bookingService) Reschedule(ctx context.Context, actorId, sessionId string, req request.RescheduleSessionRequest) (*respond.LearningSessionRespond, error) {
	session, err := s.transition(ctx, "reschedule", actorId, sessionId, isParticipant, func(session *model.LearningSession) error {
		if req.ScheduledAt.IsZero() {
			return errorx.New(errorx.CodeInvalidParam, "新的预约时间不能为空")
		}
		session.ScheduledAt = req.ScheduledAt.UTC()
		if session.Status == session_status_enum.APPROVED {
			session.Status = session_status_enum.PENDING
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSessionRespond(session), nil
}

// Complete 参与者标记会话完成
// 任何状态都可以进入 COMPLETED
func (s *bookingService) Complete(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error) {
	session, err := s.transition(ctx, "complete", actorId, sessionId, isParticipant, func(session *model.LearningSession) error {
		session.Status = session_status_enum.COMPLETED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSessionRespond(session), nil
}

// Cancel 参与者取消会话
// 只有 PENDING、APPROVED 可以取消，已完成的会话可能已有评价
func (s *bookingService) Cancel(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error) {
	session, err := s.transition(ctx, "cancel", actorId, sessionId, isParticipant, func(session *model.LearningSession) error {
		if session.Status != session_status_enum.PENDING && session.Status != session_status_enum.APPROVED {
			return errorx.Newf(errorx.CodeInvalidParam, "会话状态为 %s，不能取消", session.Status)
		}
		session.Status = session_status_enum.CANCELLED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSessionRespond(session), nil
}

// Get 参与者查看会话详情
func (s *bookingService) Get(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error) {
	session, err := s.loadForParticipant(ctx, "get", actorId, sessionId)
	if err != nil {
		return nil, err
	}
	return toSessionRespond(session), nil
}

// List 列出用户参与的会话，按创建时间倒序
// role 为 learner / mentor 时只返回对应身份的会话，为空返回全部
func (s *bookingService) List(ctx context.Context, actorId, role string) ([]respond.LearningSessionRespond, error) {
	switch role {
	case RoleLearner, RoleMentor, "":
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "不支持的角色 %s", role)
	}

	sessions, err := s.repos.Session.FindByParticipant(ctx, actorId, role)
	if err != nil {
		zap.L().Error("查询会话列表失败",
			zap.String("user_id", actorId),
			zap.String("role", role),
			zap.Error(err),
		)
		return nil, errorx.ErrServerBusy
	}

	rsp := make([]respond.LearningSessionRespond, 0, len(sessions))
	for i := range sessions {
		rsp = append(rsp, *toSessionRespond(&sessions[i]))
	}
	return rsp, nil
}

// PostMessage 参与者在会话内发送消息
// 写库成功后推送给在线参与者
func (s *bookingService) PostMessage(ctx context.Context, actorId, sessionId string, req request.PostSessionMessageRequest) (*respond.SessionMessageRespond, error) {
	session, err := s.loadForParticipant(ctx, "post_message", actorId, sessionId)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if utf8.RuneCountInString(content) > constants.MESSAGE_MAX_LENGTH {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "消息内容不能超过 %d 字", constants.MESSAGE_MAX_LENGTH)
	}

	message := model.SessionMessage{
		Uuid:      snowflake.GenerateID(),
		SessionId: session.Uuid,
		SenderId:  actorId,
		Content:   content,
	}
	if err := s.repos.Message.Create(ctx, &message); err != nil {
		zap.L().Error("保存会话消息失败",
			zap.String("session_id", session.Uuid),
			zap.String("sender_id", actorId),
			zap.Error(err),
		)
		return nil, errorx.ErrServerBusy
	}

	rsp := toMessageRespond(&message)
	s.broadcast(rsp)
	return rsp, nil
}

// ListMessages 参与者查看会话消息，按发送时间正序
func (s *bookingService) ListMessages(ctx context.Context, actorId, sessionId string) ([]respond.SessionMessageRespond, error) {
	session, err := s.loadForParticipant(ctx, "list_messages", actorId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := s.repos.Message.FindBySessionId(ctx, session.Uuid)
	if err != nil {
		zap.L().Error("查询会话消息失败", zap.String("session_id", session.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := make([]respond.SessionMessageRespond, 0, len(messages))
	for i := range messages {
		rsp = append(rsp, *toMessageRespond(&messages[i]))
	}
	return rsp, nil
}

// ==================== 内部辅助 ====================

// transition 在事务内加锁读取会话、校验操作人并写回
// apply 返回的错误会导致事务回滚并原样返回给调用方
func (s *bookingService) transition(
	ctx context.Context,
	op, actorId, sessionId string,
	allowed func(session *model.LearningSession, actorId string) bool,
	apply func(session *model.LearningSession) error,
) (*model.LearningSession, error) {
	var updated *model.LearningSession
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		session, err := tx.Session.FindByUuidForUpdate(ctx, sessionId)
		if err != nil {
			return mapLoadError(op, sessionId, err)
		}
		if !allowed(session, actorId) {
			zap.L().Warn("无权操作学习会话",
				zap.String("op", op),
				zap.String("session_id", sessionId),
				zap.String("actor_id", actorId),
			)
			return errorx.New(errorx.CodeForbidden, "无权操作该会话")
		}

		prevStatus := session.Status
		if err := apply(session); err != nil {
			return err
		}
		if err := tx.Session.Save(ctx, session); err != nil {
			zap.L().Error("保存学习会话失败",
				zap.String("op", op),
				zap.String("session_id", sessionId),
				zap.Error(err),
			)
			return errorx.ErrServerBusy
		}

		zap.L().Info("学习会话状态变更",
			zap.String("op", op),
			zap.String("session_id", sessionId),
			zap.String("actor_id", actorId),
			zap.String("from", prevStatus),
			zap.String("to", session.Status),
		)
		updated = session
		return nil
	})
	if err != nil {
		return nil, businessError(op, sessionId, err)
	}
	return updated, nil
}

// loadForParticipant 读取会话并校验操作人是参与者
func (s *bookingService) loadForParticipant(ctx context.Context, op, actorId, sessionId string) (*model.LearningSession, error) {
	session, err := s.repos.Session.FindByUuid(ctx, sessionId)
	if err != nil {
		return nil, mapLoadError(op, sessionId, err)
	}
	if !session.IsParticipant(actorId) {
		zap.L().Warn("非参与者访问学习会话",
			zap.String("op", op),
			zap.String("session_id", sessionId),
			zap.String("actor_id", actorId),
		)
		return nil, errorx.New(errorx.CodeForbidden, "无权访问该会话")
	}
	return session, nil
}

// broadcast 推送新消息给在线参与者
func (s *bookingService) broadcast(msg *respond.SessionMessageRespond) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		zap.L().Error("序列化会话消息失败", zap.String("message_id", msg.MessageId), zap.Error(err))
		return
	}
	s.broadcaster.Broadcast(msg.SessionId, payload)
}

func isMentor(session *model.LearningSession, actorId string) bool {
	return actorId != "" && actorId == session.MentorId
}

func isParticipant(session *model.LearningSession, actorId string) bool {
	return session.IsParticipant(actorId)
}

// mapLoadError 将查询会话的错误转换为业务错误
func mapLoadError(op, sessionId string, err error) error {
	if errorx.IsNotFound(err) {
		return errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", sessionId)
	}
	zap.L().Error("查询学习会话失败",
		zap.String("op", op),
		zap.String("session_id", sessionId),
		zap.Error(err),
	)
	return errorx.ErrServerBusy
}

// businessError 事务返回的业务错误原样透出，其余（如提交失败）统一为服务繁忙
func businessError(op, sessionId string, err error) error {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr
	}
	zap.L().Error("学习会话事务失败",
		zap.String("op", op),
		zap.String("session_id", sessionId),
		zap.Error(err),
	)
	return errorx.ErrServerBusy
}

func toSessionRespond(session *model.LearningSession) *respond.LearningSessionRespond {
	return &respond.LearningSessionRespond{
		SessionId:      session.Uuid,
		SkillId:        session.SkillId,
		LearnerId:      session.LearnerId,
		MentorId:       session.MentorId,
		ScheduledAt:    session.ScheduledAt,
		Status:         session.Status,
		LearnerMessage: session.LearnerMessage,
		MentorResponse: session.MentorResponse,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

func toMessageRespond(message *model.SessionMessage) *respond.SessionMessageRespond {
	return &respond.SessionMessageRespond{
		MessageId: strconv.FormatInt(message.Uuid, 10),
		SessionId: message.SessionId,
		SenderId:  message.SenderId,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}
