// Package reputation 实现评价与信誉聚合
// 用户档案上的 average_rating / review_count 是 review 表的派生值
// 任何改变评分的写操作都在同一事务内重算，并锁住被评价人档案行
package reputation

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillswap_server/internal/dao/mysql/repository"
	myredis "skillswap_server/internal/dao/redis"
	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/dto/respond"
	"skillswap_server/internal/model"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/enum/session_status_enum"
	"skillswap_server/pkg/errorx"
)

// reputationService 评价业务逻辑实现
type reputationService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewReputationService 构造函数，注入所有依赖
func NewReputationService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *reputationService {
	return &reputationService{
		repos: repos,
		cache: cacheService,
	}
}

// CreateReview 参与者评价会话的另一方
// 校验顺序：评分范围 -> 会话存在 -> 会话已完成 -> 被评价人 -> 评价人身份 -> 唯一性
func (s *reputationService) CreateReview(ctx context.Context, reviewerId string, req request.CreateReviewRequest) (*respond.ReviewRespond, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	session, err := s.repos.Session.FindByUuid(ctx, req.SessionId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.SessionId)
		}
		zap.L().Error("查询学习会话失败", zap.String("session_id", req.SessionId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if session.Status != session_status_enum.COMPLETED {
		return nil, errorx.New(errorx.CodeInvalidParam, "只能评价已完成的会话")
	}

	reviewedId, err := resolveReviewed(session, reviewerId, req.ReviewedId)
	if err != nil {
		return nil, err
	}

	review := model.Review{
		Uuid:       uuid.NewString(),
		SessionId:  session.Uuid,
		ReviewerId: reviewerId,
		ReviewedId: reviewedId,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		// 锁顺序：会话 -> 被评价人档案，与状态流转共用会话行锁
		locked, err := tx.Session.FindByUuidForUpdate(ctx, review.SessionId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", review.SessionId)
			}
			zap.L().Error("锁定学习会话失败", zap.String("session_id", review.SessionId), zap.Error(err))
			return errorx.ErrServerBusy
		}
		if locked.Status != session_status_enum.COMPLETED {
			return errorx.New(errorx.CodeInvalidParam, "只能评价已完成的会话")
		}

		// 后续的统计读取都能看到已提交的评价
		if err := lockProfile(ctx, tx, reviewedId); err != nil {
			return err
		}

		exists, err := tx.Review.ExistsByTriple(ctx, review.SessionId, review.ReviewerId, review.ReviewedId)
		if err != nil {
			zap.L().Error("查询评价是否存在失败", zap.String("session_id", review.SessionId), zap.Error(err))
			return errorx.ErrServerBusy
		}
		if exists {
			return errDuplicateReview
		}

		if err := tx.Review.Create(ctx, &review); err != nil {
			// 并发下唯一索引兜底
			if errorx.GetCode(err) == errorx.CodeConflict {
				return errDuplicateReview
			}
			zap.L().Error("创建评价失败", zap.String("session_id", review.SessionId), zap.Error(err))
			return errorx.ErrServerBusy
		}

		_, err = recompute(ctx, tx, reviewedId)
		return err
	})
	if err != nil {
		return nil, businessError("create_review", err)
	}

	s.invalidateReviewList(reviewedId)
	zap.L().Info("评价创建成功",
		zap.String("review_id", review.Uuid),
		zap.String("session_id", review.SessionId),
		zap.String("reviewer_id", reviewerId),
		zap.String("reviewed_id", reviewedId),
		zap.Int("rating", review.Rating),
	)
	return toReviewRespond(&review), nil
}

// UpdateReview 评价人修改自己的评价，评分变化时重算被评价人信誉
func (s *reputationService) UpdateReview(ctx context.Context, actorId, reviewId string, req request.UpdateReviewRequest) (*respond.ReviewRespond, error) {
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
	}

	current, err := s.loadOwnReview(ctx, "update_review", actorId, reviewId)
	if err != nil {
		return nil, err
	}

	var updated *model.Review
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := lockProfile(ctx, tx, current.ReviewedId); err != nil {
			return err
		}
		review, err := tx.Review.FindByUuid(ctx, reviewId)
		if err != nil {
			return mapReviewLoadError(reviewId, err)
		}

		ratingChanged := false
		if req.Rating != nil && *req.Rating != review.Rating {
			review.Rating = *req.Rating
			ratingChanged = true
		}
		if req.Comment != nil {
			review.Comment = *req.Comment
		}
		if err := tx.Review.Save(ctx, review); err != nil {
			zap.L().Error("更新评价失败", zap.String("review_id", reviewId), zap.Error(err))
			return errorx.ErrServerBusy
		}
		if ratingChanged {
			if _, err := recompute(ctx, tx, review.ReviewedId); err != nil {
				return err
			}
		}
		updated = review
		return nil
	})
	if err != nil {
		return nil, businessError("update_review", err)
	}

	s.invalidateReviewList(updated.ReviewedId)
	return toReviewRespond(updated), nil
}

// DeleteReview 评价人删除自己的评价并重算被评价人信誉
func (s *reputationService) DeleteReview(ctx context.Context, actorId, reviewId string) error {
	current, err := s.loadOwnReview(ctx, "delete_review", actorId, reviewId)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := lockProfile(ctx, tx, current.ReviewedId); err != nil {
			return err
		}
		review, err := tx.Review.FindByUuid(ctx, reviewId)
		if err != nil {
			return mapReviewLoadError(reviewId, err)
		}
		if err := tx.Review.Delete(ctx, review); err != nil {
			zap.L().Error("删除评价失败", zap.String("review_id", reviewId), zap.Error(err))
			return errorx.ErrServerBusy
		}
		_, err = recompute(ctx, tx, review.ReviewedId)
		return err
	})
	if err != nil {
		return businessError("delete_review", err)
	}

	s.invalidateReviewList(current.ReviewedId)
	zap.L().Info("评价已删除", zap.String("review_id", reviewId), zap.String("reviewer_id", actorId))
	return nil
}

// ListForUser 用户收到的评价，按创建时间倒序
// 优先读取 Redis 缓存，缓存异常时回落到数据库
func (s *reputationService) ListForUser(ctx context.Context, userId string) ([]respond.ReviewRespond, error) {
	cacheKey := constants.REVIEW_LIST_PREFIX + userId
	cached, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		zap.L().Warn("读取评价列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
	} else if cached != "" {
		var rsp []respond.ReviewRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return rsp, nil
		}
		zap.L().Warn("评价列表缓存格式错误", zap.String("key", cacheKey))
	}

	reviews, err := s.repos.Review.FindByReviewedId(ctx, userId)
	if err != nil {
		zap.L().Error("查询收到的评价失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := toReviewRespondList(reviews)

	if data, err := json.Marshal(rsp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), constants.REVIEW_LIST_TTL); err != nil {
			zap.L().Warn("写入评价列表缓存失败", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return rsp, nil
}

// ListForActor 用户给出或收到的全部评价，按创建时间倒序
func (s *reputationService) ListForActor(ctx context.Context, actorId string) ([]respond.ReviewRespond, error) {
	reviews, err := s.repos.Review.FindByParticipant(ctx, actorId)
	if err != nil {
		zap.L().Error("查询相关评价失败", zap.String("user_id", actorId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toReviewRespondList(reviews), nil
}

// GetReputation 查询用户当前的信誉聚合值
func (s *reputationService) GetReputation(ctx context.Context, userId string) (*respond.ReputationRespond, error) {
	profile, err := s.repos.Profile.FindByUuid(ctx, userId)
	if err != nil {
		return nil, mapProfileLoadError(userId, err)
	}
	return &respond.ReputationRespond{
		UserId:        profile.Uuid,
		AverageRating: profile.AverageRating,
		ReviewCount:   profile.ReviewCount,
	}, nil
}

// Reconcile 从 review 表全量重算用户信誉
func (s *reputationService) Reconcile(ctx context.Context, userId string) (*respond.ReputationRespond, error) {
	rsp, _, err := s.reconcile(ctx, userId)
	return rsp, err
}

// ReconcileAll 重算所有用户的信誉，返回发生漂移并被修正的用户数
// 单个用户失败不中断整体对账
func (s *reputationService) ReconcileAll(ctx context.Context) (int, error) {
	userIds, err := s.repos.Profile.FindAllUuids(ctx)
	if err != nil {
		zap.L().Error("查询档案列表失败", zap.Error(err))
		return 0, errorx.ErrServerBusy
	}

	fixed := 0
	for _, userId := range userIds {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}
		_, drifted, err := s.reconcile(ctx, userId)
		if err != nil {
			zap.L().Error("信誉对账失败", zap.String("user_id", userId), zap.Error(err))
			continue
		}
		if drifted {
			fixed++
		}
	}
	// 出现漂移说明 review 表被绕过服务修改过，缓存的评价列表同样不可信
	if fixed > 0 {
		if err := s.cache.DeleteByPattern(ctx, constants.REVIEW_LIST_PREFIX+"*"); err != nil {
			zap.L().Warn("清理评价列表缓存失败", zap.Error(err))
		}
	}
	zap.L().Info("信誉对账完成", zap.Int("profiles", len(userIds)), zap.Int("fixed", fixed))
	return fixed, nil
}

func (s *reputationService) reconcile(ctx context.Context, userId string) (*respond.ReputationRespond, bool, error) {
	var (
		rsp     *respond.ReputationRespond
		drifted bool
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		profile, err := tx.Profile.FindByUuidForUpdate(ctx, userId)
		if err != nil {
			return mapProfileLoadError(userId, err)
		}
		summary, err := recompute(ctx, tx, userId)
		if err != nil {
			return err
		}
		drifted = profile.AverageRating != summary.Average() || int64(profile.ReviewCount) != summary.Count
		if drifted {
			zap.L().Warn("信誉聚合值与评价不一致，已修正",
				zap.String("user_id", userId),
				zap.Float64("old_average", profile.AverageRating),
				zap.Int("old_count", profile.ReviewCount),
				zap.Float64("average", summary.Average()),
				zap.Int64("count", summary.Count),
			)
		}
		rsp = &respond.ReputationRespond{
			UserId:        userId,
			AverageRating: summary.Average(),
			ReviewCount:   int(summary.Count),
		}
		return nil
	})
	if err != nil {
		return nil, false, businessError("reconcile", err)
	}
	return rsp, drifted, nil
}

// ==================== 内部辅助 ====================

var errDuplicateReview = errorx.New(errorx.CodeConflict, "已评价过该用户")

// loadOwnReview 读取评价并校验操作人是评价人
func (s *reputationService) loadOwnReview(ctx context.Context, op, actorId, reviewId string) (*model.Review, error) {
	review, err := s.repos.Review.FindByUuid(ctx, reviewId)
	if err != nil {
		return nil, mapReviewLoadError(reviewId, err)
	}
	if review.ReviewerId != actorId {
		zap.L().Warn("非评价人修改评价",
			zap.String("op", op),
			zap.String("review_id", reviewId),
			zap.String("actor_id", actorId),
		)
		return nil, errorx.New(errorx.CodeForbidden, "只能修改自己的评价")
	}
	return review, nil
}

// invalidateReviewList 异步删除用户收到的评价列表缓存
func (s *reputationService) invalidateReviewList(userId string) {
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REVIEW_LIST_PREFIX+userId); err != nil {
			zap.L().Error("清除评价列表缓存失败", zap.String("user_id", userId), zap.Error(err))
		}
	})
}

// resolveReviewed 确定被评价人
// 显式指定时必须是会话参与者，否则取评价人的另一方
func resolveReviewed(session *model.LearningSession, reviewerId, reviewedId string) (string, error) {
	if reviewedId != "" {
		if !session.IsParticipant(reviewedId) {
			return "", errorx.New(errorx.CodeInvalidParam, "被评价人不是会话参与者")
		}
	} else {
		reviewedId = session.Counterpart(reviewerId)
	}

	if !session.IsParticipant(reviewerId) {
		return "", errorx.New(errorx.CodeInvalidParam, "只有会话参与者可以评价")
	}
	if reviewedId == reviewerId {
		return "", errorx.New(errorx.CodeInvalidParam, "不能评价自己")
	}
	return reviewedId, nil
}

// lockProfile 对被评价人档案加行锁
func lockProfile(ctx context.Context, tx *repository.Repositories, userId string) error {
	if _, err := tx.Profile.FindByUuidForUpdate(ctx, userId); err != nil {
		return mapProfileLoadError(userId, err)
	}
	return nil
}

// recompute 按 review 表重算并写回用户信誉
// 调用方必须已持有该用户档案的行锁
func recompute(ctx context.Context, tx *repository.Repositories, userId string) (repository.RatingSummary, error) {
	summary, err := tx.Review.SummaryByReviewedId(ctx, userId)
	if err != nil {
		zap.L().Error("统计评分失败", zap.String("user_id", userId), zap.Error(err))
		return repository.RatingSummary{}, errorx.ErrServerBusy
	}
	if err := tx.Profile.UpdateReputation(ctx, userId, summary.Average(), int(summary.Count)); err != nil {
		zap.L().Error("更新用户信誉失败", zap.String("user_id", userId), zap.Error(err))
		return repository.RatingSummary{}, errorx.ErrServerBusy
	}
	return summary, nil
}

func validateRating(rating int) error {
	if rating < constants.REVIEW_MIN_RATING || rating > constants.REVIEW_MAX_RATING {
		return errorx.Newf(errorx.CodeInvalidParam, "评分必须在 %d 到 %d 之间",
			constants.REVIEW_MIN_RATING, constants.REVIEW_MAX_RATING)
	}
	return nil
}

func mapReviewLoadError(reviewId string, err error) error {
	if errorx.IsNotFound(err) {
		return errorx.Newf(errorx.CodeNotFound, "评价 %s 不存在", reviewId)
	}
	zap.L().Error("查询评价失败", zap.String("review_id", reviewId), zap.Error(err))
	return errorx.ErrServerBusy
}

func mapProfileLoadError(userId string, err error) error {
	if errorx.IsNotFound(err) {
		return errorx.Newf(errorx.CodeNotFound, "用户 %s 不存在", userId)
	}
	zap.L().Error("查询用户档案失败", zap.String("user_id", userId), zap.Error(err))
	return errorx.ErrServerBusy
}

// businessError 事务返回的业务错误原样透出，其余统一为服务繁忙
func businessError(op string, err error) error {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr
	}
	zap.L().Error("评价事务失败", zap.String("op", op), zap.Error(err))
	return errorx.ErrServerBusy
}

func toReviewRespond(review *model.Review) *respond.ReviewRespond {
	return &respond.ReviewRespond{
		ReviewId:   review.Uuid,
		SessionId:  review.SessionId,
		ReviewerId: review.ReviewerId,
		ReviewedId: review.ReviewedId,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}

func toReviewRespondList(reviews []model.Review) []respond.ReviewRespond {
	rsp := make([]respond.ReviewRespond, 0, len(reviews))
	for i := range reviews {
		rsp = append(rsp, *toReviewRespond(&reviews[i]))
	}
	return rsp
}
