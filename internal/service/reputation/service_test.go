package reputation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap_server/internal/dao/mysql/repository"
	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/model"
	"skillswap_server/internal/testutil"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/enum/session_status_enum"
	"skillswap_server/pkg/enum/user_type_enum"
	"skillswap_server/pkg/errorx"
)

type fixture struct {
	svc      *reputationService
	repos    *repository.Repositories
	cache    *testutil.MemoryCache
	mentor   *model.UserProfile
	learner  *model.UserProfile
	outsider *model.UserProfile
	skill    *model.Skill
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := testutil.NewTestRepos(t)
	mentor, learner, outsider, skill := testutil.SeedMarketplace(t, repos)
	cache := testutil.NewMemoryCache()
	return &fixture{
		svc:      NewReputationService(repos, cache),
		repos:    repos,
		cache:    cache,
		mentor:   mentor,
		learner:  learner,
		outsider: outsider,
		skill:    skill,
	}
}

func (f *fixture) session(t *testing.T, id, status string) *model.LearningSession {
	t.Helper()
	return testutil.SeedSession(t, f.repos, id, f.skill, f.learner.Uuid, status, time.Now())
}

func (f *fixture) profile(t *testing.T, userId string) *model.UserProfile {
	t.Helper()
	profile, err := f.repos.Profile.FindByUuid(context.Background(), userId)
	require.NoError(t, err)
	return profile
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errorx.GetCode(err), err.Error())
}

func TestCreateReview_InfersCounterpart(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	rsp, err := f.svc.CreateReview(context.Background(), f.learner.Uuid, request.CreateReviewRequest{
		SessionId: s.Uuid,
		Rating:    5,
		Comment:   "great",
	})
	require.NoError(t, err)
	assert.Equal(t, f.mentor.Uuid, rsp.ReviewedId)
	assert.Equal(t, f.learner.Uuid, rsp.ReviewerId)
	assert.NotEmpty(t, rsp.ReviewId)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 5.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)
}

func TestCreateReview_RequiresCompleted(t *testing.T) {
	for _, status := range []string{
		session_status_enum.PENDING,
		session_status_enum.APPROVED,
		session_status_enum.REJECTED,
		session_status_enum.CANCELLED,
	} {
		t.Run(status, func(t *testing.T) {
			f := newFixture(t)
			s := f.session(t, "L_"+status, status)

			_, err := f.svc.CreateReview(context.Background(), f.learner.Uuid, request.CreateReviewRequest{
				SessionId: s.Uuid,
				Rating:    4,
			})
			assertCode(t, err, errorx.CodeInvalidParam)

			reviews, err := f.repos.Review.FindByReviewedId(context.Background(), f.mentor.Uuid)
			require.NoError(t, err)
			assert.Empty(t, reviews)
		})
	}
}

func TestCreateReview_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: rating})
		assertCode(t, err, errorx.CodeInvalidParam)
	}

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: "L_MISSING", Rating: 3})
	assertCode(t, err, errorx.CodeNotFound)

	// 旁观者不能评价
	_, err = f.svc.CreateReview(ctx, f.outsider.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 3})
	assertCode(t, err, errorx.CodeInvalidParam)

	_, err = f.svc.CreateReview(ctx, f.outsider.Uuid, request.CreateReviewRequest{
		SessionId: s.Uuid, Rating: 3, ReviewedId: f.mentor.Uuid,
	})
	assertCode(t, err, errorx.CodeInvalidParam)

	// 显式指定的被评价人必须是参与者
	_, err = f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{
		SessionId: s.Uuid, Rating: 3, ReviewedId: f.outsider.Uuid,
	})
	assertCode(t, err, errorx.CodeInvalidParam)

	// 不能评价自己
	_, err = f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{
		SessionId: s.Uuid, Rating: 3, ReviewedId: f.learner.Uuid,
	})
	assertCode(t, err, errorx.CodeInvalidParam)

	assert.Equal(t, 0, f.profile(t, f.mentor.Uuid).ReviewCount)
}

func TestCreateReview_DuplicateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{
		SessionId: s.Uuid, Rating: 1, ReviewedId: f.mentor.Uuid,
	})
	assertCode(t, err, errorx.CodeConflict)
	assert.ErrorIs(t, err, errorx.ErrConflict)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 5.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)
}

func TestAverageIsExactMean(t *testing.T) {
	ratings := []int{5, 4, 4, 1, 3, 2, 5}
	for n := 0; n <= len(ratings); n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			sum := 0
			for i := 0; i < n; i++ {
				learner := testutil.SeedProfile(t, f.repos, fmt.Sprintf("U_L%d", i), user_type_enum.LEARNER)
				s := testutil.SeedSession(t, f.repos, fmt.Sprintf("L_%d", i), f.skill, learner.Uuid,
					session_status_enum.COMPLETED, time.Now())
				_, err := f.svc.CreateReview(ctx, learner.Uuid, request.CreateReviewRequest{
					SessionId: s.Uuid,
					Rating:    ratings[i],
				})
				require.NoError(t, err)
				sum += ratings[i]
			}

			mentor := f.profile(t, f.mentor.Uuid)
			assert.Equal(t, n, mentor.ReviewCount)
			if n == 0 {
				assert.Equal(t, 0.0, mentor.AverageRating)
			} else {
				assert.Equal(t, float64(sum)/float64(n), mentor.AverageRating)
			}
		})
	}
}

func TestUpdateReview_RecomputesOnRatingChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	created, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)

	rating := 2
	comment := "changed my mind"
	updated, err := f.svc.UpdateReview(ctx, f.learner.Uuid, created.ReviewId, request.UpdateReviewRequest{
		Rating:  &rating,
		Comment: &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, comment, updated.Comment)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 2.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)

	// 只改内容不影响评分
	onlyComment := "ok"
	_, err = f.svc.UpdateReview(ctx, f.learner.Uuid, created.ReviewId, request.UpdateReviewRequest{Comment: &onlyComment})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.profile(t, f.mentor.Uuid).AverageRating)
}

func TestUpdateReview_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	created, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)

	rating := 1
	_, err = f.svc.UpdateReview(ctx, f.mentor.Uuid, created.ReviewId, request.UpdateReviewRequest{Rating: &rating})
	assertCode(t, err, errorx.CodeForbidden)

	bad := 9
	_, err = f.svc.UpdateReview(ctx, f.learner.Uuid, created.ReviewId, request.UpdateReviewRequest{Rating: &bad})
	assertCode(t, err, errorx.CodeInvalidParam)

	_, err = f.svc.UpdateReview(ctx, f.learner.Uuid, "R_MISSING", request.UpdateReviewRequest{Rating: &rating})
	assertCode(t, err, errorx.CodeNotFound)

	assert.Equal(t, 5.0, f.profile(t, f.mentor.Uuid).AverageRating)
}

func TestDeleteReview_Recomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.session(t, "L_ONE", session_status_enum.COMPLETED)
	second := f.session(t, "L_TWO", session_status_enum.COMPLETED)

	r1, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: first.Uuid, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: second.Uuid, Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 3.5, f.profile(t, f.mentor.Uuid).AverageRating)

	err = f.svc.DeleteReview(ctx, f.mentor.Uuid, r1.ReviewId)
	assertCode(t, err, errorx.CodeForbidden)

	require.NoError(t, f.svc.DeleteReview(ctx, f.learner.Uuid, r1.ReviewId))
	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 2.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)

	err = f.svc.DeleteReview(ctx, f.learner.Uuid, r1.ReviewId)
	assertCode(t, err, errorx.CodeNotFound)
}

func TestListForUser_CachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.session(t, "L_ONE", session_status_enum.COMPLETED)
	second := f.session(t, "L_TWO", session_status_enum.COMPLETED)
	cacheKey := constants.REVIEW_LIST_PREFIX + f.mentor.Uuid

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: first.Uuid, Rating: 4})
	require.NoError(t, err)

	list, err := f.svc.ListForUser(ctx, f.mentor.Uuid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, f.cache.Has(cacheKey))

	// 命中缓存
	again, err := f.svc.ListForUser(ctx, f.mentor.Uuid)
	require.NoError(t, err)
	assert.Equal(t, list[0].ReviewId, again[0].ReviewId)
	assert.Equal(t, 1, f.cache.Sets)

	// 新评价使缓存失效，列表按创建时间倒序
	latest, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: second.Uuid, Rating: 2})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(cacheKey))

	list, err = f.svc.ListForUser(ctx, f.mentor.Uuid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, latest.ReviewId, list[0].ReviewId)

	none, err := f.svc.ListForUser(ctx, f.outsider.Uuid)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListForActor_GivenAndReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	given, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)
	received, err := f.svc.CreateReview(ctx, f.mentor.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 4})
	require.NoError(t, err)

	list, err := f.svc.ListForActor(ctx, f.learner.Uuid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, received.ReviewId, list[0].ReviewId)
	assert.Equal(t, given.ReviewId, list[1].ReviewId)

	list, err = f.svc.ListForActor(ctx, f.outsider.Uuid)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReconcile_FixesDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 3})
	require.NoError(t, err)

	// 人为制造漂移
	require.NoError(t, f.repos.Profile.UpdateReputation(ctx, f.mentor.Uuid, 4.9, 7))
	require.NoError(t, f.repos.Profile.UpdateReputation(ctx, f.outsider.Uuid, 1.0, 1))

	fixed, err := f.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)

	rep, err := f.svc.GetReputation(ctx, f.mentor.Uuid)
	require.NoError(t, err)
	assert.Equal(t, 3.0, rep.AverageRating)
	assert.Equal(t, 1, rep.ReviewCount)

	rep, err = f.svc.Reconcile(ctx, f.outsider.Uuid)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.AverageRating)
	assert.Equal(t, 0, rep.ReviewCount)

	fixed, err = f.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)

	_, err = f.svc.Reconcile(ctx, "U_NONE")
	assertCode(t, err, errorx.CodeNotFound)
}

// 场景：学员评价导师 5 分
func TestScenario_LearnerRatesMentor(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	_, err := f.svc.CreateReview(context.Background(), f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 5.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)
}

// 场景：双方互评，学员重复评价被拒
func TestScenario_MutualReviewAndDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_DONE", session_status_enum.COMPLETED)

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, f.mentor.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 4})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 1})
	assertCode(t, err, errorx.CodeConflict)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 5.0, mentor.AverageRating)
	assert.Equal(t, 1, mentor.ReviewCount)

	learner := f.profile(t, f.learner.Uuid)
	assert.Equal(t, 4.0, learner.AverageRating)
	assert.Equal(t, 1, learner.ReviewCount)
}

// 场景：评价 PENDING 会话被拒且不落库
func TestScenario_ReviewPendingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, "L_PENDING", session_status_enum.PENDING)

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: s.Uuid, Rating: 5})
	assertCode(t, err, errorx.CodeInvalidParam)

	reviews, err := f.repos.Review.FindByParticipant(ctx, f.learner.Uuid)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

// cancelAfterReadRepo 读取后立即把会话改为 CANCELLED，模拟读与事务之间的并发取消
type cancelAfterReadRepo struct {
	repository.LearningSessionRepository
}

func (r cancelAfterReadRepo) FindByUuid(ctx context.Context, uuid string) (*model.LearningSession, error) {
	session, err := r.LearningSessionRepository.FindByUuid(ctx, uuid)
	if err != nil {
		return nil, err
	}
	cancelled := *session
	cancelled.Status = session_status_enum.CANCELLED
	if err := r.LearningSessionRepository.Save(ctx, &cancelled); err != nil {
		return nil, err
	}
	return session, nil
}

func TestCreateReview_StatusRecheckedUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.session(t, "L_RACE", session_status_enum.COMPLETED)
	f.repos.Session = cancelAfterReadRepo{LearningSessionRepository: f.repos.Session}

	_, err := f.svc.CreateReview(ctx, f.learner.Uuid, request.CreateReviewRequest{SessionId: session.Uuid, Rating: 5})
	assertCode(t, err, errorx.CodeInvalidParam)

	mentor := f.profile(t, f.mentor.Uuid)
	assert.Equal(t, 0, mentor.ReviewCount)
	reviews, err := f.repos.Review.FindByReviewedId(ctx, f.mentor.Uuid)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestReconcileAll_DriftClearsCachedLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listKey := constants.REVIEW_LIST_PREFIX + f.mentor.Uuid
	require.NoError(t, f.cache.Set(ctx, listKey, "[]", time.Minute))

	fixed, err := f.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
	assert.True(t, f.cache.Has(listKey))

	require.NoError(t, f.repos.Profile.UpdateReputation(ctx, f.mentor.Uuid, 4.2, 3))
	fixed, err = f.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.False(t, f.cache.Has(listKey))
}
