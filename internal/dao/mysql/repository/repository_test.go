package repository_test

import (
	"context"
	"testing"
	"time"

	"skillswap_server/internal/dao/mysql/repository"
	"skillswap_server/internal/model"
	"skillswap_server/internal/testutil"
	"skillswap_server/pkg/enum/session_status_enum"
	"skillswap_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewTripleIsUniqueInStorage(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)

	first := &model.Review{Uuid: "R1", SessionId: "L1", ReviewerId: "U_A", ReviewedId: "U_B", Rating: 5}
	require.NoError(t, repos.Review.Create(ctx, first))

	dup := &model.Review{Uuid: "R2", SessionId: "L1", ReviewerId: "U_A", ReviewedId: "U_B", Rating: 3}
	err := repos.Review.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 反方向是另一条评价
	reverse := &model.Review{Uuid: "R3", SessionId: "L1", ReviewerId: "U_B", ReviewedId: "U_A", Rating: 4}
	require.NoError(t, repos.Review.Create(ctx, reverse))

	exists, err := repos.Review.ExistsByTriple(ctx, "L1", "U_A", "U_B")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repos.Review.ExistsByTriple(ctx, "L2", "U_A", "U_B")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReviewSummary(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)

	summary, err := repos.Review.SummaryByReviewedId(ctx, "U_B")
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Count)
	assert.Equal(t, 0.0, summary.Average())

	for i, rating := range []int{5, 4, 4} {
		r := &model.Review{
			Uuid:       "R" + string(rune('a'+i)),
			SessionId:  "L" + string(rune('a'+i)),
			ReviewerId: "U_A",
			ReviewedId: "U_B",
			Rating:     rating,
		}
		require.NoError(t, repos.Review.Create(ctx, r))
	}

	summary, err = repos.Review.SummaryByReviewedId(ctx, "U_B")
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.Equal(t, int64(13), summary.Sum)
	assert.Equal(t, 13.0/3.0, summary.Average())
}

func TestReviewListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)

	require.NoError(t, repos.Review.Create(ctx, &model.Review{Uuid: "R1", SessionId: "L1", ReviewerId: "U_A", ReviewedId: "U_B", Rating: 5}))
	require.NoError(t, repos.Review.Create(ctx, &model.Review{Uuid: "R2", SessionId: "L1", ReviewerId: "U_B", ReviewedId: "U_A", Rating: 4}))
	require.NoError(t, repos.Review.Create(ctx, &model.Review{Uuid: "R3", SessionId: "L2", ReviewerId: "U_C", ReviewedId: "U_B", Rating: 2}))

	received, err := repos.Review.FindByReviewedId(ctx, "U_B")
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, "R3", received[0].Uuid)
	assert.Equal(t, "R1", received[1].Uuid)

	involved, err := repos.Review.FindByParticipant(ctx, "U_A")
	require.NoError(t, err)
	require.Len(t, involved, 2)
	assert.Equal(t, "R2", involved[0].Uuid)
	assert.Equal(t, "R1", involved[1].Uuid)
}

func TestSessionFindByParticipantRoles(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)
	mentor, learner, _, skill := testutil.SeedMarketplace(t, repos)
	other := testutil.SeedSkill(t, repos, "K_OTHER", learner.Uuid, 30)

	when := time.Now().UTC().Add(24 * time.Hour)
	testutil.SeedSession(t, repos, "L1", skill, learner.Uuid, session_status_enum.PENDING, when)
	testutil.SeedSession(t, repos, "L2", other, mentor.Uuid, session_status_enum.PENDING, when)

	asLearner, err := repos.Session.FindByParticipant(ctx, learner.Uuid, "learner")
	require.NoError(t, err)
	require.Len(t, asLearner, 1)
	assert.Equal(t, "L1", asLearner[0].Uuid)

	asMentor, err := repos.Session.FindByParticipant(ctx, learner.Uuid, "mentor")
	require.NoError(t, err)
	require.Len(t, asMentor, 1)
	assert.Equal(t, "L2", asMentor[0].Uuid)

	all, err := repos.Session.FindByParticipant(ctx, learner.Uuid, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "L2", all[0].Uuid)
	assert.Equal(t, "L1", all[1].Uuid)
}

func TestSessionSaveOnlyTouchesMutableColumns(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)
	_, learner, _, skill := testutil.SeedMarketplace(t, repos)
	seeded := testutil.SeedSession(t, repos, "L1", skill, learner.Uuid, session_status_enum.APPROVED, time.Now().UTC())

	seeded.Status = session_status_enum.PENDING
	seeded.MentorResponse = ""
	seeded.LearnerId = "U_HIJACK"
	require.NoError(t, repos.Session.Save(ctx, seeded))

	got, err := repos.Session.FindByUuid(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, session_status_enum.PENDING, got.Status)
	assert.Equal(t, learner.Uuid, got.LearnerId)
}

func TestFindMissingRecordsMapToNotFound(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)

	_, err := repos.Session.FindByUuid(ctx, "L_NONE")
	assert.True(t, errorx.IsNotFound(err))
	_, err = repos.Skill.FindByUuid(ctx, "K_NONE")
	assert.True(t, errorx.IsNotFound(err))
	_, err = repos.Profile.FindByUuid(ctx, "U_NONE")
	assert.True(t, errorx.IsNotFound(err))
	err = repos.Profile.UpdateReputation(ctx, "U_NONE", 1, 1)
	assert.True(t, errorx.IsNotFound(err))
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Review.Create(ctx, &model.Review{Uuid: "R1", SessionId: "L1", ReviewerId: "U_A", ReviewedId: "U_B", Rating: 5}); err != nil {
			return err
		}
		return errorx.ErrConflict
	})
	require.ErrorIs(t, err, errorx.ErrConflict)

	_, err = repos.Review.FindByUuid(ctx, "R1")
	assert.True(t, errorx.IsNotFound(err))
}

func TestScheduledWindowQuery(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepos(t)
	_, learner, _, skill := testutil.SeedMarketplace(t, repos)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedSession(t, repos, "L_IN", skill, learner.Uuid, session_status_enum.APPROVED, base)
	testutil.SeedSession(t, repos, "L_PENDING", skill, learner.Uuid, session_status_enum.PENDING, base)
	testutil.SeedSession(t, repos, "L_LATE", skill, learner.Uuid, session_status_enum.APPROVED, base.Add(10*time.Minute))

	got, err := repos.Session.FindByStatusScheduledBetween(ctx, session_status_enum.APPROVED, base.Add(-2*time.Minute), base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "L_IN", got[0].Uuid)
}
