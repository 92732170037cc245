package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap_server/internal/config"
	"skillswap_server/internal/testutil"
	"skillswap_server/pkg/constants"
	"skillswap_server/pkg/enum/notify_event_enum"
	"skillswap_server/pkg/enum/session_status_enum"
)

type recordNotifier struct {
	mu       sync.Mutex
	sessions []string
}

func (r *recordNotifier) Notify(_ context.Context, kind notify_event_enum.Kind, sessionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == notify_event_enum.SessionReminder {
		r.sessions = append(r.sessions, sessionId)
	}
}

func (r *recordNotifier) Close() error { return nil }

func (r *recordNotifier) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sessions...)
}

type countReconciler struct {
	mu    sync.Mutex
	calls int
}

func (c *countReconciler) ReconcileAll(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0, nil
}

var defaultOpts = Options{
	Interval:  5 * time.Minute,
	Lookahead: 30 * time.Minute,
	Window:    2 * time.Minute,
	LockTTL:   time.Minute,
}

func TestScanOnce_FiresForApprovedInWindow(t *testing.T) {
	repos := testutil.NewTestRepos(t)
	_, learner, _, skill := testutil.SeedMarketplace(t, repos)
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	testutil.SeedSession(t, repos, "L_DUE", skill, learner.Uuid, session_status_enum.APPROVED, now.Add(30*time.Minute))
	testutil.SeedSession(t, repos, "L_EDGE", skill, learner.Uuid, session_status_enum.APPROVED, now.Add(32*time.Minute))
	testutil.SeedSession(t, repos, "L_PENDING", skill, learner.Uuid, session_status_enum.PENDING, now.Add(30*time.Minute))
	testutil.SeedSession(t, repos, "L_LATER", skill, learner.Uuid, session_status_enum.APPROVED, now.Add(45*time.Minute))
	testutil.SeedSession(t, repos, "L_SOON", skill, learner.Uuid, session_status_enum.APPROVED, now.Add(10*time.Minute))

	notifier := &recordNotifier{}
	cache := testutil.NewMemoryCache()
	scanner := NewScanner(repos.Session, notifier, cache, nil, defaultOpts)
	scanner.now = func() time.Time { return now }

	fired, err := scanner.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fired)
	assert.ElementsMatch(t, []string{"L_DUE", "L_EDGE"}, notifier.snapshot())
	assert.False(t, cache.Has(constants.REMINDER_LOCK_KEY), "lock released after scan")

	// 重复扫描会重复通知
	fired, err = scanner.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fired)
}

func TestScanOnce_SkipsWhenLocked(t *testing.T) {
	repos := testutil.NewTestRepos(t)
	_, learner, _, skill := testutil.SeedMarketplace(t, repos)
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	testutil.SeedSession(t, repos, "L_DUE", skill, learner.Uuid, session_status_enum.APPROVED, now.Add(30*time.Minute))

	cache := testutil.NewMemoryCache()
	_, ok, err := cache.TryLock(context.Background(), constants.REMINDER_LOCK_KEY, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	notifier := &recordNotifier{}
	scanner := NewScanner(repos.Session, notifier, cache, nil, defaultOpts)
	scanner.now = func() time.Time { return now }

	fired, err := scanner.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Empty(t, notifier.snapshot())
}

type failingLocker struct{}

func (failingLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", false, errors.New("redis down")
}

func (failingLocker) Unlock(context.Context, string, string) error { return nil }

func TestScanOnce_LockError(t *testing.T) {
	repos := testutil.NewTestRepos(t)
	scanner := NewScanner(repos.Session, &recordNotifier{}, failingLocker{}, nil, defaultOpts)

	_, err := scanner.ScanOnce(context.Background())
	assert.Error(t, err)
}

func TestHalfWindow_CoversInterval(t *testing.T) {
	s := &Scanner{opts: Options{Interval: 10 * time.Minute, Window: 2 * time.Minute}}
	assert.GreaterOrEqual(t, 2*s.halfWindow(), 10*time.Minute)

	s = &Scanner{opts: defaultOpts}
	assert.Equal(t, 2*time.Minute+30*time.Second, s.halfWindow())
}

func TestRun_StopsOnCancel(t *testing.T) {
	repos := testutil.NewTestRepos(t)
	reconciler := &countReconciler{}
	opts := defaultOpts
	opts.Interval = 10 * time.Millisecond
	opts.ReconcileInterval = 10 * time.Millisecond
	scanner := NewScanner(repos.Session, &recordNotifier{}, testutil.NewMemoryCache(), reconciler, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := scanner.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	assert.Greater(t, reconciler.calls, 0)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(&config.ReminderConfig{Interval: 5, Lookahead: 30, Window: 2, LockTTL: 60, ReconcileInterval: 60})
	assert.Equal(t, 5*time.Minute, opts.Interval)
	assert.Equal(t, 30*time.Minute, opts.Lookahead)
	assert.Equal(t, 2*time.Minute, opts.Window)
	assert.Equal(t, time.Minute, opts.LockTTL)
	assert.Equal(t, time.Hour, opts.ReconcileInterval)
}
