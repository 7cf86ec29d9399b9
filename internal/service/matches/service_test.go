package matches_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/youyuan/match-engine/internal/activity"
	"github.com/youyuan/match-engine/internal/app"
	"github.com/youyuan/match-engine/internal/cache"
	"github.com/youyuan/match-engine/internal/config"
	"github.com/youyuan/match-engine/internal/db"
	apperrors "github.com/youyuan/match-engine/internal/errors"
	"github.com/youyuan/match-engine/internal/logger"
	"github.com/youyuan/match-engine/internal/service/matches"
)

func newTestApp(t *testing.T) *app.AppContext {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&db.User{}, &db.Profile{}, &db.MatchAction{}))
	require.NoError(t, db.SeedMinimalTestData(database))

	mr := miniredis.RunT(t)
	redisCache := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	log := logger.L()
	act := activity.NewLog(redisCache, log, 100)
	t.Cleanup(act.Close)

	cfg := config.New()
	return app.New(cfg, database, redisCache, act, log)
}

// --- decide ---

func TestDecide_MutualFlow(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	// A likes B: pending, no match yet
	first, err := svc.Decide(ctx, 1, 2, "like")
	require.NoError(t, err)
	assert.False(t, first.MutualMatch)
	assert.Equal(t, db.StatusPending, first.Action.Status)
	assert.Equal(t, 0.5, first.Action.Score)

	// B likes A second: reciprocal found, both rows accepted
	second, err := svc.Decide(ctx, 2, 1, "like")
	require.NoError(t, err)
	assert.True(t, second.MutualMatch)
	assert.Equal(t, db.StatusAccepted, second.Action.Status)
}

func TestDecide_PassThenLikeIsDuplicate(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	res, err := svc.Decide(ctx, 1, 2, "pass")
	require.NoError(t, err)
	assert.Equal(t, db.StatusRejected, res.Action.Status)

	_, err = svc.Decide(ctx, 1, 2, "like")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAction)
}

func TestDecide_SuperLikeIntentScore(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	res, err := svc.Decide(context.Background(), 1, 2, "super_like")
	require.NoError(t, err)
	assert.Equal(t, 0.9, res.Action.Score)
	assert.Equal(t, db.StatusPending, res.Action.Status)
}

func TestDecide_Validation(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	_, err := svc.Decide(ctx, 1, 2, "wink")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Decide(ctx, 1, 1, "like")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Decide(ctx, 0, 2, "like")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Decide(ctx, 1, 0, "like")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDecide_TargetNotFound(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	_, err := svc.Decide(context.Background(), 1, 999, "like")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- browse ---

func TestBrowse_ForcedOppositeGenderIgnoresPreference(t *testing.T) {
	appCtx := newTestApp(t)
	svc := matches.NewService(appCtx)

	// requester 1 is male with a stored same-gender preference; the
	// stored preference is ignored and only females are shown
	require.NoError(t, appCtx.DB.Model(&db.Profile{}).
		Where("user_id = ?", 1).
		Update("preferred_genders", "male").Error)

	page, err := svc.Browse(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, page.Candidates)
	for _, c := range page.Candidates {
		assert.NotEqual(t, uint64(4), c.UserID, "male candidate leaked into page")
	}
	ids := candidateIDs(page)
	assert.ElementsMatch(t, []uint64{2, 3}, ids)
}

func TestBrowse_ExcludesDecidedTargets(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	_, err := svc.Decide(ctx, 1, 2, "pass")
	require.NoError(t, err)

	page, err := svc.Browse(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.NotContains(t, candidateIDs(page), uint64(2))
}

func TestBrowse_RanksByDistanceThenScore(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	page, err := svc.Browse(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Candidates, 2)

	// user 2 is a couple of km away; user 3 has no coordinates and
	// sorts last despite any score
	assert.Equal(t, uint64(2), page.Candidates[0].UserID)
	assert.Equal(t, uint64(3), page.Candidates[1].UserID)
	require.NotNil(t, page.Candidates[0].DistanceKm)
	assert.Nil(t, page.Candidates[1].DistanceKm)
	assert.NotEmpty(t, page.Candidates[0].DistanceFormatted)
}

func TestBrowse_ScoreAndMismatchPenalty(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	page, err := svc.Browse(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Candidates, 2)

	byID := map[uint64]matches.Candidate{}
	for _, c := range page.Candidates {
		byID[c.UserID] = c
	}

	// age diff 2 -> 20, interests 2/3 -> 26.67, same location -> 20,
	// both tech -> 20; truncated to 86
	assert.Equal(t, 86, byID[2].MatchScore)

	// user 3 prefers females and requester 1 is male: raw score 20
	// (age only) scaled by the 0.3 penalty, truncated to 6
	assert.Equal(t, 6, byID[3].MatchScore)
}

func TestBrowse_EmptyPage(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	_, err := svc.Decide(ctx, 1, 2, "pass")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, 1, 3, "pass")
	require.NoError(t, err)

	page, err := svc.Browse(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Candidates)
	assert.False(t, page.HasMore)
}

func TestBrowse_ClampsPaging(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	// non-positive limit/offset fall back to defaults instead of erroring
	page, err := svc.Browse(context.Background(), 1, -5, -3)
	require.NoError(t, err)
	assert.Len(t, page.Candidates, 2)
}

func TestBrowse_RequesterNotFound(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	_, err := svc.Browse(context.Background(), 999, 10, 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBrowse_PaginationHasMore(t *testing.T) {
	svc := matches.NewService(newTestApp(t))

	first, err := svc.Browse(context.Background(), 1, 1, 0)
	require.NoError(t, err)
	require.Len(t, first.Candidates, 1)
	assert.True(t, first.HasMore)

	second, err := svc.Browse(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	require.Len(t, second.Candidates, 1)
	assert.False(t, second.HasMore)
	assert.NotEqual(t, first.Candidates[0].UserID, second.Candidates[0].UserID)
}

// --- mutual listing ---

func TestMutualMatches_ListsFormedPairs(t *testing.T) {
	svc := matches.NewService(newTestApp(t))
	ctx := context.Background()

	_, err := svc.Decide(ctx, 1, 2, "like")
	require.NoError(t, err)
	res, err := svc.Decide(ctx, 2, 1, "like")
	require.NoError(t, err)
	require.True(t, res.MutualMatch)

	page, err := svc.MutualMatches(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	assert.Equal(t, uint64(2), page.Matches[0].UserID)
	assert.Equal(t, "user2", page.Matches[0].Username)
	assert.Equal(t, int64(1), page.Total)
}

func candidateIDs(page matches.Page) []uint64 {
	ids := make([]uint64, 0, len(page.Candidates))
	for _, c := range page.Candidates {
		ids = append(ids, c.UserID)
	}
	return ids
}
