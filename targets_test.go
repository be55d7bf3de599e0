package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTargets(t *testing.T) *Targets {
	t.Helper()
	return NewTargets(newTestSession(t), testSettings())
}

func TestTargetsAddNormalizesAndRejectsDuplicates(t *testing.T) {
	targets := newTestTargets(t)

	added, err := targets.Add("@Trader_One", "posts good flow recaps", "scan", []string{"options"})
	require.NoError(t, err)
	assert.Equal(t, "trader_one", added.Handle)
	assert.Equal(t, TargetPending, added.Status)

	var verr *ValidationError
	_, err = targets.Add("trader_one", "", "", nil)
	assert.True(t, errors.As(err, &verr))

	_, err = targets.Add("   ", "", "", nil)
	assert.True(t, errors.As(err, &verr))
}

func TestTargetsFollowLifecycle(t *testing.T) {
	targets := newTestTargets(t)

	_, err := targets.Add("trader_one", "", "scan", nil)
	require.NoError(t, err)

	followed, err := targets.TrackFollow("trader_one")
	require.NoError(t, err)
	assert.Equal(t, TargetFollowed, followed.Status)
	assert.NotNil(t, followed.FollowedAt)

	// Following twice is invalid.
	_, err = targets.TrackFollow("trader_one")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	back, err := targets.RecordFollowback("trader_one", true)
	require.NoError(t, err)
	assert.Equal(t, TargetFollowedBack, back.Status)
	assert.NotNil(t, back.DecidedAt)

	// Followed-back targets are not unfollow material.
	_, err = targets.RecordUnfollow("trader_one", "")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestTargetsNoFollowbackThenUnfollow(t *testing.T) {
	targets := newTestTargets(t)

	_, err := targets.Add("quiet_account", "", "", nil)
	require.NoError(t, err)
	_, err = targets.TrackFollow("quiet_account")
	require.NoError(t, err)

	noBack, err := targets.RecordFollowback("quiet_account", false)
	require.NoError(t, err)
	assert.Equal(t, TargetNoFollowback, noBack.Status)

	unfollowed, err := targets.RecordUnfollow("quiet_account", "no followback after 14 days")
	require.NoError(t, err)
	assert.Equal(t, TargetUnfollowed, unfollowed.Status)
	assert.Equal(t, "no followback after 14 days", unfollowed.UnfollowReason)

	// Terminal state.
	_, err = targets.RecordFollowback("quiet_account", true)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestTrackFollowUnknownHandleAdds(t *testing.T) {
	targets := newTestTargets(t)

	followed, err := targets.TrackFollow("@spontaneous")
	require.NoError(t, err)
	assert.Equal(t, "spontaneous", followed.Handle)
	assert.Equal(t, TargetFollowed, followed.Status)
	assert.Equal(t, "manual", followed.Source)

	got, err := targets.Get("spontaneous")
	require.NoError(t, err)
	assert.Equal(t, TargetFollowed, got.Status)
}

func TestUnfollowCandidates(t *testing.T) {
	targets := newTestTargets(t)

	_, err := targets.TrackFollow("stale_follow")
	require.NoError(t, err)
	_, err = targets.TrackFollow("recent_follow")
	require.NoError(t, err)

	// Backdate one follow past the cutoff.
	list, err := targets.List("")
	require.NoError(t, err)
	for i := range list {
		if list[i].Handle == "stale_follow" {
			old := time.Now().AddDate(0, 0, -30)
			list[i].FollowedAt = &old
		}
	}
	require.NoError(t, targets.save(list))

	candidates, err := targets.UnfollowCandidates(14)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "stale_follow", candidates[0].Handle)

	// Zero days falls back to the configured default.
	candidates, err = targets.UnfollowCandidates(0)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestTargetsListFilterAndStats(t *testing.T) {
	targets := newTestTargets(t)

	_, err := targets.Add("a", "", "", nil)
	require.NoError(t, err)
	_, err = targets.TrackFollow("b")
	require.NoError(t, err)
	_, err = targets.TrackFollow("c")
	require.NoError(t, err)
	_, err = targets.RecordFollowback("b", true)
	require.NoError(t, err)
	_, err = targets.RecordFollowback("c", false)
	require.NoError(t, err)

	pending, err := targets.List(TargetPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	stats, err := targets.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[TargetFollowedBack])
	assert.Equal(t, 1, stats.ByStatus[TargetNoFollowback])
	assert.Equal(t, 50.0, stats.FollowbackPC)
}

func TestTargetsSuggestFromScanCache(t *testing.T) {
	session := newTestSession(t)
	targets := NewTargets(session, testSettings())
	scanner := NewScanner(session, testSettings())

	_, err := scanner.Ingest([]TrendingPost{
		trendingPost("hot_author", "options flow turning fast", 1500, time.Duration(0)),
		trendingPost("hot_author", "more options flow here", 600, time.Duration(0)),
		trendingPost("tracked_author", "volatility watch tonight", 1500, time.Duration(0)),
	})
	require.NoError(t, err)

	// Already-tracked authors are excluded.
	_, err = targets.Add("tracked_author", "", "scan", nil)
	require.NoError(t, err)

	suggestions, err := targets.Suggest(5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "hot_author", suggestions[0].Handle)
	assert.Equal(t, 2, suggestions[0].Posts)
	assert.NotEmpty(t, suggestions[0].Reason)

	limited, err := targets.Suggest(0)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTargetsSuggestEmptyCache(t *testing.T) {
	targets := newTestTargets(t)
	suggestions, err := targets.Suggest(5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestTargetsUnknownHandle(t *testing.T) {
	targets := newTestTargets(t)

	_, err := targets.Get("nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = targets.RecordFollowback("nobody", true)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = targets.RecordUnfollow("nobody", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}
