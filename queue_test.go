package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueWithItem(t *testing.T) (*Queue, *QueueItem) {
	t.Helper()
	q := NewQueue(newTestSession(t))
	item, err := q.Add(&QueueItem{
		Platform: PlatformTwitter,
		Content:  "Dealers flip short gamma below 5900. What do you think happens?",
	})
	require.NoError(t, err)
	return q, item
}

func TestQueueAddAnalyzesAndScores(t *testing.T) {
	_, item := queueWithItem(t)

	assert.Equal(t, QueuePending, item.Status)
	assert.NotEmpty(t, item.ID)
	require.NotNil(t, item.Analysis)
	assert.Equal(t, HookQuestion, item.Analysis.HookType)
	assert.Greater(t, item.Scores.Composite, 0.0)
}

func TestQueueApproveFlow(t *testing.T) {
	q, item := queueWithItem(t)

	approved, err := q.Approve(item.ID)
	require.NoError(t, err)
	assert.Equal(t, QueueApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)

	// Approving twice is an invalid transition.
	_, err = q.Approve(item.ID)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestQueueRejectArchivesInPlace(t *testing.T) {
	q, item := queueWithItem(t)

	rejected, err := q.Reject(item.ID, "off-voice")
	require.NoError(t, err)
	assert.Equal(t, QueueRejected, rejected.Status)
	assert.Equal(t, "off-voice", rejected.RejectReason)

	// Still findable, still in the pending bucket's file.
	got, err := q.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, QueueRejected, got.Status)

	// No further transitions allowed.
	_, err = q.Approve(item.ID)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	_, err = q.MarkPosted(item.ID, "https://example.com")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestQueuePostedRequiresApproval(t *testing.T) {
	q, item := queueWithItem(t)

	_, err := q.MarkPosted(item.ID, "https://example.com/1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = q.Approve(item.ID)
	require.NoError(t, err)

	posted, err := q.MarkPosted(item.ID, "https://example.com/1")
	require.NoError(t, err)
	assert.Equal(t, QueuePosted, posted.Status)
	assert.Equal(t, "https://example.com/1", posted.PostURL)
	assert.NotNil(t, posted.PostedAt)
	assert.NotNil(t, posted.DecidedAt)
}

func TestQueueEditRescores(t *testing.T) {
	q, item := queueWithItem(t)

	edited, err := q.EditContent(item.ID, "What if dealers flip short gamma below 5900?")
	require.NoError(t, err)
	assert.Equal(t, HookQuestion, edited.Analysis.HookType)
	assert.NotEqual(t, item.Content, edited.Content)
}

func TestQueueScoresAgainstNicheBenchmark(t *testing.T) {
	s := newTestSession(t)
	b := NewBenchmarks(s.Store, testLogger())
	_, err := b.AddViralPost("fintwit", "@trader", "Dealers flip short gamma below 5900 into opex", "1K",
		time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	q := NewQueue(s)
	item, err := q.Add(&QueueItem{
		Platform: PlatformTwitter,
		Content:  "Gamma pinned the close at 5900 again today", // matches the benchmark's 8-word average
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, item.Scores.LengthScore)

	edited, err := q.EditContent(item.ID, "Dealers flipped long gamma above 5900 into Friday")
	require.NoError(t, err)
	assert.Equal(t, 1.0, edited.Scores.LengthScore)
}

func TestQueueNextToPost(t *testing.T) {
	q, _ := queueWithItem(t)

	strong, err := q.Add(&QueueItem{
		Platform: PlatformTwitter,
		Content:  "Watch this level: the data shows dealers flip short below 5900. What do you think?",
	})
	require.NoError(t, err)
	weak, err := q.Add(&QueueItem{
		Platform: PlatformTwitter,
		Content:  "hm",
	})
	require.NoError(t, err)

	_, err = q.Approve(strong.ID)
	require.NoError(t, err)
	_, err = q.Approve(weak.ID)
	require.NoError(t, err)

	next, err := q.NextToPost("")
	require.NoError(t, err)
	assert.Equal(t, strong.ID, next.ID)

	// Platform filter with no matches.
	_, err = q.NextToPost(PlatformLinkedIn)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestQueueStats(t *testing.T) {
	q, item := queueWithItem(t)

	second, err := q.Add(&QueueItem{Platform: PlatformLinkedIn, Content: "A longer post for linkedin readers.\nWith a second line."})
	require.NoError(t, err)
	_, err = q.Approve(second.ID)
	require.NoError(t, err)
	_, err = q.Reject(item.ID, "")
	require.NoError(t, err)

	stats, err := q.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.ByPlatform[PlatformTwitter])
	assert.Equal(t, 1, stats.ByPlatform[PlatformLinkedIn])
	assert.Greater(t, stats.AvgApprovedScore, 0.0)
}
