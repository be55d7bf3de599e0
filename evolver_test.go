package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvolver(t *testing.T) (*Evolver, *Tracker, *Session) {
	t.Helper()
	session := newTestSession(t)
	tracker := NewTracker(session, testSettings())
	return NewEvolver(session, tracker), tracker, session
}

func seedTrackedPost(t *testing.T, tracker *Tracker, content string, likes int) {
	t.Helper()
	record, err := tracker.LogPost(content, PlatformTwitter, "", time.Now())
	require.NoError(t, err)
	_, err = tracker.UpdateEngagement(record.ID, "initial", map[string]int{"likes": likes})
	require.NoError(t, err)
}

func TestExtractPatternsNeedsPosts(t *testing.T) {
	e, _, _ := newTestEvolver(t)
	_, err := e.ExtractPatterns()
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestExtractPatterns(t *testing.T) {
	e, tracker, _ := newTestEvolver(t)

	// "dealer positioning matters" recurs, so it becomes a candidate
	// phrase.
	seedTrackedPost(t, tracker, "Watch the tape, dealer positioning matters here", 100)
	seedTrackedPost(t, tracker, "Into opex, dealer positioning matters again", 80)
	seedTrackedPost(t, tracker, "What a session! I took profits early", 60)

	patterns, err := e.ExtractPatterns()
	require.NoError(t, err)

	assert.Equal(t, 3, patterns.SampleSize)
	assert.Contains(t, patterns.CandidatePhrases, "dealer positioning matters")
	assert.NotEmpty(t, patterns.TopOpeners)
	assert.NotEmpty(t, patterns.TopClosers)
	assert.Equal(t, 1, patterns.ToneIndicators["exclamation"])
	assert.Equal(t, 1, patterns.ToneIndicators["first_person"])
	assert.Greater(t, patterns.AvgWordCount, 0.0)
}

func TestTrigrams(t *testing.T) {
	got := trigrams([]string{"dealer", "positioning", "matters"})
	assert.Equal(t, []string{"dealer positioning matters"}, got)

	// All short words, nothing meaningful.
	assert.Empty(t, trigrams([]string{"it", "is", "so"}))
}

func TestHasCapsWord(t *testing.T) {
	assert.True(t, hasCapsWord("the VIX is bid"))
	assert.False(t, hasCapsWord("no shouting here"))
	assert.False(t, hasCapsWord("OK"))
}

func TestSuggestProposesPhraseAndHook(t *testing.T) {
	e, tracker, _ := newTestEvolver(t)

	seedTrackedPost(t, tracker, "What happens when dealer positioning matters most?", 100)
	seedTrackedPost(t, tracker, "Short week but dealer positioning matters still", 50)

	suggestions, err := e.Suggest()
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	fields := map[string]bool{}
	for _, s := range suggestions {
		fields[s.Field] = true
		assert.NotEmpty(t, s.Evidence)
	}
	assert.True(t, fields["voice.signature_phrases"])
	assert.True(t, fields["proven_patterns"])
}

func TestApplyBumpsVersionAndArchives(t *testing.T) {
	e, tracker, session := newTestEvolver(t)
	seedTrackedPost(t, tracker, "short and punchy take", 100)

	suggestions, err := e.Suggest()
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	before, err := session.Profile()
	require.NoError(t, err)
	require.Equal(t, 1, before.Version)

	updated, err := e.Apply(suggestions, []int{0})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	history, err := e.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)
	assert.Len(t, history[0].Changes, 1)
}

func TestApplyValidatesSelection(t *testing.T) {
	e, tracker, _ := newTestEvolver(t)
	seedTrackedPost(t, tracker, "one tracked post", 10)

	suggestions, err := e.Suggest()
	require.NoError(t, err)

	var verr *ValidationError
	_, err = e.Apply(suggestions, nil)
	assert.True(t, errors.As(err, &verr))
	_, err = e.Apply(suggestions, []int{len(suggestions)})
	assert.True(t, errors.As(err, &verr))
}

func TestCompareVersions(t *testing.T) {
	e, tracker, _ := newTestEvolver(t)
	seedTrackedPost(t, tracker, "What drives the close today?", 100)

	suggestions, err := e.Suggest()
	require.NoError(t, err)

	// Select the proven_patterns suggestion so the diff is a count change.
	idx := -1
	for i, s := range suggestions {
		if s.Field == "proven_patterns" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)

	_, err = e.Apply(suggestions, []int{idx})
	require.NoError(t, err)

	diffs, err := e.CompareVersions(1, 2)
	require.NoError(t, err)
	assert.Contains(t, diffs, "proven patterns: 0 -> 1")

	_, err = e.CompareVersions(1, 99)
	assert.True(t, errors.Is(err, ErrNotFound))
}
