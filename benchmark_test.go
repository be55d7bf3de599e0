package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBenchmarks(t *testing.T) *Benchmarks {
	t.Helper()
	return NewBenchmarks(newTestStore(t), testLogger())
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1200", 1200, false},
		{"12,400", 12400, false},
		{"1.2K", 1200, false},
		{"1.2k", 1200, false},
		{"5M", 5000000, false},
		{"1B", 1000000000, false},
		{"$2.5K", 2500, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.2.3K", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMetric(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddAccountUpdatesInPlace(t *testing.T) {
	b := newTestBenchmarks(t)

	entry, err := b.AddAccount("fintwit", "@SpotGamma", "100K", "1.5K")
	require.NoError(t, err)
	require.Len(t, entry.Accounts, 1)
	assert.Equal(t, "spotgamma", entry.Accounts[0].Handle)
	assert.Equal(t, 100000, entry.Accounts[0].Followers)

	// Same handle updates rather than duplicates.
	entry, err = b.AddAccount("fintwit", "spotgamma", "120K", "2K")
	require.NoError(t, err)
	require.Len(t, entry.Accounts, 1)
	assert.Equal(t, 120000, entry.Accounts[0].Followers)
	assert.Equal(t, 120000.0, entry.Metrics.AvgFollowers)
}

func TestAddAccountRejectsBadMetrics(t *testing.T) {
	b := newTestBenchmarks(t)
	var verr *ValidationError
	_, err := b.AddAccount("fintwit", "handle", "lots", "10")
	assert.True(t, errors.As(err, &verr))
}

func TestAddViralPostRecomputesPatterns(t *testing.T) {
	b := newTestBenchmarks(t)

	morning := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC) // Monday
	_, err := b.AddViralPost("fintwit", "@trader", "What happens when gamma flips at 5900?", "1.5K", morning)
	require.NoError(t, err)
	entry, err := b.AddViralPost("fintwit", "@trader", "5 things the tape showed about options flow and dealer hedging", "500", morning.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, entry.Metrics.PostCount)
	assert.Equal(t, 1000.0, entry.Metrics.AvgEngagement)

	length := entry.Patterns.OptimalLength
	assert.Equal(t, 7, length.MinWords)
	assert.Equal(t, 11, length.MaxWords)
	assert.Equal(t, 9.0, length.AvgWords)
	assert.Equal(t, 9.0, length.MedianWords)

	assert.Equal(t, 1, entry.Patterns.Hooks[HookQuestion])
	assert.Equal(t, 1, entry.Patterns.Hooks[HookList])
	assert.Contains(t, entry.Patterns.PeakDays, "Monday")
	assert.Contains(t, entry.Patterns.PeakHours, 9)
	assert.Contains(t, entry.Patterns.TopTopics, "gamma")
}

func TestAddViralPostRejectsEmptyContent(t *testing.T) {
	b := newTestBenchmarks(t)
	var verr *ValidationError
	_, err := b.AddViralPost("fintwit", "a", "   ", "100", time.Time{})
	assert.True(t, errors.As(err, &verr))
}

func TestBenchmarkGetUnknownNiche(t *testing.T) {
	b := newTestBenchmarks(t)
	_, err := b.Get("nowhere")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBenchmarkList(t *testing.T) {
	b := newTestBenchmarks(t)
	_, err := b.AddAccount("fintwit", "a", "1", "1")
	require.NoError(t, err)
	_, err = b.AddAccount("crypto", "b", "1", "1")
	require.NoError(t, err)

	names, err := b.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"crypto", "fintwit"}, names)
}

func TestCompareFindsGapsAndStrengths(t *testing.T) {
	b := newTestBenchmarks(t)

	posted := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	_, err := b.AddViralPost("fintwit", "a", "What happens when dealers flip short gamma into opex this Friday afternoon session?", "1K", posted)
	require.NoError(t, err)

	profile := testProfile()
	profile.Voice.Vocabulary = "simple" // benchmark grades professional-ish content higher

	records := []*PostRecord{
		{WordCount: 4, PostedAt: posted.Add(10 * time.Hour)}, // short, off-peak
	}

	cmp, err := b.Compare("fintwit", records, profile)
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Gaps)
	assert.NotEmpty(t, cmp.Recommendation)
	assert.Less(t, cmp.AlignmentScore, 100.0)
	assert.GreaterOrEqual(t, cmp.AlignmentScore, 0.0)
}

func TestCompareRequiresViralPosts(t *testing.T) {
	b := newTestBenchmarks(t)
	_, err := b.AddAccount("fintwit", "a", "1K", "100")
	require.NoError(t, err)

	var verr *ValidationError
	_, err = b.Compare("fintwit", nil, testProfile())
	assert.True(t, errors.As(err, &verr))
}

func TestVocabularyDistance(t *testing.T) {
	assert.Equal(t, 0, vocabularyDistance("simple", "simple"))
	assert.Equal(t, 2, vocabularyDistance("simple", "professional"))
	assert.Equal(t, 3, vocabularyDistance("advanced", "simple"))
	assert.Equal(t, 0, vocabularyDistance("unknown", "simple"))
}

func TestGradeVocabulary(t *testing.T) {
	assert.Equal(t, "simple", gradeVocabulary("the cat sat on a mat"))
	assert.Equal(t, "advanced", gradeVocabulary("sophisticated institutional derivatives positioning"))
}

func TestMedianAndMode(t *testing.T) {
	assert.Equal(t, 2.0, median([]int{1, 2, 3}))
	assert.Equal(t, 2.5, median([]int{1, 2, 3, 4}))
	assert.Equal(t, 0.0, median(nil))

	assert.Equal(t, "a", mode([]string{"a", "b", "a"}))
	// Ties break alphabetically.
	assert.Equal(t, "a", mode([]string{"b", "a"}))
}
