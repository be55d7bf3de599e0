package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *VoiceProfile {
	profile, _ := NewVoiceProfile("Test User", GoalGrowFollowers, "fintwit")
	return profile
}

func TestLengthScoreAtTarget(t *testing.T) {
	s := NewScorer()
	content := strings.Repeat("word ", defaultTargetWords)
	assert.Equal(t, 1.0, s.lengthScore(content, nil))
}

func TestLengthScoreFallsOff(t *testing.T) {
	s := NewScorer()

	half := strings.Repeat("word ", defaultTargetWords/2)
	score := s.lengthScore(half, nil)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)

	// Double the target or more scores zero.
	way := strings.Repeat("word ", defaultTargetWords*3)
	assert.Equal(t, 0.0, s.lengthScore(way, nil))
}

func TestLengthScoreUsesBenchmarkTarget(t *testing.T) {
	s := NewScorer()
	benchmark := &BenchmarkEntry{}
	benchmark.Patterns.OptimalLength.AvgWords = 10

	content := strings.Repeat("word ", 10)
	assert.Equal(t, 1.0, s.lengthScore(content, benchmark))
}

func TestScoreRangeAndComposite(t *testing.T) {
	s := NewScorer()
	profile := testProfile()

	scores := s.Score("Watch the data here: dealers flip short gamma below 5900. What do you think happens next?", profile, nil)

	for name, v := range map[string]float64{
		"voice":      scores.VoiceMatch,
		"engagement": scores.EngagementPrediction,
		"length":     scores.LengthScore,
		"composite":  scores.Composite,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}

	want := weightVoice*scores.VoiceMatch + weightEngagement*scores.EngagementPrediction + weightLength*scores.LengthScore
	assert.InDelta(t, want, scores.Composite, 1e-9)
}

func TestVoiceMatchSignaturePhrases(t *testing.T) {
	s := NewScorer()
	profile := testProfile()
	profile.Voice.SignaturePhrases = []string{"dealer positioning"}

	with := s.voiceMatch("Dealer positioning is the story here.", profile)
	without := s.voiceMatch("The narrative is the story here.", profile)
	assert.Greater(t, with, without)
}

func TestVoiceMatchAvoidedPhrases(t *testing.T) {
	s := NewScorer()
	profile := testProfile()
	profile.Voice.AvoidedPhrases = []string{"to the moon"}

	clean := s.voiceMatch("Positioning suggests a grind higher.", profile)
	dirty := s.voiceMatch("Positioning suggests we go to the moon.", profile)
	assert.Greater(t, clean, dirty)
}

func TestVoiceMatchCasualMarkersPenalizeProfessionalTone(t *testing.T) {
	s := NewScorer()
	profile := testProfile()
	require.Equal(t, "professional", profile.Voice.Tone)

	formal := s.voiceMatch("The data suggest dealers monitor this level.", profile)
	casual := s.voiceMatch("lol the data suggest dealers monitor this level lmao", profile)
	assert.Greater(t, formal, casual)
}

func TestEngagementPredictionQuestionHook(t *testing.T) {
	s := NewScorer()

	question := s.engagementPrediction("What happens if dealers flip short?", nil)
	flat := s.engagementPrediction("Dealers flipped short again sometime.", nil)
	assert.Greater(t, question, flat)
}

func TestEngagementPredictionCTA(t *testing.T) {
	s := NewScorer()

	cta := s.engagementPrediction("Here is the setup going into Friday. What do you think?", nil)
	none := s.engagementPrediction("Here is the setup going into Friday for everyone.", nil)
	assert.Greater(t, cta, none)
}

func TestEmptyContentScoresNeutral(t *testing.T) {
	s := NewScorer()
	assert.Equal(t, 0.5, s.voiceMatch("", testProfile()))
	assert.Equal(t, 0.5, s.engagementPrediction("", nil))
}
