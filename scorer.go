package main

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Composite score weights. Engagement dominates because it is the
// hardest dimension to recover after posting.
const (
	weightVoice      = 0.35
	weightEngagement = 0.45
	weightLength     = 0.20

	defaultTargetWords = 26
)

var professionalMarkers = []string{
	"data", "suggest", "indicate", "perspective", "context",
	"positioning", "setup", "level", "watch", "monitor",
}

var casualMarkers = []string{"lol", "lmao", "tbh", "ngl"}

var engagementWords = []string{
	"key", "important", "watch", "signal", "data", "shows",
	"this is", "here's", "notice", "look at", "the real",
	"actually", "truth", "most people", "few understand",
}

var ctaPatterns = []string{
	"what do you", "thoughts?", "agree?", "how about", "curious",
}

var contractionPattern = regexp.MustCompile(`\w+'(t|re|ll|ve|m|s|d)\b`)

// Scorer predicts how well a draft will perform before it is queued.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score rates content against a voice profile and an optional niche
// benchmark. All dimensions and the composite are in [0,1].
func (s *Scorer) Score(content string, profile *VoiceProfile, benchmark *BenchmarkEntry) Scores {
	voice := s.voiceMatch(content, profile)
	engagement := s.engagementPrediction(content, benchmark)
	length := s.lengthScore(content, benchmark)

	return Scores{
		VoiceMatch:           voice,
		EngagementPrediction: engagement,
		LengthScore:          length,
		Composite:            clamp01(weightVoice*voice + weightEngagement*engagement + weightLength*length),
	}
}

// voiceMatch measures how much the content sounds like the user.
func (s *Scorer) voiceMatch(content string, profile *VoiceProfile) float64 {
	score := 0.5
	if profile == nil || strings.TrimSpace(content) == "" {
		return score
	}
	lowered := strings.ToLower(content)
	words := strings.Fields(content)

	switch profile.Voice.Tone {
	case "professional":
		for _, m := range professionalMarkers {
			if strings.Contains(lowered, m) {
				score += 0.03
			}
		}
		for _, m := range casualMarkers {
			if strings.Contains(lowered, m) {
				score -= 0.1
			}
		}
	case "casual":
		for _, m := range casualMarkers {
			if strings.Contains(lowered, m) {
				score += 0.05
			}
		}
	}

	if profile.Voice.Vocabulary == "professional" {
		avg := avgWordLength(words)
		if avg >= 5 && avg <= 7 {
			score += 0.1
		}
	}

	// Signature phrase usage, weighted by phrase length so longer
	// phrases count for more.
	if len(profile.Voice.SignaturePhrases) > 0 {
		var total, matched float64
		for _, phrase := range profile.Voice.SignaturePhrases {
			w := float64(len(strings.Fields(phrase)))
			total += w
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				matched += w
			}
		}
		if total > 0 {
			score += 0.2 * (matched / total)
		}
	}

	for _, avoided := range profile.Voice.AvoidedPhrases {
		if avoided != "" && strings.Contains(lowered, strings.ToLower(avoided)) {
			score -= 0.1
		}
	}

	contractions := len(contractionPattern.FindAllString(content, -1))
	if profile.Voice.Formality <= 2 && contractions > 0 {
		score -= 0.05
	}
	if profile.Voice.Formality >= 4 && contractions > 0 {
		score += 0.05
	}

	emojis := countEmoji(content)
	switch profile.Voice.EmojiStyle {
	case "none":
		if emojis > 0 {
			score -= 0.1
		}
	case "minimal":
		if emojis <= 2 {
			score += 0.05
		} else {
			score -= 0.05
		}
	case "heavy":
		if emojis >= 3 {
			score += 0.05
		}
	}

	if profile.Style.SentenceLength == "concise" {
		if avg := avgSentenceWords(content); avg > 0 && avg <= 12 {
			score += 0.05
		}
	}

	return clamp01(score)
}

// engagementPrediction estimates how likely the content is to earn
// interaction.
func (s *Scorer) engagementPrediction(content string, benchmark *BenchmarkEntry) float64 {
	score := 0.5
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return score
	}
	lowered := strings.ToLower(content)

	firstSentence := trimmed
	if idx := strings.IndexAny(trimmed, ".!?\n"); idx > 0 {
		firstSentence = trimmed[:idx+1]
	}
	switch {
	case strings.Contains(firstSentence, "?"):
		score += 0.1
	case startsWithDigit(firstSentence):
		score += 0.08
	case strings.HasPrefix(firstSentence, "I ") || strings.HasPrefix(firstSentence, "My "):
		score += 0.05
	case strings.HasPrefix(firstSentence, "This is") || strings.HasPrefix(firstSentence, "The "):
		score += 0.07
	}

	bonus := 0.0
	for _, w := range engagementWords {
		if strings.Contains(lowered, w) {
			bonus += 0.02
		}
	}
	score += math.Min(bonus, 0.1)

	if mentionPattern.MatchString(content) || numberPattern.MatchString(content) {
		score += 0.05
	}

	if avg := avgSentenceWords(content); avg > 0 && avg <= 15 {
		score += 0.05
	}

	for _, cta := range ctaPatterns {
		if strings.Contains(lowered, cta) {
			score += 0.08
			break
		}
	}

	if benchmark != nil {
		wc := len(strings.Fields(content))
		ol := benchmark.Patterns.OptimalLength
		if ol.MaxWords > 0 && wc >= ol.MinWords && wc <= ol.MaxWords {
			score += 0.1
		}
	}

	return clamp01(score)
}

// lengthScore falls off linearly with distance from the target word
// count, hitting zero at double the target.
func (s *Scorer) lengthScore(content string, benchmark *BenchmarkEntry) float64 {
	target := float64(defaultTargetWords)
	if benchmark != nil && benchmark.Patterns.OptimalLength.AvgWords > 0 {
		target = benchmark.Patterns.OptimalLength.AvgWords
	}
	words := float64(len(strings.Fields(content)))
	return 1 - math.Min(1, math.Abs(words-target)/target)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func avgWordLength(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(strings.Trim(w, ".,!?;:\"'"))
	}
	return float64(total) / float64(len(words))
}

func avgSentenceWords(content string) float64 {
	sentences := sentenceSplit.Split(strings.TrimSpace(content), -1)
	var count, words int
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		count++
		words += len(strings.Fields(s))
	}
	if count == 0 {
		return 0
	}
	return float64(words) / float64(count)
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

func countEmoji(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x1F300 && r <= 0x1FAFF || r >= 0x2600 && r <= 0x27BF {
			n++
		}
	}
	return n
}
