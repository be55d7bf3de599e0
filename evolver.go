package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// VoicePatterns is what the evolver observed in the user's best posts.
type VoicePatterns struct {
	TopOpeners       []string       `json:"top_openers"`
	TopClosers       []string       `json:"top_closers"`
	CandidatePhrases []string       `json:"candidate_phrases"`
	ToneIndicators   map[string]int `json:"tone_indicators"`
	AvgWordCount     float64        `json:"avg_word_count"`
	SampleSize       int            `json:"sample_size"`
}

// EvolutionSuggestion proposes one profile change backed by evidence.
type EvolutionSuggestion struct {
	Field    string `json:"field"`
	Current  string `json:"current"`
	Proposed string `json:"proposed"`
	Evidence string `json:"evidence"`
}

// Evolver updates the voice profile from what actually performs. Every
// applied evolution bumps the profile version and archives the prior
// version.
type Evolver struct {
	session *Session
	tracker *Tracker
}

func NewEvolver(session *Session, tracker *Tracker) *Evolver {
	return &Evolver{session: session, tracker: tracker}
}

func (e *Evolver) historyKey() string {
	return e.session.key("evolution", "history")
}

// ExtractPatterns mines the top 20 posts for openers, closers, repeated
// phrases, and tone indicators.
func (e *Evolver) ExtractPatterns() (*VoicePatterns, error) {
	top, err := e.tracker.TopPerforming(20)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, &ValidationError{Field: "posts", Reason: "no tracked posts to learn from"}
	}

	openerCounts := map[string]int{}
	closerCounts := map[string]int{}
	phraseCounts := map[string]int{}
	tone := map[string]int{}
	totalWords := 0

	for _, post := range top {
		words := strings.Fields(strings.ToLower(post.Content))
		totalWords += len(words)
		if len(words) >= 3 {
			openerCounts[strings.Join(words[:3], " ")]++
			closerCounts[strings.Join(words[len(words)-3:], " ")]++
		}
		for _, phrase := range trigrams(words) {
			phraseCounts[phrase]++
		}

		if strings.Contains(post.Content, "!") {
			tone["exclamation"]++
		}
		if strings.Contains(post.Content, "?") {
			tone["question"]++
		}
		if post.Content != strings.ToLower(post.Content) && hasCapsWord(post.Content) {
			tone["caps"]++
		}
		if strings.HasPrefix(post.Content, "I ") || strings.Contains(post.Content, " I ") {
			tone["first_person"]++
		}
	}

	patterns := &VoicePatterns{
		TopOpeners:     topCounts(openerCounts, 5),
		TopClosers:     topCounts(closerCounts, 5),
		ToneIndicators: tone,
		AvgWordCount:   float64(totalWords) / float64(len(top)),
		SampleSize:     len(top),
	}
	for phrase, count := range phraseCounts {
		if count >= 2 {
			patterns.CandidatePhrases = append(patterns.CandidatePhrases, phrase)
		}
	}
	sort.Strings(patterns.CandidatePhrases)
	return patterns, nil
}

// trigrams returns all 3-word windows that contain at least one word
// longer than 3 characters.
func trigrams(words []string) []string {
	var out []string
	for i := 0; i+3 <= len(words); i++ {
		window := words[i : i+3]
		meaningful := false
		for _, w := range window {
			if len(strings.Trim(w, ".,!?;:")) > 3 {
				meaningful = true
				break
			}
		}
		if meaningful {
			out = append(out, strings.Join(window, " "))
		}
	}
	return out
}

func hasCapsWord(content string) bool {
	for _, w := range strings.Fields(content) {
		trimmed := strings.Trim(w, ".,!?;:")
		if len(trimmed) >= 3 && trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) {
			return true
		}
	}
	return false
}

// Suggest proposes profile changes based on extracted patterns.
func (e *Evolver) Suggest() ([]EvolutionSuggestion, error) {
	patterns, err := e.ExtractPatterns()
	if err != nil {
		return nil, err
	}
	profile, err := e.session.Profile()
	if err != nil {
		return nil, err
	}

	var suggestions []EvolutionSuggestion

	switch {
	case patterns.AvgWordCount < 20 && profile.Style.SentenceLength != "concise":
		suggestions = append(suggestions, EvolutionSuggestion{
			Field:    "style.sentence_length",
			Current:  profile.Style.SentenceLength,
			Proposed: "concise",
			Evidence: fmt.Sprintf("top posts average %.0f words", patterns.AvgWordCount),
		})
	case patterns.AvgWordCount > 40 && profile.Style.SentenceLength != "elaborate":
		suggestions = append(suggestions, EvolutionSuggestion{
			Field:    "style.sentence_length",
			Current:  profile.Style.SentenceLength,
			Proposed: "elaborate",
			Evidence: fmt.Sprintf("top posts average %.0f words", patterns.AvgWordCount),
		})
	}

	known := map[string]bool{}
	for _, o := range profile.Voice.CommonOpeners {
		known[strings.ToLower(o)] = true
	}
	for _, opener := range patterns.TopOpeners {
		if !known[opener] {
			suggestions = append(suggestions, EvolutionSuggestion{
				Field:    "voice.common_openers",
				Proposed: opener,
				Evidence: "recurring opener in top posts",
			})
			break
		}
	}

	knownPhrases := map[string]bool{}
	for _, p := range profile.Voice.SignaturePhrases {
		knownPhrases[strings.ToLower(p)] = true
	}
	for _, phrase := range patterns.CandidatePhrases {
		if !knownPhrases[phrase] {
			suggestions = append(suggestions, EvolutionSuggestion{
				Field:    "voice.signature_phrases",
				Proposed: phrase,
				Evidence: "appears in at least 2 top posts",
			})
			break
		}
	}

	if patterns.ToneIndicators["exclamation"] > patterns.SampleSize/2 && profile.Voice.Tone != "enthusiastic" {
		suggestions = append(suggestions, EvolutionSuggestion{
			Field:    "voice.tone",
			Current:  profile.Voice.Tone,
			Proposed: "enthusiastic",
			Evidence: "over half of top posts use exclamations",
		})
	}

	records, err := e.tracker.List()
	if err == nil {
		if byHook := e.tracker.PerformanceByHook(records); len(byHook) > 0 {
			suggestions = append(suggestions, EvolutionSuggestion{
				Field:    "proven_patterns",
				Proposed: byHook[0].Technique,
				Evidence: fmt.Sprintf("best hook, avg score %.0f over %d posts", byHook[0].AvgScore, byHook[0].Count),
			})
		}
	}

	return suggestions, nil
}

// Apply takes the selected suggestion indices, applies them to the
// profile, bumps the version by exactly one, and archives the prior
// version.
func (e *Evolver) Apply(suggestions []EvolutionSuggestion, selected []int) (*VoiceProfile, error) {
	if len(selected) == 0 {
		return nil, &ValidationError{Field: "selected", Reason: "no suggestions selected"}
	}
	profile, err := e.session.Profile()
	if err != nil {
		return nil, err
	}

	prior := *profile
	var changes []string

	for _, idx := range selected {
		if idx < 0 || idx >= len(suggestions) {
			return nil, &ValidationError{Field: "selected", Reason: fmt.Sprintf("index %d out of range", idx)}
		}
		s := suggestions[idx]
		switch s.Field {
		case "voice.tone":
			profile.Voice.Tone = s.Proposed
		case "style.sentence_length":
			profile.Style.SentenceLength = s.Proposed
		case "voice.common_openers":
			profile.Voice.CommonOpeners = append(profile.Voice.CommonOpeners, s.Proposed)
		case "voice.signature_phrases":
			profile.Voice.SignaturePhrases = append(profile.Voice.SignaturePhrases, s.Proposed)
		case "proven_patterns":
			profile.ProvenPatterns = append(profile.ProvenPatterns, ProvenPattern{
				Kind:    "hook",
				Value:   s.Proposed,
				AddedAt: time.Now(),
			})
		default:
			return nil, &ValidationError{Field: "field", Reason: fmt.Sprintf("unknown suggestion field %q", s.Field)}
		}
		changes = append(changes, fmt.Sprintf("%s: %s", s.Field, s.Proposed))
	}

	var history []ProfileSnapshot
	if _, err := loadOptional(e.session.Store, e.historyKey(), &history); err != nil {
		e.session.Log.WithError(err).Warn("evolution history unreadable, starting fresh")
	}
	history = append(history, ProfileSnapshot{
		Version:   prior.Version,
		Profile:   prior,
		Changes:   changes,
		CreatedAt: time.Now(),
	})
	if err := e.session.Store.Put(e.historyKey(), history); err != nil {
		return nil, err
	}

	profile.Version = prior.Version + 1
	if err := e.session.SaveProfile(profile); err != nil {
		return nil, err
	}
	e.session.Log.Infof("✓ Evolved profile to v%d (%d change(s))", profile.Version, len(changes))
	return profile, nil
}

// History returns archived profile versions, oldest first.
func (e *Evolver) History() ([]ProfileSnapshot, error) {
	var history []ProfileSnapshot
	if _, err := loadOptional(e.session.Store, e.historyKey(), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// CompareVersions diffs two profile versions. The current version is
// included alongside archived ones.
func (e *Evolver) CompareVersions(a, b int) ([]string, error) {
	pa, err := e.versionProfile(a)
	if err != nil {
		return nil, err
	}
	pb, err := e.versionProfile(b)
	if err != nil {
		return nil, err
	}

	var diffs []string
	add := func(field, va, vb string) {
		if va != vb {
			diffs = append(diffs, fmt.Sprintf("%s: %q -> %q", field, va, vb))
		}
	}
	add("voice.tone", pa.Voice.Tone, pb.Voice.Tone)
	add("voice.vocabulary", pa.Voice.Vocabulary, pb.Voice.Vocabulary)
	add("voice.emoji_style", pa.Voice.EmojiStyle, pb.Voice.EmojiStyle)
	add("style.sentence_length", pa.Style.SentenceLength, pb.Style.SentenceLength)
	if pa.Voice.Formality != pb.Voice.Formality {
		diffs = append(diffs, fmt.Sprintf("voice.formality: %d -> %d", pa.Voice.Formality, pb.Voice.Formality))
	}
	if len(pa.Voice.SignaturePhrases) != len(pb.Voice.SignaturePhrases) {
		diffs = append(diffs, fmt.Sprintf("signature phrases: %d -> %d", len(pa.Voice.SignaturePhrases), len(pb.Voice.SignaturePhrases)))
	}
	if len(pa.Voice.CommonOpeners) != len(pb.Voice.CommonOpeners) {
		diffs = append(diffs, fmt.Sprintf("common openers: %d -> %d", len(pa.Voice.CommonOpeners), len(pb.Voice.CommonOpeners)))
	}
	if len(pa.ProvenPatterns) != len(pb.ProvenPatterns) {
		diffs = append(diffs, fmt.Sprintf("proven patterns: %d -> %d", len(pa.ProvenPatterns), len(pb.ProvenPatterns)))
	}
	return diffs, nil
}

func (e *Evolver) versionProfile(version int) (*VoiceProfile, error) {
	current, err := e.session.Profile()
	if err != nil {
		return nil, err
	}
	if current.Version == version {
		return current, nil
	}
	history, err := e.History()
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].Version == version {
			return &history[i].Profile, nil
		}
	}
	return nil, fmt.Errorf("profile version %d: %w", version, ErrNotFound)
}
