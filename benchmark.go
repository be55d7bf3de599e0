package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// BenchmarkAccount is a top performer tracked for a niche.
type BenchmarkAccount struct {
	Handle        string    `json:"handle"`
	Followers     int       `json:"followers"`
	AvgEngagement int       `json:"avg_engagement"`
	AddedAt       time.Time `json:"added_at"`
}

// ViralPost is a high-performing post captured for pattern extraction.
type ViralPost struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	Engagement int       `json:"engagement"`
	PostedAt   time.Time `json:"posted_at"`
	AddedAt    time.Time `json:"added_at"`
}

// OptimalLength summarizes word counts across viral posts.
type OptimalLength struct {
	MinWords    int     `json:"min_words"`
	MaxWords    int     `json:"max_words"`
	AvgWords    float64 `json:"avg_words"`
	MedianWords float64 `json:"median_words"`
}

// BenchmarkPatterns is what the niche's top content has in common.
type BenchmarkPatterns struct {
	OptimalLength OptimalLength    `json:"optimal_length"`
	PeakHours     []int            `json:"peak_hours"`
	PeakDays      []string         `json:"peak_days"`
	TopTopics     []string         `json:"top_topics"`
	Hooks         map[HookType]int `json:"hooks"`
	Vocabulary    string           `json:"vocabulary"`
	Tone          string           `json:"tone"`
	EmojiStyle    string           `json:"emoji_style"`
}

// BenchmarkMetrics aggregates the raw numbers behind a benchmark.
type BenchmarkMetrics struct {
	AvgEngagement float64 `json:"avg_engagement"`
	AvgFollowers  float64 `json:"avg_followers"`
	PostCount     int     `json:"post_count"`
	AccountCount  int     `json:"account_count"`
}

// BenchmarkEntry is everything known about one niche's top content.
// Benchmarks are shared across users.
type BenchmarkEntry struct {
	Niche      string             `json:"niche"`
	Accounts   []BenchmarkAccount `json:"accounts"`
	ViralPosts []ViralPost        `json:"viral_posts"`
	Patterns   BenchmarkPatterns  `json:"patterns"`
	Metrics    BenchmarkMetrics   `json:"metrics"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// BenchmarkComparison is the result of holding a user's output against
// their niche benchmark.
type BenchmarkComparison struct {
	Niche          string   `json:"niche"`
	Gaps           []string `json:"gaps"`
	Strengths      []string `json:"strengths"`
	Recommendation []string `json:"recommendations"`
	AlignmentScore float64  `json:"alignment_score"` // 0-100
}

var vocabularyOrder = []string{"simple", "moderate", "professional", "advanced"}

// Benchmarks manages per-niche benchmark entries.
type Benchmarks struct {
	store    Store
	log      *logrus.Logger
	analyzer *Analyzer
}

func NewBenchmarks(store Store, log *logrus.Logger) *Benchmarks {
	return &Benchmarks{store: store, log: log, analyzer: NewAnalyzer()}
}

func benchmarkKey(niche string) string {
	return "benchmarks/" + slugify(niche)
}

// Get loads a benchmark, returning ErrNotFound when the niche has no data.
func (b *Benchmarks) Get(niche string) (*BenchmarkEntry, error) {
	var entry BenchmarkEntry
	if err := b.store.Get(benchmarkKey(niche), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (b *Benchmarks) getOrCreate(niche string) *BenchmarkEntry {
	entry, err := b.Get(niche)
	if err != nil {
		return &BenchmarkEntry{
			Niche:    niche,
			Patterns: BenchmarkPatterns{Hooks: map[HookType]int{}},
		}
	}
	return entry
}

// List returns the names of all stored benchmarks.
func (b *Benchmarks) List() ([]string, error) {
	keys, err := b.store.List("benchmarks/")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, "benchmarks/"))
	}
	sort.Strings(names)
	return names, nil
}

// AddAccount records a top account for a niche. Metric strings accept
// shorthand like "1.2K" and "5M".
func (b *Benchmarks) AddAccount(niche, handle, followers, avgEngagement string) (*BenchmarkEntry, error) {
	f, err := parseMetric(followers)
	if err != nil {
		return nil, &ValidationError{Field: "followers", Reason: err.Error()}
	}
	e, err := parseMetric(avgEngagement)
	if err != nil {
		return nil, &ValidationError{Field: "avg_engagement", Reason: err.Error()}
	}

	entry := b.getOrCreate(niche)
	handle = normalizeHandle(handle)
	for i := range entry.Accounts {
		if entry.Accounts[i].Handle == handle {
			entry.Accounts[i].Followers = f
			entry.Accounts[i].AvgEngagement = e
			return entry, b.save(entry)
		}
	}
	entry.Accounts = append(entry.Accounts, BenchmarkAccount{
		Handle:        handle,
		Followers:     f,
		AvgEngagement: e,
		AddedAt:       time.Now(),
	})
	return entry, b.save(entry)
}

// AddViralPost records a high performer and recomputes niche patterns.
func (b *Benchmarks) AddViralPost(niche, author, content, engagement string, postedAt time.Time) (*BenchmarkEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	eng, err := parseMetric(engagement)
	if err != nil {
		return nil, &ValidationError{Field: "engagement", Reason: err.Error()}
	}
	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	entry := b.getOrCreate(niche)
	entry.ViralPosts = append(entry.ViralPosts, ViralPost{
		ID:         newID(),
		Author:     normalizeHandle(author),
		Content:    content,
		Engagement: eng,
		PostedAt:   postedAt,
		AddedAt:    time.Now(),
	})
	return entry, b.save(entry)
}

func (b *Benchmarks) save(entry *BenchmarkEntry) error {
	b.recompute(entry)
	entry.UpdatedAt = time.Now()
	return b.store.Put(benchmarkKey(entry.Niche), entry)
}

// recompute rebuilds the derived patterns and metrics from raw posts
// and accounts.
func (b *Benchmarks) recompute(entry *BenchmarkEntry) {
	entry.Metrics.PostCount = len(entry.ViralPosts)
	entry.Metrics.AccountCount = len(entry.Accounts)

	if len(entry.Accounts) > 0 {
		total := 0
		for _, a := range entry.Accounts {
			total += a.Followers
		}
		entry.Metrics.AvgFollowers = float64(total) / float64(len(entry.Accounts))
	}

	if len(entry.ViralPosts) == 0 {
		return
	}

	var wordCounts []int
	hourCounts := map[int]int{}
	dayCounts := map[string]int{}
	topicCounts := map[string]int{}
	hooks := map[HookType]int{}
	var vocabVotes, toneVotes, emojiVotes []string
	totalEngagement := 0

	for _, post := range entry.ViralPosts {
		wordCounts = append(wordCounts, len(strings.Fields(post.Content)))
		hourCounts[post.PostedAt.Hour()]++
		dayCounts[post.PostedAt.Weekday().String()]++
		totalEngagement += post.Engagement

		for _, topic := range extractTopics(post.Content) {
			topicCounts[topic]++
		}

		analysis := b.analyzer.Analyze(post.Content, PlatformTwitter)
		if analysis.HookType != HookNone {
			hooks[analysis.HookType]++
		}

		vocabVotes = append(vocabVotes, gradeVocabulary(post.Content))
		toneVotes = append(toneVotes, gradeTone(post.Content))
		emojiVotes = append(emojiVotes, gradeEmojiStyle(post.Content))
	}

	sort.Ints(wordCounts)
	sum := 0
	for _, n := range wordCounts {
		sum += n
	}
	entry.Patterns.OptimalLength = OptimalLength{
		MinWords:    wordCounts[0],
		MaxWords:    wordCounts[len(wordCounts)-1],
		AvgWords:    float64(sum) / float64(len(wordCounts)),
		MedianWords: median(wordCounts),
	}
	entry.Patterns.PeakHours = topHours(hourCounts, 3)
	entry.Patterns.PeakDays = topCounts(dayCounts, 3)
	entry.Patterns.TopTopics = topCounts(topicCounts, 10)
	entry.Patterns.Hooks = hooks
	entry.Patterns.Vocabulary = mode(vocabVotes)
	entry.Patterns.Tone = mode(toneVotes)
	entry.Patterns.EmojiStyle = mode(emojiVotes)
	entry.Metrics.AvgEngagement = float64(totalEngagement) / float64(len(entry.ViralPosts))
}

// Compare holds a user's recent posts and profile against the niche
// benchmark and names the gaps worth closing.
func (b *Benchmarks) Compare(niche string, records []*PostRecord, profile *VoiceProfile) (*BenchmarkComparison, error) {
	entry, err := b.Get(niche)
	if err != nil {
		return nil, err
	}
	if len(entry.ViralPosts) == 0 {
		return nil, &ValidationError{Field: "benchmark", Reason: "no viral posts recorded for " + niche}
	}

	cmp := &BenchmarkComparison{Niche: niche}
	checks := 0

	if len(records) > 0 {
		checks++
		total := 0
		for _, r := range records {
			total += r.WordCount
		}
		userAvg := float64(total) / float64(len(records))
		benchAvg := entry.Patterns.OptimalLength.AvgWords
		switch {
		case userAvg < 0.7*benchAvg:
			cmp.Gaps = append(cmp.Gaps, fmt.Sprintf("posts run short: %.0f words vs %.0f benchmark average", userAvg, benchAvg))
			cmp.Recommendation = append(cmp.Recommendation, fmt.Sprintf("aim for %.0f-word posts", benchAvg))
		case userAvg > 1.5*benchAvg:
			cmp.Gaps = append(cmp.Gaps, fmt.Sprintf("posts run long: %.0f words vs %.0f benchmark average", userAvg, benchAvg))
			cmp.Recommendation = append(cmp.Recommendation, fmt.Sprintf("tighten posts toward %.0f words", benchAvg))
		default:
			cmp.Strengths = append(cmp.Strengths, "post length matches the benchmark")
		}
	}

	if profile != nil {
		checks++
		if vocabularyDistance(profile.Voice.Vocabulary, entry.Patterns.Vocabulary) >= 2 {
			cmp.Gaps = append(cmp.Gaps, fmt.Sprintf("vocabulary is %s, benchmark leans %s", profile.Voice.Vocabulary, entry.Patterns.Vocabulary))
			cmp.Recommendation = append(cmp.Recommendation, "shift vocabulary toward "+entry.Patterns.Vocabulary)
		} else {
			cmp.Strengths = append(cmp.Strengths, "vocabulary matches the niche")
		}

		checks++
		if profile.Voice.EmojiStyle != entry.Patterns.EmojiStyle && entry.Patterns.EmojiStyle != "" {
			cmp.Gaps = append(cmp.Gaps, fmt.Sprintf("emoji style is %s, benchmark is %s", profile.Voice.EmojiStyle, entry.Patterns.EmojiStyle))
		} else {
			cmp.Strengths = append(cmp.Strengths, "emoji usage matches the niche")
		}
	}

	if len(records) > 0 && len(entry.Patterns.PeakHours) > 0 {
		checks++
		userHours := map[int]int{}
		for _, r := range records {
			userHours[r.PostedAt.Hour()]++
		}
		overlap := false
		for _, h := range entry.Patterns.PeakHours {
			if userHours[h] > 0 {
				overlap = true
				break
			}
		}
		if !overlap {
			cmp.Gaps = append(cmp.Gaps, fmt.Sprintf("not posting during peak hours %v", entry.Patterns.PeakHours))
			cmp.Recommendation = append(cmp.Recommendation, fmt.Sprintf("schedule posts around hours %v", entry.Patterns.PeakHours))
		} else {
			cmp.Strengths = append(cmp.Strengths, "posting during benchmark peak hours")
		}
	}

	if checks > 0 {
		cmp.AlignmentScore = 100 * (1 - float64(len(cmp.Gaps))/float64(checks))
	} else {
		cmp.AlignmentScore = 100
	}
	cmp.AlignmentScore = math.Max(0, cmp.AlignmentScore)
	return cmp, nil
}

// parseMetric parses counts like "12,400", "1.2K", "5M", or "1B".
func parseMetric(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty metric")
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'K':
		mult = 1e3
		s = s[:len(s)-1]
	case 'M':
		mult = 1e6
		s = s[:len(s)-1]
	case 'B':
		mult = 1e9
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable metric %q", s)
	}
	return int(v * mult), nil
}

func normalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}

func vocabularyDistance(a, b string) int {
	ia, ib := -1, -1
	for i, v := range vocabularyOrder {
		if v == a {
			ia = i
		}
		if v == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0
	}
	if ia > ib {
		return ia - ib
	}
	return ib - ia
}

func gradeVocabulary(content string) string {
	avg := avgWordLength(strings.Fields(content))
	switch {
	case avg < 4.5:
		return "simple"
	case avg < 5.5:
		return "moderate"
	case avg < 6.5:
		return "professional"
	}
	return "advanced"
}

func gradeTone(content string) string {
	lowered := strings.ToLower(content)
	for _, m := range casualMarkers {
		if strings.Contains(lowered, m) {
			return "casual"
		}
	}
	hits := 0
	for _, m := range professionalMarkers {
		if strings.Contains(lowered, m) {
			hits++
		}
	}
	if hits >= 2 {
		return "professional"
	}
	return "neutral"
}

func gradeEmojiStyle(content string) string {
	switch n := countEmoji(content); {
	case n == 0:
		return "none"
	case n <= 2:
		return "minimal"
	default:
		return "heavy"
	}
}

func median(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// mode returns the most common value, ties broken alphabetically.
func mode(votes []string) string {
	counts := map[string]int{}
	for _, v := range votes {
		counts[v]++
	}
	best, bestCount := "", 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func topHours(counts map[int]int, n int) []int {
	type hc struct{ hour, count int }
	var all []hc
	for h, c := range counts {
		all = append(all, hc{h, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].hour < all[j].hour
	})
	var out []int
	for i := 0; i < len(all) && i < n; i++ {
		out = append(out, all[i].hour)
	}
	return out
}

func topCounts(counts map[string]int, n int) []string {
	type sc struct {
		key   string
		count int
	}
	var all []sc
	for k, c := range counts {
		all = append(all, sc{k, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].key < all[j].key
	})
	var out []string
	for i := 0; i < len(all) && i < n; i++ {
		out = append(out, all[i].key)
	}
	return out
}
