package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGenerator struct{}

func (failingGenerator) Generate(*DraftRequest) ([]DraftCandidate, error) {
	return nil, &GenerationError{Err: errors.New("api unreachable")}
}

type cannedGenerator struct{ candidates []DraftCandidate }

func (c cannedGenerator) Generate(*DraftRequest) ([]DraftCandidate, error) {
	return c.candidates, nil
}

func replyRequest(count int) *DraftRequest {
	return &DraftRequest{
		PostContent: "What happens when dealers flip short gamma at 5900?",
		PostAuthor:  "@spotgamma",
		Platform:    PlatformTwitter,
		Kind:        DraftReply,
		Count:       count,
		Profile:     testProfile(),
	}
}

func TestNewLLMGeneratorRequiresKey(t *testing.T) {
	_, err := NewLLMGenerator("", testSettings(), testLogger())
	assert.True(t, errors.Is(err, ErrGenerationUnavailable))
}

func TestTemplateGeneratorCountAndPlaceholders(t *testing.T) {
	g := NewTemplateGenerator()

	for _, count := range []int{1, 3, 7} {
		candidates, err := g.Generate(replyRequest(count))
		require.NoError(t, err)
		require.Len(t, candidates, count)
		for _, c := range candidates {
			assert.NotContains(t, c.Text, "{{.")
			assert.NotEmpty(t, c.Strategy)
			assert.NotEmpty(t, c.Why)
		}
	}
}

func TestTemplateGeneratorDefaultsCount(t *testing.T) {
	g := NewTemplateGenerator()
	candidates, err := g.Generate(replyRequest(0))
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestTemplateGeneratorAnswersQuestions(t *testing.T) {
	g := NewTemplateGenerator()
	candidates, err := g.Generate(replyRequest(1))
	require.NoError(t, err)
	assert.Equal(t, "answer", candidates[0].Strategy)
}

func TestSuggestReplyTypes(t *testing.T) {
	tests := []struct {
		hook  HookType
		first string
	}{
		{HookQuestion, "answer"},
		{HookData, "insight"},
		{HookContrarian, "nuance"},
		{HookBoldClaim, "nuance"},
		{HookNone, "agree"},
	}
	for _, tt := range tests {
		got := suggestReplyTypes(&ContentAnalysis{HookType: tt.hook})
		assert.Equal(t, tt.first, got[0], string(tt.hook))
	}
}

func TestApplyVoiceStyle(t *testing.T) {
	formal := testProfile()
	formal.Voice.Formality = 1
	assert.Equal(t, "do not fade it, it is real", applyVoiceStyle("don't fade it, it's real", formal))

	noEmoji := testProfile()
	noEmoji.Voice.EmojiStyle = "none"
	assert.Equal(t, "to the levels", applyVoiceStyle("to the levels 🚀", noEmoji))

	assert.Equal(t, "don't fade it", applyVoiceStyle("don't fade it", nil))
}

func TestTargetWords(t *testing.T) {
	// Twitter replies span 70-100 chars.
	assert.Equal(t, 17, targetWords(PlatformTwitter, DraftReply))
	// LinkedIn posts span 1200-1500 chars.
	assert.Equal(t, 270, targetWords(PlatformLinkedIn, DraftPost))
}

func TestAdjustLengthTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := adjustLength(long, 10, "gamma", nil, 0)
	assert.Len(t, strings.Fields(got), 10)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestAdjustLengthPads(t *testing.T) {
	got := adjustLength("Short.", 15, "gamma", testProfile(), 0)
	assert.GreaterOrEqual(t, len(strings.Fields(got)), 15-3)
}

func TestBuildSystemPromptFillsTemplate(t *testing.T) {
	req := replyRequest(3)
	req.Benchmark = &BenchmarkEntry{}
	req.Benchmark.Metrics.PostCount = 2
	req.Benchmark.Patterns.OptimalLength = OptimalLength{MinWords: 7, MaxWords: 12, AvgWords: 9.5}
	req.Benchmark.Patterns.PeakHours = []int{9, 14}
	req.Benchmark.Patterns.Hooks = map[HookType]int{HookQuestion: 3}

	prompt := buildSystemPrompt(req)
	assert.NotContains(t, prompt, "{{.")
	assert.Contains(t, prompt, "professional")
	assert.Contains(t, prompt, "7-12 (avg 10)")
	assert.Contains(t, prompt, "question (3)")
	assert.Contains(t, prompt, "twitter")
}

func TestBuildUserPrompt(t *testing.T) {
	reply := buildUserPrompt(replyRequest(2))
	assert.Contains(t, reply, "@spotgamma")
	assert.Contains(t, reply, "between 70 and 100 characters")

	post := buildUserPrompt(&DraftRequest{
		Topic:    "dealer positioning into opex",
		Platform: PlatformTwitter,
		Kind:     DraftPost,
		Count:    1,
		Profile:  testProfile(),
	})
	assert.Contains(t, post, "dealer positioning into opex")
	assert.Contains(t, post, "between 200 and 280 characters")
}

func TestDrafterFallsBackOnError(t *testing.T) {
	d := NewDrafter(failingGenerator{}, testLogger())

	scored, err := d.Draft(replyRequest(3))
	require.NoError(t, err)
	require.Len(t, scored, 3)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Scores.Composite, scored[i].Scores.Composite)
	}
}

func TestDrafterTopsUpShortResponses(t *testing.T) {
	canned := cannedGenerator{candidates: []DraftCandidate{
		{Text: "Only one idea from the model.", Strategy: "insight", Why: "model"},
	}}
	d := NewDrafter(canned, testLogger())

	scored, err := d.Draft(replyRequest(3))
	require.NoError(t, err)
	assert.Len(t, scored, 3)
}

func TestDrafterTruncatesExtras(t *testing.T) {
	canned := cannedGenerator{candidates: []DraftCandidate{
		{Text: "one"}, {Text: "two"}, {Text: "three"}, {Text: "four"},
	}}
	d := NewDrafter(canned, testLogger())

	scored, err := d.Draft(replyRequest(2))
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestDrafterWorksWithoutModel(t *testing.T) {
	d := NewDrafter(nil, testLogger())
	scored, err := d.Draft(replyRequest(2))
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestExtractTopicsDeterministic(t *testing.T) {
	topics := extractTopics("Dealer gamma hedging with heavy options flow #opex")
	assert.Equal(t, []string{"flow", "gamma", "options", "opex"}, topics)
	assert.Empty(t, extractTopics("nothing relevant here"))
}

func TestDetectSentiment(t *testing.T) {
	assert.Equal(t, "bullish", detectSentiment("breakout looks real, calls bid"))
	assert.Equal(t, "bearish", detectSentiment("selloff continues, puts printing"))
	assert.Equal(t, "neutral", detectSentiment("the range holds for now"))
}
