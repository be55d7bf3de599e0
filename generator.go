package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/sirupsen/logrus"
)

// DraftKind distinguishes standalone posts from replies.
type DraftKind string

const (
	DraftReply DraftKind = "reply"
	DraftPost  DraftKind = "post"
)

// DraftRequest describes what to generate.
type DraftRequest struct {
	PostContent string
	PostAuthor  string
	Topic       string
	Platform    Platform
	Kind        DraftKind
	Count       int
	Profile     *VoiceProfile
	Benchmark   *BenchmarkEntry
}

// DraftCandidate is one generated option with its strategy label.
type DraftCandidate struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
	Why      string `json:"why"`
}

// TextGenerator produces draft candidates for a request.
type TextGenerator interface {
	Generate(req *DraftRequest) ([]DraftCandidate, error)
}

// LLMGenerator drafts content through the Anthropic API using the
// user's voice profile as the system prompt.
type LLMGenerator struct {
	apiKey   string
	settings *Settings
	log      *logrus.Logger
}

func NewLLMGenerator(apiKey string, settings *Settings, log *logrus.Logger) (*LLMGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: %w", ErrGenerationUnavailable)
	}
	return &LLMGenerator{apiKey: apiKey, settings: settings, log: log}, nil
}

// Generate asks the model for req.Count candidates with distinct
// strategies, using structured output.
func (g *LLMGenerator) Generate(req *DraftRequest) ([]DraftCandidate, error) {
	systemPrompt := buildSystemPrompt(req)
	userPrompt := buildUserPrompt(req)

	settings := types.RequestSettings{
		Model:       g.settings.Generator.Model,
		MaxTokens:   g.settings.Generator.MaxTokens,
		Temperature: g.settings.Generator.Temperature,
	}
	response, err := anthropic.PromptWithSettings(systemPrompt, userPrompt, draftOutputSchema, g.apiKey, settings)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if len(response.Content) == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("empty model response")}
	}

	var parsed struct {
		Candidates []DraftCandidate `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(response.Content[0].Text), &parsed); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("parsing structured response: %w", err)}
	}
	if len(parsed.Candidates) == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("model returned no candidates")}
	}
	return parsed.Candidates, nil
}

// buildSystemPrompt fills the embedded template with the profile,
// benchmark, platform, and goal context.
func buildSystemPrompt(req *DraftRequest) string {
	p := req.Profile
	cfg := PlatformConfigFor(req.Platform)
	goal := GoalConfigFor(p.Goal)

	proven := "None recorded yet."
	if n := len(p.ProvenPatterns); n > 0 {
		var lines []string
		start := 0
		if n > 5 {
			start = n - 5
		}
		for _, pat := range p.ProvenPatterns[start:] {
			lines = append(lines, fmt.Sprintf("- %s: %s (score %.2f)", pat.Kind, pat.Value, pat.Score))
		}
		proven = strings.Join(lines, "\n")
	}

	optimalLength := strconv.Itoa(defaultTargetWords)
	peakHours := "unknown"
	topTopics := "unknown"
	hooks := "unknown"
	if b := req.Benchmark; b != nil && b.Metrics.PostCount > 0 {
		ol := b.Patterns.OptimalLength
		optimalLength = fmt.Sprintf("%d-%d (avg %.0f)", ol.MinWords, ol.MaxWords, ol.AvgWords)
		peakHours = joinInts(b.Patterns.PeakHours)
		topTopics = strings.Join(b.Patterns.TopTopics, ", ")
		hooks = joinHooks(b.Patterns.Hooks)
	}

	replacements := map[string]string{
		"{{.tone}}":              p.Voice.Tone,
		"{{.formality}}":         strconv.Itoa(p.Voice.Formality),
		"{{.vocabulary}}":        p.Voice.Vocabulary,
		"{{.emoji_style}}":       p.Voice.EmojiStyle,
		"{{.signature_phrases}}": bulleted(p.Voice.SignaturePhrases, "None"),
		"{{.avoided_phrases}}":   bulleted(p.Voice.AvoidedPhrases, "None"),
		"{{.proven_patterns}}":   proven,
		"{{.optimal_length}}":    optimalLength,
		"{{.peak_hours}}":        peakHours,
		"{{.top_topics}}":        topTopics,
		"{{.hooks}}":             hooks,
		"{{.platform}}":          string(req.Platform),
		"{{.platform_strategy}}": cfg.Strategy,
		"{{.platform_rules}}":    cfg.PromptRules(),
		"{{.goal}}":              string(p.Goal),
		"{{.goal_focus}}":        goal.ContentFocus,
	}

	prompt := draftSystemPromptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}
	return prompt
}

func buildUserPrompt(req *DraftRequest) string {
	bounds := PlatformConfigFor(req.Platform).ReplyLength
	if req.Kind == DraftPost {
		bounds = PlatformConfigFor(req.Platform).PostLength
	}

	if req.Kind == DraftPost {
		return fmt.Sprintf(
			"Write %d original %s post(s) about: %s\n\nEach must use a different strategy and stay between %d and %d characters.",
			req.Count, req.Platform, req.Topic, bounds.Min, bounds.Max)
	}
	return fmt.Sprintf(
		"Write %d reply candidate(s) to this %s post by %s:\n\n%s\n\nEach must use a different strategy and stay between %d and %d characters.",
		req.Count, req.Platform, req.PostAuthor, req.PostContent, bounds.Min, bounds.Max)
}

func bulleted(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return "- " + strings.Join(items, "\n- ")
}

func joinInts(nums []int) string {
	if len(nums) == 0 {
		return "unknown"
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func joinHooks(hooks map[HookType]int) string {
	if len(hooks) == 0 {
		return "unknown"
	}
	type hk struct {
		hook  HookType
		count int
	}
	var all []hk
	for h, c := range hooks {
		all = append(all, hk{h, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].hook < all[j].hook
	})
	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = fmt.Sprintf("%s (%d)", h.hook, h.count)
	}
	return strings.Join(parts, ", ")
}

// Topic keyword map shared by the template generator, the scanner, and
// benchmark pattern extraction.
var topicKeywords = map[string][]string{
	"options":    {"options", "calls", "puts", "strike", "expiry", "0dte"},
	"gamma":      {"gamma", "dealer", "hedging", "pinning"},
	"flow":       {"flow", "volume", "sweep", "block"},
	"technicals": {"support", "resistance", "breakout", "trend", "levels"},
	"volatility": {"volatility", "vix", "iv crush", "implied vol"},
	"market":     {"market", "spx", "spy", "stocks", "rally", "selloff"},
}

// extractTopics returns topics detected in content, hashtags included.
func extractTopics(content string) []string {
	lowered := strings.ToLower(content)
	seen := map[string]bool{}
	var topics []string

	var names []string
	for name := range topicKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, kw := range topicKeywords[name] {
			if strings.Contains(lowered, kw) {
				if !seen[name] {
					seen[name] = true
					topics = append(topics, name)
				}
				break
			}
		}
	}

	for _, tag := range hashtagPattern.FindAllString(lowered, -1) {
		tag = strings.TrimPrefix(tag, "#")
		if !seen[tag] {
			seen[tag] = true
			topics = append(topics, tag)
		}
	}
	return topics
}

var bullishWords = []string{"bullish", "rally", "breakout", "upside", "calls", "long", "squeeze"}
var bearishWords = []string{"bearish", "crash", "selloff", "downside", "puts", "short", "dump"}

func detectSentiment(content string) string {
	lowered := strings.ToLower(content)
	bull, bear := 0, 0
	for _, w := range bullishWords {
		if strings.Contains(lowered, w) {
			bull++
		}
	}
	for _, w := range bearishWords {
		if strings.Contains(lowered, w) {
			bear++
		}
	}
	switch {
	case bull > bear:
		return "bullish"
	case bear > bull:
		return "bearish"
	}
	return "neutral"
}

// Reply templates by type. Placeholders are filled from the banks below.
var replyTemplates = map[string][]string{
	"agree": {
		"This is the right read. {{.insight}}",
		"Exactly. {{.insight}} {{.follow_up}}",
		"Agree with this take on {{.topic}}. {{.insight}}",
		"Been seeing the same thing. {{.insight}}",
		"Spot on. {{.reason}}",
	},
	"insight": {
		"Worth adding: {{.insight}}",
		"The detail most people miss here: {{.nuance}}",
		"{{.insight}} That's what makes this {{.topic}} setup interesting.",
		"Key context on {{.topic}}: {{.insight}}",
		"{{.insight}} {{.follow_up}}",
	},
	"question": {
		"How does this change if {{.nuance}}?",
		"{{.follow_up}}",
		"Curious what you're watching for confirmation on the {{.topic}} side?",
		"Does this hold if {{.nuance}}?",
		"What's the invalidation level here?",
	},
	"nuance": {
		"Mostly agree, but {{.nuance}}",
		"One caveat: {{.nuance}}",
		"True in general, though {{.nuance}}",
		"The {{.topic}} angle cuts both ways. {{.nuance}}",
		"Worth noting {{.nuance}} before leaning on this.",
	},
	"answer": {
		"My read: {{.insight}}",
		"Short answer: {{.insight}} {{.reason}}",
		"{{.insight}} At least that's how the {{.topic}} picture looks from here.",
		"Depends on positioning, but {{.insight}}",
		"{{.insight}}",
	},
}

var insightBank = map[string][]string{
	"bullish": {
		"dips keep getting bought, which says demand is real",
		"positioning looks light enough that upside can keep squeezing",
		"breadth improving under the surface supports the move",
	},
	"bearish": {
		"rallies keep getting sold into, which says supply is in control",
		"the bounce looks more like covering than fresh demand",
		"liquidity thins out fast below these levels",
	},
	"neutral": {
		"the range is doing the talking until a level breaks",
		"positioning matters more than direction here",
		"the reaction to the level tells you more than the level itself",
	},
}

var nuanceBank = []string{
	"timing matters more than direction here",
	"this flips quickly if positioning unwinds",
	"the sample size on that pattern is small",
	"liquidity conditions can invalidate the setup",
}

var reasonBank = []string{
	"The flow supports it.",
	"Positioning is stretched enough to matter.",
	"The levels have held every test so far.",
}

var followUpBank = []string{
	"What would change your mind?",
	"Watching the same level?",
	"How are you sizing around it?",
}

var transitionBank = []string{"That said,", "Worth noting:", "Either way,"}
var closerBank = []string{"Worth watching.", "Levels matter here.", "We'll know soon."}

// TemplateGenerator produces candidates from canned reply templates.
// It works offline and is the fallback when the API is unavailable.
type TemplateGenerator struct {
	analyzer *Analyzer
}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{analyzer: NewAnalyzer()}
}

// Generate fills templates chosen from the reply types that fit the
// source post, then adjusts the result to the user's voice and the
// platform's length norms.
func (g *TemplateGenerator) Generate(req *DraftRequest) ([]DraftCandidate, error) {
	if req.Count <= 0 {
		req.Count = 3
	}
	source := req.PostContent
	if req.Kind == DraftPost {
		source = req.Topic
	}

	analysis := g.analyzer.Analyze(source, req.Platform)
	sentiment := detectSentiment(source)
	topic := "market"
	if topics := extractTopics(source); len(topics) > 0 {
		topic = topics[0]
	}

	replyTypes := suggestReplyTypes(analysis)
	candidates := make([]DraftCandidate, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		replyType := replyTypes[i%len(replyTypes)]
		templates := replyTemplates[replyType]
		text := templates[i%len(templates)]

		text = strings.ReplaceAll(text, "{{.topic}}", topic)
		text = strings.ReplaceAll(text, "{{.insight}}", pick(insightBank[sentiment], i))
		text = strings.ReplaceAll(text, "{{.nuance}}", pick(nuanceBank, i))
		text = strings.ReplaceAll(text, "{{.reason}}", pick(reasonBank, i))
		text = strings.ReplaceAll(text, "{{.follow_up}}", pick(followUpBank, i))

		text = applyVoiceStyle(text, req.Profile)
		text = adjustLength(text, targetWords(req.Platform, req.Kind), topic, req.Profile, i)

		candidates = append(candidates, DraftCandidate{
			Text:     text,
			Strategy: replyType,
			Why:      replyTypeRationale(replyType),
		})
	}
	return candidates, nil
}

// suggestReplyTypes orders reply strategies by fit with the source post.
func suggestReplyTypes(a *ContentAnalysis) []string {
	switch a.HookType {
	case HookQuestion:
		return []string{"answer", "insight", "question"}
	case HookData:
		return []string{"insight", "question", "nuance"}
	case HookContrarian:
		return []string{"nuance", "question", "agree"}
	case HookBoldClaim:
		return []string{"nuance", "insight", "question"}
	}
	return []string{"agree", "insight", "question"}
}

func replyTypeRationale(replyType string) string {
	switch replyType {
	case "agree":
		return "Alignment builds rapport with the author"
	case "insight":
		return "Adds value beyond the original post"
	case "question":
		return "Questions invite a response"
	case "nuance":
		return "A caveat signals independent thinking"
	case "answer":
		return "Directly answers the question asked"
	}
	return "Template strategy"
}

func pick(bank []string, i int) string {
	if len(bank) == 0 {
		return ""
	}
	return bank[i%len(bank)]
}

// applyVoiceStyle rewrites template output toward the profile's voice.
func applyVoiceStyle(text string, profile *VoiceProfile) string {
	if profile == nil {
		return text
	}
	if profile.Voice.Formality <= 2 {
		replacer := strings.NewReplacer(
			"don't", "do not",
			"can't", "cannot",
			"won't", "will not",
			"it's", "it is",
			"I'm", "I am",
			"that's", "that is",
		)
		text = replacer.Replace(text)
	}
	if profile.Voice.EmojiStyle == "none" {
		var b strings.Builder
		for _, r := range text {
			if r >= 0x1F300 && r <= 0x1FAFF || r >= 0x2600 && r <= 0x27BF {
				continue
			}
			b.WriteRune(r)
		}
		text = strings.TrimSpace(b.String())
	}
	return text
}

// targetWords derives a word target from the platform's character bounds.
func targetWords(platform Platform, kind DraftKind) int {
	cfg := PlatformConfigFor(platform)
	bounds := cfg.ReplyLength
	if kind == DraftPost {
		bounds = cfg.PostLength
	}
	words := (bounds.Min + bounds.Max) / 2 / 5
	if words < 8 {
		words = 8
	}
	return words
}

// adjustLength trims long output at a word boundary and pads short
// output with transitions, closers, and signature phrases.
func adjustLength(text string, target int, topic string, profile *VoiceProfile, i int) string {
	words := strings.Fields(text)

	if len(words) > target+5 {
		text = strings.Join(words[:target], " ")
		if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "?") && !strings.HasSuffix(text, "!") {
			text += "."
		}
		return text
	}

	for len(words) < target-3 {
		var addition string
		switch {
		case profile != nil && len(profile.Voice.SignaturePhrases) > 0 && len(words) < target-8:
			addition = pick(profile.Voice.SignaturePhrases, i)
		case len(words) < target-6:
			addition = pick(transitionBank, i) + " the " + topic + " picture is still developing."
		default:
			addition = pick(closerBank, i)
		}
		text = strings.TrimSpace(text) + " " + addition
		next := strings.Fields(text)
		if len(next) == len(words) {
			break
		}
		words = next
	}
	return text
}

// Drafter produces exactly the requested number of candidates, scoring
// each and falling back to templates when the model is unavailable.
type Drafter struct {
	llm      TextGenerator
	fallback *TemplateGenerator
	scorer   *Scorer
	log      *logrus.Logger
}

func NewDrafter(llm TextGenerator, log *logrus.Logger) *Drafter {
	return &Drafter{
		llm:      llm,
		fallback: NewTemplateGenerator(),
		scorer:   NewScorer(),
		log:      log,
	}
}

// ScoredCandidate pairs a candidate with its predicted performance.
type ScoredCandidate struct {
	DraftCandidate
	Scores Scores `json:"scores"`
}

// Draft generates, scores, and ranks candidates. It always returns
// exactly req.Count candidates, topping up from templates when the
// model returns fewer or fails.
func (d *Drafter) Draft(req *DraftRequest) ([]ScoredCandidate, error) {
	if req.Count <= 0 {
		req.Count = 3
	}

	var candidates []DraftCandidate
	if d.llm != nil {
		got, err := d.llm.Generate(req)
		if err != nil {
			d.log.WithError(err).Warn("model generation failed, falling back to templates")
		} else {
			candidates = got
		}
	}

	if len(candidates) < req.Count {
		need := req.Count - len(candidates)
		fallbackReq := *req
		fallbackReq.Count = need
		extra, err := d.fallback.Generate(&fallbackReq)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, extra...)
	}
	if len(candidates) > req.Count {
		candidates = candidates[:req.Count]
	}

	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredCandidate{
			DraftCandidate: c,
			Scores:         d.scorer.Score(c.Text, req.Profile, req.Benchmark),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Scores.Composite > scored[j].Scores.Composite
	})
	return scored, nil
}
