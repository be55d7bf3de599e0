package main

import (
	"fmt"
	"regexp"
	"strings"
)

// Analyzer extracts the structural features of a post: hook, framework,
// emotional triggers, specificity, authority signals, and platform fit.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// hookPattern pairs a hook type with the regexes that identify it.
// Order matters: the first type with a matching pattern wins.
type hookPattern struct {
	hook     HookType
	patterns []*regexp.Regexp
}

var hookPatterns = []hookPattern{
	{HookQuestion, []*regexp.Regexp{
		regexp.MustCompile(`^\s*[A-Z].*\?`),
		regexp.MustCompile(`(?i)^(What|Why|How|When|Where|Who|Which|Do you|Have you|Did you)\b`),
	}},
	{HookContrarian, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(unpopular opinion|hot take|controversial)`),
		regexp.MustCompile(`(?i)(everyone is wrong|everybody gets this wrong|nobody talks about)`),
		regexp.MustCompile(`(?i)^(Stop|Quit|Don't|Never)\b`),
	}},
	{HookData, []*regexp.Regexp{
		regexp.MustCompile(`\d+%`),
		regexp.MustCompile(`\$[\d,]+`),
		regexp.MustCompile(`\b\d+x\b`),
		regexp.MustCompile(`(?i)(data shows|research shows|study finds|according to)`),
	}},
	{HookStory, []*regexp.Regexp{
		regexp.MustCompile(`^(I |My |We |Our |Last |Yesterday |Today |When I)`),
		regexp.MustCompile(`(?i)(years ago|learned|realized|discovered that)`),
	}},
	{HookCallout, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(@\w+|^Hey |^Attention |^To all|^For everyone)`),
		regexp.MustCompile(`(?i)(if you're a|for those who)`),
	}},
	{HookBoldClaim, []*regexp.Regexp{
		regexp.MustCompile(`^(This is|The |Here's|There's)`),
		regexp.MustCompile(`(?i)(will change|game-changer|the secret|the truth)`),
		regexp.MustCompile(`(?i)(most people|99% (of people )?don't)`),
	}},
	{HookHowTo, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(How to|How I|Here's how|Step)\b`),
		regexp.MustCompile(`(?i)\d+ (ways|steps|tips|tricks|secrets)`),
	}},
	{HookList, []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\d+[\.\)]`),
		regexp.MustCompile(`(?i)(\d+ things|thread|breakdown)`),
	}},
}

var triggerPatterns = map[Trigger][]*regexp.Regexp{
	TriggerFear: {
		regexp.MustCompile(`\b(warning|danger|risk|mistake|avoid|never|fail|lose|crash)\b`),
	},
	TriggerGreed: {
		regexp.MustCompile(`\b(profit|gain|money|wealth|rich|income|revenue)\b`),
		regexp.MustCompile(`\$[\d,]+|\d+x\b|\d+% return`),
	},
	TriggerCuriosity: {
		regexp.MustCompile(`\b(secret|hidden|revealed|discover|surprising|unexpected)\b`),
		regexp.MustCompile(`what actually|real reason|truth about`),
	},
	TriggerFOMO: {
		regexp.MustCompile(`\b(limited|exclusive|only \d+|last chance|ending soon)\b`),
		regexp.MustCompile(`don't miss|before it's|while you can`),
	},
	TriggerValidation: {
		regexp.MustCompile(`you're right|i agree|exactly|this is why`),
		regexp.MustCompile(`smart people|successful|winners|top \d+%`),
	},
	TriggerUrgency: {
		regexp.MustCompile(`\b(now|today|immediately|right now|asap)\b`),
		regexp.MustCompile(`\b(deadline|expires|ends|last)\b`),
	},
	TriggerExclusivity: {
		regexp.MustCompile(`\b(insider|exclusive|only for|members only)\b`),
		regexp.MustCompile(`few know|not many`),
	},
}

// triggerOrder keeps trigger output deterministic.
var triggerOrder = []Trigger{
	TriggerFear, TriggerGreed, TriggerCuriosity, TriggerFOMO,
	TriggerValidation, TriggerUrgency, TriggerExclusivity,
}

var authorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\+? years? (of )?(experience|trading|investing|building)`),
	regexp.MustCompile(`(?i)(worked at|worked with|worked for) [\w\s]+`),
	regexp.MustCompile(`(?i)\b(research|study|data|analysis) (shows|finds|suggests|indicates)`),
	regexp.MustCompile(`(?i)\b(expert|specialist|professional) in\b`),
	regexp.MustCompile(`(?i)\b(built|created|founded|launched) [\w\s]+`),
	regexp.MustCompile(`(?i)\d+\+? (clients|customers|companies)`),
	regexp.MustCompile(`(?i)\$\d+[MBK]|\d+[MBK]\+? (users|followers|revenue)`),
}

var (
	numberPattern   = regexp.MustCompile(`\d+`)
	dataPattern     = regexp.MustCompile(`(?i)(\d+%|\$[\d,]+|data|research|study)`)
	examplesPattern = regexp.MustCompile(`(?i)(for example|e\.g\.|such as|like when)`)
	mentionPattern  = regexp.MustCompile(`@\w+|\$[A-Z]{1,5}\b`)
	threadPattern   = regexp.MustCompile(`(?i)thread|🧵|\d+/\d+`)
	numberedLine    = regexp.MustCompile(`(?m)^\d+[\.\)]`)
	carouselPattern = regexp.MustCompile(`(?i)swipe|slide \d+|carousel`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	hashtagPattern  = regexp.MustCompile(`#\w+`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+\s+`)
)

// Analyze breaks content into its structural features for a platform.
// Empty content yields a neutral analysis rather than an error.
func (a *Analyzer) Analyze(content string, platform Platform) *ContentAnalysis {
	analysis := &ContentAnalysis{
		Content:     content,
		Platform:    platform,
		Framework:   FrameworkSingle,
		Specificity: SpecificityVague,
	}
	if strings.TrimSpace(content) == "" {
		analysis.Weaknesses = []string{"No content to analyze"}
		return analysis
	}

	analysis.WordCount = len(strings.Fields(content))
	analysis.CharCount = len(content)
	analysis.SentenceCount = countSentences(content)
	analysis.LineCount = len(strings.Split(strings.TrimSpace(content), "\n"))

	analysis.HookType, analysis.HookText = detectHook(content)
	analysis.Framework = detectFramework(content)
	analysis.Triggers = detectTriggers(content)
	analysis.HasNumbers = numberPattern.MatchString(content)
	analysis.HasData = dataPattern.MatchString(content)
	analysis.HasExamples = examplesPattern.MatchString(content)
	analysis.Specificity = gradeSpecificity(analysis, content)
	analysis.AuthoritySignals = detectAuthority(content)
	analysis.PlatformScore, analysis.PlatformIssues = platformFit(content, platform)

	analysis.Techniques = collectTechniques(analysis)
	analysis.Strengths, analysis.Weaknesses = evaluate(analysis)
	return analysis
}

func countSentences(content string) int {
	parts := sentenceSplit.Split(strings.TrimSpace(content), -1)
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// detectHook returns the first matching hook type in priority order,
// together with the opening text that carries it.
func detectHook(content string) (HookType, string) {
	hook := HookNone
	for _, hp := range hookPatterns {
		for _, re := range hp.patterns {
			if re.MatchString(content) {
				hook = hp.hook
				break
			}
		}
		if hook != HookNone {
			break
		}
	}
	return hook, hookText(content)
}

// hookText is the first line when it is short enough, otherwise the
// first sentence, capped at 100 characters.
func hookText(content string) string {
	firstLine := strings.TrimSpace(strings.SplitN(strings.TrimSpace(content), "\n", 2)[0])
	text := firstLine
	if len(firstLine) > 100 {
		sentences := sentenceSplit.Split(firstLine, 2)
		text = strings.TrimSpace(sentences[0])
	}
	if len(text) > 100 {
		text = text[:100]
	}
	return text
}

func detectFramework(content string) Framework {
	trimmed := strings.TrimSpace(content)
	switch {
	case threadPattern.MatchString(content) || numberedLine.MatchString(content):
		return FrameworkThread
	case strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "“"):
		return FrameworkQuoteTweet
	case strings.HasPrefix(trimmed, "@"):
		return FrameworkReply
	case carouselPattern.MatchString(content):
		return FrameworkCarousel
	}
	return FrameworkSingle
}

func detectTriggers(content string) []Trigger {
	lowered := strings.ToLower(content)
	var found []Trigger
	for _, trigger := range triggerOrder {
		for _, re := range triggerPatterns[trigger] {
			if re.MatchString(lowered) {
				found = append(found, trigger)
				break
			}
		}
	}
	return found
}

func gradeSpecificity(a *ContentAnalysis, content string) Specificity {
	score := 0
	if a.HasNumbers {
		score++
	}
	if a.HasData {
		score++
	}
	if a.HasExamples {
		score++
	}
	if mentionPattern.MatchString(content) {
		score++
	}
	switch {
	case score >= 3:
		return SpecificityConcrete
	case score >= 1:
		return SpecificityModerate
	}
	return SpecificityVague
}

func detectAuthority(content string) []string {
	var signals []string
	seen := map[string]bool{}
	for _, re := range authorityPatterns {
		for _, m := range re.FindAllString(content, -1) {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			signals = append(signals, m)
			if len(signals) >= 5 {
				return signals
			}
		}
	}
	return signals
}

// platformFit scores how well content fits a platform's norms, starting
// from 100 and deducting per issue.
func platformFit(content string, platform Platform) (float64, []string) {
	score := 100.0
	var issues []string
	chars := len(content)

	switch platform {
	case PlatformTwitter:
		if chars > 280 {
			score -= 30
			issues = append(issues, fmt.Sprintf("exceeds 280 character limit (%d)", chars))
		}
		if chars < 70 {
			score -= 10
			issues = append(issues, "too short to carry an idea")
		}
	case PlatformLinkedIn:
		if chars < 600 {
			score -= 15
			issues = append(issues, "short for linkedin, consider expanding")
		}
		if !strings.Contains(content, "\n") {
			score -= 10
			issues = append(issues, "no line breaks, hard to read")
		}
		if urlPattern.MatchString(content) {
			score -= 20
			issues = append(issues, "external link suppresses reach")
		}
	case PlatformInstagram:
		hashtags := len(hashtagPattern.FindAllString(content, -1))
		if hashtags < 5 {
			score -= 10
			issues = append(issues, "fewer than 5 hashtags")
		} else if hashtags > 15 {
			score -= 10
			issues = append(issues, "more than 15 hashtags")
		}
	}

	if score < 0 {
		score = 0
	}
	return score, issues
}

func collectTechniques(a *ContentAnalysis) []string {
	var techniques []string
	if a.HookType != HookNone {
		techniques = append(techniques, "hook:"+string(a.HookType))
	}
	techniques = append(techniques, "framework:"+string(a.Framework))
	for _, t := range a.Triggers {
		techniques = append(techniques, "trigger:"+string(t))
	}
	techniques = append(techniques, "specificity:"+string(a.Specificity))
	if len(a.AuthoritySignals) > 0 {
		techniques = append(techniques, "authority_signals")
	}
	return techniques
}

func evaluate(a *ContentAnalysis) (strengths, weaknesses []string) {
	if a.HookType != HookNone {
		strengths = append(strengths, fmt.Sprintf("Uses a %s hook", a.HookType))
	} else {
		weaknesses = append(weaknesses, "No clear hook in the opening")
	}

	if a.Specificity == SpecificityConcrete {
		strengths = append(strengths, "Concrete and specific")
	} else if a.Specificity == SpecificityVague {
		weaknesses = append(weaknesses, "Too vague, add numbers or examples")
	}

	if len(a.AuthoritySignals) > 0 {
		strengths = append(strengths, "Establishes credibility")
	}

	if len(a.Triggers) > 0 {
		strengths = append(strengths, fmt.Sprintf("Taps %d emotional trigger(s)", len(a.Triggers)))
	} else {
		weaknesses = append(weaknesses, "No emotional triggers")
	}

	weaknesses = append(weaknesses, a.PlatformIssues...)
	return strengths, weaknesses
}
