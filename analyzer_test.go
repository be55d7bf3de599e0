package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectHook(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    HookType
	}{
		{"question", "What if gamma flips below 5900?", HookQuestion},
		{"question word start", "how do dealers hedge this?", HookQuestion},
		{"contrarian", "Unpopular opinion: buybacks drive this market", HookContrarian},
		{"contrarian imperative", "Stop watching the VIX for direction", HookContrarian},
		{"data percent", "Funds lost 40% chasing this trade", HookData},
		{"data dollars", "$2,500,000 in premium traded in one print", HookData},
		{"story", "I blew up my first account in 2018", HookStory},
		{"story lookback", "Three years ago nobody priced dealer flows", HookStory},
		{"callout", "If you're a new options trader, read this", HookCallout},
		{"bold claim", "The secret nobody tells you about theta", HookBoldClaim},
		{"how to", "Step 1: pull the overnight flow", HookHowTo},
		{"list", "5 things the tape told us this week", HookList},
		{"lessons phrasing is not how_to", "5 lessons from a decade of options flow", HookNone},
		{"none", "just vibes today", HookNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook, _ := detectHook(tt.content)
			assert.Equal(t, tt.want, hook)
		})
	}
}

func TestHookPriorityOrder(t *testing.T) {
	// Matches both question and data patterns; question wins.
	hook, _ := detectHook("Why did 40% of traders miss this?")
	assert.Equal(t, HookQuestion, hook)
}

func TestHookText(t *testing.T) {
	short := "Short first line.\nSecond line here."
	_, text := detectHook(short)
	assert.Equal(t, "Short first line.", text)

	long := strings.Repeat("word ", 30) + ". Second sentence."
	_, text = detectHook(long)
	assert.LessOrEqual(t, len(text), 100)
}

func TestDetectFramework(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Framework
	}{
		{"thread marker", "A thread on dealer positioning 1/7", FrameworkThread},
		{"numbered", "1. First point\n2. Second point", FrameworkThread},
		{"reply", "@spotgamma great breakdown of the pin", FrameworkReply},
		{"carousel", "Swipe through for the full setup", FrameworkCarousel},
		{"single", "Dealers are short gamma below the strike", FrameworkSingle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFramework(tt.content))
		})
	}
}

func TestDetectTriggers(t *testing.T) {
	triggers := detectTriggers("Warning: this mistake will cost you money. Few know the hidden risk.")
	assert.Contains(t, triggers, TriggerFear)
	assert.Contains(t, triggers, TriggerCuriosity)
	assert.Contains(t, triggers, TriggerExclusivity)
	assert.NotContains(t, triggers, TriggerFOMO)
}

func TestAnalyzeSpecificity(t *testing.T) {
	a := NewAnalyzer()

	concrete := a.Analyze("SPX closed at 5900, up 1.2%. For example, $SPY calls printed $40,000 blocks per research data.", PlatformTwitter)
	assert.Equal(t, SpecificityConcrete, concrete.Specificity)

	moderate := a.Analyze("What if gamma flips below 5900?", PlatformTwitter)
	assert.Equal(t, SpecificityModerate, moderate.Specificity)
	assert.Equal(t, HookQuestion, moderate.HookType)
	assert.NotContains(t, moderate.Triggers, TriggerFOMO)

	vague := a.Analyze("interesting times in these markets lately", PlatformTwitter)
	assert.Equal(t, SpecificityVague, vague.Specificity)
}

func TestAnalyzeEmptyContent(t *testing.T) {
	a := NewAnalyzer()
	analysis := a.Analyze("   ", PlatformTwitter)
	assert.Equal(t, 0, analysis.WordCount)
	assert.Equal(t, HookNone, analysis.HookType)
	assert.Equal(t, FrameworkSingle, analysis.Framework)
	assert.NotEmpty(t, analysis.Weaknesses)
}

func TestDetectAuthority(t *testing.T) {
	signals := detectAuthority("10 years of experience trading options. Built a desk that served 200 clients.")
	assert.NotEmpty(t, signals)
	assert.LessOrEqual(t, len(signals), 5)
}

func TestPlatformFit(t *testing.T) {
	t.Run("twitter over limit", func(t *testing.T) {
		score, issues := platformFit(strings.Repeat("x", 300), PlatformTwitter)
		assert.Equal(t, 70.0, score)
		assert.Len(t, issues, 1)
	})

	t.Run("twitter short reply", func(t *testing.T) {
		score, _ := platformFit("too short", PlatformTwitter)
		assert.Equal(t, 90.0, score)
	})

	t.Run("linkedin wall of text with link", func(t *testing.T) {
		content := strings.Repeat("y", 650) + " https://example.com/post"
		score, issues := platformFit(content, PlatformLinkedIn)
		assert.Equal(t, 70.0, score) // no line breaks, external link
		assert.Len(t, issues, 2)
	})

	t.Run("instagram hashtag range", func(t *testing.T) {
		good := "caption #a #b #c #d #e"
		score, _ := platformFit(good, PlatformInstagram)
		assert.Equal(t, 100.0, score)

		score, _ = platformFit("caption #only", PlatformInstagram)
		assert.Equal(t, 90.0, score)
	})
}

func TestCollectTechniques(t *testing.T) {
	a := NewAnalyzer()
	analysis := a.Analyze("What happens when dealers flip short gamma at 5900?", PlatformTwitter)
	assert.Contains(t, analysis.Techniques, "hook:question")
	assert.Contains(t, analysis.Techniques, "framework:single")
	assert.Contains(t, analysis.Techniques, "specificity:moderate")
}
