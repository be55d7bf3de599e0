package main

import "strings"

// LengthRange is an inclusive character or count range.
type LengthRange struct {
	Min int
	Max int
}

// Contains reports whether n falls inside the range.
func (r LengthRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// PlatformRules are the dos and don'ts rendered into generation prompts.
type PlatformRules struct {
	Do   []string
	Dont []string
	Tips []string
}

// PlatformConfig encodes per-platform content rules and optimal ranges.
type PlatformConfig struct {
	PostLength  LengthRange // chars
	ReplyLength LengthRange // chars

	UseLineBreaks        bool
	AvoidExternalLinks   bool
	QuoteTweetsPreferred bool
	CarouselsPreferred   bool
	HashtagsAtEnd        bool
	HashtagRange         LengthRange // count, instagram only

	Strategy string
	Rules    PlatformRules
}

var platformConfigs = map[Platform]PlatformConfig{
	PlatformTwitter: {
		PostLength:           LengthRange{Min: 200, Max: 280},
		ReplyLength:          LengthRange{Min: 70, Max: 100},
		QuoteTweetsPreferred: true,
		Strategy:             "Fast, short, insight not praise",
		Rules: PlatformRules{
			Do: []string{
				"Hook in the first 5 words",
				"One idea per tweet",
				"Reply fast to high-velocity posts",
				"Use threads for complex topics",
			},
			Dont: []string{
				"No links in replies",
				"Don't open with an @ mention",
				"Don't over-hashtag (1-2 max)",
			},
			Tips: []string{
				"Contrarian takes outperform agreement",
				"Data-driven posts outperform opinion posts",
			},
		},
	},
	PlatformLinkedIn: {
		PostLength:         LengthRange{Min: 1200, Max: 1500},
		ReplyLength:        LengthRange{Min: 100, Max: 300},
		UseLineBreaks:      true,
		AvoidExternalLinks: true,
		Strategy:           "Depth over speed, 3-5 sentences, ask questions",
		Rules: PlatformRules{
			Do: []string{
				"First line carries the post",
				"Use line breaks for readability",
				"Personal stories win",
				"End with a question",
			},
			Dont: []string{
				"No external links in the body",
				"Avoid walls of text",
			},
			Tips: []string{
				"Comments within the first hour drive distribution",
			},
		},
	},
	PlatformInstagram: {
		PostLength:         LengthRange{Min: 150, Max: 2200},
		ReplyLength:        LengthRange{Min: 20, Max: 50},
		CarouselsPreferred: true,
		HashtagsAtEnd:      true,
		HashtagRange:       LengthRange{Min: 5, Max: 15},
		Strategy:           "Very short, genuine, relationship-focused",
		Rules: PlatformRules{
			Do: []string{
				"First slide is the hook",
				"Hashtags at the end of the caption",
			},
			Dont: []string{
				"Don't stuff hashtags into the body",
			},
			Tips: []string{
				"Carousels outperform single images",
			},
		},
	},
}

// PlatformConfigFor returns the config for a platform. Unknown platforms
// fall back to twitter rules.
func PlatformConfigFor(p Platform) PlatformConfig {
	if c, ok := platformConfigs[p]; ok {
		return c
	}
	return platformConfigs[PlatformTwitter]
}

// PromptRules renders the dos and don'ts for a system prompt.
func (c PlatformConfig) PromptRules() string {
	var b strings.Builder
	for _, d := range c.Rules.Do {
		b.WriteString("DO: " + d + "\n")
	}
	for _, d := range c.Rules.Dont {
		b.WriteString("DON'T: " + d + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// GoalConfig describes what a growth goal optimizes for.
type GoalConfig struct {
	OptimizeFor        string
	Metrics            []string
	ContentFocus       string
	EngagementPriority []string
}

var goalConfigs = map[Goal]GoalConfig{
	GoalGrowFollowers: {
		OptimizeFor:        "shares",
		Metrics:            []string{"retweets", "shares", "follower_growth"},
		ContentFocus:       "Shareable insights, contrarian takes, data visualizations",
		EngagementPriority: []string{"retweets", "quotes", "replies"},
	},
	GoalDriveTraffic: {
		OptimizeFor:        "clicks",
		Metrics:            []string{"link_clicks", "profile_visits", "website_traffic"},
		ContentFocus:       "Curiosity gaps, clear CTAs, value teasers",
		EngagementPriority: []string{"clicks", "saves", "shares"},
	},
	GoalBuildAuthority: {
		OptimizeFor:        "thoughtful_engagement",
		Metrics:            []string{"quality_replies", "mentions", "quote_tweets"},
		ContentFocus:       "Deep analysis, original research, unique perspectives",
		EngagementPriority: []string{"quality_replies", "saves", "quotes"},
	},
}

// GoalConfigFor returns the config for a goal, defaulting to follower
// growth.
func GoalConfigFor(g Goal) GoalConfig {
	if c, ok := goalConfigs[g]; ok {
		return c
	}
	return goalConfigs[GoalGrowFollowers]
}
