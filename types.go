package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform identifies a supported social network.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
)

// ParsePlatform validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformTwitter, PlatformLinkedIn, PlatformInstagram:
		return p, nil
	}
	return "", &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", s)}
}

// HookType classifies the opening device of a post. The empty value means
// no recognizable hook.
type HookType string

const (
	HookNone       HookType = ""
	HookQuestion   HookType = "question"
	HookContrarian HookType = "contrarian"
	HookData       HookType = "data"
	HookStory      HookType = "story"
	HookCallout    HookType = "callout"
	HookBoldClaim  HookType = "bold_claim"
	HookHowTo      HookType = "how_to"
	HookList       HookType = "list"
)

// Framework classifies the structural format of a post.
type Framework string

const (
	FrameworkSingle     Framework = "single"
	FrameworkThread     Framework = "thread"
	FrameworkQuoteTweet Framework = "quote_tweet"
	FrameworkReply      Framework = "reply"
	FrameworkCarousel   Framework = "carousel"
)

// Trigger is an emotional trigger detected in content.
type Trigger string

const (
	TriggerFear        Trigger = "fear"
	TriggerGreed       Trigger = "greed"
	TriggerCuriosity   Trigger = "curiosity"
	TriggerFOMO        Trigger = "fomo"
	TriggerValidation  Trigger = "validation"
	TriggerUrgency     Trigger = "urgency"
	TriggerExclusivity Trigger = "exclusivity"
)

// Specificity grades how concrete a post is.
type Specificity string

const (
	SpecificityVague    Specificity = "vague"
	SpecificityModerate Specificity = "moderate"
	SpecificityConcrete Specificity = "concrete"
)

// QueueStatus is the lifecycle state of a queued item.
type QueueStatus string

const (
	QueuePending  QueueStatus = "pending"
	QueueApproved QueueStatus = "approved"
	QueuePosted   QueueStatus = "posted"
	QueueRejected QueueStatus = "rejected"
)

// TargetStatus is the lifecycle state of a follow target.
type TargetStatus string

const (
	TargetPending      TargetStatus = "pending"
	TargetFollowed     TargetStatus = "followed"
	TargetFollowedBack TargetStatus = "followed_back"
	TargetNoFollowback TargetStatus = "no_followback"
	TargetUnfollowed   TargetStatus = "unfollowed"
)

// ExperimentStatus is the lifecycle state of an A/B experiment.
type ExperimentStatus string

const (
	ExperimentDraft    ExperimentStatus = "draft"
	ExperimentRunning  ExperimentStatus = "running"
	ExperimentComplete ExperimentStatus = "complete"
	ExperimentAborted  ExperimentStatus = "aborted"
)

// Goal is what the user is optimizing their presence for.
type Goal string

const (
	GoalGrowFollowers  Goal = "grow_followers"
	GoalDriveTraffic   Goal = "drive_traffic"
	GoalBuildAuthority Goal = "build_authority"
)

// ParseGoal validates a goal name.
func ParseGoal(s string) (Goal, error) {
	g := Goal(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GoalGrowFollowers, GoalDriveTraffic, GoalBuildAuthority:
		return g, nil
	}
	return "", &ValidationError{Field: "goal", Reason: fmt.Sprintf("unknown goal %q", s)}
}

// newID returns a short unique identifier for records.
func newID() string {
	return uuid.NewString()[:8]
}

// VoiceTraits describes how a user writes.
type VoiceTraits struct {
	Tone             string   `json:"tone"`
	Formality        int      `json:"formality"` // 1 (formal) .. 5 (casual)
	Vocabulary       string   `json:"vocabulary"`
	EmojiStyle       string   `json:"emoji_style"`
	SignaturePhrases []string `json:"signature_phrases"`
	CommonOpeners    []string `json:"common_openers"`
	AvoidedPhrases   []string `json:"avoided_phrases"`
}

// StyleTraits describes sentence-level habits.
type StyleTraits struct {
	SentenceLength string `json:"sentence_length"`
	Punctuation    string `json:"punctuation"`
	Capitalization string `json:"capitalization"`
}

// BaselineMetrics is a point-in-time account snapshot.
type BaselineMetrics struct {
	Followers         int       `json:"followers"`
	AvgEngagementRate float64   `json:"avg_engagement_rate"`
	CapturedAt        time.Time `json:"captured_at"`
}

// ProvenPattern records a technique that has measurably worked for a user.
type ProvenPattern struct {
	Kind    string  `json:"kind"` // hook, technique, opener
	Value   string  `json:"value"`
	Score   float64 `json:"score"`
	AddedAt time.Time `json:"added_at"`
}

// VoiceProfile is the per-user identity every other component reads.
type VoiceProfile struct {
	Name            string              `json:"name"`
	Username        string              `json:"username"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`
	Niche           string              `json:"niche"`
	Goal            Goal                `json:"goal"`
	PlatformHandles map[Platform]string `json:"platform_handles"`
	Watchlist       []string            `json:"watchlist"`
	Keywords        []string            `json:"keywords"`
	Voice           VoiceTraits         `json:"voice"`
	Style           StyleTraits         `json:"style"`
	ProvenPatterns  []ProvenPattern     `json:"proven_patterns"`
	Baseline        BaselineMetrics     `json:"baseline_metrics"`
}

// NewVoiceProfile builds a validated version-1 profile.
func NewVoiceProfile(name string, goal Goal, niche string) (*VoiceProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	now := time.Now()
	return &VoiceProfile{
		Name:            name,
		Username:        slugify(name),
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
		Niche:           niche,
		Goal:            goal,
		PlatformHandles: map[Platform]string{},
		Voice: VoiceTraits{
			Tone:       "professional",
			Formality:  3,
			Vocabulary: "professional",
			EmojiStyle: "minimal",
		},
		Style: StyleTraits{
			SentenceLength: "concise",
			Punctuation:    "standard",
			Capitalization: "standard",
		},
	}, nil
}

// Validate checks profile invariants.
func (p *VoiceProfile) Validate() error {
	if p.Voice.Formality < 1 || p.Voice.Formality > 5 {
		return &ValidationError{Field: "voice.formality", Reason: "must be between 1 and 5"}
	}
	if p.Version < 1 {
		return &ValidationError{Field: "version", Reason: "must be at least 1"}
	}
	return nil
}

// ContentAnalysis is the structured feature breakdown of one post.
type ContentAnalysis struct {
	Content  string   `json:"content"`
	Platform Platform `json:"platform"`

	WordCount     int `json:"word_count"`
	CharCount     int `json:"char_count"`
	SentenceCount int `json:"sentence_count"`
	LineCount     int `json:"line_count"`

	HookType HookType `json:"hook_type"`
	HookText string   `json:"hook_text"`

	Framework Framework `json:"framework"`
	Triggers  []Trigger `json:"triggers"`

	Specificity Specificity `json:"specificity"`
	HasNumbers  bool        `json:"has_numbers"`
	HasData     bool        `json:"has_data"`
	HasExamples bool        `json:"has_examples"`

	AuthoritySignals []string `json:"authority_signals"`

	PlatformScore  float64  `json:"platform_score"` // 0-100
	PlatformIssues []string `json:"platform_issues"`

	Techniques []string `json:"techniques"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Scores holds the three scoring dimensions plus their weighted composite,
// all in [0,1].
type Scores struct {
	VoiceMatch           float64 `json:"voice_match"`
	EngagementPrediction float64 `json:"engagement_prediction"`
	LengthScore          float64 `json:"length_score"`
	Composite            float64 `json:"composite"`
}

// QueueItem is one piece of content moving through the approval pipeline.
type QueueItem struct {
	ID        string      `json:"id"`
	User      string      `json:"user"`
	Platform  Platform    `json:"platform"`
	Content   string      `json:"content"`
	Status    QueueStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`

	ReplyToURL    string `json:"reply_to_url,omitempty"`
	ReplyToAuthor string `json:"reply_to_author,omitempty"`

	Analysis *ContentAnalysis `json:"analysis,omitempty"`
	Scores   Scores           `json:"scores"`
	Why      string           `json:"why,omitempty"`

	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	PostURL      string     `json:"post_url,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
}

// EngagementSnapshot is one labeled capture of a post's metrics.
type EngagementSnapshot struct {
	Label      string         `json:"label"` // initial, 24h, 48h, 7d
	Metrics    map[string]int `json:"metrics"`
	CapturedAt time.Time      `json:"captured_at"`
}

// PostRecord tracks a published post and its engagement over time.
type PostRecord struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Platform Platform  `json:"platform"`
	Content  string    `json:"content"`
	URL      string    `json:"url"`
	PostedAt time.Time `json:"posted_at"`

	HookType    HookType    `json:"hook_type"`
	Framework   Framework   `json:"framework"`
	Triggers    []Trigger   `json:"triggers"`
	Specificity Specificity `json:"specificity"`
	WordCount   int         `json:"word_count"`
	Techniques  []string    `json:"techniques"`

	Snapshots []EngagementSnapshot `json:"snapshots"`

	WhatWorked []string `json:"what_worked,omitempty"`
	WhatFailed []string `json:"what_failed,omitempty"`
}

// LatestSnapshot returns the most recent engagement capture, or nil.
func (r *PostRecord) LatestSnapshot() *EngagementSnapshot {
	if len(r.Snapshots) == 0 {
		return nil
	}
	return &r.Snapshots[len(r.Snapshots)-1]
}

// TrendingPost is an ingested post that may be worth replying to.
type TrendingPost struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	URL      string    `json:"url"`
	Platform Platform  `json:"platform"`
	PostedAt time.Time `json:"posted_at"`

	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
	Replies  int `json:"replies"`
	Quotes   int `json:"quotes"`

	Topics           []string `json:"topics"`
	OpportunityScore float64  `json:"opportunity_score"`

	FoundAt  time.Time `json:"found_at"`
	Replied  bool      `json:"replied"`
	ReplyURL string    `json:"reply_url,omitempty"`
}

// TotalEngagement sums all engagement counters.
func (p *TrendingPost) TotalEngagement() int {
	return p.Likes + p.Retweets + p.Replies + p.Quotes
}

// TechniquePerformance aggregates one technique's results over a window.
type TechniquePerformance struct {
	Technique string  `json:"technique"`
	Count     int     `json:"count"`
	AvgScore  float64 `json:"avg_score"`
}

// WeeklySummary is the stored result of one weekly report run.
type WeeklySummary struct {
	User      string    `json:"user"`
	WeekIndex int       `json:"week_index"` // ISO year*100 + ISO week
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`

	PostCount       int     `json:"post_count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`

	TopPosts   []string `json:"top_posts"`
	WorstPosts []string `json:"worst_posts"`

	SuccessfulTechniques []TechniquePerformance `json:"successful_techniques"`
	FailedTechniques     []TechniquePerformance `json:"failed_techniques"`
	BestHooks            []HookType             `json:"best_hooks"`
	BestPostingHours     []int                  `json:"best_posting_hours"`

	BenchmarkGaps   []string `json:"benchmark_gaps"`
	Recommendations []string `json:"recommendations"`
	NextWeekFocus   string   `json:"next_week_focus"`

	GeneratedAt time.Time `json:"generated_at"`
}

// FollowTarget is an account tracked through the follow lifecycle.
type FollowTarget struct {
	Handle string       `json:"handle"`
	Status TargetStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Source string       `json:"source,omitempty"`
	Tags   []string     `json:"tags,omitempty"`
	Notes  string       `json:"notes,omitempty"`

	AddedAt        time.Time  `json:"added_at"`
	FollowedAt     *time.Time `json:"followed_at,omitempty"`
	DecidedAt      *time.Time `json:"followback_decided_at,omitempty"`
	UnfollowedAt   *time.Time `json:"unfollowed_at,omitempty"`
	UnfollowReason string     `json:"unfollow_reason,omitempty"`
}

// Experiment is an A/B test over a single content variable.
type Experiment struct {
	ID         string           `json:"id"`
	User       string           `json:"user"`
	Hypothesis string           `json:"hypothesis"`
	Variable   string           `json:"variable"`
	Variants   []string         `json:"variants"`
	Status     ExperimentStatus `json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Results    map[string]float64 `json:"results,omitempty"`
	Winner     string             `json:"winner,omitempty"`
	Conclusion string             `json:"conclusion,omitempty"`
}

// ProfileSnapshot preserves a prior profile version in evolution history.
type ProfileSnapshot struct {
	Version   int          `json:"version"`
	Profile   VoiceProfile `json:"profile"`
	Changes   []string     `json:"changes"`
	CreatedAt time.Time    `json:"created_at"`
}

// slugify turns a display name into a filesystem-safe key.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "user"
	}
	return out
}
