package main

import (
	"fmt"
	"sort"
	"time"
)

// Targets manages the follow/followback lifecycle for growth targets.
type Targets struct {
	session  *Session
	settings *Settings
}

func NewTargets(session *Session, settings *Settings) *Targets {
	return &Targets{session: session, settings: settings}
}

func (t *Targets) listKey() string {
	return t.session.key("targets", "list")
}

func (t *Targets) load() ([]FollowTarget, error) {
	var targets []FollowTarget
	if _, err := loadOptional(t.session.Store, t.listKey(), &targets); err != nil {
		t.session.Log.WithError(err).Warn("target list unreadable, starting empty")
		return nil, nil
	}
	return targets, nil
}

func (t *Targets) save(targets []FollowTarget) error {
	return t.session.Store.Put(t.listKey(), targets)
}

// Add registers a new target. Handles are unique per user.
func (t *Targets) Add(handle, reason, source string, tags []string) (*FollowTarget, error) {
	handle = normalizeHandle(handle)
	if handle == "" {
		return nil, &ValidationError{Field: "handle", Reason: "must not be empty"}
	}

	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if targets[i].Handle == handle {
			return nil, &ValidationError{Field: "handle", Reason: fmt.Sprintf("@%s is already tracked", handle)}
		}
	}

	target := FollowTarget{
		Handle:  handle,
		Status:  TargetPending,
		Reason:  reason,
		Source:  source,
		Tags:    tags,
		AddedAt: time.Now(),
	}
	targets = append(targets, target)
	if err := t.save(targets); err != nil {
		return nil, err
	}
	t.session.Log.Infof("✓ Added target @%s", handle)
	return &target, nil
}

// Get returns one target by handle.
func (t *Targets) Get(handle string) (*FollowTarget, error) {
	handle = normalizeHandle(handle)
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if targets[i].Handle == handle {
			out := targets[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("target @%s: %w", handle, ErrNotFound)
}

// List returns targets, optionally filtered by status.
func (t *Targets) List(status TargetStatus) ([]FollowTarget, error) {
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return targets, nil
	}
	var out []FollowTarget
	for _, target := range targets {
		if target.Status == status {
			out = append(out, target)
		}
	}
	return out, nil
}

// TrackFollow records that the user followed a target. An unknown
// handle is added and immediately marked followed.
func (t *Targets) TrackFollow(handle string) (*FollowTarget, error) {
	handle = normalizeHandle(handle)
	targets, err := t.load()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range targets {
		if targets[i].Handle != handle {
			continue
		}
		if targets[i].Status != TargetPending {
			return nil, fmt.Errorf("cannot follow @%s in status %s: %w", handle, targets[i].Status, ErrInvalidTransition)
		}
		targets[i].Status = TargetFollowed
		targets[i].FollowedAt = &now
		if err := t.save(targets); err != nil {
			return nil, err
		}
		out := targets[i]
		return &out, nil
	}

	target := FollowTarget{
		Handle:     handle,
		Status:     TargetFollowed,
		Source:     "manual",
		AddedAt:    now,
		FollowedAt: &now,
	}
	targets = append(targets, target)
	if err := t.save(targets); err != nil {
		return nil, err
	}
	t.session.Log.Infof("✓ Tracking new follow @%s", handle)
	return &target, nil
}

// RecordFollowback records whether a followed target followed back.
func (t *Targets) RecordFollowback(handle string, followedBack bool) (*FollowTarget, error) {
	handle = normalizeHandle(handle)
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if targets[i].Handle != handle {
			continue
		}
		if targets[i].Status != TargetFollowed {
			return nil, fmt.Errorf("cannot record followback for @%s in status %s: %w", handle, targets[i].Status, ErrInvalidTransition)
		}
		now := time.Now()
		if followedBack {
			targets[i].Status = TargetFollowedBack
		} else {
			targets[i].Status = TargetNoFollowback
		}
		targets[i].DecidedAt = &now
		if err := t.save(targets); err != nil {
			return nil, err
		}
		out := targets[i]
		return &out, nil
	}
	return nil, fmt.Errorf("target @%s: %w", handle, ErrNotFound)
}

// RecordUnfollow records that the user unfollowed a target. Only
// followed targets, with or without a followback decision, can be
// unfollowed.
func (t *Targets) RecordUnfollow(handle, reason string) (*FollowTarget, error) {
	handle = normalizeHandle(handle)
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if targets[i].Handle != handle {
			continue
		}
		if targets[i].Status != TargetFollowed && targets[i].Status != TargetNoFollowback {
			return nil, fmt.Errorf("cannot unfollow @%s in status %s: %w", handle, targets[i].Status, ErrInvalidTransition)
		}
		now := time.Now()
		targets[i].Status = TargetUnfollowed
		targets[i].UnfollowedAt = &now
		targets[i].UnfollowReason = reason
		if err := t.save(targets); err != nil {
			return nil, err
		}
		out := targets[i]
		return &out, nil
	}
	return nil, fmt.Errorf("target @%s: %w", handle, ErrNotFound)
}

// UnfollowCandidates returns targets followed at least days ago that
// never followed back. Zero days uses the configured default.
func (t *Targets) UnfollowCandidates(days int) ([]FollowTarget, error) {
	if days <= 0 {
		days = t.settings.Targets.AutoUnfollowAfterDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	var out []FollowTarget
	for _, target := range targets {
		if target.Status != TargetFollowed && target.Status != TargetNoFollowback {
			continue
		}
		if target.FollowedAt != nil && target.FollowedAt.Before(cutoff) {
			out = append(out, target)
		}
	}
	return out, nil
}

// TargetSuggestion is a candidate account worth targeting.
type TargetSuggestion struct {
	Handle string  `json:"handle"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
	Posts  int     `json:"posts"`
}

// Suggest proposes new targets from the scan cache: authors of
// high-opportunity posts that are not tracked yet.
func (t *Targets) Suggest(limit int) ([]TargetSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	tracked := map[string]bool{}
	for _, target := range targets {
		tracked[target.Handle] = true
	}

	var cache scanCache
	if _, err := loadOptional(t.session.Store, t.session.key("scan", "cache"), &cache); err != nil {
		t.session.Log.WithError(err).Warn("scan cache unreadable, no suggestions")
		return nil, nil
	}

	best := map[string]float64{}
	posts := map[string]int{}
	for _, p := range cache.Posts {
		if p.Author == "" || tracked[p.Author] || p.OpportunityScore <= 0 {
			continue
		}
		posts[p.Author]++
		if p.OpportunityScore > best[p.Author] {
			best[p.Author] = p.OpportunityScore
		}
	}

	suggestions := make([]TargetSuggestion, 0, len(best))
	for author, score := range best {
		suggestions = append(suggestions, TargetSuggestion{
			Handle: author,
			Score:  score,
			Posts:  posts[author],
			Reason: fmt.Sprintf("%d scanned post(s), best opportunity %.0f", posts[author], score),
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Handle < suggestions[j].Handle
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// TargetStats summarizes the follow pipeline.
type TargetStats struct {
	Total        int                  `json:"total"`
	ByStatus     map[TargetStatus]int `json:"by_status"`
	FollowbackPC float64              `json:"followback_rate"` // percent of decided follows
}

// Stats counts targets by status and computes the followback rate over
// decided follows.
func (t *Targets) Stats() (*TargetStats, error) {
	targets, err := t.load()
	if err != nil {
		return nil, err
	}
	stats := &TargetStats{ByStatus: map[TargetStatus]int{}}
	for _, target := range targets {
		stats.Total++
		stats.ByStatus[target.Status]++
	}
	decided := stats.ByStatus[TargetFollowedBack] + stats.ByStatus[TargetNoFollowback]
	if decided > 0 {
		stats.FollowbackPC = 100 * float64(stats.ByStatus[TargetFollowedBack]) / float64(decided)
	}
	return stats, nil
}
