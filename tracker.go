package main

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// snapshotOrder fixes the chronology of engagement capture labels.
var snapshotOrder = map[string]int{
	"initial": 0,
	"24h":     1,
	"48h":     2,
	"7d":      3,
}

// Tracker records published posts and their engagement over time.
type Tracker struct {
	session  *Session
	settings *Settings
	analyzer *Analyzer
}

func NewTracker(session *Session, settings *Settings) *Tracker {
	return &Tracker{
		session:  session,
		settings: settings,
		analyzer: NewAnalyzer(),
	}
}

func (t *Tracker) postKey(id string) string {
	return t.session.key("posts", id)
}

// LogPost records a published post, analyzing its content so later
// reports can group by technique.
func (t *Tracker) LogPost(content string, platform Platform, url string, postedAt time.Time) (*PostRecord, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	analysis := t.analyzer.Analyze(content, platform)
	record := &PostRecord{
		ID:          newID(),
		User:        t.session.User,
		Platform:    platform,
		Content:     content,
		URL:         url,
		PostedAt:    postedAt,
		HookType:    analysis.HookType,
		Framework:   analysis.Framework,
		Triggers:    analysis.Triggers,
		Specificity: analysis.Specificity,
		WordCount:   analysis.WordCount,
		Techniques:  analysis.Techniques,
	}
	if err := t.session.Store.Put(t.postKey(record.ID), record); err != nil {
		return nil, err
	}
	t.session.Log.Infof("✓ Logged %s post %s", platform, record.ID)
	return record, nil
}

// Get loads one record by id.
func (t *Tracker) Get(id string) (*PostRecord, error) {
	var record PostRecord
	if err := t.session.Store.Get(t.postKey(id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns all records, oldest first. Unreadable records are
// skipped with a warning.
func (t *Tracker) List() ([]*PostRecord, error) {
	keys, err := t.session.Store.List(t.session.key("posts"))
	if err != nil {
		return nil, err
	}
	var records []*PostRecord
	for _, key := range keys {
		var record PostRecord
		if err := t.session.Store.Get(key, &record); err != nil {
			t.session.Log.WithError(err).Warnf("skipping unreadable post record %s", key)
			continue
		}
		records = append(records, &record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PostedAt.Before(records[j].PostedAt)
	})
	return records, nil
}

// Since returns records posted at or after the cutoff.
func (t *Tracker) Since(cutoff time.Time) ([]*PostRecord, error) {
	all, err := t.List()
	if err != nil {
		return nil, err
	}
	var out []*PostRecord
	for _, r := range all {
		if !r.PostedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpdateEngagement adds or overwrites the snapshot for a label.
// Snapshots stay ordered initial, 24h, 48h, 7d regardless of the order
// they arrive in.
func (t *Tracker) UpdateEngagement(id, label string, metrics map[string]int) (*PostRecord, error) {
	if _, ok := snapshotOrder[label]; !ok {
		return nil, &ValidationError{Field: "label", Reason: fmt.Sprintf("unknown label %q, want initial, 24h, 48h, or 7d", label)}
	}
	record, err := t.Get(id)
	if err != nil {
		return nil, err
	}

	snapshot := EngagementSnapshot{Label: label, Metrics: metrics, CapturedAt: time.Now()}
	replaced := false
	for i := range record.Snapshots {
		if record.Snapshots[i].Label == label {
			record.Snapshots[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		record.Snapshots = append(record.Snapshots, snapshot)
	}
	sort.SliceStable(record.Snapshots, func(i, j int) bool {
		return snapshotOrder[record.Snapshots[i].Label] < snapshotOrder[record.Snapshots[j].Label]
	})

	if err := t.session.Store.Put(t.postKey(id), record); err != nil {
		return nil, err
	}
	return record, nil
}

// Annotate records manual what-worked and what-failed notes on a post.
func (t *Tracker) Annotate(id string, worked, failed []string) (*PostRecord, error) {
	record, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	record.WhatWorked = append(record.WhatWorked, worked...)
	record.WhatFailed = append(record.WhatFailed, failed...)
	if err := t.session.Store.Put(t.postKey(id), record); err != nil {
		return nil, err
	}
	return record, nil
}

// EngagementScore weighs the latest snapshot's metrics. Metrics with
// no configured weight count once.
func (t *Tracker) EngagementScore(record *PostRecord) float64 {
	latest := record.LatestSnapshot()
	if latest == nil {
		return 0
	}
	score := 0.0
	for metric, value := range latest.Metrics {
		weight, ok := t.settings.EngagementWeights[metric]
		if !ok {
			weight = 1
		}
		score += float64(weight * value)
	}
	return score
}

// TopPerforming returns the n best posts by engagement score, newer
// posts winning ties.
func (t *Tracker) TopPerforming(n int) ([]*PostRecord, error) {
	records, err := t.List()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := t.EngagementScore(records[i]), t.EngagementScore(records[j])
		if si != sj {
			return si > sj
		}
		return records[i].PostedAt.After(records[j].PostedAt)
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// PerformanceByTechnique averages engagement scores per technique.
func (t *Tracker) PerformanceByTechnique(records []*PostRecord) []TechniquePerformance {
	return t.groupPerformance(records, func(r *PostRecord) []string {
		return r.Techniques
	})
}

// PerformanceByHook averages engagement scores per hook type.
func (t *Tracker) PerformanceByHook(records []*PostRecord) []TechniquePerformance {
	return t.groupPerformance(records, func(r *PostRecord) []string {
		if r.HookType == HookNone {
			return nil
		}
		return []string{string(r.HookType)}
	})
}

func (t *Tracker) groupPerformance(records []*PostRecord, keys func(*PostRecord) []string) []TechniquePerformance {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		score := t.EngagementScore(r)
		for _, k := range keys(r) {
			sums[k] += score
			counts[k]++
		}
	}

	var out []TechniquePerformance
	for k, count := range counts {
		out = append(out, TechniquePerformance{
			Technique: k,
			Count:     count,
			AvgScore:  sums[k] / float64(count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].Technique < out[j].Technique
	})
	return out
}

// Baseline returns the mean and standard deviation of engagement
// scores across all tracked posts.
func (t *Tracker) Baseline() (mean, stddev float64, err error) {
	records, err := t.List()
	if err != nil {
		return 0, 0, err
	}
	if len(records) == 0 {
		return 0, 0, nil
	}

	var sum float64
	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = t.EngagementScore(r)
		sum += scores[i]
	}
	mean = sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	stddev = math.Sqrt(variance / float64(len(scores)))
	return mean, stddev, nil
}
