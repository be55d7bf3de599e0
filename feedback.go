package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Feedback builds weekly performance summaries and longer-term trends
// from the tracker's records.
type Feedback struct {
	session    *Session
	tracker    *Tracker
	benchmarks *Benchmarks
}

func NewFeedback(session *Session, tracker *Tracker, benchmarks *Benchmarks) *Feedback {
	return &Feedback{session: session, tracker: tracker, benchmarks: benchmarks}
}

func (f *Feedback) reportKey(weekIndex int) string {
	return f.session.key("reports", strconv.Itoa(weekIndex))
}

// weekWindow returns the Monday-start week containing now, shifted back
// by offset weeks.
func weekWindow(now time.Time, offset int) (start, end time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = start.AddDate(0, 0, -(weekday - 1)).AddDate(0, 0, -7*offset)
	return start, start.AddDate(0, 0, 7)
}

// weekIndex packs ISO year and week into one sortable key.
func weekIndex(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}

// GenerateWeekly builds and stores the summary for the week offset
// weeks back (0 = this week). Regenerating a week overwrites the stored
// report, so the operation is idempotent.
func (f *Feedback) GenerateWeekly(offset int) (*WeeklySummary, error) {
	start, end := weekWindow(time.Now(), offset)

	all, err := f.tracker.List()
	if err != nil {
		return nil, err
	}
	var records []*PostRecord
	for _, r := range all {
		if !r.PostedAt.Before(start) && r.PostedAt.Before(end) {
			records = append(records, r)
		}
	}

	summary := &WeeklySummary{
		User:        f.session.User,
		WeekIndex:   weekIndex(start),
		WeekStart:   start,
		WeekEnd:     end,
		PostCount:   len(records),
		GeneratedAt: time.Now(),
	}

	if len(records) > 0 {
		f.fillMetrics(summary, records)
		f.fillBenchmarkGaps(summary, records)
		f.fillRecommendations(summary)
	} else {
		summary.Recommendations = []string{"No posts this week. Aim for at least 5 to build signal."}
		summary.NextWeekFocus = summary.Recommendations[0]
	}

	if err := f.session.Store.Put(f.reportKey(summary.WeekIndex), summary); err != nil {
		return nil, err
	}
	f.session.Log.Infof("✓ Generated weekly report %d (%d posts)", summary.WeekIndex, summary.PostCount)
	return summary, nil
}

func (f *Feedback) fillMetrics(summary *WeeklySummary, records []*PostRecord) {
	total := 0.0
	scores := map[string]float64{}
	for _, r := range records {
		s := f.tracker.EngagementScore(r)
		scores[r.ID] = s
		total += s
	}
	summary.TotalEngagement = int(total)
	summary.AvgEngagement = total / float64(len(records))

	ranked := append([]*PostRecord(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	for i := 0; i < len(ranked) && i < 5; i++ {
		summary.TopPosts = append(summary.TopPosts, ranked[i].ID)
	}
	for i := len(ranked) - 1; i >= 0 && len(summary.WorstPosts) < 3; i-- {
		if scores[ranked[i].ID] < summary.AvgEngagement {
			summary.WorstPosts = append(summary.WorstPosts, ranked[i].ID)
		}
	}

	// Techniques above the weekly mean count as working, the rest as
	// failing.
	for _, perf := range f.tracker.PerformanceByTechnique(records) {
		if perf.AvgScore >= summary.AvgEngagement {
			summary.SuccessfulTechniques = append(summary.SuccessfulTechniques, perf)
		} else {
			summary.FailedTechniques = append(summary.FailedTechniques, perf)
		}
	}

	for _, perf := range f.tracker.PerformanceByHook(records) {
		if len(summary.BestHooks) < 3 {
			summary.BestHooks = append(summary.BestHooks, HookType(perf.Technique))
		}
	}

	hourCounts := map[int]int{}
	for _, r := range records {
		hourCounts[r.PostedAt.Hour()]++
	}
	summary.BestPostingHours = topHours(hourCounts, 3)
}

func (f *Feedback) fillBenchmarkGaps(summary *WeeklySummary, records []*PostRecord) {
	profile, err := f.session.Profile()
	if err != nil {
		return
	}
	entry, err := f.benchmarks.Get(profile.Niche)
	if err != nil || entry.Metrics.PostCount == 0 {
		return
	}

	if entry.Metrics.AvgEngagement > 0 && summary.AvgEngagement < 0.8*entry.Metrics.AvgEngagement {
		summary.BenchmarkGaps = append(summary.BenchmarkGaps,
			fmt.Sprintf("engagement at %.0f%% of benchmark average", 100*summary.AvgEngagement/entry.Metrics.AvgEngagement))
	}

	totalWords := 0
	for _, r := range records {
		totalWords += r.WordCount
	}
	avgWords := float64(totalWords) / float64(len(records))
	benchWords := entry.Patterns.OptimalLength.AvgWords
	if benchWords > 0 {
		diff := (avgWords - benchWords) / benchWords
		if diff > 0.2 {
			summary.BenchmarkGaps = append(summary.BenchmarkGaps,
				fmt.Sprintf("posts %.0f%% longer than benchmark average", 100*diff))
		} else if diff < -0.2 {
			summary.BenchmarkGaps = append(summary.BenchmarkGaps,
				fmt.Sprintf("posts %.0f%% shorter than benchmark average", -100*diff))
		}
	}
}

func (f *Feedback) fillRecommendations(summary *WeeklySummary) {
	var recs []string

	if len(summary.BestHooks) > 0 {
		recs = append(recs, fmt.Sprintf("Lead with %s hooks, they performed best this week", summary.BestHooks[0]))
	}
	if len(summary.SuccessfulTechniques) > 0 {
		recs = append(recs, fmt.Sprintf("Double down on %s (avg %.0f)", summary.SuccessfulTechniques[0].Technique, summary.SuccessfulTechniques[0].AvgScore))
	}
	if len(summary.FailedTechniques) > 0 {
		worst := summary.FailedTechniques[len(summary.FailedTechniques)-1]
		recs = append(recs, fmt.Sprintf("Drop %s, it underperformed (avg %.0f)", worst.Technique, worst.AvgScore))
	}
	for _, gap := range summary.BenchmarkGaps {
		recs = append(recs, "Close the gap: "+gap)
	}
	switch {
	case summary.PostCount < 5:
		recs = append(recs, "Post volume is low, aim for at least 5 posts per week")
	case summary.PostCount > 30:
		recs = append(recs, "Post volume is high, favor quality over quantity")
	}
	if len(summary.BestPostingHours) > 0 {
		recs = append(recs, fmt.Sprintf("Your best posting hours were %v", summary.BestPostingHours))
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	summary.Recommendations = recs
	if len(recs) > 0 {
		summary.NextWeekFocus = recs[0]
	}
}

// GetReport loads the stored summary for a week index.
func (f *Feedback) GetReport(weekIndex int) (*WeeklySummary, error) {
	var summary WeeklySummary
	if err := f.session.Store.Get(f.reportKey(weekIndex), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListReports returns all stored summaries, oldest week first.
func (f *Feedback) ListReports() ([]*WeeklySummary, error) {
	keys, err := f.session.Store.List(f.session.key("reports"))
	if err != nil {
		return nil, err
	}
	var summaries []*WeeklySummary
	for _, key := range keys {
		var s WeeklySummary
		if err := f.session.Store.Get(key, &s); err != nil {
			f.session.Log.WithError(err).Warnf("skipping unreadable report %s", key)
			continue
		}
		summaries = append(summaries, &s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].WeekIndex < summaries[j].WeekIndex
	})
	return summaries, nil
}

// TrendAnalysis compares stored weekly summaries over time.
type TrendAnalysis struct {
	Weeks           int      `json:"weeks"`
	EngagementTrend string   `json:"engagement_trend"` // improving, declining, flat
	VolumeTrend     string   `json:"volume_trend"`
	FirstWeekAvg    float64  `json:"first_week_avg"`
	LastWeekAvg     float64  `json:"last_week_avg"`
	PersistentGaps  []string `json:"persistent_gaps"`
}

// Trends analyzes direction across all stored weekly reports. At least
// two are required.
func (f *Feedback) Trends() (*TrendAnalysis, error) {
	summaries, err := f.ListReports()
	if err != nil {
		return nil, err
	}
	if len(summaries) < 2 {
		return nil, &ValidationError{Field: "reports", Reason: "need at least 2 weekly reports for trend analysis"}
	}

	first, last := summaries[0], summaries[len(summaries)-1]
	analysis := &TrendAnalysis{
		Weeks:        len(summaries),
		FirstWeekAvg: first.AvgEngagement,
		LastWeekAvg:  last.AvgEngagement,
	}

	analysis.EngagementTrend = trendDirection(first.AvgEngagement, last.AvgEngagement)
	analysis.VolumeTrend = trendDirection(float64(first.PostCount), float64(last.PostCount))

	// Gaps present in every report are structural, not noise.
	gapCounts := map[string]int{}
	for _, s := range summaries {
		for _, g := range s.BenchmarkGaps {
			gapCounts[g]++
		}
	}
	for g, c := range gapCounts {
		if c == len(summaries) {
			analysis.PersistentGaps = append(analysis.PersistentGaps, g)
		}
	}
	sort.Strings(analysis.PersistentGaps)
	return analysis, nil
}

func trendDirection(first, last float64) string {
	switch {
	case last > first*1.1:
		return "improving"
	case last < first*0.9:
		return "declining"
	}
	return "flat"
}
