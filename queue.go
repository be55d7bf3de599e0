package main

import (
	"fmt"
	"time"
)

// Bucket keys under the user's queue prefix. Rejected items stay in the
// bucket they were in when rejected, so history survives in place.
var queueBuckets = []string{"pending", "approved", "posted"}

// Queue is the per-user approval pipeline. Content enters pending,
// moves to approved on human review, and to posted once published.
type Queue struct {
	session  *Session
	analyzer *Analyzer
	scorer   *Scorer
}

func NewQueue(session *Session) *Queue {
	return &Queue{
		session:  session,
		analyzer: NewAnalyzer(),
		scorer:   NewScorer(),
	}
}

func (q *Queue) bucketKey(bucket string) string {
	return q.session.key("queue", bucket)
}

func (q *Queue) loadBucket(bucket string) ([]QueueItem, error) {
	var items []QueueItem
	found, err := loadOptional(q.session.Store, q.bucketKey(bucket), &items)
	if err != nil {
		q.session.Log.WithError(err).Warnf("queue bucket %s unreadable, starting empty", bucket)
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return items, nil
}

func (q *Queue) saveBucket(bucket string, items []QueueItem) error {
	return q.session.Store.Put(q.bucketKey(bucket), items)
}

// nicheBenchmark returns the benchmark for the profile's niche, or nil
// when none has been built yet. Scoring works either way.
func (q *Queue) nicheBenchmark(profile *VoiceProfile) *BenchmarkEntry {
	entry, err := NewBenchmarks(q.session.Store, q.session.Log).Get(profile.Niche)
	if err != nil {
		return nil
	}
	return entry
}

// Add places new content at the tail of the pending bucket, analyzing
// and scoring it on the way in.
func (q *Queue) Add(item *QueueItem) (*QueueItem, error) {
	if item.Content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if item.Platform == "" {
		item.Platform = PlatformTwitter
	}
	item.ID = newID()
	item.User = q.session.User
	item.Status = QueuePending
	item.CreatedAt = time.Now()

	if item.Analysis == nil {
		item.Analysis = q.analyzer.Analyze(item.Content, item.Platform)
	}
	if item.Scores == (Scores{}) {
		profile, err := q.session.Profile()
		if err != nil {
			return nil, err
		}
		item.Scores = q.scorer.Score(item.Content, profile, q.nicheBenchmark(profile))
	}

	items, err := q.loadBucket("pending")
	if err != nil {
		return nil, err
	}
	items = append(items, *item)
	if err := q.saveBucket("pending", items); err != nil {
		return nil, err
	}
	q.session.Log.Infof("✓ Queued %s draft %s (composite %.2f)", item.Platform, item.ID, item.Scores.Composite)
	return item, nil
}

// find locates an item across all buckets.
func (q *Queue) find(id string) (bucket string, items []QueueItem, idx int, err error) {
	for _, b := range queueBuckets {
		items, err = q.loadBucket(b)
		if err != nil {
			return "", nil, 0, err
		}
		for i := range items {
			if items[i].ID == id {
				return b, items, i, nil
			}
		}
	}
	return "", nil, 0, fmt.Errorf("queue item %s: %w", id, ErrNotFound)
}

// Get returns one item by id.
func (q *Queue) Get(id string) (*QueueItem, error) {
	_, items, idx, err := q.find(id)
	if err != nil {
		return nil, err
	}
	item := items[idx]
	return &item, nil
}

// List returns items with the given status, or every item when status
// is empty. Insertion order within each bucket is preserved.
func (q *Queue) List(status QueueStatus) ([]QueueItem, error) {
	var out []QueueItem
	for _, b := range queueBuckets {
		items, err := q.loadBucket(b)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if status == "" || item.Status == status {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

// Approve moves a pending item to the approved bucket.
func (q *Queue) Approve(id string) (*QueueItem, error) {
	bucket, items, idx, err := q.find(id)
	if err != nil {
		return nil, err
	}
	item := items[idx]
	if item.Status != QueuePending {
		return nil, fmt.Errorf("cannot approve %s item %s: %w", item.Status, id, ErrInvalidTransition)
	}

	now := time.Now()
	item.Status = QueueApproved
	item.ApprovedAt = &now

	items = append(items[:idx], items[idx+1:]...)
	if err := q.saveBucket(bucket, items); err != nil {
		return nil, err
	}
	approved, err := q.loadBucket("approved")
	if err != nil {
		return nil, err
	}
	approved = append(approved, item)
	if err := q.saveBucket("approved", approved); err != nil {
		return nil, err
	}
	q.session.Log.Infof("✓ Approved %s", id)
	return &item, nil
}

// Reject marks a pending or approved item rejected. The item stays in
// its current bucket as an archived record.
func (q *Queue) Reject(id, reason string) (*QueueItem, error) {
	bucket, items, idx, err := q.find(id)
	if err != nil {
		return nil, err
	}
	item := &items[idx]
	if item.Status != QueuePending && item.Status != QueueApproved {
		return nil, fmt.Errorf("cannot reject %s item %s: %w", item.Status, id, ErrInvalidTransition)
	}

	now := time.Now()
	item.Status = QueueRejected
	item.DecidedAt = &now
	item.RejectReason = reason

	if err := q.saveBucket(bucket, items); err != nil {
		return nil, err
	}
	q.session.Log.Infof("✓ Rejected %s", id)
	out := *item
	return &out, nil
}

// MarkPosted records that an approved item went live at url.
func (q *Queue) MarkPosted(id, url string) (*QueueItem, error) {
	bucket, items, idx, err := q.find(id)
	if err != nil {
		return nil, err
	}
	item := items[idx]
	if item.Status != QueueApproved {
		return nil, fmt.Errorf("cannot post %s item %s: %w", item.Status, id, ErrInvalidTransition)
	}

	now := time.Now()
	item.Status = QueuePosted
	item.PostedAt = &now
	item.DecidedAt = &now
	item.PostURL = url

	items = append(items[:idx], items[idx+1:]...)
	if err := q.saveBucket(bucket, items); err != nil {
		return nil, err
	}
	posted, err := q.loadBucket("posted")
	if err != nil {
		return nil, err
	}
	posted = append(posted, item)
	if err := q.saveBucket("posted", posted); err != nil {
		return nil, err
	}
	q.session.Log.Infof("✓ Marked %s posted at %s", id, url)
	return &item, nil
}

// EditContent replaces the text of a pending or approved item and
// re-runs analysis and scoring.
func (q *Queue) EditContent(id, content string) (*QueueItem, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	bucket, items, idx, err := q.find(id)
	if err != nil {
		return nil, err
	}
	item := &items[idx]
	if item.Status != QueuePending && item.Status != QueueApproved {
		return nil, fmt.Errorf("cannot edit %s item %s: %w", item.Status, id, ErrInvalidTransition)
	}

	profile, err := q.session.Profile()
	if err != nil {
		return nil, err
	}
	item.Content = content
	item.Analysis = q.analyzer.Analyze(content, item.Platform)
	item.Scores = q.scorer.Score(content, profile, q.nicheBenchmark(profile))

	if err := q.saveBucket(bucket, items); err != nil {
		return nil, err
	}
	out := *item
	return &out, nil
}

// NextToPost returns the approved item with the highest composite
// score, optionally filtered by platform.
func (q *Queue) NextToPost(platform Platform) (*QueueItem, error) {
	approved, err := q.loadBucket("approved")
	if err != nil {
		return nil, err
	}
	var best *QueueItem
	for i := range approved {
		item := &approved[i]
		if item.Status != QueueApproved {
			continue
		}
		if platform != "" && item.Platform != platform {
			continue
		}
		if best == nil || item.Scores.Composite > best.Scores.Composite {
			best = item
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no approved content: %w", ErrNotFound)
	}
	out := *best
	return &out, nil
}

// QueueStats summarizes the pipeline's current shape.
type QueueStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Posted   int `json:"posted"`
	Rejected int `json:"rejected"`

	AvgPendingScore  float64 `json:"avg_pending_score"`
	AvgApprovedScore float64 `json:"avg_approved_score"`

	ByPlatform map[Platform]int `json:"by_platform"`
}

// Stats counts items by status and platform.
func (q *Queue) Stats() (*QueueStats, error) {
	stats := &QueueStats{ByPlatform: map[Platform]int{}}
	var pendingSum, approvedSum float64

	for _, b := range queueBuckets {
		items, err := q.loadBucket(b)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			stats.ByPlatform[item.Platform]++
			switch item.Status {
			case QueuePending:
				stats.Pending++
				pendingSum += item.Scores.Composite
			case QueueApproved:
				stats.Approved++
				approvedSum += item.Scores.Composite
			case QueuePosted:
				stats.Posted++
			case QueueRejected:
				stats.Rejected++
			}
		}
	}
	if stats.Pending > 0 {
		stats.AvgPendingScore = pendingSum / float64(stats.Pending)
	}
	if stats.Approved > 0 {
		stats.AvgApprovedScore = approvedSum / float64(stats.Approved)
	}
	return stats, nil
}
