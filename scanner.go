package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// scanCache is the per-user store of ingested posts.
type scanCache struct {
	Posts     []TrendingPost `json:"posts"`
	LastScan  time.Time      `json:"last_scan"`
	ScanCount int            `json:"scan_count"`
}

// Scanner ingests posts from watched accounts and ranks them as reply
// opportunities.
type Scanner struct {
	session  *Session
	settings *Settings
}

func NewScanner(session *Session, settings *Settings) *Scanner {
	return &Scanner{session: session, settings: settings}
}

func (s *Scanner) cacheKey() string {
	return s.session.key("scan", "cache")
}

func (s *Scanner) loadCache() (*scanCache, error) {
	var cache scanCache
	found, err := loadOptional(s.session.Store, s.cacheKey(), &cache)
	if err != nil {
		s.session.Log.WithError(err).Warn("scan cache unreadable, starting empty")
		return &scanCache{}, nil
	}
	if !found {
		return &scanCache{}, nil
	}
	return &cache, nil
}

// watchContext merges the profile's watchlist and keywords with the
// niche template's defaults.
func (s *Scanner) watchContext() (watchlist map[string]bool, keywords []string, err error) {
	profile, err := s.session.Profile()
	if err != nil {
		return nil, nil, err
	}

	watchlist = map[string]bool{}
	for _, h := range profile.Watchlist {
		watchlist[normalizeHandle(h)] = true
	}
	keywords = append(keywords, profile.Keywords...)

	if tmpl := loadNicheTemplate(profile.Niche); tmpl != nil {
		for _, h := range tmpl.DefaultWatchlist {
			watchlist[normalizeHandle(h)] = true
		}
		keywords = append(keywords, tmpl.Keywords...)
	}
	return watchlist, keywords, nil
}

// Ingest adds new posts to the cache, deduplicating by id and scoring
// each as a reply opportunity. It returns the number of posts added.
func (s *Scanner) Ingest(posts []TrendingPost) (int, error) {
	cache, err := s.loadCache()
	if err != nil {
		return 0, err
	}
	watchlist, keywords, err := s.watchContext()
	if err != nil {
		return 0, err
	}

	existing := map[string]bool{}
	for _, p := range cache.Posts {
		existing[p.ID] = true
	}

	now := time.Now()
	added := 0
	for _, post := range posts {
		if strings.TrimSpace(post.Content) == "" {
			continue
		}
		if post.ID == "" {
			post.ID = contentID(post.Platform, post.Author, post.Content)
		}
		if existing[post.ID] {
			continue
		}
		existing[post.ID] = true

		post.Author = normalizeHandle(post.Author)
		if post.FoundAt.IsZero() {
			post.FoundAt = now
		}
		if len(post.Topics) == 0 {
			post.Topics = extractTopics(post.Content)
		}
		post.OpportunityScore = s.opportunityScore(&post, watchlist, keywords, now)

		cache.Posts = append(cache.Posts, post)
		added++
	}

	cache.LastScan = now
	cache.ScanCount++
	if err := s.session.Store.Put(s.cacheKey(), cache); err != nil {
		return 0, err
	}
	s.session.Log.Infof("✓ Scan ingested %d new post(s), %d total cached", added, len(cache.Posts))
	return added, nil
}

// opportunityScore multiplies tiered engagement points by recency decay
// and relevance. Relevance is full for watchlist authors and keyword
// hits, base otherwise.
func (s *Scanner) opportunityScore(post *TrendingPost, watchlist map[string]bool, keywords []string, now time.Time) float64 {
	points := engagementPoints(post.TotalEngagement())

	window := time.Duration(s.settings.Scanner.RecencyWindowHours) * time.Hour
	if window <= 0 {
		window = 24 * time.Hour
	}
	age := now.Sub(post.PostedAt)
	recency := 1 - float64(age)/float64(window)
	if recency < 0 {
		recency = 0
	}
	if recency > 1 {
		recency = 1
	}

	relevance := s.settings.Scanner.BaseRelevance
	if relevance <= 0 {
		relevance = 0.5
	}
	if watchlist[post.Author] {
		relevance = 1.0
	} else {
		lowered := strings.ToLower(post.Content)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				relevance = 1.0
				break
			}
		}
	}

	return points * recency * relevance
}

func engagementPoints(total int) float64 {
	switch {
	case total > 1000:
		return 100
	case total > 500:
		return 75
	case total > 100:
		return 50
	case total > 50:
		return 25
	case total > 0:
		return 10
	}
	return 0
}

// contentID derives a stable id for posts that arrive without one.
func contentID(platform Platform, author, content string) string {
	sum := sha256.Sum256([]byte(string(platform) + "|" + author + "|" + content))
	return hex.EncodeToString(sum[:])[:8]
}

// GetOpportunities returns unreplied posts at or above minScore, best
// first. A minScore of zero uses the configured floor; limit zero means
// no cap.
func (s *Scanner) GetOpportunities(minScore float64, limit int) ([]TrendingPost, error) {
	cache, err := s.loadCache()
	if err != nil {
		return nil, err
	}
	if minScore <= 0 {
		minScore = s.settings.Scanner.MinScore
	}

	var out []TrendingPost
	for _, p := range cache.Posts {
		if p.Replied || p.OpportunityScore < minScore {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpportunityScore > out[j].OpportunityScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkReplied flags a post as handled. Marking twice is a no-op.
func (s *Scanner) MarkReplied(id, replyURL string) error {
	cache, err := s.loadCache()
	if err != nil {
		return err
	}
	for i := range cache.Posts {
		if cache.Posts[i].ID == id {
			cache.Posts[i].Replied = true
			if replyURL != "" {
				cache.Posts[i].ReplyURL = replyURL
			}
			return s.session.Store.Put(s.cacheKey(), cache)
		}
	}
	return fmt.Errorf("trending post %s: %w", id, ErrNotFound)
}

// ClearOld drops cached posts found more than the given number of days
// ago and returns how many were removed.
func (s *Scanner) ClearOld(days int) (int, error) {
	cache, err := s.loadCache()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	kept := cache.Posts[:0]
	removed := 0
	for _, p := range cache.Posts {
		if p.FoundAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	cache.Posts = kept
	if err := s.session.Store.Put(s.cacheKey(), cache); err != nil {
		return 0, err
	}
	return removed, nil
}

// ScanStats summarizes the scan cache.
type ScanStats struct {
	TotalPosts     int       `json:"total_posts"`
	Replied        int       `json:"replied"`
	AvgScore       float64   `json:"avg_score"`
	LastScan       time.Time `json:"last_scan"`
	ScanCount      int       `json:"scan_count"`
	TopOpportunity float64   `json:"top_opportunity"`
}

// Stats reports cache totals.
func (s *Scanner) Stats() (*ScanStats, error) {
	cache, err := s.loadCache()
	if err != nil {
		return nil, err
	}
	stats := &ScanStats{
		TotalPosts: len(cache.Posts),
		LastScan:   cache.LastScan,
		ScanCount:  cache.ScanCount,
	}
	var sum float64
	for _, p := range cache.Posts {
		if p.Replied {
			stats.Replied++
		}
		sum += p.OpportunityScore
		if p.OpportunityScore > stats.TopOpportunity {
			stats.TopOpportunity = p.OpportunityScore
		}
	}
	if len(cache.Posts) > 0 {
		stats.AvgScore = sum / float64(len(cache.Posts))
	}
	return stats, nil
}
