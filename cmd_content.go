package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	analyzePlatform string

	draftPlatform string
	draftCount    int
	draftAuthor   string
	draftTopic    string
	draftQueue    bool

	queueAddPlatform  string
	queueNextPlatform string
	queueStatus       string
	rejectReason      string

	logPlatform string
	logURL      string

	engagementLabel string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <content>",
	Short: "Break content down into hook, triggers, and platform fit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := ParsePlatform(analyzePlatform)
		if err != nil {
			return err
		}
		return printJSON(NewAnalyzer().Analyze(args[0], platform))
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft [post-content]",
	Short: "Draft reply candidates to a post, or an original post with --topic",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		platform, err := ParsePlatform(draftPlatform)
		if err != nil {
			return err
		}
		profile, err := s.Profile()
		if err != nil {
			return err
		}

		req := &DraftRequest{
			Platform: platform,
			Count:    draftCount,
			Profile:  profile,
		}
		if draftTopic != "" {
			req.Kind = DraftPost
			req.Topic = draftTopic
		} else {
			if len(args) == 0 {
				return &ValidationError{Field: "content", Reason: "post content or --topic required"}
			}
			req.Kind = DraftReply
			req.PostContent = args[0]
			req.PostAuthor = draftAuthor
		}

		benchmarks := NewBenchmarks(store, log)
		if entry, err := benchmarks.Get(profile.Niche); err == nil {
			req.Benchmark = entry
		}

		var llm TextGenerator
		if generator, err := NewLLMGenerator(anthropicKey(), settings, log); err == nil {
			llm = generator
		} else {
			log.Warn("no API key, using template generation only")
		}

		candidates, err := NewDrafter(llm, log).Draft(req)
		if err != nil {
			return err
		}

		if draftQueue {
			queue := NewQueue(s)
			for _, c := range candidates {
				item := &QueueItem{
					Platform:      platform,
					Content:       c.Text,
					Why:           c.Why,
					ReplyToAuthor: draftAuthor,
					Scores:        c.Scores,
				}
				if _, err := queue.Add(item); err != nil {
					return err
				}
			}
		}
		return printJSON(candidates)
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the content approval queue",
}

var queueAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Queue content for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		platform, err := ParsePlatform(queueAddPlatform)
		if err != nil {
			return err
		}
		item, err := NewQueue(s).Add(&QueueItem{Platform: platform, Content: args[0]})
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued content",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		items, err := NewQueue(s).List(QueueStatus(queueStatus))
		if err != nil {
			return err
		}
		for _, item := range items {
			content := item.Content
			if len(content) > 60 {
				content = content[:60] + "..."
			}
			fmt.Printf("%s  %-8s  %-9s  %.2f  %s\n", item.ID, item.Status, item.Platform, item.Scores.Composite, content)
		}
		return nil
	},
}

var queueApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		_, err = NewQueue(s).Approve(args[0])
		return err
	},
}

var queueRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending or approved item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		_, err = NewQueue(s).Reject(args[0], rejectReason)
		return err
	},
}

var queueEditCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Replace an item's content and rescore it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		item, err := NewQueue(s).EditContent(args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var queuePostedCmd = &cobra.Command{
	Use:     "posted <id> <url>",
	Aliases: []string{"post"},
	Short:   "Mark an approved item as posted and start tracking it",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		item, err := NewQueue(s).MarkPosted(args[0], args[1])
		if err != nil {
			return err
		}
		record, err := NewTracker(s, settings).LogPost(item.Content, item.Platform, args[1], time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("tracking as %s\n", record.ID)
		return nil
	},
}

var queueNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the best approved item to post next",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		var platform Platform
		if queueNextPlatform != "" {
			platform, err = ParsePlatform(queueNextPlatform)
			if err != nil {
				return err
			}
		}
		item, err := NewQueue(s).NextToPost(platform)
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var queueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue counts and average scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		stats, err := NewQueue(s).Stats()
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var logCmd = &cobra.Command{
	Use:   "log <content>",
	Short: "Log a post that was published outside the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		platform, err := ParsePlatform(logPlatform)
		if err != nil {
			return err
		}
		record, err := NewTracker(s, settings).LogPost(args[0], platform, logURL, time.Now())
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List tracked posts with engagement scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		tracker := NewTracker(s, settings)
		records, err := tracker.List()
		if err != nil {
			return err
		}
		for _, r := range records {
			content := r.Content
			if len(content) > 50 {
				content = content[:50] + "..."
			}
			fmt.Printf("%s  %s  %-9s  score %.0f  %s\n",
				r.ID, r.PostedAt.Format("2006-01-02"), r.Platform, tracker.EngagementScore(r), content)
		}
		return nil
	},
}

var engagementCmd = &cobra.Command{
	Use:   "engagement <post-id> <metric=value>...",
	Short: "Record an engagement snapshot for a tracked post",
	Long: `Records metrics like likes=120 replies=14 for a post at a capture
label (initial, 24h, 48h, or 7d). Recording the same label again
overwrites it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		metrics := map[string]int{}
		for _, pair := range args[1:] {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return &ValidationError{Field: "metrics", Reason: fmt.Sprintf("want metric=value, got %q", pair)}
			}
			n, err := parseMetric(value)
			if err != nil {
				return &ValidationError{Field: name, Reason: err.Error()}
			}
			metrics[name] = n
		}
		record, err := NewTracker(s, settings).UpdateEngagement(args[0], engagementLabel, metrics)
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePlatform, "platform", "p", string(PlatformTwitter), "Target platform")

	draftCmd.Flags().StringVarP(&draftPlatform, "platform", "p", string(PlatformTwitter), "Target platform")
	draftCmd.Flags().IntVarP(&draftCount, "count", "n", 3, "Number of candidates")
	draftCmd.Flags().StringVar(&draftAuthor, "author", "", "Author of the post being replied to")
	draftCmd.Flags().StringVar(&draftTopic, "topic", "", "Draft an original post about this topic instead of a reply")
	draftCmd.Flags().BoolVar(&draftQueue, "queue", false, "Queue all candidates for review")

	queueAddCmd.Flags().StringVarP(&queueAddPlatform, "platform", "p", string(PlatformTwitter), "Target platform")
	queueListCmd.Flags().StringVar(&queueStatus, "status", "", "Filter by status")
	queueRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Why the item was rejected")
	queueNextCmd.Flags().StringVarP(&queueNextPlatform, "platform", "p", "", "Filter by platform")
	queueCmd.AddCommand(queueAddCmd, queueListCmd, queueApproveCmd, queueRejectCmd, queueEditCmd, queuePostedCmd, queueNextCmd, queueStatsCmd)

	logCmd.Flags().StringVarP(&logPlatform, "platform", "p", string(PlatformTwitter), "Platform the post went out on")
	logCmd.Flags().StringVar(&logURL, "url", "", "URL of the published post")

	engagementCmd.Flags().StringVar(&engagementLabel, "label", "initial", "Capture label (initial, 24h, 48h, 7d)")

	rootCmd.AddCommand(analyzeCmd, draftCmd, queueCmd, logCmd, historyCmd, engagementCmd)
}
