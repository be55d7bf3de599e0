package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	reportOffset int

	evolveSelect []int

	targetReason   string
	targetSource   string
	targetTags     []string
	targetStatusF  string
	targetDays     int
	unfollowReason string
	suggestLimit   int

	benchNiche    string
	benchPostedAt string

	expVariable string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Weekly performance reports",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the report for a week (--offset weeks back)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		feedback := NewFeedback(s, NewTracker(s, settings), NewBenchmarks(store, log))
		summary, err := feedback.GenerateWeekly(reportOffset)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <week-index>",
	Short: "Show a stored weekly report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return &ValidationError{Field: "week-index", Reason: "must be a number like 202635"}
		}
		feedback := NewFeedback(s, NewTracker(s, settings), NewBenchmarks(store, log))
		summary, err := feedback.GetReport(index)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored weekly reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		feedback := NewFeedback(s, NewTracker(s, settings), NewBenchmarks(store, log))
		summaries, err := feedback.ListReports()
		if err != nil {
			return err
		}
		for _, summary := range summaries {
			fmt.Printf("%d  %s  %d posts, avg engagement %.0f\n",
				summary.WeekIndex, summary.WeekStart.Format("2006-01-02"), summary.PostCount, summary.AvgEngagement)
		}
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Analyze direction across stored weekly reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		feedback := NewFeedback(s, NewTracker(s, settings), NewBenchmarks(store, log))
		analysis, err := feedback.Trends()
		if err != nil {
			return err
		}
		return printJSON(analysis)
	},
}

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Evolve the voice profile from what performs",
}

var evolvePatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show patterns mined from top posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		patterns, err := NewEvolver(s, NewTracker(s, settings)).ExtractPatterns()
		if err != nil {
			return err
		}
		return printJSON(patterns)
	},
}

var evolveSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Propose profile changes backed by evidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		suggestions, err := NewEvolver(s, NewTracker(s, settings)).Suggest()
		if err != nil {
			return err
		}
		for i, sg := range suggestions {
			fmt.Printf("[%d] %s -> %q (%s)\n", i, sg.Field, sg.Proposed, sg.Evidence)
		}
		return nil
	},
}

var evolveApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply selected suggestions (--select 0,2) and bump the profile version",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		evolver := NewEvolver(s, NewTracker(s, settings))
		suggestions, err := evolver.Suggest()
		if err != nil {
			return err
		}
		profile, err := evolver.Apply(suggestions, evolveSelect)
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var evolveHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived profile versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		history, err := NewEvolver(s, NewTracker(s, settings)).History()
		if err != nil {
			return err
		}
		for _, snap := range history {
			fmt.Printf("v%d  %s  %v\n", snap.Version, snap.CreatedAt.Format("2006-01-02"), snap.Changes)
		}
		return nil
	},
}

var evolveCompareCmd = &cobra.Command{
	Use:   "compare <version-a> <version-b>",
	Short: "Diff two profile versions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		a, errA := strconv.Atoi(args[0])
		b, errB := strconv.Atoi(args[1])
		if errA != nil || errB != nil {
			return &ValidationError{Field: "version", Reason: "versions must be numbers"}
		}
		diffs, err := NewEvolver(s, NewTracker(s, settings)).CompareVersions(a, b)
		if err != nil {
			return err
		}
		if len(diffs) == 0 {
			fmt.Println("no differences")
			return nil
		}
		for _, d := range diffs {
			fmt.Println(d)
		}
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Track follow targets through the followback lifecycle",
}

var targetsAddCmd = &cobra.Command{
	Use:   "add <handle>",
	Short: "Add a follow target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		target, err := NewTargets(s, settings).Add(args[0], targetReason, targetSource, targetTags)
		if err != nil {
			return err
		}
		return printJSON(target)
	},
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List targets, optionally filtered by --status",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		targets, err := NewTargets(s, settings).List(TargetStatus(targetStatusF))
		if err != nil {
			return err
		}
		for _, t := range targets {
			fmt.Printf("@%-18s %-14s added %s\n", t.Handle, t.Status, t.AddedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var targetsFollowCmd = &cobra.Command{
	Use:   "follow <handle>",
	Short: "Record that you followed a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		_, err = NewTargets(s, settings).TrackFollow(args[0])
		return err
	},
}

var targetsFollowbackCmd = &cobra.Command{
	Use:   "followback <handle> <yes|no>",
	Short: "Record whether a target followed back",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		followedBack := args[1] == "yes" || args[1] == "true"
		_, err = NewTargets(s, settings).RecordFollowback(args[0], followedBack)
		return err
	},
}

var targetsUnfollowCmd = &cobra.Command{
	Use:   "unfollow <handle>",
	Short: "Record that you unfollowed a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		_, err = NewTargets(s, settings).RecordUnfollow(args[0], unfollowReason)
		return err
	},
}

var targetsCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List follows old enough to unfollow without a followback",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		candidates, err := NewTargets(s, settings).UnfollowCandidates(targetDays)
		if err != nil {
			return err
		}
		for _, t := range candidates {
			fmt.Printf("@%-18s followed %s\n", t.Handle, t.FollowedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var targetsSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest new targets from scanned high-opportunity authors",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		suggestions, err := NewTargets(s, settings).Suggest(suggestLimit)
		if err != nil {
			return err
		}
		if len(suggestions) == 0 {
			fmt.Println("No suggestions. Run a scan import first.")
			return nil
		}
		for _, sg := range suggestions {
			fmt.Printf("@%-18s %s\n", sg.Handle, sg.Reason)
		}
		return nil
	},
}

var targetsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show followback rate and status counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		stats, err := NewTargets(s, settings).Stats()
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Maintain niche benchmarks from top performers",
}

var benchmarkAccountCmd = &cobra.Command{
	Use:   "add-account <handle> <followers> <avg-engagement>",
	Short: "Record a top account for the niche",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := NewBenchmarks(store, log).AddAccount(resolveNiche(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(entry.Metrics)
	},
}

var benchmarkPostCmd = &cobra.Command{
	Use:   "add-post <author> <content> <engagement>",
	Short: "Record a viral post and recompute niche patterns",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		postedAt := time.Now()
		if benchPostedAt != "" {
			parsed, err := time.Parse(time.RFC3339, benchPostedAt)
			if err != nil {
				return &ValidationError{Field: "posted-at", Reason: "want RFC3339 timestamp"}
			}
			postedAt = parsed
		}
		entry, err := NewBenchmarks(store, log).AddViralPost(resolveNiche(), args[0], args[1], args[2], postedAt)
		if err != nil {
			return err
		}
		return printJSON(entry.Patterns)
	},
}

var benchmarkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the niche benchmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := NewBenchmarks(store, log).Get(resolveNiche())
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

var benchmarkCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare your recent posts against the niche benchmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		profile, err := s.Profile()
		if err != nil {
			return err
		}
		records, err := NewTracker(s, settings).List()
		if err != nil {
			return err
		}
		niche := benchNiche
		if niche == "" {
			niche = profile.Niche
		}
		comparison, err := NewBenchmarks(store, log).Compare(niche, records, profile)
		if err != nil {
			return err
		}
		return printJSON(comparison)
	},
}

var benchmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored benchmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := NewBenchmarks(store, log).List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

// resolveNiche picks --niche, then the active profile's niche, then the
// configured default benchmark.
func resolveNiche() string {
	if benchNiche != "" {
		return benchNiche
	}
	if s, err := session(); err == nil {
		if profile, err := s.Profile(); err == nil && profile.Niche != "" {
			return profile.Niche
		}
	}
	return settings.Benchmark
}

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run A/B tests over content variables",
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <hypothesis> <variant>...",
	Short: "Create a draft experiment with at least two variants",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		exp, err := NewExperiments(s).Create(args[0], expVariable, args[1:])
		if err != nil {
			return err
		}
		return printJSON(exp)
	},
}

var experimentStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a draft experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		_, err = NewExperiments(s).Start(args[0])
		return err
	},
}

var experimentResultCmd = &cobra.Command{
	Use:   "result <id> <variant> <score>",
	Short: "Record a variant's measured score",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return &ValidationError{Field: "score", Reason: "must be a number"}
		}
		_, err = NewExperiments(s).RecordResult(args[0], args[1], score)
		return err
	},
}

var experimentCompleteCmd = &cobra.Command{
	Use:   "complete <id> [conclusion]",
	Short: "Complete an experiment and pick the winner",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		conclusion := ""
		if len(args) > 1 {
			conclusion = args[1]
		}
		exp, err := NewExperiments(s).Complete(args[0], conclusion)
		if err != nil {
			return err
		}
		return printJSON(exp)
	},
}

var experimentAbortCmd = &cobra.Command{
	Use:   "abort <id> [reason]",
	Short: "Abort an experiment without a winner",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		reason := ""
		if len(args) > 1 {
			reason = args[1]
		}
		_, err = NewExperiments(s).Abort(args[0], reason)
		return err
	},
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		exps, err := NewExperiments(s).List()
		if err != nil {
			return err
		}
		for _, exp := range exps {
			fmt.Printf("%s  %-8s  %s: %s\n", exp.ID, exp.Status, exp.Variable, exp.Hypothesis)
		}
		return nil
	},
}

var platformCmd = &cobra.Command{
	Use:   "platform <name>",
	Short: "Show a platform's rules and length ranges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := ParsePlatform(args[0])
		if err != nil {
			return err
		}
		return printJSON(PlatformConfigFor(platform))
	},
}

func init() {
	reportGenerateCmd.Flags().IntVar(&reportOffset, "offset", 0, "Weeks back from the current week")
	reportCmd.AddCommand(reportGenerateCmd, reportShowCmd, reportListCmd)

	evolveApplyCmd.Flags().IntSliceVar(&evolveSelect, "select", nil, "Indices of suggestions to apply")
	evolveCmd.AddCommand(evolvePatternsCmd, evolveSuggestCmd, evolveApplyCmd, evolveHistoryCmd, evolveCompareCmd)

	targetsAddCmd.Flags().StringVar(&targetReason, "reason", "", "Why this account is a target")
	targetsAddCmd.Flags().StringVar(&targetSource, "source", "manual", "Where the target came from")
	targetsAddCmd.Flags().StringSliceVar(&targetTags, "tag", nil, "Tags for the target")
	targetsListCmd.Flags().StringVar(&targetStatusF, "status", "", "Filter by status")
	targetsCandidatesCmd.Flags().IntVar(&targetDays, "days", 0, "Minimum days since follow (0 uses the configured default)")
	targetsUnfollowCmd.Flags().StringVar(&unfollowReason, "reason", "", "Why the target was unfollowed")
	targetsSuggestCmd.Flags().IntVar(&suggestLimit, "limit", 5, "Maximum suggestions")
	targetsCmd.AddCommand(targetsAddCmd, targetsListCmd, targetsFollowCmd, targetsFollowbackCmd, targetsUnfollowCmd, targetsCandidatesCmd, targetsSuggestCmd, targetsStatsCmd)

	benchmarkCmd.PersistentFlags().StringVar(&benchNiche, "niche", "", "Benchmark niche (defaults to the active user's)")
	benchmarkPostCmd.Flags().StringVar(&benchPostedAt, "posted-at", "", "When the post went out (RFC3339)")
	benchmarkCmd.AddCommand(benchmarkAccountCmd, benchmarkPostCmd, benchmarkShowCmd, benchmarkCompareCmd, benchmarkListCmd)

	experimentCreateCmd.Flags().StringVar(&expVariable, "variable", "hook", "Variable under test")
	experimentCmd.AddCommand(experimentCreateCmd, experimentStartCmd, experimentResultCmd, experimentCompleteCmd, experimentAbortCmd, experimentListCmd)

	rootCmd.AddCommand(reportCmd, trendsCmd, evolveCmd, targetsCmd, benchmarkCmd, experimentCmd, platformCmd)
}
