package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scanPlatform  string
	scanClearDays int

	oppMinScore float64
	oppLimit    int
	oppReplyURL string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Ingest and manage trending posts",
}

var scanImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import posts from a JSON or saved HTML export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		platform, err := ParsePlatform(scanPlatform)
		if err != nil {
			return err
		}
		posts, err := NewImporter(log).ImportFile(args[0], platform)
		if err != nil {
			return err
		}
		added, err := NewScanner(s, settings).Ingest(posts)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d post(s), %d new\n", len(posts), added)
		return nil
	},
}

var scanStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scan cache totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		stats, err := NewScanner(s, settings).Stats()
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var scanClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached posts older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		removed, err := NewScanner(s, settings).ClearOld(scanClearDays)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d post(s)\n", removed)
		return nil
	},
}

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Show the best unreplied posts to engage with",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		posts, err := NewScanner(s, settings).GetOpportunities(oppMinScore, oppLimit)
		if err != nil {
			return err
		}
		for _, p := range posts {
			content := p.Content
			if len(content) > 60 {
				content = content[:60] + "..."
			}
			fmt.Printf("%s  %5.1f  @%-16s %s\n", p.ID, p.OpportunityScore, p.Author, content)
		}
		return nil
	},
}

var opportunityRepliedCmd = &cobra.Command{
	Use:   "replied <post-id>",
	Short: "Mark an opportunity as handled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		return NewScanner(s, settings).MarkReplied(args[0], oppReplyURL)
	},
}

func init() {
	scanImportCmd.Flags().StringVarP(&scanPlatform, "platform", "p", string(PlatformTwitter), "Platform the export came from")
	scanClearCmd.Flags().IntVar(&scanClearDays, "days", 7, "Age threshold in days")
	scanCmd.AddCommand(scanImportCmd, scanStatsCmd, scanClearCmd)

	opportunitiesCmd.Flags().Float64Var(&oppMinScore, "min", 0, "Minimum opportunity score (0 uses the configured floor)")
	opportunitiesCmd.Flags().IntVar(&oppLimit, "limit", 10, "Maximum number of posts")
	opportunityRepliedCmd.Flags().StringVar(&oppReplyURL, "url", "", "URL of your reply")
	opportunitiesCmd.AddCommand(opportunityRepliedCmd)

	rootCmd.AddCommand(scanCmd, opportunitiesCmd)
}
