package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	createNiche     string
	createGoal      string
	createTwitter   string
	createLinkedIn  string
	createInstagram string
	createWatchlist []string
	createKeywords  []string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user profiles",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a user profile and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := ParseGoal(createGoal)
		if err != nil {
			return err
		}
		handles := map[Platform]string{}
		if createTwitter != "" {
			handles[PlatformTwitter] = createTwitter
		}
		if createLinkedIn != "" {
			handles[PlatformLinkedIn] = createLinkedIn
		}
		if createInstagram != "" {
			handles[PlatformInstagram] = createInstagram
		}

		profile, err := users.Create(args[0], CreateOptions{
			Handles:   handles,
			Niche:     createNiche,
			Goal:      goal,
			Watchlist: createWatchlist,
			Keywords:  createKeywords,
		})
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := users.List()
		if err != nil {
			return err
		}
		active, _ := users.Active()
		for _, p := range profiles {
			marker := " "
			if p.Name == active {
				marker = "*"
			}
			fmt.Printf("%s %s (niche: %s, goal: %s, v%d)\n", marker, p.Name, p.Niche, p.Goal, p.Version)
		}
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:     "show [name]",
	Aliases: []string{"profile"},
	Short:   "Show a user's full profile",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := userFlag
		if len(args) > 0 {
			name = args[0]
		}
		s, err := users.OpenSession(name)
		if err != nil {
			return err
		}
		profile, err := s.Profile()
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var userSwitchCmd = &cobra.Command{
	Use:     "switch <name>",
	Aliases: []string{"use"},
	Short:   "Make a user the active one",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return users.Switch(args[0])
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return users.Delete(args[0])
	},
}

var userBaselineCmd = &cobra.Command{
	Use:   "baseline <followers> <engagement-rate>",
	Short: "Record the account's current baseline metrics",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session()
		if err != nil {
			return err
		}
		followers, err := parseMetric(args[0])
		if err != nil {
			return &ValidationError{Field: "followers", Reason: err.Error()}
		}
		rate, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return &ValidationError{Field: "engagement-rate", Reason: err.Error()}
		}
		return users.UpdateBaseline(s.User, followers, rate)
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&createNiche, "niche", "", "Niche template to seed the profile from")
	userCreateCmd.Flags().StringVar(&createGoal, "goal", string(GoalGrowFollowers), "Growth goal (grow_followers, drive_traffic, build_authority)")
	userCreateCmd.Flags().StringVar(&createTwitter, "twitter", "", "Twitter handle")
	userCreateCmd.Flags().StringVar(&createLinkedIn, "linkedin", "", "LinkedIn handle")
	userCreateCmd.Flags().StringVar(&createInstagram, "instagram", "", "Instagram handle")
	userCreateCmd.Flags().StringSliceVar(&createWatchlist, "watch", nil, "Accounts to watch")
	userCreateCmd.Flags().StringSliceVar(&createKeywords, "keyword", nil, "Keywords to track")

	userCmd.AddCommand(userCreateCmd, userListCmd, userShowCmd, userSwitchCmd, userDeleteCmd, userBaselineCmd)
	rootCmd.AddCommand(userCmd)
}
