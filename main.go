package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configDir string
	dataDir   string
	apiKey    string
	userFlag  string
	debugMode bool

	log      *logrus.Logger
	store    Store
	settings *Settings
	users    *Users
)

var rootCmd = &cobra.Command{
	Use:   "voicekit",
	Short: "Personal social media content engine",
	Long: `voicekit drafts, scores, queues, and tracks social media content in
your own voice, learning from what actually performs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = newLogger(debugMode)

		if err := ensureConfigExists(configDir); err != nil {
			return err
		}
		var err error
		settings, err = loadSettings(configDir)
		if err != nil {
			return err
		}

		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err = NewFileStore(dataDir)
		if err != nil {
			return err
		}
		users = NewUsers(store, log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultConfigDir, "Config directory")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default <config-dir>/data)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Anthropic API key")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Act as this user instead of the active one")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

// session opens a session for --user or the active user.
func session() (*Session, error) {
	return users.OpenSession(userFlag)
}

// anthropicKey resolves the API key from the flag or environment.
func anthropicKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// printJSON renders command output for both humans and pipelines.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
