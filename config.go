package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".voicekit"

// Embedded configuration files, written to the config directory on first
// run so users can customize them.
//
//go:embed config/settings.yaml
var defaultSettings string

//go:embed config/niches.yaml
var defaultNiches string

//go:embed config/draft-system-prompt.md
var draftSystemPromptTemplate string

//go:embed config/draft-output-schema.json
var draftOutputSchema string

// Settings is the YAML configuration structure.
type Settings struct {
	Benchmark string `yaml:"benchmark"`

	Generator struct {
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"generator"`

	Scanner struct {
		RecencyWindowHours int     `yaml:"recency_window_hours"`
		BaseRelevance      float64 `yaml:"base_relevance"`
		MinScore           float64 `yaml:"min_score"`
	} `yaml:"scanner"`

	Targets struct {
		FollowbackCheckDays   int `yaml:"followback_check_days"`
		AutoUnfollowAfterDays int `yaml:"auto_unfollow_after_days"`
	} `yaml:"targets"`

	EngagementWeights map[string]int `yaml:"engagement_weights"`
}

// defaultSettingsValues returns settings used when no file exists.
func defaultSettingsValues() *Settings {
	var s Settings
	// The embedded defaults are authoritative; parsing them cannot fail
	// at runtime because they ship with the binary.
	_ = yaml.Unmarshal([]byte(defaultSettings), &s)
	return &s
}

// loadSettings loads settings from YAML with fallback to embedded defaults.
func loadSettings(configDir string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Join(configDir, "settings.yaml"))
	if err != nil {
		return defaultSettingsValues(), nil
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	defaults := defaultSettingsValues()
	if settings.Benchmark == "" {
		settings.Benchmark = defaults.Benchmark
	}
	if settings.Generator.Model == "" {
		settings.Generator = defaults.Generator
	}
	if settings.Scanner.RecencyWindowHours == 0 {
		settings.Scanner = defaults.Scanner
	}
	if settings.Targets.FollowbackCheckDays == 0 {
		settings.Targets = defaults.Targets
	}
	if len(settings.EngagementWeights) == 0 {
		settings.EngagementWeights = defaults.EngagementWeights
	}
	return &settings, nil
}

// ensureConfigExists creates the config directory and writes embedded
// defaults for files that don't exist yet.
func ensureConfigExists(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	files := map[string]string{
		"settings.yaml": defaultSettings,
		"niches.yaml":   defaultNiches,
	}
	for name, content := range files {
		path := filepath.Join(configDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
	}
	return nil
}

// NicheTemplate seeds profile defaults for a named niche.
type NicheTemplate struct {
	Benchmark        string   `yaml:"benchmark"`
	Tone             string   `yaml:"tone"`
	Vocabulary       string   `yaml:"vocabulary"`
	DefaultWatchlist []string `yaml:"default_watchlist"`
	Keywords         []string `yaml:"keywords"`
}

// loadNicheTemplate returns the template for a niche, or nil when the
// niche is unknown. A niches.yaml in the configured directory overrides
// the embedded set.
func loadNicheTemplate(niche string) *NicheTemplate {
	if niche == "" {
		return nil
	}

	dir := configDir
	if dir == "" {
		dir = defaultConfigDir
	}
	source := defaultNiches
	if data, err := os.ReadFile(filepath.Join(dir, "niches.yaml")); err == nil {
		source = string(data)
	}

	var niches map[string]NicheTemplate
	if err := yaml.Unmarshal([]byte(source), &niches); err != nil {
		return nil
	}

	if t, ok := niches[strings.ToLower(niche)]; ok {
		return &t
	}
	return nil
}
