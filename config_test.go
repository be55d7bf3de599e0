package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValues(t *testing.T) {
	s := defaultSettingsValues()
	assert.Equal(t, "finance_twitter", s.Benchmark)
	assert.Equal(t, 24, s.Scanner.RecencyWindowHours)
	assert.Equal(t, 0.5, s.Scanner.BaseRelevance)
	assert.Equal(t, 14, s.Targets.AutoUnfollowAfterDays)
	assert.Equal(t, 1, s.EngagementWeights["likes"])
	assert.Equal(t, 2, s.EngagementWeights["replies"])
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, err := loadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, defaultSettingsValues().Benchmark, s.Benchmark)
}

func TestLoadSettingsPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("benchmark: crypto_twitter\n"), 0644))

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "crypto_twitter", s.Benchmark)
	assert.Equal(t, 24, s.Scanner.RecencyWindowHours)
	assert.NotEmpty(t, s.Generator.Model)
}

func TestLoadSettingsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("benchmark: [unterminated"), 0644))

	_, err := loadSettings(dir)
	assert.Error(t, err)
}

func TestEnsureConfigExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	require.NoError(t, ensureConfigExists(dir))

	for _, name := range []string{"settings.yaml", "niches.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// Existing files are left alone.
	custom := []byte("benchmark: custom\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), custom, 0644))
	require.NoError(t, ensureConfigExists(dir))
	data, err := os.ReadFile(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}

func TestLoadNicheTemplate(t *testing.T) {
	fintwit := loadNicheTemplate("fintwit")
	require.NotNil(t, fintwit)
	assert.Equal(t, "professional", fintwit.Tone)
	assert.Contains(t, fintwit.DefaultWatchlist, "@spotgamma")
	assert.Contains(t, fintwit.Keywords, "gamma")

	assert.Nil(t, loadNicheTemplate(""))
	assert.Nil(t, loadNicheTemplate("underwater-basket-weaving"))
}

func TestLoadNicheTemplateReadsConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	custom := "fintwit:\n  tone: irreverent\n  keywords:\n    - vanna\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "niches.yaml"), []byte(custom), 0644))

	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })

	tmpl := loadNicheTemplate("fintwit")
	require.NotNil(t, tmpl)
	assert.Equal(t, "irreverent", tmpl.Tone)
	assert.Contains(t, tmpl.Keywords, "vanna")
}
