package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportJSONArray(t *testing.T) {
	path := writeExport(t, "export.json", `[
		{"author": "@trader", "content": "gamma pinning into opex", "likes": 120},
		{"author": "@other", "content": "volatility is back", "platform": "linkedin"}
	]`)

	posts, err := NewImporter(testLogger()).ImportFile(path, PlatformTwitter)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "@trader", posts[0].Author)
	assert.Equal(t, 120, posts[0].Likes)
	assert.Equal(t, PlatformTwitter, posts[0].Platform)
	// Explicit platform in the file wins over the default.
	assert.Equal(t, PlatformLinkedIn, posts[1].Platform)
}

func TestImportJSONWrapper(t *testing.T) {
	path := writeExport(t, "export.json", `{"posts": [{"author": "a", "content": "flow recap"}]}`)

	posts, err := NewImporter(testLogger()).ImportFile(path, PlatformTwitter)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "flow recap", posts[0].Content)
}

func TestImportJSONMalformed(t *testing.T) {
	path := writeExport(t, "export.json", `{not json`)
	_, err := NewImporter(testLogger()).ImportFile(path, PlatformTwitter)
	assert.Error(t, err)
}

func TestImportHTMLTimeline(t *testing.T) {
	page := `<html><body>
		<article data-author="@spotgamma" data-likes="1.2K" data-retweets="300">
			<div class="content"><p>Dealers flip <strong>short</strong> below 5900.</p></div>
			<a href="https://example.com/status/1">link</a>
			<time datetime="2026-08-24T09:00:00Z"></time>
		</article>
		<article>
			<span class="author">plain_author</span>
			<div class="content">Second post body</div>
		</article>
		<article></article>
	</body></html>`
	path := writeExport(t, "timeline.html", page)

	posts, err := NewImporter(testLogger()).ImportFile(path, PlatformTwitter)
	require.NoError(t, err)
	require.Len(t, posts, 2) // empty article skipped

	first := posts[0]
	assert.Equal(t, "@spotgamma", first.Author)
	assert.Equal(t, 1200, first.Likes)
	assert.Equal(t, 300, first.Retweets)
	assert.Contains(t, first.Content, "**short**")
	assert.Equal(t, "https://example.com/status/1", first.URL)
	assert.Equal(t, time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), first.PostedAt.UTC())

	second := posts[1]
	assert.Equal(t, "plain_author", second.Author)
	assert.Equal(t, "Second post body", second.Content)
	assert.False(t, second.PostedAt.IsZero())
}

func TestImportMissingFile(t *testing.T) {
	_, err := NewImporter(testLogger()).ImportFile(filepath.Join(t.TempDir(), "missing.json"), PlatformTwitter)
	assert.Error(t, err)
}
