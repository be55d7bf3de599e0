package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a FileStore rooted in a temp dir.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestSession creates a user with a fintwit profile and opens a
// session for it.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	store := newTestStore(t)
	users := NewUsers(store, testLogger())
	_, err := users.Create("Test User", CreateOptions{
		Niche: "fintwit",
		Goal:  GoalGrowFollowers,
	})
	require.NoError(t, err)
	session, err := users.OpenSession("Test User")
	require.NoError(t, err)
	return session
}

func testSettings() *Settings {
	return defaultSettingsValues()
}
