package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStorePutGet(t *testing.T) {
	store := newTestStore(t)

	in := testRecord{Name: "alpha", Count: 3}
	require.NoError(t, store.Put("group/alpha", in))

	var out testRecord
	require.NoError(t, store.Get("group/alpha", &out))
	assert.Equal(t, in, out)
}

func TestFileStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	var out testRecord
	err := store.Get("nope", &out)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreGetMalformed(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.root, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	var out testRecord
	err := store.Get("bad", &out)
	var malformed *MalformedError
	assert.True(t, asMalformed(err, &malformed))
}

func TestFileStoreDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("k", testRecord{}))
	require.NoError(t, store.Delete("k"))

	err := store.Delete("k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreList(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("posts/a", testRecord{}))
	require.NoError(t, store.Put("posts/b", testRecord{}))
	require.NoError(t, store.Put("other/c", testRecord{}))

	keys, err := store.List("posts/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"posts/a", "posts/b"}, keys)
}

func TestLoadOptional(t *testing.T) {
	store := newTestStore(t)

	var out testRecord
	found, err := loadOptional(store, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put("present", testRecord{Name: "x"}))
	found, err = loadOptional(store, "present", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", out.Name)

	path := filepath.Join(store.root, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("!!"), 0644))
	found, err = loadOptional(store, "broken", &out)
	assert.False(t, found)
	assert.Error(t, err)
}
