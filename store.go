package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store is a JSON key-value persistence layer. Keys are slash-separated
// paths; values are whole records that are read and rewritten in full.
type Store interface {
	Get(key string, out any) error
	Put(key string, v any) error
	Delete(key string) error
	List(prefix string) ([]string, error)
}

// FileStore keeps one JSON file per key under a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key)+".json")
}

// Get decodes the record at key into out. Returns ErrNotFound when the
// key does not exist and MalformedError when the stored JSON is invalid.
func (s *FileStore) Get(key string, out any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &MalformedError{Key: key, Err: err}
	}
	return nil
}

// Put writes the record atomically: marshal, write to a temp file in the
// same directory, then rename over the target.
func (s *FileStore) Put(key string, v any) error {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// Delete removes the record at key. Returns ErrNotFound if absent.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return err
}

// List returns all keys under a prefix, sorted by path walk order.
func (s *FileStore) List(prefix string) ([]string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(prefix))
	var keys []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(strings.TrimSuffix(rel, ".json"))
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}
	return keys, nil
}

// loadOptional decodes key into out, treating a missing or unreadable
// record as absent so callers can start from a zero value. An unreadable
// record is surfaced to the caller as recovered=false with the error for
// logging.
func loadOptional(st Store, key string, out any) (found bool, err error) {
	switch err := st.Get(key, out); {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		var malformed *MalformedError
		if asMalformed(err, &malformed) {
			return false, malformed
		}
		return false, err
	}
}
