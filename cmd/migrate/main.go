package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Maintenance tool for the voicekit data directory. "check" reports
// malformed JSON files and user data with no matching profile;
// "prune-orphans" deletes the orphaned user data.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <check|prune-orphans> <data-directory>")
	}

	command := os.Args[1]
	dataDir := os.Args[2]

	switch command {
	case "check":
		if err := check(dataDir); err != nil {
			log.Fatal(err)
		}
	case "prune-orphans":
		if err := pruneOrphans(dataDir); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

func check(dataDir string) error {
	malformed := 0
	err := filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Unreadable: %s (%v)", path, err)
			malformed++
			return nil
		}
		if !json.Valid(data) {
			log.Printf("Malformed JSON: %s", path)
			malformed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	orphans, err := orphanedUserDirs(dataDir)
	if err != nil {
		return err
	}
	for _, dir := range orphans {
		log.Printf("Orphaned user data: %s", dir)
	}

	log.Printf("Check complete: %d malformed file(s), %d orphaned user dir(s)", malformed, len(orphans))
	return nil
}

func pruneOrphans(dataDir string) error {
	orphans, err := orphanedUserDirs(dataDir)
	if err != nil {
		return err
	}
	for _, dir := range orphans {
		log.Printf("Removing %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	log.Printf("Pruned %d orphaned user dir(s)", len(orphans))
	return nil
}

// orphanedUserDirs returns data/<user> directories with no matching
// profiles/<user>.json.
func orphanedUserDirs(dataDir string) ([]string, error) {
	profiles := map[string]bool{}
	entries, err := os.ReadDir(filepath.Join(dataDir, "profiles"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			profiles[strings.TrimSuffix(e.Name(), ".json")] = true
		}
	}

	userRoot := filepath.Join(dataDir, "data")
	users, err := os.ReadDir(userRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading user data: %w", err)
	}

	var orphans []string
	for _, u := range users {
		if u.IsDir() && !profiles[u.Name()] {
			orphans = append(orphans, filepath.Join(userRoot, u.Name()))
		}
	}
	return orphans, nil
}
