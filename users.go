package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const activeUserKey = "state/active_user"

type activeUserState struct {
	ActiveUser string    `json:"active_user"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Users manages voice profiles and the persisted active-user pointer.
type Users struct {
	store Store
	log   *logrus.Logger
}

// NewUsers creates a user manager.
func NewUsers(store Store, log *logrus.Logger) *Users {
	return &Users{store: store, log: log}
}

// CreateOptions seeds a new profile. Fields left empty fall back to the
// niche template when one matches the niche name.
type CreateOptions struct {
	Handles   map[Platform]string
	Niche     string
	Goal      Goal
	Watchlist []string
	Keywords  []string
}

// Create builds a version-1 profile, seeds it from the niche template,
// persists it, and makes it the active user.
func (u *Users) Create(name string, opts CreateOptions) (*VoiceProfile, error) {
	if _, err := u.Get(name); err == nil {
		return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("user %q already exists", name)}
	}

	goal := opts.Goal
	if goal == "" {
		goal = GoalGrowFollowers
	}

	profile, err := NewVoiceProfile(name, goal, opts.Niche)
	if err != nil {
		return nil, err
	}

	for p, h := range opts.Handles {
		profile.PlatformHandles[p] = strings.TrimPrefix(h, "@")
	}
	if h, ok := profile.PlatformHandles[PlatformTwitter]; ok && h != "" {
		profile.Username = h
	}

	profile.Watchlist = opts.Watchlist
	profile.Keywords = opts.Keywords

	if niche := loadNicheTemplate(opts.Niche); niche != nil {
		if len(profile.Watchlist) == 0 {
			profile.Watchlist = niche.DefaultWatchlist
		}
		if len(profile.Keywords) == 0 {
			profile.Keywords = niche.Keywords
		}
		if niche.Tone != "" {
			profile.Voice.Tone = niche.Tone
		}
		if niche.Vocabulary != "" {
			profile.Voice.Vocabulary = niche.Vocabulary
		}
	}

	if err := u.store.Put(profileKey(name), profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	if err := u.setActive(name); err != nil {
		return nil, err
	}

	u.log.Infof("✓ Created user %q (niche=%s goal=%s)", name, opts.Niche, goal)
	return profile, nil
}

// Get loads a profile by name.
func (u *Users) Get(name string) (*VoiceProfile, error) {
	var p VoiceProfile
	if err := u.store.Get(profileKey(name), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all profiles.
func (u *Users) List() ([]VoiceProfile, error) {
	keys, err := u.store.List("profiles")
	if err != nil {
		return nil, err
	}

	profiles := make([]VoiceProfile, 0, len(keys))
	for _, key := range keys {
		var p VoiceProfile
		if err := u.store.Get(key, &p); err != nil {
			u.log.Warnf("Skipping unreadable profile %s: %v", key, err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Active returns the active user name, or ErrNoActiveUser.
func (u *Users) Active() (string, error) {
	var state activeUserState
	found, err := loadOptional(u.store, activeUserKey, &state)
	if err != nil {
		u.log.Warnf("Active-user state unreadable, treating as unset: %v", err)
		return "", ErrNoActiveUser
	}
	if !found || state.ActiveUser == "" {
		return "", ErrNoActiveUser
	}
	return state.ActiveUser, nil
}

// Switch makes an existing user the active one.
func (u *Users) Switch(name string) error {
	profile, err := u.Get(name)
	if err != nil {
		return fmt.Errorf("switching user: %w", err)
	}
	return u.setActive(profile.Name)
}

// Delete removes a profile and clears the active pointer if it pointed
// at the deleted user.
func (u *Users) Delete(name string) error {
	if err := u.store.Delete(profileKey(name)); err != nil {
		return err
	}
	if active, err := u.Active(); err == nil && active == name {
		if err := u.store.Put(activeUserKey, activeUserState{UpdatedAt: time.Now()}); err != nil {
			return fmt.Errorf("clearing active user: %w", err)
		}
	}
	return nil
}

// UpdateBaseline overwrites the profile's baseline metrics snapshot.
func (u *Users) UpdateBaseline(name string, followers int, engagementRate float64) error {
	profile, err := u.Get(name)
	if err != nil {
		return err
	}
	profile.Baseline = BaselineMetrics{
		Followers:         followers,
		AvgEngagementRate: engagementRate,
		CapturedAt:        time.Now(),
	}
	profile.UpdatedAt = time.Now()
	return u.store.Put(profileKey(name), profile)
}

// OpenSession builds a session for the named user, or for the active
// user when name is empty.
func (u *Users) OpenSession(name string) (*Session, error) {
	if name == "" {
		active, err := u.Active()
		if err != nil {
			return nil, err
		}
		name = active
	}
	profile, err := u.Get(name)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	return NewSession(u.store, profile.Name, u.log), nil
}

func (u *Users) setActive(name string) error {
	return u.store.Put(activeUserKey, activeUserState{
		ActiveUser: name,
		UpdatedAt:  time.Now(),
	})
}
