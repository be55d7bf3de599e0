package main

import (
	"fmt"
	"path"

	"github.com/sirupsen/logrus"
)

// Session binds the store, the logger, and the user that every manager
// operates on. Managers are constructed from a session instead of reading
// a process-wide active user.
type Session struct {
	Store Store
	User  string
	Log   *logrus.Logger
}

// NewSession creates a session for an existing user.
func NewSession(store Store, user string, log *logrus.Logger) *Session {
	return &Session{Store: store, User: user, Log: log}
}

// key builds a per-user data key: data/<user>/<parts...>.
func (s *Session) key(parts ...string) string {
	return path.Join(append([]string{"data", slugify(s.User)}, parts...)...)
}

// Profile loads the session user's voice profile.
func (s *Session) Profile() (*VoiceProfile, error) {
	var p VoiceProfile
	if err := s.Store.Get(profileKey(s.User), &p); err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", s.User, err)
	}
	return &p, nil
}

// SaveProfile validates and persists the profile.
func (s *Session) SaveProfile(p *VoiceProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.Store.Put(profileKey(p.Name), p)
}

func profileKey(name string) string {
	return path.Join("profiles", slugify(name))
}
