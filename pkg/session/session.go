// Package session keeps the client's bearer credential and a cached
// profile snapshot in local storage, so the UI can render the signed-in
// state before re-authentication completes.
package session

import (
	"encoding/json"

	"github.com/communityhub/community-services/pkg/localstore"
)

// Profile is the cached user snapshot. Display data only; the server
// never trusts it.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session struct {
	storage localstore.Storage
	token   string
	profile *Profile
}

// Load reads the stored credential and profile. A corrupt profile entry
// is discarded silently; a missing token simply means signed out.
func Load(storage localstore.Storage) *Session {
	s := &Session{storage: storage}

	if data, err := storage.Load(localstore.KeyToken); err == nil {
		s.token = string(data)
	}
	if data, err := storage.Load(localstore.KeyProfile); err == nil {
		var p Profile
		if json.Unmarshal(data, &p) == nil {
			s.profile = &p
		} else {
			storage.Delete(localstore.KeyProfile)
		}
	}
	return s
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) Profile() *Profile {
	return s.profile
}

func (s *Session) SignedIn() bool {
	return s.token != ""
}

// SignIn stores the credential and profile snapshot.
func (s *Session) SignIn(token string, p Profile) error {
	s.token = token
	s.profile = &p
	if err := s.storage.Save(localstore.KeyToken, []byte(token)); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.storage.Save(localstore.KeyProfile, data)
}

// SignOut clears the credential and profile from storage.
func (s *Session) SignOut() error {
	s.token = ""
	s.profile = nil
	if err := s.storage.Delete(localstore.KeyToken); err != nil {
		return err
	}
	return s.storage.Delete(localstore.KeyProfile)
}
