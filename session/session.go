// Package session holds the signed-in identity and credit count on the
// client side. There is no server session; identity travels explicitly with
// every request. Sign-in here is local bookkeeping only — no credential
// verification happens anywhere in this flow.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// User is the client's view of the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Credits  int    `json:"credits"`
}

type snapshot struct {
	User *User `json:"user"`
}

// Store keeps the current user, notifies subscribers synchronously on every
// mutation, and persists a snapshot so state survives a restart.
type Store struct {
	mu      sync.Mutex
	path    string
	current *User
	subs    map[int]func(*User)
	nextSub int
}

// NewStore creates a session store persisting to path. An empty path
// disables persistence.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		subs: make(map[int]func(*User)),
	}
}

// Load reads back a previously persisted snapshot. A missing file is a
// fresh, signed-out session.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = snap.User
	s.mu.Unlock()
	return nil
}

// Current returns the signed-in user, or nil when unauthenticated.
func (s *Store) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

func (s *Store) SignIn(user User) {
	s.set(&user)
}

func (s *Store) SignUp(user User) {
	s.set(&user)
}

func (s *Store) SignOut() {
	s.set(nil)
}

// UpdateCredits overwrites the cached balance, typically after a successful
// generation response. It is a no-op while signed out.
func (s *Store) UpdateCredits(credits int) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	updated := *s.current
	updated.Credits = credits
	s.mu.Unlock()

	s.set(&updated)
}

// Subscribe registers an observer invoked synchronously after every state
// change. The returned function unsubscribes it.
func (s *Store) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(user *User) {
	s.mu.Lock()
	s.current = user

	var notifyWith *User
	if user != nil {
		u := *user
		notifyWith = &u
	}

	subs := make([]func(*User), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	path := s.path
	s.mu.Unlock()

	if path != "" {
		// Persistence is best-effort; a failed write only costs the next
		// reload its snapshot.
		if data, err := json.Marshal(snapshot{User: user}); err == nil {
			_ = os.WriteFile(path, data, 0o600)
		}
	}

	for _, fn := range subs {
		fn(notifyWith)
	}
}
