// Package session persists the access-token/user-id pair between runs.
// It is the single source of truth for "is this visitor authenticated";
// the pair is mutated only through Set (login success) and Clear
// (logout), so a half-written session can never be observed.
package session

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"qlink-client/model"
)

// ErrIncompleteToken is returned when Set is called with an empty half.
// The pair is a unit; writing only one value is the half-authenticated
// bug class this store exists to rule out.
var ErrIncompleteToken = errors.New("session token pair requires both accessToken and userId")

type record struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// Store is a file-backed session store. Records are keyed by API
// origin so sessions against different deployments don't clobber each
// other, mirroring per-origin browser storage.
type Store struct {
	mu       sync.Mutex
	path     string
	origin   string
	byOrigin map[string]record
}

// New opens the store at path for the given origin, loading whatever
// is on disk. A missing or malformed file reads as no session; New
// never fails.
func New(path, origin string) *Store {
	s := &Store{
		path:     path,
		origin:   origin,
		byOrigin: make(map[string]record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.byOrigin); err != nil {
		// Malformed stored values are treated as absent.
		log.Warn().Err(err).Str("path", path).Msg("Discarding unreadable session file")
		s.byOrigin = make(map[string]record)
	}
	return s
}

// OriginOf reduces an endpoint URL to its scheme://host origin, the
// scoping key for stored sessions.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

// Get returns the current token pair. Absent values read as empty
// strings; Get never fails.
func (s *Store) Get() model.SessionToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.byOrigin[s.origin]
	return model.SessionToken{AccessToken: rec.AccessToken, UserID: rec.UserID}
}

// Set writes both halves of the pair as one unit and persists them.
func (s *Store) Set(accessToken, userID string) error {
	if accessToken == "" || userID == "" {
		return ErrIncompleteToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byOrigin[s.origin] = record{AccessToken: accessToken, UserID: userID}
	return s.persist()
}

// Clear removes both halves of the pair and persists the removal.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byOrigin, s.origin)
	return s.persist()
}

// IsAuthenticated reports whether both halves of the pair are present.
func (s *Store) IsAuthenticated() bool {
	return s.Get().Authenticated()
}

// persist writes the whole store atomically: temp file in the same
// directory, then rename. Callers must hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.byOrigin, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "session-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
