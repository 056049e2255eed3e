package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/models"
)

// state is what gets persisted: the bearer credential, the serialized
// profile, and the user id used when assembling submission payloads.
type state struct {
	Token  string       `json:"token,omitempty"`
	User   *models.User `json:"user,omitempty"`
	UserID string       `json:"userId,omitempty"`
}

// Session is the single process-wide holder of the auth credential. All
// access goes through it; nothing else reads the session file. Writes happen
// only on login, logout, and profile update.
type Session struct {
	mu   sync.RWMutex
	path string
	st   state
}

// Load reads the persisted session at path. A missing or corrupt file yields
// a logged-out session rather than an error.
func Load(path string) *Session {
	s := &Session{path: path}

	payload, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Println("[SESSION] read failed, starting logged out:", err)
		}
		return s
	}
	if err := json.Unmarshal(payload, &s.st); err != nil {
		log.Println("[SESSION] corrupt session file, starting logged out:", err)
		s.st = state{}
	}
	return s
}

// Token returns the stored credential, empty when logged out or expired.
// Expiry is screened locally from the JWT claims; the backend still owns
// signature verification.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.Token == "" || tokenExpired(s.st.Token) {
		return ""
	}
	return s.st.Token
}

// User returns the stored profile and whether one is present.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.User == nil {
		return models.User{}, false
	}
	return *s.st.User, true
}

// UserID returns the id recorded at login, used as SellerId on submissions.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.UserID
}

// LoggedIn reports whether a usable credential and profile are present.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Token != "" && s.st.User != nil && !tokenExpired(s.st.Token)
}

// Login stores the credential and profile and persists all keys together.
func (s *Session) Login(token string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{Token: token, User: &user, UserID: user.ID}
	return s.persist()
}

// UpdateUser replaces the stored profile, keeping the credential.
func (s *Session) UpdateUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.User = &user
	if user.ID != "" {
		s.st.UserID = user.ID
	}
	return s.persist()
}

// Logout clears the token, user, and userId in one write.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{}
	return s.persist()
}

// persist writes the state atomically: temp file in the same directory, then
// rename. Callers hold the lock.
func (s *Session) persist() error {
	payload, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "session-*.json")
	if err != nil {
		return fmt.Errorf("session: create temp: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("session: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("session: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("session: replace session file: %w", err)
	}
	return nil
}

// tokenExpired parses the JWT claims without verifying the signature and
// checks the exp claim. Malformed tokens count as expired.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if expiry == nil {
		return false
	}
	return expiry.Before(time.Now())
}
