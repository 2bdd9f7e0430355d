package session

import (
	"pulseadmin/internal/logging"
)

// Session is the explicit owner of the login state. It is handed to the
// transport client as its token source and to the router as its guard input.
type Session struct {
	store   *TokenStore
	storage Storage
}

// New returns a Session over storage.
func New(storage Storage) *Session {
	return &Session{store: NewTokenStore(storage), storage: storage}
}

// OpenSession opens the configured backend and wraps it in a Session.
func OpenSession(backend, path string) (*Session, error) {
	storage, err := Open(backend, path)
	if err != nil {
		return nil, err
	}
	return New(storage), nil
}

// Token returns the current bearer token.
func (s *Session) Token() (string, bool) {
	return s.store.Get()
}

// Authenticated reports whether a token is present. The server remains the
// authority on whether it is still valid.
func (s *Session) Authenticated() bool {
	_, ok := s.store.Get()
	return ok
}

// User returns the account recorded at login.
func (s *Session) User() (User, bool) {
	return s.store.User()
}

// Begin records a successful login.
func (s *Session) Begin(token string, user User) error {
	if err := s.store.Set(token); err != nil {
		return err
	}
	if err := s.store.SetUser(user); err != nil {
		logging.SessionWarn("token stored but user not cached: %v", err)
	}
	logging.Session("session started for %s", user.Email)
	logging.Audit(logging.AuditEvent{Type: logging.AuditLogin, Target: user.Email, Success: true})
	return nil
}

// End clears the token (logout).
func (s *Session) End() error {
	if err := s.store.Clear(); err != nil {
		logging.SessionError("logout failed: %v", err)
		return err
	}
	logging.Session("session ended")
	logging.Audit(logging.AuditEvent{Type: logging.AuditLogout, Success: true})
	return nil
}

// Path returns the storage location watched for external changes, or "".
func (s *Session) Path() string {
	return PathOf(s.storage)
}

// Close releases the storage backend.
func (s *Session) Close() error {
	return s.storage.Close()
}
