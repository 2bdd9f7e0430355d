package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"pulseadmin/internal/logging"
)

// Fixed storage keys.
const (
	TokenKey = "authToken"
	UserKey  = "authUser"
)

// ErrEmptyToken is returned when storing a blank token.
var ErrEmptyToken = errors.New("token must not be empty")

// User is the account the server returned at login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// TokenStore is the get/set/clear slot for the bearer token.
type TokenStore struct {
	storage Storage
}

// NewTokenStore wraps storage.
func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Get returns the stored token. A read failure is logged and treated as absent.
func (s *TokenStore) Get() (string, bool) {
	token, ok, err := s.storage.Get(TokenKey)
	if err != nil {
		logging.SessionError("failed to read token: %v", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Set persists token.
func (s *TokenStore) Set(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.storage.Set(TokenKey, token)
}

// Clear removes the token and the cached user.
func (s *TokenStore) Clear() error {
	if err := s.storage.Delete(TokenKey); err != nil {
		return err
	}
	return s.storage.Delete(UserKey)
}

// User returns the cached login user, if any.
func (s *TokenStore) User() (User, bool) {
	raw, ok, err := s.storage.Get(UserKey)
	if err != nil || !ok {
		return User{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		logging.SessionWarn("ignoring malformed cached user: %v", err)
		return User{}, false
	}
	return u, true
}

// SetUser caches the login user alongside the token.
func (s *TokenStore) SetUser(u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.storage.Set(UserKey, string(data))
}
