package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zalando/go-keyring"
)

// ErrNoToken is returned when no bearer token is stored or the stored one
// has expired.
var ErrNoToken = errors.New("no valid bearer token")

// TokenStore persists the bearer token and its expiry. The token and the
// theme preference are the only state kept outside the backend.
type TokenStore interface {
	Save(token string, expiresAt time.Time) error
	// Token returns the stored token, or ErrNoToken if absent or expired.
	Token() (string, error)
	Clear() error
}

// storedToken is the serialized keyring payload.
type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// KeyringStore keeps the token in the operating system keyring.
type KeyringStore struct {
	service string
	user    string
}

// NewKeyringStore creates a keyring-backed token store under the given
// service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service, user: "bearer-token"}
}

func (s *KeyringStore) Save(token string, expiresAt time.Time) error {
	payload, err := json.Marshal(storedToken{Token: token, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := keyring.Set(s.service, s.user, string(payload)); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Token() (string, error) {
	raw, err := keyring.Get(s.service, s.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token from keyring: %w", err)
	}
	var st storedToken
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return "", fmt.Errorf("decode stored token: %w", err)
	}
	if !st.ExpiresAt.IsZero() && time.Now().After(st.ExpiresAt) {
		return "", fmt.Errorf("token expired at %s: %w", st.ExpiresAt.Format(time.RFC3339), ErrNoToken)
	}
	return st.Token, nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("remove token from keyring: %w", err)
	}
	return nil
}

// MemoryStore is an in-process TokenStore for tests and ephemeral sessions.
type MemoryStore struct {
	mu sync.Mutex
	st *storedToken
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = &storedToken{Token: token, ExpiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == nil {
		return "", ErrNoToken
	}
	if !s.st.ExpiresAt.IsZero() && time.Now().After(s.st.ExpiresAt) {
		return "", ErrNoToken
	}
	return s.st.Token, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = nil
	return nil
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature; verification is the backend's job, the client only needs the
// expiry to know when to re-login. A token without an exp claim gets a
// zero expiry (never considered expired locally).
func tokenExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token claims: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
