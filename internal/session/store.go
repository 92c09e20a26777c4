// Package session implements opaque server-side session tokens backed by the
// key-value store. The browser cookie carries only the token; the KV entry is
// the single source of truth and expires passively via the store's TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const keyPrefix = "session:"

// tokenBytes is the entropy of a session token before hex encoding.
const tokenBytes = 32

// Payload is the data stored server-side for a logged-in user.
type Payload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Store issues, resolves, and revokes session tokens. It is purely functional
// over the backing key-value store and safe for concurrent use.
type Store struct {
	kv  KV
	ttl time.Duration
}

// KV is the subset of the key-value store the session store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NewStore returns a session store writing entries with the given TTL.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// TTL returns the session lifetime, which is also the cookie Max-Age.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create generates a fresh token and persists the payload under it.
// Errors surface to the caller: login and registration must report that
// authentication is unavailable rather than silently continue.
func (s *Store) Create(ctx context.Context, payload Payload) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializing session payload: %w", err)
	}

	if err := s.kv.Put(ctx, keyPrefix+token, data, s.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Get resolves a token to its payload. A missing key, corrupt payload, or
// store read failure all resolve to (nil, nil): the request degrades to
// anonymous instead of failing.
func (s *Store) Get(ctx context.Context, token string) (*Payload, error) {
	if token == "" {
		return nil, nil
	}

	data, err := s.kv.Get(ctx, keyPrefix+token)
	if err != nil || data == nil {
		return nil, nil
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return &payload, nil
}

// Delete revokes a token. Deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Delete(ctx, keyPrefix+token)
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
