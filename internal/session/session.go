// Package session persists the signed-in user and bearer token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/kv"
)

const (
	KeyUser  = "user"
	KeyToken = "token"
)

type Session struct {
	store kv.Store
}

func New(store kv.Store) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token, or "" when nobody is signed in.
func (s *Session) Token(ctx context.Context) (string, error) {
	tok, err := s.store.Get(ctx, KeyToken)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return tok, nil
}

// User returns the stored user, or nil when absent.
func (s *Session) User(ctx context.Context) (*domain.User, error) {
	raw, err := s.store.Get(ctx, KeyUser)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &u, nil
}

func (s *Session) Save(ctx context.Context, user domain.User, token string) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(b)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyUser, KeyToken); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
