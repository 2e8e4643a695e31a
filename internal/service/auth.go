package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/diagnosis/salon-bookings/internal/api"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

// SessionStore persists the signed-in user and token across runs.
type SessionStore interface {
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*domain.User, error)
	Save(ctx context.Context, user domain.User, token string) error
	Clear(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (Result[domain.User], error)
	SignUp(ctx context.Context, in domain.SignUpInput) (Result[domain.User], error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	// Restore reloads a previous session; it returns nil when there is none.
	Restore(ctx context.Context) (*domain.User, error)
}

type authService struct {
	base
	session SessionStore

	mu      sync.RWMutex
	current *domain.User
}

func NewAuthService(api Requester, session SessionStore, opts Options) AuthService {
	return &authService{base: newBase(api, opts), session: session}
}

func (s *authService) Login(ctx context.Context, email, password string) (Result[domain.User], error) {
	req := domain.LoginRequest{Email: strings.TrimSpace(email), Password: password}

	var resp domain.LoginResponse
	src := SourceRemote
	if err := s.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		if !s.offline(ctx, "auth.login", err) {
			return Result[domain.User]{}, fmt.Errorf("login failed: %w", err)
		}
		resp = domain.LoginResponse{User: mock.DemoUser(), Token: mock.DemoToken}
		src = SourceDemo
	}

	if err := s.establish(ctx, resp); err != nil {
		return Result[domain.User]{}, err
	}
	logger.InfoContext(ctx, "User logged in", "user_id", resp.User.ID, "source", src.String())
	return Result[domain.User]{Data: resp.User, Source: src}, nil
}

func (s *authService) SignUp(ctx context.Context, in domain.SignUpInput) (Result[domain.User], error) {
	var resp domain.LoginResponse
	src := SourceRemote
	if err := s.api.Post(ctx, "/auth/signup", in, &resp); err != nil {
		if !s.offline(ctx, "auth.signup", err) {
			return Result[domain.User]{}, fmt.Errorf("sign up failed: %w", err)
		}
		resp = domain.LoginResponse{User: domain.NewUser(mock.DemoUser().ID, in), Token: mock.DemoToken}
		src = SourceDemo
	}

	if err := s.establish(ctx, resp); err != nil {
		return Result[domain.User]{}, err
	}
	logger.InfoContext(ctx, "User signed up", "user_id", resp.User.ID, "role", resp.User.Role)
	return Result[domain.User]{Data: resp.User, Source: src}, nil
}

// offline is fallback limited to an unreachable gateway. A gateway that
// answers, even with 401, is never replaced by the demo user.
func (s *authService) offline(ctx context.Context, what string, err error) bool {
	return errors.Is(err, api.ErrTransport) && s.fallback(ctx, what, err)
}

func (s *authService) establish(ctx context.Context, resp domain.LoginResponse) error {
	if err := s.session.Save(ctx, resp.User, resp.Token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	u := resp.User
	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	return nil
}

func (s *authService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "User logged out")
	return nil
}

func (s *authService) CurrentUser(ctx context.Context) (*domain.User, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil {
		u := *cur
		return &u, nil
	}
	return s.session.User(ctx)
}

func (s *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	tok, err := s.session.Token(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

func (s *authService) Restore(ctx context.Context) (*domain.User, error) {
	ok, err := s.IsAuthenticated(ctx)
	if err != nil || !ok {
		return nil, err
	}
	u, err := s.session.User(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	s.mu.Lock()
	cp := *u
	s.current = &cp
	s.mu.Unlock()
	return u, nil
}
