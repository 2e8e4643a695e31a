package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/utils"
	"github.com/diagnosis/salon-bookings/pkg/auth"
	"github.com/diagnosis/salon-bookings/pkg/config"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/mailer"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

const minPasswordLength = 6

type AuthService interface {
	SignUp(ctx context.Context, in domain.SignUpInput) (*domain.LoginResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	users  repository.UserRepository
	mailer mailer.Service
	config config.AuthConfig
}

func NewAuthService(users repository.UserRepository, mailer mailer.Service, cfg config.AuthConfig) AuthService {
	return &authService{users: users, mailer: mailer, config: cfg}
}

func validateSignUp(in domain.SignUpInput) error {
	required := []struct{ field, value string }{
		{"surname", in.Surname},
		{"given_name", in.GivenName},
		{"email", in.Email},
		{"phone", in.Phone},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid("%s is required", r.field)
		}
	}
	if !utils.IsValidEmail(in.Email) {
		return invalid("email is not valid")
	}
	if !utils.IsValidPhone(in.Phone) {
		return invalid("phone is not valid")
	}
	if len(in.Password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	if in.Role != "" {
		if _, ok := domain.ParseRole(string(in.Role)); !ok {
			return invalid("role must be client or specialist")
		}
	}
	return nil
}

func (s *authService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.LoginResponse, error) {
	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(in.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := domain.NewUser(0, in)
	u.Phone = utils.NormalizePhone(u.Phone)
	u, err = s.users.CreateUser(ctx, u, hash)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "User registered", "user_id", u.ID, "role", u.Role)

	if err := s.mailer.SendWelcome(ctx, u); err != nil {
		logger.WarnContext(ctx, "Failed to send welcome email", "user_id", u.ID, "error", err)
	}
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, invalid("email and password are required")
	}

	u, hash, err := s.users.FindUserByEmail(ctx, utils.NormalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		logger.WarnContext(ctx, "Login rejected", "user_id", u.ID)
		return nil, ErrBadCredentials
	}
	return s.issue(u)
}

func (s *authService) issue(u domain.User) (*domain.LoginResponse, error) {
	token, err := auth.NewAccessToken(u.ID, u.Email, string(u.Role), s.config.JWTSecret, s.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.LoginResponse{User: u, Token: token}, nil
}
