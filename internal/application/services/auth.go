package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/mq"
	"file-storage-api/internal/infrastructure/token"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)

type AuthService struct {
	users     user.Repository
	tokens    ports.TokenAuthority
	publisher ports.EventPublisher
	mCounter  *prometheus.CounterVec
	hashCost  int
}

func NewAuthService(
	users user.Repository,
	tokens ports.TokenAuthority,
	publisher ports.EventPublisher,
	mCounter *prometheus.CounterVec,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		publisher: publisher,
		mCounter:  mCounter,
		hashCost:  bcrypt.DefaultCost,
	}
}

var _ ports.Auth = (*AuthService)(nil)

func (as *AuthService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := as.users.FetchUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, apperr.Internal(err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tok, err := as.tokens.Issue(as.tokens.ClaimsFor(u))
	if err != nil {
		return "", nil, apperr.Internal(fmt.Errorf("issue token: %w", err))
	}

	as.inc("login_total")

	return tok, u, nil
}

// Register expects input already checked by the validator.
func (as *AuthService) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.NewValidation("password", "password is too long")
		}
		return nil, apperr.Internal(err)
	}

	u, err := as.users.CreateUser(ctx, user.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already exists", apperr.ErrConflict)
		}
		return nil, apperr.Internal(err)
	}

	as.inc("user_registered_total")
	if as.publisher != nil {
		as.publisher.Publish(mq.NewEvent(mq.ActionUserRegistered, int64(u.ID), 0, eventUser(u)))
	}

	return u, nil
}

// Refresh re-issues a token from still valid claims. Role changes made since
// the original token are not picked up.
func (as *AuthService) Refresh(claims *token.Claims) (string, error) {
	if claims == nil {
		return "", apperr.ErrUnauthenticated
	}
	tok, err := as.tokens.Issue(as.tokens.ClaimsFor(&user.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}))
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("issue token: %w", err))
	}
	return tok, nil
}

func (as *AuthService) inc(label string) {
	if as.mCounter != nil {
		as.mCounter.WithLabelValues(label).Inc()
	}
}

func eventUser(u *user.User) map[string]any {
	return map[string]any{
		"username": u.Username,
		"role":     u.Role.String(),
	}
}
