package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkg_hash "github.com/ntsvetkov/identity-platform/pkg/hash"
	"github.com/ntsvetkov/identity-platform/pkg/logging"
	"github.com/ntsvetkov/identity-platform/pkg/tokens"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/events"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/models"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/repo"
)

var (
	ErrValidation          = errors.New("validation")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type IdentityService struct {
	Repo      *repo.GormRepo
	Events    *events.Producer
	JWTSecret []byte
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterResult struct {
	User   *models.User
	Tokens TokenPair
}

type LoginResult struct {
	UserID uuid.UUID
	Tokens TokenPair
}

// issueTokenPair mints a signed access token and persists a fresh
// opaque refresh token. Issuance is all-or-nothing: a store failure
// returns no pair at all.
func (s *IdentityService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := tokens.NewAccessToken(user.ID, user.Username, s.JWTSecret, tokens.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.Repo.CreateRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(tokens.RefreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *IdentityService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	l := logging.FromContext(ctx).With("svc", "identity.register")

	exists, err := s.Repo.UserExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		l.Error("register failed", "error", err)
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		// A concurrent registration may win the check-then-act race;
		// the store's unique index settles it.
		if errors.Is(err, repo.ErrUserExists) {
			return nil, ErrUserExists
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		l.Error("register failed", "reason", "token issuance", "error", err)
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	s.publish(ctx, events.AuthEvent{
		Type:       events.UserRegistered,
		UserID:     user.ID.String(),
		Username:   user.Username,
		OccurredAt: time.Now(),
	})

	return &RegisterResult{User: user, Tokens: *pair}, nil
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "identity.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, err
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		l.Error("login failed", "reason", "token issuance", "error", err)
		return nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	s.publish(ctx, events.AuthEvent{
		Type:       events.UserLoggedIn,
		UserID:     user.ID.String(),
		Username:   user.Username,
		OccurredAt: time.Now(),
	})

	return &LoginResult{UserID: user.ID, Tokens: *pair}, nil
}

func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "identity.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required: %w", ErrValidation)
	}

	stored, err := s.Repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrRefreshNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh failed", "error", err)
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.FindUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh failed", "error", err)
		return nil, err
	}

	// Claim the old token before issuing its replacement. Under
	// concurrent refreshes with the same token only one caller gets
	// the affected row; the rest see it already consumed.
	claimed, err := s.Repo.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		l.Error("refresh failed", "error", err)
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		l.Error("refresh failed", "reason", "token issuance", "error", err)
		return nil, err
	}

	l.Info("token pair rotated", "user_id", user.ID)
	return pair, nil
}

func (s *IdentityService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "identity.logout")

	if refreshToken == "" {
		return fmt.Errorf("refresh token is required: %w", ErrValidation)
	}

	stored, err := s.Repo.FindRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, repo.ErrRefreshNotFound) {
		l.Error("logout failed", "error", err)
		return err
	}

	if err := s.Repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		l.Error("logout failed", "error", err)
		return err
	}

	if stored != nil {
		l.Info("user logged out", "user_id", stored.UserID)
		s.publish(ctx, events.AuthEvent{
			Type:       events.UserLoggedOut,
			UserID:     stored.UserID.String(),
			OccurredAt: time.Now(),
		})
	}
	return nil
}

// publish is telemetry only; a broker failure never fails the request.
func (s *IdentityService) publish(ctx context.Context, event events.AuthEvent) {
	if err := s.Events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "type", event.Type, "error", err)
	}
}
