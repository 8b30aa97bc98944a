package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/repository"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/events"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/infrastructure/security"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/utils/metrics"
)

// AuthService is the access gate: it orchestrates the token service, the
// revocation blacklist, the identity cache and the user store into the single
// resolve-caller-identity decision used by every protected endpoint, plus the
// login/refresh/logout flows that create and retire tokens.
type AuthService struct {
	tokens    *TokenService
	users     repository.UserRepository
	cache     repository.IdentityCache
	revoked   repository.RevocationStore
	passwords security.PasswordService
	publisher events.Publisher
	logger    *zap.Logger
}

func NewAuthService(
	tokens *TokenService,
	users repository.UserRepository,
	cache repository.IdentityCache,
	revoked repository.RevocationStore,
	passwords security.PasswordService,
	publisher events.Publisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		tokens:    tokens,
		users:     users,
		cache:     cache,
		revoked:   revoked,
		passwords: passwords,
		publisher: publisher,
		logger:    logger,
	}
}

// Login verifies credentials and issues a fresh token pair. The new refresh
// token is persisted as the user's current one, superseding any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Confirmed {
		metrics.LoginsTotal.WithLabelValues("unconfirmed").Inc()
		return nil, domainErrors.ErrEmailNotConfirmed
	}
	if !s.passwords.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domainErrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.Email, pair.RefreshToken); err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.publish(ctx, events.UserLoggedIn, events.UserEvent{Subject: user.Email})
	return pair, nil
}

// ResolveIdentity is the per-request authentication decision:
// verify(access) -> revocation check -> identity (cache, falling back to the
// user store) -> active check. All token-shaped failures collapse into
// ErrInvalidToken; a banned account is reported distinctly as ErrUserBanned.
// Cache or store connectivity failures fail closed.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	claims, err := s.tokens.Verify(accessToken, models.ScopeAccess)
	if err != nil {
		return nil, domainErrors.ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		return nil, domainErrors.ErrInvalidToken
	}

	subject := claims.Subject
	identity, err := s.cache.Get(ctx, subject)
	switch {
	case err == nil:
		metrics.IdentityCacheLookups.WithLabelValues("hit").Inc()
	case errors.Is(err, domainErrors.ErrCacheMiss):
		metrics.IdentityCacheLookups.WithLabelValues("miss").Inc()
		user, err := s.users.GetByEmail(ctx, subject)
		if err != nil {
			if errors.Is(err, domainErrors.ErrUserNotFound) {
				return nil, domainErrors.ErrInvalidToken
			}
			return nil, fmt.Errorf("identity lookup failed: %w", err)
		}
		identity = models.IdentityOf(user)
		if err := s.cache.Set(ctx, identity); err != nil {
			return nil, fmt.Errorf("identity cache population failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("identity cache lookup failed: %w", err)
	}

	if !identity.IsActive {
		return nil, domainErrors.ErrUserBanned
	}
	return identity, nil
}

// Refresh rotates a refresh token: the presented token must match the stored
// current one; the replacement is written with a compare-and-set so exactly
// one of two concurrent rotations can win. A mismatch means the token was
// already superseded (replay), which retires the stored credential entirely.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, models.ScopeRefresh)
	if err != nil {
		// Wrong scope is interesting internally but indistinguishable to the
		// caller from any other bad token.
		if errors.Is(err, domainErrors.ErrWrongScope) {
			s.logger.Warn("non-refresh token presented to refresh endpoint")
		}
		metrics.TokenRefreshTotal.WithLabelValues("invalid_token").Inc()
		return nil, domainErrors.ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, domainErrors.ErrInvalidToken
		}
		return nil, err
	}

	if user.RefreshToken != refreshToken {
		// Replay of a superseded token. Retire the stored credential and
		// blacklist the presented one for its remaining lifetime.
		if err := s.users.ClearRefreshToken(ctx, user.Email); err != nil {
			return nil, err
		}
		if err := s.revoked.Revoke(ctx, refreshToken, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Error("failed to blacklist replayed refresh token", zap.Error(err))
		} else {
			metrics.TokensRevoked.Inc()
		}
		metrics.TokenRefreshTotal.WithLabelValues("replay").Inc()
		s.logger.Warn("refresh token replay detected", zap.String("subject", user.Email))
		return nil, domainErrors.ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssuePair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.ReplaceRefreshToken(ctx, user.Email, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidRefreshToken) {
			metrics.TokenRefreshTotal.WithLabelValues("lost_race").Inc()
		}
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// Logout revokes the presented access token for its remaining lifetime,
// retires the stored refresh token and drops the cached identity.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Verify(accessToken, models.ScopeAccess)
	if err != nil {
		return domainErrors.ErrInvalidToken
	}
	subject := claims.Subject

	if err := s.revoked.Revoke(ctx, accessToken, time.Until(claims.ExpiresAt.Time)); err != nil {
		return err
	}
	metrics.TokensRevoked.Inc()

	if err := s.users.ClearRefreshToken(ctx, subject); err != nil && !errors.Is(err, domainErrors.ErrUserNotFound) {
		return err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return err
	}

	s.publish(ctx, events.UserLoggedOut, events.UserEvent{Subject: subject})
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload events.UserEvent) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("failed to publish auth event",
			zap.String("type", string(eventType)), zap.Error(err))
	}
}
