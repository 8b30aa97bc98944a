package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/config"
	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

// TokenService issues and verifies the signed tokens used by the access
// pipeline: short-lived access tokens, long-lived refresh tokens and
// verification tokens for email links. It is pure string work; no I/O.
type TokenService struct {
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	emailTokenTTL time.Duration
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.Secret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		emailTokenTTL: cfg.EmailTokenTTL,
	}
}

// Issue produces a signed HS256 token embedding {sub, iat, exp, scope} and a
// unique jti. Without the jti, two tokens for the same subject minted within
// the same second would be byte-identical, and the stored-refresh-token
// compare could not tell a rotation's replacement from the token it consumed.
func (s *TokenService) Issue(subject string, scope models.TokenScope, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// IssueAccessToken issues an access-scoped token with the configured TTL.
func (s *TokenService) IssueAccessToken(subject string) (string, error) {
	return s.Issue(subject, models.ScopeAccess, s.accessTTL)
}

// IssueRefreshToken issues a refresh-scoped token with the configured TTL.
func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	return s.Issue(subject, models.ScopeRefresh, s.refreshTTL)
}

// IssuePair issues a fresh access/refresh pair for the subject.
func (s *TokenService) IssuePair(subject string) (*models.TokenPair, error) {
	access, err := s.IssueAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Verify checks signature, then expiry, then scope, in that order, and
// returns the token's claims. Failures come back as the internal sentinels
// ErrTokenMalformed, ErrTokenExpired and ErrWrongScope; the access pipeline
// collapses all of them into a single opaque failure before anything reaches
// an unauthenticated caller.
func (s *TokenService) Verify(tokenString string, expectedScope models.TokenScope) (*models.Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Scope != expectedScope {
		return nil, domainErrors.ErrWrongScope
	}
	return claims, nil
}

// IssueEmailToken issues a 7-day verification token for email confirmation
// and password reset links. It carries no scope claim and no single-use
// marker; single-use semantics belong to the consuming flow.
func (s *TokenService) IssueEmailToken(subject string) (string, error) {
	return s.Issue(subject, "", s.emailTokenTTL)
}

// SubjectFromEmailToken verifies signature and expiry of a verification
// token and returns its subject.
func (s *TokenService) SubjectFromEmailToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		// Signature problems win over claim problems; jwt v5 joins both.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, domainErrors.ErrTokenMalformed
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrTokenExpired
		}
		return nil, domainErrors.ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, domainErrors.ErrTokenMalformed
	}
	return claims, nil
}
