package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/repository"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/events"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/infrastructure/email"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/infrastructure/security"
)

// UserService owns registration, email verification and every
// authorization-relevant mutation of a user record. Each mutation follows
// the same ordering rule: persist to Postgres, invalidate the subject's
// cached identity, and only then report success. A caller that has seen
// success can never race a concurrent reader into stale cached
// authorization data.
type UserService struct {
	users     repository.UserRepository
	cache     repository.IdentityCache
	tokens    *TokenService
	passwords security.PasswordService
	sender    email.Sender
	publisher events.Publisher
	logger    *zap.Logger
	baseURL   string
}

func NewUserService(
	users repository.UserRepository,
	cache repository.IdentityCache,
	tokens *TokenService,
	passwords security.PasswordService,
	sender email.Sender,
	publisher events.Publisher,
	logger *zap.Logger,
	baseURL string,
) *UserService {
	return &UserService{
		users:     users,
		cache:     cache,
		tokens:    tokens,
		passwords: passwords,
		sender:    sender,
		publisher: publisher,
		logger:    logger,
		baseURL:   baseURL,
	}
}

// Register creates an unconfirmed account and emails a confirmation link.
func (s *UserService) Register(ctx context.Context, username, emailAddr, password string) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return nil, domainErrors.ErrEmailExists
	} else if !errors.Is(err, domainErrors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		Avatar:       security.GravatarURL(emailAddr),
		Role:         models.RoleUser,
		Confirmed:    false,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, user)
	s.publish(ctx, events.UserRegistered, events.UserEvent{Subject: user.Email})
	return user, nil
}

// ConfirmEmail consumes a verification token. The returned flag reports
// whether the email was already confirmed.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	subject, err := s.tokens.SubjectFromEmailToken(token)
	if err != nil {
		return false, fmt.Errorf("%w: invalid token for email verification", domainErrors.ErrInvalidRequest)
	}
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	if err := s.users.ConfirmEmail(ctx, subject); err != nil {
		return false, err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return false, err
	}
	return false, nil
}

// RequestEmailConfirmation re-sends the confirmation link. It reports
// whether a mail was actually sent; callers answer generically either way.
func (s *UserService) RequestEmailConfirmation(ctx context.Context, emailAddr string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.Confirmed {
		return false, nil
	}
	s.sendConfirmation(ctx, user)
	return true, nil
}

// RequestPasswordReset emails a reset link when the address is known.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	token, err := s.tokens.IssueEmailToken(user.Email)
	if err != nil {
		return false, err
	}
	link := fmt.Sprintf("%s/api/auth/reset_password?token=%s", s.baseURL, token)
	if err := s.sender.SendPasswordReset(ctx, user.Email, user.Username, link); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.String("subject", user.Email), zap.Error(err))
	}
	return true, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	subject, err := s.tokens.SubjectFromEmailToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token for password reset", domainErrors.ErrInvalidRequest)
	}
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, subject, hash); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

// Ban deactivates the account, retires its refresh token and invalidates the
// cached identity so in-flight access tokens are rejected immediately.
func (s *UserService) Ban(ctx context.Context, subject string) error {
	if err := s.users.SetActive(ctx, subject, false); err != nil {
		return err
	}
	if err := s.users.ClearRefreshToken(ctx, subject); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return err
	}
	s.publish(ctx, events.UserBanned, events.UserEvent{Subject: subject})
	return nil
}

// Unban reactivates the account.
func (s *UserService) Unban(ctx context.Context, subject string) error {
	if err := s.users.SetActive(ctx, subject, true); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return err
	}
	s.publish(ctx, events.UserUnbanned, events.UserEvent{Subject: subject})
	return nil
}

// ChangeRole assigns a new role to the account.
func (s *UserService) ChangeRole(ctx context.Context, subject string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domainErrors.ErrInvalidRequest, role)
	}
	if err := s.users.SetRole(ctx, subject, role); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return err
	}
	s.publish(ctx, events.UserRoleChanged, events.UserEvent{Subject: subject, Role: string(role)})
	return nil
}

// EditProfile updates username and/or avatar. Empty arguments keep the
// current values.
func (s *UserService) EditProfile(ctx context.Context, subject, username, avatar string) (*models.User, error) {
	if username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, err
		}
		if existing != nil && existing.Email != subject {
			return nil, domainErrors.ErrUsernameExists
		}
	}

	user, err := s.users.UpdateProfile(ctx, subject, username, avatar)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, subject); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) sendConfirmation(ctx context.Context, user *models.User) {
	token, err := s.tokens.IssueEmailToken(user.Email)
	if err != nil {
		s.logger.Error("failed to issue email token", zap.Error(err))
		return
	}
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.baseURL, token)
	if err := s.sender.SendConfirmation(ctx, user.Email, user.Username, link); err != nil {
		s.logger.Error("failed to send confirmation email",
			zap.String("subject", user.Email), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, payload events.UserEvent) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("failed to publish auth event",
			zap.String("type", string(eventType)), zap.Error(err))
	}
}
