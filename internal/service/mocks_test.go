package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) SetRefreshToken(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *mockUserRepo) ReplaceRefreshToken(ctx context.Context, email, oldToken, newToken string) error {
	return m.Called(ctx, email, oldToken, newToken).Error(0)
}

func (m *mockUserRepo) ClearRefreshToken(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, email string, active bool) error {
	return m.Called(ctx, email, active).Error(0)
}

func (m *mockUserRepo) SetRole(ctx context.Context, email string, role models.Role) error {
	return m.Called(ctx, email, role).Error(0)
}

func (m *mockUserRepo) ConfirmEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, email, username, avatar string) (*models.User, error) {
	args := m.Called(ctx, email, username, avatar)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return m.Called(ctx, email, passwordHash).Error(0)
}

type mockIdentityCache struct{ mock.Mock }

func (m *mockIdentityCache) Get(ctx context.Context, subject string) (*models.Identity, error) {
	args := m.Called(ctx, subject)
	if id := args.Get(0); id != nil {
		return id.(*models.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentityCache) Set(ctx context.Context, identity *models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockIdentityCache) Invalidate(ctx context.Context, subject string) error {
	return m.Called(ctx, subject).Error(0)
}

type mockRevocationStore struct{ mock.Mock }

func (m *mockRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(ctx, token, ttl).Error(0)
}

func (m *mockRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// memoryCache is a stateful in-memory IdentityCache for scenario tests that
// exercise population and invalidation end to end.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*models.Identity
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.Identity)}
}

func (c *memoryCache) Get(ctx context.Context, subject string) (*models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	identity, ok := c.entries[subject]
	if !ok {
		return nil, domainErrors.ErrCacheMiss
	}
	copied := *identity
	return &copied, nil
}

func (c *memoryCache) Set(ctx context.Context, identity *models.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *identity
	c.entries[identity.Email] = &copied
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, subject string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, subject)
	return nil
}

// memoryRevocations is a stateful in-memory RevocationStore.
type memoryRevocations struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{tokens: make(map[string]struct{})}
}

func (s *memoryRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return nil
}

func (s *memoryRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok, nil
}

// memoryUserRepo is a stateful in-memory UserRepository for rotation and
// mutation scenarios.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserRepo(users ...*models.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		copied := *u
		repo.users[u.Email] = &copied
	}
	return repo
}

func (r *memoryUserRepo) get(email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return nil, err
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return domainErrors.ErrEmailExists
	}
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *memoryUserRepo) SetRefreshToken(ctx context.Context, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.RefreshToken = token
	return nil
}

func (r *memoryUserRepo) ReplaceRefreshToken(ctx context.Context, email, oldToken, newToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	if user.RefreshToken != oldToken {
		return domainErrors.ErrInvalidRefreshToken
	}
	user.RefreshToken = newToken
	return nil
}

func (r *memoryUserRepo) ClearRefreshToken(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.RefreshToken = ""
	return nil
}

func (r *memoryUserRepo) SetActive(ctx context.Context, email string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.IsActive = active
	return nil
}

func (r *memoryUserRepo) SetRole(ctx context.Context, email string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.Role = role
	return nil
}

func (r *memoryUserRepo) ConfirmEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.Confirmed = true
	return nil
}

func (r *memoryUserRepo) UpdateProfile(ctx context.Context, email, username, avatar string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return nil, err
	}
	if username != "" {
		user.Username = username
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.get(email)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}
