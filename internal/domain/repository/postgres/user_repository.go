package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

const userColumns = `id, username, email, password_hash, avatar, role, confirmed, is_active,
	COALESCE(refresh_token, ''), created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Avatar,
		&user.Role, &user.Confirmed, &user.IsActive, &user.RefreshToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, the subject identifier tokens are
// issued for.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, avatar, role, confirmed, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Avatar,
		user.Role, user.Confirmed, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if strings.Contains(pgErr.ConstraintName, "email") {
				return domainErrors.ErrEmailExists
			}
			if strings.Contains(pgErr.ConstraintName, "username") {
				return domainErrors.ErrUsernameExists
			}
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SetRefreshToken unconditionally stores token as the user's current refresh
// token, superseding the previous one.
func (r *UserRepository) SetRefreshToken(ctx context.Context, email, token string) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET refresh_token = $2, updated_at = now() WHERE email = $1`, token)
}

// ReplaceRefreshToken is the compare-and-set rotation step: the new token is
// stored only while oldToken is still the current one. A failed compare means
// a concurrent rotation already superseded oldToken.
func (r *UserRepository) ReplaceRefreshToken(ctx context.Context, email, oldToken, newToken string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = now()
		 WHERE email = $1 AND refresh_token = $2`,
		email, oldToken, newToken)
	if err != nil {
		return fmt.Errorf("failed to replace refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInvalidRefreshToken
	}
	return nil
}

// ClearRefreshToken drops the stored refresh token, forcing a fresh login.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET refresh_token = NULL, updated_at = now() WHERE email = $1`)
}

// SetActive flips the ban flag.
func (r *UserRepository) SetActive(ctx context.Context, email string, active bool) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE email = $1`, active)
}

// SetRole changes the user's role.
func (r *UserRepository) SetRole(ctx context.Context, email string, role models.Role) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET role = $2, updated_at = now() WHERE email = $1`, role)
}

// ConfirmEmail marks the user's email address as verified.
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET confirmed = TRUE, updated_at = now() WHERE email = $1`)
}

// UpdateProfile changes username and/or avatar; empty arguments keep the
// current value. Returns the updated record.
func (r *UserRepository) UpdateProfile(ctx context.Context, email, username, avatar string) (*models.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET username = COALESCE(NULLIF($2, ''), username),
		    avatar   = COALESCE(NULLIF($3, ''), avatar),
		    updated_at = now()
		WHERE email = $1
		RETURNING %s`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, email, username, avatar))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrUsernameExists
		}
		return nil, err
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.updateByEmail(ctx, email,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1`, passwordHash)
}

func (r *UserRepository) updateByEmail(ctx context.Context, email, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, append([]interface{}{email}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}
