package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	handler "github.com/AleksandrRevuka/group-project-photoapp/internal/handler/http"
)

type stubGate struct {
	loginFn   func(ctx context.Context, email, password string) (*models.TokenPair, error)
	refreshFn func(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	logoutFn  func(ctx context.Context, accessToken string) error
	resolveFn func(ctx context.Context, accessToken string) (*models.Identity, error)
}

func (s *stubGate) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubGate) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubGate) Logout(ctx context.Context, accessToken string) error {
	return s.logoutFn(ctx, accessToken)
}

func (s *stubGate) ResolveIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	return s.resolveFn(ctx, accessToken)
}

type stubUsers struct {
	registerFn     func(ctx context.Context, username, email, password string) (*models.User, error)
	confirmFn      func(ctx context.Context, token string) (bool, error)
	requestEmailFn func(ctx context.Context, email string) (bool, error)
	forgotFn       func(ctx context.Context, email string) (bool, error)
	resetFn        func(ctx context.Context, token, newPassword string) (*models.User, error)
	editFn         func(ctx context.Context, subject, username, avatar string) (*models.User, error)
	banFn          func(ctx context.Context, subject string) error
	unbanFn        func(ctx context.Context, subject string) error
	changeRoleFn   func(ctx context.Context, subject string, role models.Role) error
}

func (s *stubUsers) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubUsers) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	return s.confirmFn(ctx, token)
}

func (s *stubUsers) RequestEmailConfirmation(ctx context.Context, email string) (bool, error) {
	return s.requestEmailFn(ctx, email)
}

func (s *stubUsers) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubUsers) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	return s.resetFn(ctx, token, newPassword)
}

func (s *stubUsers) EditProfile(ctx context.Context, subject, username, avatar string) (*models.User, error) {
	return s.editFn(ctx, subject, username, avatar)
}

func (s *stubUsers) Ban(ctx context.Context, subject string) error { return s.banFn(ctx, subject) }

func (s *stubUsers) Unban(ctx context.Context, subject string) error { return s.unbanFn(ctx, subject) }

func (s *stubUsers) ChangeRole(ctx context.Context, subject string, role models.Role) error {
	return s.changeRoleFn(ctx, subject, role)
}

func newTestRouter(gate *stubGate, users *stubUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return handler.NewRouter(gate, users, zap.NewNop())
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	users := &stubUsers{
		registerFn: func(ctx context.Context, username, email, password string) (*models.User, error) {
			return &models.User{Username: username, Email: email, Role: models.RoleUser}, nil
		},
	}
	router := newTestRouter(&stubGate{}, users)

	rec := postJSON(router, "/api/auth/signup", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Check your email for confirmation")
}

func TestSignup_ValidationError(t *testing.T) {
	router := newTestRouter(&stubGate{}, &stubUsers{})

	rec := postJSON(router, "/api/auth/signup", gin.H{
		"username": "alice", "email": "not-an-email", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := &stubUsers{
		registerFn: func(ctx context.Context, username, email, password string) (*models.User, error) {
			return nil, domainErrors.ErrEmailExists
		},
	}
	router := newTestRouter(&stubGate{}, users)

	rec := postJSON(router, "/api/auth/signup", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "account already exists")
}

func TestLogin_FormEncoded(t *testing.T) {
	gate := &stubGate{
		loginFn: func(ctx context.Context, email, password string) (*models.TokenPair, error) {
			if email == "alice@example.com" && password == "s3cret" {
				return &models.TokenPair{AccessToken: "acc", RefreshToken: "ref", TokenType: "bearer"}, nil
			}
			return nil, domainErrors.ErrInvalidCredentials
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	form := url.Values{"username": {"alice@example.com"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var pair models.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.Equal(t, "acc", pair.AccessToken)
	assert.Equal(t, "bearer", pair.TokenType)
}

func TestLogin_BadCredentials(t *testing.T) {
	gate := &stubGate{
		loginFn: func(ctx context.Context, email, password string) (*models.TokenPair, error) {
			return nil, domainErrors.ErrInvalidCredentials
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	rec := postJSON(router, "/api/auth/login", gin.H{"username": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLogin_UnconfirmedEmail(t *testing.T) {
	gate := &stubGate{
		loginFn: func(ctx context.Context, email, password string) (*models.TokenPair, error) {
			return nil, domainErrors.ErrEmailNotConfirmed
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	rec := postJSON(router, "/api/auth/login", gin.H{"username": "alice@example.com", "password": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "email not confirmed")
}

func TestRefresh(t *testing.T) {
	gate := &stubGate{
		refreshFn: func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
			assert.Equal(t, "current-refresh", refreshToken)
			return &models.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref", TokenType: "bearer"}, nil
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer current-refresh")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new-acc")
}

func TestRefresh_MissingHeader(t *testing.T) {
	router := newTestRouter(&stubGate{}, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_Replay(t *testing.T) {
	gate := &stubGate{
		refreshFn: func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
			return nil, domainErrors.ErrInvalidRefreshToken
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer superseded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestLogout(t *testing.T) {
	var loggedOut string
	gate := &stubGate{
		resolveFn: func(ctx context.Context, accessToken string) (*models.Identity, error) {
			return &models.Identity{Email: "alice@example.com", Role: models.RoleUser, IsActive: true}, nil
		},
		logoutFn: func(ctx context.Context, accessToken string) error {
			loggedOut = accessToken
			return nil
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer acc-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc-token", loggedOut)
}

func TestConfirmEmail(t *testing.T) {
	tests := []struct {
		name       string
		already    bool
		err        error
		wantStatus int
		wantBody   string
	}{
		{"confirmed", false, nil, http.StatusOK, "Email confirmed"},
		{"already confirmed", true, nil, http.StatusOK, "already confirmed"},
		{"unknown subject", false, domainErrors.ErrUserNotFound, http.StatusBadRequest, "Verification error"},
		{"bad token", false, domainErrors.ErrInvalidRequest, http.StatusBadRequest, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &stubUsers{
				confirmFn: func(ctx context.Context, token string) (bool, error) {
					return tt.already, tt.err
				},
			}
			router := newTestRouter(&stubGate{}, users)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/some-token", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestForgotPassword_DoesNotLeakByStatus(t *testing.T) {
	users := &stubUsers{
		forgotFn: func(ctx context.Context, email string) (bool, error) {
			return email == "alice@example.com", nil
		},
	}
	router := newTestRouter(&stubGate{}, users)

	for _, email := range []string{"alice@example.com", "ghost@example.com"} {
		rec := postJSON(router, "/api/auth/forgot_password", gin.H{"email": email})
		assert.Equal(t, http.StatusOK, rec.Code, "email %s", email)
	}
}

func TestMe(t *testing.T) {
	gate := &stubGate{
		resolveFn: func(ctx context.Context, accessToken string) (*models.Identity, error) {
			return &models.Identity{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, IsActive: true}, nil
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer acc-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestBan_AdminOnly(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"admin", models.RoleAdmin, http.StatusOK},
		{"moderator", models.RoleModerator, http.StatusForbidden},
		{"user", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var banned string
			gate := &stubGate{
				resolveFn: func(ctx context.Context, accessToken string) (*models.Identity, error) {
					return &models.Identity{Email: "admin@example.com", Role: tt.role, IsActive: true}, nil
				},
			}
			users := &stubUsers{
				banFn: func(ctx context.Context, subject string) error {
					banned = subject
					return nil
				},
			}
			router := newTestRouter(gate, users)

			req := httptest.NewRequest(http.MethodPatch, "/api/users/bob@example.com/ban", nil)
			req.Header.Set("Authorization", "Bearer acc-token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "bob@example.com", banned)
			} else {
				assert.Empty(t, banned)
			}
		})
	}
}

func TestChangeRole(t *testing.T) {
	var gotSubject string
	var gotRole models.Role
	gate := &stubGate{
		resolveFn: func(ctx context.Context, accessToken string) (*models.Identity, error) {
			return &models.Identity{Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}, nil
		},
	}
	users := &stubUsers{
		changeRoleFn: func(ctx context.Context, subject string, role models.Role) error {
			gotSubject, gotRole = subject, role
			return nil
		},
	}
	router := newTestRouter(gate, users)

	raw, _ := json.Marshal(gin.H{"role": "moderator"})
	req := httptest.NewRequest(http.MethodPatch, "/api/users/bob@example.com/role", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer acc-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob@example.com", gotSubject)
	assert.Equal(t, models.RoleModerator, gotRole)
}

func TestProtectedRoute_BannedUser(t *testing.T) {
	gate := &stubGate{
		resolveFn: func(ctx context.Context, accessToken string) (*models.Identity, error) {
			return nil, domainErrors.ErrUserBanned
		},
	}
	router := newTestRouter(gate, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer acc-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "ban list")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubGate{}, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
