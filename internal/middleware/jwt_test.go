package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/service"
	"gorm.io/gorm"
)

// authTestStore serves exactly one user by id.
type authTestStore struct {
	user *model.User
}

func (s *authTestStore) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) Create(ctx context.Context, user *model.User) error { return nil }

func (s *authTestStore) UpdateRefreshToken(ctx context.Context, id uint, refreshToken string) error {
	return nil
}

func (s *authTestStore) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	return nil
}

func (s *authTestStore) UpdateAccount(ctx context.Context, id uint, fullName, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) UpdateAvatar(ctx context.Context, id uint, url string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) UpdateCoverImage(ctx context.Context, id uint, url string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *authTestStore) Delete(ctx context.Context, id uint) error { return nil }

func newAuthTestRouter(t *testing.T) (*gin.Engine, *service.TokenService, *authTestStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(&config.JWTConfig{
		AccessSecret:  "gate-access-secret",
		RefreshSecret: "gate-refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	store := &authTestStore{
		user: &model.User{
			Model:    gorm.Model{ID: 1},
			Username: "gateuser",
			Email:    "gate@example.com",
		},
	}

	r := gin.New()
	gate := NewJWTMiddleware(tokens, store)
	r.GET("/protected", gate.RequireAuth(), func(c *gin.Context) {
		userID, ok := AuthenticatedUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})

	return r, tokens, store
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	r, tokens, _ := newAuthTestRouter(t)

	access, err := tokens.IssueAccessToken(1)
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d with body %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthAcceptsCookie(t *testing.T) {
	r, tokens, _ := newAuthTestRouter(t)

	access, err := tokens.IssueAccessToken(1)
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: access})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d with body %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejections(t *testing.T) {
	r, tokens, _ := newAuthTestRouter(t)

	foreign := service.NewTokenService(&config.JWTConfig{
		AccessSecret:  "other-secret",
		RefreshSecret: "other-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	foreignToken, err := foreign.IssueAccessToken(1)
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}
	refreshAsAccess, err := tokens.IssueRefreshToken(1)
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}
	unknownUser, err := tokens.IssueAccessToken(99)
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"foreign signature", "Bearer " + foreignToken},
		{"refresh token as access", "Bearer " + refreshAsAccess},
		{"unknown user", "Bearer " + unknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d with body %s", w.Code, w.Body.String())
			}
		})
	}
}
