package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/service"
	"github.com/streamhub/accounts/pkg/mediastore"
	"github.com/streamhub/accounts/pkg/validation"
	"gorm.io/gorm"
)

// conflictUserStore reports every username and email as taken.
type conflictUserStore struct {
	existing *model.User
}

func (s *conflictUserStore) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) Create(ctx context.Context, user *model.User) error {
	return gorm.ErrDuplicatedKey
}

func (s *conflictUserStore) UpdateRefreshToken(ctx context.Context, id uint, refreshToken string) error {
	return nil
}

func (s *conflictUserStore) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	return nil
}

func (s *conflictUserStore) UpdateAccount(ctx context.Context, id uint, fullName, email string) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) UpdateAvatar(ctx context.Context, id uint, url string) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) UpdateCoverImage(ctx context.Context, id uint, url string) (*model.User, error) {
	return s.existing, nil
}

func (s *conflictUserStore) Delete(ctx context.Context, id uint) error { return nil }

// countingMedia records upload attempts; the conflict path must never reach it.
type countingMedia struct {
	uploads int
}

func (m *countingMedia) Upload(ctx context.Context, localPath string) (*mediastore.UploadedAsset, error) {
	m.uploads++
	_ = os.Remove(localPath)
	return &mediastore.UploadedAsset{URL: "https://media.test/images/x", Key: "images/x"}, nil
}

func (m *countingMedia) Delete(ctx context.Context, key string) error { return nil }

func spooledUploads(t *testing.T) map[string]bool {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "upload-*"))
	if err != nil {
		t.Fatalf("Failed to list spooled uploads: %v", err)
	}
	set := make(map[string]bool, len(matches))
	for _, m := range matches {
		set[m] = true
	}
	return set
}

func registerForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	fields := map[string]string{
		"fullName": "Taken User",
		"email":    "taken@example.com",
		"username": "taken",
		"password": "secret123",
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}

	for field, name := range map[string]string{"avatar": "avatar.png", "coverImage": "cover.png"} {
		part, err := form.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}

	if err := form.Close(); err != nil {
		t.Fatalf("Failed to close form: %v", err)
	}
	return body, form.FormDataContentType()
}

func TestRegisterConflictLeavesNoSpooledFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterCustomValidators(); err != nil {
		t.Fatalf("Failed to register validators: %v", err)
	}

	store := &conflictUserStore{
		existing: &model.User{
			Model:    gorm.Model{ID: 1},
			Username: "taken",
			Email:    "taken@example.com",
		},
	}
	media := &countingMedia{}
	tokens := service.NewTokenService(&config.JWTConfig{
		AccessSecret:  "handler-access-secret",
		RefreshSecret: "handler-refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	h := NewAuthHandler(service.NewUserService(store, media, tokens), &config.Config{})

	r := gin.New()
	r.POST("/register", h.Register)

	before := spooledUploads(t)

	body, contentType := registerForm(t)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d with body %s", rec.Code, rec.Body.String())
	}
	if media.uploads != 0 {
		t.Errorf("Expected no uploads on conflict, got %d", media.uploads)
	}

	// The conflict is detected after the files are spooled, so the handler
	// must remove what the workflow never consumed.
	for path := range spooledUploads(t) {
		if !before[path] {
			t.Errorf("Expected spooled file removed, found %s", path)
		}
	}
}
