package service

import (
	"context"
	"errors"
	"strings"

	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
	"github.com/streamhub/accounts/internal/model"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/mediastore"
	"github.com/streamhub/accounts/pkg/saga"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore is the credential-store contract the workflows depend on.
// *repository.UserRepository is the production implementation.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRefreshToken(ctx context.Context, id uint, refreshToken string) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateAccount(ctx context.Context, id uint, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id uint, url string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, id uint, url string) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

// UserService orchestrates the auth and profile-media workflows over the
// credential store, the media store and the token service.
type UserService struct {
	store        UserStore
	media        mediastore.Store
	tokenService *TokenService
}

func NewUserService(store UserStore, media mediastore.Store, tokenService *TokenService) *UserService {
	return &UserService{
		store:        store,
		media:        media,
		tokenService: tokenService,
	}
}

// mapStoreError reclassifies store-level failures at the service boundary so
// implementation detail never leaks upward.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrUserExists
	default:
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Username:   user.Username,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// Register runs the registration saga: uniqueness check, avatar upload,
// cover upload, record creation. Each later step's failure undoes the
// uploads that already happened; cleanup failures are logged, never
// escalated, so the triggering error reaches the caller.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterUserRequest, avatarPath, coverPath string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	for _, field := range []string{req.FullName, req.Email, req.Username, req.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "all fields are required")
		}
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.store.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		logger.WarnWithContext(ctx, "Registration rejected, user exists").
			String("username", username).
			Log()
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if avatarPath == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "avatar image is required")
	}
	if coverPath == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "cover image is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	var (
		avatar  *mediastore.UploadedAsset
		cover   *mediastore.UploadedAsset
		created *model.User
	)

	steps := []saga.Step{
		{
			Name: "upload avatar",
			Run: func(ctx context.Context) error {
				asset, err := s.media.Upload(ctx, avatarPath)
				if err != nil {
					return apperrors.WrapError(apperrors.ErrUpload, err)
				}
				avatar = asset
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.media.Delete(ctx, avatar.Key)
			},
		},
		{
			Name: "upload cover image",
			Run: func(ctx context.Context) error {
				asset, err := s.media.Upload(ctx, coverPath)
				if err != nil {
					return apperrors.WrapError(apperrors.ErrUpload, err)
				}
				cover = asset
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.media.Delete(ctx, cover.Key)
			},
		},
		{
			Name: "create user record",
			Run: func(ctx context.Context) error {
				user := &model.User{
					FullName:   strings.TrimSpace(req.FullName),
					Username:   username,
					Email:      email,
					Password:   string(hashedPassword),
					Avatar:     avatar.URL,
					CoverImage: cover.URL,
				}

				if err := s.store.Create(ctx, user); err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return apperrors.ErrUserExists
					}
					return apperrors.WrapError(apperrors.ErrInternal, err)
				}

				// Existence-check read back; a failure here still leaves
				// nothing behind because the record is removed before the
				// compensations delete the assets.
				fresh, err := s.store.GetByID(ctx, user.ID)
				if err != nil {
					if derr := s.store.Delete(ctx, user.ID); derr != nil {
						logger.ErrorWithContext(ctx, "Failed to remove user after read-back failure").
							Uint("user_id", user.ID).
							Err(derr).
							Log()
					}
					return apperrors.WrapError(apperrors.ErrInternal, err)
				}

				created = fresh
				return nil
			},
		},
	}

	if err := saga.Run(ctx, steps); err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			String("username", username).
			Err(err).
			Log()
		return nil, err
	}

	logger.InfoWithContext(ctx, "User registered").
		String("username", created.Username).
		Uint("user_id", created.ID).
		Log()

	return toUserResponse(created), nil
}

// Login verifies credentials, issues an access/refresh pair and persists the
// refresh token as the single current session value.
func (s *UserService) Login(ctx context.Context, email, password string) (*dto.UserLoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	if strings.TrimSpace(email) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "email is required")
	}

	user, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Login failed, user not found").
				String("email", email).
				Log()
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		logger.WarnWithContext(ctx, "Login failed, password mismatch").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User logged in").
		Uint("user_id", user.ID).
		Log()

	return &dto.UserLoginResponse{
		User:         *toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokenService.AccessTTLSeconds(),
	}, nil
}

// issueTokenPair signs a fresh pair and persists the refresh token,
// invalidating whatever was stored before (rotation).
func (s *UserService) issueTokenPair(ctx context.Context, userID uint) (string, string, error) {
	accessToken, err := s.tokenService.IssueAccessToken(userID)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.tokenService.IssueRefreshToken(userID)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdateRefreshToken(ctx, userID, refreshToken); err != nil {
		return "", "", mapStoreError(err)
	}

	return accessToken, refreshToken, nil
}

// Refresh rotates the token pair. The presented token must verify AND match
// the stored value byte-for-byte; a rotated-out token fails the second check
// even while its signature is still valid.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	if refreshToken == "" {
		return nil, apperrors.ErrUnauthorized
	}

	userID, err := s.tokenService.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token failed verification").
			Err(err).
			Log()
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		logger.WarnWithContext(ctx, "Stale refresh token presented").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, newRefreshToken, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Token pair rotated").
		Uint("user_id", user.ID).
		Log()

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    s.tokenService.AccessTTLSeconds(),
	}, nil
}

// Logout clears the stored refresh token; a later refresh with the old token
// fails the stored-value check.
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.store.UpdateRefreshToken(ctx, userID, ""); err != nil {
		return mapStoreError(err)
	}

	logger.InfoWithContext(ctx, "User logged out").
		Uint("user_id", userID).
		Log()

	return nil
}

// ChangePassword verifies the old password before storing the new hash.
// Tokens are not rotated.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return mapStoreError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		logger.WarnWithContext(ctx, "Password change rejected, old password mismatch").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return mapStoreError(err)
	}

	logger.InfoWithContext(ctx, "Password changed").
		Uint("user_id", userID).
		Log()

	return nil
}

// UpdateAccount changes the editable profile fields and returns the
// sanitized record.
func (s *UserService) UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateAccount")

	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "full name and email are required")
	}

	user, err := s.store.UpdateAccount(ctx, userID,
		strings.TrimSpace(fullName),
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, mapStoreError(err)
	}

	return toUserResponse(user), nil
}

// CurrentUser returns the sanitized record for an authenticated identity.
func (s *UserService) CurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toUserResponse(user), nil
}

// UpdateAvatar uploads a replacement avatar and overwrites the stored URL.
// The previous remote asset is left in place; only its URL is recorded, not
// its deletion handle.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateAvatar")
	return s.replaceImage(ctx, userID, localPath, s.store.UpdateAvatar)
}

// UpdateCoverImage uploads a replacement cover image and overwrites the
// stored URL.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateCoverImage")
	return s.replaceImage(ctx, userID, localPath, s.store.UpdateCoverImage)
}

func (s *UserService) replaceImage(ctx context.Context, userID uint, localPath string,
	update func(ctx context.Context, id uint, url string) (*model.User, error)) (*dto.UserResponse, error) {

	if localPath == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "image file is required")
	}

	asset, err := s.media.Upload(ctx, localPath)
	if err != nil {
		logger.ErrorWithContext(ctx, "Image upload failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrUpload, err)
	}

	user, err := update(ctx, userID, asset.URL)
	if err != nil {
		return nil, mapStoreError(err)
	}

	logger.InfoWithContext(ctx, "Profile image replaced").
		Uint("user_id", userID).
		Log()

	return toUserResponse(user), nil
}
