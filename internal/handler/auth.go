package handler

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/service"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
)

type AuthHandler struct {
	userService *service.UserService
	cfg         *config.Config
}

func NewAuthHandler(userService *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cfg:         cfg,
	}
}

// spoolUpload writes a multipart file to a temp path the media store can
// consume. The media store removes the file after the upload attempt.
func spoolUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("upload-%s%s", uuid.NewString(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	return path, nil
}

// Register handles multipart registration with avatar and cover image files
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "Register")

	var req dto.RegisterUserRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		respondBindError(c, h.cfg, err)
		return
	}

	var avatarPath, coverPath string

	// The media store removes spooled files when it consumes them; a path
	// still present here belongs to a workflow that failed before its upload.
	defer func() {
		for _, path := range []string{avatarPath, coverPath} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.WarnWithContext(ctx, "Failed to remove spooled upload").
					String("path", path).
					Err(err).
					Log()
			}
		}
	}()

	if file, err := c.FormFile("avatar"); err == nil {
		path, err := spoolUpload(c, file)
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to store avatar upload").
				Err(err).
				Log()
			respondBindError(c, h.cfg, err)
			return
		}
		avatarPath = path
	}
	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := spoolUpload(c, file)
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to store cover image upload").
				Err(err).
				Log()
			respondBindError(c, h.cfg, err)
			return
		}
		coverPath = path
	}

	logger.InfoWithContext(ctx, "User registration attempt").
		String("username", req.Username).
		String("email", req.Email).
		Log()

	user, err := h.userService.Register(ctx, &req, avatarPath, coverPath)
	if err != nil {
		respondError(c, h.cfg, err)
		return
	}

	respondOK(c, "User registered successfully", user)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "Login")

	var req dto.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		respondBindError(c, h.cfg, err)
		return
	}

	logger.InfoWithContext(ctx, "User login attempt").
		String("email", req.Email).
		Log()

	response, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, h.cfg, err)
		return
	}

	h.setSessionCookies(c, response.AccessToken, response.RefreshToken)

	respondOK(c, "Login successful", response)
}

// RefreshToken rotates the refresh token. The token comes from the session
// cookie or, failing that, the request body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "RefreshToken")

	refreshToken, err := c.Cookie(constants.CookieRefreshToken)
	if err != nil || refreshToken == "" {
		var req dto.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}

	response, err := h.userService.Refresh(ctx, refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		respondError(c, h.cfg, err)
		return
	}

	h.setSessionCookies(c, response.AccessToken, response.RefreshToken)

	respondOK(c, "Token refreshed successfully", response)
}

// Logout clears the stored refresh token and both session cookies
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "Logout")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		respondError(c, h.cfg, apperrors.ErrUnauthorized)
		return
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Logout failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		respondError(c, h.cfg, err)
		return
	}

	h.clearSessionCookies(c)

	respondOK(c, "Logout successful", nil)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	secure := h.cfg.IsProduction()
	c.SetCookie(constants.CookieAccessToken, accessToken,
		int(h.cfg.JWT.AccessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(constants.CookieRefreshToken, refreshToken,
		int(h.cfg.JWT.RefreshTTL.Seconds()), "/", "", secure, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	secure := h.cfg.IsProduction()
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", secure, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", secure, true)
}
