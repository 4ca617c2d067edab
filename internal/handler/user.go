package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/service"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
	cfg         *config.Config
}

func NewUserHandler(userService *service.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		cfg:         cfg,
	}
}

// CurrentUser returns the sanitized record for the authenticated identity
func (h *UserHandler) CurrentUser(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "CurrentUser")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		respondError(c, h.cfg, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.userService.CurrentUser(ctx, userID)
	if err != nil {
		respondError(c, h.cfg, err)
		return
	}

	respondOK(c, "Current user fetched successfully", user)
}

// ChangePassword verifies the old password and stores the new hash
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "ChangePassword")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		respondError(c, h.cfg, apperrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.cfg, err)
		return
	}

	if err := h.userService.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		respondError(c, h.cfg, err)
		return
	}

	respondOK(c, "Password changed successfully", nil)
}

// UpdateAccount changes the editable profile fields
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", "UpdateAccount")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		respondError(c, h.cfg, apperrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.cfg, err)
		return
	}

	user, err := h.userService.UpdateAccount(ctx, userID, req.FullName, req.Email)
	if err != nil {
		respondError(c, h.cfg, err)
		return
	}

	respondOK(c, "Account updated successfully", user)
}

// UpdateAvatar replaces the avatar image
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "UpdateAvatar", "avatar", h.userService.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "UpdateCoverImage", "coverImage", h.userService.UpdateCoverImage)
}

func (h *UserHandler) updateImage(c *gin.Context, function, field string,
	update func(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error)) {

	ctx := ctxutil.NewRequestContext(c.Request.Context(), "handler", function)

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		respondError(c, h.cfg, apperrors.ErrUnauthorized)
		return
	}

	file, err := c.FormFile(field)
	if err != nil {
		respondError(c, h.cfg, apperrors.WithMessage(apperrors.ErrValidation, "image file is required"))
		return
	}

	localPath, err := spoolUpload(c, file)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to store image upload").
			Uint("user_id", userID).
			Err(err).
			Log()
		respondBindError(c, h.cfg, err)
		return
	}

	user, err := update(ctx, userID, localPath)
	if err != nil {
		respondError(c, h.cfg, err)
		return
	}

	respondOK(c, "Image updated successfully", user)
}
