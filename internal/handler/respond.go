package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/constants"
	apperrors "github.com/streamhub/accounts/internal/errors"
)

// respondError maps a workflow error onto the uniform envelope. The raw
// error text rides along in the errors list only outside production.
func respondError(c *gin.Context, cfg *config.Config, err error) {
	status := apperrors.ToHTTPStatus(err)
	message := apperrors.GetErrorMessage(err)

	var details []string
	if err != nil {
		details = []string{err.Error()}
	}

	c.JSON(status, constants.BuildErrorResponse(status, message, details, "", !cfg.IsProduction()))
}

// respondBindError reports request-parsing failures as validation errors.
func respondBindError(c *gin.Context, cfg *config.Config, err error) {
	status := http.StatusBadRequest

	var details []string
	if err != nil {
		details = []string{err.Error()}
	}

	c.JSON(status, constants.BuildErrorResponse(status, "Invalid request format", details, "", !cfg.IsProduction()))
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, message, data))
}
