package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyweaver/internal/domain"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp ErrorResponse

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = ErrorResponse{Code: ErrCodeWrongCredentials, Message: "Invalid username or password"}
	case errors.Is(err, domain.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		errResp = ErrorResponse{Code: ErrCodeDuplicateUser, Message: "Username already exists"}
	case errors.Is(err, domain.ErrFieldsRequired):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeValidation, Message: "Enter a valid username and password"}
	case errors.Is(err, domain.ErrPasswordMismatch):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeValidation, Message: "Passwords do not match"}
	case errors.Is(err, domain.ErrInvalidStyle):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeValidation, Message: "Style is not one of the supported story styles"}
	case errors.Is(err, domain.ErrSceneCountOutOfRange):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeValidation, Message: "Scene count is outside the allowed range"}
	case errors.Is(err, domain.ErrPipelineFailed):
		statusCode = http.StatusBadGateway
		errResp = ErrorResponse{Code: ErrCodePipelineFailed, Message: "Story generation failed, please try again"}
	case errors.Is(err, domain.ErrNoBundle):
		statusCode = http.StatusNotFound
		errResp = ErrorResponse{Code: ErrCodeNoBundle, Message: "No video generated yet"}
	case errors.Is(err, domain.ErrInvalidAction):
		statusCode = http.StatusConflict
		errResp = ErrorResponse{Code: ErrCodeInvalidAction, Message: "Action is not valid for the current page"}
	case errors.Is(err, domain.ErrArtifactNotFound):
		statusCode = http.StatusNotFound
		errResp = ErrorResponse{Code: ErrCodeNotFound, Message: "Artifact not found"}
	case errors.Is(err, domain.ErrSessionNotFound):
		statusCode = http.StatusUnauthorized
		errResp = ErrorResponse{Code: ErrCodeBadRequest, Message: "Session expired, reload the page"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Code: ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
