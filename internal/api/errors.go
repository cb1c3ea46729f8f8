package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockx-backend-go/internal/core"
)

var providerStatus = map[string]int{
	core.CodeEmailAlreadyInUse:    http.StatusConflict,
	core.CodeInvalidEmail:         http.StatusBadRequest,
	core.CodeWeakPassword:         http.StatusBadRequest,
	core.CodeOperationNotAllowed:  http.StatusBadRequest,
	core.CodeExpiredActionCode:    http.StatusBadRequest,
	core.CodeInvalidActionCode:    http.StatusBadRequest,
	core.CodeUserDisabled:         http.StatusForbidden,
	core.CodeUserNotFound:         http.StatusUnauthorized,
	core.CodeWrongPassword:        http.StatusUnauthorized,
	core.CodeInvalidCredential:    http.StatusUnauthorized,
	core.CodeInvalidIDToken:       http.StatusUnauthorized,
	core.CodeTooManyRequests:      http.StatusTooManyRequests,
	core.CodeNetworkRequestFailed: http.StatusBadGateway,
}

// statusFor maps a service error to its HTTP status and user-facing message.
func statusFor(err error) (int, string) {
	var (
		ve *core.ValidationError
		pe *core.ProviderError
		na *core.NotApprovedError
		fe *core.ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &pe):
		status, known := providerStatus[pe.Code]
		if !known {
			status = http.StatusInternalServerError
		}
		return status, pe.UserMessage()
	case errors.As(err, &na):
		return http.StatusForbidden, na.Message
	case errors.As(err, &fe):
		return http.StatusForbidden, fe.Reason
	case errors.Is(err, core.ErrProfileNotFound):
		return http.StatusNotFound, "User profile not found"
	case errors.Is(err, core.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, core.ErrPackageRequired):
		return http.StatusBadRequest, core.ErrPackageRequired.Error()
	case errors.Is(err, core.ErrUnknownPackage):
		return http.StatusBadRequest, "Unknown package"
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// respondError writes the error envelope. Server-side failures are logged.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("uid", c.GetString("userID")),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
