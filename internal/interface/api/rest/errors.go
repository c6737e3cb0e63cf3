package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/interface/api/rest/dto"
)

// StatusOf maps the error taxonomy to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrQuotaExceeded), errors.Is(err, apperr.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err inside the envelope. Internal causes are logged
// under op and never sent to the client.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+"() error", zap.Error(err))
		c.JSON(status, dto.Fail("internal error", nil))
		return
	}

	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(status, dto.Fail("validation failed", gin.H{"errors": vErr.Fields}))
		return
	}

	c.JSON(status, dto.Fail(err.Error(), nil))
}

func badRequest(c *gin.Context, message string, details map[string]string) {
	var data any
	if details != nil {
		data = gin.H{"errors": details}
	}
	c.JSON(http.StatusBadRequest, dto.Fail(message, data))
}
