package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"go.uber.org/zap"
)

var errBadBody = customErrors.NewInvalidArgument("Invalid request body")

func statusOf(err error) int {
	switch {
	case customErrors.IsInternal(err):
		return http.StatusInternalServerError
	case customErrors.IsInvalidArgument(err),
		customErrors.IsAlreadyExists(err),
		customErrors.IsInvalidCredentials(err),
		customErrors.IsInvalidToken(err),
		customErrors.IsTokenExpired(err),
		customErrors.IsFileRejected(err):
		return http.StatusBadRequest
	case customErrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case customErrors.IsForbidden(err), customErrors.IsNotVerified(err):
		return http.StatusForbidden
	case customErrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": "internal server error"})
		return
	}

	body := gin.H{"message": customErrors.Message(err)}
	if f := customErrors.FieldOf(err); f != "" {
		body["field"] = f
	}
	c.JSON(status, body)
}

// bindJSON writes the error response itself. With allowEmpty an empty body
// leaves dst untouched.
func bindJSON(c *gin.Context, log *zap.Logger, dst any, allowEmpty bool) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		handleError(c, log, errBadBody)
		return false
	}
	return true
}
