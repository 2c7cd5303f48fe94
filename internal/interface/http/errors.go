package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
	"github.com/oksasatya/bookworm-api/pkg/response"
)

const internalErrorMessage = "Internal server error"

func statusFor(kind application.Kind) int {
	switch kind {
	case application.KindValidation, application.KindConflict, application.KindAuth:
		return http.StatusBadRequest
	case application.KindUnauthenticated:
		return http.StatusUnauthorized
	case application.KindForbidden:
		return http.StatusForbidden
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an error envelope. Unexpected errors are logged
// with the request id; callers only ever see a generic message for them.
func respondError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	var ae *application.Error
	if !errors.As(err, &ae) || ae.Kind == application.KindInternal {
		helpers.LogError(logger, op+" failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		response.Error[any](c, http.StatusInternalServerError, internalErrorMessage, nil)
		return
	}
	response.Error[any](c, statusFor(ae.Kind), ae.Message, nil)
}
