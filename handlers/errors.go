package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaultrag-api/errs"
)

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusUnprocessableEntity
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindProviderTransient, errs.KindProviderPermanent, errs.KindProviderUnavailable:
		return http.StatusBadGateway
	case errs.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case errs.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the structured error body. Internal details never leak
// to the client: 5xx responses carry a correlation id that is also logged
// with the underlying error.
func respondError(c *gin.Context, err error) {
	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		appErr = errs.Internal(err)
	}

	// A deadline can expire inside any backend call; the cause wins over the
	// kind the failing layer wrapped it in.
	if appErr.Kind != errs.KindTimeout && errors.Is(err, context.DeadlineExceeded) {
		appErr = errs.Timeout("request deadline exceeded")
	}

	status := statusFor(appErr.Kind)
	body := gin.H{
		"error":  appErr.Message,
		"detail": appErr.Kind.String(),
		"code":   appErr.Code,
	}

	// 5xx details stay server-side: the client gets the taxonomy message and
	// a correlation id, the log gets the cause.
	if status >= http.StatusInternalServerError {
		correlationID := uuid.New().String()
		log.Printf("Request failed [%s] %s %s: %v", correlationID, c.Request.Method, c.Request.URL.Path, err)
		body["correlation_id"] = correlationID
	}

	c.JSON(status, body)
}
