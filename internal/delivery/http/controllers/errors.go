package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

// writeServiceError maps a service error onto the API envelope. Unexpected errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrHostIdentity):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrConfirmationRequired):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registrant not found")
	case errors.Is(err, domain.ErrLuckyNumbersExhausted):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExhausted, "all lucky numbers have been assigned")
	case errors.Is(err, domain.ErrLuckyNumberTaken):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "could not reserve a lucky number, please retry")
	case errors.Is(err, domain.ErrNotificationFailed):
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeBadGateway, notificationFailureMessage(err))
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// notificationFailureMessage keeps relay details and recipient addresses out of the response.
func notificationFailureMessage(err error) string {
	var partial *domain.NotificationError
	if errors.As(err, &partial) {
		return fmt.Sprintf("failed to send notifications (sent %d of %d)", partial.Sent, partial.Total)
	}
	return "failed to send notifications"
}
