package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
)

// errorStatus maps a service error to its HTTP status and public message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidPage), errors.Is(err, apperrors.ErrInvalidPageSize):
		return http.StatusBadRequest, "invalid page"
	case errors.Is(err, apperrors.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, "price source unavailable"
	case errors.Is(err, apperrors.ErrEmptySeries):
		return http.StatusBadGateway, "price source returned no data"
	case errors.Is(err, apperrors.ErrInvalidRate):
		return http.StatusBadGateway, "price source returned an invalid exchange rate"
	case errors.Is(err, apperrors.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "not enough price history"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondServiceError writes err as a structured error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg(message)
	}
	response.RespondError(w, status, message, err.Error())
}
