package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ulemsee/internal/models"
	"ulemsee/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		authErr       *services.UpstreamAuthError
		rateErr       *services.RateLimitError
		timeoutErr    *services.UpstreamTimeoutError
		networkErr    *services.NetworkError
		upstreamErr   *services.UpstreamError
		internalErr   *services.InternalError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validationMessage(validationErr), validationErr.Fields, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &authErr):
		writeJSON(w, authErr.Status, errorResp("UPSTREAM_AUTH_ERROR", authErr.Message, r))
	case errors.As(err, &rateErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateErr.Message, r))
	case errors.As(err, &timeoutErr):
		writeJSON(w, http.StatusGatewayTimeout, errorResp("UPSTREAM_TIMEOUT", timeoutErr.Message, r))
	case errors.As(err, &networkErr):
		log.Printf("upstream network error: %v", networkErr)
		writeJSON(w, http.StatusServiceUnavailable, errorResp("NETWORK_ERROR", networkErr.Message, r))
	case errors.As(err, &upstreamErr):
		writeJSON(w, upstreamStatus(upstreamErr.Status), errorResp("UPSTREAM_ERROR", upstreamErr.Error(), r))
	case errors.As(err, &internalErr):
		log.Printf("internal error: %v", internalErr)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", internalErr.Message, r))
	default:
		log.Printf("unexpected error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Ule Msee encountered an internal error", r))
	}
}

func validationMessage(e *services.ValidationError) string {
	for _, msg := range e.Fields {
		return msg
	}
	return "Validation failed"
}

// upstreamStatus keeps the upstream status when it is a real HTTP error code.
func upstreamStatus(status int) int {
	if status < 400 || status > 599 {
		return http.StatusBadGateway
	}
	return status
}
