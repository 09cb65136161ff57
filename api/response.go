package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"nscollab/service"
)

// Error types returned outside the service taxonomy
const (
	errTypeUnauthorized = "unauthorized"
	errTypeBadRequest   = "bad_request"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

// statusForCode maps a service error code to an HTTP status
func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodePermissionDenied:
		return http.StatusForbidden
	case service.CodeConflict, service.CodeAlreadyCalculated:
		return http.StatusConflict
	case service.CodeInsufficientFunds, service.CodeInvalidAmount, service.CodeNotAnAngel, service.CodeNoPitches:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func setResponse(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func setErrorResponse(w http.ResponseWriter, statusCode int, errType, message string) {
	setResponse(w, statusCode, errorResponse{Type: errType, Msg: message})
}

// setServiceError writes a service failure, logging internal ones with the request context
func setServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := service.CodeOf(err)
	if code == service.CodeInternal {
		requestLogger(r).WithError(err).Error("Request failed")
	}
	setErrorResponse(w, statusForCode(code), string(code), service.UserMessage(err))
}
