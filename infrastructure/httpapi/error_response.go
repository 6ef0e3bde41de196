package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ahrav/go-scout/internal/domain"
)

// ErrorResponse represents a standard JSON error response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
	Suggestion string `json:"suggestion,omitempty"`
}

// WriteJSONError writes a JSON error response with the given status code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeErrorResponse(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// WriteDomainError maps err onto a status code and writes it. Query errors
// carrying a suggestion pass it through to the client.
func WriteDomainError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: Query failed: %v", err)
	}

	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	}
	var qerr *domain.QueryError
	if errors.As(err, &qerr) {
		resp.Suggestion = qerr.Suggestion
	}
	writeErrorResponse(w, resp)
}

// StatusFor returns the HTTP status a domain error maps to.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrUnknownFormula):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownCriteria),
		errors.Is(err, domain.ErrNotNumeric),
		errors.Is(err, domain.ErrInvalidQuantile),
		errors.Is(err, domain.ErrInvalidAlliance),
		errors.Is(err, domain.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}
